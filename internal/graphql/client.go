package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/platform/requestctx"
)

const defaultClientTimeout = 30 * time.Second

var (
	// ErrEndpointRequired indicates the client was built without an endpoint URL.
	ErrEndpointRequired = errors.New("graphql: endpoint is required")
	// ErrRemote indicates the remote returned a GraphQL errors array.
	ErrRemote = errors.New("graphql: remote rejected the operation")
	// ErrTransport indicates the request never produced a usable response.
	ErrTransport = errors.New("graphql: transport failure")
)

// TokenSource supplies the bearer token attached to outgoing requests.
type TokenSource func(ctx context.Context) (string, error)

// ClientOption customises the commerce client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithStaticToken attaches a fixed bearer token to every request.
func WithStaticToken(token string) ClientOption {
	return func(c *Client) {
		if token != "" {
			c.tokenSource = func(context.Context) (string, error) { return token, nil }
		}
	}
}

// WithTokenSource attaches a per-request bearer token supplier.
func WithTokenSource(source TokenSource) ClientOption {
	return func(c *Client) {
		if source != nil {
			c.tokenSource = source
		}
	}
}

// WithClientTimeout bounds each request round trip.
func WithClientTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// Client dispatches catalog operations to the downstream commerce GraphQL
// endpoint. It backs the wizard's Dispatcher, CategoryFetcher and
// ProductFetcher collaborators in production.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	tokenSource TokenSource
	timeout     time.Duration
}

// NewClient builds a commerce client for the given endpoint.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, ErrEndpointRequired
	}
	client := &Client{
		endpoint: endpoint,
		timeout:  defaultClientTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.timeout}
	}
	return client, nil
}

// AddProduct dispatches the addProduct mutation and returns the created id.
func (c *Client) AddProduct(ctx context.Context, input domain.CreateProductInput) (string, error) {
	variables := map[string]any{"input": EncodeProductInput(input)}
	var data struct {
		AddProduct struct {
			ID string `json:"id"`
		} `json:"addProduct"`
	}
	if err := c.do(ctx, "AddProduct", addProductDocument, variables, &data); err != nil {
		return "", err
	}
	return data.AddProduct.ID, nil
}

// UpdateProduct dispatches the updateProduct mutation and returns the
// product id.
func (c *Client) UpdateProduct(ctx context.Context, input domain.UpdateProductInput) (string, error) {
	variables := map[string]any{
		"productId": input.ID,
		"input":     EncodeProductInput(input.CreateProductInput),
	}
	var data struct {
		UpdateProduct struct {
			ID string `json:"id"`
		} `json:"updateProduct"`
	}
	if err := c.do(ctx, "UpdateProduct", updateProductDocument, variables, &data); err != nil {
		return "", err
	}
	return data.UpdateProduct.ID, nil
}

// DeleteProduct dispatches the deleteProduct mutation.
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	variables := map[string]any{"productId": productID}
	var data struct {
		DeleteProduct bool `json:"deleteProduct"`
	}
	return c.do(ctx, "DeleteProduct", deleteProductDocument, variables, &data)
}

// FetchProduct loads one product for edit-flow hydration.
func (c *Client) FetchProduct(ctx context.Context, productID string) (domain.Product, error) {
	variables := map[string]any{"productId": productID}
	var data struct {
		GetProduct ProductPayload `json:"getProduct"`
	}
	if err := c.do(ctx, "GetProduct", getProductDocument, variables, &data); err != nil {
		return domain.Product{}, err
	}
	return DecodeProduct(data.GetProduct), nil
}

// FetchCategories loads the two-level category tree with specification
// descriptors.
func (c *Client) FetchCategories(ctx context.Context) ([]domain.CategoryNode, error) {
	var data struct {
		Categories []CategoryPayload `json:"categories"`
	}
	if err := c.do(ctx, "GetProductCategories", getProductCategoriesDocument, nil, &data); err != nil {
		return nil, err
	}
	nodes := make([]domain.CategoryNode, 0, len(data.Categories))
	for _, payload := range data.Categories {
		nodes = append(nodes, DecodeCategory(payload))
	}
	return nodes, nil
}

func (c *Client) do(ctx context.Context, operationName, document string, variables any, out any) error {
	request := Request{Query: document, OperationName: operationName}
	if variables != nil {
		raw, err := json.Marshal(variables)
		if err != nil {
			return fmt.Errorf("graphql: encode variables for %s: %w", operationName, err)
		}
		request.Variables = raw
	}
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("graphql: encode request for %s: %w", operationName, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("graphql: build request for %s: %w", operationName, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.tokenSource != nil {
		token, err := c.tokenSource(ctx)
		if err != nil {
			return fmt.Errorf("graphql: resolve token for %s: %w", operationName, err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		requestctx.Logger(ctx).Warn("graphql request failed",
			zap.String("operation", operationName),
			zap.Error(err))
		return fmt.Errorf("%w: %s: %v", ErrTransport, operationName, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %v", ErrTransport, operationName, err)
	}
	if resp.StatusCode != http.StatusOK {
		requestctx.Logger(ctx).Warn("graphql endpoint returned non-200",
			zap.String("operation", operationName),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: %s: status %d", ErrTransport, operationName, resp.StatusCode)
	}

	var envelope Response
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", ErrTransport, operationName, err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrRemote, operationName, joinErrorMessages(envelope.Errors))
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("%w: %s: decode data: %v", ErrTransport, operationName, err)
		}
	}
	return nil
}

func joinErrorMessages(errs []ResponseError) string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "; ")
}
