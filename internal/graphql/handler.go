package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"go.uber.org/zap"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/platform/requestctx"
	"github.com/sellerdesk/api/internal/services"
)

// operationError carries a GraphQL error code alongside the message.
type operationError struct {
	code    string
	message string
}

func (e *operationError) Error() string { return e.message }

func opErr(code, message string) *operationError {
	return &operationError{code: code, message: message}
}

// HandlerDeps bundles the services behind the endpoint resolvers.
type HandlerDeps struct {
	Catalog  services.CatalogService
	Category services.CategoryService
}

// Handler is a thin GraphQL executor. It resolves the top-level operation
// field from the query document and dispatches to a service-backed resolver;
// it does not evaluate selection sets. Callers receive the full wire shape of
// each result and project the fields they asked for client-side.
type Handler struct {
	deps      HandlerDeps
	resolvers map[string]resolverFunc
}

type resolverFunc func(ctx context.Context, vars json.RawMessage) (any, error)

// NewHandler builds the GraphQL endpoint handler.
func NewHandler(deps HandlerDeps) (*Handler, error) {
	if deps.Catalog == nil {
		return nil, errors.New("graphql: catalog service is required")
	}
	if deps.Category == nil {
		return nil, errors.New("graphql: category service is required")
	}
	h := &Handler{deps: deps}
	h.resolvers = map[string]resolverFunc{
		"categories":                  h.resolveCategories,
		"category":                    h.resolveCategory,
		"categorySpecifications":      h.resolveCategorySpecifications,
		"getProducts":                 h.resolveGetProducts,
		"getProduct":                  h.resolveGetProduct,
		"addProduct":                  h.resolveAddProduct,
		"updateProduct":               h.resolveUpdateProduct,
		"deleteProduct":               h.resolveDeleteProduct,
		"createCategory":              h.resolveCreateCategory,
		"createSubCategory":           h.resolveCreateSubCategory,
		"createCategorySpecification": h.resolveCreateCategorySpecification,
	}
	return h, nil
}

// ServeHTTP implements the POST /graphql endpoint.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeEnvelopeError(w, http.StatusMethodNotAllowed, CodeBadUserInput, "only POST is supported")
		return
	}

	var request Request
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, CodeBadUserInput, "malformed request envelope")
		return
	}

	field := OperationField(request.Query)
	if field == "" {
		writeEnvelopeError(w, http.StatusBadRequest, CodeBadUserInput, "could not resolve the operation field")
		return
	}
	resolver, ok := h.resolvers[field]
	if !ok {
		writeEnvelopeError(w, http.StatusBadRequest, CodeBadUserInput, "unknown operation: "+field)
		return
	}

	result, err := resolver(r.Context(), request.Variables)
	if err != nil {
		h.writeResolverError(r.Context(), w, field, err)
		return
	}

	data, err := json.Marshal(map[string]any{field: result})
	if err != nil {
		writeEnvelopeError(w, http.StatusInternalServerError, CodeInternal, "failed to encode response")
		return
	}
	writeEnvelope(w, http.StatusOK, Response{Data: data})
}

func (h *Handler) writeResolverError(ctx context.Context, w http.ResponseWriter, field string, err error) {
	var opError *operationError
	if !errors.As(err, &opError) {
		opError = mapServiceError(err)
	}
	if opError.code == CodeInternal {
		requestctx.Logger(ctx).Error("graphql resolver failed",
			zap.String("field", field),
			zap.Error(err))
	}
	writeEnvelope(w, http.StatusOK, Response{Errors: []ResponseError{{
		Message:    opError.message,
		Path:       []any{field},
		Extensions: map[string]any{"code": opError.code},
	}}})
}

func mapServiceError(err error) *operationError {
	switch {
	case errors.Is(err, services.ErrCatalogNotFound), errors.Is(err, services.ErrCategoryNotFound):
		return opErr(CodeNotFound, err.Error())
	case errors.Is(err, services.ErrCatalogForbidden):
		return opErr(CodeForbidden, err.Error())
	case errors.Is(err, services.ErrCatalogInvalidInput),
		errors.Is(err, services.ErrCatalogCategoryNotLeaf),
		errors.Is(err, services.ErrCategoryInvalidInput):
		return opErr(CodeBadUserInput, err.Error())
	case errors.Is(err, services.ErrCategoryConflict):
		return opErr(CodeConflict, err.Error())
	default:
		return opErr(CodeInternal, "internal server error")
	}
}

func writeEnvelope(w http.ResponseWriter, status int, envelope Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope)
}

func writeEnvelopeError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, Response{Errors: []ResponseError{{
		Message:    message,
		Extensions: map[string]any{"code": code},
	}}})
}

func requireIdentity(ctx context.Context) (*auth.Identity, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, opErr(CodeUnauthenticated, "authentication required")
	}
	return identity, nil
}

func requireSeller(ctx context.Context) (*auth.Identity, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.HasRole(auth.RoleSeller) {
		return nil, opErr(CodeForbidden, "only sellers can manage products")
	}
	return identity, nil
}

func requireStaff(ctx context.Context) (*auth.Identity, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.HasAnyRole(auth.RoleStaff, auth.RoleAdmin) {
		return nil, opErr(CodeForbidden, "staff access required")
	}
	return identity, nil
}

func decodeVariables(vars json.RawMessage, out any) error {
	if len(vars) == 0 {
		return opErr(CodeBadUserInput, "variables are required")
	}
	if err := json.Unmarshal(vars, out); err != nil {
		return opErr(CodeBadUserInput, "malformed variables")
	}
	return nil
}

func (h *Handler) resolveCategories(ctx context.Context, _ json.RawMessage) (any, error) {
	if _, err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	nodes, err := h.deps.Category.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	payloads := make([]CategoryPayload, 0, len(nodes))
	for _, node := range nodes {
		payloads = append(payloads, EncodeCategory(node))
	}
	return payloads, nil
}

func (h *Handler) resolveCategory(ctx context.Context, vars json.RawMessage) (any, error) {
	if _, err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	var args struct {
		ID string `json:"id"`
	}
	if err := decodeVariables(vars, &args); err != nil {
		return nil, err
	}
	node, err := h.deps.Category.GetCategory(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	return EncodeCategory(node), nil
}

func (h *Handler) resolveCategorySpecifications(ctx context.Context, vars json.RawMessage) (any, error) {
	if _, err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	var args struct {
		CategoryID string `json:"categoryId"`
	}
	if err := decodeVariables(vars, &args); err != nil {
		return nil, err
	}
	fields, err := h.deps.Category.ListSpecifications(ctx, args.CategoryID)
	if err != nil {
		return nil, err
	}
	return encodeSpecFields(fields), nil
}

func (h *Handler) resolveGetProducts(ctx context.Context, vars json.RawMessage) (any, error) {
	identity, err := requireSeller(ctx)
	if err != nil {
		return nil, err
	}
	var args struct {
		Status    string `json:"status"`
		Search    string `json:"search"`
		PageSize  int    `json:"pageSize"`
		PageToken string `json:"pageToken"`
	}
	if len(vars) > 0 {
		if err := json.Unmarshal(vars, &args); err != nil {
			return nil, opErr(CodeBadUserInput, "malformed variables")
		}
	}
	page, err := h.deps.Catalog.ListProducts(ctx, identity.UID, services.ProductListFilter{
		Status: domain.ProductStatus(args.Status),
		Search: args.Search,
		Pagination: domain.Pagination{
			PageSize:  args.PageSize,
			PageToken: args.PageToken,
		},
	})
	if err != nil {
		return nil, err
	}
	payloads := make([]ProductPayload, 0, len(page.Items))
	for _, summary := range page.Items {
		payloads = append(payloads, encodeProductSummary(summary))
	}
	return map[string]any{
		"items":         payloads,
		"nextPageToken": page.NextPageToken,
	}, nil
}

func (h *Handler) resolveGetProduct(ctx context.Context, vars json.RawMessage) (any, error) {
	if _, err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	var args struct {
		ProductID string `json:"productId"`
	}
	if err := decodeVariables(vars, &args); err != nil {
		return nil, err
	}
	if args.ProductID == "" {
		return nil, opErr(CodeBadUserInput, "product id is required")
	}
	product, err := h.deps.Catalog.GetProduct(ctx, args.ProductID)
	if err != nil {
		return nil, err
	}
	return EncodeProduct(product), nil
}

func (h *Handler) resolveAddProduct(ctx context.Context, vars json.RawMessage) (any, error) {
	identity, err := requireSeller(ctx)
	if err != nil {
		return nil, err
	}
	var args struct {
		Input ProductInputPayload `json:"input"`
	}
	if err := decodeVariables(vars, &args); err != nil {
		return nil, err
	}
	product, err := h.deps.Catalog.CreateProduct(ctx, services.CreateProductCommand{
		SellerID: identity.UID,
		Input:    DecodeProductInput(args.Input),
	})
	if err != nil {
		return nil, err
	}
	return EncodeProduct(product), nil
}

func (h *Handler) resolveUpdateProduct(ctx context.Context, vars json.RawMessage) (any, error) {
	identity, err := requireSeller(ctx)
	if err != nil {
		return nil, err
	}
	var args struct {
		ProductID string              `json:"productId"`
		Input     ProductInputPayload `json:"input"`
	}
	if err := decodeVariables(vars, &args); err != nil {
		return nil, err
	}
	if args.ProductID == "" {
		return nil, opErr(CodeBadUserInput, "product id is required")
	}
	product, err := h.deps.Catalog.UpdateProduct(ctx, services.UpdateProductCommand{
		SellerID: identity.UID,
		Input: domain.UpdateProductInput{
			ID:                 args.ProductID,
			CreateProductInput: DecodeProductInput(args.Input),
		},
	})
	if err != nil {
		return nil, err
	}
	return EncodeProduct(product), nil
}

func (h *Handler) resolveDeleteProduct(ctx context.Context, vars json.RawMessage) (any, error) {
	identity, err := requireSeller(ctx)
	if err != nil {
		return nil, err
	}
	var args struct {
		ProductID string `json:"productId"`
	}
	if err := decodeVariables(vars, &args); err != nil {
		return nil, err
	}
	if args.ProductID == "" {
		return nil, opErr(CodeBadUserInput, "product id is required")
	}
	if err := h.deps.Catalog.DeleteProduct(ctx, services.DeleteProductCommand{
		SellerID:  identity.UID,
		ProductID: args.ProductID,
	}); err != nil {
		return nil, err
	}
	return true, nil
}

func (h *Handler) resolveCreateCategory(ctx context.Context, vars json.RawMessage) (any, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	var args struct {
		Data struct {
			Name     string `json:"name"`
			IsActive *bool  `json:"isActive"`
		} `json:"data"`
	}
	if err := decodeVariables(vars, &args); err != nil {
		return nil, err
	}
	node, err := h.deps.Category.CreateCategory(ctx, services.CreateCategoryCommand{
		Name:     args.Data.Name,
		IsActive: args.Data.IsActive,
	})
	if err != nil {
		return nil, err
	}
	return EncodeCategory(node), nil
}

func (h *Handler) resolveCreateSubCategory(ctx context.Context, vars json.RawMessage) (any, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	var args struct {
		Data struct {
			Name     string `json:"name"`
			ParentID string `json:"parentId"`
			IsActive *bool  `json:"isActive"`
		} `json:"data"`
	}
	if err := decodeVariables(vars, &args); err != nil {
		return nil, err
	}
	node, err := h.deps.Category.CreateSubCategory(ctx, services.CreateSubCategoryCommand{
		ParentID: args.Data.ParentID,
		Name:     args.Data.Name,
		IsActive: args.Data.IsActive,
	})
	if err != nil {
		return nil, err
	}
	return EncodeCategory(node), nil
}

func (h *Handler) resolveCreateCategorySpecification(ctx context.Context, vars json.RawMessage) (any, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	var args struct {
		Data struct {
			CategoryID  string `json:"categoryId"`
			Key         string `json:"key"`
			Label       string `json:"label"`
			Placeholder string `json:"placeholder"`
		} `json:"data"`
	}
	if err := decodeVariables(vars, &args); err != nil {
		return nil, err
	}
	field, err := h.deps.Category.CreateSpecification(ctx, services.CreateSpecificationCommand{
		CategoryID:  args.Data.CategoryID,
		Key:         args.Data.Key,
		Label:       args.Data.Label,
		Placeholder: args.Data.Placeholder,
	})
	if err != nil {
		return nil, err
	}
	return SpecFieldPayload{
		ID:          field.ID,
		Key:         field.Key,
		Label:       field.Label,
		Placeholder: field.Placeholder,
	}, nil
}

func encodeProductSummary(summary domain.ProductSummary) ProductPayload {
	payload := ProductPayload{
		ID:         summary.ID,
		Name:       summary.Name,
		Slug:       summary.Slug,
		Status:     string(summary.Status),
		CategoryID: summary.CategoryID,
		Variants: []VariantPayload{{
			Price: summary.Price,
			Stock: summary.Stock,
		}},
	}
	if summary.ImageURL != "" {
		payload.Images = []ImagePayload{{URL: summary.ImageURL}}
	}
	return payload
}

// OperationField extracts the first top-level field of the first operation in
// a query document. The endpoint serves a fixed operation set, so a full
// GraphQL parser is not needed; the scanner skips the operation header and
// comments and reads the first identifier inside the selection set.
func OperationField(query string) string {
	depth := 0
	i := 0
	for i < len(query) {
		c := query[i]
		switch {
		case c == '#':
			for i < len(query) && query[i] != '\n' {
				i++
			}
		case c == '"':
			i = skipString(query, i)
		case c == '(':
			depth++
			i++
		case c == ')':
			depth--
			i++
		case c == '{' && depth == 0:
			return firstIdentifier(query[i+1:])
		default:
			i++
		}
	}
	return ""
}

func skipString(query string, start int) int {
	i := start + 1
	for i < len(query) {
		switch query[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func firstIdentifier(s string) string {
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' || (start >= 0 && unicode.IsDigit(r)) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
		if r == '#' {
			rest := s[i:]
			if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
				return firstIdentifier(rest[idx:])
			}
			return ""
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}
