package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

func TestLoadSeedIsDeterministic(t *testing.T) {
	first, err := LoadSeed()
	require.NoError(t, err)
	second, err := LoadSeed()
	require.NoError(t, err)

	assert.Equal(t, first, second)

	assert.Len(t, first.Orders, 5)
	assert.Len(t, first.Customers, 6)
	assert.Len(t, first.Messages, 6)
	assert.Len(t, first.Reviews, 8)
	assert.Len(t, first.Disputes, 5)
	assert.Len(t, first.Campaigns, 5)
	assert.Len(t, first.Discounts, 6)
	assert.Len(t, first.Promotions, 5)
	assert.Len(t, first.Advertisements, 6)

	assert.Equal(t, "ORD-001", first.Orders[0].ID)
	assert.Equal(t, domain.OrderStatusProcessing, first.Orders[0].Status)
	assert.Equal(t, 299.99, first.Orders[0].Total)
	assert.Len(t, first.Orders[0].Lines, 2)
	assert.Equal(t, domain.CustomerStatusVIP, first.Customers[2].Status)
	assert.Equal(t, "SUMMER20", first.Discounts[0].Code)
	require.NotNil(t, first.Discounts[0].Conditions)
	assert.Equal(t, 50.0, first.Discounts[0].Conditions.MinOrderValue)
}

func TestOrderRepositoryListFilters(t *testing.T) {
	seed, err := LoadSeed()
	require.NoError(t, err)
	repo := NewOrderRepository(seed.Orders)
	ctx := context.Background()

	page, err := repo.List(ctx, repositories.OrderListFilter{
		Filter: domain.OrderFilter{Priority: domain.PriorityHigh},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "ORD-001", page.Items[0].ID)
	assert.Equal(t, "ORD-005", page.Items[1].ID)

	page, err = repo.List(ctx, repositories.OrderListFilter{
		Filter: domain.OrderFilter{Search: "jane"},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ORD-002", page.Items[0].ID)

	page, err = repo.List(ctx, repositories.OrderListFilter{
		Filter: domain.OrderFilter{Status: domain.OrderStatusShipped, Search: "ord-002"},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestOrderRepositoryPagination(t *testing.T) {
	seed, err := LoadSeed()
	require.NoError(t, err)
	repo := NewOrderRepository(seed.Orders)
	ctx := context.Background()

	page, err := repo.List(ctx, repositories.OrderListFilter{
		Pagination: domain.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextPageToken)

	page, err = repo.List(ctx, repositories.OrderListFilter{
		Pagination: domain.Pagination{PageSize: 2, PageToken: page.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "ORD-003", page.Items[0].ID)

	_, err = repo.List(ctx, repositories.OrderListFilter{
		Pagination: domain.Pagination{PageToken: "bogus"},
	})
	assert.Error(t, err)
}

func TestOrderRepositoryUpdateDoesNotMutateSeedSlice(t *testing.T) {
	seed, err := LoadSeed()
	require.NoError(t, err)
	repo := NewOrderRepository(seed.Orders)
	ctx := context.Background()

	order, err := repo.FindByID(ctx, "ORD-004")
	require.NoError(t, err)
	order.Status = domain.OrderStatusProcessing
	require.NoError(t, repo.Update(ctx, order))

	assert.Equal(t, domain.OrderStatusPending, seed.Orders[3].Status)

	updated, err := repo.FindByID(ctx, "ORD-004")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
}

func TestRepositoryNotFoundCategorisation(t *testing.T) {
	repo := NewDisputeRepository(nil)
	_, err := repo.FindByID(context.Background(), "DISP-404")
	require.Error(t, err)

	var repoErr repositories.RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.True(t, repoErr.IsNotFound())
	assert.False(t, repoErr.IsConflict())
}

func TestDiscountRepositoryRejectsDuplicateCode(t *testing.T) {
	seed, err := LoadSeed()
	require.NoError(t, err)
	repo := NewDiscountRepository(seed.Discounts)

	err = repo.Insert(context.Background(), domain.Discount{ID: "DISC-100", Code: "summer20"})
	require.Error(t, err)

	var repoErr repositories.RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.True(t, repoErr.IsConflict())
}
