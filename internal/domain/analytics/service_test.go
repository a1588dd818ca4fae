package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAnalyticsRepo struct {
	itemsSold int64
	inventory int64

	buyersByOrders []BuyerOrders
	buyersByItems  []BuyerItems

	lastDir   Direction
	lastLimit int
}

func (m *mockAnalyticsRepo) TopItems(_ context.Context, _ string, limit int) ([]ItemSales, error) {
	m.lastLimit = limit
	return nil, nil
}

func (m *mockAnalyticsRepo) TopStates(_ context.Context, _ string, limit int) ([]PlaceOrders, error) {
	m.lastLimit = limit
	return nil, nil
}

func (m *mockAnalyticsRepo) TopCities(_ context.Context, _ string, limit int) ([]PlaceOrders, error) {
	m.lastLimit = limit
	return nil, nil
}

func (m *mockAnalyticsRepo) TopBuyersByOrders(_ context.Context, _ string, limit int) ([]BuyerOrders, error) {
	m.lastLimit = limit
	if len(m.buyersByOrders) > limit {
		return m.buyersByOrders[:limit], nil
	}
	return m.buyersByOrders, nil
}

func (m *mockAnalyticsRepo) TopBuyersByItems(_ context.Context, _ string, limit int) ([]BuyerItems, error) {
	m.lastLimit = limit
	if len(m.buyersByItems) > limit {
		return m.buyersByItems[:limit], nil
	}
	return m.buyersByItems, nil
}

func (m *mockAnalyticsRepo) TopBuyersByRevenue(_ context.Context, _ string, limit int) ([]BuyerRevenue, error) {
	m.lastLimit = limit
	return []BuyerRevenue{{Name: "b1", Revenue: decimal.NewFromInt(10)}}, nil
}

func (m *mockAnalyticsRepo) ItemsSold(_ context.Context, _ string) (int64, error) {
	return m.itemsSold, nil
}

func (m *mockAnalyticsRepo) Inventory(_ context.Context, _ string) (int64, error) {
	return m.inventory, nil
}

func (m *mockAnalyticsRepo) PendingOrderIDs(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func (m *mockAnalyticsRepo) AverageFulfillmentTime(_ context.Context, _ string) (time.Duration, error) {
	return 90 * time.Minute, nil
}

func (m *mockAnalyticsRepo) TopSellers(_ context.Context, limit int) ([]SellerRevenue, error) {
	m.lastLimit = limit
	return nil, nil
}

func (m *mockAnalyticsRepo) SellersByFulfillment(_ context.Context, dir Direction, limit int) ([]SellerFulfillment, error) {
	m.lastDir = dir
	m.lastLimit = limit
	return nil, nil
}

func (m *mockAnalyticsRepo) TopCitiesGlobal(_ context.Context, limit int) ([]PlaceOrders, error) {
	m.lastLimit = limit
	return nil, nil
}

func (m *mockAnalyticsRepo) TopStatesGlobal(_ context.Context, limit int) ([]PlaceOrders, error) {
	m.lastLimit = limit
	return nil, nil
}

func TestPctSold(t *testing.T) {
	repo := &mockAnalyticsRepo{itemsSold: 25, inventory: 75}
	svc := NewService(repo)

	pct, err := svc.PctSold(context.Background(), "m1")
	require.NoError(t, err)
	assert.InDelta(t, 25.0, pct, 1e-9)
}

func TestPctSold_NothingStockedOrSold(t *testing.T) {
	svc := NewService(&mockAnalyticsRepo{})

	pct, err := svc.PctSold(context.Background(), "m1")
	require.NoError(t, err)
	assert.Zero(t, pct)
}

func TestPctSold_EverythingSold(t *testing.T) {
	svc := NewService(&mockAnalyticsRepo{itemsSold: 10})

	pct, err := svc.PctSold(context.Background(), "m1")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, pct, 1e-9)
}

func TestTopUserOrders_SingleRow(t *testing.T) {
	repo := &mockAnalyticsRepo{buyersByOrders: []BuyerOrders{
		{Name: "alice", Orders: 9},
		{Name: "bob", Orders: 3},
	}}
	svc := NewService(repo)

	top, err := svc.TopUserOrders(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, top)
	assert.Equal(t, "alice", top.Name)
	assert.Equal(t, 1, repo.lastLimit)
}

func TestTopUserOrders_NoShippedOrders(t *testing.T) {
	svc := NewService(&mockAnalyticsRepo{})

	top, err := svc.TopUserOrders(context.Background(), "m1")
	require.NoError(t, err)
	assert.Nil(t, top)
}

func TestTopUserItems_SingleRow(t *testing.T) {
	repo := &mockAnalyticsRepo{buyersByItems: []BuyerItems{{Name: "carol", Units: 40}}}
	svc := NewService(repo)

	top, err := svc.TopUserItems(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, top)
	assert.Equal(t, int64(40), top.Units)
}

func TestRankingLimits(t *testing.T) {
	repo := &mockAnalyticsRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.TopItems(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastLimit)

	_, err = svc.TopStates(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 3, repo.lastLimit)

	_, err = svc.TopThreeSellers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.lastLimit)

	_, err = svc.TopThreeCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.lastLimit)
}

func TestSortByFulfillment_Direction(t *testing.T) {
	repo := &mockAnalyticsRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.SortByFulfillment(ctx, Asc)
	require.NoError(t, err)
	assert.Equal(t, Asc, repo.lastDir)

	_, err = svc.SortByFulfillment(ctx, Desc)
	require.NoError(t, err)
	assert.Equal(t, Desc, repo.lastDir)

	_, err = svc.SortByFulfillment(ctx, Direction("sideways"))
	require.Error(t, err)
}
