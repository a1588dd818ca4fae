package analytics

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Dashboard limits mirror the storefront views: five top items per merchant,
// three entries for every other ranking.
const (
	topItemsLimit = 5
	rankingLimit  = 3
)

// Service exposes the dashboard metrics with their fixed limits and derived
// values, delegating raw aggregation to a Repository.
type Service struct {
	repo Repository
}

// NewService creates an analytics Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// TopItems returns the merchant's top 5 items by units sold.
func (s *Service) TopItems(ctx context.Context, merchantID string) ([]ItemSales, error) {
	return s.repo.TopItems(ctx, merchantID, topItemsLimit)
}

// TopStates returns the merchant's top 3 buyer states by shipped orders.
func (s *Service) TopStates(ctx context.Context, merchantID string) ([]PlaceOrders, error) {
	return s.repo.TopStates(ctx, merchantID, rankingLimit)
}

// TopCities returns the merchant's top 3 buyer state+city pairs by shipped
// orders.
func (s *Service) TopCities(ctx context.Context, merchantID string) ([]PlaceOrders, error) {
	return s.repo.TopCities(ctx, merchantID, rankingLimit)
}

// TopUserOrders returns the single buyer with the most shipped orders from
// this merchant, or nil when the merchant has no shipped orders.
func (s *Service) TopUserOrders(ctx context.Context, merchantID string) (*BuyerOrders, error) {
	rows, err := s.repo.TopBuyersByOrders(ctx, merchantID, 1)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// TopUserItems returns the single buyer with the most units purchased from
// this merchant, or nil when the merchant has no shipped orders.
func (s *Service) TopUserItems(ctx context.Context, merchantID string) (*BuyerItems, error) {
	rows, err := s.repo.TopBuyersByItems(ctx, merchantID, 1)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// TopUsersMoney returns the merchant's top 3 buyers by revenue.
func (s *Service) TopUsersMoney(ctx context.Context, merchantID string) ([]BuyerRevenue, error) {
	return s.repo.TopBuyersByRevenue(ctx, merchantID, rankingLimit)
}

// ItemsSold returns the total units of this merchant's items across shipped
// orders.
func (s *Service) ItemsSold(ctx context.Context, merchantID string) (int64, error) {
	return s.repo.ItemsSold(ctx, merchantID)
}

// PctSold returns sold / (inventory + sold) * 100, the depletion rate of the
// merchant's stock. A merchant with nothing in stock and nothing sold gets 0.
func (s *Service) PctSold(ctx context.Context, merchantID string) (float64, error) {
	sold, err := s.repo.ItemsSold(ctx, merchantID)
	if err != nil {
		return 0, errors.Wrap(err, "items sold")
	}
	inventory, err := s.repo.Inventory(ctx, merchantID)
	if err != nil {
		return 0, errors.Wrap(err, "inventory")
	}
	if inventory+sold == 0 {
		return 0, nil
	}
	return float64(sold) / float64(inventory+sold) * 100, nil
}

// PendingOrders returns the IDs of pending orders containing any of this
// merchant's items.
func (s *Service) PendingOrders(ctx context.Context, merchantID string) ([]string, error) {
	return s.repo.PendingOrderIDs(ctx, merchantID)
}

// AverageTime returns the average elapsed time between a line item's creation
// and last update across all the merchant's line items, fulfilled or not.
func (s *Service) AverageTime(ctx context.Context, merchantID string) (time.Duration, error) {
	return s.repo.AverageFulfillmentTime(ctx, merchantID)
}

// TopThreeSellers ranks merchants by revenue from shipped orders.
func (s *Service) TopThreeSellers(ctx context.Context) ([]SellerRevenue, error) {
	return s.repo.TopSellers(ctx, rankingLimit)
}

// SortByFulfillment ranks the 3 fastest or slowest merchants by average
// fulfillment time over line items actually marked fulfilled.
func (s *Service) SortByFulfillment(ctx context.Context, dir Direction) ([]SellerFulfillment, error) {
	if dir != Asc && dir != Desc {
		return nil, errors.Errorf("invalid direction %q", dir)
	}
	return s.repo.SellersByFulfillment(ctx, dir, rankingLimit)
}

// TopThreeCities returns the platform-wide top 3 buyer cities by shipped
// orders.
func (s *Service) TopThreeCities(ctx context.Context) ([]PlaceOrders, error) {
	return s.repo.TopCitiesGlobal(ctx, rankingLimit)
}

// TopThreeStates returns the platform-wide top 3 buyer states by shipped
// orders.
func (s *Service) TopThreeStates(ctx context.Context) ([]PlaceOrders, error) {
	return s.repo.TopStatesGlobal(ctx, rankingLimit)
}
