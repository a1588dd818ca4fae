//go:build integration

package integration

import (
	"net/http"
	"testing"
)

// statusBucket mirrors the admin listing order: packaged first, then pending,
// then shipped, cancelled last.
func statusBucket(status string) int {
	switch status {
	case "packaged":
		return 0
	case "pending":
		return 1
	case "shipped":
		return 2
	default:
		return 3
	}
}

func TestAdminOrdersSortedByStatus(t *testing.T) {
	resp := doGet(t, "/api/admin/orders")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	orders := decodeJSON[[]orderResponse](t, resp)
	if len(orders) == 0 {
		t.Fatal("expected seeded orders")
	}

	prev := -1
	for _, o := range orders {
		b := statusBucket(o.Status)
		if b < prev {
			t.Fatalf("orders out of status order: %q after bucket %d", o.Status, prev)
		}
		prev = b
	}
}

func TestLargestOrders(t *testing.T) {
	resp := doGet(t, "/api/admin/orders/largest")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	orders := decodeJSON[[]orderResponse](t, resp)
	if len(orders) == 0 || len(orders) > 3 {
		t.Fatalf("expected 1..3 orders, got %d", len(orders))
	}
}

func TestAdminStats(t *testing.T) {
	resp := doGet(t, "/api/admin/stats")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	stats := decodeJSON[adminStatsResponse](t, resp)

	if len(stats.TopSellers) == 0 || len(stats.TopSellers) > 3 {
		t.Errorf("top_sellers: got %d entries, want 1..3", len(stats.TopSellers))
	}
	for _, s := range stats.TopSellers {
		if s.Revenue == "" {
			t.Errorf("seller %s has no revenue", s.Name)
		}
	}

	if len(stats.FastestFulfilling) != len(stats.SlowestFulfilling) {
		t.Errorf("fulfillment lists differ in length: %d vs %d",
			len(stats.FastestFulfilling), len(stats.SlowestFulfilling))
	}
	if len(stats.TopCities) > 3 || len(stats.TopStates) > 3 {
		t.Errorf("top cities/states exceed 3: %d/%d", len(stats.TopCities), len(stats.TopStates))
	}
}

func TestMerchantStats(t *testing.T) {
	items := listItems(t)
	if len(items) == 0 {
		t.Fatal("expected seeded items")
	}
	merchantID := items[0].MerchantID

	resp := doGet(t, "/api/merchants/"+merchantID+"/stats")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	stats := decodeJSON[merchantStatsResponse](t, resp)

	if len(stats.TopItems) > 5 {
		t.Errorf("top_items: got %d entries, want at most 5", len(stats.TopItems))
	}
	if stats.PctSold < 0 || stats.PctSold > 100 {
		t.Errorf("pct_sold out of range: %f", stats.PctSold)
	}
	if stats.ItemsSold < 0 {
		t.Errorf("items_sold negative: %d", stats.ItemsSold)
	}
}

func TestMerchantOrders(t *testing.T) {
	items := listItems(t)
	if len(items) == 0 {
		t.Fatal("expected seeded items")
	}

	resp := doGet(t, "/api/merchants/"+items[0].MerchantID+"/orders")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	orders := decodeJSON[[]orderResponse](t, resp)
	if len(orders) == 0 {
		t.Fatal("expected orders containing this merchant's items")
	}
}

func TestMerchantItems(t *testing.T) {
	items := listItems(t)
	if len(items) == 0 {
		t.Fatal("expected seeded items")
	}
	merchantID := items[0].MerchantID

	resp := doGet(t, "/api/merchants/"+merchantID+"/items")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got := decodeJSON[[]itemResponse](t, resp)
	if len(got) == 0 {
		t.Fatal("expected items for merchant")
	}
	for _, it := range got {
		if it.MerchantID != merchantID {
			t.Errorf("item %s belongs to %s, want %s", it.ID, it.MerchantID, merchantID)
		}
	}
}
