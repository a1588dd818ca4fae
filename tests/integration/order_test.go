//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderLifecycle(t *testing.T) {
	u := registerCustomer(t, "lifecycle@example.com")
	items := listItems(t)
	if len(items) < 2 {
		t.Fatalf("need at least 2 catalog items, got %d", len(items))
	}

	resp := doPost(t, "/api/orders", orderRequest{
		UserID: u.ID,
		Items: []orderRequestItem{
			{ItemID: items[0].ID, Quantity: 2},
			{ItemID: items[1].ID, Quantity: 1},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		t.Fatalf("place order: expected 201, got %d", resp.StatusCode)
	}
	o := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	if o.Status != "pending" {
		t.Errorf("status: got %q, want pending", o.Status)
	}
	if o.TotalCount != 3 {
		t.Errorf("total_count: got %d, want 3", o.TotalCount)
	}
	if len(o.Items) != 2 {
		t.Fatalf("line items: got %d, want 2", len(o.Items))
	}
	// Line items keep cart insertion order and snapshot the catalog price.
	if o.Items[0].ItemID != items[0].ID || o.Items[1].ItemID != items[1].ID {
		t.Error("line items not in cart insertion order")
	}
	if o.Items[0].OrderedPrice != items[0].Price {
		t.Errorf("ordered_price: got %s, want %s", o.Items[0].OrderedPrice, items[0].Price)
	}

	want := decimal.RequireFromString(items[0].Price).Mul(decimal.NewFromInt(2)).
		Add(decimal.RequireFromString(items[1].Price))
	if o.TotalCost != want.StringFixed(2) {
		t.Errorf("total_cost: got %s, want %s", o.TotalCost, want.StringFixed(2))
	}

	// Shipping before packaging is rejected.
	resp = doPost(t, "/api/orders/"+o.ID+"/ship", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("ship pending: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Fulfill every line item, then package and ship.
	for _, li := range o.Items {
		resp = doPost(t, fmt.Sprintf("/api/order-items/%d/fulfill", li.ID), nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("fulfill item %d: expected 204, got %d", li.ID, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp = doPost(t, "/api/orders/"+o.ID+"/package", nil)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("package: expected 200, got %d", resp.StatusCode)
	}
	o = decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if o.Status != "packaged" {
		t.Errorf("status after package: got %q, want packaged", o.Status)
	}
	if !o.AllFulfilled {
		t.Error("expected all line items fulfilled")
	}

	resp = doPost(t, "/api/orders/"+o.ID+"/ship", nil)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("ship: expected 200, got %d", resp.StatusCode)
	}
	o = decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if o.Status != "shipped" {
		t.Errorf("status after ship: got %q, want shipped", o.Status)
	}

	// Shipped is terminal.
	resp = doPost(t, "/api/orders/"+o.ID+"/cancel", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("cancel shipped: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The order shows up in the customer's history.
	resp = doGet(t, "/api/users/"+u.ID+"/orders")
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("user orders: expected 200, got %d", resp.StatusCode)
	}
	history := decodeJSON[[]orderResponse](t, resp)
	resp.Body.Close()
	if len(history) != 1 || history[0].ID != o.ID {
		t.Errorf("user history: got %d orders, want the shipped order", len(history))
	}
}

func TestCancelPendingOrder(t *testing.T) {
	u := registerCustomer(t, "cancel-flow@example.com")
	items := listItems(t)

	resp := doPost(t, "/api/orders", orderRequest{
		UserID: u.ID,
		Items:  []orderRequestItem{{ItemID: items[0].ID, Quantity: 1}},
	})
	o := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	resp = doPost(t, "/api/orders/"+o.ID+"/cancel", nil)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("cancel: expected 200, got %d", resp.StatusCode)
	}
	o = decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if o.Status != "cancelled" {
		t.Errorf("status: got %q, want cancelled", o.Status)
	}

	// Cancelled is terminal.
	resp = doPost(t, "/api/orders/"+o.ID+"/package", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("package cancelled: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestPlaceOrderUnknownItem(t *testing.T) {
	u := registerCustomer(t, "unknown-item@example.com")

	resp := doPost(t, "/api/orders", orderRequest{
		UserID: u.ID,
		Items:  []orderRequestItem{{ItemID: "00000000-0000-0000-0000-000000000000", Quantity: 1}},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	u := registerCustomer(t, "empty-cart@example.com")

	resp := doPost(t, "/api/orders", orderRequest{UserID: u.ID})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	resp := doGet(t, "/api/orders/00000000-0000-0000-0000-000000000000")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
