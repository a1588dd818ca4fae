package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func lineItem(qty int, price string, fulfilled bool) OrderItem {
	return OrderItem{
		Quantity:     qty,
		OrderedPrice: decimal.RequireFromString(price),
		Fulfilled:    fulfilled,
	}
}

func TestTotalCount(t *testing.T) {
	o := &Order{Items: []OrderItem{
		lineItem(5, "5.00", false),
		lineItem(5, "5.00", false),
		lineItem(5, "5.00", false),
	}}

	assert.Equal(t, 15, o.TotalCount())
}

func TestTotalCost(t *testing.T) {
	o := &Order{Items: []OrderItem{
		lineItem(5, "5.00", false),
		lineItem(5, "5.00", false),
		lineItem(5, "5.00", false),
	}}

	assert.True(t, decimal.RequireFromString("75.00").Equal(o.TotalCost()))
}

func TestTotalCost_EmptyOrder(t *testing.T) {
	o := &Order{}
	assert.Equal(t, 0, o.TotalCount())
	assert.True(t, decimal.Zero.Equal(o.TotalCost()))
}

func TestAllFulfilled(t *testing.T) {
	o := &Order{Items: []OrderItem{
		lineItem(1, "1.00", true),
		lineItem(1, "1.00", false),
	}}
	assert.False(t, o.AllFulfilled())

	o.Items[1].Fulfilled = true
	assert.True(t, o.AllFulfilled())
}

func TestAllFulfilled_NoItems(t *testing.T) {
	assert.True(t, (&Order{}).AllFulfilled())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "packaged", StatusPackaged.String())
	assert.Equal(t, "shipped", StatusShipped.String())
	assert.Equal(t, "cancelled", StatusCancelled.String())
	assert.Equal(t, "unknown", Status(9).String())
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusPackaged, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPackaged, StatusShipped, true},
		{StatusPackaged, StatusCancelled, true},
		{StatusPackaged, StatusPackaged, false},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusPackaged, false},
		{StatusCancelled, StatusPackaged, false},
		{StatusCancelled, StatusShipped, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusPackaged.Terminal())
	assert.True(t, StatusShipped.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}
