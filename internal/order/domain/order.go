// Package domain contains core types for the order service.
package domain

import (
	"context"
	"errors"
)

// Currency is fixed for the storefront; the provider order and the checkout
// surface must agree on it.
const Currency = "INR"

var (
	ErrInvalidRequest      = errors.New("invalid order request")
	ErrOrderCreationFailed = errors.New("order creation failed")
)

// CreateOrderRequest is a purchase intent: what the buyer wants and the
// display price in major units (rupees).
type CreateOrderRequest struct {
	ProductName string
	AmountMajor int64
}

// CreateOrderResponse carries the provider order handle and the minor-unit
// amount echoed back for client display consistency.
type CreateOrderResponse struct {
	OrderID     string
	AmountMinor int64
	Currency    string
}

type Service interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error)
}
