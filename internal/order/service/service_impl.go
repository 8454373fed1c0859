package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nextdevhq/storefront/internal/observability/metrics"
	orderdomain "github.com/nextdevhq/storefront/internal/order/domain"
	"github.com/nextdevhq/storefront/internal/providers/razorpay"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ProviderClient creates orders with the payment provider.
type ProviderClient interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Client     ProviderClient
	ObsMetrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	client     ProviderClient
	obsMetrics *metrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		log:        p.Log.Named("order.service"),
		client:     p.Client,
		obsMetrics: p.ObsMetrics,
	}
}

// CreateOrder validates the purchase intent and creates a provider order.
// Validation happens before any outbound call; provider failures are logged
// with upstream detail but surfaced as ErrOrderCreationFailed only.
func (s *Service) CreateOrder(ctx context.Context, req orderdomain.CreateOrderRequest) (orderdomain.CreateOrderResponse, error) {
	productName := strings.TrimSpace(req.ProductName)
	if productName == "" || req.AmountMajor <= 0 {
		return orderdomain.CreateOrderResponse{}, orderdomain.ErrInvalidRequest
	}

	amountMinor := req.AmountMajor * 100
	receipt := newReceiptToken()

	order, err := s.client.CreateOrder(ctx, razorpay.OrderRequest{
		AmountMinor: amountMinor,
		Currency:    orderdomain.Currency,
		Receipt:     receipt,
		Notes:       map[string]string{"product_name": productName},
	})
	if err != nil {
		s.log.Error("provider order creation failed",
			zap.String("product_name", productName),
			zap.Int64("amount_minor", amountMinor),
			zap.Error(err),
		)
		s.obsMetrics.RecordOrderFailure()
		return orderdomain.CreateOrderResponse{}, orderdomain.ErrOrderCreationFailed
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("product_name", productName),
		zap.Int64("amount_minor", amountMinor),
	)
	s.obsMetrics.RecordOrderCreated()

	return orderdomain.CreateOrderResponse{
		OrderID:     order.ID,
		AmountMinor: amountMinor,
		Currency:    orderdomain.Currency,
	}, nil
}

// newReceiptToken builds a merchant receipt unique per creation call so
// concurrent orders never collide on provider-side idempotency.
func newReceiptToken() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("rcpt_%d_%s", time.Now().UnixNano(), suffix)
}
