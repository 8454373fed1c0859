// Package checkout drives the buyer-side purchase flow: create an order,
// collect the payment through the provider surface, verify the result and
// land the buyer on a receipt page.
package checkout

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/nextdevhq/storefront/internal/config"
	"go.uber.org/zap"
)

type State string

const (
	StateIdle            State = "idle"
	StateAwaitingAuth    State = "awaiting_auth"
	StateCreatingOrder   State = "creating_order"
	StateAwaitingPayment State = "awaiting_payment"
	StateVerifying       State = "verifying"
	StateSucceeded       State = "succeeded"
	StateCancelled       State = "cancelled"
	StateFailed          State = "failed"
)

// Confirmation is the identifier triple handed back by the collection
// surface after a completed charge.
type Confirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

// OrderSummary is what the backend returns when an order is opened.
type OrderSummary struct {
	OrderID     string
	AmountMinor int64
	Currency    string
	KeyID       string
}

// PaymentsAPI is the backend pair of calls the flow depends on.
type PaymentsAPI interface {
	CreateOrder(ctx context.Context, productName string, amountMajor int64) (OrderSummary, error)
	VerifyPayment(ctx context.Context, confirm Confirmation, productName string, amountMajor int64) error
}

// SurfaceOptions configures the provider's collection surface.
type SurfaceOptions struct {
	KeyID        string
	AmountMinor  int64
	Currency     string
	Name         string
	Description  string
	OrderID      string
	PrefillEmail string
	ThemeColor   string

	// Exactly one of these fires per Open call.
	OnSuccess func(Confirmation)
	OnFailure func(description string)
	OnDismiss func()
}

// CollectionSurface opens the provider checkout and reports the outcome
// through the option callbacks before returning.
type CollectionSurface interface {
	Open(ctx context.Context, opts SurfaceOptions) error
}

type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

type Navigator interface {
	NavigateTo(rawurl string)
}

// Session is the logged-in buyer as the flow sees them.
type Session struct {
	Email string
}

// SessionSource reports the current session, or nil when logged out.
type SessionSource interface {
	Current(ctx context.Context) *Session
}

type Params struct {
	Cfg      config.Config
	Merchant *config.MerchantConfigHolder
	Payments PaymentsAPI
	Surface  CollectionSurface
	Notifier Notifier
	Nav      Navigator
	Sessions SessionSource
	Log      *zap.Logger
}

// Orchestrator owns the purchase state machine. Every outcome, including
// failure, collapses back to Idle so the buyer can retry.
type Orchestrator struct {
	cfg      config.Config
	merchant *config.MerchantConfigHolder
	payments PaymentsAPI
	surface  CollectionSurface
	notifier Notifier
	nav      Navigator
	sessions SessionSource
	log      *zap.Logger

	mu    sync.Mutex
	state State
}

func NewOrchestrator(p Params) *Orchestrator {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		cfg:      p.Cfg,
		merchant: p.Merchant,
		payments: p.Payments,
		surface:  p.Surface,
		notifier: p.Notifier,
		nav:      p.Nav,
		sessions: p.Sessions,
		log:      log.Named("checkout"),
		state:    StateIdle,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Purchase runs the flow for one product. Re-triggering while a purchase is
// in flight is a no-op.
func (o *Orchestrator) Purchase(ctx context.Context, productName string, amountMajor int64) {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return
	}
	o.state = StateAwaitingAuth
	o.mu.Unlock()

	// Whatever happens, the flow ends re-triggerable.
	defer o.setState(StateIdle)

	session := o.sessions.Current(ctx)
	if session == nil {
		o.notifier.Error("Please log in to continue")
		o.nav.NavigateTo("/auth")
		return
	}

	if o.testBypass() {
		o.log.Info("test bypass taken", zap.String("product", productName))
		o.setState(StateSucceeded)
		o.nav.NavigateTo(receiptURL(productName, amountMajor, "TEST_MODE"))
		return
	}

	o.setState(StateCreatingOrder)
	order, err := o.payments.CreateOrder(ctx, productName, amountMajor)
	if err != nil {
		o.log.Warn("order creation failed", zap.Error(err))
		o.setState(StateFailed)
		o.notifier.Error("Failed to create order. Please try again.")
		return
	}

	merchant := o.merchant.Get()
	o.setState(StateAwaitingPayment)
	openErr := o.surface.Open(ctx, SurfaceOptions{
		KeyID:        order.KeyID,
		AmountMinor:  order.AmountMinor,
		Currency:     order.Currency,
		Name:         merchant.DisplayName,
		Description:  productName,
		OrderID:      order.OrderID,
		PrefillEmail: session.Email,
		ThemeColor:   merchant.ThemeColor,
		OnSuccess: func(confirm Confirmation) {
			o.completePurchase(ctx, confirm, productName, amountMajor)
		},
		OnFailure: func(description string) {
			o.setState(StateFailed)
			o.notifier.Error("Payment failed: " + description)
		},
		OnDismiss: func() {
			o.setState(StateCancelled)
			o.notifier.Warn("Payment cancelled")
		},
	})
	if openErr != nil {
		o.log.Error("collection surface failed to open", zap.Error(openErr))
		o.setState(StateFailed)
		o.notifier.Error("Something went wrong. Please try again.")
	}
}

func (o *Orchestrator) completePurchase(ctx context.Context, confirm Confirmation, productName string, amountMajor int64) {
	o.setState(StateVerifying)
	if err := o.payments.VerifyPayment(ctx, confirm, productName, amountMajor); err != nil {
		o.log.Warn("payment verification failed", zap.String("order_id", confirm.OrderID), zap.Error(err))
		o.setState(StateFailed)
		o.notifier.Error("Payment verification failed. Contact support.")
		return
	}

	o.setState(StateSucceeded)
	o.notifier.Info("Payment successful")
	o.nav.NavigateTo(receiptURL(productName, amountMajor, confirm.PaymentID))
}

// testBypass is only reachable in development builds with the flag on.
func (o *Orchestrator) testBypass() bool {
	return o.cfg.CheckoutTestBypass && o.cfg.IsDevelopment()
}

func receiptURL(productName string, amountMajor int64, paymentID string) string {
	query := url.Values{}
	query.Set("productName", productName)
	query.Set("amount", strconv.FormatInt(amountMajor, 10))
	query.Set("paymentId", paymentID)
	return "/payment-success?" + query.Encode()
}
