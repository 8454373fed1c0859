package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/nextdevhq/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayments struct {
	createCalls int
	lastProduct string
	lastAmount  int64
	order       OrderSummary
	createErr   error

	verifyCalls   int
	lastConfirm   Confirmation
	verifyProduct string
	verifyErr     error
}

func (f *fakePayments) CreateOrder(ctx context.Context, productName string, amountMajor int64) (OrderSummary, error) {
	f.createCalls++
	f.lastProduct = productName
	f.lastAmount = amountMajor
	_ = ctx
	if f.createErr != nil {
		return OrderSummary{}, f.createErr
	}
	return f.order, nil
}

func (f *fakePayments) VerifyPayment(ctx context.Context, confirm Confirmation, productName string, amountMajor int64) error {
	f.verifyCalls++
	f.lastConfirm = confirm
	f.verifyProduct = productName
	_ = ctx
	_ = amountMajor
	return f.verifyErr
}

// fakeSurface resolves every Open call with a scripted outcome.
type fakeSurface struct {
	opens    int
	lastOpts SurfaceOptions
	outcome  func(opts SurfaceOptions)
	openErr  error
}

func (f *fakeSurface) Open(ctx context.Context, opts SurfaceOptions) error {
	f.opens++
	f.lastOpts = opts
	_ = ctx
	if f.openErr != nil {
		return f.openErr
	}
	if f.outcome != nil {
		f.outcome(opts)
	}
	return nil
}

type fakeNotifier struct {
	infos  []string
	warns  []string
	errors []string
}

func (f *fakeNotifier) Info(msg string)  { f.infos = append(f.infos, msg) }
func (f *fakeNotifier) Warn(msg string)  { f.warns = append(f.warns, msg) }
func (f *fakeNotifier) Error(msg string) { f.errors = append(f.errors, msg) }

type fakeNavigator struct {
	urls []string
}

func (f *fakeNavigator) NavigateTo(rawurl string) { f.urls = append(f.urls, rawurl) }

type fakeSessions struct {
	session *Session
}

func (f *fakeSessions) Current(ctx context.Context) *Session {
	_ = ctx
	return f.session
}

type fixture struct {
	payments *fakePayments
	surface  *fakeSurface
	notifier *fakeNotifier
	nav      *fakeNavigator
	sessions *fakeSessions
	orch     *Orchestrator
}

func newFixture(cfg config.Config) *fixture {
	f := &fixture{
		payments: &fakePayments{
			order: OrderSummary{
				OrderID:     "order_PRO499",
				AmountMinor: 49900,
				Currency:    "INR",
				KeyID:       "rzp_test_key",
			},
		},
		surface:  &fakeSurface{},
		notifier: &fakeNotifier{},
		nav:      &fakeNavigator{},
		sessions: &fakeSessions{session: &Session{Email: "buyer@example.com"}},
	}
	f.orch = NewOrchestrator(Params{
		Cfg: cfg,
		Merchant: config.StaticMerchantConfigHolder(config.MerchantConfig{
			DisplayName: "Next Developer",
			ThemeColor:  "#6C5CE7",
		}),
		Payments: f.payments,
		Surface:  f.surface,
		Notifier: f.notifier,
		Nav:      f.nav,
		Sessions: f.sessions,
	})
	return f
}

func TestPurchaseHappyPath(t *testing.T) {
	f := newFixture(config.Config{Environment: "production"})
	f.surface.outcome = func(opts SurfaceOptions) {
		opts.OnSuccess(Confirmation{
			OrderID:   opts.OrderID,
			PaymentID: "pay_123",
			Signature: "cafef00d",
		})
	}

	f.orch.Purchase(context.Background(), "Pro Membership", 499)

	require.Equal(t, 1, f.payments.createCalls)
	assert.Equal(t, "Pro Membership", f.payments.lastProduct)
	assert.Equal(t, int64(499), f.payments.lastAmount)

	require.Equal(t, 1, f.surface.opens)
	opts := f.surface.lastOpts
	assert.Equal(t, "rzp_test_key", opts.KeyID)
	assert.Equal(t, int64(49900), opts.AmountMinor)
	assert.Equal(t, "INR", opts.Currency)
	assert.Equal(t, "Next Developer", opts.Name)
	assert.Equal(t, "Pro Membership", opts.Description)
	assert.Equal(t, "order_PRO499", opts.OrderID)
	assert.Equal(t, "buyer@example.com", opts.PrefillEmail)
	assert.Equal(t, "#6C5CE7", opts.ThemeColor)

	require.Equal(t, 1, f.payments.verifyCalls)
	assert.Equal(t, "order_PRO499", f.payments.lastConfirm.OrderID)
	assert.Equal(t, "pay_123", f.payments.lastConfirm.PaymentID)

	require.Len(t, f.nav.urls, 1)
	parsed, err := url.Parse(f.nav.urls[0])
	require.NoError(t, err)
	assert.Equal(t, "/payment-success", parsed.Path)
	assert.Equal(t, "Pro Membership", parsed.Query().Get("productName"))
	assert.Equal(t, "499", parsed.Query().Get("amount"))
	assert.Equal(t, "pay_123", parsed.Query().Get("paymentId"))

	assert.NotEmpty(t, f.notifier.infos)
	assert.Equal(t, StateIdle, f.orch.State())
}

func TestPurchaseDismissalMakesNoVerifyCall(t *testing.T) {
	f := newFixture(config.Config{Environment: "production"})
	f.surface.outcome = func(opts SurfaceOptions) {
		opts.OnDismiss()
	}

	f.orch.Purchase(context.Background(), "Pro Membership", 499)

	assert.Equal(t, 0, f.payments.verifyCalls)
	assert.Empty(t, f.nav.urls)
	require.Len(t, f.notifier.warns, 1)
	assert.Equal(t, "Payment cancelled", f.notifier.warns[0])
	assert.Equal(t, StateIdle, f.orch.State())
}

func TestPurchaseProviderFailureSurfacesDescription(t *testing.T) {
	f := newFixture(config.Config{Environment: "production"})
	f.surface.outcome = func(opts SurfaceOptions) {
		opts.OnFailure("card declined by issuer")
	}

	f.orch.Purchase(context.Background(), "Pro Membership", 499)

	assert.Equal(t, 0, f.payments.verifyCalls)
	require.NotEmpty(t, f.notifier.errors)
	assert.True(t, strings.Contains(f.notifier.errors[0], "card declined by issuer"))
	assert.Equal(t, StateIdle, f.orch.State())
}

func TestPurchaseVerificationFailureAsksForSupport(t *testing.T) {
	f := newFixture(config.Config{Environment: "production"})
	f.payments.verifyErr = errors.New("verification rejected")
	f.surface.outcome = func(opts SurfaceOptions) {
		opts.OnSuccess(Confirmation{OrderID: opts.OrderID, PaymentID: "pay_123", Signature: "bad"})
	}

	f.orch.Purchase(context.Background(), "Pro Membership", 499)

	assert.Empty(t, f.nav.urls)
	require.NotEmpty(t, f.notifier.errors)
	assert.True(t, strings.Contains(f.notifier.errors[0], "Contact support"))
	assert.Equal(t, StateIdle, f.orch.State())
}

func TestPurchaseOrderFailureReturnsToIdle(t *testing.T) {
	f := newFixture(config.Config{Environment: "production"})
	f.payments.createErr = errors.New("upstream down")

	f.orch.Purchase(context.Background(), "Pro Membership", 499)

	assert.Equal(t, 0, f.surface.opens)
	require.NotEmpty(t, f.notifier.errors)
	assert.True(t, strings.Contains(f.notifier.errors[0], "Failed to create order"))
	assert.Equal(t, StateIdle, f.orch.State())
}

func TestPurchaseReentryIsNoOp(t *testing.T) {
	f := newFixture(config.Config{Environment: "production"})
	f.surface.outcome = func(opts SurfaceOptions) {
		// A second trigger while the surface is open must not start a
		// second flow.
		f.orch.Purchase(context.Background(), "Pro Membership", 499)
		opts.OnDismiss()
	}

	f.orch.Purchase(context.Background(), "Pro Membership", 499)

	assert.Equal(t, 1, f.payments.createCalls)
	assert.Equal(t, 1, f.surface.opens)
}

func TestPurchaseRequiresLogin(t *testing.T) {
	f := newFixture(config.Config{Environment: "production"})
	f.sessions.session = nil

	f.orch.Purchase(context.Background(), "Pro Membership", 499)

	assert.Equal(t, 0, f.payments.createCalls)
	require.Len(t, f.nav.urls, 1)
	assert.Equal(t, "/auth", f.nav.urls[0])
	require.NotEmpty(t, f.notifier.errors)
	assert.True(t, strings.Contains(f.notifier.errors[0], "log in"))
}

func TestBypassOnlyInDevelopment(t *testing.T) {
	prod := newFixture(config.Config{Environment: "production", CheckoutTestBypass: true})
	prod.surface.outcome = func(opts SurfaceOptions) { opts.OnDismiss() }

	prod.orch.Purchase(context.Background(), "Pro Membership", 499)

	// Bypass flag must be inert outside development.
	assert.Equal(t, 1, prod.payments.createCalls)

	dev := newFixture(config.Config{Environment: "development", CheckoutTestBypass: true})

	dev.orch.Purchase(context.Background(), "Pro Membership", 499)

	assert.Equal(t, 0, dev.payments.createCalls)
	require.Len(t, dev.nav.urls, 1)
	parsed, err := url.Parse(dev.nav.urls[0])
	require.NoError(t, err)
	assert.Equal(t, "TEST_MODE", parsed.Query().Get("paymentId"))
}

func TestSurfaceOpenErrorFailsSafely(t *testing.T) {
	f := newFixture(config.Config{Environment: "production"})
	f.surface.openErr = errors.New("script failed to load")

	f.orch.Purchase(context.Background(), "Pro Membership", 499)

	require.NotEmpty(t, f.notifier.errors)
	assert.True(t, strings.Contains(f.notifier.errors[0], "Something went wrong"))
	assert.Equal(t, StateIdle, f.orch.State())
}
