package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/nextdevhq/storefront/internal/auth/domain"
	"github.com/nextdevhq/storefront/internal/config"
	orderdomain "github.com/nextdevhq/storefront/internal/order/domain"
	purchasedomain "github.com/nextdevhq/storefront/internal/purchase/domain"
	"go.uber.org/zap"
)

type fakeOrderService struct {
	calls   int
	lastReq orderdomain.CreateOrderRequest
	resp    orderdomain.CreateOrderResponse
	err     error
}

func (f *fakeOrderService) CreateOrder(ctx context.Context, req orderdomain.CreateOrderRequest) (orderdomain.CreateOrderResponse, error) {
	f.calls++
	f.lastReq = req
	_ = ctx
	if f.err != nil {
		return orderdomain.CreateOrderResponse{}, f.err
	}
	return f.resp, nil
}

type fakePurchaseService struct {
	verifyCalls int
	lastVerify  purchasedomain.VerifyRequest
	verifyErr   error
	listResp    purchasedomain.ListResponse
	listErr     error
}

func (f *fakePurchaseService) VerifyAndRecord(ctx context.Context, req purchasedomain.VerifyRequest) error {
	f.verifyCalls++
	f.lastVerify = req
	_ = ctx
	return f.verifyErr
}

func (f *fakePurchaseService) List(ctx context.Context, req purchasedomain.ListRequest) (purchasedomain.ListResponse, error) {
	_ = ctx
	_ = req
	return f.listResp, f.listErr
}

type fakeAuthService struct {
	session *authdomain.Session
	err     error
	tokens  []string
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.Session, error) {
	_ = ctx
	f.tokens = append(f.tokens, rawToken)
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeAuthService) IssueSession(ctx context.Context, userID snowflake.ID, ttl time.Duration) (*authdomain.IssueSessionResult, error) {
	_ = ctx
	_ = userID
	_ = ttl
	return nil, nil
}

func (f *fakeAuthService) UserByID(ctx context.Context, userID snowflake.ID) (*authdomain.User, error) {
	_ = ctx
	_ = userID
	return nil, nil
}

func testUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextUserIDKey, snowflake.ID(42))
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	return router
}

func TestCreatePaymentOrderReturnsOrder(t *testing.T) {
	ordersvc := &fakeOrderService{
		resp: orderdomain.CreateOrderResponse{
			OrderID:     "order_ABC123",
			AmountMinor: 49900,
			Currency:    "INR",
		},
	}
	srv := &Server{
		cfg:      config.Config{RazorpayKeyID: "rzp_test_key"},
		log:      zap.NewNop(),
		ordersvc: ordersvc,
	}

	router := newTestRouter()
	router.POST("/api/payments/orders", testUser(), srv.CreatePaymentOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/orders", bytes.NewBufferString(`{"product_name":"Pro Membership","amount":499}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ordersvc.lastReq.ProductName != "Pro Membership" || ordersvc.lastReq.AmountMajor != 499 {
		t.Fatalf("unexpected service request: %+v", ordersvc.lastReq)
	}

	var body createOrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.OrderID != "order_ABC123" {
		t.Fatalf("expected order id order_ABC123, got %q", body.OrderID)
	}
	if body.Amount != 49900 {
		t.Fatalf("expected minor-unit amount 49900, got %d", body.Amount)
	}
	if body.KeyID != "rzp_test_key" {
		t.Fatalf("expected public key id in response, got %q", body.KeyID)
	}
}

func TestCreatePaymentOrderRejectsMalformedBody(t *testing.T) {
	ordersvc := &fakeOrderService{}
	srv := &Server{log: zap.NewNop(), ordersvc: ordersvc}

	router := newTestRouter()
	router.POST("/api/payments/orders", testUser(), srv.CreatePaymentOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/orders", bytes.NewBufferString(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if ordersvc.calls != 0 {
		t.Fatal("expected order service not to be called")
	}
}

func TestCreatePaymentOrderMapsUpstreamFailure(t *testing.T) {
	srv := &Server{
		log:      zap.NewNop(),
		ordersvc: &fakeOrderService{err: orderdomain.ErrOrderCreationFailed},
	}

	router := newTestRouter()
	router.POST("/api/payments/orders", testUser(), srv.CreatePaymentOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/orders", bytes.NewBufferString(`{"product_name":"Pro Membership","amount":499}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", resp.Code)
	}
}

func TestVerifyPaymentRecordsForSessionUser(t *testing.T) {
	purchasesvc := &fakePurchaseService{}
	srv := &Server{log: zap.NewNop(), purchasesvc: purchasesvc}

	router := newTestRouter()
	router.POST("/api/payments/verify", testUser(), srv.VerifyPayment)

	payload := `{"razorpay_order_id":"order_A","razorpay_payment_id":"pay_B","razorpay_signature":"deadbeef","product_name":"Pro Membership","amount":499}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/verify", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if purchasesvc.verifyCalls != 1 {
		t.Fatalf("expected one verify call, got %d", purchasesvc.verifyCalls)
	}
	if purchasesvc.lastVerify.UserID != snowflake.ID(42) {
		t.Fatalf("expected session user id 42, got %v", purchasesvc.lastVerify.UserID)
	}
	if purchasesvc.lastVerify.Confirm.OrderID != "order_A" || purchasesvc.lastVerify.Confirm.PaymentID != "pay_B" {
		t.Fatalf("unexpected confirmation: %+v", purchasesvc.lastVerify.Confirm)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if success, _ := body["success"].(bool); !success {
		t.Fatalf("expected success true, got %v", body)
	}
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	srv := &Server{
		log:         zap.NewNop(),
		purchasesvc: &fakePurchaseService{verifyErr: purchasedomain.ErrVerificationFailed},
	}

	router := newTestRouter()
	router.POST("/api/payments/verify", testUser(), srv.VerifyPayment)

	payload := `{"razorpay_order_id":"order_A","razorpay_payment_id":"pay_B","razorpay_signature":"bogus","product_name":"Pro Membership","amount":499}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/verify", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error.Type != "payment_verification_failed" {
		t.Fatalf("expected payment_verification_failed, got %q", body.Error.Type)
	}
}

func TestVerifyPaymentRecordingFailureIs500(t *testing.T) {
	srv := &Server{
		log:         zap.NewNop(),
		purchasesvc: &fakePurchaseService{verifyErr: purchasedomain.ErrRecordingFailed},
	}

	router := newTestRouter()
	router.POST("/api/payments/verify", testUser(), srv.VerifyPayment)

	payload := `{"razorpay_order_id":"order_A","razorpay_payment_id":"pay_B","razorpay_signature":"deadbeef"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/verify", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	authsvc := &fakeAuthService{}
	srv := &Server{log: zap.NewNop(), authsvc: authsvc}

	router := newTestRouter()
	router.POST("/api/payments/orders", srv.AuthRequired(), srv.CreatePaymentOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/orders", bytes.NewBufferString(`{"product_name":"Pro Membership","amount":499}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
	if len(authsvc.tokens) != 0 {
		t.Fatal("expected auth service not to be called without a token")
	}
}

func TestAuthRequiredRejectsExpiredSession(t *testing.T) {
	srv := &Server{
		log:     zap.NewNop(),
		authsvc: &fakeAuthService{err: authdomain.ErrSessionExpired},
	}

	router := newTestRouter()
	router.POST("/api/payments/orders", srv.AuthRequired(), srv.CreatePaymentOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/orders", bytes.NewBufferString(`{"product_name":"Pro Membership","amount":499}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer stale-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestAuthRequiredAcceptsBearerToken(t *testing.T) {
	ordersvc := &fakeOrderService{resp: orderdomain.CreateOrderResponse{OrderID: "order_A", AmountMinor: 49900, Currency: "INR"}}
	srv := &Server{
		log:      zap.NewNop(),
		authsvc:  &fakeAuthService{session: &authdomain.Session{UserID: snowflake.ID(7)}},
		ordersvc: ordersvc,
	}

	router := newTestRouter()
	router.POST("/api/payments/orders", srv.AuthRequired(), srv.CreatePaymentOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/orders", bytes.NewBufferString(`{"product_name":"Pro Membership","amount":499}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ordersvc.calls != 1 {
		t.Fatalf("expected one order call, got %d", ordersvc.calls)
	}
}

func TestRateLimitedRejectsWhenBucketEmpty(t *testing.T) {
	srv := &Server{log: zap.NewNop(), ordersvc: &fakeOrderService{}}

	router := newTestRouter()
	deny := func(c *gin.Context) (bool, error) { return false, nil }
	router.POST("/api/payments/orders", testUser(), srv.RateLimited(deny), srv.CreatePaymentOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/orders", bytes.NewBufferString(`{"product_name":"Pro Membership","amount":499}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", resp.Code)
	}
}

func TestRateLimitedDisabledLimiterAllows(t *testing.T) {
	ordersvc := &fakeOrderService{resp: orderdomain.CreateOrderResponse{OrderID: "order_A", AmountMinor: 49900, Currency: "INR"}}
	srv := &Server{log: zap.NewNop(), ordersvc: ordersvc}

	router := newTestRouter()
	router.POST("/api/payments/orders", testUser(), srv.RateLimited(srv.allowOrder), srv.CreatePaymentOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/orders", bytes.NewBufferString(`{"product_name":"Pro Membership","amount":499}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCORSPreflightAnswered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS("https://shop.example.com"))
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/payments/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/payments/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
