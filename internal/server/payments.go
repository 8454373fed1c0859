package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	orderdomain "github.com/nextdevhq/storefront/internal/order/domain"
	"github.com/nextdevhq/storefront/internal/providers/email"
	purchasedomain "github.com/nextdevhq/storefront/internal/purchase/domain"
	"go.uber.org/zap"
)

type createOrderRequest struct {
	ProductName string `json:"product_name"`
	Amount      int64  `json:"amount"`
}

type createOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// CreatePaymentOrder opens a provider order for the requested product. The
// amount is accepted in rupees and converted downstream.
func (s *Server) CreatePaymentOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ordersvc.CreateOrder(c.Request.Context(), orderdomain.CreateOrderRequest{
		ProductName: req.ProductName,
		AmountMajor: req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, createOrderResponse{
		OrderID:  resp.OrderID,
		Amount:   resp.AmountMinor,
		Currency: resp.Currency,
		// The key id is public; the key secret never leaves the server.
		KeyID: s.cfg.RazorpayKeyID,
	})
}

type verifyPaymentRequest struct {
	OrderID     string `json:"razorpay_order_id"`
	PaymentID   string `json:"razorpay_payment_id"`
	Signature   string `json:"razorpay_signature"`
	ProductName string `json:"product_name"`
	Amount      int64  `json:"amount"`
}

// VerifyPayment checks the provider signature for a completed charge and
// records the purchase against the authenticated user.
func (s *Server) VerifyPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err := s.purchasesvc.VerifyAndRecord(c.Request.Context(), purchasedomain.VerifyRequest{
		UserID: userID,
		Confirm: purchasedomain.Confirmation{
			OrderID:   strings.TrimSpace(req.OrderID),
			PaymentID: strings.TrimSpace(req.PaymentID),
			Signature: strings.TrimSpace(req.Signature),
		},
		ProductName: req.ProductName,
		AmountMajor: req.Amount,
	})
	if err != nil {
		s.log.Warn("payment verification rejected",
			zap.String("order_id", req.OrderID),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	s.sendReceipt(userID, req)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// sendReceipt mails a confirmation in the background. Delivery problems never
// affect the verify response; the purchase is already recorded.
func (s *Server) sendReceipt(userID snowflake.ID, req verifyPaymentRequest) {
	if s.emailer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := s.authsvc.UserByID(ctx, userID)
		if err != nil {
			s.log.Warn("receipt lookup failed", zap.Error(err))
			return
		}

		err = s.emailer.SendReceipt(ctx, user.Email, email.Receipt{
			ProductName: req.ProductName,
			AmountMinor: req.Amount * 100,
			Currency:    orderdomain.Currency,
			OrderID:     req.OrderID,
			PaymentID:   req.PaymentID,
		})
		if err != nil {
			s.log.Warn("receipt delivery failed", zap.Error(err))
		}
	}()
}
