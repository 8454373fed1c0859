package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/nextdevhq/storefront/internal/clock"
	"github.com/nextdevhq/storefront/internal/config"
	"github.com/nextdevhq/storefront/internal/observability/logger"
	"github.com/nextdevhq/storefront/internal/observability/metrics"
	"github.com/nextdevhq/storefront/internal/providers/razorpay"
	"github.com/nextdevhq/storefront/internal/purchase/domain"
	"github.com/nextdevhq/storefront/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Cfg        config.Config
	Clock      clock.Clock
	Repo       domain.Repository
	ObsMetrics *metrics.Metrics `optional:"true"`
}

// Service is the only component allowed to write purchase rows. It holds the
// service-level DB handle and the provider key secret; neither leaves it.
type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	keySecret  string
	clock      clock.Clock
	repo       domain.Repository
	obsMetrics *metrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("purchase.service"),
		genID:      p.GenID,
		keySecret:  p.Cfg.RazorpayKeySecret,
		clock:      p.Clock,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

// VerifyAndRecord authoritatively decides whether a payment confirmation is
// real, and records the sale only after the signature checks out. There is no
// path to the insert that skips verification.
func (s *Service) VerifyAndRecord(ctx context.Context, req domain.VerifyRequest) error {
	confirm := req.Confirm
	if strings.TrimSpace(confirm.OrderID) == "" ||
		strings.TrimSpace(confirm.PaymentID) == "" ||
		strings.TrimSpace(confirm.Signature) == "" {
		return domain.ErrMissingConfirmation
	}

	log := logger.WithContext(ctx, s.log).With(
		zap.String("order_id", confirm.OrderID),
		zap.String("payment_id", confirm.PaymentID),
	)

	if !razorpay.VerifySignature(confirm.OrderID, confirm.PaymentID, confirm.Signature, s.keySecret) {
		log.Warn("signature mismatch, possible tampering")
		s.obsMetrics.RecordVerification(metrics.ResultInvalidSignature)
		return domain.ErrVerificationFailed
	}

	productName := strings.TrimSpace(req.ProductName)
	if productName == "" {
		productName = "Unknown Product"
	}

	rec := &domain.Record{
		ID:          s.genID.Generate(),
		UserID:      req.UserID,
		ProductName: productName,
		AmountMinor: req.AmountMajor * 100,
		OrderID:     confirm.OrderID,
		PaymentID:   confirm.PaymentID,
		Status:      domain.StatusPaid,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, rec); err != nil {
		if errors.Is(err, domain.ErrDuplicateRecord) {
			// The pair was already verified and recorded; repeating the call
			// must not mint a second row.
			log.Info("duplicate confirmation ignored")
			s.obsMetrics.RecordVerification(metrics.ResultDuplicate)
			return nil
		}
		log.Error("purchase insert failed", zap.Error(err))
		s.obsMetrics.RecordVerification(metrics.ResultRecordingFailed)
		return domain.ErrRecordingFailed
	}

	log.Info("purchase recorded", zap.String("user_id", req.UserID.String()))
	s.obsMetrics.RecordVerification(metrics.ResultVerified)
	return nil
}

// List returns the caller's purchases, newest first, with cursor pagination.
func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	pageSize := req.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 250 {
		pageSize = 250
	}

	var afterID *snowflake.ID
	if token := strings.TrimSpace(req.Pagination.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.ListResponse{}, err
		}
		parsed, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return domain.ListResponse{}, err
		}
		id := snowflake.ID(parsed)
		afterID = &id
	}

	records, err := s.repo.ListByUser(ctx, s.db, req.UserID, pageSize+1, afterID)
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo, records := pagination.BuildCursorPageInfo(records, int32(pageSize), func(rec *domain.Record) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: rec.ID.String()})
		return token
	})

	return domain.ListResponse{Records: records, PageInfo: pageInfo}, nil
}
