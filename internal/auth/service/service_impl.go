package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nextdevhq/storefront/internal/auth/domain"
	"github.com/nextdevhq/storefront/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

// Authenticate resolves a raw bearer token to a live session. The token is
// matched by hash; expiry and revocation are checked against the clock.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Session, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, domain.ErrInvalidSession
	}

	var session domain.Session
	err := s.db.WithContext(ctx).
		Where("session_token_hash = ?", hashToken(rawToken)).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}

	now := s.clock.Now()
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if !session.ExpiresAt.After(now) {
		return nil, domain.ErrSessionExpired
	}

	// Best effort; a failed touch must not fail authentication.
	if err := s.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ?", session.ID).
		Update("last_seen_at", now).Error; err != nil {
		s.log.Warn("session touch failed", zap.Error(err))
	}

	return &session, nil
}

// IssueSession mints a session for a known user and returns the raw token.
func (s *Service) IssueSession(ctx context.Context, userID snowflake.ID, ttl time.Duration) (*domain.IssueSessionResult, error) {
	rawToken, err := newRawToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := domain.Session{
		ID:               s.genID.Generate(),
		UserID:           userID,
		SessionTokenHash: hashToken(rawToken),
		ExpiresAt:        now.Add(ttl),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}

	return &domain.IssueSessionResult{Session: &session, RawToken: rawToken}, nil
}

func (s *Service) UserByID(ctx context.Context, userID snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func hashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

func newRawToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
