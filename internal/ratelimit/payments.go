package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nextdevhq/storefront/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyPaymentOrder  = "payments:order:%s"
	keyPaymentVerify = "payments:verify:%s"
)

// PaymentsLimiter throttles the payment endpoints per caller. A disabled
// limiter allows everything, so deployments without redis keep working.
type PaymentsLimiter struct {
	enabled bool

	bucket *TokenBucket

	orderRate   float64
	orderBurst  int
	verifyRate  float64
	verifyBurst int
}

func NewPaymentsLimiter(cfg config.Config) (*PaymentsLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.PaymentOrderRate <= 0 || limitCfg.PaymentOrderBurst <= 0 {
		return nil, errors.New("payment order rate limit must be positive")
	}
	if limitCfg.PaymentVerifyRate <= 0 || limitCfg.PaymentVerifyBurst <= 0 {
		return nil, errors.New("payment verify rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &PaymentsLimiter{
		enabled:     true,
		bucket:      NewTokenBucket(client),
		orderRate:   limitCfg.PaymentOrderRate,
		orderBurst:  limitCfg.PaymentOrderBurst,
		verifyRate:  limitCfg.PaymentVerifyRate,
		verifyBurst: limitCfg.PaymentVerifyBurst,
	}, nil
}

func (l *PaymentsLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowOrder reports whether the caller may open another payment order.
func (l *PaymentsLimiter) AllowOrder(ctx context.Context, callerKey string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyPaymentOrder, strings.TrimSpace(callerKey)), l.orderRate, l.orderBurst)
}

// AllowVerify reports whether the caller may attempt another verification.
// Verification attempts are throttled harder: a flood of attempts is a
// signature brute-force, not a buyer retrying.
func (l *PaymentsLimiter) AllowVerify(ctx context.Context, callerKey string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyPaymentVerify, strings.TrimSpace(callerKey)), l.verifyRate, l.verifyBurst)
}
