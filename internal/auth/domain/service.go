package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Authenticate resolves a raw bearer token to a live session.
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
	// IssueSession mints a session for a known user and returns the raw token.
	IssueSession(ctx context.Context, userID snowflake.ID, ttl time.Duration) (*IssueSessionResult, error)
	// UserByID loads the user behind a session, for checkout prefill.
	UserByID(ctx context.Context, userID snowflake.ID) (*User, error)
}

type IssueSessionResult struct {
	Session  *Session
	RawToken string
}
