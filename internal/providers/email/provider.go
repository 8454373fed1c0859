package email

import "context"

// Receipt is the content of a purchase confirmation mail.
type Receipt struct {
	ProductName string
	AmountMinor int64
	Currency    string
	OrderID     string
	PaymentID   string
}

type Provider interface {
	SendReceipt(ctx context.Context, to string, receipt Receipt) error
}

// NoOpProvider is used when SMTP is not configured.
type NoOpProvider struct{}

func (p *NoOpProvider) SendReceipt(ctx context.Context, to string, receipt Receipt) error {
	return nil
}
