package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Merchant string
}

type SMTPProvider struct {
	cfg  Config
	tmpl *template.Template
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<html>
<body>
  <h2>Thanks for your purchase!</h2>
  <p>Your payment for <strong>{{.ProductName}}</strong> went through.</p>
  <ul>
    <li>Amount: {{.AmountDisplay}} {{.Currency}}</li>
    <li>Order: {{.OrderID}}</li>
    <li>Payment: {{.PaymentID}}</li>
  </ul>
  <p>Keep this mail as your receipt.</p>
</body>
</html>`))

func NewSMTP(cfg Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg, tmpl: receiptTemplate}
}

func (p *SMTPProvider) SendReceipt(ctx context.Context, to string, receipt Receipt) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("receipt recipient is empty")
	}

	data := struct {
		Receipt
		AmountDisplay string
	}{
		Receipt:       receipt,
		AmountDisplay: formatMinor(receipt.AmountMinor),
	}

	var body bytes.Buffer
	if err := p.tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	subject := fmt.Sprintf("Your %s receipt", receipt.ProductName)
	msg := buildMessage(p.cfg.From, to, subject, body.String())

	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)
	var auth smtp.Auth
	if p.cfg.Username != "" {
		auth = smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, p.cfg.From, []string{to}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send receipt: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	return msg.Bytes()
}

// formatMinor renders paise as rupees for display, e.g. 49900 -> "499.00".
func formatMinor(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
