package notify

import "context"

// Email is one derived notification message; two are produced per order.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer is the outbound email transport. A nil error means delivered; the
// pipeline never retries or tracks bounces beyond that.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}
