package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"go.uber.org/zap"
)

// DefaultAdminEmail receives the admin notification when the order record
// does not name one.
const DefaultAdminEmail = "a.lawry98@gmail.com"

const timestampLayout = "2006-01-02 15:04:05"

// Result is the success payload reported back to the storefront.
type Result struct {
	OrderRef string
	Message  string
}

// Notifier validates an incoming order record, renders the customer and
// admin confirmation emails, dispatches both, and reports the combined
// outcome. The pipeline is strictly linear: audit log, field validation,
// email syntax, render, dispatch, send-result log, respond. No step is
// retried and nothing is rolled back.
type Notifier struct {
	mailer     Mailer
	orderLog   AppendLogger
	sendLog    AppendLogger
	adminEmail string
	logger     *zap.Logger
}

func New(mailer Mailer, orderLog, sendLog AppendLogger, adminEmail string, logger *zap.Logger) *Notifier {
	if adminEmail == "" {
		adminEmail = DefaultAdminEmail
	}
	return &Notifier{
		mailer:     mailer,
		orderLog:   orderLog,
		sendLog:    sendLog,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Process runs one order record through the pipeline. Errors map onto the
// taxonomy in errors.go; any error aborts the remaining steps.
func (n *Notifier) Process(ctx context.Context, body io.Reader) (*Result, error) {
	var raw map[string]any
	if err := json.NewDecoder(body).Decode(&raw); err != nil || raw == nil {
		return nil, ErrMalformedInput
	}

	n.appendIntake(raw)

	if err := validate(raw); err != nil {
		return nil, err
	}

	ectx := EmailContext{
		CustomerName:    stringField(raw, "customer_name"),
		CustomerEmail:   stringField(raw, "customer_email"),
		CustomerPhone:   stringField(raw, "customer_phone"),
		CustomerAddress: stringField(raw, "customer_address"),
		Customization:   stringField(raw, "customization"),
		OrderRef:        stringField(raw, "order_ref"),
		OrderDate:       stringField(raw, "order_date"),
		OrderItems:      template.HTML(stringField(raw, "order_items")),
		OrderTotal:      stringField(raw, "order_total"),
		PaymentMethod:   stringField(raw, "payment_method"),
	}

	customerHTML, err := RenderCustomerEmail(ectx)
	if err != nil {
		return nil, fmt.Errorf("failed to render customer email: %w", err)
	}
	adminHTML, err := RenderAdminEmail(ectx)
	if err != nil {
		return nil, fmt.Errorf("failed to render admin email: %w", err)
	}

	customerTo := stringField(raw, "to")
	adminTo := stringField(raw, "admin_email")
	if adminTo == "" {
		adminTo = n.adminEmail
	}

	customerErr := n.mailer.Send(ctx, Email{
		To:       customerTo,
		Subject:  fmt.Sprintf("Your Healing Order #%s - Sarah Lawry", ectx.OrderRef),
		HTMLBody: customerHTML,
	})
	adminErr := n.mailer.Send(ctx, Email{
		To:       adminTo,
		Subject:  fmt.Sprintf("[HEALING ORDER] #%s - %s", ectx.OrderRef, ectx.CustomerName),
		HTMLBody: adminHTML,
	})

	n.appendSendResult("Customer", customerTo, customerErr == nil)
	n.appendSendResult("Admin", adminTo, adminErr == nil)

	if customerErr != nil || adminErr != nil {
		n.logger.Error("failed to send order emails",
			zap.String("order_ref", ectx.OrderRef),
			zap.Bool("customer_sent", customerErr == nil),
			zap.Bool("admin_sent", adminErr == nil))
		return nil, ErrDeliveryFailure
	}

	return &Result{
		OrderRef: ectx.OrderRef,
		Message:  "Order confirmed! Emails sent successfully.",
	}, nil
}

// appendIntake logs the raw parsed input before any validation, valid or not.
func (n *Notifier) appendIntake(raw map[string]any) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		encoded = []byte(fmt.Sprint(raw))
	}
	line := fmt.Sprintf("%s - %s", time.Now().Format(timestampLayout), encoded)
	if err := n.orderLog.Append(line); err != nil {
		n.logger.Warn("order intake log append failed", zap.Error(err))
	}
}

func (n *Notifier) appendSendResult(kind, to string, sent bool) {
	verdict := "NO"
	if sent {
		verdict = "YES"
	}
	line := fmt.Sprintf("[%s] %s email sent to %s: %s",
		time.Now().Format(timestampLayout), kind, to, verdict)
	if err := n.sendLog.Append(line); err != nil {
		n.logger.Warn("send result log append failed", zap.Error(err))
	}
}
