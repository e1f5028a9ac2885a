package notify

import (
	"html/template"
	"strings"
)

// EmailContext is the typed template input built from a validated order
// record. OrderItems is the already-rendered per-line fragment and is
// embedded verbatim; every other field is escaped by the template engine.
type EmailContext struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	Customization   string
	OrderRef        string
	OrderDate       string
	OrderItems      template.HTML
	OrderTotal      string
	PaymentMethod   string
}

type pageContext struct {
	Title string
	Body  template.HTML
	Admin bool
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; }
        .email-container { background: white; border-radius: 10px; padding: 25px; box-shadow: 0 5px 15px rgba(0,0,0,0.1); }
        .header { border-bottom: 2px solid #4a6fa5; padding-bottom: 15px; margin-bottom: 20px; text-align: center; }
        h1 { color: #4a6fa5; font-family: 'Playfair Display', serif; font-size: 24px; margin-top: 15px; }
        .order-details { background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #4cb5ae; }
        .item { margin-bottom: 10px; padding-bottom: 10px; border-bottom: 1px solid #eee; }
        .total { font-weight: bold; font-size: 18px; border-top: 2px solid #4a6fa5; padding-top: 15px; margin-top: 20px; color: #166088; }
        .footer { margin-top: 30px; font-size: 12px; color: #777; text-align: center; padding-top: 20px; border-top: 1px solid #eee; }
        {{if .Admin}}.admin-note { background: #fff8e1; padding: 10px; border-left: 3px solid #ffc107; }{{end}}
    </style>
</head>
<body>
    <div class="email-container">
        <div class="header">
            <h1>Intuitive Healing &amp; Astrology</h1>
            <h2>{{.Title}}</h2>
        </div>

        {{.Body}}

        <div class="footer">
            <p>Sarah Lawry - Intuitive Healing and Astrology</p>
            <p>Johannesburg, South Africa | WhatsApp: +27 72 808 7795</p>
            <p>&copy; 2025 All rights reserved</p>
        </div>
    </div>
</body>
</html>`

const customerTemplate = `<div>
    <p>Dear {{.CustomerName}},</p>
    <p>Thank you for your order from Intuitive Healing and Astrology! We're honored to support your healing journey.</p>

    <div class="order-details">
        <p><strong>Order Reference #:</strong> {{.OrderRef}}</p>
        <p><strong>Order Date:</strong> {{.OrderDate}}</p>
        <p><strong>Payment Method:</strong> {{.PaymentMethod}}</p>

        <h3 style="color: #4a6fa5; margin-top: 20px;">Order Items:</h3>
        {{.OrderItems}}

        <p class="total">Order Total: R{{.OrderTotal}}</p>
    </div>

    <p>We will process your order within 24-48 hours. You will receive a notification once your items have been shipped.</p>

    <p>If you have any questions about your order or need support with any products, please don't hesitate to reply to this email or contact us directly on WhatsApp.</p>

    <p>With healing energy,<br><strong>Sarah Lawry</strong><br>Intuitive Healing and Astrology</p>
</div>`

const adminTemplate = `<div>
    <div class="admin-note">
        <p>📌 <strong>NEW ORDER RECEIVED!</strong> - Requires processing</p>
    </div>

    <div class="order-details">
        <p><strong>Order Reference #:</strong> {{.OrderRef}}</p>
        <p><strong>Customer Name:</strong> {{.CustomerName}}</p>
        <p><strong>Email:</strong> {{.CustomerEmail}}</p>
        <p><strong>Phone:</strong> {{.CustomerPhone}}</p>
        <p><strong>Shipping Address:</strong><br>{{.CustomerAddress}}</p>
        <p><strong>Payment Method:</strong> {{.PaymentMethod}}</p>

        <h3 style="color: #4a6fa5; margin-top: 20px;">Order Items:</h3>
        {{.OrderItems}}

        <p class="total">Order Total: R{{.OrderTotal}}</p>
    </div>

    <p><strong>Special Instructions:</strong><br>{{.Customization}}</p>
</div>`

var (
	pageTmpl     = template.Must(template.New("page").Parse(pageTemplate))
	customerTmpl = template.Must(template.New("customer").Parse(customerTemplate))
	adminTmpl    = template.Must(template.New("admin").Parse(adminTemplate))
)

func renderPage(title string, content *template.Template, ctx EmailContext, admin bool) (string, error) {
	var body strings.Builder
	if err := content.Execute(&body, ctx); err != nil {
		return "", err
	}

	var page strings.Builder
	err := pageTmpl.Execute(&page, pageContext{
		Title: title,
		Body:  template.HTML(body.String()),
		Admin: admin,
	})
	if err != nil {
		return "", err
	}
	return page.String(), nil
}

// RenderCustomerEmail builds the customer-facing confirmation document.
func RenderCustomerEmail(ctx EmailContext) (string, error) {
	return renderPage("Order Confirmation", customerTmpl, ctx, false)
}

// RenderAdminEmail builds the internal-facing variant with the new-order
// banner and the customer's contact details.
func RenderAdminEmail(ctx EmailContext) (string, error) {
	return renderPage("New Healing Product Order", adminTmpl, ctx, true)
}
