package checkout

import (
	"strconv"
	"time"

	"github.com/slhealing/storefront/internal/cart"
)

// Payment method values as submitted by the checkout form, and the labels
// embedded in the order record.
const (
	MethodCard = "stripe"
	MethodEFT  = "eft"

	labelCard = "Credit Card"
	labelEFT  = "Bank Transfer (EFT)"
)

// refPrefix starts every order reference; the rest is a millisecond
// timestamp, unique enough within the operational window.
const refPrefix = "SL"

// Form carries the customer-entered checkout fields.
type Form struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Customization string `json:"customization"`
}

// OrderRecord is the single payload sent to the order notifier. It is built
// once at submit time and never mutated afterwards.
type OrderRecord struct {
	To              string `json:"to"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	CustomerAddress string `json:"customer_address,omitempty"`
	Customization   string `json:"customization,omitempty"`
	OrderRef        string `json:"order_ref"`
	OrderDate       string `json:"order_date"`
	OrderItems      string `json:"order_items"`
	OrderTotal      string `json:"order_total"`
	PaymentMethod   string `json:"payment_method"`
	AdminEmail      string `json:"admin_email,omitempty"`
}

// PaymentLabel maps a form payment method value to its order record label.
func PaymentLabel(method string) string {
	if method == MethodCard {
		return labelCard
	}
	return labelEFT
}

// BuildOrder composes the order record from the cart snapshot and form
// fields. Fails with ErrEmptyCart when there is nothing to order.
func BuildOrder(c *cart.Cart, form Form, method, adminEmail string, now time.Time) (*OrderRecord, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	return &OrderRecord{
		To:              form.Email,
		CustomerName:    form.Name,
		CustomerEmail:   form.Email,
		CustomerPhone:   form.Phone,
		CustomerAddress: form.Address,
		Customization:   form.Customization,
		OrderRef:        refPrefix + strconv.FormatInt(now.UnixMilli(), 10),
		OrderDate:       now.Format("2006/01/02"),
		OrderItems:      c.ItemsHTML(),
		OrderTotal:      c.Total().StringFixed(2),
		PaymentMethod:   PaymentLabel(method),
		AdminEmail:      adminEmail,
	}, nil
}
