package cart

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NoticeTTL is how long a transient cart notice stays visible before the
// storefront dismisses it.
const NoticeTTL = 3 * time.Second

// LineItem is one product entry in the cart. The product name is the item's
// identity key: adding the same name again increments quantity instead of
// appending a duplicate line.
type LineItem struct {
	Product   string          `json:"product"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Notice is a transient storefront notification with a fixed display window.
type Notice struct {
	Message   string    `json:"message"`
	Error     bool      `json:"error"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newNotice(message string, isError bool) Notice {
	return Notice{
		Message:   message,
		Error:     isError,
		ExpiresAt: time.Now().Add(NoticeTTL),
	}
}

// Cart holds the line items selected during one browsing session. Insertion
// order is display order. The total is always recomputed from the items,
// never cached.
type Cart struct {
	items []LineItem
}

func New() *Cart {
	return &Cart{}
}

// AddItem merges into an existing line when the product name matches,
// keeping the originally stored unit price, otherwise appends a new line
// with quantity 1.
func (c *Cart) AddItem(product string, unitPrice decimal.Decimal) Notice {
	for i := range c.items {
		if c.items[i].Product == product {
			c.items[i].Quantity++
			return newNotice(product+" added to cart!", false)
		}
	}
	c.items = append(c.items, LineItem{
		Product:   product,
		UnitPrice: unitPrice,
		Quantity:  1,
	})
	return newNotice(product+" added to cart!", false)
}

// RemoveItem removes the line at the given display position. An out of range
// index is a silent no-op, reported through the second return value.
func (c *Cart) RemoveItem(index int) (Notice, bool) {
	if index < 0 || index >= len(c.items) {
		return Notice{}, false
	}
	removed := c.items[index].Product
	c.items = append(c.items[:index], c.items[index+1:]...)
	return newNotice(removed+" removed from cart", false), true
}

func (c *Cart) Items() []LineItem {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Clone() *Cart {
	return &Cart{items: c.Items()}
}

// Total is the sum of unit price times quantity over all line items.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.items {
		total = total.Add(li.LineTotal())
	}
	return total
}

// FormattedTotal renders the total as displayed in the cart view, e.g.
// "R500.00". An empty cart renders as "R0.00".
func (c *Cart) FormattedTotal() string {
	return "R" + c.Total().StringFixed(2)
}

// ItemsHTML renders the per-line order items fragment embedded verbatim in
// the confirmation emails. Product names are escaped here; the fragment is
// not escaped again downstream.
func (c *Cart) ItemsHTML() string {
	var b strings.Builder
	for _, li := range c.items {
		fmt.Fprintf(&b, `<div class="item">%s - R%s x %d = R%s</div>`,
			html.EscapeString(li.Product),
			li.UnitPrice.String(),
			li.Quantity,
			li.LineTotal().StringFixed(2),
		)
	}
	return b.String()
}
