package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"

	"github.com/slhealing/storefront/internal/cart"
	"github.com/slhealing/storefront/internal/checkout"
	"github.com/slhealing/storefront/internal/notify"
)

type notifierStub struct {
	mu      sync.Mutex
	records []*checkout.OrderRecord
	err     error
}

func (n *notifierStub) SendOrder(_ context.Context, rec *checkout.OrderRecord) (*checkout.SubmitResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return nil, n.err
	}
	n.records = append(n.records, rec)
	return &checkout.SubmitResult{
		Success:  true,
		Message:  "Order confirmed! Emails sent successfully.",
		OrderRef: rec.OrderRef,
	}, nil
}

func newCartRouter(t *testing.T, notifier checkout.Notifier) (*chi.Mux, *cart.SessionStore) {
	t.Helper()

	sessions := cart.NewSessionStore()
	t.Cleanup(sessions.Close)

	svc := checkout.NewService(
		sessions,
		notifier,
		checkout.SimulatedCardProcessor{Delay: time.Millisecond},
		"ops@example.com",
		zaptest.NewLogger(t),
	)
	handler := NewCartHandler(sessions, svc, zaptest.NewLogger(t))

	r := chi.NewRouter()
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Post("/", handler.CreateSession)
		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/", handler.GetCart)
			r.Post("/items", handler.AddItem)
			r.Delete("/items/{index}", handler.RemoveItem)
			r.Post("/checkout", handler.Checkout)
		})
	})
	return r, sessions
}

func doJSON(t *testing.T, router *chi.Mux, method, url, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(method, url, reader)

	router.ServeHTTP(recorder, request)

	decoded := map[string]any{}
	json.Unmarshal(recorder.Body.Bytes(), &decoded)
	return recorder, decoded
}

func createSession(t *testing.T, router *chi.Mux) string {
	t.Helper()
	recorder, body := doJSON(t, router, "POST", "/api/v1/cart", "")
	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}
	id, _ := body["session_id"].(string)
	if id == "" {
		t.Fatal("Expected a session_id")
	}
	return id
}

func TestCreateSession_ReturnsEmptyCart(t *testing.T) {
	router, _ := newCartRouter(t, &notifierStub{})

	recorder, body := doJSON(t, router, "POST", "/api/v1/cart", "")
	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}
	if body["total"] != "R0.00" {
		t.Errorf("Expected total R0.00, got %v", body["total"])
	}
}

func TestAddItem_UpdatesCartAndNotifies(t *testing.T) {
	router, _ := newCartRouter(t, &notifierStub{})
	id := createSession(t, router)

	recorder, body := doJSON(t, router, "POST", "/api/v1/cart/"+id+"/items",
		`{"product":"Tarot Reading","unit_price":"250.00"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	if body["total"] != "R250.00" {
		t.Errorf("Expected total R250.00, got %v", body["total"])
	}
	notice, _ := body["notice"].(map[string]any)
	if notice == nil || notice["message"] != "Tarot Reading added to cart!" {
		t.Errorf("Expected add-to-cart notice, got %v", body["notice"])
	}
}

func TestAddItem_UnknownSession(t *testing.T) {
	router, _ := newCartRouter(t, &notifierStub{})

	recorder, body := doJSON(t, router, "POST", "/api/v1/cart/nope/items",
		`{"product":"Tarot Reading","unit_price":"250.00"}`)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
	if body["error"] != "Cart session not found" {
		t.Errorf("Unexpected error body: %v", body)
	}
}

func TestRemoveItem_OutOfRangeIsSilentNoOp(t *testing.T) {
	router, _ := newCartRouter(t, &notifierStub{})
	id := createSession(t, router)
	doJSON(t, router, "POST", "/api/v1/cart/"+id+"/items",
		`{"product":"Tarot Reading","unit_price":"250.00"}`)

	recorder, body := doJSON(t, router, "DELETE", "/api/v1/cart/"+id+"/items/7", "")
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if body["total"] != "R250.00" {
		t.Errorf("Expected cart unchanged at R250.00, got %v", body["total"])
	}
	if _, ok := body["notice"]; ok {
		t.Error("Expected no notice for an out of range removal")
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	stub := &notifierStub{}
	router, _ := newCartRouter(t, stub)
	id := createSession(t, router)

	recorder, body := doJSON(t, router, "POST", "/api/v1/cart/"+id+"/checkout",
		`{"name":"Jane Doe","email":"jane@example.com","payment_method":"eft"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if body["error"] != "Your cart is empty!" {
		t.Errorf("Unexpected error body: %v", body)
	}
	if len(stub.records) != 0 {
		t.Error("Empty cart must never reach the notifier")
	}
}

// TestCheckout_EndToEnd runs the full flow against a live notifier endpoint:
// cart with two Tarot Readings, card payment, both emails delivered.
func TestCheckout_EndToEnd(t *testing.T) {
	mailer := &mailerStub{failTo: map[string]error{}}
	orderLog := &notify.MemoryLog{}
	sendLog := &notify.MemoryLog{}
	orderHandler := NewOrderHandler(
		notify.New(mailer, orderLog, sendLog, "", zaptest.NewLogger(t)),
		1<<20, zaptest.NewLogger(t))

	notifierSrv := httptest.NewServer(CORS(http.HandlerFunc(orderHandler.Create)))
	defer notifierSrv.Close()

	client := checkout.NewNotifierClient(notifierSrv.URL, 5*time.Second)
	router, sessions := newCartRouter(t, client)

	id := createSession(t, router)
	doJSON(t, router, "POST", "/api/v1/cart/"+id+"/items",
		`{"product":"Tarot Reading","unit_price":"250.00"}`)
	doJSON(t, router, "POST", "/api/v1/cart/"+id+"/items",
		`{"product":"Tarot Reading","unit_price":"250.00"}`)

	recorder, body := doJSON(t, router, "POST", "/api/v1/cart/"+id+"/checkout",
		`{"name":"Jane Doe","email":"jane@example.com","payment_method":"stripe"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d: %v", http.StatusOK, recorder.Code, body)
	}

	orderRef, _ := body["order_ref"].(string)
	if !strings.HasPrefix(orderRef, "SL") {
		t.Errorf("Expected an SL-prefixed order reference, got %q", orderRef)
	}
	if body["order_total"] != "R500.00" {
		t.Errorf("Expected order_total R500.00, got %v", body["order_total"])
	}

	// both emails were dispatched and the items fragment survived verbatim
	if mailer.count() != 2 {
		t.Fatalf("Expected 2 emails, got %d", mailer.count())
	}
	expectedFragment := `<div class="item">Tarot Reading - R250 x 2 = R500.00</div>`
	for _, msg := range mailer.sent {
		if !strings.Contains(msg.HTMLBody, expectedFragment) {
			t.Errorf("Email to %s missing items fragment", msg.To)
		}
	}

	if len(sendLog.Lines()) != 2 {
		t.Errorf("Expected 2 send-result lines, got %d", len(sendLog.Lines()))
	}

	// cart cleared after a successful order
	view, err := sessions.View(id)
	if err != nil {
		t.Fatalf("Failed to read cart: %v", err)
	}
	if !view.IsEmpty() {
		t.Error("Expected the cart to be empty after checkout")
	}
}

func TestCheckout_NotifierFailureLeavesCartIntact(t *testing.T) {
	mailer := &mailerStub{failTo: map[string]error{
		notify.DefaultAdminEmail: context.DeadlineExceeded,
	}}
	orderHandler := NewOrderHandler(
		notify.New(mailer, &notify.MemoryLog{}, &notify.MemoryLog{}, "", zaptest.NewLogger(t)),
		1<<20, zaptest.NewLogger(t))

	notifierSrv := httptest.NewServer(http.HandlerFunc(orderHandler.Create))
	defer notifierSrv.Close()

	client := checkout.NewNotifierClient(notifierSrv.URL, 5*time.Second)
	router, sessions := newCartRouter(t, client)

	id := createSession(t, router)
	doJSON(t, router, "POST", "/api/v1/cart/"+id+"/items",
		`{"product":"Tarot Reading","unit_price":"250.00"}`)

	recorder, body := doJSON(t, router, "POST", "/api/v1/cart/"+id+"/checkout",
		`{"name":"Jane Doe","email":"jane@example.com","payment_method":"eft"}`)
	if recorder.Code != http.StatusBadGateway {
		t.Errorf("Expected status code %d, got %d", http.StatusBadGateway, recorder.Code)
	}
	errMsg, _ := body["error"].(string)
	if !strings.Contains(errMsg, "Failed to send one or more emails") {
		t.Errorf("Expected the delivery failure message, got %q", errMsg)
	}

	view, err := sessions.View(id)
	if err != nil {
		t.Fatalf("Failed to read cart: %v", err)
	}
	if view.Len() != 1 {
		t.Error("Cart must be preserved after a failed submission")
	}
}
