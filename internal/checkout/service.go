package checkout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/slhealing/storefront/internal/cart"
)

// Confirmation is what the storefront shows on a successful order.
type Confirmation struct {
	OrderRef     string `json:"order_ref"`
	CustomerName string `json:"customer_name"`
	OrderTotal   string `json:"order_total"`
	Message      string `json:"message"`
}

// Service runs the submit flow: guard, simulated card settlement, order
// assembly, delivery to the notifier, cart reset.
type Service struct {
	sessions   *cart.SessionStore
	notifier   Notifier
	payment    Processor
	adminEmail string
	logger     *zap.Logger
}

func NewService(sessions *cart.SessionStore, notifier Notifier, payment Processor, adminEmail string, logger *zap.Logger) *Service {
	return &Service{
		sessions:   sessions,
		notifier:   notifier,
		payment:    payment,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Submit processes one checkout attempt for the session. Only one submission
// may be in flight per session; a concurrent attempt fails with
// cart.ErrSubmissionInFlight. On success the cart is cleared; on any failure
// it is left intact so the customer can retry. The in-flight flag is always
// released.
func (s *Service) Submit(ctx context.Context, sessionID string, form Form, method string) (*Confirmation, error) {
	snapshot, err := s.sessions.BeginSubmit(sessionID)
	if err != nil {
		return nil, err
	}

	cleared := false
	defer func() {
		s.sessions.EndSubmit(sessionID, cleared)
	}()

	if snapshot.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if method == MethodCard {
		if err := s.payment.Process(ctx, snapshot.Total().StringFixed(2)); err != nil {
			s.logger.Warn("card processing failed",
				zap.String("session_id", sessionID), zap.Error(err))
			return nil, err
		}
	}

	rec, err := BuildOrder(snapshot, form, method, s.adminEmail, time.Now())
	if err != nil {
		return nil, err
	}

	result, err := s.notifier.SendOrder(ctx, rec)
	if err != nil {
		s.logger.Warn("order submission failed",
			zap.String("order_ref", rec.OrderRef), zap.Error(err))
		return nil, err
	}

	cleared = true
	s.logger.Info("order confirmed",
		zap.String("order_ref", rec.OrderRef),
		zap.String("order_total", rec.OrderTotal))

	return &Confirmation{
		OrderRef:     rec.OrderRef,
		CustomerName: rec.CustomerName,
		OrderTotal:   "R" + rec.OrderTotal,
		Message:      result.Message,
	}, nil
}
