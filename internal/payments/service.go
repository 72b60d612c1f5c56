package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/internal/orders"
	"github.com/matjara-app/matjara-backend/pkg/db"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/lahza"
	"github.com/matjara-app/matjara-backend/pkg/logger"
	"gorm.io/gorm"
)

const referenceConstraint = "payments_reference_uniq"

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByReference(ctx context.Context, reference string) (*models.Payment, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	MarkSettled(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, payload json.RawMessage) error
}

type orderService interface {
	GetForCustomer(ctx context.Context, storeID, customerID, orderID uuid.UUID) (*orders.OrderDTO, error)
	SetStatus(ctx context.Context, storeID, orderID uuid.UUID, status enums.OrderStatus) (*orders.OrderDTO, error)
}

type gateway interface {
	Initialize(ctx context.Context, input lahza.InitializeInput) (*lahza.Transaction, error)
	VerifyWebhookSignature(body []byte, header http.Header) bool
}

// Service initiates charges and settles them from webhook deliveries.
type Service interface {
	Initiate(ctx context.Context, storeID, customerID, orderID uuid.UUID, email string) (*InitiateResponse, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]PaymentDTO, error)
	HandleWebhook(ctx context.Context, body []byte, header http.Header) error
}

type service struct {
	repo    paymentRepository
	orders  orderService
	gateway gateway
	logger  *logger.Logger
}

// ServiceParams bundles the dependencies required to build a payment service.
type ServiceParams struct {
	PaymentRepo  paymentRepository
	OrderService orderService
	Gateway      gateway
	Logger       *logger.Logger
}

// NewService constructs a payment service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.PaymentRepo == nil {
		return nil, fmt.Errorf("payment repository is required")
	}
	if params.OrderService == nil {
		return nil, fmt.Errorf("order service is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:    params.PaymentRepo,
		orders:  params.OrderService,
		gateway: params.Gateway,
		logger:  params.Logger,
	}, nil
}

// Initiate opens a gateway charge for a pending order owned by the customer.
// The reference is minted locally so the payment row exists before the
// gateway ever sees the charge.
func (s *service) Initiate(ctx context.Context, storeID, customerID, orderID uuid.UUID, email string) (*InitiateResponse, error) {
	order, err := s.orders.GetForCustomer(ctx, storeID, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is not awaiting payment")
	}

	reference := newReference()
	payment := &models.Payment{
		OrderID:   order.ID,
		StoreID:   order.StoreID,
		Provider:  "lahza",
		Reference: reference,
		Amount:    order.Total,
		Currency:  order.Currency,
		Status:    enums.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		if db.IsUniqueViolation(err, referenceConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment reference already used")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}

	txn, err := s.gateway.Initialize(ctx, lahza.InitializeInput{
		Reference: reference,
		Email:     email,
		Amount:    order.Total,
		Currency:  order.Currency,
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logger.WithOrderID(ctx, order.ID.String())
	s.logger.Info(s.logger.WithField(ctx, "reference", reference), "payment initialized")

	return &InitiateResponse{
		Reference:        reference,
		AuthorizationURL: txn.AuthorizationURL,
	}, nil
}

func (s *service) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]PaymentDTO, error) {
	rows, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	dtos := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

// HandleWebhook settles a payment from a signed gateway delivery. Processing
// is idempotent by reference: redeliveries of a settled payment are
// acknowledged without touching the order again.
func (s *service) HandleWebhook(ctx context.Context, body []byte, header http.Header) error {
	if !s.gateway.VerifyWebhookSignature(body, header) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "malformed webhook payload")
	}
	if event.Data.Reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook payload missing reference")
	}

	payment, err := s.repo.FindByReference(ctx, event.Data.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "unknown payment reference")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if payment.Status != enums.PaymentStatusPending {
		return nil
	}

	status := enums.PaymentStatusFailed
	if isSuccessEvent(event) {
		status = enums.PaymentStatusPaid
	}

	if err := s.repo.MarkSettled(ctx, payment.ID, status, json.RawMessage(body)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle payment")
	}

	ctx = s.logger.WithOrderID(ctx, payment.OrderID.String())
	s.logger.Info(s.logger.WithField(ctx, "status", status.String()), "payment settled")

	if status == enums.PaymentStatusPaid {
		if _, err := s.orders.SetStatus(ctx, payment.StoreID, payment.OrderID, enums.OrderStatusConfirmed); err != nil {
			// A conflict means the order already moved on; the payment
			// itself settled fine.
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
				return err
			}
		}
	}
	return nil
}

func isSuccessEvent(event webhookEvent) bool {
	return event.Event == "charge.success" && strings.EqualFold(event.Data.Status, "success")
}

func newReference() string {
	return "mj_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
