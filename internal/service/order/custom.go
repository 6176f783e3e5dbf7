package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
	"github.com/vladislavdragonenkov/bakeshop/internal/orderid"
	"github.com/vladislavdragonenkov/bakeshop/internal/rules"
	"github.com/vladislavdragonenkov/bakeshop/internal/validate"
	"github.com/vladislavdragonenkov/bakeshop/internal/workflow"
)

// CreateCustomOrder принимает заявку на индивидуальный заказ. Оценка и
// предоплата выставляются позже, при подтверждении персоналом.
func (s *Service) CreateCustomOrder(ctx context.Context, in validate.CustomOrderInput) (domain.CustomOrder, error) {
	if err := validate.Wrap(validate.CustomOrderInputErrors(in)); err != nil {
		return domain.CustomOrder{}, err
	}
	if err := s.rules.CheckAdvanceNotice(rules.OrderTypeCustom, in.EventDate, s.now()); err != nil {
		return domain.CustomOrder{}, err
	}
	if err := s.rules.CheckLeadTimeCap(in.EventDate, s.now()); err != nil {
		return domain.CustomOrder{}, err
	}

	orderID, err := s.ids.Next(orderid.TypeCustom)
	if err != nil {
		return domain.CustomOrder{}, err
	}

	now := s.now().UTC()
	custom := domain.CustomOrder{
		ID:            uuid.NewString(),
		OrderID:       orderID,
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		EventType:     in.EventType,
		EventDate:     in.EventDate,
		CakeSize:      in.CakeSize,
		Flavor:        in.Flavor,
		Requirements:  in.Requirements,
		CustomerNotes: in.CustomerNotes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.customs.Create(custom); err != nil {
		return domain.CustomOrder{}, err
	}

	if err := s.workflow.Transition(ctx, workflow.EntityCustomOrder, &custom, "pending", workflow.Context{
		Reason: "custom order requested",
		Actor:  custom.Email,
	}); err != nil {
		s.compensateCustomCreate(custom, err)
		return domain.CustomOrder{}, &domain.SideEffectError{Op: "initialTransition", Err: err}
	}

	if err := s.customs.Save(custom); err != nil {
		s.compensateCustomCreate(custom, err)
		return domain.CustomOrder{}, &domain.SideEffectError{Op: "persistInitialStatus", Err: err}
	}
	custom.Version++

	s.logger.WithFields(log.Fields{
		"order_id":   custom.OrderID,
		"event_type": custom.EventType,
	}).Info("custom order created")
	return custom, nil
}

// GetCustomOrder возвращает индивидуальный заказ по публичному номеру.
func (s *Service) GetCustomOrder(orderID string) (domain.CustomOrder, error) {
	return s.customs.GetByOrderID(orderID)
}

// SetEstimate выставляет оценку стоимости; доступно до подтверждения.
func (s *Service) SetEstimate(orderID string, estimated int64, adminNotes string) (domain.CustomOrder, error) {
	custom, err := s.customs.GetByOrderID(orderID)
	if err != nil {
		return domain.CustomOrder{}, err
	}
	if custom.Status != domain.CustomOrderStatusPending {
		return domain.CustomOrder{}, &domain.InvalidStateError{
			EntityType: workflow.EntityCustomOrder,
			State:      string(custom.Status),
		}
	}
	if estimated <= 0 {
		return domain.CustomOrder{}, &domain.ValidationError{
			Field:   "estimatedPrice",
			Message: "estimated price must be positive",
		}
	}

	custom.EstimatedPrice = estimated
	if adminNotes != "" {
		custom.AdminNotes = adminNotes
	}
	if errs := custom.ValidateInvariants(); len(errs) > 0 {
		return domain.CustomOrder{}, domain.ErrorList(errs)
	}

	if err := s.saveCustomWithRetry(&custom); err != nil {
		return domain.CustomOrder{}, err
	}
	return custom, nil
}

// UpdateCustomOrderStatus переводит индивидуальный заказ в целевой статус.
func (s *Service) UpdateCustomOrderStatus(ctx context.Context, orderID, target, reason, actor string) (domain.CustomOrder, error) {
	custom, err := s.customs.GetByOrderID(orderID)
	if err != nil {
		return domain.CustomOrder{}, err
	}

	if err := s.workflow.Transition(ctx, workflow.EntityCustomOrder, &custom, target, workflow.Context{
		Reason: reason,
		Actor:  actor,
	}); err != nil {
		return domain.CustomOrder{}, err
	}

	if errs := custom.ValidateInvariants(); len(errs) > 0 {
		return domain.CustomOrder{}, domain.ErrorList(errs)
	}
	if err := s.saveCustomWithRetry(&custom); err != nil {
		return domain.CustomOrder{}, err
	}
	return custom, nil
}

// CancelCustomOrder отменяет индивидуальный заказ.
func (s *Service) CancelCustomOrder(ctx context.Context, orderID, reason, actor string) (domain.CustomOrder, error) {
	return s.UpdateCustomOrderStatus(ctx, orderID, "cancelled", reason, actor)
}

// MarkAdvancePaid фиксирует получение предоплаты.
func (s *Service) MarkAdvancePaid(orderID string) (domain.CustomOrder, error) {
	custom, err := s.customs.GetByOrderID(orderID)
	if err != nil {
		return domain.CustomOrder{}, err
	}
	if custom.AdvanceStatus != domain.AdvancePending {
		return domain.CustomOrder{}, &domain.ConsistencyError{
			Message: "advance payment is not awaited for this order",
		}
	}

	custom.AdvanceStatus = domain.AdvancePaid
	if err := s.saveCustomWithRetry(&custom); err != nil {
		return domain.CustomOrder{}, err
	}

	s.emitter.Emit("advancePaid", map[string]any{
		"orderId": custom.OrderID,
		"amount":  custom.AdvanceAmount,
	})
	return custom, nil
}

// MarkAdvanceRefunded фиксирует возврат предоплаты после отмены.
func (s *Service) MarkAdvanceRefunded(orderID string) (domain.CustomOrder, error) {
	custom, err := s.customs.GetByOrderID(orderID)
	if err != nil {
		return domain.CustomOrder{}, err
	}
	if custom.AdvanceStatus != domain.AdvancePaid {
		return domain.CustomOrder{}, &domain.ConsistencyError{
			Message: "only a paid advance can be refunded",
		}
	}
	if custom.Status != domain.CustomOrderStatusCancelled {
		return domain.CustomOrder{}, &domain.ConsistencyError{
			Message: "advance refund requires a cancelled order",
		}
	}

	custom.AdvanceStatus = domain.AdvanceRefunded
	if err := s.saveCustomWithRetry(&custom); err != nil {
		return domain.CustomOrder{}, err
	}

	s.emitter.Emit("advanceRefunded", map[string]any{
		"orderId": custom.OrderID,
		"amount":  custom.AdvanceAmount,
	})
	return custom, nil
}

func (s *Service) compensateCustomCreate(custom domain.CustomOrder, cause error) {
	if err := s.customs.Delete(custom.ID); err != nil {
		s.logger.WithError(err).WithField("order_id", custom.OrderID).Error("compensating delete failed")
	}
	s.emitter.Emit("businessError", map[string]any{
		"orderId": custom.OrderID,
		"op":      "createCustomOrder",
		"error":   cause.Error(),
	})
	s.logger.WithError(cause).WithField("order_id", custom.OrderID).Warn("custom order creation rolled back")
}

func (s *Service) saveCustomWithRetry(custom *domain.CustomOrder) error {
	for attempt := 0; attempt < saveMaxRetries; attempt++ {
		custom.UpdatedAt = s.now().UTC()
		prevVersion := custom.Version

		err := s.customs.Save(*custom)
		if err == nil {
			custom.Version = prevVersion + 1
			return nil
		}
		if !domain.IsVersionConflict(err) || attempt == saveMaxRetries-1 {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": custom.OrderID,
				"attempt":  attempt + 1,
			}).Error("failed to persist custom order")
			return err
		}

		fresh, loadErr := s.customs.Get(custom.ID)
		if loadErr != nil {
			return loadErr
		}
		fresh.Status = custom.Status
		fresh.EstimatedPrice = custom.EstimatedPrice
		fresh.AdvanceAmount = custom.AdvanceAmount
		fresh.AdvanceStatus = custom.AdvanceStatus
		fresh.AdminNotes = custom.AdminNotes
		*custom = fresh

		s.logger.WithFields(log.Fields{
			"order_id": custom.OrderID,
			"attempt":  attempt + 1,
		}).Warn("version conflict detected, retrying")
		time.Sleep(saveBaseDelay * time.Duration(1<<uint(attempt)))
	}
	return domain.ErrOrderVersionConflict
}
