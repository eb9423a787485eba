package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/repository"
)

// BalancePublisher announces that an account's balance changed and may
// need verification. *amqp.Client implements it.
type BalancePublisher interface {
	PublishBalanceCheck(ctx context.Context, accountID uuid.UUID, reason string) error
}

var _ BalancePublisher = (*amqp.Client)(nil)

// OperationService books and removes operations, then asks for a
// balance check. A failed publish is logged and never fails the call:
// the ledger write has already committed.
type OperationService struct {
	operations repository.OperationRepository
	publisher  BalancePublisher
}

// NewOperationService accepts a nil publisher; checks are then skipped.
func NewOperationService(operations repository.OperationRepository, publisher BalancePublisher) *OperationService {
	return &OperationService{
		operations: operations,
		publisher:  publisher,
	}
}

func (s *OperationService) CreateOperation(ctx context.Context, t core.ItemType, accountID uuid.UUID, amount decimal.Decimal, date core.Date, categoryID uuid.UUID, description string) (core.Operation, error) {
	op, err := s.operations.CreateOperation(ctx, t, accountID, amount, date, categoryID, description)
	if err != nil {
		return core.Operation{}, fmt.Errorf("create operation: %w", err)
	}

	log.For(ctx, log.ComponentService).InfoContext(ctx, "Operation booked",
		log.FieldOperationID, op.ID,
		log.FieldAccountID, op.BankAccountID,
		log.FieldItemType, op.Type,
		log.FieldAmount, op.Amount.String())

	s.publish(ctx, op.BankAccountID, amqp.ReasonOperationCreated)
	return op, nil
}

// DeleteOperation removes the operation and reverses its balance effect.
// Unlike the repository, a missing operation is an error here.
func (s *OperationService) DeleteOperation(ctx context.Context, id uuid.UUID) error {
	op, err := s.operations.GetOperation(ctx, id)
	if err != nil {
		return fmt.Errorf("get operation: %w", err)
	}
	if op == nil {
		return fmt.Errorf("%w: operation %s", core.ErrNotFound, id)
	}

	ok, err := s.operations.DeleteOperation(ctx, id)
	if err != nil {
		return fmt.Errorf("delete operation: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: operation %s", core.ErrNotFound, id)
	}

	log.For(ctx, log.ComponentService).InfoContext(ctx, "Operation removed",
		log.FieldOperationID, id,
		log.FieldAccountID, op.BankAccountID)

	s.publish(ctx, op.BankAccountID, amqp.ReasonOperationDeleted)
	return nil
}

func (s *OperationService) publish(ctx context.Context, accountID uuid.UUID, reason string) {
	logger := log.For(ctx, log.ComponentService)
	if s.publisher == nil {
		logger.DebugContext(ctx, "No balance publisher configured, skipping balance check",
			log.FieldAccountID, accountID)
		return
	}
	if err := s.publisher.PublishBalanceCheck(ctx, accountID, reason); err != nil {
		logger.ErrorContext(ctx, "Failed to publish balance check",
			log.FieldAccountID, accountID,
			log.FieldReason, reason,
			log.FieldError, err)
	}
}
