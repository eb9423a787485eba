package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finledger/internal/amqp"
	"finledger/internal/log"
	"finledger/internal/repository"
)

// BalanceWorker repairs account balances by recomputing them from the
// operation ledger, either on request or for every account on a schedule.
type BalanceWorker struct {
	accounts repository.AccountRepository
}

func NewBalanceWorker(accounts repository.AccountRepository) *BalanceWorker {
	return &BalanceWorker{accounts: accounts}
}

// HandleBalanceCheck recalculates one account. A check for an account
// that no longer exists is logged and treated as handled.
func (w *BalanceWorker) HandleBalanceCheck(ctx context.Context, msg *amqp.BalanceCheckMessage) error {
	logger := log.For(ctx, log.ComponentWorker)
	logger.DebugContext(ctx, "Processing balance check",
		log.FieldAccountID, msg.AccountID,
		log.FieldReason, msg.Reason)

	drifted, err := w.recalculate(ctx, msg.AccountID)
	if errors.Is(err, errAccountGone) {
		logger.WarnContext(ctx, "Balance check for unknown account, dropping",
			log.FieldAccountID, msg.AccountID,
			log.FieldReason, msg.Reason)
		return nil
	}
	if err != nil {
		return err
	}
	if !drifted {
		logger.DebugContext(ctx, "Balance consistent", log.FieldAccountID, msg.AccountID)
	}
	return nil
}

// ReconcileAll recalculates every account and returns how many had
// drifted. It keeps going past failures and returns them joined.
func (w *BalanceWorker) ReconcileAll(ctx context.Context) (int, error) {
	accounts, err := w.accounts.GetAllBankAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list bank accounts: %w", err)
	}

	start := time.Now()
	var (
		drifted int
		errs    []error
	)
	for _, a := range accounts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		d, err := w.recalculate(ctx, a.ID)
		if errors.Is(err, errAccountGone) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if d {
			drifted++
		}
	}

	fields := log.NewFields().
		WithOperation(log.OpReconcile).
		WithDuration(time.Since(start))
	fields[log.FieldCount] = len(accounts)
	fields["drifted"] = drifted
	log.For(ctx, log.ComponentWorker).InfoContext(ctx, "Reconciliation complete", fields.ToSlice()...)

	return drifted, errors.Join(errs...)
}

// RunReconciler calls ReconcileAll every interval until ctx ends.
func (w *BalanceWorker) RunReconciler(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ReconcileAll(ctx); err != nil && ctx.Err() == nil {
				log.For(ctx, log.ComponentWorker).ErrorContext(ctx, "Periodic reconciliation failed",
					log.FieldError, err)
			}
		}
	}
}

var errAccountGone = errors.New("account gone")

func (w *BalanceWorker) recalculate(ctx context.Context, id uuid.UUID) (bool, error) {
	before, err := w.accounts.GetBankAccount(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get bank account %s: %w", id, err)
	}
	if before == nil {
		return false, errAccountGone
	}

	if err := w.accounts.RecalculateBalance(ctx, id); err != nil {
		return false, fmt.Errorf("recalculate %s: %w", id, err)
	}

	after, err := w.accounts.GetBankAccount(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get bank account %s: %w", id, err)
	}
	if after == nil {
		return false, errAccountGone
	}

	if before.Balance.Equal(after.Balance) {
		return false, nil
	}
	fields := log.NewFields().
		WithOperation(log.OpRecalculate).
		WithAccount(id).
		WithBalanceChange(before.Balance, after.Balance)
	log.For(ctx, log.ComponentWorker).WarnContext(ctx, "Balance drift repaired", fields.ToSlice()...)
	return true, nil
}
