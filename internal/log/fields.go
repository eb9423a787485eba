package log

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common field names for structured logging
const (
	FieldComponent       = "component"
	FieldOperation       = "operation"
	FieldError           = "error"
	FieldDuration        = "duration_ms"
	FieldAccountID       = "account_id"
	FieldCategoryID      = "category_id"
	FieldOperationID     = "operation_id"
	FieldItemType        = "type"
	FieldAmount          = "amount"
	FieldBalance         = "balance"
	FieldPreviousBalance = "previous_balance"
	FieldReason          = "reason"
	FieldCount           = "count"
	FieldBackend         = "backend"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentStorage   = "storage"
	ComponentProxy     = "proxy"
	ComponentService   = "service"
	ComponentAnalytics = "analytics"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentBackend   = "backend"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpCreate      = "create"
	OpRead        = "read"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpUpload      = "upload"
	OpRecalculate = "recalculate"
	OpReconcile   = "reconcile"
	OpPublish     = "publish"
	OpConsume     = "consume"
	OpStartup     = "startup"
	OpShutdown    = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error text; nil is ignored.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithAccount(id uuid.UUID) LogFields {
	f[FieldAccountID] = id.String()
	return f
}

// WithBalanceChange records a balance before and after a write.
func (f LogFields) WithBalanceChange(previous, current decimal.Decimal) LogFields {
	f[FieldPreviousBalance] = previous.String()
	f[FieldBalance] = current.String()
	return f
}

func (f LogFields) WithDuration(d time.Duration) LogFields {
	f[FieldDuration] = d.Milliseconds()
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
