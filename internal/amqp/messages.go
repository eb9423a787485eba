package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reasons a balance check is requested.
const (
	ReasonOperationCreated = "operation_created"
	ReasonOperationDeleted = "operation_deleted"
	ReasonManual           = "manual"
)

// BalanceCheckMessage asks the worker to recompute one account's balance
// from its operations. It carries only the account id; the worker reads
// everything else from storage.
type BalanceCheckMessage struct {
	AccountID uuid.UUID `json:"account_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBalanceCheckMessage(accountID uuid.UUID, reason string) *BalanceCheckMessage {
	return &BalanceCheckMessage{
		AccountID: accountID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BalanceCheckMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BalanceCheckMessageFromJSON decodes a message and rejects one without
// an account id.
func BalanceCheckMessageFromJSON(data []byte) (*BalanceCheckMessage, error) {
	var msg BalanceCheckMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.AccountID == uuid.Nil {
		return nil, fmt.Errorf("balance check message without account id")
	}
	return &msg, nil
}
