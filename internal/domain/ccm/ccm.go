// Package ccm defines the cross-chain message contract the risk engine
// drives. Messages move value or state between distinct blockchains and are
// asynchronous and eventually consistent: a timeout means Unknown, not
// failed, so every send is idempotency-keyed by (loan id, action).
package ccm

import (
	"errors"
	"time"
)

const (
	ActionLockAndMint       = "lock_and_mint"
	ActionBurnAndUnlock     = "burn_and_unlock"
	ActionDisburseFunds     = "disburse_funds"
	ActionSettleLiquidation = "settle_liquidation"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	// ErrTimeout means the outcome is unknown; the remote side-effect may
	// still land. Safe to retry with the same idempotency key.
	ErrTimeout = errors.New("cross-chain message timed out")
	// ErrFailure is a definitive remote rejection.
	ErrFailure = errors.New("cross-chain message failed")
)

type Message struct {
	LoanID      string         `json:"loan_id"`
	SourceChain string         `json:"source_chain"`
	TargetChain string         `json:"target_chain"`
	Action      string         `json:"action"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// IdempotencyKey identifies a message for exactly-once dispatch.
func (m Message) IdempotencyKey() string { return m.LoanID + ":" + m.Action }

type Receipt struct {
	TransactionID string    `json:"transaction_id"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}
