package payment

import (
	"context"

	"github.com/google/uuid"

	dbt "settlex/db/db"
	"settlex/netting"
	"settlex/split"
)

// Status names one step of the payment pipeline.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusBuilding   Status = "building"
	StatusSigning    Status = "signing"
	StatusSubmitting Status = "submitting"
	StatusRecording  Status = "recording"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// State is the executor's current position in the pipeline. Hash and Ledger
// are set once the network accepted the payment; OnChain reports whether
// the optional audit record was confirmed. Message is set on StatusError
// and is safe to show a user directly.
type State struct {
	Status    Status
	Hash      string
	Ledger    int64
	OnChain   bool
	Message   string
	Cancelled bool
}

// Terminal reports whether the state machine has finished this attempt.
func (s State) Terminal() bool {
	return s.Status == StatusSuccess || s.Status == StatusError
}

// Instruction is an unsigned payment: who pays whom how much, with a memo
// carrying expense/trip context.
type Instruction struct {
	Source      string
	Destination string
	Amount      string // canonical 7-decimal string
	Memo        string
}

// SignedInstruction is an Instruction plus the wallet's signature envelope,
// opaque to the executor.
type SignedInstruction struct {
	Instruction
	Envelope string
}

// SubmitResult is the network's acknowledgement of an accepted payment.
type SubmitResult struct {
	Hash   string
	Ledger int64
}

// Signer obtains a signature from the external wallet. A user declining to
// sign must surface as ErrUserCancelled (wrapped is fine), which the
// executor classifies separately from genuine failure.
type Signer interface {
	Sign(ctx context.Context, instruction Instruction) (*SignedInstruction, error)
}

// Submitter hands a signed payment to the network. Rejections should be
// returned as *SubmissionError so the raw result codes can be mapped to
// readable messages.
type Submitter interface {
	Submit(ctx context.Context, signed *SignedInstruction) (*SubmitResult, error)
}

// PaymentFacts is what the optional audit contract records about one
// settled obligation.
type PaymentFacts struct {
	TripID    uuid.UUID
	ExpenseID uuid.UUID
	Payer     string // destination wallet
	Member    string // source wallet
	Amount    string
	TxHash    string
}

// AuditRecorder is the optional on-chain audit log. Record submits the
// facts and returns a reference the executor polls via CheckRecord until
// confirmed, failed, or out of attempts. IsPaid is the pre-flight
// duplicate-payment guard.
type AuditRecorder interface {
	Record(ctx context.Context, facts PaymentFacts) (ref string, err error)
	CheckRecord(ctx context.Context, ref string) (confirmed bool, err error)
	IsPaid(ctx context.Context, expenseID uuid.UUID, memberWallet string) (bool, error)
}

// ShareMarker is the slice of the expense store the executor writes back
// to. dbt.ExpenseDBWrapper satisfies it.
type ShareMarker interface {
	MarkSharePaid(expenseID uuid.UUID, memberID uuid.UUID, txHash string) (*dbt.Expense, error)
}

// Session carries the caller's wallet context into the executor explicitly,
// instead of the executor reading ambient global state.
type Session struct {
	WalletAddress string
}

// ShareRequest asks the executor to pay one member's share of one expense.
// DestinationWallet is the expense payer's address.
type ShareRequest struct {
	Session           Session
	ExpenseID         uuid.UUID
	ExpenseTitle      string
	Share             split.Share
	DestinationWallet string
	TripID            uuid.UUID // uuid.Nil when the expense is not part of a trip
}

// NetRequest asks the executor to pay one aggregated settlement payment.
// Expenses must hold the trip's expenses so every unpaid share the payment
// retires can be marked paid.
type NetRequest struct {
	Session  Session
	TripID   uuid.UUID
	TripName string
	Payment  netting.NetPayment
	Expenses []*dbt.Expense
}
