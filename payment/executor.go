// Package payment drives one obligation through the
// build → sign → submit → record pipeline and writes the outcome back to
// the expense store.
//
// An Executor is scoped to a single in-flight obligation. Concurrent
// payments each get their own Executor; within one instance transitions
// are strictly sequential.
package payment

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"settlex/config"
	dbt "settlex/db/db"
	"settlex/stellar"
)

// Deps are the external collaborators an Executor calls out to. Recorder
// is optional; leave it nil when no audit contract is configured and the
// recording step is skipped entirely.
type Deps struct {
	Signer    Signer
	Submitter Submitter
	Recorder  AuditRecorder
	Store     ShareMarker

	// PollInterval overrides the audit confirmation poll interval.
	// Zero means the configured default; tests shrink it.
	PollInterval time.Duration
}

type Executor struct {
	deps Deps

	mu    sync.Mutex
	state State
}

func NewExecutor(deps Deps) *Executor {
	if deps.PollInterval <= 0 {
		deps.PollInterval = config.RecordPollIntervalMs * time.Millisecond
	}
	return &Executor{
		deps:  deps,
		state: State{Status: StatusIdle},
	}
}

// State returns a snapshot of the executor's current state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Reset returns a finished executor to idle, discarding the last attempt's
// state. It does not undo a completed payment.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = State{Status: StatusIdle}
}

func (e *Executor) setStatus(status Status) {
	e.mu.Lock()
	e.state.Status = status
	e.mu.Unlock()
}

func (e *Executor) fail(perr *Error) (State, error) {
	e.mu.Lock()
	e.state.Status = StatusError
	e.state.Message = perr.Message
	e.state.Cancelled = perr.Kind == KindUserCancelled
	final := e.state
	e.mu.Unlock()
	return final, perr
}

// begin moves the executor from idle into the pipeline. It fails when a
// previous attempt has not been Reset.
func (e *Executor) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status != StatusIdle {
		return ErrBusy
	}
	e.state = State{Status: StatusBuilding}
	return nil
}

// PayShare pays one member's share of an expense directly to the expense
// payer. The returned State is terminal: StatusSuccess or StatusError.
func (e *Executor) PayShare(ctx context.Context, req ShareRequest) (State, error) {
	// Pre-flight, before any state transition or side effect.
	if err := e.preflight(ctx, req); err != nil {
		return e.State(), err
	}
	if err := e.begin(); err != nil {
		return e.State(), err
	}

	memo := stellar.BuildMemo(req.ExpenseTitle + "|" + req.Share.Name)
	result, perr := e.run(ctx, Instruction{
		Source:      req.Session.WalletAddress,
		Destination: req.DestinationWallet,
		Amount:      req.Share.Amount,
		Memo:        memo,
	})
	if perr != nil {
		return e.fail(perr)
	}

	// Funds moved: mark the share paid immediately, before the optional
	// audit record.
	if _, err := e.deps.Store.MarkSharePaid(req.ExpenseID, req.Share.MemberID, result.Hash); err != nil {
		e.mu.Lock()
		e.state.Hash = result.Hash
		e.state.Ledger = result.Ledger
		e.mu.Unlock()
		return e.fail(storeSyncError(result.Hash, err))
	}

	onChain := e.record(ctx, PaymentFacts{
		TripID:    req.TripID,
		ExpenseID: req.ExpenseID,
		Payer:     req.DestinationWallet,
		Member:    req.Session.WalletAddress,
		Amount:    req.Share.Amount,
		TxHash:    result.Hash,
	})

	return e.succeed(result, onChain), nil
}

// PayNet pays one aggregated settlement payment and marks every unpaid
// share it retires across the trip's expenses. Shares are joined to the
// net payment by creditor/debtor display name, because netting discards
// per-share identity.
func (e *Executor) PayNet(ctx context.Context, req NetRequest) (State, error) {
	if req.Session.WalletAddress == "" {
		return e.State(), validationError("wallet not connected")
	}
	if !stellar.IsValidPaymentAddress(req.Session.WalletAddress) {
		return e.State(), validationError("your wallet address is invalid")
	}
	if req.Payment.ToWallet == "" {
		return e.State(), validationError("%s has no payment address", req.Payment.To)
	}
	if !stellar.IsValidPaymentAddress(req.Payment.ToWallet) {
		return e.State(), validationError("%s has an invalid payment address", req.Payment.To)
	}
	if err := e.begin(); err != nil {
		return e.State(), err
	}

	memo := stellar.BuildMemo(req.TripName)
	result, perr := e.run(ctx, Instruction{
		Source:      req.Session.WalletAddress,
		Destination: req.Payment.ToWallet,
		Amount:      req.Payment.Amount,
		Memo:        memo,
	})
	if perr != nil {
		return e.fail(perr)
	}

	// One net payment can retire several individual shares: every unpaid
	// share where Payment.From owes an expense paid by Payment.To.
	var syncErr error
	for _, expense := range req.Expenses {
		payer := expense.Payer()
		if payer == nil || payer.Name != req.Payment.To {
			continue
		}
		for _, share := range expense.Shares {
			if share.Name != req.Payment.From || share.Paid {
				continue
			}
			if _, err := e.deps.Store.MarkSharePaid(expense.ID, share.MemberID, result.Hash); err != nil {
				log.Printf("settlement %s: failed to mark share for %s in expense %s: %v",
					result.Hash, share.Name, expense.ID, err)
				syncErr = err
			}
		}
	}
	if syncErr != nil {
		e.mu.Lock()
		e.state.Hash = result.Hash
		e.state.Ledger = result.Ledger
		e.mu.Unlock()
		return e.fail(storeSyncError(result.Hash, syncErr))
	}

	return e.succeed(result, false), nil
}

// preflight validates a share request without side effects: both addresses
// must be known and well-formed, and when an audit contract is configured
// the obligation must not already be settled on-chain. Rejecting here
// avoids prompting the user to sign a transaction that would be wasted.
func (e *Executor) preflight(ctx context.Context, req ShareRequest) error {
	if req.Session.WalletAddress == "" {
		return validationError("wallet not connected")
	}
	if req.Share.WalletAddress == "" {
		return validationError("%s has no payment address", req.Share.Name)
	}
	if req.DestinationWallet == "" {
		return validationError("the expense payer has no payment address")
	}
	if !stellar.IsValidPaymentAddress(req.Session.WalletAddress) {
		return validationError("your wallet address is invalid")
	}
	if !stellar.IsValidPaymentAddress(req.DestinationWallet) {
		return validationError("the expense payer's address is invalid")
	}

	if e.deps.Recorder != nil {
		paid, err := e.deps.Recorder.IsPaid(ctx, req.ExpenseID, req.Share.WalletAddress)
		if err != nil {
			// The guard is best-effort; a failed read must not block a
			// legitimate payment.
			log.Printf("pre-flight IsPaid check failed for expense %s: %v", req.ExpenseID, err)
		} else if paid {
			return &Error{Kind: KindValidation, Message: ErrAlreadySettled.Error(), Err: ErrAlreadySettled}
		}
	}
	return nil
}

// run executes the building → signing → submitting leg shared by share and
// net payments.
func (e *Executor) run(ctx context.Context, instruction Instruction) (*SubmitResult, *Error) {
	// Building happens in-process; the instruction is already assembled by
	// the caller, so move straight on to the signature.
	e.setStatus(StatusSigning)
	signed, err := e.deps.Signer.Sign(ctx, instruction)
	if err != nil {
		return nil, classify(err)
	}

	e.setStatus(StatusSubmitting)
	result, err := e.deps.Submitter.Submit(ctx, signed)
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

// record runs the optional audit step. Failure here never reverts the
// payment: funds already moved, so the outcome is Success with
// OnChain=false and a logged warning.
func (e *Executor) record(ctx context.Context, facts PaymentFacts) bool {
	if e.deps.Recorder == nil || facts.TripID == uuid.Nil {
		return false
	}

	e.setStatus(StatusRecording)
	ref, err := e.deps.Recorder.Record(ctx, facts)
	if err != nil {
		log.Printf("on-chain recording failed for tx %s: %v", facts.TxHash, err)
		return false
	}

	for attempt := 0; attempt < config.RecordPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			log.Printf("on-chain confirmation abandoned for tx %s: %v", facts.TxHash, ctx.Err())
			return false
		case <-time.After(e.deps.PollInterval):
		}

		confirmed, err := e.deps.Recorder.CheckRecord(ctx, ref)
		if err != nil {
			log.Printf("on-chain confirmation failed for tx %s: %v", facts.TxHash, err)
			return false
		}
		if confirmed {
			return true
		}
	}

	log.Printf("on-chain confirmation timed out for tx %s", facts.TxHash)
	return false
}

func (e *Executor) succeed(result *SubmitResult, onChain bool) State {
	e.mu.Lock()
	e.state = State{
		Status:  StatusSuccess,
		Hash:    result.Hash,
		Ledger:  result.Ledger,
		OnChain: onChain,
	}
	final := e.state
	e.mu.Unlock()
	return final
}

// ContributingShares returns, per expense, the unpaid shares a net payment
// from debtor to creditor would retire. Exposed so callers can show what a
// settlement covers before paying it.
func ContributingShares(expenses []*dbt.Expense, from, to string) map[string]int {
	counts := make(map[string]int)
	for _, expense := range expenses {
		payer := expense.Payer()
		if payer == nil || payer.Name != to {
			continue
		}
		for _, share := range expense.Shares {
			if share.Name == from && !share.Paid {
				counts[expense.ID.String()]++
			}
		}
	}
	return counts
}
