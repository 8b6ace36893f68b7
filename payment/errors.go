package payment

import (
	"errors"
	"fmt"

	"settlex/stellar"
)

// Kind classifies a payment failure. The classification decides how the
// failure is presented: a user cancelling in their wallet is not an alarm,
// a store write failing after funds moved very much is.
type Kind int

const (
	KindValidation Kind = iota
	KindUserCancelled
	KindSubmission
	KindRecording
	KindStoreSync
)

// ErrUserCancelled is returned (possibly wrapped) by a Signer when the user
// declined to sign.
var ErrUserCancelled = errors.New("transaction cancelled in wallet")

// ErrAlreadySettled is the pre-flight duplicate guard: the obligation is
// already recorded paid on-chain, so there is nothing to sign.
var ErrAlreadySettled = errors.New("this payment was already recorded on-chain, no action needed")

// ErrBusy is returned when PayShare is invoked on an executor that is not
// idle. One executor serves one in-flight obligation at a time.
var ErrBusy = errors.New("a payment is already in flight on this executor")

// Error is a classified payment failure. Message is ready for display.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SubmissionError carries the network's raw result codes for a rejected
// payment. Its message is the mapped human-readable explanation.
type SubmissionError struct {
	TxCode  string
	OpCodes []string
}

func (e *SubmissionError) Error() string {
	return stellar.ClassifySubmitError(e.TxCode, e.OpCodes)
}

// classify wraps err into a payment Error with a display-ready message.
func classify(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	if errors.Is(err, ErrUserCancelled) {
		return &Error{Kind: KindUserCancelled, Message: ErrUserCancelled.Error(), Err: err}
	}

	var se *SubmissionError
	if errors.As(err, &se) {
		return &Error{Kind: KindSubmission, Message: se.Error(), Err: err}
	}

	return &Error{Kind: KindSubmission, Message: err.Error(), Err: err}
}

func validationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func storeSyncError(txHash string, err error) *Error {
	return &Error{
		Kind:    KindStoreSync,
		Message: "payment sent but not recorded, verify the recipient address",
		Err:     fmt.Errorf("mark paid after tx %s: %w", txHash, err),
	}
}
