package custody

import (
	"errors"
	"fmt"
)

// Kind is the category of a failed transfer. Callers branch on the kind, never on
// the message text.
type Kind string

const (
	KindUnknown       Kind = ""
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindCustody       Kind = "custody"
	KindChain         Kind = "chain"
	KindSubmission    Kind = "submission"
	KindUnconfirmed   Kind = "unconfirmed"
	KindInFlight      Kind = "in_flight"
)

var (
	// validation
	ErrMissingTokenID         = errors.New("tokenId is required")
	ErrInvalidTokenID         = errors.New("tokenId must be a non-negative integer")
	ErrMissingWallet          = errors.New("companionWallet is required")
	ErrInvalidAddress         = errors.New("companionWallet is not a valid address")
	ErrIdempotencyKeyMismatch = errors.New("idempotency key was used for a different transfer")
	ErrCompanionIsAdmin       = errors.New("companionWallet must not be the admin wallet")

	// configuration
	ErrMissingAdminKey   = errors.New("admin private key is not configured")
	ErrMalformedAdminKey = errors.New("admin private key is malformed")

	// custody
	ErrNotInCustody = errors.New("token is not in admin custody")

	// chain
	ErrTokenNotFound = errors.New("token not found")

	// submission
	ErrSubmission = errors.New("transfer failed to submit")
	ErrReverted   = errors.New("transfer reverted")

	// unconfirmed
	ErrUnconfirmed = errors.New("transfer was submitted but not confirmed in time")

	// in flight
	ErrTransferInFlight = errors.New("a transfer for this token is already in progress")
)

const AdminKeyFormatHint = "expected 0x followed by 64 hex characters"

// Error is a transfer failure with the diagnostic fields an operator needs.
type Error struct {
	Kind    Kind
	Message string

	// configuration
	Hint string

	// custody
	CurrentOwner string
	AdminWallet  string

	// submission, unconfirmed
	TxHash string

	// in flight
	TokenID string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != e.Err.Error() {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

func NewValidationError(err error) *Error {
	return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
}

// NewConfigurationError describes a bad admin key by its length only.
func NewConfigurationError(err error, observedLength int) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: err.Error(),
		Hint:    fmt.Sprintf("%s, got a value of length %d", AdminKeyFormatHint, observedLength),
		Err:     err,
	}
}

func NewCustodyError(currentOwner, adminWallet string) *Error {
	return &Error{
		Kind:         KindCustody,
		Message:      ErrNotInCustody.Error(),
		CurrentOwner: currentOwner,
		AdminWallet:  adminWallet,
		Err:          ErrNotInCustody,
	}
}

func NewChainError(err error) *Error {
	msg := "failed to read token owner"
	if errors.Is(err, ErrTokenNotFound) {
		msg = ErrTokenNotFound.Error()
	}

	return &Error{Kind: KindChain, Message: msg, Err: err}
}

func NewSubmissionError(err error, txHash string) *Error {
	msg := ErrSubmission.Error()
	if errors.Is(err, ErrReverted) {
		msg = ErrReverted.Error()
	}

	return &Error{Kind: KindSubmission, Message: msg, TxHash: txHash, Err: err}
}

func NewUnconfirmedError(err error, txHash string) *Error {
	return &Error{Kind: KindUnconfirmed, Message: ErrUnconfirmed.Error(), TxHash: txHash, Err: err}
}

func NewInFlightError(tokenID string) *Error {
	return &Error{Kind: KindInFlight, Message: ErrTransferInFlight.Error(), TokenID: tokenID, Err: ErrTransferInFlight}
}
