package service

import "errors"

// Sentinel errors shared across the workflow services. Handlers map these
// onto the HTTP taxonomy (400 validation, 403 forbidden, 404 not-found,
// 409 business-rule conflict, 500 internal).
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrGuideNotFound    = errors.New("park guide not found")
	ErrModuleNotFound   = errors.New("module not found")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrPaymentNotFound  = errors.New("payment transaction not found")
	ErrAttemptNotFound  = errors.New("quiz attempt not found")
	ErrAccessDenied     = errors.New("module access denied")
	ErrModuleNotFree    = errors.New("module requires payment")
	ErrNoActivePurchase = errors.New("no active purchase for module")
	ErrAttemptMismatch  = errors.New("attempt does not belong to caller")
	ErrAttemptFinalized = errors.New("attempt already finalized")
	ErrInvalidDecision  = errors.New("invalid status decision")
	ErrInvalidAnswers   = errors.New("invalid answer set")
	ErrInvalidReceipt   = errors.New("invalid receipt file")
)
