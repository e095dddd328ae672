package myerrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so transports can map it to a response without
// parsing free text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidState
	KindRoleMismatch
	KindForbidden
	KindAlreadyCancelled
	KindWalletNotFound
	KindMissingOnBehalfData
	KindDependencyFailure
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindRoleMismatch:
		return "role_mismatch"
	case KindForbidden:
		return "forbidden"
	case KindAlreadyCancelled:
		return "already_cancelled"
	case KindWalletNotFound:
		return "wallet_not_found"
	case KindMissingOnBehalfData:
		return "missing_on_behalf_data"
	case KindDependencyFailure:
		return "dependency_failure"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func InvalidState(msg string) error {
	return &Error{Kind: KindInvalidState, Msg: msg}
}

func RoleMismatch(msg string) error {
	return &Error{Kind: KindRoleMismatch, Msg: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

func AlreadyCancelled(msg string) error {
	return &Error{Kind: KindAlreadyCancelled, Msg: msg}
}

func WalletNotFound(msg string) error {
	return &Error{Kind: KindWalletNotFound, Msg: msg}
}

func MissingOnBehalfData(msg string) error {
	return &Error{Kind: KindMissingOnBehalfData, Msg: msg}
}

func DependencyFailure(msg string, err error) error {
	return &Error{Kind: KindDependencyFailure, Msg: msg, Err: err}
}

func InvalidInput(msg string, err error) error {
	return &Error{Kind: KindInvalidInput, Msg: msg, Err: err}
}

// KindOf reports the Kind carried by err, or KindUnknown for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
