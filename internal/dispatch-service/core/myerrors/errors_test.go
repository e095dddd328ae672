package myerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{NotFound("x"), KindNotFound},
		{InvalidState("x"), KindInvalidState},
		{RoleMismatch("x"), KindRoleMismatch},
		{Forbidden("x"), KindForbidden},
		{AlreadyCancelled("x"), KindAlreadyCancelled},
		{WalletNotFound("x"), KindWalletNotFound},
		{MissingOnBehalfData("x"), KindMissingOnBehalfData},
		{DependencyFailure("x", errors.New("io")), KindDependencyFailure},
		{InvalidInput("x", errors.New("bad field")), KindInvalidInput},
		{errors.New("plain"), KindUnknown},
		{nil, KindUnknown},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.kind {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.kind)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading booking: %w", NotFound("booking not exists"))
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf(wrapped) = %v, want KindNotFound", KindOf(err))
	}
}

func TestErrorMessage(t *testing.T) {
	err := DependencyFailure("query failed", errors.New("conn refused"))
	if err.Error() != "query failed: conn refused" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err := NotFound("user not exists"); err.Error() != "user not exists" {
		t.Errorf("Error() = %q", err.Error())
	}
}
