package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTaxonomy_Classifiers(t *testing.T) {
	validation := &ValidationError{Field: "email", Message: "invalid email format"}
	rule := &RuleViolationError{Rule: "stockAvailability", Message: "insufficient stock"}
	transition := &IllegalTransitionError{EntityType: "order", From: "confirmed", To: "ready"}

	if !IsValidation(validation) || IsValidation(rule) {
		t.Fatal("IsValidation misclassified")
	}
	if !IsRuleViolation(rule) || IsRuleViolation(validation) {
		t.Fatal("IsRuleViolation misclassified")
	}
	if !IsIllegalTransition(transition) || IsIllegalTransition(rule) {
		t.Fatal("IsIllegalTransition misclassified")
	}
}

func TestErrorTaxonomy_WrappedClassification(t *testing.T) {
	wrapped := fmt.Errorf("create order: %w", &RuleViolationError{Rule: "minimumAdvanceNotice", Message: "too soon"})
	if !IsRuleViolation(wrapped) {
		t.Fatal("expected wrapped rule violation to classify")
	}
}

func TestSideEffectError_Unwrap(t *testing.T) {
	se := &SideEffectError{Op: "stock decrement", Err: ErrInsufficientStock}
	if !errors.Is(se, ErrInsufficientStock) {
		t.Fatal("expected SideEffectError to unwrap to cause")
	}
}

func TestErrorList_MessageAndUnwrap(t *testing.T) {
	list := ErrorList{
		&ValidationError{Field: "name", Message: "must be 2-50 characters"},
		&ValidationError{Field: "phone", Message: "invalid phone number"},
	}

	msg := list.Error()
	if msg != "name: must be 2-50 characters; phone: invalid phone number" {
		t.Fatalf("unexpected message: %q", msg)
	}
	if !IsValidation(list) {
		t.Fatal("expected errors.As to reach list members")
	}
}

func TestIsVersionConflict(t *testing.T) {
	if !IsVersionConflict(fmt.Errorf("save: %w", ErrOrderVersionConflict)) {
		t.Fatal("expected wrapped version conflict to match")
	}
	if IsVersionConflict(ErrOrderNotFound) {
		t.Fatal("unexpected match for not found")
	}
}

func TestIllegalTransitionError_Message(t *testing.T) {
	err := &IllegalTransitionError{EntityType: "order", From: "confirmed", To: "ready"}
	want := "illegal order transition: confirmed -> ready"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
