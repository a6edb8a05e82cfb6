package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name            string
		err             error
		callerCancelled bool
		expected        Outcome
	}{
		{name: "Nil", err: nil, expected: OutcomeOk},
		{name: "Caller_Cancelled", err: context.DeadlineExceeded, callerCancelled: true, expected: OutcomeCancelled},
		{name: "Context_Cancelled", err: fmt.Errorf("normalize: %w", context.Canceled), expected: OutcomeCancelled},
		{name: "Deadline", err: fmt.Errorf("search: %w", context.DeadlineExceeded), expected: OutcomeTimedOut},
		{name: "Invalid_Input", err: fmt.Errorf("bad: %w", ErrInvalidInput), expected: OutcomeInvalidInput},
		{name: "Not_Found", err: ErrNotFound, expected: OutcomeNotFound},
		{name: "Upstream", err: fmt.Errorf("dial: %w", ErrUpstreamUnavailable), expected: OutcomeUpstreamUnavailable},
		{name: "Unknown", err: errors.New("boom"), expected: OutcomeInternal},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err, tc.callerCancelled); got != tc.expected {
				t.Errorf("Classify(%v, %v) = %q, want %q", tc.err, tc.callerCancelled, got, tc.expected)
			}
		})
	}
}

func TestFullAddress(t *testing.T) {
	rec := AddressRecord{Locality: "Москва", Street: "Тверская улица", HouseNumber: "10"}
	if got := rec.FullAddress(); got != "Москва, Тверская улица, 10" {
		t.Errorf("FullAddress() = %q", got)
	}

	rec = AddressRecord{Street: "Невский проспект"}
	if got := rec.FullAddress(); got != "Невский проспект" {
		t.Errorf("FullAddress() = %q", got)
	}
}
