// SPDX-License-Identifier: Apache-2.0
//
// Copyright 2025 The frost-enrollment Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	sentinels := []error{
		ErrConnectionFailed,
		ErrConnectionClosed,
		ErrConnectionTimeout,
		ErrAlreadyConnected,
		ErrNotConnected,
		ErrSessionNotFound,
		ErrSessionExists,
		ErrSessionClosed,
		ErrSessionTimeout,
		ErrSessionFull,
		ErrDuplicateMember,
		ErrNotInvolved,
		ErrJoinRateLimited,
		ErrInvalidMessage,
		ErrMessageTooLarge,
		ErrMessageTimeout,
		ErrUnexpectedMessage,
		ErrGroupKeyMismatch,
		ErrCiphersuiteMismatch,
		ErrInvalidConfig,
		ErrInvalidProtocol,
		ErrInvalidAddress,
		ErrInvalidThreshold,
		ErrInvalidInvolvedSet,
		ErrInvalidMemberIndex,
		ErrInvalidShareData,
		ErrCodecNotSupported,
		ErrEncodingFailed,
		ErrDecodingFailed,
		ErrEnrollmentFailed,
		ErrEnrollmentAborted,
		ErrInvalidEnrollmentParams,
	}

	seen := make(map[string]bool)
	for _, err := range sentinels {
		if err == nil {
			t.Fatal("expected non-nil sentinel error")
		}
		msg := err.Error()
		if msg == "" {
			t.Error("expected non-empty error message")
		}
		if seen[msg] {
			t.Errorf("duplicate error message: %s", msg)
		}
		seen[msg] = true
	}
}

func TestConnectionError(t *testing.T) {
	inner := ErrConnectionFailed
	err := NewConnectionError("session-1", inner)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %T", err)
	}
	if connErr.Address != "session-1" {
		t.Errorf("expected address session-1, got %s", connErr.Address)
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("expected ErrConnectionFailed in chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "session-1") {
		t.Errorf("expected address in message, got %s", err.Error())
	}

	if NewConnectionError("addr", nil) != nil {
		t.Error("expected nil for nil inner error")
	}
}

func TestSessionError(t *testing.T) {
	err := NewSessionError("abc-123", ErrSessionTimeout)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var sessErr *SessionError
	if !errors.As(err, &sessErr) {
		t.Fatalf("expected SessionError, got %T", err)
	}
	if sessErr.SessionID != "abc-123" {
		t.Errorf("expected session ID abc-123, got %s", sessErr.SessionID)
	}
	if !errors.Is(err, ErrSessionTimeout) {
		t.Errorf("expected ErrSessionTimeout in chain, got %v", err)
	}

	if NewSessionError("abc-123", nil) != nil {
		t.Error("expected nil for nil inner error")
	}
}

func TestMemberError(t *testing.T) {
	err := NewMemberError(7, ErrNotInvolved)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var memErr *MemberError
	if !errors.As(err, &memErr) {
		t.Fatalf("expected MemberError, got %T", err)
	}
	if memErr.Index != 7 {
		t.Errorf("expected index 7, got %d", memErr.Index)
	}
	if !errors.Is(err, ErrNotInvolved) {
		t.Errorf("expected ErrNotInvolved in chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "7") {
		t.Errorf("expected index in message, got %s", err.Error())
	}

	if NewMemberError(7, nil) != nil {
		t.Error("expected nil for nil inner error")
	}
}

func TestWrapperErrors_Nested(t *testing.T) {
	// A relay failure wraps the member error, which wraps the sentinel.
	inner := NewMemberError(2, ErrDuplicateMember)
	outer := NewSessionError("nested", fmt.Errorf("join rejected: %w", inner))

	if !errors.Is(outer, ErrDuplicateMember) {
		t.Errorf("expected ErrDuplicateMember through nesting, got %v", outer)
	}
	var memErr *MemberError
	if !errors.As(outer, &memErr) {
		t.Errorf("expected MemberError through nesting, got %v", outer)
	}
}
