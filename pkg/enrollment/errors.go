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

// Package enrollment implements the FROST enrollment protocol.
package enrollment

import (
	"errors"
	"fmt"
)

// Validation constants aligned with Zcash FROST reference implementation.
const (
	// MinThreshold is the minimum allowed threshold value.
	// A threshold of 1 provides no threshold security.
	MinThreshold = 2

	// MinParticipants is the minimum allowed number of participants.
	MinParticipants = 2

	// MaxParticipants is the maximum allowed number of participants.
	// This prevents DoS attacks from excessive memory allocation.
	// Aligned with Zcash FROST's use of u16 (65535 max).
	MaxParticipants = 65535

	// MinSecurityLevel is the minimum accepted security level in bits.
	MinSecurityLevel = 128
)

// Input validation errors for enrollment operations.
var (
	// ErrInvalidThreshold indicates the threshold value is invalid.
	// The threshold must be at least MinThreshold and at most the number
	// of participants.
	ErrInvalidThreshold = errors.New("enrollment: invalid threshold")

	// ErrInvalidParticipantIndex indicates a participant index is invalid.
	// Participant indices are 1-based; zero and negative values are rejected.
	ErrInvalidParticipantIndex = errors.New("enrollment: invalid participant index")

	// ErrInvalidParticipantCount indicates an invalid total participant count.
	ErrInvalidParticipantCount = errors.New("enrollment: invalid participant count")

	// ErrDuplicateParticipant indicates duplicate indices in an involved set.
	// Involved-set indices must be unique.
	ErrDuplicateParticipant = errors.New("enrollment: duplicate participant index")

	// ErrNotInvolved indicates the participant is not a member of the
	// involved set it was asked to operate on.
	ErrNotInvolved = errors.New("enrollment: participant not in involved set")

	// ErrIndexInUse indicates the index chosen for the new participant is
	// already assigned to an existing participant.
	ErrIndexInUse = errors.New("enrollment: new participant index already in use")

	// ErrInvalidShareCount indicates a round received the wrong number of
	// shares. Each round requires an exact count, never fewer or more.
	ErrInvalidShareCount = errors.New("enrollment: invalid share count")

	// ErrInvalidSecurityLevel indicates a configured security level below
	// MinSecurityLevel bits.
	ErrInvalidSecurityLevel = errors.New("enrollment: security level below minimum")

	// ErrInvalidPolicy indicates a nil or invalid coordinator policy.
	ErrInvalidPolicy = errors.New("enrollment: invalid policy configuration")
)

// Field arithmetic errors.
var (
	// ErrZeroScalar indicates a scalar is zero in a context where it is not
	// allowed. This occurs when attempting to compute the multiplicative
	// inverse of zero, or when a Lagrange denominator degenerates.
	ErrZeroScalar = errors.New("enrollment: zero scalar")
)

// Protocol state errors.
var (
	// ErrInvalidState indicates a protocol operation was invoked out of
	// sequence, e.g. aggregating before generating. The participant's
	// state is left unchanged.
	ErrInvalidState = errors.New("enrollment: operation invoked in invalid protocol state")

	// ErrNotEnrolled indicates an operation that requires a completed
	// enrollment was invoked on a participant that has not enrolled.
	ErrNotEnrolled = errors.New("enrollment: participant not enrolled")

	// ErrMissingShare indicates no enrollment share was addressed to the
	// requested recipient index in this session.
	ErrMissingShare = errors.New("enrollment: no share addressed to recipient")

	// ErrBackupDisabled indicates metadata export was requested while the
	// policy has share backup disabled.
	ErrBackupDisabled = errors.New("enrollment: share backup disabled by policy")
)

// Invariant violations. These signal a bug or corrupted input and are
// never expected in correct operation.
var (
	// ErrShareSumMismatch indicates the additive split of a secret does not
	// sum back to the secret.
	ErrShareSumMismatch = errors.New("enrollment: share sum does not match secret")

	// ErrGroupKeyMismatch indicates the helper set does not agree on the
	// group public key.
	ErrGroupKeyMismatch = errors.New("enrollment: group public key mismatch across helpers")
)

// Session errors.
var (
	// ErrSessionAborted indicates the enrollment session was aborted and
	// cannot be resumed. A new session must be started from scratch.
	ErrSessionAborted = errors.New("enrollment: session aborted")

	// ErrSessionTerminal indicates an operation on a session that has
	// already completed or aborted.
	ErrSessionTerminal = errors.New("enrollment: session already in terminal phase")
)

// SessionError wraps a failure of the per-session state machine,
// carrying the phase in which the session aborted for diagnostics.
type SessionError struct {
	// SessionID identifies the failed session.
	SessionID string
	// Phase is the phase the session was in when it aborted.
	Phase SessionPhase
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return fmt.Sprintf("enrollment: session %s aborted in phase %s: %v", e.SessionID, e.Phase, e.Err)
}

// Unwrap returns the underlying error for error chain unwrapping.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new SessionError.
func NewSessionError(sessionID string, phase SessionPhase, err error) *SessionError {
	return &SessionError{
		SessionID: sessionID,
		Phase:     phase,
		Err:       err,
	}
}

// ParticipantOpError reports a failed protocol operation on a specific
// participant, identifying the participant by its 1-based index.
type ParticipantOpError struct {
	Index int
	Op    string
	Err   error
}

func (e *ParticipantOpError) Error() string {
	return fmt.Sprintf("enrollment: participant %d: %s: %v", e.Index, e.Op, e.Err)
}

func (e *ParticipantOpError) Unwrap() error {
	return e.Err
}

// NewParticipantOpError creates a new ParticipantOpError.
func NewParticipantOpError(index int, op string, err error) *ParticipantOpError {
	return &ParticipantOpError{
		Index: index,
		Op:    op,
		Err:   err,
	}
}
