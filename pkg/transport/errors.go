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
)

// Connection errors.
var (
	// ErrConnectionFailed indicates that establishing a connection failed.
	ErrConnectionFailed = errors.New("transport: connection failed")

	// ErrConnectionClosed indicates the connection was closed.
	ErrConnectionClosed = errors.New("transport: connection closed")

	// ErrConnectionTimeout indicates a connection attempt timed out.
	ErrConnectionTimeout = errors.New("transport: connection timeout")

	// ErrAlreadyConnected indicates the member is already connected.
	ErrAlreadyConnected = errors.New("transport: already connected")

	// ErrNotConnected indicates the member is not connected.
	ErrNotConnected = errors.New("transport: not connected")
)

// Session and relay errors.
var (
	// ErrSessionNotFound indicates the requested session does not exist.
	ErrSessionNotFound = errors.New("transport: session not found")

	// ErrSessionExists indicates a session with this ID already exists.
	ErrSessionExists = errors.New("transport: session already exists")

	// ErrSessionClosed indicates the session has been closed.
	ErrSessionClosed = errors.New("transport: session closed")

	// ErrSessionTimeout indicates the session timed out.
	ErrSessionTimeout = errors.New("transport: session timeout")

	// ErrSessionFull indicates the session has all expected members.
	ErrSessionFull = errors.New("transport: session full")

	// ErrDuplicateMember indicates a member index is already in the session.
	ErrDuplicateMember = errors.New("transport: duplicate member")

	// ErrNotInvolved indicates the member index is not in the session's
	// involved set.
	ErrNotInvolved = errors.New("transport: member not in involved set")

	// ErrJoinRateLimited indicates join requests arrived faster than
	// the configured rate.
	ErrJoinRateLimited = errors.New("transport: join rate limited")
)

// Message and protocol errors.
var (
	// ErrInvalidMessage indicates the message format is invalid.
	ErrInvalidMessage = errors.New("transport: invalid message")

	// ErrMessageTooLarge indicates the message exceeds maximum size.
	ErrMessageTooLarge = errors.New("transport: message too large")

	// ErrMessageTimeout indicates a message send/receive timed out.
	ErrMessageTimeout = errors.New("transport: message timeout")

	// ErrUnexpectedMessage indicates a message was received out of sequence.
	ErrUnexpectedMessage = errors.New("transport: unexpected message")

	// ErrGroupKeyMismatch indicates two members presented different
	// group public keys for the same session.
	ErrGroupKeyMismatch = errors.New("transport: group key mismatch")

	// ErrCiphersuiteMismatch indicates incompatible ciphersuites.
	ErrCiphersuiteMismatch = errors.New("transport: ciphersuite mismatch")
)

// Configuration and validation errors.
var (
	// ErrInvalidConfig indicates the configuration is invalid.
	ErrInvalidConfig = errors.New("transport: invalid configuration")

	// ErrInvalidProtocol indicates an unsupported or invalid protocol.
	ErrInvalidProtocol = errors.New("transport: invalid protocol")

	// ErrInvalidAddress indicates the address format is invalid.
	ErrInvalidAddress = errors.New("transport: invalid address")

	// ErrInvalidThreshold indicates invalid threshold parameters.
	ErrInvalidThreshold = errors.New("transport: invalid threshold (must have 2 <= t <= n)")

	// ErrInvalidInvolvedSet indicates the involved set is malformed or
	// not exactly t members.
	ErrInvalidInvolvedSet = errors.New("transport: invalid involved set")

	// ErrInvalidMemberIndex indicates a member index out of range.
	ErrInvalidMemberIndex = errors.New("transport: invalid member index")

	// ErrInvalidShareData indicates a serialized share has an invalid
	// format or length.
	ErrInvalidShareData = errors.New("transport: invalid share data")
)

// Codec errors.
var (
	// ErrCodecNotSupported indicates the codec is not supported.
	ErrCodecNotSupported = errors.New("transport: codec not supported")

	// ErrEncodingFailed indicates message encoding failed.
	ErrEncodingFailed = errors.New("transport: message encoding failed")

	// ErrDecodingFailed indicates message decoding failed.
	ErrDecodingFailed = errors.New("transport: message decoding failed")
)

// Enrollment execution errors.
var (
	// ErrEnrollmentFailed indicates the enrollment protocol execution failed.
	ErrEnrollmentFailed = errors.New("transport: enrollment execution failed")

	// ErrEnrollmentAborted indicates the enrollment was aborted.
	ErrEnrollmentAborted = errors.New("transport: enrollment aborted")

	// ErrInvalidEnrollmentParams indicates invalid enrollment parameters.
	ErrInvalidEnrollmentParams = errors.New("transport: invalid enrollment parameters")
)

// ConnectionError wraps connection errors with additional context.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error (address=%s): %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a new ConnectionError.
func NewConnectionError(address string, err error) error {
	if err == nil {
		return nil
	}
	return &ConnectionError{
		Address: address,
		Err:     err,
	}
}

// SessionError wraps session errors with session context.
type SessionError struct {
	SessionID string
	Err       error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session error (session=%s): %v", e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new SessionError.
func NewSessionError(sessionID string, err error) error {
	if err == nil {
		return nil
	}
	return &SessionError{
		SessionID: sessionID,
		Err:       err,
	}
}

// MemberError wraps errors specific to a session member.
type MemberError struct {
	Index int
	Err   error
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("member error (index=%d): %v", e.Index, e.Err)
}

func (e *MemberError) Unwrap() error {
	return e.Err
}

// NewMemberError creates a new MemberError.
func NewMemberError(index int, err error) error {
	if err == nil {
		return nil
	}
	return &MemberError{
		Index: index,
		Err:   err,
	}
}
