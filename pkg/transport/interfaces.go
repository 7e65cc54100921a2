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

// Package transport provides transport layer abstractions for the FROST
// enrollment protocol.
//
// The transport layer enables distributed enrollment by providing:
//   - Relay for message routing between helpers and the joiner
//   - Helper interface for involved-set members
//   - Joiner interface for the participant being admitted
//   - Pluggable codec support (JSON, CBOR, MessagePack, YAML, BSON, TOML)
//
// The Relay is a message router with no cryptographic role. It:
//   - Accepts connections from helpers and the joiner
//   - Routes addressed enrollment shares between helpers
//   - Collects aggregate shares and delivers them to the joiner
//   - Manages session lifecycle
//   - Never sees an unsplit share contribution
//
// Helpers connect to a Relay and execute the protocol by:
//   - Joining the session with their participant index
//   - Generating and submitting addressed enrollment shares
//   - Receiving the shares other helpers addressed to them
//   - Submitting their aggregate enrollment share
//
// The joiner connects, waits for the aggregate shares from all t
// helpers, and derives its new secret share locally.
package transport

import (
	"context"
	"fmt"
	"time"
)

// Logger interface for transport layer logging.
// Implementations can be provided by callers to capture transport events.
type Logger interface {
	// Info logs informational messages.
	Info(format string, args ...interface{})
	// Debug logs debug messages (verbose output).
	Debug(format string, args ...interface{})
	// Error logs error messages.
	Error(format string, args ...interface{})
}

// NopLogger is a no-op logger that discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(format string, args ...interface{})  {}
func (NopLogger) Debug(format string, args ...interface{}) {}
func (NopLogger) Error(format string, args ...interface{}) {}

// StdoutLogger logs to stdout with a prefix.
type StdoutLogger struct {
	Prefix  string
	Verbose bool
}

func (l *StdoutLogger) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("[%s] %s\n", l.Prefix, msg)
}

func (l *StdoutLogger) Debug(format string, args ...interface{}) {
	if l.Verbose {
		msg := fmt.Sprintf(format, args...)
		fmt.Printf("[%s] DEBUG: %s\n", l.Prefix, msg)
	}
}

func (l *StdoutLogger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("[%s] ERROR: %s\n", l.Prefix, msg)
}

// Protocol represents supported transport protocols.
type Protocol string

const (
	// ProtocolMemory uses in-process channel-based communication.
	ProtocolMemory Protocol = "memory"
)

// Config holds transport layer configuration.
type Config struct {
	// Protocol specifies the transport protocol to use.
	Protocol Protocol

	// Address identifies the relay endpoint. For the memory protocol
	// this is an arbitrary session identifier.
	Address string

	// CodecType specifies message serialization format.
	// Supported: "json", "msgpack", "cbor", "yaml", "bson", "toml"
	// Default: "json"
	CodecType string

	// Ciphersuite is the FROST ciphersuite identifier.
	// Example: "FROST-ED25519-SHA512-v1"
	Ciphersuite string

	// Timeout is the connection and operation timeout.
	// Default: 30 seconds
	Timeout time.Duration

	// MaxMessageSize is the maximum message size in bytes.
	// Default: 1MB
	MaxMessageSize int

	// JoinRate is the sustained number of join requests accepted per
	// second. Zero selects DefaultJoinRate.
	JoinRate float64

	// JoinBurst is the join request burst size. Zero selects
	// DefaultJoinBurst.
	JoinBurst int

	// Logger for transport layer events.
	// If nil, a NopLogger is used.
	Logger Logger
}

// Relay interface manages an enrollment session by routing messages
// between the helpers and the joiner.
//
// The relay has no cryptographic role. It never holds an unsplit share
// contribution; each value it routes is a single additive share or an
// already-blinded aggregate.
//
// Lifecycle:
//  1. Start() - Begin accepting connections
//  2. WaitForMembers() - Wait for the t helpers and the joiner
//  3. (Message routing happens automatically)
//  4. Stop() - Shutdown and cleanup
type Relay interface {
	// Start begins listening for member connections.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the relay.
	Stop(ctx context.Context) error

	// Address returns the endpoint members connect to.
	Address() string

	// SessionID returns the unique identifier for this enrollment
	// session.
	SessionID() string

	// WaitForMembers blocks until all t helpers and the joiner have
	// connected. Returns an error if the context expires first.
	WaitForMembers(ctx context.Context) error
}

// Member interface represents a protocol member connected to a relay,
// either a helper from the involved set or the joiner.
type Member interface {
	// Connect establishes a connection to the relay at the given
	// address.
	Connect(ctx context.Context, addr string) error

	// Disconnect closes the connection to the relay.
	// Any in-progress session is abandoned.
	Disconnect() error

	// RunEnrollment executes this member's side of the enrollment
	// protocol. Blocks until the session completes or fails.
	RunEnrollment(ctx context.Context, params *EnrollmentParams) (*EnrollmentResult, error)
}

// EnrollmentParams contains a member's parameters for one enrollment
// session.
//
// A helper provides its index, its serialized secret share and the
// group public key. The joiner provides NewIndex as its own index and
// leaves Share empty.
type EnrollmentParams struct {
	// SelfIndex is this member's 1-based participant index. For the
	// joiner it equals NewIndex.
	SelfIndex int

	// Threshold is the signing threshold t.
	Threshold int

	// NumParticipants is the current total participant count n,
	// before the joiner is admitted.
	NumParticipants int

	// Involved is the t-member involved set, by participant index.
	Involved []int

	// NewIndex is the index the joiner will occupy.
	NewIndex int

	// Share is the serialized secret share scalar. Empty for the
	// joiner.
	Share []byte

	// GroupKey is the serialized group public key element. Empty for
	// the joiner; it learns the key from the session.
	GroupKey []byte
}

// EnrollmentResult contains the output of a completed enrollment
// session.
//
// For the joiner, Share is the freshly derived secret share and MUST be
// kept confidential. For a helper, Share echoes its unchanged share.
type EnrollmentResult struct {
	// Index is this member's participant index after the session.
	Index int

	// Share is the serialized secret share scalar.
	// MUST be kept confidential and securely stored.
	Share []byte

	// GroupKey is the serialized group public key, unchanged by
	// enrollment.
	GroupKey []byte

	// NumParticipants is the grown participant count n+1.
	NumParticipants int

	// SessionID is the unique identifier for this session.
	SessionID string
}

// SessionConfig contains configuration for a relay enrollment session.
//
// The relay uses this to validate incoming members and manage session
// lifecycle.
type SessionConfig struct {
	// SessionID is the unique identifier for this session.
	// If empty, an ID is generated when the relay starts.
	SessionID string

	// Threshold is the signing threshold t.
	Threshold int

	// NumParticipants is the current total participant count n.
	NumParticipants int

	// Involved is the t-member involved set, by participant index.
	Involved []int

	// NewIndex is the index the joiner will occupy.
	NewIndex int

	// Ciphersuite is the FROST ciphersuite identifier.
	// Example: "FROST-ED25519-SHA512-v1"
	Ciphersuite string

	// Timeout is the maximum time to wait for session completion.
	// Default: 5 minutes
	Timeout time.Duration
}
