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
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default connection timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxMessageSize is the default maximum message size (1MB).
	DefaultMaxMessageSize = 1024 * 1024

	// DefaultCodec is the default message codec.
	DefaultCodec = "json"

	// DefaultSessionTimeout is the default session timeout.
	DefaultSessionTimeout = 5 * time.Minute

	// DefaultJoinRate is the default sustained join requests per second.
	DefaultJoinRate = 10.0

	// DefaultJoinBurst is the default join request burst size.
	DefaultJoinBurst = 20
)

// NewConfig creates a new Config with default values.
//
// The returned config has:
//   - Protocol: ProtocolMemory
//   - CodecType: "json"
//   - Timeout: 30 seconds
//   - MaxMessageSize: 1MB
//   - JoinRate: 10/s with a burst of 20
//
// Callers should set Address and the ciphersuite.
func NewConfig() *Config {
	return &Config{
		Protocol:       ProtocolMemory,
		CodecType:      DefaultCodec,
		Timeout:        DefaultTimeout,
		MaxMessageSize: DefaultMaxMessageSize,
		JoinRate:       DefaultJoinRate,
		JoinBurst:      DefaultJoinBurst,
	}
}

// NewMemoryConfig creates a Config for the in-memory transport.
func NewMemoryConfig(identifier string) *Config {
	cfg := NewConfig()
	cfg.Protocol = ProtocolMemory
	cfg.Address = identifier
	return cfg
}

// Validate checks if the configuration is valid.
//
/// Returns an error if:
//   - Protocol is not supported
//   - Timeout is zero or negative
//   - MaxMessageSize is zero or negative
//   - CodecType is empty or unsupported
//   - JoinRate or JoinBurst is negative
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}

	if !c.isValidProtocol() {
		return fmt.Errorf("%w: %s", ErrInvalidProtocol, c.Protocol)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}

	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("%w: max message size must be positive", ErrInvalidConfig)
	}

	if c.JoinRate < 0 || c.JoinBurst < 0 {
		return fmt.Errorf("%w: join rate and burst must be non-negative", ErrInvalidConfig)
	}

	if c.CodecType == "" {
		return fmt.Errorf("%w: codec type is required", ErrInvalidConfig)
	}

	if !c.isValidCodec() {
		return fmt.Errorf("%w: unsupported codec %s", ErrCodecNotSupported, c.CodecType)
	}

	return nil
}

// isValidProtocol checks if the protocol is supported.
func (c *Config) isValidProtocol() bool {
	switch c.Protocol {
	case ProtocolMemory:
		return true
	default:
		return false
	}
}

// isValidCodec checks if the codec is supported.
func (c *Config) isValidCodec() bool {
	switch strings.ToLower(c.CodecType) {
	case "json", "cbor", "msgpack", "yaml", "bson", "toml":
		return true
	default:
		return false
	}
}

// Clone creates a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	return &Config{
		Protocol:       c.Protocol,
		Address:        c.Address,
		CodecType:      c.CodecType,
		Ciphersuite:    c.Ciphersuite,
		Timeout:        c.Timeout,
		MaxMessageSize: c.MaxMessageSize,
		JoinRate:       c.JoinRate,
		JoinBurst:      c.JoinBurst,
		Logger:         c.Logger,
	}
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Protocol=%s, Address=%s, Codec=%s, Timeout=%s}",
		c.Protocol, c.Address, c.CodecType, c.Timeout)
}

// NewSessionConfig creates a new SessionConfig with default values.
func NewSessionConfig(threshold, numParticipants int, involved []int, newIndex int, ciphersuite string) *SessionConfig {
	return &SessionConfig{
		Threshold:       threshold,
		NumParticipants: numParticipants,
		Involved:        append([]int(nil), involved...),
		NewIndex:        newIndex,
		Ciphersuite:     ciphersuite,
		Timeout:         DefaultSessionTimeout,
	}
}

// Validate checks if the session configuration is valid.
func (sc *SessionConfig) Validate() error {
	if sc == nil {
		return ErrInvalidConfig
	}

	if sc.NumParticipants < 2 {
		return fmt.Errorf("%w: must have at least 2 participants", ErrInvalidConfig)
	}

	if sc.Threshold < 2 || sc.Threshold > sc.NumParticipants {
		return fmt.Errorf("%w: threshold must be between 2 and %d", ErrInvalidThreshold, sc.NumParticipants)
	}

	if len(sc.Involved) != sc.Threshold {
		return fmt.Errorf("%w: involved set must have exactly %d members", ErrInvalidInvolvedSet, sc.Threshold)
	}

	seen := make(map[int]struct{}, len(sc.Involved))
	for _, idx := range sc.Involved {
		if idx < 1 || idx > sc.NumParticipants {
			return fmt.Errorf("%w: involved index %d out of range", ErrInvalidMemberIndex, idx)
		}
		if _, dup := seen[idx]; dup {
			return fmt.Errorf("%w: duplicate involved index %d", ErrInvalidInvolvedSet, idx)
		}
		seen[idx] = struct{}{}
	}

	if sc.NewIndex < 1 {
		return fmt.Errorf("%w: new index must be positive", ErrInvalidMemberIndex)
	}
	if sc.NewIndex <= sc.NumParticipants {
		return fmt.Errorf("%w: new index %d is already occupied", ErrInvalidMemberIndex, sc.NewIndex)
	}

	if sc.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}

	if sc.Ciphersuite == "" {
		return fmt.Errorf("%w: ciphersuite is required", ErrInvalidConfig)
	}

	return nil
}

// String returns a string representation of the session config.
func (sc *SessionConfig) String() string {
	return fmt.Sprintf("SessionConfig{Threshold=%d, Participants=%d, Involved=%v, NewIndex=%d, Ciphersuite=%s}",
		sc.Threshold, sc.NumParticipants, sc.Involved, sc.NewIndex, sc.Ciphersuite)
}
