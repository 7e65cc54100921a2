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

// Package memory provides an in-process transport implementation for
// the FROST enrollment protocol.
//
// The memory transport runs the relay and all members within one
// process, using channels for message passing. It is the reference
// backend for the transport interfaces and carries the full protocol:
// addressed share routing, aggregate share collection, and delivery to
// the joiner.
//
// Key features:
//   - Channel-based message routing
//   - Thread-safe operations
//   - Support for multiple concurrent enrollment sessions
//   - Rate-limited session joins
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/siv2r/frost-enrollment/pkg/transport"
)

// Message represents an internal message in the memory transport.
type Message struct {
	Envelope     *transport.Envelope
	ResponseChan chan *transport.Envelope
	ErrorChan    chan error
}

// Session represents an active enrollment session in memory.
type Session struct {
	ID        string
	Config    *transport.SessionConfig
	Members   map[int]*MemberConnection
	MembersMu sync.RWMutex

	MessageChan chan *Message
	Started     time.Time
	Closed      bool
	CloseMu     sync.RWMutex
}

// MemberConnection represents a member's connection to the relay,
// keyed by participant index.
type MemberConnection struct {
	Index       int
	Role        string
	MessageChan chan *transport.Envelope
	SessionID   string
	Connected   bool
	ConnectedMu sync.RWMutex
}

// MemoryTransport manages in-process message passing between a relay
// and its session members.
type MemoryTransport struct {
	sessions   map[string]*Session
	sessionsMu sync.RWMutex
	serializer *transport.Serializer
	limiter    *rate.Limiter
	metrics    *transport.MetricsCollector
	logger     transport.Logger
}

// NewMemoryTransport creates a new in-memory transport from the given
// config. A nil config selects all defaults.
func NewMemoryTransport(cfg *transport.Config) (*MemoryTransport, error) {
	if cfg == nil {
		cfg = transport.NewMemoryConfig("")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	serializer, err := transport.NewSerializer(cfg.CodecType)
	if err != nil {
		return nil, fmt.Errorf("failed to create serializer: %w", err)
	}

	joinRate := cfg.JoinRate
	if joinRate == 0 {
		joinRate = transport.DefaultJoinRate
	}
	joinBurst := cfg.JoinBurst
	if joinBurst == 0 {
		joinBurst = transport.DefaultJoinBurst
	}

	logger := cfg.Logger
	if logger == nil {
		logger = transport.NopLogger{}
	}

	metrics, err := transport.NewMetricsCollector(nil)
	if err != nil {
		return nil, err
	}

	return &MemoryTransport{
		sessions:   make(map[string]*Session),
		serializer: serializer,
		limiter:    rate.NewLimiter(rate.Limit(joinRate), joinBurst),
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// CreateSession creates a new enrollment session.
func (mt *MemoryTransport) CreateSession(sessionID string, config *transport.SessionConfig) (*Session, error) {
	if sessionID == "" {
		return nil, transport.ErrInvalidConfig
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	mt.sessionsMu.Lock()
	defer mt.sessionsMu.Unlock()

	if _, exists := mt.sessions[sessionID]; exists {
		return nil, transport.ErrSessionExists
	}

	session := &Session{
		ID:          sessionID,
		Config:      config,
		Members:     make(map[int]*MemberConnection),
		MessageChan: make(chan *Message, 100),
		Started:     time.Now(),
	}

	mt.sessions[sessionID] = session
	mt.logger.Debug("created session %s (%s)", sessionID, config)
	return session, nil
}

// GetSession retrieves a session by ID.
func (mt *MemoryTransport) GetSession(sessionID string) (*Session, error) {
	mt.sessionsMu.RLock()
	defer mt.sessionsMu.RUnlock()

	session, exists := mt.sessions[sessionID]
	if !exists {
		return nil, transport.ErrSessionNotFound
	}
	return session, nil
}

// CloseSession closes and removes a session.
func (mt *MemoryTransport) CloseSession(sessionID string) error {
	mt.sessionsMu.Lock()
	defer mt.sessionsMu.Unlock()

	session, exists := mt.sessions[sessionID]
	if !exists {
		return transport.ErrSessionNotFound
	}

	session.CloseMu.Lock()
	if !session.Closed {
		session.Closed = true
		close(session.MessageChan)
	}
	session.CloseMu.Unlock()

	delete(mt.sessions, sessionID)
	return nil
}

// AddMember registers a member with a session. Joins are rate-limited;
// requests beyond the configured rate fail with ErrJoinRateLimited.
func (mt *MemoryTransport) AddMember(sessionID string, index int, role string) (*MemberConnection, error) {
	session, err := mt.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	if !mt.limiter.Allow() {
		mt.metrics.JoinRejected()
		return nil, transport.ErrJoinRateLimited
	}

	switch role {
	case transport.RoleHelper:
		if !containsIndex(session.Config.Involved, index) {
			return nil, transport.NewMemberError(index, transport.ErrNotInvolved)
		}
	case transport.RoleJoiner:
		if index != session.Config.NewIndex {
			return nil, transport.NewMemberError(index, transport.ErrInvalidMemberIndex)
		}
	default:
		return nil, transport.ErrInvalidConfig
	}

	session.MembersMu.Lock()
	defer session.MembersMu.Unlock()

	// One connection per helper plus the joiner.
	if len(session.Members) >= session.Config.Threshold+1 {
		return nil, transport.ErrSessionFull
	}
	if _, exists := session.Members[index]; exists {
		return nil, transport.ErrDuplicateMember
	}

	conn := &MemberConnection{
		Index:       index,
		Role:        role,
		MessageChan: make(chan *transport.Envelope, 100),
		SessionID:   sessionID,
		Connected:   true,
	}

	session.Members[index] = conn
	return conn, nil
}

// GetMember retrieves a member connection from a session.
func (mt *MemoryTransport) GetMember(sessionID string, index int) (*MemberConnection, error) {
	session, err := mt.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.MembersMu.RLock()
	defer session.MembersMu.RUnlock()

	conn, exists := session.Members[index]
	if !exists {
		return nil, transport.NewMemberError(index, transport.ErrNotConnected)
	}
	return conn, nil
}

// RemoveMember removes a member from a session.
func (mt *MemoryTransport) RemoveMember(sessionID string, index int) error {
	session, err := mt.GetSession(sessionID)
	if err != nil {
		return err
	}

	session.MembersMu.Lock()
	defer session.MembersMu.Unlock()

	conn, exists := session.Members[index]
	if !exists {
		return transport.NewMemberError(index, transport.ErrNotConnected)
	}

	conn.ConnectedMu.Lock()
	if conn.Connected {
		conn.Connected = false
		close(conn.MessageChan)
	}
	conn.ConnectedMu.Unlock()

	delete(session.Members, index)
	return nil
}

// SendToMember sends an envelope to a specific member.
func (mt *MemoryTransport) SendToMember(ctx context.Context, sessionID string, index int, envelope *transport.Envelope) error {
	conn, err := mt.GetMember(sessionID, index)
	if err != nil {
		return err
	}

	conn.ConnectedMu.RLock()
	defer conn.ConnectedMu.RUnlock()

	if !conn.Connected {
		return transport.NewMemberError(index, transport.ErrConnectionClosed)
	}

	select {
	case conn.MessageChan <- envelope:
		mt.metrics.MessageRelayed(envelope.Type)
		return nil
	case <-ctx.Done():
		return transport.ErrMessageTimeout
	}
}

// Serializer returns the transport's serializer.
func (mt *MemoryTransport) Serializer() *transport.Serializer {
	return mt.serializer
}

// Metrics returns the transport's metrics collector.
func (mt *MemoryTransport) Metrics() *transport.MetricsCollector {
	return mt.metrics
}

func containsIndex(indices []int, idx int) bool {
	for _, i := range indices {
		if i == idx {
			return true
		}
	}
	return false
}
