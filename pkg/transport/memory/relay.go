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

package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/siv2r/frost-enrollment/pkg/transport"
)

// MemoryRelay implements the Relay interface for the in-process
// transport. It routes addressed enrollment shares between helpers and
// delivers the collected aggregate shares to the joiner. It performs no
// field arithmetic itself.
type MemoryRelay struct {
	transport *MemoryTransport
	sessionID string
	config    *transport.SessionConfig
	session   *Session
	started   bool
	startedMu sync.RWMutex
	stopChan  chan struct{}
	stopOnce  sync.Once

	// Per-session routing state, guarded by stateMu.
	stateMu    sync.Mutex
	groupKey   []byte
	round11    map[int]*transport.Round11Message
	sigmas     map[int][]byte
	roundStart time.Time
	completed  bool
}

// NewMemoryRelay creates a relay for one enrollment session on the
// given shared transport. An empty sessionID generates a fresh one.
func NewMemoryRelay(mt *MemoryTransport, sessionID string, config *transport.SessionConfig) (*MemoryRelay, error) {
	if mt == nil {
		return nil, transport.ErrInvalidConfig
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	return &MemoryRelay{
		transport: mt,
		sessionID: sessionID,
		config:    config,
		stopChan:  make(chan struct{}),
		round11:   make(map[int]*transport.Round11Message),
		sigmas:    make(map[int][]byte),
	}, nil
}

// Start begins accepting member connections.
func (mr *MemoryRelay) Start(ctx context.Context) error {
	mr.startedMu.Lock()
	defer mr.startedMu.Unlock()

	if mr.started {
		return transport.ErrAlreadyConnected
	}

	session, err := mr.transport.CreateSession(mr.sessionID, mr.config)
	if err != nil {
		return err
	}

	mr.session = session
	mr.started = true
	mr.roundStart = time.Now()
	mr.transport.Metrics().SessionStarted()

	go mr.processMessages(ctx)

	return nil
}

// Stop gracefully shuts down the relay.
func (mr *MemoryRelay) Stop(ctx context.Context) error {
	var stopErr error

	mr.stopOnce.Do(func() {
		mr.startedMu.Lock()
		if !mr.started {
			mr.startedMu.Unlock()
			stopErr = transport.ErrNotConnected
			return
		}
		mr.startedMu.Unlock()

		close(mr.stopChan)

		mr.stateMu.Lock()
		completed := mr.completed
		mr.stateMu.Unlock()
		if completed {
			mr.transport.Metrics().SessionCompleted()
		} else {
			mr.transport.Metrics().SessionAborted()
		}

		if err := mr.transport.CloseSession(mr.sessionID); err != nil {
			stopErr = err
			return
		}

		mr.startedMu.Lock()
		mr.started = false
		mr.startedMu.Unlock()
	})

	return stopErr
}

// Address returns the session identifier; memory members connect by
// session ID.
func (mr *MemoryRelay) Address() string {
	return mr.sessionID
}

// SessionID returns the unique identifier for this enrollment session.
func (mr *MemoryRelay) SessionID() string {
	return mr.sessionID
}

// WaitForMembers blocks until all t helpers and the joiner have
// connected.
func (mr *MemoryRelay) WaitForMembers(ctx context.Context) error {
	want := mr.config.Threshold + 1

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return transport.ErrConnectionTimeout
		case <-mr.stopChan:
			return transport.ErrSessionClosed
		case <-ticker.C:
			mr.session.MembersMu.RLock()
			count := len(mr.session.Members)
			mr.session.MembersMu.RUnlock()

			if count >= want {
				return nil
			}
		}
	}
}

// Completed reports whether the joiner acknowledged the session.
func (mr *MemoryRelay) Completed() bool {
	mr.stateMu.Lock()
	defer mr.stateMu.Unlock()
	return mr.completed
}

// processMessages handles message routing between members.
func (mr *MemoryRelay) processMessages(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-mr.stopChan:
			return
		case msg, ok := <-mr.session.MessageChan:
			if !ok {
				return
			}
			mr.handleMessage(ctx, msg)
		}
	}
}

// handleMessage dispatches a single message from a member.
func (mr *MemoryRelay) handleMessage(ctx context.Context, msg *Message) {
	switch msg.Envelope.Type {
	case transport.MsgTypeJoin:
		mr.handleJoin(ctx, msg)
	case transport.MsgTypeRound11:
		mr.handleRound11(ctx, msg)
	case transport.MsgTypeRound12:
		mr.handleRound12(ctx, msg)
	case transport.MsgTypeComplete:
		mr.handleComplete(ctx, msg)
	default:
		mr.fail(msg, transport.ErrUnexpectedMessage)
	}
}

// handleJoin answers a join request with the session parameters. All
// helpers must present the same group public key.
func (mr *MemoryRelay) handleJoin(ctx context.Context, msg *Message) {
	var join transport.JoinMessage
	if err := mr.transport.Serializer().UnmarshalPayload(msg.Envelope, &join); err != nil {
		mr.fail(msg, err)
		return
	}

	if join.Role == transport.RoleHelper {
		mr.stateMu.Lock()
		if mr.groupKey == nil {
			mr.groupKey = join.GroupKey
		} else if !bytes.Equal(mr.groupKey, join.GroupKey) {
			mr.stateMu.Unlock()
			mr.fail(msg, transport.ErrGroupKeyMismatch)
			return
		}
		mr.stateMu.Unlock()
	}

	info := &transport.SessionInfoMessage{
		SessionID:       mr.sessionID,
		Threshold:       mr.config.Threshold,
		NumParticipants: mr.config.NumParticipants,
		Involved:        mr.config.Involved,
		NewIndex:        mr.config.NewIndex,
		Ciphersuite:     mr.config.Ciphersuite,
	}

	response, err := mr.transport.Serializer().NewEnvelope(mr.sessionID, transport.MsgTypeSessionInfo, 0, info)
	if err != nil {
		mr.fail(msg, err)
		return
	}

	if msg.ResponseChan != nil {
		select {
		case msg.ResponseChan <- response:
		case <-ctx.Done():
		}
	}
}

// handleRound11 collects the addressed enrollment shares of one helper.
// Once all t helpers have submitted, the shares are routed: each helper
// receives exactly the values the others addressed to it.
func (mr *MemoryRelay) handleRound11(ctx context.Context, msg *Message) {
	sender := msg.Envelope.SenderIdx
	if !containsIndex(mr.config.Involved, sender) {
		mr.fail(msg, transport.NewMemberError(sender, transport.ErrNotInvolved))
		return
	}

	var round transport.Round11Message
	if err := mr.transport.Serializer().UnmarshalPayload(msg.Envelope, &round); err != nil {
		mr.fail(msg, err)
		return
	}

	// A helper sends one share per other involved member.
	if len(round.Shares) != mr.config.Threshold-1 {
		mr.fail(msg, transport.ErrInvalidMessage)
		return
	}
	for _, as := range round.Shares {
		if as.Recipient == sender || !containsIndex(mr.config.Involved, as.Recipient) {
			mr.fail(msg, transport.ErrInvalidMessage)
			return
		}
	}

	mr.stateMu.Lock()
	if _, dup := mr.round11[sender]; dup {
		mr.stateMu.Unlock()
		mr.fail(msg, transport.ErrUnexpectedMessage)
		return
	}
	mr.round11[sender] = &round
	ready := len(mr.round11) == mr.config.Threshold
	mr.stateMu.Unlock()

	if !ready {
		return
	}

	mr.transport.Metrics().ObserveRoundDuration("round1.1", time.Since(mr.roundStart).Seconds())
	mr.roundStart = time.Now()

	// Route: for each helper, gather the shares every other helper
	// addressed to it. Lookup is by participant index.
	mr.stateMu.Lock()
	defer mr.stateMu.Unlock()
	for _, recipient := range mr.config.Involved {
		shares := make([][]byte, 0, mr.config.Threshold-1)
		for _, sender := range mr.config.Involved {
			if sender == recipient {
				continue
			}
			for _, as := range mr.round11[sender].Shares {
				if as.Recipient == recipient {
					shares = append(shares, as.Share)
				}
			}
		}

		deliver := &transport.Round11DeliverMessage{Shares: shares}
		envelope, err := mr.transport.Serializer().NewEnvelope(mr.sessionID, transport.MsgTypeRound11Deliver, 0, deliver)
		if err != nil {
			mr.transport.logger.Error("round 1.1 delivery encode failed: %v", err)
			return
		}
		if err := mr.transport.SendToMember(ctx, mr.sessionID, recipient, envelope); err != nil {
			mr.transport.logger.Error("round 1.1 delivery to %d failed: %v", recipient, err)
			return
		}
	}
}

// handleRound12 collects the aggregate enrollment share of one helper.
// Once all t sigmas are in, they are delivered to the joiner in
// involved-set order together with the group public key.
func (mr *MemoryRelay) handleRound12(ctx context.Context, msg *Message) {
	sender := msg.Envelope.SenderIdx
	if !containsIndex(mr.config.Involved, sender) {
		mr.fail(msg, transport.NewMemberError(sender, transport.ErrNotInvolved))
		return
	}

	var round transport.Round12Message
	if err := mr.transport.Serializer().UnmarshalPayload(msg.Envelope, &round); err != nil {
		mr.fail(msg, err)
		return
	}
	if len(round.Sigma) == 0 {
		mr.fail(msg, transport.ErrInvalidShareData)
		return
	}

	mr.stateMu.Lock()
	if _, dup := mr.sigmas[sender]; dup {
		mr.stateMu.Unlock()
		mr.fail(msg, transport.ErrUnexpectedMessage)
		return
	}
	mr.sigmas[sender] = round.Sigma
	ready := len(mr.sigmas) == mr.config.Threshold
	groupKey := mr.groupKey
	mr.stateMu.Unlock()

	if !ready {
		return
	}

	mr.transport.Metrics().ObserveRoundDuration("round1.2", time.Since(mr.roundStart).Seconds())
	mr.roundStart = time.Now()

	mr.stateMu.Lock()
	sigmas := make([][]byte, 0, mr.config.Threshold)
	for _, idx := range mr.config.Involved {
		sigmas = append(sigmas, mr.sigmas[idx])
	}
	mr.stateMu.Unlock()

	deliver := &transport.Round2DeliverMessage{
		Sigmas:   sigmas,
		GroupKey: groupKey,
	}
	envelope, err := mr.transport.Serializer().NewEnvelope(mr.sessionID, transport.MsgTypeRound2Deliver, 0, deliver)
	if err != nil {
		mr.transport.logger.Error("round 2 delivery encode failed: %v", err)
		return
	}
	if err := mr.transport.SendToMember(ctx, mr.sessionID, mr.config.NewIndex, envelope); err != nil {
		mr.transport.logger.Error("round 2 delivery to joiner failed: %v", err)
	}
}

// handleComplete records the joiner's acknowledgment and fans it out to
// the helpers so they can commit the grown participant count.
func (mr *MemoryRelay) handleComplete(ctx context.Context, msg *Message) {
	if msg.Envelope.SenderIdx != mr.config.NewIndex {
		mr.fail(msg, transport.ErrUnexpectedMessage)
		return
	}

	mr.stateMu.Lock()
	mr.completed = true
	mr.stateMu.Unlock()
	mr.transport.Metrics().ObserveRoundDuration("round2", time.Since(mr.roundStart).Seconds())

	for _, idx := range mr.config.Involved {
		envelope := &transport.Envelope{
			SessionID: mr.sessionID,
			Type:      transport.MsgTypeComplete,
			SenderIdx: mr.config.NewIndex,
			Payload:   msg.Envelope.Payload,
			Timestamp: time.Now().Unix(),
		}
		if err := mr.transport.SendToMember(ctx, mr.sessionID, idx, envelope); err != nil {
			mr.transport.logger.Error("completion fan-out to %d failed: %v", idx, err)
		}
	}
}

// fail reports an error back to the sending member if it is waiting.
func (mr *MemoryRelay) fail(msg *Message, err error) {
	mr.transport.logger.Error("session %s: %v", mr.sessionID, err)
	if msg.ErrorChan != nil {
		select {
		case msg.ErrorChan <- err:
		default:
		}
	}
}

// GetTransport returns the underlying memory transport.
func (mr *MemoryRelay) GetTransport() *MemoryTransport {
	return mr.transport
}

// GetSession returns the current session.
func (mr *MemoryRelay) GetSession() *Session {
	return mr.session
}
