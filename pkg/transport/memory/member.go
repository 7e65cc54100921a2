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
	"context"
	"fmt"
	"sync"

	"github.com/jeremyhahn/go-frost/pkg/frost/group"

	"github.com/siv2r/frost-enrollment/pkg/enrollment"
	"github.com/siv2r/frost-enrollment/pkg/transport"
)

// MemoryMember implements the Member interface for the in-process
// transport. A member is either a helper from the involved set or the
// joiner; the role decides which side of the protocol RunEnrollment
// executes.
type MemoryMember struct {
	transport   *MemoryTransport
	index       int
	role        string
	sessionID   string
	connected   bool
	connectedMu sync.RWMutex
	conn        *MemberConnection
	sessionInfo *transport.SessionInfoMessage
}

// NewMemoryHelper creates a helper member with the given participant
// index on the shared transport.
func NewMemoryHelper(mt *MemoryTransport, index int) (*MemoryMember, error) {
	return newMemoryMember(mt, index, transport.RoleHelper)
}

// NewMemoryJoiner creates the joining member with its future
// participant index on the shared transport.
func NewMemoryJoiner(mt *MemoryTransport, index int) (*MemoryMember, error) {
	return newMemoryMember(mt, index, transport.RoleJoiner)
}

func newMemoryMember(mt *MemoryTransport, index int, role string) (*MemoryMember, error) {
	if mt == nil {
		return nil, transport.ErrInvalidConfig
	}
	if index < 1 {
		return nil, transport.ErrInvalidMemberIndex
	}
	return &MemoryMember{
		transport: mt,
		index:     index,
		role:      role,
	}, nil
}

// Connect registers the member with the relay's session. For the
// memory transport, addr is the session ID.
func (mm *MemoryMember) Connect(ctx context.Context, addr string) error {
	mm.connectedMu.Lock()
	defer mm.connectedMu.Unlock()

	if mm.connected {
		return transport.ErrAlreadyConnected
	}

	conn, err := mm.transport.AddMember(addr, mm.index, mm.role)
	if err != nil {
		return transport.NewConnectionError(addr, err)
	}

	mm.sessionID = addr
	mm.conn = conn
	mm.connected = true
	return nil
}

// Disconnect closes the connection to the relay.
func (mm *MemoryMember) Disconnect() error {
	mm.connectedMu.Lock()
	defer mm.connectedMu.Unlock()

	if !mm.connected {
		return transport.ErrNotConnected
	}

	_ = mm.transport.RemoveMember(mm.sessionID, mm.index)
	mm.connected = false
	mm.conn = nil
	return nil
}

// Index returns the member's participant index.
func (mm *MemoryMember) Index() int {
	return mm.index
}

// SessionInfo returns the session parameters received on join.
func (mm *MemoryMember) SessionInfo() *transport.SessionInfoMessage {
	return mm.sessionInfo
}

// RunEnrollment executes this member's side of the enrollment protocol.
func (mm *MemoryMember) RunEnrollment(ctx context.Context, params *transport.EnrollmentParams) (*transport.EnrollmentResult, error) {
	mm.connectedMu.RLock()
	connected := mm.connected
	mm.connectedMu.RUnlock()
	if !connected {
		return nil, transport.ErrNotConnected
	}

	if err := mm.validateParams(params); err != nil {
		return nil, err
	}

	info, err := mm.join(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}
	mm.sessionInfo = info

	cs, err := SuiteByName(info.Ciphersuite)
	if err != nil {
		return nil, err
	}

	switch mm.role {
	case transport.RoleHelper:
		return mm.runHelper(ctx, cs.Group(), info, params)
	case transport.RoleJoiner:
		return mm.runJoiner(ctx, cs.Group(), info)
	default:
		return nil, transport.ErrInvalidConfig
	}
}

// validateParams checks the member-local parameters before joining.
func (mm *MemoryMember) validateParams(params *transport.EnrollmentParams) error {
	if params == nil {
		return transport.ErrInvalidEnrollmentParams
	}
	if params.SelfIndex != mm.index {
		return transport.ErrInvalidMemberIndex
	}
	if mm.role == transport.RoleHelper {
		if len(params.Share) == 0 || len(params.GroupKey) == 0 {
			return transport.ErrInvalidShareData
		}
		if !containsIndex(params.Involved, mm.index) {
			return transport.ErrNotInvolved
		}
	}
	return nil
}

// join announces the member and retrieves the session parameters.
func (mm *MemoryMember) join(ctx context.Context, params *transport.EnrollmentParams) (*transport.SessionInfoMessage, error) {
	joinMsg := &transport.JoinMessage{
		Index:    mm.index,
		Role:     mm.role,
		GroupKey: params.GroupKey,
	}

	response, err := mm.call(ctx, transport.MsgTypeJoin, joinMsg)
	if err != nil {
		return nil, err
	}
	if response.Type != transport.MsgTypeSessionInfo {
		return nil, transport.ErrUnexpectedMessage
	}

	var info transport.SessionInfoMessage
	if err := mm.transport.Serializer().UnmarshalPayload(response, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// runHelper executes rounds 1.1 and 1.2 for an involved-set member.
func (mm *MemoryMember) runHelper(ctx context.Context, grp group.Group, info *transport.SessionInfoMessage, params *transport.EnrollmentParams) (*transport.EnrollmentResult, error) {
	share, err := grp.DeserializeScalar(params.Share)
	if err != nil {
		return nil, transport.ErrInvalidShareData
	}
	groupKey, err := grp.DeserializeElement(params.GroupKey)
	if err != nil {
		return nil, transport.ErrInvalidShareData
	}

	helper, err := enrollment.NewParticipant(grp, mm.index, info.Threshold, info.NumParticipants, share, groupKey)
	if err != nil {
		return nil, err
	}

	// Round 1.1: split the Lagrange-weighted contribution and send the
	// slots addressed to the other helpers. The own slot stays local.
	if err := helper.GenerateEnrollmentShares(info.Involved, info.NewIndex); err != nil {
		return nil, err
	}

	addressed := make([]transport.AddressedShare, 0, info.Threshold-1)
	for _, recipient := range info.Involved {
		if recipient == mm.index {
			continue
		}
		s, err := helper.EnrollmentShareFor(recipient)
		if err != nil {
			return nil, err
		}
		addressed = append(addressed, transport.AddressedShare{
			Recipient: recipient,
			Share:     s.Bytes(),
		})
	}

	if err := mm.send(ctx, transport.MsgTypeRound11, &transport.Round11Message{Shares: addressed}); err != nil {
		return nil, err
	}

	// Round 1.2: receive the shares addressed to us, aggregate, and
	// submit sigma.
	envelope, err := mm.receive(ctx, transport.MsgTypeRound11Deliver)
	if err != nil {
		return nil, err
	}
	var deliver transport.Round11DeliverMessage
	if err := mm.transport.Serializer().UnmarshalPayload(envelope, &deliver); err != nil {
		return nil, err
	}

	received := make([]group.Scalar, 0, len(deliver.Shares))
	for _, raw := range deliver.Shares {
		s, err := grp.DeserializeScalar(raw)
		if err != nil {
			return nil, transport.ErrInvalidShareData
		}
		received = append(received, s)
	}

	if err := helper.AggregateEnrollmentShares(received); err != nil {
		return nil, err
	}
	sigma, err := helper.AggregateShare()
	if err != nil {
		return nil, err
	}

	if err := mm.send(ctx, transport.MsgTypeRound12, &transport.Round12Message{Sigma: sigma.Bytes()}); err != nil {
		return nil, err
	}

	// Wait for the joiner's acknowledgment before committing the grown
	// participant count.
	if _, err := mm.receive(ctx, transport.MsgTypeComplete); err != nil {
		return nil, err
	}

	return &transport.EnrollmentResult{
		Index:           mm.index,
		Share:           params.Share,
		GroupKey:        params.GroupKey,
		NumParticipants: info.NumParticipants + 1,
		SessionID:       mm.sessionID,
	}, nil
}

// runJoiner waits for the aggregate shares and derives the new secret
// share.
func (mm *MemoryMember) runJoiner(ctx context.Context, grp group.Group, info *transport.SessionInfoMessage) (*transport.EnrollmentResult, error) {
	envelope, err := mm.receive(ctx, transport.MsgTypeRound2Deliver)
	if err != nil {
		return nil, err
	}
	var deliver transport.Round2DeliverMessage
	if err := mm.transport.Serializer().UnmarshalPayload(envelope, &deliver); err != nil {
		return nil, err
	}

	sigmas := make([]group.Scalar, 0, len(deliver.Sigmas))
	for _, raw := range deliver.Sigmas {
		s, err := grp.DeserializeScalar(raw)
		if err != nil {
			return nil, transport.ErrInvalidShareData
		}
		sigmas = append(sigmas, s)
	}
	groupKey, err := grp.DeserializeElement(deliver.GroupKey)
	if err != nil {
		return nil, transport.ErrInvalidShareData
	}

	joiner, err := enrollment.NewJoiningParticipant(grp, info.NewIndex, info.Threshold, info.NumParticipants+1)
	if err != nil {
		return nil, err
	}
	if err := joiner.GenerateFrostShare(sigmas, groupKey); err != nil {
		return nil, err
	}
	share, err := joiner.Share()
	if err != nil {
		return nil, err
	}

	complete := &transport.CompleteMessage{
		NewIndex: info.NewIndex,
		GroupKey: deliver.GroupKey,
	}
	if err := mm.send(ctx, transport.MsgTypeComplete, complete); err != nil {
		return nil, err
	}

	return &transport.EnrollmentResult{
		Index:           info.NewIndex,
		Share:           share.Bytes(),
		GroupKey:        deliver.GroupKey,
		NumParticipants: info.NumParticipants + 1,
		SessionID:       mm.sessionID,
	}, nil
}

// send posts a fire-and-forget protocol message to the relay.
func (mm *MemoryMember) send(ctx context.Context, msgType transport.MessageType, payload any) error {
	envelope, err := mm.transport.Serializer().NewEnvelope(mm.sessionID, msgType, mm.index, payload)
	if err != nil {
		return err
	}
	return mm.post(ctx, &Message{Envelope: envelope})
}

// call posts a message and waits for the relay's direct response.
func (mm *MemoryMember) call(ctx context.Context, msgType transport.MessageType, payload any) (*transport.Envelope, error) {
	envelope, err := mm.transport.Serializer().NewEnvelope(mm.sessionID, msgType, mm.index, payload)
	if err != nil {
		return nil, err
	}

	responseChan := make(chan *transport.Envelope, 1)
	errorChan := make(chan error, 1)
	msg := &Message{
		Envelope:     envelope,
		ResponseChan: responseChan,
		ErrorChan:    errorChan,
	}
	if err := mm.post(ctx, msg); err != nil {
		return nil, err
	}

	select {
	case response := <-responseChan:
		return response, nil
	case err := <-errorChan:
		return nil, err
	case <-ctx.Done():
		return nil, transport.ErrMessageTimeout
	}
}

// post delivers a message to the session's inbound channel, guarding
// against a concurrently closing session.
func (mm *MemoryMember) post(ctx context.Context, msg *Message) error {
	session, err := mm.transport.GetSession(mm.sessionID)
	if err != nil {
		return err
	}

	session.CloseMu.RLock()
	if session.Closed {
		session.CloseMu.RUnlock()
		return transport.ErrSessionClosed
	}
	select {
	case session.MessageChan <- msg:
		session.CloseMu.RUnlock()
		return nil
	case <-ctx.Done():
		session.CloseMu.RUnlock()
		return transport.ErrMessageTimeout
	}
}

// receive waits for the next relay message of the expected type.
func (mm *MemoryMember) receive(ctx context.Context, want transport.MessageType) (*transport.Envelope, error) {
	mm.connectedMu.RLock()
	conn := mm.conn
	mm.connectedMu.RUnlock()
	if conn == nil {
		return nil, transport.ErrNotConnected
	}

	select {
	case envelope, ok := <-conn.MessageChan:
		if !ok {
			return nil, transport.ErrConnectionClosed
		}
		if envelope.Type != want {
			return nil, transport.ErrUnexpectedMessage
		}
		return envelope, nil
	case <-ctx.Done():
		return nil, transport.ErrMessageTimeout
	}
}
