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

package enrollment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// SessionPhase identifies an enrollment session's position in its
// lifecycle. Phases transition strictly forward; PhaseAborted is
// reachable from any non-terminal phase and is never resurrected.
type SessionPhase uint8

const (
	// PhaseCreated means the session was validated and created.
	PhaseCreated SessionPhase = iota

	// PhaseSharesGenerated means Round 1.1 completed for every
	// involved-set member.
	PhaseSharesGenerated

	// PhaseSharesAggregated means Round 1.2 completed for every
	// involved-set member.
	PhaseSharesAggregated

	// PhaseCompleted means Round 2 completed and bookkeeping committed.
	PhaseCompleted

	// PhaseAborted means the session failed validation or was cancelled;
	// no participant state or history was committed.
	PhaseAborted
)

// String returns a human-readable phase name.
func (p SessionPhase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseSharesGenerated:
		return "shares-generated"
	case PhaseSharesAggregated:
		return "shares-aggregated"
	case PhaseCompleted:
		return "completed"
	case PhaseAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Session is one enrollment attempt: a fixed involved set of exactly t
// existing participants, the index assigned to the new participant, and
// the lifecycle phase.
type Session struct {
	// ID uniquely identifies the session.
	ID string

	// Involved is the ordered set of exactly t participant indices
	// cooperating in this enrollment. Fixed for the session's lifetime.
	Involved []int

	// NewIndex is the 1-based index assigned to the joining participant.
	NewIndex int

	// Phase is the session's current lifecycle phase.
	Phase SessionPhase
}

// Record summarizes a completed enrollment for auditing.
type Record struct {
	// SessionID is the ID of the completed session.
	SessionID string `json:"session_id" yaml:"session_id"`

	// NewIndex is the enrolled participant's index.
	NewIndex int `json:"new_index" yaml:"new_index"`

	// Involved is the involved set that produced the new share.
	Involved []int `json:"involved" yaml:"involved"`

	// CompletedAt is the commit time.
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`
}

// Coordinator sequences the enrollment protocol across a set of
// participants: it selects inputs, routes each participant's per-slot
// output to the correct recipients, and records completed enrollments.
//
// The Coordinator has no cryptographic role. It never reads or mutates
// a participant's secret state directly; it only invokes protocol
// operations and relays already-computed values. In a real deployment
// the relayed values travel over authenticated, encrypted channels that
// are out of scope here.
type Coordinator struct {
	grp          group.Group
	threshold    int
	participants map[int]*Participant
	policy       *Config
	history      []Record
}

// NewCoordinator creates a coordinator over the given existing
// participants. Participants are keyed by their 1-based index.
//
// Errors:
//   - ErrInvalidParticipantCount: fewer than MinParticipants members
//   - ErrInvalidThreshold: threshold outside [MinThreshold, n]
//   - ErrDuplicateParticipant: two participants share an index
//   - ErrInvalidParticipantIndex: a participant index is not positive
func NewCoordinator(grp group.Group, threshold int, participants []*Participant) (*Coordinator, error) {
	if len(participants) < MinParticipants {
		return nil, ErrInvalidParticipantCount
	}
	if threshold < MinThreshold || threshold > len(participants) {
		return nil, ErrInvalidThreshold
	}

	byIndex := make(map[int]*Participant, len(participants))
	for _, p := range participants {
		if p.Index < 1 {
			return nil, ErrInvalidParticipantIndex
		}
		if _, exists := byIndex[p.Index]; exists {
			return nil, ErrDuplicateParticipant
		}
		byIndex[p.Index] = p
	}

	policy := NewConfig()
	policy.Participants = len(byIndex)
	policy.Threshold = threshold

	return &Coordinator{
		grp:          grp,
		threshold:    threshold,
		participants: byIndex,
		policy:       policy,
		history:      nil,
	}, nil
}

// SetPolicy replaces the coordinator's enrollment policy. The policy
// must validate and agree with the coordinator's threshold.
func (c *Coordinator) SetPolicy(policy *Config) error {
	if policy == nil {
		return ErrInvalidPolicy
	}
	if err := policy.Validate(); err != nil {
		return err
	}
	if policy.Threshold != c.threshold {
		return fmt.Errorf("%w: policy threshold %d does not match scheme threshold %d",
			ErrInvalidPolicy, policy.Threshold, c.threshold)
	}
	c.policy = policy
	return nil
}

// Policy returns the coordinator's current enrollment policy.
func (c *Coordinator) Policy() *Config {
	return c.policy
}

// ExportBackup returns the non-secret metadata of the given participant
// for backup, if the policy permits share backup.
func (c *Coordinator) ExportBackup(index int) (Metadata, error) {
	if !c.policy.EnableShareBackup {
		return Metadata{}, ErrBackupDisabled
	}
	p, err := c.Participant(index)
	if err != nil {
		return Metadata{}, err
	}
	return p.ExportMetadata(), nil
}

// Threshold returns the scheme's signing threshold t.
func (c *Coordinator) Threshold() int {
	return c.threshold
}

// Participant returns the participant with the given 1-based index.
func (c *Coordinator) Participant(index int) (*Participant, error) {
	p, ok := c.participants[index]
	if !ok {
		return nil, ErrInvalidParticipantIndex
	}
	return p, nil
}

// Indices returns the sorted indices of all current participants.
func (c *Coordinator) Indices() []int {
	indices := make([]int, 0, len(c.participants))
	for idx := range c.participants {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// History returns a copy of the append-only record of completed
// enrollments, in completion order.
func (c *Coordinator) History() []Record {
	out := make([]Record, len(c.history))
	copy(out, c.history)
	return out
}

// InitiateEnrollment runs the full enrollment protocol: Round 1.1 on
// every involved-set member, routing of the addressed shares, Round 1.2
// on every member, and Round 2 on a freshly constructed joining
// participant. On success the new participant is registered, every
// existing participant's count is incremented, and a history record is
// appended.
//
// The session is atomic: any failure in rounds 1.1-2 aborts it, resets
// all per-session scratch state, and leaves every participant's
// committed fields and the history log exactly as they were before the
// call. The returned error wraps the aborted phase in a SessionError.
//
// The context cancels an in-flight session at the next round barrier;
// cancellation aborts exactly like a validation failure. There are no
// internal retries: a failed session must be restarted from scratch,
// never resumed mid-round.
func (c *Coordinator) InitiateEnrollment(ctx context.Context, involved []int, newIndex int) (*Participant, error) {
	session, err := c.newSession(involved, newIndex)
	if err != nil {
		return nil, err
	}

	joiner, err := c.runSession(ctx, session)
	if err != nil {
		failedPhase := session.Phase
		c.abort(session)
		return nil, NewSessionError(session.ID, failedPhase, err)
	}

	// Commit: the scheme is now (t, n+1) everywhere.
	for _, p := range c.participants {
		p.IncrementParticipants()
		p.resetEnrollment()
	}
	c.participants[joiner.Index] = joiner
	c.policy.Participants = len(c.participants)

	c.history = append(c.history, Record{
		SessionID:   session.ID,
		NewIndex:    session.NewIndex,
		Involved:    append([]int(nil), session.Involved...),
		CompletedAt: time.Now(),
	})
	session.Phase = PhaseCompleted

	return joiner, nil
}

// newSession validates enrollment inputs and creates a session in
// PhaseCreated. Validation failure returns an error without creating
// any session state.
func (c *Coordinator) newSession(involved []int, newIndex int) (*Session, error) {
	if !EnrollmentAllowed(len(c.participants), c.threshold) {
		return nil, ErrInvalidParticipantCount
	}
	if len(involved) != c.threshold {
		return nil, ErrInvalidThreshold
	}
	if !distinctPositive(involved) {
		return nil, ErrDuplicateParticipant
	}
	for _, idx := range involved {
		if _, ok := c.participants[idx]; !ok {
			return nil, ErrInvalidParticipantIndex
		}
	}
	if newIndex < 1 {
		return nil, ErrInvalidParticipantIndex
	}
	// The joiner fills the next slot of the grown scheme; a sparse
	// index would fail Round 2 anyway, so reject it before any helper
	// does work.
	if newIndex > len(c.participants)+1 {
		return nil, ErrInvalidParticipantIndex
	}
	if _, inUse := c.participants[newIndex]; inUse {
		return nil, ErrIndexInUse
	}

	return &Session{
		ID:       uuid.New().String(),
		Involved: append([]int(nil), involved...),
		NewIndex: newIndex,
		Phase:    PhaseCreated,
	}, nil
}

// runSession executes rounds 1.1, 1.2 and 2. Within a round the
// participants' computations are mutually independent; cross-round
// dependencies are strict data dependencies, so each round is a barrier
// that must complete for every member before the next begins.
func (c *Coordinator) runSession(ctx context.Context, session *Session) (*Participant, error) {
	oldTotal := len(c.participants)
	groupKey := c.participants[session.Involved[0]].GroupKey()

	// A helper with a divergent group public key would contribute a
	// share of the wrong secret. When the policy enables verification,
	// reject the session before any round runs.
	if c.policy.EnableVerification {
		for _, idx := range session.Involved[1:] {
			if !c.participants[idx].VerifyGroupKey(groupKey) {
				return nil, NewParticipantOpError(idx, "verify group key", ErrGroupKeyMismatch)
			}
		}
	}

	// Round 1.1: every involved member splits its Lagrange-weighted
	// contribution into addressed shares.
	for _, idx := range session.Involved {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := c.participants[idx]
		if err := p.GenerateEnrollmentShares(session.Involved, session.NewIndex); err != nil {
			return nil, NewParticipantOpError(idx, "generate enrollment shares", err)
		}
	}
	session.Phase = PhaseSharesGenerated

	// Routing + Round 1.2: for each member i, gather the share every
	// other member j addressed to i. Lookup is by participant index,
	// never by array position.
	for _, idx := range session.Involved {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := c.participants[idx]

		received := make([]group.Scalar, 0, c.threshold-1)
		for _, sender := range session.Involved {
			if sender == idx {
				continue
			}
			share, err := c.participants[sender].EnrollmentShareFor(idx)
			if err != nil {
				return nil, NewParticipantOpError(sender, "route enrollment share", err)
			}
			received = append(received, share)
		}

		if err := p.AggregateEnrollmentShares(received); err != nil {
			return nil, NewParticipantOpError(idx, "aggregate enrollment shares", err)
		}
	}
	session.Phase = PhaseSharesAggregated

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Round 2: collect sigma values in involved-set order and hand them
	// to the new participant together with the unchanged group key.
	sigmas := make([]group.Scalar, 0, c.threshold)
	for _, idx := range session.Involved {
		sigma, err := c.participants[idx].AggregateShare()
		if err != nil {
			return nil, NewParticipantOpError(idx, "collect aggregate share", err)
		}
		sigmas = append(sigmas, sigma)
	}

	joiner, err := NewJoiningParticipant(c.grp, session.NewIndex, c.threshold, oldTotal+1)
	if err != nil {
		return nil, err
	}
	if err := joiner.GenerateFrostShare(sigmas, groupKey); err != nil {
		return nil, NewParticipantOpError(session.NewIndex, "generate frost share", err)
	}

	return joiner, nil
}

// abort discards all intermediate session state. No participant's
// committed fields are touched and nothing is written to history;
// partial enrollment is never observable.
func (c *Coordinator) abort(session *Session) {
	for _, idx := range session.Involved {
		if p, ok := c.participants[idx]; ok {
			p.resetEnrollment()
		}
	}
	session.Phase = PhaseAborted
}
