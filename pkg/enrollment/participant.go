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
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// State identifies a participant's position in the enrollment protocol
// state machine. Transitions are one-directional; an operation invoked
// out of order fails with ErrInvalidState and leaves state unchanged.
type State uint8

const (
	// StateIdle means no enrollment round has been executed.
	StateIdle State = iota

	// StateSharesGenerated means Round 1.1 completed: addressed
	// enrollment shares are held and must be delivered to their
	// recipients before Round 1.2.
	StateSharesGenerated

	// StateAggregated means Round 1.2 completed: the aggregate
	// enrollment share sigma is ready for the new participant.
	StateAggregated

	// StateEnrolled means Round 2 completed: the joining participant
	// holds a valid share of the group secret.
	StateEnrolled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSharesGenerated:
		return "shares-generated"
	case StateAggregated:
		return "aggregated"
	case StateEnrolled:
		return "enrolled"
	default:
		return "unknown"
	}
}

// Participant is a threshold-scheme member capable of running the
// enrollment protocol.
//
// It holds the output of the external DKG (the secret share scalar and
// the group public key element); enrollment operations read the share
// but never re-run or alter DKG behavior.
//
// A Participant owns its secret state exclusively. The Coordinator holds
// references for orchestration but only ever calls protocol operations
// and relays already-computed values.
type Participant struct {
	// Index is the participant's unique 1-based index.
	Index int

	// Threshold is the signing threshold t.
	Threshold int

	// Participants is the current total participant count n.
	Participants int

	grp group.Group

	// share is the participant's secret share of the group key.
	// Nil for a joining participant until Round 2 completes.
	share group.Scalar

	// groupKey is the group public key, invariant across enrollment.
	groupKey group.Element

	// slots holds the Round 1.1 output: one additive share addressed to
	// each member of the involved set, keyed by recipient index. Sparse;
	// populated only for the lifetime of one enrollment session.
	slots map[int]group.Scalar

	// sigma is the Round 1.2 aggregate enrollment share.
	sigma group.Scalar

	state State

	// enrolled is true only when the share arose from the original DKG
	// or from a completed, validated Round 2.
	enrolled bool
}

// NewParticipant constructs an existing scheme member from its DKG
// output: index, threshold, total participant count, secret share and
// group public key.
//
// Errors:
//   - ErrInvalidParticipantIndex: index < 1 or index > participants
//   - ErrInvalidThreshold: threshold outside [MinThreshold, participants]
//   - ErrInvalidParticipantCount: participants outside [MinParticipants, MaxParticipants]
func NewParticipant(grp group.Group, index, threshold, participants int, share group.Scalar, groupKey group.Element) (*Participant, error) {
	if err := validateScheme(threshold, participants); err != nil {
		return nil, err
	}
	if index < 1 || index > participants {
		return nil, ErrInvalidParticipantIndex
	}
	if share == nil || groupKey == nil {
		return nil, ErrNotEnrolled
	}

	return &Participant{
		Index:        index,
		Threshold:    threshold,
		Participants: participants,
		grp:          grp,
		share:        share.Copy(),
		groupKey:     groupKey,
		state:        StateIdle,
		enrolled:     true,
	}, nil
}

// NewJoiningParticipant constructs the participant being admitted into
// the scheme. It holds no share, no group key, and none of the original
// DKG artifacts until GenerateFrostShare completes.
func NewJoiningParticipant(grp group.Group, index, threshold, participants int) (*Participant, error) {
	if err := validateScheme(threshold, participants); err != nil {
		return nil, err
	}
	if index < 1 || index > participants {
		return nil, ErrInvalidParticipantIndex
	}

	return &Participant{
		Index:        index,
		Threshold:    threshold,
		Participants: participants,
		grp:          grp,
		state:        StateIdle,
		enrolled:     false,
	}, nil
}

// validateScheme checks the (t, n) parameters.
func validateScheme(threshold, participants int) error {
	if participants < MinParticipants || participants > MaxParticipants {
		return ErrInvalidParticipantCount
	}
	if threshold < MinThreshold || threshold > participants {
		return ErrInvalidThreshold
	}
	return nil
}

// GenerateEnrollmentShares executes Round 1.1 for an existing
// participant in the involved set.
//
// The participant's Lagrange-weighted contribution for the new index,
// L_self(newIndex) * share, is split into one additive share per
// involved-set member, keyed by recipient index. The values addressed
// to other participants must be delivered to them by the caller before
// Round 1.2; this package produces the addressed values but performs no
// transport.
//
// Transitions StateIdle -> StateSharesGenerated.
//
// Errors:
//   - ErrInvalidState: not in StateIdle
//   - ErrNotEnrolled: participant holds no share
//   - ErrInvalidThreshold: |involved| != threshold
//   - ErrNotInvolved: self.Index not in involved
//   - ErrInvalidParticipantIndex, ErrDuplicateParticipant: malformed set
//   - ErrShareSumMismatch: split postcondition failed (never expected
//     in correct operation)
func (p *Participant) GenerateEnrollmentShares(involved []int, newIndex int) error {
	if p.state != StateIdle {
		return ErrInvalidState
	}
	if !p.enrolled || p.share == nil {
		return ErrNotEnrolled
	}
	if len(involved) != p.Threshold {
		return ErrInvalidThreshold
	}
	if newIndex < 1 {
		return ErrInvalidParticipantIndex
	}

	coeff, err := LagrangeBasis(p.grp, involved, p.Index, scalarFromIndex(p.grp, newIndex))
	if err != nil {
		return err
	}

	// secret = L_self(newIndex) * share mod Q
	secret := coeff.Mul(p.share)

	slots, err := SplitAdditive(p.grp, secret, involved, p.Index)
	if err != nil {
		return err
	}

	if !checkSlotSum(p.grp, slots, secret) {
		return ErrShareSumMismatch
	}

	p.slots = slots
	p.state = StateSharesGenerated
	return nil
}

// EnrollmentShareFor returns the Round 1.1 share this participant
// addressed to the given recipient index.
//
// Errors:
//   - ErrInvalidState: Round 1.1 has not been executed
//   - ErrMissingShare: no share addressed to recipient in this session
func (p *Participant) EnrollmentShareFor(recipient int) (group.Scalar, error) {
	if p.state != StateSharesGenerated && p.state != StateAggregated {
		return nil, ErrInvalidState
	}
	s, ok := p.slots[recipient]
	if !ok {
		return nil, ErrMissingShare
	}
	return s, nil
}

// AggregateEnrollmentShares executes Round 1.2: the participant sums
// its own addressed slot with the shares the other t-1 involved-set
// members addressed to it.
//
// sigma = slots[self] + sum(received) mod Q
//
// No cross-participant sum check is meaningful in isolation here;
// correctness is only observable once all sigma values reach the new
// participant.
//
// Transitions StateSharesGenerated -> StateAggregated.
//
// Errors:
//   - ErrInvalidState: Round 1.1 has not been executed
//   - ErrInvalidShareCount: received count != threshold-1
func (p *Participant) AggregateEnrollmentShares(received []group.Scalar) error {
	if p.state != StateSharesGenerated {
		return ErrInvalidState
	}
	if !CheckCount(received, p.Threshold-1) {
		return ErrInvalidShareCount
	}

	own, ok := p.slots[p.Index]
	if !ok {
		return ErrMissingShare
	}

	p.sigma = own.Add(SumScalars(p.grp, received))
	p.state = StateAggregated
	return nil
}

// AggregateShare returns the Round 1.2 aggregate sigma.
//
// Returns ErrInvalidState before Round 1.2 has completed.
func (p *Participant) AggregateShare() (group.Scalar, error) {
	if p.state != StateAggregated {
		return nil, ErrInvalidState
	}
	return p.sigma, nil
}

// GenerateFrostShare executes Round 2 on the joining participant: the
// new share is the sum of the aggregate enrollment shares produced by
// the t involved-set members.
//
// Given honest inputs, the result equals the value the original
// degree-(t-1) secret polynomial takes at this participant's index, so
// it interpolates with any t-1 original shares to the same group secret
// and the same group public key.
//
// Transitions StateIdle -> StateEnrolled.
//
// Errors:
//   - ErrInvalidState: already enrolled or mid-protocol
//   - ErrInvalidShareCount: sigma count != threshold
func (p *Participant) GenerateFrostShare(sigmas []group.Scalar, groupKey group.Element) error {
	if p.state != StateIdle || p.enrolled {
		return ErrInvalidState
	}
	if len(sigmas) == 0 || !CheckCount(sigmas, p.Threshold) {
		return ErrInvalidShareCount
	}
	if groupKey == nil {
		return ErrNotEnrolled
	}

	p.share = SumScalars(p.grp, sigmas)
	p.groupKey = groupKey
	p.enrolled = true
	p.state = StateEnrolled
	return nil
}

// IncrementParticipants records the scheme growing by one member after
// a completed enrollment. It must be called on every surviving
// participant, not only involved-set members, exactly once per session.
func (p *Participant) IncrementParticipants() {
	p.Participants++
}

// IsEnrolled reports whether the participant holds a valid share. True
// for members that predate enrollment and for a joiner whose Round 2
// completed validation. Deliberately tracked as an explicit flag rather
// than derived from share non-nilness.
func (p *Participant) IsEnrolled() bool {
	return p.enrolled
}

// Share returns the participant's secret share.
//
// SECURITY: The returned scalar is the raw secret. Callers exporting it
// are responsible for encryption; see ExportMetadata for the non-secret
// surface.
//
// Returns ErrNotEnrolled if the participant holds no share.
func (p *Participant) Share() (group.Scalar, error) {
	if !p.enrolled || p.share == nil {
		return nil, ErrNotEnrolled
	}
	return p.share, nil
}

// GroupKey returns the group public key, or nil for an unenrolled
// joiner.
func (p *Participant) GroupKey() group.Element {
	return p.groupKey
}

// VerifyGroupKey checks, in constant time, that the participant's view
// of the group public key matches expected.
func (p *Participant) VerifyGroupKey(expected group.Element) bool {
	if p.groupKey == nil || expected == nil {
		return false
	}
	return constantTimeElementEqual(p.groupKey, expected)
}

// resetEnrollment discards per-session scratch state (addressed slots,
// sigma, round position) without touching committed fields. Called on
// session completion and on abort so that a failed session leaves the
// participant exactly as it was before the session started.
func (p *Participant) resetEnrollment() {
	// Overwrite scratch secrets before dropping references.
	zero := p.grp.NewScalar()
	for k := range p.slots {
		p.slots[k] = zero
	}
	p.slots = nil
	p.sigma = nil
	if p.state != StateEnrolled {
		p.state = StateIdle
	}
}

// Metadata is the non-secret, exportable view of a participant, for
// backup and inspection. It never contains the secret share.
type Metadata struct {
	Index        int    `json:"index" yaml:"index"`
	Threshold    int    `json:"threshold" yaml:"threshold"`
	Participants int    `json:"participants" yaml:"participants"`
	Enrolled     bool   `json:"enrolled" yaml:"enrolled"`
	GroupKey     []byte `json:"group_key,omitempty" yaml:"group_key,omitempty"`
}

// ExportMetadata returns the participant's non-secret metadata.
func (p *Participant) ExportMetadata() Metadata {
	md := Metadata{
		Index:        p.Index,
		Threshold:    p.Threshold,
		Participants: p.Participants,
		Enrolled:     p.enrolled,
	}
	if p.groupKey != nil {
		md.GroupKey = p.groupKey.Bytes()
	}
	return md
}

// Zeroize clears the participant's secret material.
//
// SECURITY NOTE: Due to Go's type system this cannot directly zero the
// memory holding scalar values; the group.Scalar interface does not
// expose internal byte storage. References are overwritten with zero
// scalars and then dropped to make them GC-eligible.
func (p *Participant) Zeroize() {
	if p == nil {
		return
	}
	zero := p.grp.NewScalar()
	if p.share != nil {
		p.share = zero
	}
	p.share = nil
	if p.sigma != nil {
		p.sigma = zero
	}
	p.sigma = nil
	for k := range p.slots {
		p.slots[k] = zero
	}
	p.slots = nil
	p.enrolled = false
}
