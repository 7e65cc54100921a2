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
	"errors"
	"testing"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ed25519_sha512"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

func testParticipant(t *testing.T, grp group.Group, index, threshold, participants int) *Participant {
	t.Helper()
	share, err := grp.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	key := grp.ScalarBaseMult(share)
	p, err := NewParticipant(grp, index, threshold, participants, share, key)
	if err != nil {
		t.Fatalf("NewParticipant failed: %v", err)
	}
	return p
}

func TestNewParticipantValidation(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	share, err := grp.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	key := grp.ScalarBaseMult(share)

	tests := []struct {
		name          string
		index         int
		threshold     int
		participants  int
		share         group.Scalar
		groupKey      group.Element
		expectedError error
	}{
		{"valid", 1, 2, 3, share, key, nil},
		{"index zero", 0, 2, 3, share, key, ErrInvalidParticipantIndex},
		{"index above count", 4, 2, 3, share, key, ErrInvalidParticipantIndex},
		{"threshold one", 1, 1, 3, share, key, ErrInvalidThreshold},
		{"threshold above count", 1, 4, 3, share, key, ErrInvalidThreshold},
		{"one participant", 1, 2, 1, share, key, ErrInvalidParticipantCount},
		{"count above maximum", 1, 2, MaxParticipants + 1, share, key, ErrInvalidParticipantCount},
		{"nil share", 1, 2, 3, nil, key, ErrNotEnrolled},
		{"nil group key", 1, 2, 3, share, nil, ErrNotEnrolled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParticipant(grp, tt.index, tt.threshold, tt.participants, tt.share, tt.groupKey)
			if !errors.Is(err, tt.expectedError) {
				t.Errorf("Expected %v, got %v", tt.expectedError, err)
			}
		})
	}
}

func TestJoiningParticipantHasNoArtifacts(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	joiner, err := NewJoiningParticipant(grp, 4, 2, 4)
	if err != nil {
		t.Fatalf("NewJoiningParticipant failed: %v", err)
	}

	if joiner.IsEnrolled() {
		t.Error("Joiner must not be enrolled before Round 2")
	}
	if _, err := joiner.Share(); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("Expected ErrNotEnrolled, got %v", err)
	}
	if joiner.GroupKey() != nil {
		t.Error("Joiner must hold no group key before Round 2")
	}

	// A joiner cannot act as a helper.
	err = joiner.GenerateEnrollmentShares([]int{3, 4}, 5)
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("Expected ErrNotEnrolled, got %v", err)
	}
}

func TestGenerateEnrollmentSharesValidation(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	tests := []struct {
		name          string
		involved      []int
		newIndex      int
		expectedError error
	}{
		{"valid", []int{1, 2}, 4, nil},
		{"set smaller than threshold", []int{1}, 4, ErrInvalidThreshold},
		{"set larger than threshold", []int{1, 2, 3}, 4, ErrInvalidThreshold},
		{"self not involved", []int{2, 3}, 4, ErrNotInvolved},
		{"duplicate member", []int{1, 1}, 4, ErrDuplicateParticipant},
		{"zero new index", []int{1, 2}, 0, ErrInvalidParticipantIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParticipant(t, grp, 1, 2, 3)
			err := p.GenerateEnrollmentShares(tt.involved, tt.newIndex)
			if !errors.Is(err, tt.expectedError) {
				t.Errorf("Expected %v, got %v", tt.expectedError, err)
			}
			if tt.expectedError != nil && p.state != StateIdle {
				t.Errorf("Failed validation must leave state idle, got %v", p.state)
			}
		})
	}
}

func TestEnrollmentShareRouting(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	p := testParticipant(t, grp, 1, 2, 3)

	// Before Round 1.1 no shares exist.
	if _, err := p.EnrollmentShareFor(2); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}

	if err := p.GenerateEnrollmentShares([]int{1, 2}, 4); err != nil {
		t.Fatalf("GenerateEnrollmentShares failed: %v", err)
	}

	for _, recipient := range []int{1, 2} {
		if _, err := p.EnrollmentShareFor(recipient); err != nil {
			t.Errorf("Expected addressed share for %d, got %v", recipient, err)
		}
	}

	// Index 3 is not in the involved set.
	if _, err := p.EnrollmentShareFor(3); !errors.Is(err, ErrMissingShare) {
		t.Errorf("Expected ErrMissingShare, got %v", err)
	}
}

func TestStateMachineOrdering(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	p := testParticipant(t, grp, 1, 2, 3)

	received, err := grp.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}

	// Round 1.2 before Round 1.1 must fail.
	err = p.AggregateEnrollmentShares([]group.Scalar{received})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
	if _, err := p.AggregateShare(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}

	if err := p.GenerateEnrollmentShares([]int{1, 2}, 4); err != nil {
		t.Fatalf("GenerateEnrollmentShares failed: %v", err)
	}

	// Round 1.1 twice must fail.
	err = p.GenerateEnrollmentShares([]int{1, 2}, 4)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}

	// Wrong received count.
	err = p.AggregateEnrollmentShares(nil)
	if !errors.Is(err, ErrInvalidShareCount) {
		t.Errorf("Expected ErrInvalidShareCount, got %v", err)
	}
	err = p.AggregateEnrollmentShares([]group.Scalar{received, received})
	if !errors.Is(err, ErrInvalidShareCount) {
		t.Errorf("Expected ErrInvalidShareCount, got %v", err)
	}

	if err := p.AggregateEnrollmentShares([]group.Scalar{received}); err != nil {
		t.Fatalf("AggregateEnrollmentShares failed: %v", err)
	}

	if _, err := p.AggregateShare(); err != nil {
		t.Errorf("AggregateShare failed: %v", err)
	}

	// Sigma equals own slot plus the received share.
	own, err := p.EnrollmentShareFor(1)
	if err != nil {
		t.Fatalf("EnrollmentShareFor failed: %v", err)
	}
	sigma, err := p.AggregateShare()
	if err != nil {
		t.Fatalf("AggregateShare failed: %v", err)
	}
	if !sigma.Equal(own.Add(received)) {
		t.Error("Sigma does not equal own slot plus received shares")
	}
}

func TestGenerateFrostShareValidation(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	sigma, err := grp.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	key := grp.ScalarBaseMult(sigma)

	t.Run("existing member rejects enrollment", func(t *testing.T) {
		p := testParticipant(t, grp, 1, 2, 3)
		err := p.GenerateFrostShare([]group.Scalar{sigma, sigma}, key)
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("Expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("wrong sigma count", func(t *testing.T) {
		joiner, err := NewJoiningParticipant(grp, 4, 2, 4)
		if err != nil {
			t.Fatalf("NewJoiningParticipant failed: %v", err)
		}
		err = joiner.GenerateFrostShare([]group.Scalar{sigma}, key)
		if !errors.Is(err, ErrInvalidShareCount) {
			t.Errorf("Expected ErrInvalidShareCount, got %v", err)
		}
	})

	t.Run("success and repeat rejection", func(t *testing.T) {
		joiner, err := NewJoiningParticipant(grp, 4, 2, 4)
		if err != nil {
			t.Fatalf("NewJoiningParticipant failed: %v", err)
		}
		if err := joiner.GenerateFrostShare([]group.Scalar{sigma, sigma}, key); err != nil {
			t.Fatalf("GenerateFrostShare failed: %v", err)
		}
		if !joiner.IsEnrolled() {
			t.Error("Joiner must be enrolled after Round 2")
		}
		share, err := joiner.Share()
		if err != nil {
			t.Fatalf("Share failed: %v", err)
		}
		if !share.Equal(sigma.Add(sigma)) {
			t.Error("New share does not equal the sigma sum")
		}
		err = joiner.GenerateFrostShare([]group.Scalar{sigma, sigma}, key)
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("Expected ErrInvalidState on re-enrollment, got %v", err)
		}
	})
}

func TestIncrementParticipants(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	p := testParticipant(t, grp, 1, 2, 3)
	p.IncrementParticipants()
	if p.Participants != 4 {
		t.Errorf("Expected 4 participants, got %d", p.Participants)
	}
}

func TestVerifyGroupKey(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	p := testParticipant(t, grp, 1, 2, 3)

	if !p.VerifyGroupKey(p.GroupKey()) {
		t.Error("Expected own group key to verify")
	}

	other, err := grp.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	if p.VerifyGroupKey(grp.ScalarBaseMult(other)) {
		t.Error("Expected mismatched key to fail verification")
	}
	if p.VerifyGroupKey(nil) {
		t.Error("Expected nil key to fail verification")
	}
}

func TestExportMetadataExcludesSecrets(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	p := testParticipant(t, grp, 2, 2, 3)
	md := p.ExportMetadata()

	if md.Index != 2 || md.Threshold != 2 || md.Participants != 3 {
		t.Errorf("Unexpected metadata: %+v", md)
	}
	if !md.Enrolled {
		t.Error("Expected enrolled metadata")
	}
	if len(md.GroupKey) == 0 {
		t.Error("Expected serialized group key in metadata")
	}

	share, err := p.Share()
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	if string(md.GroupKey) == string(share.Bytes()) {
		t.Error("Metadata must not carry the secret share")
	}
}

func TestResetEnrollmentPreservesCommittedState(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	p := testParticipant(t, grp, 1, 2, 3)
	before, err := p.Share()
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	beforeCopy := before.Copy()

	if err := p.GenerateEnrollmentShares([]int{1, 2}, 4); err != nil {
		t.Fatalf("GenerateEnrollmentShares failed: %v", err)
	}

	p.resetEnrollment()

	if p.state != StateIdle {
		t.Errorf("Expected idle state after reset, got %v", p.state)
	}
	if p.slots != nil || p.sigma != nil {
		t.Error("Expected scratch state cleared after reset")
	}

	after, err := p.Share()
	if err != nil {
		t.Fatalf("Share failed after reset: %v", err)
	}
	if !after.Equal(beforeCopy) {
		t.Error("Reset must not alter the committed share")
	}
	if p.Participants != 3 {
		t.Errorf("Reset must not alter the participant count, got %d", p.Participants)
	}

	// The participant can run a fresh session after the reset.
	if err := p.GenerateEnrollmentShares([]int{1, 3}, 5); err != nil {
		t.Errorf("Expected fresh session to start after reset, got %v", err)
	}
}

func TestZeroize(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	p := testParticipant(t, grp, 1, 2, 3)
	if err := p.GenerateEnrollmentShares([]int{1, 2}, 4); err != nil {
		t.Fatalf("GenerateEnrollmentShares failed: %v", err)
	}

	p.Zeroize()

	if p.IsEnrolled() {
		t.Error("Expected zeroized participant to be unenrolled")
	}
	if _, err := p.Share(); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("Expected ErrNotEnrolled, got %v", err)
	}
	if p.slots != nil || p.sigma != nil {
		t.Error("Expected scratch state cleared")
	}
}
