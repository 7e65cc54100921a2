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

func TestNewDeal(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	deal, err := NewDeal(cs, nil, 3, 5)
	if err != nil {
		t.Fatalf("NewDeal failed: %v", err)
	}

	if deal.Threshold != 3 {
		t.Errorf("Expected threshold 3, got %d", deal.Threshold)
	}
	if len(deal.Shares) != 5 {
		t.Errorf("Expected 5 shares, got %d", len(deal.Shares))
	}
	for idx := 1; idx <= 5; idx++ {
		if _, ok := deal.Shares[idx]; !ok {
			t.Errorf("Missing share for index %d", idx)
		}
	}

	// Any t shares reconstruct a secret consistent with the group key.
	for _, indices := range [][]int{{1, 2, 3}, {1, 3, 5}, {2, 4, 5}} {
		subset := make(map[int]group.Scalar, len(indices))
		for _, idx := range indices {
			subset[idx] = deal.Shares[idx]
		}
		secret, err := ReconstructSecret(grp, subset)
		if err != nil {
			t.Fatalf("ReconstructSecret(%v) failed: %v", indices, err)
		}
		if !grp.ScalarBaseMult(secret).Equal(deal.GroupKey) {
			t.Errorf("Subset %v does not reconstruct to the group key", indices)
		}
	}
}

func TestNewDealDeterministicSeed(t *testing.T) {
	cs := ed25519_sha512.New()

	seed := []byte("dealer determinism check")
	a, err := NewDeal(cs, seed, 2, 3)
	if err != nil {
		t.Fatalf("NewDeal failed: %v", err)
	}
	b, err := NewDeal(cs, seed, 2, 3)
	if err != nil {
		t.Fatalf("NewDeal failed: %v", err)
	}

	if !a.GroupKey.Equal(b.GroupKey) {
		t.Error("Same seed must derive the same group key")
	}
	for idx, share := range a.Shares {
		if !share.Equal(b.Shares[idx]) {
			t.Errorf("Same seed must derive the same share for index %d", idx)
		}
	}

	c, err := NewDeal(cs, []byte("other seed"), 2, 3)
	if err != nil {
		t.Fatalf("NewDeal failed: %v", err)
	}
	if a.GroupKey.Equal(c.GroupKey) {
		t.Error("Different seeds must derive different group keys")
	}
}

func TestNewDealValidation(t *testing.T) {
	cs := ed25519_sha512.New()

	tests := []struct {
		name          string
		threshold     int
		participants  int
		expectedError error
	}{
		{"threshold one", 1, 3, ErrInvalidThreshold},
		{"threshold above count", 4, 3, ErrInvalidThreshold},
		{"single participant", 2, 1, ErrInvalidParticipantCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDeal(cs, nil, tt.threshold, tt.participants)
			if !errors.Is(err, tt.expectedError) {
				t.Errorf("Expected %v, got %v", tt.expectedError, err)
			}
		})
	}
}

func TestDealParticipants(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	deal, err := NewDeal(cs, nil, 2, 3)
	if err != nil {
		t.Fatalf("NewDeal failed: %v", err)
	}
	members, err := deal.Participants(grp)
	if err != nil {
		t.Fatalf("Deal.Participants failed: %v", err)
	}

	if len(members) != 3 {
		t.Fatalf("Expected 3 participants, got %d", len(members))
	}
	for _, p := range members {
		if !p.IsEnrolled() {
			t.Errorf("Participant %d must be enrolled", p.Index)
		}
		share, err := p.Share()
		if err != nil {
			t.Fatalf("Share failed: %v", err)
		}
		if !share.Equal(deal.Shares[p.Index]) {
			t.Errorf("Participant %d share does not match the deal", p.Index)
		}
		if !p.VerifyGroupKey(deal.GroupKey) {
			t.Errorf("Participant %d group key does not match the deal", p.Index)
		}
	}
}

func TestReconstructAtIndex(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	deal, err := NewDeal(cs, nil, 2, 4)
	if err != nil {
		t.Fatalf("NewDeal failed: %v", err)
	}

	// Interpolating shares 1 and 2 at index 4 must reproduce share 4.
	subset := map[int]group.Scalar{1: deal.Shares[1], 2: deal.Shares[2]}
	got, err := Reconstruct(grp, subset, 4)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if !got.Equal(deal.Shares[4]) {
		t.Error("Interpolated value does not match the dealt share")
	}
}

func TestPolynomialEval(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	// f(x) = 3 + 2x over the scalar field.
	three := scalarFromIndex(grp, 3)
	two := scalarFromIndex(grp, 2)
	poly, err := NewPolynomial(grp, []group.Scalar{three, two})
	if err != nil {
		t.Fatalf("NewPolynomial failed: %v", err)
	}

	if !poly.Secret().Equal(three) {
		t.Error("Secret must be the constant coefficient")
	}
	// f(5) = 13
	if !poly.Eval(scalarFromIndex(grp, 5)).Equal(scalarFromIndex(grp, 13)) {
		t.Error("Eval(5) != 13")
	}

	if _, err := NewPolynomial(grp, nil); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("Expected ErrInvalidThreshold for empty coefficients, got %v", err)
	}
}
