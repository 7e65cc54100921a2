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

// Package enrollment implements the FROST enrollment protocol from
// https://eprint.iacr.org/2017/1155 section 4.1.1.
//
// Enrollment converts an existing (t, n) threshold scheme into a
// (t, n+1) scheme by deriving a valid share for a new participant,
// without ever reconstructing or moving the group secret. The group
// public key is unchanged by enrollment.
//
// Protocol Overview:
//
//  1. Round 1.1 (Each existing participant in the involved set):
//     Split the Lagrange-weighted share contribution for the new
//     participant into t additive shares, one addressed to each member
//     of the involved set.
//
//  2. Round 1.2 (Each existing participant in the involved set):
//     Sum the shares addressed to you, including your own, to compute
//     an aggregate value sigma.
//
//  3. Round 2 (New participant): Sum all sigma values to obtain the
//     new share f(newIndex) of the underlying secret polynomial.
//
// Security Requirements:
//   - Exactly t participants must cooperate in each round
//   - Addressed shares and sigma values must be transmitted on secure
//     channels (out of scope for this package)
//   - All participant indices must be unique and 1-based
package enrollment

import (
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// ModularInverse returns the multiplicative inverse of v modulo the
// group order Q.
//
// Returns ErrZeroScalar if v is congruent to zero, since zero has no
// inverse in the field.
func ModularInverse(grp group.Group, v group.Scalar) (group.Scalar, error) {
	if v == nil || v.IsZero() {
		return nil, ErrZeroScalar
	}
	return v.Inv()
}

// LagrangeBasis evaluates the Lagrange basis polynomial for participant
// self at an arbitrary point.
//
// This computes:
//
//	L_self(at) = product((j - at) / (j - self)) for all j in indices, j != self
//
// where indices are 1-based participant indices. During enrollment the
// polynomial is evaluated at the new participant's index, generalizing
// the zero-point Lagrange coefficient used for reconstruction.
//
// Errors:
//   - ErrInvalidParticipantIndex: any index is not positive
//   - ErrDuplicateParticipant: indices contain duplicates
//   - ErrNotInvolved: self is not a member of indices
//   - ErrZeroScalar: a denominator term degenerates to zero
func LagrangeBasis(grp group.Group, indices []int, self int, at group.Scalar) (group.Scalar, error) {
	if self < 1 {
		return nil, ErrInvalidParticipantIndex
	}

	seen := make(map[int]bool, len(indices))
	selfFound := false
	for _, idx := range indices {
		if idx < 1 {
			return nil, ErrInvalidParticipantIndex
		}
		if seen[idx] {
			return nil, ErrDuplicateParticipant
		}
		seen[idx] = true
		if idx == self {
			selfFound = true
		}
	}
	if !selfFound {
		return nil, ErrNotInvolved
	}

	selfScalar := scalarFromIndex(grp, self)

	numerator := scalarFromIndex(grp, 1)
	denominator := scalarFromIndex(grp, 1)

	for _, idx := range indices {
		if idx == self {
			continue
		}
		j := scalarFromIndex(grp, idx)

		// numerator *= (j - at)
		numerator = numerator.Mul(j.Sub(at))

		// denominator *= (j - self)
		denominator = denominator.Mul(j.Sub(selfScalar))
	}

	if denominator.IsZero() {
		return nil, ErrZeroScalar
	}

	denominatorInv, err := denominator.Inv()
	if err != nil {
		return nil, err
	}

	return numerator.Mul(denominatorInv), nil
}

// SplitAdditive splits a secret into one additive share per recipient.
//
// Every slot except the caller's own is a uniformly random scalar drawn
// from the group's CSPRNG; the caller's slot is set to
// secret - sum(other slots), so the slots sum to the secret mod Q.
//
// The returned map is keyed by recipient participant index, never by
// array position. An unset index is a distinct, checkable condition;
// this is what prevents the position-vs-index confusion that is the
// dominant defect class in this protocol.
//
// Errors:
//   - ErrInvalidParticipantIndex: any recipient index is not positive
//   - ErrDuplicateParticipant: recipient indices contain duplicates
//   - ErrNotInvolved: self is not among the recipients
func SplitAdditive(grp group.Group, secret group.Scalar, recipients []int, self int) (map[int]group.Scalar, error) {
	if self < 1 {
		return nil, ErrInvalidParticipantIndex
	}

	seen := make(map[int]bool, len(recipients))
	selfFound := false
	for _, idx := range recipients {
		if idx < 1 {
			return nil, ErrInvalidParticipantIndex
		}
		if seen[idx] {
			return nil, ErrDuplicateParticipant
		}
		seen[idx] = true
		if idx == self {
			selfFound = true
		}
	}
	if !selfFound {
		return nil, ErrNotInvolved
	}

	slots := make(map[int]group.Scalar, len(recipients))
	randomSum := grp.NewScalar() // zero

	for _, idx := range recipients {
		if idx == self {
			continue
		}
		r, err := grp.RandomScalar()
		if err != nil {
			return nil, err
		}
		slots[idx] = r
		randomSum = randomSum.Add(r)
	}

	// Self slot balances the sum: secret - sum(random slots).
	slots[self] = secret.Sub(randomSum)

	return slots, nil
}

// SumScalars returns the sum of the given scalars mod Q, or the zero
// scalar for an empty input.
func SumScalars(grp group.Group, scalars []group.Scalar) group.Scalar {
	sum := grp.NewScalar()
	for _, s := range scalars {
		sum = sum.Add(s)
	}
	return sum
}
