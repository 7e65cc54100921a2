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
	"crypto/rand"
	"encoding/binary"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// The trusted dealer fabricates a valid (t, n) scheme for tests and
// demos. Production shares come from the external DKG; the dealer
// exists so this repo can stand up a scheme whose shares the
// enrollment protocol then extends.

// Polynomial represents a scalar polynomial over a prime-order group.
//
// A polynomial f of degree at most t-1 is represented by t coefficients:
// f(x) = coeffs[0] + coeffs[1]*x + ... + coeffs[t-1]*x^(t-1)
type Polynomial struct {
	coeffs []group.Scalar
	grp    group.Group
}

// NewPolynomial creates a polynomial with the given coefficients,
// ordered from the constant term up. The coefficients are copied.
//
// Returns ErrInvalidThreshold if coeffs is empty.
func NewPolynomial(grp group.Group, coeffs []group.Scalar) (*Polynomial, error) {
	if len(coeffs) == 0 {
		return nil, ErrInvalidThreshold
	}

	copied := make([]group.Scalar, len(coeffs))
	for i, c := range coeffs {
		copied[i] = c.Copy()
	}

	return &Polynomial{coeffs: copied, grp: grp}, nil
}

// Threshold returns the threshold t (the number of coefficients).
func (p *Polynomial) Threshold() int {
	return len(p.coeffs)
}

// Eval evaluates the polynomial at x using Horner's method.
//
// SECURITY: panics if x is zero because f(0) is the secret; use
// Secret() for explicit access.
func (p *Polynomial) Eval(x group.Scalar) group.Scalar {
	if x.IsZero() {
		panic("Polynomial.Eval: evaluation at zero would reveal secret - use Secret()")
	}

	value := p.grp.NewScalar()
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		value = value.Mul(x)
		value = value.Add(p.coeffs[i])
	}
	return value
}

// Secret returns the constant term f(0), the shared secret.
func (p *Polynomial) Secret() group.Scalar {
	return p.coeffs[0].Copy()
}

// Zeroize clears the polynomial coefficients. References are
// overwritten with zero scalars and dropped; the group.Scalar interface
// does not expose internal byte storage for direct wiping.
func (p *Polynomial) Zeroize() {
	if p == nil {
		return
	}
	if p.grp != nil {
		zero := p.grp.NewScalar()
		for i := range p.coeffs {
			p.coeffs[i] = zero
		}
	}
	for i := range p.coeffs {
		p.coeffs[i] = nil
	}
	p.coeffs = nil
}

// Deal holds a trusted dealer's output: a (t, n) scheme with shares
// keyed by 1-based participant index and the corresponding group
// public key.
type Deal struct {
	// Threshold is the signing threshold t.
	Threshold int

	// Shares maps each 1-based participant index to f(index).
	Shares map[int]group.Scalar

	// GroupKey is f(0)*G, the group public key.
	GroupKey group.Element
}

// NewDeal samples a degree-(t-1) polynomial from the seed and deals
// shares f(1..n).
//
// The coefficients are derived with the ciphersuite's hash-to-scalar:
// coeffs[i] = H3("frost-enrollment/dealer coeffs" || seed || i).
// Passing a nil seed draws 32 random bytes from crypto/rand.
func NewDeal(cs ciphersuite.Ciphersuite, seed []byte, t, n int) (*Deal, error) {
	if err := validateScheme(t, n); err != nil {
		return nil, err
	}

	if seed == nil {
		seed = make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			return nil, err
		}
	}

	grp := cs.Group()

	coeffs := make([]group.Scalar, t)
	for i := 0; i < t; i++ {
		prefix := []byte("frost-enrollment/dealer coeffs")
		input := make([]byte, len(prefix)+len(seed)+4)
		copy(input, prefix)
		copy(input[len(prefix):], seed)
		binary.BigEndian.PutUint32(input[len(prefix)+len(seed):], uint32(i))
		coeffs[i] = cs.H3(input)
	}

	poly, err := NewPolynomial(grp, coeffs)
	if err != nil {
		return nil, err
	}
	defer poly.Zeroize()

	shares := make(map[int]group.Scalar, n)
	for idx := 1; idx <= n; idx++ {
		shares[idx] = poly.Eval(scalarFromIndex(grp, idx))
	}

	groupKey := grp.ScalarBaseMult(poly.Secret())

	return &Deal{
		Threshold: t,
		Shares:    shares,
		GroupKey:  groupKey,
	}, nil
}

// Participants constructs enrollment-capable participants for every
// dealt share, all sharing the deal's group public key.
func (d *Deal) Participants(grp group.Group) ([]*Participant, error) {
	n := len(d.Shares)
	participants := make([]*Participant, 0, n)

	for idx := 1; idx <= n; idx++ {
		share, ok := d.Shares[idx]
		if !ok {
			return nil, ErrMissingShare
		}
		p, err := NewParticipant(grp, idx, d.Threshold, n, share, d.GroupKey)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return participants, nil
}

// Reconstruct recovers the group secret's value at an arbitrary point
// from the given shares via Lagrange interpolation:
//
//	f(at) = sum(L_i(at) * share_i) over all provided indices i
//
// Passing at = 0 is not supported; to check the global invariant,
// reconstruct at a held-out participant index, or compare
// ReconstructSecret against the group key.
//
// Errors:
//   - ErrInvalidShareCount: no shares provided
//   - errors from LagrangeBasis on malformed index sets
func Reconstruct(grp group.Group, shares map[int]group.Scalar, at int) (group.Scalar, error) {
	if len(shares) == 0 {
		return nil, ErrInvalidShareCount
	}
	if at < 1 {
		return nil, ErrInvalidParticipantIndex
	}

	indices := make([]int, 0, len(shares))
	for idx := range shares {
		indices = append(indices, idx)
	}

	atScalar := scalarFromIndex(grp, at)

	value := grp.NewScalar()
	for _, idx := range indices {
		coeff, err := LagrangeBasis(grp, indices, idx, atScalar)
		if err != nil {
			return nil, err
		}
		value = value.Add(coeff.Mul(shares[idx]))
	}

	return value, nil
}

// ReconstructSecret recovers the group secret f(0) from the given
// shares via zero-point Lagrange interpolation. Test and audit use
// only; production code never reconstructs the secret.
func ReconstructSecret(grp group.Group, shares map[int]group.Scalar) (group.Scalar, error) {
	if len(shares) == 0 {
		return nil, ErrInvalidShareCount
	}

	indices := make([]int, 0, len(shares))
	for idx := range shares {
		indices = append(indices, idx)
	}

	zero := grp.NewScalar()

	secret := grp.NewScalar()
	for _, idx := range indices {
		coeff, err := LagrangeBasis(grp, indices, idx, zero)
		if err != nil {
			return nil, err
		}
		secret = secret.Add(coeff.Mul(shares[idx]))
	}

	return secret, nil
}
