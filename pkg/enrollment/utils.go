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
	"crypto/subtle"

	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// scalarFromIndex creates a scalar from a 1-based participant index.
//
// Panics if idx is not positive (indicating a bug: all indices must be
// validated before reaching field arithmetic).
func scalarFromIndex(grp group.Group, idx int) group.Scalar {
	if idx < 1 {
		panic("scalarFromIndex: participant index must be positive")
	}

	bytes := make([]byte, grp.ScalarLength())

	n := idx
	if grp.ByteOrder() == group.LittleEndian {
		// Little-endian: least significant byte first
		for i := 0; i < len(bytes) && n > 0; i++ {
			bytes[i] = byte(n & 0xff)
			n >>= 8
		}
	} else {
		// Big-endian: most significant byte first
		for i := grp.ScalarLength() - 1; i >= 0 && n > 0; i-- {
			bytes[i] = byte(n & 0xff)
			n >>= 8
		}
	}

	scalar, err := grp.DeserializeScalar(bytes)
	if err != nil {
		// Participant indices are bounded by MaxParticipants, far below
		// the group order for all supported curves
		panic("scalarFromIndex: unexpected deserialization failure: " + err.Error())
	}
	return scalar
}

// constantTimeElementEqual compares two group elements in constant time.
// This prevents timing side-channel attacks when comparing public keys.
func constantTimeElementEqual(a, b group.Element) bool {
	aBytes := a.Bytes()
	bBytes := b.Bytes()

	if len(aBytes) != len(bBytes) {
		return false
	}
	return subtle.ConstantTimeCompare(aBytes, bBytes) == 1
}

// distinctPositive reports whether indices are all positive and unique.
func distinctPositive(indices []int) bool {
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 1 || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}
