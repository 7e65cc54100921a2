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

// Share validation predicates. Both are pure functions with no side
// effects; callers decide whether a failed check aborts the session.

// CheckCount reports whether exactly want shares were provided.
//
// The resharing math assumes exactly t contributors reconstruct one
// point of the underlying degree-(t-1) polynomial, so neither fewer nor
// more shares satisfy the equation.
func CheckCount(shares []group.Scalar, want int) bool {
	return len(shares) == want
}

// CheckSum reports whether the shares sum to expected mod Q.
func CheckSum(grp group.Group, shares []group.Scalar, expected group.Scalar) bool {
	return SumScalars(grp, shares).Equal(expected)
}

// checkSlotSum reports whether the values of an addressed slot map sum
// to expected mod Q. Checked after every additive split.
func checkSlotSum(grp group.Group, slots map[int]group.Scalar, expected group.Scalar) bool {
	sum := grp.NewScalar()
	for _, s := range slots {
		sum = sum.Add(s)
	}
	return sum.Equal(expected)
}
