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
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ed25519_sha512"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ristretto255_sha512"

	"github.com/siv2r/frost-enrollment/pkg/transport"
)

// SuiteByName resolves a canonical ciphersuite name carried in the
// session parameters to its implementation.
func SuiteByName(name string) (ciphersuite.Ciphersuite, error) {
	switch name {
	case "FROST-ED25519-SHA512-v1":
		return ed25519_sha512.New(), nil
	case "FROST-RISTRETTO255-SHA512-v1":
		return ristretto255_sha512.New(), nil
	default:
		return nil, transport.ErrCiphersuiteMismatch
	}
}
