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

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	frostcs "github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ed25519_sha512"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ristretto255_sha512"
)

// resolveCiphersuite maps a ciphersuite name to its implementation.
func resolveCiphersuite(name string) (frostcs.Ciphersuite, error) {
	switch name {
	case CiphersuiteEd25519:
		return ed25519_sha512.New(), nil
	case CiphersuiteRistretto255:
		return ristretto255_sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported ciphersuite %q (valid: %s)",
			name, strings.Join(ValidCiphersuites(), ", "))
	}
}

// loadKeyShare reads and parses a key share file.
func loadKeyShare(path string) (*KeyShareOutput, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //nolint:gosec // G304: Path is cleaned above
	if err != nil {
		return nil, fmt.Errorf("failed to read key share file: %w", err)
	}

	var keyShare KeyShareOutput
	if err := json.Unmarshal(data, &keyShare); err != nil {
		return nil, fmt.Errorf("failed to parse key share JSON: %w", err)
	}
	return &keyShare, nil
}

// writeKeyShare writes a key share file with owner-only permissions.
func writeKeyShare(path string, keyShare *KeyShareOutput) error {
	data, err := json.MarshalIndent(keyShare, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal key share: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o600); err != nil {
		return fmt.Errorf("failed to write key share file: %w", err)
	}
	return nil
}
