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
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verifyShare    string
	verifyGroupKey string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify key share files",
	Long: `Verify that a key share file is valid and optionally check against a group public key.

This command validates:
  - JSON format is correct
  - All required fields are present
  - The secret share decodes to a valid scalar for the ciphersuite
  - The group public key decodes to a valid group element
  - Group public key matches expected value (if --group-key provided)

Examples:
  # Verify a key share file
  frost-enrollment verify --share participant1.json

  # Verify and check against expected group key
  frost-enrollment verify --share participant1.json \
    --group-key 02abc123...`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyShare, "share", "s", "", "path to key share file")
	verifyCmd.Flags().StringVar(&verifyGroupKey, "group-key", "", "expected group public key (hex) to verify against")

	if err := verifyCmd.MarkFlagRequired("share"); err != nil {
		panic(fmt.Sprintf("failed to mark share flag as required: %v", err))
	}

	if err := viper.BindPFlag("verify.share", verifyCmd.Flags().Lookup("share")); err != nil {
		panic(fmt.Sprintf("failed to bind share flag: %v", err))
	}
	if err := viper.BindPFlag("verify.group_key", verifyCmd.Flags().Lookup("group-key")); err != nil {
		panic(fmt.Sprintf("failed to bind group_key flag: %v", err))
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verbose {
		fmt.Printf("Verifying key share: %s\n", verifyShare)
	}

	keyShare, err := loadKeyShare(verifyShare)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Println("Key share file format: OK")
	}

	// Determine the ciphersuite from the file, or fall back to the
	// global --ciphersuite flag
	csName := keyShare.Ciphersuite
	if csName == "" {
		csName = ciphersuite
	}
	cs, err := resolveCiphersuite(csName)
	if err != nil {
		return err
	}
	grp := cs.Group()

	if verbose {
		fmt.Printf("Ciphersuite: %s\n", csName)
	}

	// Verify required fields
	if keyShare.ParticipantIndex < 1 {
		return fmt.Errorf("participant_index must be >= 1, got %d", keyShare.ParticipantIndex)
	}
	if keyShare.SecretShare == "" {
		return fmt.Errorf("missing secret_share field")
	}
	if keyShare.GroupPubkey == "" {
		return fmt.Errorf("missing group_pubkey field")
	}
	if keyShare.Threshold < 2 {
		return fmt.Errorf("threshold must be at least 2, got %d", keyShare.Threshold)
	}
	if keyShare.NumParticipants < keyShare.Threshold {
		return fmt.Errorf("num_participants %d is below threshold %d", keyShare.NumParticipants, keyShare.Threshold)
	}

	// Decode and validate the secret share
	shareBytes, err := hex.DecodeString(keyShare.SecretShare)
	if err != nil {
		return fmt.Errorf("invalid secret_share hex: %w", err)
	}
	if _, err := grp.DeserializeScalar(shareBytes); err != nil {
		return fmt.Errorf("secret_share is not a valid scalar for %s: %w", csName, err)
	}
	if verbose {
		fmt.Printf("Secret share: OK (%d bytes, valid scalar)\n", len(shareBytes))
	}

	// Decode and validate the group public key
	groupKeyBytes, err := hex.DecodeString(keyShare.GroupPubkey)
	if err != nil {
		return fmt.Errorf("invalid group_pubkey hex: %w", err)
	}
	groupKey, err := grp.DeserializeElement(groupKeyBytes)
	if err != nil {
		return fmt.Errorf("group_pubkey is not a valid group element for %s: %w", csName, err)
	}
	if groupKey.IsIdentity() {
		return fmt.Errorf("group_pubkey is the identity element")
	}
	if verbose {
		fmt.Printf("Group public key: OK (%d bytes, valid element)\n", len(groupKeyBytes))
	}

	// Verify against expected group key if provided
	if verifyGroupKey != "" {
		expectedBytes, err := hex.DecodeString(verifyGroupKey)
		if err != nil {
			return fmt.Errorf("invalid group-key hex: %w", err)
		}
		expected, err := grp.DeserializeElement(expectedBytes)
		if err != nil {
			return fmt.Errorf("group-key is not a valid group element for %s: %w", csName, err)
		}
		if !groupKey.Equal(expected) {
			return fmt.Errorf("group public key mismatch:\n  got:      %s\n  expected: %s",
				keyShare.GroupPubkey, verifyGroupKey)
		}
		fmt.Println("Group key verification: OK")
	}

	// Print summary
	fmt.Println("\nVerification Summary:")
	fmt.Printf("  Participant Index: %d\n", keyShare.ParticipantIndex)
	fmt.Printf("  Group: %d-of-%d\n", keyShare.Threshold, keyShare.NumParticipants)
	fmt.Printf("  Ciphersuite: %s\n", csName)
	fmt.Printf("  Session ID: %s\n", keyShare.SessionID)
	fmt.Printf("  Group Public Key: %s\n", keyShare.GroupPubkey)
	if keyShare.Timestamp > 0 {
		fmt.Printf("  Timestamp: %d\n", keyShare.Timestamp)
	}

	fmt.Println("\nKey share is VALID")
	return nil
}
