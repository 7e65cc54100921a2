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
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/siv2r/frost-enrollment/pkg/enrollment"
)

var (
	dealThreshold    int
	dealParticipants int
	dealSeed         string
	dealOutputDir    string
)

// KeyShareOutput represents the JSON output format for key shares
type KeyShareOutput struct {
	ParticipantIndex int    `json:"participant_index"`
	Threshold        int    `json:"threshold"`
	NumParticipants  int    `json:"num_participants"`
	Ciphersuite      string `json:"ciphersuite"`
	SecretShare      string `json:"secret_share"` // hex-encoded
	GroupPubkey      string `json:"group_pubkey"` // hex-encoded
	SessionID        string `json:"session_id"`
	Timestamp        int64  `json:"timestamp"`
}

// dealCmd represents the deal command
var dealCmd = &cobra.Command{
	Use:   "deal",
	Short: "Generate an initial set of key shares",
	Long: `Generate a threshold key setup with a trusted dealer.

The dealer samples a random polynomial, evaluates it at each participant
index, and writes one key share file per participant. The shares are
compatible with 'frost-enrollment enroll' and 'frost-enrollment verify'.

Examples:
  # Generate a 2-of-3 setup in the current directory
  frost-enrollment deal --threshold 2 --participants 3

  # Deterministic setup from a seed, written to a custom directory
  frost-enrollment deal --threshold 3 --participants 5 \
    --seed 000102030405060708090a0b0c0d0e0f \
    --output-dir ./shares`,
	RunE: runDeal,
}

func init() {
	dealCmd.Flags().IntVarP(&dealThreshold, "threshold", "t", 2, "signing threshold")
	dealCmd.Flags().IntVarP(&dealParticipants, "participants", "n", 3, "number of participants")
	dealCmd.Flags().StringVar(&dealSeed, "seed", "", "hex-encoded seed for deterministic key generation (random if empty)")
	dealCmd.Flags().StringVarP(&dealOutputDir, "output-dir", "o", ".", "directory for the key share files")

	if err := viper.BindPFlag("deal.threshold", dealCmd.Flags().Lookup("threshold")); err != nil {
		panic(fmt.Sprintf("failed to bind threshold flag: %v", err))
	}
	if err := viper.BindPFlag("deal.participants", dealCmd.Flags().Lookup("participants")); err != nil {
		panic(fmt.Sprintf("failed to bind participants flag: %v", err))
	}
	if err := viper.BindPFlag("deal.output_dir", dealCmd.Flags().Lookup("output-dir")); err != nil {
		panic(fmt.Sprintf("failed to bind output_dir flag: %v", err))
	}
}

func runDeal(cmd *cobra.Command, args []string) error {
	cs, err := resolveCiphersuite(ciphersuite)
	if err != nil {
		return err
	}

	var seed []byte
	if dealSeed != "" {
		seed, err = hex.DecodeString(dealSeed)
		if err != nil {
			return fmt.Errorf("invalid seed hex: %w", err)
		}
	}

	if verbose {
		fmt.Printf("Generating %d-of-%d key shares (%s)\n", dealThreshold, dealParticipants, ciphersuite)
	}

	deal, err := enrollment.NewDeal(cs, seed, dealThreshold, dealParticipants)
	if err != nil {
		return fmt.Errorf("failed to generate deal: %w", err)
	}

	if err := os.MkdirAll(dealOutputDir, 0o700); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	sessionID := uuid.New().String()
	groupKeyHex := hex.EncodeToString(deal.GroupKey.Bytes())
	now := time.Now().Unix()

	for idx, share := range deal.Shares {
		output := KeyShareOutput{
			ParticipantIndex: idx,
			Threshold:        dealThreshold,
			NumParticipants:  dealParticipants,
			Ciphersuite:      ciphersuite,
			SecretShare:      hex.EncodeToString(share.Bytes()),
			GroupPubkey:      groupKeyHex,
			SessionID:        sessionID,
			Timestamp:        now,
		}

		path := filepath.Join(dealOutputDir, fmt.Sprintf("participant%d.json", idx))
		if err := writeKeyShare(path, &output); err != nil {
			return err
		}
		if verbose {
			fmt.Printf("Wrote %s\n", path)
		}
	}

	fmt.Printf("Generated %d key shares in %s\n", dealParticipants, dealOutputDir)
	fmt.Printf("Group public key: %s\n", groupKeyHex)
	return nil
}
