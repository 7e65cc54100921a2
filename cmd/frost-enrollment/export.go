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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/siv2r/frost-enrollment/pkg/enrollment"
)

var (
	exportShare  string
	exportPolicy string
	exportOutput string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export non-secret key share metadata",
	Long: `Export a participant's non-secret metadata as JSON for backup or
inspection.

The output contains the participant index, the group shape, the
enrollment status and the group public key. It never contains the
secret share, so it is safe to store or transmit alongside ordinary
operational records.

Examples:
  # Print metadata for a key share file
  frost-enrollment export --share participant1.json

  # Write metadata to a backup file
  frost-enrollment export --share participant1.json --output backup1.json

  # Honor an enrollment policy file
  frost-enrollment export --share participant1.json --policy policy.yaml`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportShare, "share", "s", "", "path to key share file")
	exportCmd.Flags().StringVar(&exportPolicy, "policy", "", "path to an enrollment policy file (export fails if it disables share backup)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write metadata to this file instead of stdout")

	if err := exportCmd.MarkFlagRequired("share"); err != nil {
		panic(fmt.Sprintf("failed to mark share flag as required: %v", err))
	}

	if err := viper.BindPFlag("export.share", exportCmd.Flags().Lookup("share")); err != nil {
		panic(fmt.Sprintf("failed to bind share flag: %v", err))
	}
	if err := viper.BindPFlag("export.policy", exportCmd.Flags().Lookup("policy")); err != nil {
		panic(fmt.Sprintf("failed to bind policy flag: %v", err))
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportPolicy != "" {
		policy, err := enrollment.LoadConfig(exportPolicy)
		if err != nil {
			return err
		}
		if !policy.EnableShareBackup {
			return enrollment.ErrBackupDisabled
		}
	}

	keyShare, err := loadKeyShare(exportShare)
	if err != nil {
		return err
	}

	csName := keyShare.Ciphersuite
	if csName == "" {
		csName = ciphersuite
	}
	cs, err := resolveCiphersuite(csName)
	if err != nil {
		return err
	}
	grp := cs.Group()

	shareBytes, err := hex.DecodeString(keyShare.SecretShare)
	if err != nil {
		return fmt.Errorf("invalid secret_share hex: %w", err)
	}
	share, err := grp.DeserializeScalar(shareBytes)
	if err != nil {
		return fmt.Errorf("secret_share is not a valid scalar for %s: %w", csName, err)
	}
	groupKeyBytes, err := hex.DecodeString(keyShare.GroupPubkey)
	if err != nil {
		return fmt.Errorf("invalid group_pubkey hex: %w", err)
	}
	groupKey, err := grp.DeserializeElement(groupKeyBytes)
	if err != nil {
		return fmt.Errorf("group_pubkey is not a valid group element for %s: %w", csName, err)
	}

	participant, err := enrollment.NewParticipant(grp, keyShare.ParticipantIndex,
		keyShare.Threshold, keyShare.NumParticipants, share, groupKey)
	if err != nil {
		return err
	}

	metadata := participant.ExportMetadata()
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if exportOutput != "" {
		if err := os.WriteFile(filepath.Clean(exportOutput), data, 0o600); err != nil {
			return fmt.Errorf("failed to write metadata file: %w", err)
		}
		if verbose {
			fmt.Printf("Wrote metadata for participant %d to %s\n", keyShare.ParticipantIndex, exportOutput)
		}
		return nil
	}

	fmt.Println(string(data))
	return nil
}
