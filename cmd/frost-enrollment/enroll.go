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
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/siv2r/frost-enrollment/pkg/enrollment"
	"github.com/siv2r/frost-enrollment/pkg/transport"
	"github.com/siv2r/frost-enrollment/pkg/transport/memory"
)

var (
	enrollShares   []string
	enrollNewIndex int
	enrollOutput   string
	enrollTimeout  int
)

// enrollCmd represents the enroll command
var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Issue a key share for a new participant",
	Long: `Run the enrollment protocol to add a participant to an existing group.

A threshold of existing shareholders cooperate to derive the new share.
Each helper contributes blinded additive shares of its Lagrange-weighted
secret, so no helper share and no group secret is ever revealed. The
group public key is unchanged.

Exactly threshold key share files must be supplied; their owners form
the helper set for this session.

Examples:
  # Enroll participant 4 into a 2-of-3 group using shares 1 and 2
  frost-enrollment enroll \
    --share participant1.json --share participant2.json \
    --output participant4.json

  # Enroll at an explicit index
  frost-enrollment enroll \
    --share participant1.json --share participant3.json \
    --new-index 7 --output participant7.json`,
	RunE: runEnroll,
}

func init() {
	enrollCmd.Flags().StringArrayVarP(&enrollShares, "share", "s", nil, "path to a helper key share file (repeat exactly threshold times)")
	enrollCmd.Flags().IntVar(&enrollNewIndex, "new-index", 0, "index for the new participant (default: participants+1)")
	enrollCmd.Flags().StringVarP(&enrollOutput, "output", "o", "enrolled.json", "output path for the new key share file")
	enrollCmd.Flags().IntVar(&enrollTimeout, "timeout", 60, "session timeout in seconds")

	if err := enrollCmd.MarkFlagRequired("share"); err != nil {
		panic(fmt.Sprintf("failed to mark share flag as required: %v", err))
	}

	if err := viper.BindPFlag("enroll.output", enrollCmd.Flags().Lookup("output")); err != nil {
		panic(fmt.Sprintf("failed to bind output flag: %v", err))
	}
	if err := viper.BindPFlag("enroll.timeout", enrollCmd.Flags().Lookup("timeout")); err != nil {
		panic(fmt.Sprintf("failed to bind timeout flag: %v", err))
	}
}

func runEnroll(cmd *cobra.Command, args []string) error {
	if enrollTimeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second")
	}

	helpers, threshold, numParticipants, suiteName, err := loadHelperShares(enrollShares)
	if err != nil {
		return err
	}

	if !enrollment.EnrollmentAllowed(numParticipants, threshold) {
		return fmt.Errorf("a %d-of-%d group cannot admit another member", threshold, numParticipants)
	}

	newIndex := enrollNewIndex
	if newIndex == 0 {
		newIndex = numParticipants + 1
	}

	involved := make([]int, 0, len(helpers))
	for _, h := range helpers {
		involved = append(involved, h.ParticipantIndex)
	}
	sort.Ints(involved)

	if verbose {
		fmt.Printf("Enrolling index %d into a %d-of-%d group (%s)\n", newIndex, threshold, numParticipants, suiteName)
		fmt.Printf("Helper set: %v\n", involved)
	}

	cfg := transport.NewMemoryConfig("enroll")
	cfg.CodecType = codec
	cfg.Ciphersuite = suiteName
	mt, err := memory.NewMemoryTransport(cfg)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	sessCfg := transport.NewSessionConfig(threshold, numParticipants, involved, newIndex, suiteName)
	sessCfg.Timeout = time.Duration(enrollTimeout) * time.Second

	relay, err := memory.NewMemoryRelay(mt, "", sessCfg)
	if err != nil {
		return fmt.Errorf("failed to create relay: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), sessCfg.Timeout)
	defer cancel()

	if err := relay.Start(ctx); err != nil {
		return fmt.Errorf("failed to start relay: %w", err)
	}
	defer func() { _ = relay.Stop(context.Background()) }()

	members := make(map[int]*memory.MemoryMember, threshold+1)
	params := make(map[int]*transport.EnrollmentParams, threshold+1)

	for _, h := range helpers {
		member, err := memory.NewMemoryHelper(mt, h.ParticipantIndex)
		if err != nil {
			return fmt.Errorf("failed to create helper %d: %w", h.ParticipantIndex, err)
		}
		if err := member.Connect(ctx, relay.SessionID()); err != nil {
			return fmt.Errorf("helper %d failed to connect: %w", h.ParticipantIndex, err)
		}

		share, err := hex.DecodeString(h.SecretShare)
		if err != nil {
			return fmt.Errorf("invalid secret_share hex in share %d: %w", h.ParticipantIndex, err)
		}
		groupKey, err := hex.DecodeString(h.GroupPubkey)
		if err != nil {
			return fmt.Errorf("invalid group_pubkey hex in share %d: %w", h.ParticipantIndex, err)
		}

		members[h.ParticipantIndex] = member
		params[h.ParticipantIndex] = &transport.EnrollmentParams{
			SelfIndex:       h.ParticipantIndex,
			Threshold:       threshold,
			NumParticipants: numParticipants,
			Involved:        involved,
			NewIndex:        newIndex,
			Share:           share,
			GroupKey:        groupKey,
		}
	}

	joiner, err := memory.NewMemoryJoiner(mt, newIndex)
	if err != nil {
		return fmt.Errorf("failed to create joiner: %w", err)
	}
	if err := joiner.Connect(ctx, relay.SessionID()); err != nil {
		return fmt.Errorf("joiner failed to connect: %w", err)
	}
	members[newIndex] = joiner
	params[newIndex] = &transport.EnrollmentParams{
		SelfIndex:       newIndex,
		Threshold:       threshold,
		NumParticipants: numParticipants,
		Involved:        involved,
		NewIndex:        newIndex,
	}

	if err := relay.WaitForMembers(ctx); err != nil {
		return fmt.Errorf("session never filled: %w", err)
	}

	var (
		wg        sync.WaitGroup
		resultsMu sync.Mutex
	)
	results := make(map[int]*transport.EnrollmentResult, len(members))
	errChan := make(chan error, len(members))

	for idx, member := range members {
		wg.Add(1)
		go func(idx int, member *memory.MemoryMember) {
			defer wg.Done()
			result, err := member.RunEnrollment(ctx, params[idx])
			if err != nil {
				errChan <- fmt.Errorf("member %d: %w", idx, err)
				return
			}
			resultsMu.Lock()
			results[idx] = result
			resultsMu.Unlock()
		}(idx, member)
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		return fmt.Errorf("enrollment failed: %w", err)
	}

	joinerResult := results[newIndex]
	output := &KeyShareOutput{
		ParticipantIndex: joinerResult.Index,
		Threshold:        threshold,
		NumParticipants:  joinerResult.NumParticipants,
		Ciphersuite:      suiteName,
		SecretShare:      hex.EncodeToString(joinerResult.Share),
		GroupPubkey:      hex.EncodeToString(joinerResult.GroupKey),
		SessionID:        joinerResult.SessionID,
		Timestamp:        time.Now().Unix(),
	}
	if err := writeKeyShare(enrollOutput, output); err != nil {
		return err
	}

	fmt.Printf("Enrolled participant %d (group is now %d-of-%d)\n", newIndex, threshold, joinerResult.NumParticipants)
	fmt.Printf("New key share written to %s\n", enrollOutput)
	fmt.Printf("Group public key (unchanged): %s\n", output.GroupPubkey)
	return nil
}

// loadHelperShares reads the helper key share files and checks they
// describe one consistent group.
func loadHelperShares(paths []string) ([]*KeyShareOutput, int, int, string, error) {
	if len(paths) == 0 {
		return nil, 0, 0, "", fmt.Errorf("at least one --share is required")
	}

	helpers := make([]*KeyShareOutput, 0, len(paths))
	seen := make(map[int]bool, len(paths))

	for _, path := range paths {
		keyShare, err := loadKeyShare(path)
		if err != nil {
			return nil, 0, 0, "", err
		}
		if keyShare.ParticipantIndex < 1 {
			return nil, 0, 0, "", fmt.Errorf("%s: participant_index must be >= 1", path)
		}
		if seen[keyShare.ParticipantIndex] {
			return nil, 0, 0, "", fmt.Errorf("%s: duplicate participant index %d", path, keyShare.ParticipantIndex)
		}
		seen[keyShare.ParticipantIndex] = true
		helpers = append(helpers, keyShare)
	}

	first := helpers[0]
	threshold := first.Threshold
	numParticipants := first.NumParticipants
	suiteName := first.Ciphersuite
	if suiteName == "" {
		suiteName = ciphersuite
	}

	for _, h := range helpers[1:] {
		if h.Threshold != threshold || h.NumParticipants != numParticipants {
			return nil, 0, 0, "", fmt.Errorf("share files describe different groups (%d-of-%d vs %d-of-%d)",
				threshold, numParticipants, h.Threshold, h.NumParticipants)
		}
		if h.Ciphersuite != first.Ciphersuite {
			return nil, 0, 0, "", fmt.Errorf("share files use different ciphersuites (%s vs %s)", first.Ciphersuite, h.Ciphersuite)
		}
		if h.GroupPubkey != first.GroupPubkey {
			return nil, 0, 0, "", fmt.Errorf("share files carry different group public keys")
		}
	}

	if len(helpers) != threshold {
		return nil, 0, 0, "", fmt.Errorf("exactly %d share files are required, got %d", threshold, len(helpers))
	}

	return helpers, threshold, numParticipants, suiteName, nil
}
