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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	// DefaultThreshold is the default signing threshold t.
	DefaultThreshold = 2

	// DefaultParticipants is the default participant count n.
	DefaultParticipants = 3

	// DefaultSecurityLevel is the default security level in bits.
	DefaultSecurityLevel = 256
)

// Config holds enrollment scheme parameters.
//
// Config is an explicit value constructed by the caller and threaded
// through function calls; there is no process-wide shared default.
// Fields are fixed and strongly typed; updates go through named setters
// that re-validate invariants rather than accepting arbitrary keys.
type Config struct {
	// Threshold is the signing threshold t.
	Threshold int `yaml:"threshold" json:"threshold"`

	// Participants is the current total participant count n.
	Participants int `yaml:"participants" json:"participants"`

	// SecurityLevel is the target security level in bits.
	SecurityLevel int `yaml:"security_level" json:"security_level"`

	// EnableShareBackup allows exporting non-secret participant
	// metadata for backup.
	EnableShareBackup bool `yaml:"enable_share_backup" json:"enable_share_backup"`

	// EnableVerification enables the group key consistency check across
	// the helper set before a session runs its rounds.
	EnableVerification bool `yaml:"enable_verification" json:"enable_verification"`
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Threshold:          DefaultThreshold,
		Participants:       DefaultParticipants,
		SecurityLevel:      DefaultSecurityLevel,
		EnableShareBackup:  true,
		EnableVerification: true,
	}
}

// Validate checks all configuration invariants.
//
// Errors:
//   - ErrInvalidThreshold: t < MinThreshold or t > n
//   - ErrInvalidParticipantCount: n < MinParticipants or n > MaxParticipants
//   - ErrInvalidSecurityLevel: fewer than MinSecurityLevel bits
func (c *Config) Validate() error {
	if c.Participants < MinParticipants || c.Participants > MaxParticipants {
		return ErrInvalidParticipantCount
	}
	if c.Threshold < MinThreshold || c.Threshold > c.Participants {
		return ErrInvalidThreshold
	}
	if c.SecurityLevel < MinSecurityLevel {
		return ErrInvalidSecurityLevel
	}
	return nil
}

// SetThreshold updates the threshold and re-validates.
func (c *Config) SetThreshold(t int) error {
	old := c.Threshold
	c.Threshold = t
	if err := c.Validate(); err != nil {
		c.Threshold = old
		return err
	}
	return nil
}

// SetParticipants updates the participant count and re-validates.
func (c *Config) SetParticipants(n int) error {
	old := c.Participants
	c.Participants = n
	if err := c.Validate(); err != nil {
		c.Participants = old
		return err
	}
	return nil
}

// SetSecurityLevel updates the security level and re-validates.
func (c *Config) SetSecurityLevel(bits int) error {
	old := c.SecurityLevel
	c.SecurityLevel = bits
	if err := c.Validate(); err != nil {
		c.SecurityLevel = old
		return err
	}
	return nil
}

// RecommendedThreshold returns the advisory threshold for a scheme of n
// participants: a strict majority, n/2 + 1. A threshold at or below
// n/2 lets two disjoint subsets sign independently, so the majority
// bound is the floor for robustness.
func RecommendedThreshold(n int) int {
	t := n/2 + 1
	if t < MinThreshold {
		t = MinThreshold
	}
	return t
}

// EnrollmentAllowed reports whether a scheme of n participants with
// threshold t can admit one more member: at least t existing members
// must be available to run the protocol, and the grown scheme must not
// exceed MaxParticipants.
func EnrollmentAllowed(n, t int) bool {
	if t < MinThreshold || n < t {
		return false
	}
	return n+1 <= MaxParticipants
}

// LoadConfig reads a Config from a YAML file and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("enrollment: failed to read config %s: %w", path, err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("enrollment: failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the Config to a YAML file with restricted
// permissions.
func (c *Config) SaveConfig(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("enrollment: failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("enrollment: failed to write config %s: %w", path, err)
	}
	return nil
}
