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
	"errors"
	"path/filepath"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Threshold != DefaultThreshold {
		t.Errorf("Expected threshold %d, got %d", DefaultThreshold, cfg.Threshold)
	}
	if cfg.Participants != DefaultParticipants {
		t.Errorf("Expected participants %d, got %d", DefaultParticipants, cfg.Participants)
	}
	if cfg.SecurityLevel != DefaultSecurityLevel {
		t.Errorf("Expected security level %d, got %d", DefaultSecurityLevel, cfg.SecurityLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config must validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Config)
		expectedError error
	}{
		{"threshold below minimum", func(c *Config) { c.Threshold = 1 }, ErrInvalidThreshold},
		{"threshold above participants", func(c *Config) { c.Threshold = 4 }, ErrInvalidThreshold},
		{"participants below minimum", func(c *Config) { c.Participants = 1; c.Threshold = 1 }, ErrInvalidParticipantCount},
		{"participants above maximum", func(c *Config) { c.Participants = MaxParticipants + 1 }, ErrInvalidParticipantCount},
		{"security level too low", func(c *Config) { c.SecurityLevel = 64 }, ErrInvalidSecurityLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.expectedError) {
				t.Errorf("Expected %v, got %v", tt.expectedError, err)
			}
		})
	}
}

func TestConfigSettersRollBack(t *testing.T) {
	cfg := NewConfig()

	if err := cfg.SetThreshold(1); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("Expected ErrInvalidThreshold, got %v", err)
	}
	if cfg.Threshold != DefaultThreshold {
		t.Errorf("Failed setter must not change the value, got %d", cfg.Threshold)
	}

	if err := cfg.SetParticipants(5); err != nil {
		t.Fatalf("SetParticipants failed: %v", err)
	}
	if err := cfg.SetThreshold(3); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}

	if err := cfg.SetSecurityLevel(64); !errors.Is(err, ErrInvalidSecurityLevel) {
		t.Errorf("Expected ErrInvalidSecurityLevel, got %v", err)
	}
	if cfg.SecurityLevel != DefaultSecurityLevel {
		t.Errorf("Failed setter must not change the value, got %d", cfg.SecurityLevel)
	}
}

func TestRecommendedThreshold(t *testing.T) {
	tests := []struct {
		participants int
		expected     int
	}{
		{2, 2},
		{3, 2},
		{4, 3},
		{5, 3},
		{10, 6},
	}

	for _, tt := range tests {
		if got := RecommendedThreshold(tt.participants); got != tt.expected {
			t.Errorf("RecommendedThreshold(%d) = %d, want %d", tt.participants, got, tt.expected)
		}
	}
}

func TestEnrollmentAllowed(t *testing.T) {
	if !EnrollmentAllowed(3, 2) {
		t.Error("Expected enrollment allowed for (2, 3)")
	}
	if EnrollmentAllowed(MaxParticipants, 2) {
		t.Error("Expected enrollment rejected at the participant ceiling")
	}
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := NewConfig()
	cfg.Participants = 7
	cfg.Threshold = 4
	cfg.EnableShareBackup = true

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if *loaded != *cfg {
		t.Errorf("Round trip mismatch: saved %+v, loaded %+v", cfg, loaded)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
