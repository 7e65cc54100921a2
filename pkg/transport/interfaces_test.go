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

package transport

import (
	"testing"
)

func TestNopLogger(t *testing.T) {
	var logger Logger = NopLogger{}

	// Must not panic on any level.
	logger.Info("info %d", 1)
	logger.Debug("debug %s", "msg")
	logger.Error("error %v", nil)
}

func TestStdoutLogger(t *testing.T) {
	var logger Logger = &StdoutLogger{Prefix: "test", Verbose: true}

	logger.Info("info %d", 1)
	logger.Debug("debug %s", "msg")
	logger.Error("error %v", "boom")

	quiet := &StdoutLogger{Prefix: "quiet"}
	quiet.Debug("suppressed when not verbose")
}

func TestProtocolConstants(t *testing.T) {
	if ProtocolMemory != "memory" {
		t.Errorf("expected protocol memory, got %s", ProtocolMemory)
	}
}

func TestEnrollmentParams_Fields(t *testing.T) {
	params := &EnrollmentParams{
		SelfIndex:       2,
		Threshold:       2,
		NumParticipants: 3,
		Involved:        []int{1, 2},
		NewIndex:        4,
		Share:           []byte{0x01},
		GroupKey:        []byte{0x02},
	}

	if params.SelfIndex != 2 || params.NewIndex != 4 {
		t.Error("expected params to retain indices")
	}
	if len(params.Involved) != params.Threshold {
		t.Errorf("expected involved set of size %d, got %d", params.Threshold, len(params.Involved))
	}
}
