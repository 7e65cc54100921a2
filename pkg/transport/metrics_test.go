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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewMetricsCollector_DefaultConfig verifies that a metrics collector
// can be created with default configuration.
func TestNewMetricsCollector_DefaultConfig(t *testing.T) {
	mc, err := NewMetricsCollector(nil)
	require.NoError(t, err)
	require.NotNil(t, mc)
	assert.True(t, mc.Enabled())
	assert.NotNil(t, mc.Registry())
}

// TestNewMetricsCollector_Disabled verifies that a disabled collector
// does not panic on any operation.
func TestNewMetricsCollector_Disabled(t *testing.T) {
	mc, err := NewMetricsCollector(&MetricsConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, mc)
	assert.False(t, mc.Enabled())

	mc.SessionStarted()
	mc.SessionCompleted()
	mc.SessionAborted()
	mc.MessageRelayed(MsgTypeRound11)
	mc.JoinRejected()
	mc.ObserveRoundDuration("round1.1", 0.1)
}

// TestMetricsCollector_SessionLifecycle verifies the session counters
// and the active-session gauge.
func TestMetricsCollector_SessionLifecycle(t *testing.T) {
	mc, err := NewMetricsCollector(DefaultMetricsConfig())
	require.NoError(t, err)

	mc.SessionStarted()
	mc.SessionStarted()
	mc.SessionCompleted()
	mc.SessionAborted()

	families, err := mc.Registry().Gather()
	require.NoError(t, err)

	found := make(map[string]bool)
	for _, family := range families {
		found[family.GetName()] = true
		if family.GetName() == "frost_enrollment_transport_active_sessions" {
			require.Len(t, family.GetMetric(), 1)
			assert.Equal(t, 0.0, family.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found["frost_enrollment_transport_sessions_total"])
	assert.True(t, found["frost_enrollment_transport_active_sessions"])
}

// TestMetricsCollector_MessagesAndRounds verifies the message counter
// and the round duration histogram appear after observations.
func TestMetricsCollector_MessagesAndRounds(t *testing.T) {
	mc, err := NewMetricsCollector(DefaultMetricsConfig())
	require.NoError(t, err)

	mc.MessageRelayed(MsgTypeRound11)
	mc.MessageRelayed(MsgTypeRound12)
	mc.JoinRejected()
	mc.ObserveRoundDuration("round1.1", 0.02)

	families, err := mc.Registry().Gather()
	require.NoError(t, err)

	found := make(map[string]bool)
	for _, family := range families {
		found[family.GetName()] = true
	}
	assert.True(t, found["frost_enrollment_transport_messages_total"])
	assert.True(t, found["frost_enrollment_transport_joins_rejected_total"])
	assert.True(t, found["frost_enrollment_transport_round_duration_seconds"])
}

// TestMsgTypeLabel verifies the label mapping covers all message types.
func TestMsgTypeLabel(t *testing.T) {
	types := []MessageType{
		MsgTypeJoin,
		MsgTypeSessionInfo,
		MsgTypeRound11,
		MsgTypeRound11Deliver,
		MsgTypeRound12,
		MsgTypeRound2Deliver,
		MsgTypeError,
		MsgTypeComplete,
	}

	seen := make(map[string]bool)
	for _, mt := range types {
		label := msgTypeLabel(mt)
		assert.NotEmpty(t, label)
		assert.False(t, seen[label], "duplicate label %s", label)
		seen[label] = true
	}
	assert.Equal(t, "unknown", msgTypeLabel(MessageType(99)))
}
