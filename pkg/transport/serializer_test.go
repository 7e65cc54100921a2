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
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestNewSerializer_ValidCodecs(t *testing.T) {
	for _, codec := range SupportedCodecs {
		t.Run(codec, func(t *testing.T) {
			s, err := NewSerializer(codec)
			if err != nil {
				t.Fatalf("expected no error for codec %s, got: %v", codec, err)
			}
			if s == nil {
				t.Fatalf("expected serializer, got nil")
			}
			if s.CodecType() != codec {
				t.Errorf("expected codecType %s, got %s", codec, s.CodecType())
			}
		})
	}
}

func TestNewSerializer_InvalidCodec(t *testing.T) {
	s, err := NewSerializer("invalid")
	if err == nil {
		t.Fatal("expected error for invalid codec, got nil")
	}
	if s != nil {
		t.Errorf("expected nil serializer, got %v", s)
	}

	var serErr *SerializerError
	if !errors.As(err, &serErr) {
		t.Errorf("expected SerializerError, got %T", err)
	}
	if serErr.Operation != "create" {
		t.Errorf("expected operation 'create', got %s", serErr.Operation)
	}
	if serErr.CodecType != "invalid" {
		t.Errorf("expected codecType 'invalid', got %s", serErr.CodecType)
	}
	if !errors.Is(err, ErrCodecNotSupported) {
		t.Errorf("expected ErrCodecNotSupported in chain, got %v", err)
	}
}

func TestSerializer_MarshalUnmarshal_Round11Message(t *testing.T) {
	codecs := []string{"json", "msgpack", "cbor", "yaml", "bson"}

	original := &Round11Message{
		Shares: []AddressedShare{
			{Recipient: 2, Share: []byte{0x01, 0x02, 0x03}},
			{Recipient: 5, Share: []byte{0xff, 0xfe}},
		},
	}

	for _, codec := range codecs {
		t.Run(codec, func(t *testing.T) {
			s, err := NewSerializer(codec)
			if err != nil {
				t.Fatalf("failed to create serializer: %v", err)
			}

			data, err := s.Marshal(original)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if len(data) == 0 {
				t.Fatal("expected non-empty marshaled data")
			}

			var decoded Round11Message
			if err := s.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if len(decoded.Shares) != len(original.Shares) {
				t.Fatalf("expected %d shares, got %d", len(original.Shares), len(decoded.Shares))
			}
			for i, share := range decoded.Shares {
				if share.Recipient != original.Shares[i].Recipient {
					t.Errorf("share %d: expected recipient %d, got %d", i, original.Shares[i].Recipient, share.Recipient)
				}
				if !bytes.Equal(share.Share, original.Shares[i].Share) {
					t.Errorf("share %d: expected bytes %x, got %x", i, original.Shares[i].Share, share.Share)
				}
			}
		})
	}
}

func TestSerializer_MarshalUnmarshal_SessionInfo(t *testing.T) {
	// TOML has no binary type, so exercise it with the scalar-only
	// session info message.
	original := &SessionInfoMessage{
		SessionID:       "session-abc",
		Threshold:       2,
		NumParticipants: 3,
		Involved:        []int{1, 3},
		NewIndex:        4,
		Ciphersuite:     "FROST-ED25519-SHA512-v1",
	}

	for _, codec := range SupportedCodecs {
		t.Run(codec, func(t *testing.T) {
			s, err := NewSerializer(codec)
			if err != nil {
				t.Fatalf("failed to create serializer: %v", err)
			}

			data, err := s.Marshal(original)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}

			var decoded SessionInfoMessage
			if err := s.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if decoded.SessionID != original.SessionID {
				t.Errorf("expected session ID %s, got %s", original.SessionID, decoded.SessionID)
			}
			if decoded.Threshold != original.Threshold {
				t.Errorf("expected threshold %d, got %d", original.Threshold, decoded.Threshold)
			}
			if decoded.NewIndex != original.NewIndex {
				t.Errorf("expected new index %d, got %d", original.NewIndex, decoded.NewIndex)
			}
			if len(decoded.Involved) != 2 || decoded.Involved[0] != 1 || decoded.Involved[1] != 3 {
				t.Errorf("expected involved [1 3], got %v", decoded.Involved)
			}
			if decoded.Ciphersuite != original.Ciphersuite {
				t.Errorf("expected ciphersuite %s, got %s", original.Ciphersuite, decoded.Ciphersuite)
			}
		})
	}
}

func TestSerializer_EnvelopeRoundTrip(t *testing.T) {
	codecs := []string{"json", "msgpack", "cbor", "bson"}

	msg := &Round12Message{Sigma: []byte{0xaa, 0xbb, 0xcc}}

	for _, codec := range codecs {
		t.Run(codec, func(t *testing.T) {
			s, err := NewSerializer(codec)
			if err != nil {
				t.Fatalf("failed to create serializer: %v", err)
			}

			data, err := s.MarshalEnvelope("session-1", MsgTypeRound12, 3, msg)
			if err != nil {
				t.Fatalf("marshal envelope failed: %v", err)
			}

			var envelope Envelope
			if err := s.UnmarshalEnvelope(data, &envelope); err != nil {
				t.Fatalf("unmarshal envelope failed: %v", err)
			}
			if envelope.SessionID != "session-1" {
				t.Errorf("expected session ID session-1, got %s", envelope.SessionID)
			}
			if envelope.Type != MsgTypeRound12 {
				t.Errorf("expected type %d, got %d", MsgTypeRound12, envelope.Type)
			}
			if envelope.SenderIdx != 3 {
				t.Errorf("expected sender 3, got %d", envelope.SenderIdx)
			}

			var decoded Round12Message
			if err := s.UnmarshalPayload(&envelope, &decoded); err != nil {
				t.Fatalf("unmarshal payload failed: %v", err)
			}
			if !bytes.Equal(decoded.Sigma, msg.Sigma) {
				t.Errorf("expected sigma %x, got %x", msg.Sigma, decoded.Sigma)
			}
		})
	}
}

func TestSerializer_NewEnvelopeTimestamp(t *testing.T) {
	s, err := NewSerializer("json")
	if err != nil {
		t.Fatalf("failed to create serializer: %v", err)
	}

	before := time.Now().Unix()
	envelope, err := s.NewEnvelope("ts", MsgTypeJoin, 1, &JoinMessage{Index: 1, Role: RoleHelper})
	if err != nil {
		t.Fatalf("new envelope failed: %v", err)
	}
	after := time.Now().Unix()

	if envelope.Timestamp < before || envelope.Timestamp > after {
		t.Errorf("expected timestamp in [%d, %d], got %d", before, after, envelope.Timestamp)
	}
	if len(envelope.Payload) == 0 {
		t.Error("expected non-empty payload")
	}
}

func TestSerializer_UnmarshalMalformed(t *testing.T) {
	s, err := NewSerializer("json")
	if err != nil {
		t.Fatalf("failed to create serializer: %v", err)
	}

	var msg JoinMessage
	err = s.Unmarshal([]byte("{not json"), &msg)
	if err == nil {
		t.Fatal("expected error for malformed input, got nil")
	}

	var serErr *SerializerError
	if !errors.As(err, &serErr) {
		t.Errorf("expected SerializerError, got %T", err)
	}
	if serErr.Operation != "unmarshal" {
		t.Errorf("expected operation 'unmarshal', got %s", serErr.Operation)
	}
}
