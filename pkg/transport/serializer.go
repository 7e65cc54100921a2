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
	"encoding/json"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

// SupportedCodecs lists the codec types NewSerializer accepts.
var SupportedCodecs = []string{"json", "msgpack", "cbor", "yaml", "bson", "toml"}

// SerializerError represents serialization errors
type SerializerError struct {
	Operation string
	CodecType string
	Err       error
}

func (e *SerializerError) Error() string {
	return fmt.Sprintf("serializer: %s failed for codec %s: %v", e.Operation, e.CodecType, e.Err)
}

func (e *SerializerError) Unwrap() error {
	return e.Err
}

// Serializer provides message serialization using multiple codec types
type Serializer struct {
	codecType string
}

// NewSerializer creates a new serializer with the specified codec type.
// Supported types: json, msgpack, cbor, yaml, bson, toml
func NewSerializer(codecType string) (*Serializer, error) {
	for _, c := range SupportedCodecs {
		if c == codecType {
			return &Serializer{codecType: codecType}, nil
		}
	}
	return nil, &SerializerError{
		Operation: "create",
		CodecType: codecType,
		Err:       fmt.Errorf("%w: %s", ErrCodecNotSupported, codecType),
	}
}

// CodecType returns the codec this serializer encodes with.
func (s *Serializer) CodecType() string {
	return s.codecType
}

// Marshal serializes a message to bytes
func (s *Serializer) Marshal(msg any) ([]byte, error) {
	var data []byte
	var err error

	switch s.codecType {
	case "json":
		data, err = json.Marshal(msg)
	case "msgpack":
		data, err = msgpack.Marshal(msg)
	case "cbor":
		data, err = cbor.Marshal(msg)
	case "yaml":
		data, err = yaml.Marshal(msg)
	case "bson":
		data, err = bson.Marshal(msg)
	case "toml":
		buf := new(bytes.Buffer)
		err = toml.NewEncoder(buf).Encode(msg)
		data = buf.Bytes()
	default:
		err = fmt.Errorf("%w: %s", ErrCodecNotSupported, s.codecType)
	}

	if err != nil {
		return nil, &SerializerError{
			Operation: "marshal",
			CodecType: s.codecType,
			Err:       err,
		}
	}
	return data, nil
}

// Unmarshal deserializes bytes into a message
func (s *Serializer) Unmarshal(data []byte, msg any) error {
	var err error

	switch s.codecType {
	case "json":
		err = json.Unmarshal(data, msg)
	case "msgpack":
		err = msgpack.Unmarshal(data, msg)
	case "cbor":
		err = cbor.Unmarshal(data, msg)
	case "yaml":
		err = yaml.Unmarshal(data, msg)
	case "bson":
		err = bson.Unmarshal(data, msg)
	case "toml":
		err = toml.Unmarshal(data, msg)
	default:
		err = fmt.Errorf("%w: %s", ErrCodecNotSupported, s.codecType)
	}

	if err != nil {
		return &SerializerError{
			Operation: "unmarshal",
			CodecType: s.codecType,
			Err:       err,
		}
	}
	return nil
}

// NewEnvelope wraps a message payload into an Envelope stamped with the
// current time.
func (s *Serializer) NewEnvelope(sessionID string, msgType MessageType, senderIdx int, msg any) (*Envelope, error) {
	payload, err := s.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		SessionID: sessionID,
		Type:      msgType,
		SenderIdx: senderIdx,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	}, nil
}

// MarshalEnvelope serializes a message into an Envelope and encodes the
// envelope itself.
func (s *Serializer) MarshalEnvelope(sessionID string, msgType MessageType, senderIdx int, msg any) ([]byte, error) {
	envelope, err := s.NewEnvelope(sessionID, msgType, senderIdx, msg)
	if err != nil {
		return nil, err
	}
	return s.Marshal(envelope)
}

// UnmarshalEnvelope deserializes an encoded Envelope.
func (s *Serializer) UnmarshalEnvelope(data []byte, envelope *Envelope) error {
	return s.Unmarshal(data, envelope)
}

// UnmarshalPayload deserializes the payload from an envelope into the target message
func (s *Serializer) UnmarshalPayload(envelope *Envelope, msg any) error {
	return s.Unmarshal(envelope.Payload, msg)
}
