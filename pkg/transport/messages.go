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

// MessageType identifies enrollment protocol messages
type MessageType uint8

const (
	MsgTypeJoin           MessageType = 1 // Member joining session
	MsgTypeSessionInfo    MessageType = 2 // Session info from relay
	MsgTypeRound11        MessageType = 3 // Addressed enrollment shares from a helper
	MsgTypeRound11Deliver MessageType = 4 // Shares routed to a helper by the relay
	MsgTypeRound12        MessageType = 5 // Aggregate enrollment share from a helper
	MsgTypeRound2Deliver  MessageType = 6 // Aggregate shares delivered to the joiner
	MsgTypeError          MessageType = 7 // Error message
	MsgTypeComplete       MessageType = 8 // Enrollment complete
)

// Member roles within a session.
const (
	RoleHelper = "helper"
	RoleJoiner = "joiner"
)

// Envelope wraps all messages for transport
type Envelope struct {
	SessionID string      `json:"session_id" msgpack:"session_id" cbor:"1,keyasint" yaml:"session_id" bson:"session_id"`
	Type      MessageType `json:"type" msgpack:"type" cbor:"2,keyasint" yaml:"type" bson:"type"`
	SenderIdx int         `json:"sender_idx" msgpack:"sender_idx" cbor:"3,keyasint" yaml:"sender_idx" bson:"sender_idx"`
	Payload   []byte      `json:"payload" msgpack:"payload" cbor:"4,keyasint" yaml:"payload" bson:"payload"`
	Timestamp int64       `json:"timestamp" msgpack:"timestamp" cbor:"5,keyasint" yaml:"timestamp" bson:"timestamp"`
}

// JoinMessage - member requests to join a session
type JoinMessage struct {
	Index    int    `json:"index" msgpack:"index" cbor:"1,keyasint" yaml:"index" bson:"index"`
	Role     string `json:"role" msgpack:"role" cbor:"2,keyasint" yaml:"role" bson:"role"`
	GroupKey []byte `json:"group_key" msgpack:"group_key" cbor:"3,keyasint" yaml:"group_key" bson:"group_key"`
}

// SessionInfoMessage - relay sends session details
type SessionInfoMessage struct {
	SessionID       string `json:"session_id" msgpack:"session_id" cbor:"1,keyasint" yaml:"session_id" bson:"session_id"`
	Threshold       int    `json:"threshold" msgpack:"threshold" cbor:"2,keyasint" yaml:"threshold" bson:"threshold"`
	NumParticipants int    `json:"num_participants" msgpack:"num_participants" cbor:"3,keyasint" yaml:"num_participants" bson:"num_participants"`
	Involved        []int  `json:"involved" msgpack:"involved" cbor:"4,keyasint" yaml:"involved" bson:"involved"`
	NewIndex        int    `json:"new_index" msgpack:"new_index" cbor:"5,keyasint" yaml:"new_index" bson:"new_index"`
	Ciphersuite     string `json:"ciphersuite" msgpack:"ciphersuite" cbor:"6,keyasint" yaml:"ciphersuite" bson:"ciphersuite"`
}

// AddressedShare carries one additive enrollment share addressed to a
// specific recipient index.
type AddressedShare struct {
	Recipient int    `json:"recipient" msgpack:"recipient" cbor:"1,keyasint" yaml:"recipient" bson:"recipient"`
	Share     []byte `json:"share" msgpack:"share" cbor:"2,keyasint" yaml:"share" bson:"share"`
}

// Round11Message - a helper's addressed enrollment shares for the
// other involved-set members. The helper keeps its own slot local.
type Round11Message struct {
	Shares []AddressedShare `json:"shares" msgpack:"shares" cbor:"1,keyasint" yaml:"shares" bson:"shares"`
}

// Round11DeliverMessage - the shares other helpers addressed to the
// receiving helper, routed by the relay.
type Round11DeliverMessage struct {
	Shares [][]byte `json:"shares" msgpack:"shares" cbor:"1,keyasint" yaml:"shares" bson:"shares"`
}

// Round12Message - a helper's aggregate enrollment share (sigma)
type Round12Message struct {
	Sigma []byte `json:"sigma" msgpack:"sigma" cbor:"1,keyasint" yaml:"sigma" bson:"sigma"`
}

// Round2DeliverMessage - aggregate shares of all t helpers, delivered
// to the joiner together with the group public key
type Round2DeliverMessage struct {
	Sigmas   [][]byte `json:"sigmas" msgpack:"sigmas" cbor:"1,keyasint" yaml:"sigmas" bson:"sigmas"`
	GroupKey []byte   `json:"group_key" msgpack:"group_key" cbor:"2,keyasint" yaml:"group_key" bson:"group_key"`
}

// ErrorMessage - error details
type ErrorMessage struct {
	Code    int    `json:"code" msgpack:"code" cbor:"1,keyasint" yaml:"code" bson:"code"`
	Message string `json:"message" msgpack:"message" cbor:"2,keyasint" yaml:"message" bson:"message"`
}

// CompleteMessage - enrollment completion acknowledgment
type CompleteMessage struct {
	NewIndex int    `json:"new_index" msgpack:"new_index" cbor:"1,keyasint" yaml:"new_index" bson:"new_index"`
	GroupKey []byte `json:"group_key" msgpack:"group_key" cbor:"2,keyasint" yaml:"group_key" bson:"group_key"`
}
