package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Single key fields
	Key   string `json:"key,omitempty"`   // Used for: Set, Delete, Get, Has (request), Scan (prefix)
	Value []byte `json:"value,omitempty"` // Used for: Set (request), Get (response)

	// Bulk fields
	Keys   []string `json:"keys,omitempty"`   // Used for: MSet, MGet (request), Scan (response)
	Values [][]byte `json:"values,omitempty"` // Used for: MSet (request), MGet (response)

	// Response only fields
	Ok  bool   `json:"ok,omitempty"`  // Used for: Delete, Get, Has responses
	Oks []bool `json:"oks,omitempty"` // Used for: MGet responses
	Err string `json:"err,omitempty"` // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Used for: DBInfo responses (json encoded db.DatabaseInfo)
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// withErr sets the error message of msg if err is not nil
func withErr(msg *Message, err error) *Message {
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewSetRequest creates a new Set request
func NewSetRequest(key string, value []byte) *Message {
	return &Message{
		MsgType: MsgTKVSet,
		Key:     key,
		Value:   value,
	}
}

// NewSetResponse creates a new Set response
func NewSetResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTKVSet}, err)
}

// NewMSetRequest creates a new MSet request
func NewMSetRequest(keys []string, values [][]byte) *Message {
	return &Message{
		MsgType: MsgTKVMSet,
		Keys:    keys,
		Values:  values,
	}
}

// NewMSetResponse creates a new MSet response
func NewMSetResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTKVMSet}, err)
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVDelete,
		Key:     key,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(deleted bool, err error) *Message {
	return withErr(&Message{MsgType: MsgTKVDelete, Ok: deleted}, err)
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVGet,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value []byte, ok bool, err error) *Message {
	return withErr(&Message{MsgType: MsgTKVGet, Ok: ok, Value: value}, err)
}

// NewMGetRequest creates a new MGet request
func NewMGetRequest(keys []string) *Message {
	return &Message{
		MsgType: MsgTKVMGet,
		Keys:    keys,
	}
}

// NewMGetResponse creates a new MGet response
func NewMGetResponse(values [][]byte, oks []bool, err error) *Message {
	return withErr(&Message{MsgType: MsgTKVMGet, Values: values, Oks: oks}, err)
}

// NewHasRequest creates a new Has request
func NewHasRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVHas,
		Key:     key,
	}
}

// NewHasResponse creates a new Has response
func NewHasResponse(ok bool, err error) *Message {
	return withErr(&Message{MsgType: MsgTKVHas, Ok: ok}, err)
}

// NewScanRequest creates a new Scan request, the prefix is sent as key
func NewScanRequest(prefix string) *Message {
	return &Message{
		MsgType: MsgTKVScan,
		Key:     prefix,
	}
}

// NewScanResponse creates a new Scan response
func NewScanResponse(keys []string, err error) *Message {
	return withErr(&Message{MsgType: MsgTKVScan, Keys: keys}, err)
}

// NewDBInfoRequest creates a new DBInfo request
func NewDBInfoRequest() *Message {
	return &Message{MsgType: MsgTKVDBInfo}
}

// NewDBInfoResponse creates a new DBInfo response carrying the encoded info
func NewDBInfoResponse(info []byte, err error) *Message {
	return withErr(&Message{MsgType: MsgTKVDBInfo, Meta: info}, err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

var messageTypeNames = map[MessageType]string{
	MsgTSuccess:  "success",
	MsgTError:    "error",
	MsgTKVSet:    "set",
	MsgTKVMSet:   "mset",
	MsgTKVDelete: "delete",
	MsgTKVGet:    "get",
	MsgTKVMGet:   "mget",
	MsgTKVHas:    "has",
	MsgTKVScan:   "scan",
	MsgTKVDBInfo: "dbinfo",
}

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	for msgType, name := range messageTypeNames {
		if name == s {
			*t = msgType
			return nil
		}
	}
	return fmt.Errorf("unknown message type: %s", s)
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IStore operations

	MsgTKVSet    // Set a key-value pair
	MsgTKVMSet   // Set many key-value pairs at once
	MsgTKVDelete // Delete a key-value pair
	MsgTKVGet    // Get a value by key
	MsgTKVMGet   // Get many values at once
	MsgTKVHas    // Check if a key exists
	MsgTKVScan   // List keys by prefix
	MsgTKVDBInfo // Get database information

	// MsgTLast marks the end of the valid message types
	MsgTLast = MsgTKVDBInfo
)
