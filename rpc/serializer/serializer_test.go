package serializer

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/ValentinKolb/kvsub/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Set request
		{
			MsgType: common.MsgTKVSet,
			Key:     "app/users/1",
			Value:   []byte(`{"uid":1}`),
		},

		// Get response
		{
			MsgType: common.MsgTKVGet,
			Value:   []byte("test-value"),
			Ok:      true,
		},

		// MSet request
		{
			MsgType: common.MsgTKVMSet,
			Keys:    []string{"a", "b", "c"},
			Values:  [][]byte{[]byte("1"), []byte("2"), []byte("3")},
		},

		// MGet response with a miss
		{
			MsgType: common.MsgTKVMGet,
			Values:  [][]byte{[]byte("1"), nil, []byte("3")},
			Oks:     []bool{true, false, true},
		},

		// Scan response
		{
			MsgType: common.MsgTKVScan,
			Keys:    []string{"app/users/1", "app/users/2"},
		},

		// Error response
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
		},

		// DBInfo response
		{
			MsgType: common.MsgTKVDBInfo,
			Meta:    []byte(`{"key_count":3}`),
		},
	}
}

// sameMessage compares two messages, treating nil and empty byte slices as equal
func sameMessage(a, b common.Message) bool {
	if a.MsgType != b.MsgType || a.Key != b.Key || a.Ok != b.Ok || a.Err != b.Err {
		return false
	}
	if !bytes.Equal(a.Value, b.Value) || !bytes.Equal(a.Meta, b.Meta) {
		return false
	}
	if len(a.Keys) != len(b.Keys) || len(a.Values) != len(b.Values) || len(a.Oks) != len(b.Oks) {
		return false
	}
	for i := range a.Keys {
		if a.Keys[i] != b.Keys[i] {
			return false
		}
	}
	for i := range a.Values {
		if !bytes.Equal(a.Values[i], b.Values[i]) {
			return false
		}
	}
	for i := range a.Oks {
		if a.Oks[i] != b.Oks[i] {
			return false
		}
	}
	return true
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				if !sameMessage(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for msgType := common.MsgTSuccess; msgType <= common.MsgTLast; msgType++ {
				msg := common.Message{MsgType: msgType}

				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestBinarySerializerExact tests that the binary serializer keeps nil and empty slices apart
func TestBinarySerializerExact(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name string
		msg  common.Message
	}{
		{
			name: "Empty message",
			msg:  common.Message{},
		},
		{
			name: "Empty value slice but not nil",
			msg:  common.Message{MsgType: common.MsgTKVSet, Key: "test", Value: []byte{}},
		},
		{
			name: "Nil and empty entries in values",
			msg:  common.Message{MsgType: common.MsgTKVMGet, Values: [][]byte{nil, {}, []byte("x")}, Oks: []bool{false, true, true}},
		},
		{
			name: "Empty lists",
			msg:  common.Message{MsgType: common.MsgTKVMSet, Keys: []string{}, Values: [][]byte{}},
		},
		{
			name: "Empty key in list",
			msg:  common.Message{MsgType: common.MsgTKVScan, Keys: []string{""}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := serializer.Serialize(tc.msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			// the preallocated size must be exact
			if want := (binarySerializerImpl{}).sizeBytes(tc.msg); len(data) != want {
				t.Errorf("Size mismatch: expected %d, got %d", want, len(data))
			}

			var result common.Message
			if err := serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if !reflect.DeepEqual(tc.msg, result) {
				t.Errorf("Message doesn't match after round trip:\nOriginal: %#v\nResult: %#v", tc.msg, result)
			}
		})
	}
}

// TestBinaryDeserializeResets tests that stale fields of a reused message are cleared
func TestBinaryDeserializeResets(t *testing.T) {
	serializer := NewBinarySerializer()

	data, err := serializer.Serialize(common.Message{MsgType: common.MsgTSuccess})
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	msg := common.Message{Key: "stale", Keys: []string{"stale"}, Ok: true}
	if err := serializer.Deserialize(data, &msg); err != nil {
		t.Fatalf("Failed to deserialize: %v", err)
	}
	if msg.Key != "" || msg.Keys != nil || msg.Ok {
		t.Errorf("Stale fields survived: %+v", msg)
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1}, // Only message type, no flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for key",
			data:        []byte{1, hasKey, 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims key length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Invalid length for value",
			data:        []byte{1, hasValue, 0, 0, 0, 10}, // Claims value length 10 but no bytes provided
			expectError: true,
		},
		{
			name:        "Too many keys",
			data:        []byte{1, hasKeys, 0xff, 0xff, 0xff, 0x00}, // Claims millions of keys
			expectError: true,
		},
		{
			name:        "Too many oks",
			data:        []byte{1, hasOks, 0, 0, 0, 2, 1}, // Claims 2 oks but only 1 provided
			expectError: true,
		},
		{
			name:        "Trailing bytes",
			data:        []byte{1, 0, 42},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}

// TestNew tests the lookup of serializers by name
func TestNew(t *testing.T) {
	for _, name := range []string{"json", "gob", "binary"} {
		if _, err := New(name); err != nil {
			t.Errorf("Unexpected error for %s: %v", name, err)
		}
	}
	if _, err := New("xml"); err == nil {
		t.Errorf("Expected error for unknown serializer")
	}
}
