package internal

import (
	"bytes"
	"testing"
)

// TestSizeBytes tests the SizeBytes method
func TestSizeBytes(t *testing.T) {
	tests := []struct {
		name     string
		command  Command
		expected int
	}{
		{
			name:     "Set with key and value",
			command:  Command{Type: CommandTSet, Pairs: []Pair{{Key: "testkey", Value: []byte("testvalue")}}},
			expected: 1 + 4 + 4 + 7 + 4 + 9,
		},
		{
			name:     "Delete without value",
			command:  Command{Type: CommandTDelete, Pairs: []Pair{{Key: "testkey"}}},
			expected: 1 + 4 + 4 + 7 + 4,
		},
		{
			name: "MSet with two pairs",
			command: Command{Type: CommandTMSet, Pairs: []Pair{
				{Key: "a", Value: []byte("1")},
				{Key: "bb", Value: []byte("22")},
			}},
			expected: 1 + 4 + (4 + 1 + 4 + 1) + (4 + 2 + 4 + 2),
		},
		{
			name:     "Empty MSet",
			command:  Command{Type: CommandTMSet},
			expected: 1 + 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if size := tt.command.SizeBytes(); size != tt.expected {
				t.Errorf("SizeBytes() = %v, want %v", size, tt.expected)
			}
			if size := len(tt.command.Serialize()); size != tt.expected {
				t.Errorf("len(Serialize()) = %v, want %v", size, tt.expected)
			}
		})
	}
}

// TestSerializeDeserialize tests both Serialize and Deserialize methods
func TestSerializeDeserialize(t *testing.T) {
	tests := []struct {
		name    string
		command Command
	}{
		{
			name:    "Set",
			command: Command{Type: CommandTSet, Pairs: []Pair{{Key: "app/users/1", Value: []byte(`{"id":1}`)}}},
		},
		{
			name:    "Delete",
			command: Command{Type: CommandTDelete, Pairs: []Pair{{Key: "app/users/1"}}},
		},
		{
			name: "MSet",
			command: Command{Type: CommandTMSet, Pairs: []Pair{
				{Key: "app/users/1", Value: []byte(`{"id":1}`)},
				{Key: "", Value: []byte("empty key")},
				{Key: "app/users/3", Value: nil},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decoded Command
			if err := decoded.Deserialize(tt.command.Serialize()); err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}
			if decoded.Type != tt.command.Type {
				t.Errorf("Type = %v, want %v", decoded.Type, tt.command.Type)
			}
			if len(decoded.Pairs) != len(tt.command.Pairs) {
				t.Fatalf("got %d pairs, want %d", len(decoded.Pairs), len(tt.command.Pairs))
			}
			for i, p := range tt.command.Pairs {
				if decoded.Pairs[i].Key != p.Key {
					t.Errorf("pair %d: Key = %q, want %q", i, decoded.Pairs[i].Key, p.Key)
				}
				if !bytes.Equal(decoded.Pairs[i].Value, p.Value) {
					t.Errorf("pair %d: Value = %q, want %q", i, decoded.Pairs[i].Value, p.Value)
				}
			}
		})
	}
}

// TestDeserializeErrors tests error cases for Deserialize
func TestDeserializeErrors(t *testing.T) {
	valid := (&Command{Type: CommandTSet, Pairs: []Pair{{Key: "key", Value: []byte("value")}}}).Serialize()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "Empty", data: []byte{}},
		{name: "Header only with count", data: []byte{0, 0, 0, 0, 1}},
		{name: "Truncated value", data: valid[:len(valid)-2]},
		{name: "Trailing bytes", data: append(append([]byte{}, valid...), 0xFF)},
		{name: "Huge count", data: []byte{1, 0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd Command
			if err := cmd.Deserialize(tt.data); err == nil {
				t.Errorf("Deserialize() expected error for %v", tt.data)
			}
		})
	}
}

func TestCommandTypeFeature(t *testing.T) {
	for _, ct := range []CommandType{CommandTSet, CommandTMSet, CommandTDelete} {
		if _, err := ct.ToDBFeature(); err != nil {
			t.Errorf("ToDBFeature(%s) unexpected error %v", ct, err)
		}
	}
	if _, err := CommandType(42).ToDBFeature(); err == nil {
		t.Errorf("Expected error for unknown command type")
	}
}
