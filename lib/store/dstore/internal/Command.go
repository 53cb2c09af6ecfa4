package internal

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/kvsub/lib/db"
)

// CommandType defines the possible operations for the state machine.
type CommandType uint8

const (
	CommandTSet    CommandType = iota // Insert or update one entry.
	CommandTMSet                      // Insert or update many entries atomically.
	CommandTDelete                    // Delete an entry.
)

func (ct CommandType) String() string {
	switch ct {
	case CommandTSet:
		return "Set"
	case CommandTMSet:
		return "MSet"
	case CommandTDelete:
		return "Delete"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// ToDBFeature converts a CommandType to the corresponding db.Feature.
// This can be used for checking if the database supports a certain operation.
func (ct CommandType) ToDBFeature() (db.Feature, error) {
	switch ct {
	case CommandTSet, CommandTMSet:
		return db.FeatureSet, nil
	case CommandTDelete:
		return db.FeatureDelete, nil
	default:
		return 0, fmt.Errorf("unknown command type %d", ct)
	}
}

// Pair is one key and its value inside a Command. Delete commands carry no value.
type Pair struct {
	Key   string
	Value []byte
}

// Command represents a command to be executed by the state machine (a single entry in the raft log)
type Command struct {
	Type  CommandType
	Pairs []Pair
}

const headerSize = 1 + 4 // Type + pair count

// SizeBytes returns the exact number of bytes needed to serialize this command
func (command *Command) SizeBytes() int {
	size := headerSize
	for _, p := range command.Pairs {
		size += 4 + len(p.Key) + 4 + len(p.Value)
	}
	return size
}

// Serialize serializes a command into a byte array with the format:
// 1 byte for operation type,
// 4 bytes for the number of pairs (big endian),
// per pair: 4 bytes key length, key data, 4 bytes value length, value data.
func (command *Command) Serialize() []byte {
	result := make([]byte, command.SizeBytes())

	result[0] = byte(command.Type)
	binary.BigEndian.PutUint32(result[1:5], uint32(len(command.Pairs)))

	pos := headerSize
	for _, p := range command.Pairs {
		binary.BigEndian.PutUint32(result[pos:], uint32(len(p.Key)))
		pos += 4
		pos += copy(result[pos:], p.Key)
		binary.BigEndian.PutUint32(result[pos:], uint32(len(p.Value)))
		pos += 4
		pos += copy(result[pos:], p.Value)
	}

	return result
}

// Deserialize extracts all Command fields from a byte array.
func (command *Command) Deserialize(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("data too short for command")
	}

	command.Type = CommandType(data[0])
	count := binary.BigEndian.Uint32(data[1:5])

	// every pair needs at least its two length fields
	if uint64(count)*8 > uint64(len(data)-headerSize) {
		return fmt.Errorf("data too short for %d pairs", count)
	}

	command.Pairs = make([]Pair, 0, count)
	pos := headerSize

	readChunk := func(what string) ([]byte, error) {
		if len(data) < pos+4 {
			return nil, fmt.Errorf("data too short for %s length", what)
		}
		n := int(binary.BigEndian.Uint32(data[pos:]))
		pos += 4
		if n < 0 || len(data) < pos+n {
			return nil, fmt.Errorf("data too short for %s of length %d", what, n)
		}
		chunk := data[pos : pos+n]
		pos += n
		return chunk, nil
	}

	for i := uint32(0); i < count; i++ {
		key, err := readChunk("key")
		if err != nil {
			return err
		}
		value, err := readChunk("value")
		if err != nil {
			return err
		}
		var valueCopy []byte
		if len(value) > 0 {
			valueCopy = make([]byte, len(value))
			copy(valueCopy, value)
		}
		command.Pairs = append(command.Pairs, Pair{Key: string(key), Value: valueCopy})
	}

	if pos != len(data) {
		return fmt.Errorf("%d trailing bytes after command", len(data)-pos)
	}

	return nil
}
