package serializer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ValentinKolb/kvsub/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey    byte = 1 << 0
	hasValue  byte = 1 << 1
	hasKeys   byte = 1 << 2
	hasValues byte = 1 << 3
	hasOk     byte = 1 << 4
	hasOks    byte = 1 << 5
	hasErr    byte = 1 << 6
	hasMeta   byte = 1 << 7
)

// nilLen marks a nil entry in a list of byte slices
const nilLen = math.MaxUint32

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

// Serialize writes: type(1) | flags(1) | present fields in flag order.
// Strings and byte slices are length prefixed (u32, big endian), lists carry a u32 count.
func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	w := binaryWriter{buf: make([]byte, 2, b.sizeBytes(msg))}
	w.buf[0] = byte(msg.MsgType)

	var flags byte
	if msg.Key != "" {
		flags |= hasKey
		w.bytes([]byte(msg.Key))
	}
	if msg.Value != nil {
		flags |= hasValue
		w.bytes(msg.Value)
	}
	if msg.Keys != nil {
		flags |= hasKeys
		w.uint32(uint32(len(msg.Keys)))
		for _, k := range msg.Keys {
			w.bytes([]byte(k))
		}
	}
	if msg.Values != nil {
		flags |= hasValues
		w.uint32(uint32(len(msg.Values)))
		for _, v := range msg.Values {
			if v == nil {
				w.uint32(nilLen)
				continue
			}
			w.bytes(v)
		}
	}
	if msg.Ok {
		flags |= hasOk
	}
	if msg.Oks != nil {
		flags |= hasOks
		w.uint32(uint32(len(msg.Oks)))
		for _, ok := range msg.Oks {
			if ok {
				w.buf = append(w.buf, 1)
			} else {
				w.buf = append(w.buf, 0)
			}
		}
	}
	if msg.Err != "" {
		flags |= hasErr
		w.bytes([]byte(msg.Err))
	}
	if msg.Meta != nil {
		flags |= hasMeta
		w.bytes(msg.Meta)
	}

	// Set flags byte after knowing which fields are present
	w.buf[1] = flags
	return w.buf, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	*msg = common.Message{MsgType: common.MessageType(data[0])}
	flags := data[1]
	r := binaryReader{data: data, pos: 2}

	if flags&hasKey != 0 {
		key, err := r.bytes("key")
		if err != nil {
			return err
		}
		msg.Key = string(key)
	}

	if flags&hasValue != 0 {
		value, err := r.bytes("value")
		if err != nil {
			return err
		}
		msg.Value = value
	}

	if flags&hasKeys != 0 {
		n, err := r.count("keys", 4)
		if err != nil {
			return err
		}
		msg.Keys = make([]string, n)
		for i := range msg.Keys {
			key, err := r.bytes("keys")
			if err != nil {
				return err
			}
			msg.Keys[i] = string(key)
		}
	}

	if flags&hasValues != 0 {
		n, err := r.count("values", 4)
		if err != nil {
			return err
		}
		msg.Values = make([][]byte, n)
		for i := range msg.Values {
			if msg.Values[i], err = r.bytes("values"); err != nil {
				return err
			}
		}
	}

	msg.Ok = flags&hasOk != 0

	if flags&hasOks != 0 {
		n, err := r.count("oks", 1)
		if err != nil {
			return err
		}
		msg.Oks = make([]bool, n)
		for i := range msg.Oks {
			msg.Oks[i] = r.data[r.pos] != 0
			r.pos++
		}
	}

	if flags&hasErr != 0 {
		errBytes, err := r.bytes("error")
		if err != nil {
			return err
		}
		msg.Err = string(errBytes)
	}

	if flags&hasMeta != 0 {
		meta, err := r.bytes("meta")
		if err != nil {
			return err
		}
		msg.Meta = meta
	}

	if r.pos != len(data) {
		return fmt.Errorf("%d trailing bytes after message", len(data)-r.pos)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Keys != nil {
		size += 4
		for _, k := range msg.Keys {
			size += 4 + len(k)
		}
	}
	if msg.Values != nil {
		size += 4
		for _, v := range msg.Values {
			size += 4 + len(v)
		}
	}
	if msg.Oks != nil {
		size += 4 + len(msg.Oks)
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}

type binaryWriter struct {
	buf []byte
}

func (w *binaryWriter) uint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *binaryWriter) bytes(p []byte) {
	w.uint32(uint32(len(p)))
	w.buf = append(w.buf, p...)
}

type binaryReader struct {
	data []byte
	pos  int
}

func (r *binaryReader) uint32(field string) (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("data too short for %s length", field)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

// bytes reads a length prefixed byte slice. The result is a copy, nil for a nil marker.
func (r *binaryReader) bytes(field string) ([]byte, error) {
	n, err := r.uint32(field)
	if err != nil {
		return nil, err
	}
	if n == nilLen {
		return nil, nil
	}
	if r.pos+int(n) > len(r.data) {
		return nil, fmt.Errorf("data too short for %s data", field)
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

// count reads a list length and checks that the remaining data can hold it,
// assuming each entry takes at least minEntrySize bytes
func (r *binaryReader) count(field string, minEntrySize int) (int, error) {
	n, err := r.uint32(field)
	if err != nil {
		return 0, err
	}
	if int(n)*minEntrySize > len(r.data)-r.pos {
		return 0, fmt.Errorf("data too short for %d %s", n, field)
	}
	return int(n), nil
}
