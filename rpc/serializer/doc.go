// Package serializer converts RPC messages to and from bytes.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Custom binary format. A flag byte records which fields are
//     present, only those are written. Byte slices and strings are length prefixed,
//     lists carry a count, nil entries of a value list (MGet misses) are kept apart
//     from empty values.
//
//   - jsonSerializerImpl: JSON encoding, useful for debugging or interoperability
//     with other systems.
//
//   - gobSerializerImpl: Go's gob encoding.
//
// Binary is the fastest and most compact format, in particular for bulk messages
// carrying many keys. JSON is human readable. GOB has no advantage over the other two
// and is kept for compatibility.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use.
//
// Usage:
//
//	s := serializer.NewBinarySerializer()
//	data, err := s.Serialize(*common.NewMGetRequest([]string{"a", "b"}))
//	// ... send data ...
//	var resp common.Message
//	err = s.Deserialize(received, &resp)
package serializer
