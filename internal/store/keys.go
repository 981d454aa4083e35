package store

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// KeyCodec converts an entity key of type K to and from its string form.
// Stores use it for document ids and for the string ids an identity
// framework passes around.
type KeyCodec[K comparable] struct {
	Encode func(K) string
	Decode func(string) (K, error)
}

// ToString returns the string form of id. The zero key yields "" rather
// than the zero value's formatting (so never "0" or the nil UUID).
func (c KeyCodec[K]) ToString(id K) string {
	var zero K
	if id == zero {
		return ""
	}
	return c.Encode(id)
}

// FromString parses s into a key. The empty string yields the zero key.
func (c KeyCodec[K]) FromString(s string) (K, error) {
	var zero K
	if s == "" {
		return zero, nil
	}
	id, err := c.Decode(s)
	if err != nil {
		return zero, fmt.Errorf("%w: key %q: %v", ErrInvalidArgument, s, err)
	}
	return id, nil
}

// StringKeys is the codec for string keys.
func StringKeys() KeyCodec[string] {
	return KeyCodec[string]{
		Encode: func(id string) string { return id },
		Decode: func(s string) (string, error) { return s, nil },
	}
}

// UUIDKeys is the codec for uuid.UUID keys.
func UUIDKeys() KeyCodec[uuid.UUID] {
	return KeyCodec[uuid.UUID]{
		Encode: uuid.UUID.String,
		Decode: uuid.Parse,
	}
}

// Int64Keys is the codec for int64 keys.
func Int64Keys() KeyCodec[int64] {
	return KeyCodec[int64]{
		Encode: func(id int64) string { return strconv.FormatInt(id, 10) },
		Decode: func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) },
	}
}
