package imageref

import (
	"bytes"
	"encoding/json"
)

// PayloadKind tags which variant a Payload holds
type PayloadKind int

const (
	PayloadAbsent PayloadKind = iota
	PayloadText
	PayloadBinary
)

// Payload is an opaque image payload as delivered by the match-data API.
// It is either absent, a string or a byte sequence.
type Payload struct {
	kind  PayloadKind
	text  string
	bytes []byte
}

// Absent returns the empty payload
func Absent() Payload {
	return Payload{kind: PayloadAbsent}
}

// Text wraps a string payload. The empty string is treated as absent.
func Text(value string) Payload {
	if value == "" {
		return Absent()
	}
	return Payload{kind: PayloadText, text: value}
}

// Binary wraps raw unsigned bytes. An empty slice is still a binary payload.
func Binary(data []byte) Payload {
	copied := make([]byte, len(data))
	copy(copied, data)
	return Payload{kind: PayloadBinary, bytes: copied}
}

// SignedBinary wraps bytes delivered as signed 8-bit values in [-128,127].
// Negative values are shifted by 256 so that -1 becomes 255; unsigned values
// up to 255 are accepted as is. An array holding any value outside
// [-128,255] is not byte data and yields an absent payload.
func SignedBinary(values []int) Payload {
	normalized := make([]byte, len(values))
	for index, value := range values {
		if value < -128 || value > 255 {
			return Absent()
		}
		if value < 0 {
			value += 256
		}
		normalized[index] = byte(value)
	}
	return Payload{kind: PayloadBinary, bytes: normalized}
}

// Kind reports the variant held by the payload
func (payload Payload) Kind() PayloadKind {
	return payload.kind
}

// IsAbsent reports whether the payload carries nothing
func (payload Payload) IsAbsent() bool {
	return payload.kind == PayloadAbsent
}

// TextValue returns the string of a text payload
func (payload Payload) TextValue() string {
	return payload.text
}

// Bytes returns a copy of the bytes of a binary payload
func (payload Payload) Bytes() []byte {
	if payload.kind != PayloadBinary {
		return nil
	}
	copied := make([]byte, len(payload.bytes))
	copy(copied, payload.bytes)
	return copied
}

// UnmarshalJSON accepts null, a string, an array of (possibly signed) byte
// values, or a Node style {"type":"Buffer","data":[...]} object. Anything
// else decodes to an absent payload.
func (payload *Payload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*payload = Absent()
		return nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*payload = Text(text)
	case '[':
		var values []int
		if err := json.Unmarshal(trimmed, &values); err != nil {
			*payload = Absent()
			return nil
		}
		*payload = SignedBinary(values)
	case '{':
		var buffer struct {
			Type string `json:"type"`
			Data []int  `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &buffer); err != nil || buffer.Type != "Buffer" {
			*payload = Absent()
			return nil
		}
		*payload = SignedBinary(buffer.Data)
	default:
		*payload = Absent()
	}

	return nil
}

// MarshalJSON writes text payloads as strings and binary payloads as arrays
// of unsigned byte values.
func (payload Payload) MarshalJSON() ([]byte, error) {
	switch payload.kind {
	case PayloadText:
		return json.Marshal(payload.text)
	case PayloadBinary:
		values := make([]int, len(payload.bytes))
		for index, value := range payload.bytes {
			values[index] = int(value)
		}
		return json.Marshal(values)
	default:
		return []byte("null"), nil
	}
}
