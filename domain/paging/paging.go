// Package paging provides the paging instruction value types shared between
// storage adapters and the hypermedia layer. An instruction is opaque
// outside the adapter that produced it: it rides through a hidden template
// property as a string and must round-trip loss-lessly, including nested
// key maps.
package paging

import (
	"encoding/json"
	"fmt"
)

// DefaultLimit is the page size used when an instruction carries none.
const DefaultLimit = 20

// Directions for cursor-style paging.
const (
	DirectionNext = "next"
	DirectionPrev = "prev"
)

// Instruction is the closed variant of paging shapes. Exactly two
// implementations exist: Cursor for cursor-style stores and Key for
// key-based stores. Adapters match exhaustively at the repository boundary;
// nothing else inspects the contents.
type Instruction interface {
	isInstruction()
}

// Cursor is the instruction shape for cursor-style stores: an opaque cursor
// token, a page size, and a direction.
type Cursor struct {
	Cursor    string `json:"cursor,omitempty"`
	Limit     int    `json:"limit"`
	Direction string `json:"direction,omitempty"`
}

func (Cursor) isInstruction() {}

// Key is the instruction shape for key-based stores such as DynamoDB: the
// last evaluated key of the previous page, a page size, and the scan
// direction.
type Key struct {
	LastEvaluatedKey map[string]any `json:"lastEvaluatedKey,omitempty"`
	Limit            int            `json:"limit"`
	ScanIndexForward *bool          `json:"scanIndexForward,omitempty"`
}

func (Key) isInstruction() {}

// Page is one page of listed items plus the instructions, if any, that
// fetch the adjacent pages.
type Page[T any] struct {
	Items []T
	Next  Instruction
	Prev  Instruction
}

// Encode serializes an instruction to its wire string form. A nil
// instruction encodes to the empty string.
func Encode(in Instruction) (string, error) {
	if in == nil {
		return "", nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encode paging instruction: %w", err)
	}
	return string(data), nil
}

// DecodeCursor parses the wire form of a cursor-style instruction. The
// empty string decodes to a first-page instruction with the default limit.
func DecodeCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{Limit: DefaultLimit}, nil
	}
	var c Cursor
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return Cursor{}, fmt.Errorf("decode cursor paging: %w", err)
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	return c, nil
}

// DecodeKey parses the wire form of a key-style instruction. The empty
// string decodes to a first-page instruction with the default limit.
func DecodeKey(s string) (Key, error) {
	if s == "" {
		return Key{Limit: DefaultLimit}, nil
	}
	var k Key
	if err := json.Unmarshal([]byte(s), &k); err != nil {
		return Key{}, fmt.Errorf("decode key paging: %w", err)
	}
	if k.Limit <= 0 {
		k.Limit = DefaultLimit
	}
	return k, nil
}

// Limit returns the page size an instruction asks for, falling back to the
// default for nil instructions.
func Limit(in Instruction) int {
	switch v := in.(type) {
	case Cursor:
		if v.Limit > 0 {
			return v.Limit
		}
	case Key:
		if v.Limit > 0 {
			return v.Limit
		}
	}
	return DefaultLimit
}
