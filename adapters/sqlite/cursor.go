package sqlite

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// cursorToken identifies the boundary row of a page. It travels inside a
// paging.Cursor as an opaque string; clients never see its shape.
type cursorToken struct {
	CreatedAt int64  `msgpack:"t"` // unix nanoseconds
	ID        string `msgpack:"id"`
}

func encodeCursor(tok cursorToken) string {
	data, err := msgpack.Marshal(tok)
	if err != nil {
		// cursorToken contains only scalars; marshaling cannot fail.
		panic(fmt.Sprintf("sqlite: encode cursor: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeCursor(s string) (cursorToken, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return cursorToken{}, fmt.Errorf("decode cursor: %w", err)
	}
	var tok cursorToken
	if err := msgpack.Unmarshal(data, &tok); err != nil {
		return cursorToken{}, fmt.Errorf("decode cursor: %w", err)
	}
	return tok, nil
}
