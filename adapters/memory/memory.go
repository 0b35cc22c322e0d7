// Package memory provides in-memory implementations for testing.
package memory

import (
	"errors"
	"sort"
	"time"

	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/ports"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = ports.ErrNotFound

// entry orders records newest first; the cursor token is the boundary
// record's sort key.
type entry struct {
	key       string // "<unixnano>:<id>", descending sort
	createdAt time.Time
	id        string
}

func sortKey(at time.Time, id string) string {
	// Fixed-width UTC timestamps, so string order matches time order.
	return at.UTC().Format("20060102150405.000000000") + ":" + id
}

// pageEntries slices a newest-first entry list per a cursor instruction and
// returns the selected ids plus next/prev instructions.
func pageEntries(entries []entry, c paging.Cursor) (ids []string, next, prev paging.Instruction) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].key > entries[j].key })

	limit := c.Limit
	if limit <= 0 {
		limit = paging.DefaultLimit
	}

	// Locate the boundary record named by the cursor.
	boundary := -1
	if c.Cursor != "" {
		for i, e := range entries {
			if e.key == c.Cursor {
				boundary = i
				break
			}
		}
	}

	var start, end int
	if c.Direction == paging.DirectionPrev && boundary >= 0 {
		end = boundary
		start = end - limit
		if start < 0 {
			start = 0
		}
	} else {
		start = boundary + 1
		end = start + limit
		if end > len(entries) {
			end = len(entries)
		}
	}

	for _, e := range entries[start:end] {
		ids = append(ids, e.id)
	}

	if end < len(entries) && end > start {
		next = paging.Cursor{
			Cursor:    entries[end-1].key,
			Limit:     limit,
			Direction: paging.DirectionNext,
		}
	}
	if start > 0 && end > start {
		prev = paging.Cursor{
			Cursor:    entries[start].key,
			Limit:     limit,
			Direction: paging.DirectionPrev,
		}
	}
	return ids, next, prev
}

// asCursor narrows an instruction to the cursor variant this backend
// understands. A nil instruction means the first page.
func asCursor(in paging.Instruction) (paging.Cursor, error) {
	switch v := in.(type) {
	case nil:
		return paging.Cursor{Limit: paging.DefaultLimit}, nil
	case paging.Cursor:
		return v, nil
	default:
		return paging.Cursor{}, errors.New("memory: unsupported paging instruction")
	}
}
