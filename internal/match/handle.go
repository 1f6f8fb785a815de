package match

import (
	"errors"
	"strings"

	"github.com/hyperjump/ruslat/internal/letters"
)

// ErrEmptyQuery is returned by HandleIndex.Lookup for a blank query.
var ErrEmptyQuery = errors.New("search must not be empty")

// Handle is a record addressed by a short page handle.
type Handle struct {
	Value  string
	Handle string
}

type handleEntry struct {
	value    string
	original string
	translit string
}

// HandleIndex matches a query against one short field per record.
type HandleIndex struct {
	entries  []handleEntry
	keyboard bool
}

// HandleOption configures a HandleIndex.
type HandleOption func(*HandleIndex)

// WithoutKeyboard disables keyboard-layout correction of lookup queries, so
// only the query as typed and its transliteration are tried.
func WithoutKeyboard() HandleOption {
	return func(h *HandleIndex) { h.keyboard = false }
}

// NewHandleIndex indexes the records that have a handle. Records with an
// empty handle are skipped.
func NewHandleIndex(records []Handle, opts ...HandleOption) *HandleIndex {
	h := &HandleIndex{keyboard: true}
	for _, opt := range opts {
		opt(h)
	}
	for _, r := range records {
		handle := lower(strings.TrimSpace(r.Handle))
		if handle == "" {
			continue
		}
		h.entries = append(h.entries, handleEntry{
			value:    r.Value,
			original: handle,
			translit: letters.ToTranslit(handle),
		})
	}
	return h
}

// Len returns the number of indexed handles.
func (h *HandleIndex) Len() int {
	return len(h.entries)
}

// Lookup returns the values whose handle contains any reading of page, in
// index order. A blank page yields ErrEmptyQuery.
func (h *HandleIndex) Lookup(page string) ([]string, error) {
	page = lower(strings.TrimSpace(page))
	if page == "" {
		return nil, ErrEmptyQuery
	}
	readings := h.readings(page)

	values := []string{}
	for _, e := range h.entries {
		for _, r := range readings {
			if strings.Contains(e.original, r) || strings.Contains(e.translit, r) {
				values = append(values, e.value)
				break
			}
		}
	}
	return values, nil
}

func (h *HandleIndex) readings(page string) []string {
	if h.keyboard {
		return letters.Readings(page)
	}
	if tr := letters.ToTranslit(page); tr != page {
		return []string{page, tr}
	}
	return []string{page}
}
