// Package dropdown implements a user picker: local name matching merged with
// server page-handle lookups, single or multiple selection, and per-item
// decorations.
package dropdown

import (
	"context"
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hyperjump/ruslat/internal/match"
	"github.com/hyperjump/ruslat/internal/models"
)

const (
	// NoData is shown when the dropdown has no items at all.
	NoData = "No data"
	// NothingFound is shown when a search leaves no selectable items.
	NothingFound = "Nothing found"
	// DefaultPlaceholder is the input placeholder when none is configured.
	DefaultPlaceholder = "Choose a value"
)

// ErrUnknownValue is returned when selecting a value that is not an item.
var ErrUnknownValue = errors.New("unknown dropdown value")

// Capabilities switch the dropdown's optional behavior.
type Capabilities struct {
	// Multi allows several values; otherwise selecting replaces the value.
	Multi bool
	// Autocomplete filters items by the typed query.
	Autocomplete bool
	// ShowAvatar decorates items with their avatar.
	ShowAvatar bool
	// ShowPageHandle decorates items with @page and asks the server for
	// page-handle matches while searching.
	ShowPageHandle bool
}

// Item is one selectable entry.
type Item struct {
	Title  string
	Value  string
	Avatar string
	Page   string

	index match.Index
}

// ItemsFromUsers converts users into items in the same order.
func ItemsFromUsers(users []*models.User) []Item {
	items := make([]Item, 0, len(users))
	for _, u := range users {
		items = append(items, Item{Title: u.Name, Value: u.ID, Avatar: u.Avatar, Page: u.Page})
	}
	return items
}

// Remote finds user ids by page handle.
type Remote interface {
	SearchByPage(ctx context.Context, search string) ([]string, error)
}

// Result is the outcome of a search.
type Result struct {
	Items []Item
	// Message is set when Items is empty.
	Message string
	// RemoteErr is the page-lookup failure, if any; local matches are still returned.
	RemoteErr error
}

// Dropdown holds items and the current selection. It is not safe for
// concurrent use.
type Dropdown struct {
	caps        Capabilities
	items       []Item
	byValue     map[string]int
	value       []string
	remote      Remote
	minRemote   int
	decorators  []Decorator
	placeholder string
	logger      *zap.Logger
}

// Option configures a Dropdown.
type Option func(*Dropdown)

// WithRemote sets the page-handle lookup used when ShowPageHandle is on.
func WithRemote(r Remote) Option {
	return func(d *Dropdown) { d.remote = r }
}

// WithMinRemoteLength skips the page-handle lookup for trimmed queries
// shorter than n runes.
func WithMinRemoteLength(n int) Option {
	return func(d *Dropdown) { d.minRemote = n }
}

// WithDecorators appends item decorators after the ones Capabilities enable.
func WithDecorators(decs ...Decorator) Option {
	return func(d *Dropdown) { d.decorators = append(d.decorators, decs...) }
}

// WithPlaceholder sets the input placeholder.
func WithPlaceholder(p string) Option {
	return func(d *Dropdown) { d.placeholder = p }
}

// WithLogger sets a logger for debug output (remote failures).
func WithLogger(l *zap.Logger) Option {
	return func(d *Dropdown) { d.logger = l }
}

// New creates an empty dropdown.
func New(caps Capabilities, opts ...Option) *Dropdown {
	d := &Dropdown{
		caps:        caps,
		byValue:     make(map[string]int),
		placeholder: DefaultPlaceholder,
		logger:      zap.NewNop(),
	}
	if caps.ShowPageHandle {
		d.decorators = append(d.decorators, PageDecorator{})
	}
	if caps.ShowAvatar {
		d.decorators = append(d.decorators, AvatarDecorator{})
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Capabilities returns the dropdown's capabilities.
func (d *Dropdown) Capabilities() Capabilities {
	return d.caps
}

// Placeholder returns the input placeholder.
func (d *Dropdown) Placeholder() string {
	return d.placeholder
}

// SetItems replaces the items. Selected values that no longer exist are dropped.
func (d *Dropdown) SetItems(items []Item) {
	d.items = make([]Item, len(items))
	d.byValue = make(map[string]int, len(items))
	for i, it := range items {
		if d.caps.Autocomplete {
			it.index = match.BuildIndex(it.Title)
		}
		d.items[i] = it
		d.byValue[it.Value] = i
	}
	d.value = slices.DeleteFunc(d.value, func(v string) bool {
		_, ok := d.byValue[v]
		return !ok
	})
}

// Items returns all items.
func (d *Dropdown) Items() []Item {
	return d.items
}

// Item returns the item with the given value.
func (d *Dropdown) Item(value string) (Item, bool) {
	i, ok := d.byValue[value]
	if !ok {
		return Item{}, false
	}
	return d.items[i], true
}

// Select chooses value. In single mode it replaces the current value; in
// multi mode it is appended unless already selected.
func (d *Dropdown) Select(value string) error {
	if _, ok := d.byValue[value]; !ok {
		return ErrUnknownValue
	}
	if !d.caps.Multi {
		d.value = []string{value}
		return nil
	}
	if !slices.Contains(d.value, value) {
		d.value = append(d.value, value)
	}
	return nil
}

// Remove deselects value and reports whether it was selected.
func (d *Dropdown) Remove(value string) bool {
	i := slices.Index(d.value, value)
	if i < 0 {
		return false
	}
	d.value = slices.Delete(d.value, i, i+1)
	return true
}

// Clear deselects everything.
func (d *Dropdown) Clear() {
	d.value = nil
}

// Value returns the selected values in selection order. Single mode holds at most one.
func (d *Dropdown) Value() []string {
	return slices.Clone(d.value)
}

// Selected returns the selected items in selection order.
func (d *Dropdown) Selected() []Item {
	out := make([]Item, 0, len(d.value))
	for _, v := range d.value {
		if it, ok := d.Item(v); ok {
			out = append(out, it)
		}
	}
	return out
}

// snapshot copies the dropdown for a search running on another goroutine.
// Items and the value index are replaced, never mutated, so they are shared.
func (d *Dropdown) snapshot() *Dropdown {
	c := *d
	c.value = slices.Clone(d.value)
	return &c
}

func (d *Dropdown) selected(value string) bool {
	return slices.Contains(d.value, value)
}

// Search returns the unselected items matching query, in item order.
//
// A blank query, or a dropdown without Autocomplete, lists every unselected
// item. Otherwise the ids come from local name matching plus, when
// ShowPageHandle is on, the server's page-handle matches. A failed server
// lookup falls back to local matches only.
func (d *Dropdown) Search(ctx context.Context, query string) Result {
	if len(d.items) == 0 {
		return Result{Message: NoData}
	}
	if !d.caps.Autocomplete || strings.TrimSpace(query) == "" {
		return d.result(d.items, nil)
	}

	ids := d.localIDs(query)
	var remoteErr error
	if d.caps.ShowPageHandle && d.remote != nil && utf8.RuneCountInString(strings.TrimSpace(query)) >= d.minRemote {
		remote, err := d.remote.SearchByPage(ctx, query)
		if err != nil {
			d.logger.Debug("page lookup failed, using local matches", zap.String("query", query), zap.Error(err))
			remoteErr = err
		} else {
			ids = append(ids, remote...)
		}
	}

	found := make(map[string]bool, len(ids))
	for _, id := range ids {
		found[id] = true
	}
	items := make([]Item, 0, len(found))
	for _, it := range d.items {
		if found[it.Value] {
			items = append(items, it)
		}
	}
	return d.result(items, remoteErr)
}

func (d *Dropdown) localIDs(query string) []string {
	q := match.ParseQuery(query)
	matched := match.Filter(q, d.items, func(it Item) match.Index { return it.index })
	ids := make([]string, len(matched))
	for i, it := range matched {
		ids[i] = it.Value
	}
	return ids
}

func (d *Dropdown) result(items []Item, remoteErr error) Result {
	visible := make([]Item, 0, len(items))
	for _, it := range items {
		if !d.selected(it.Value) {
			visible = append(visible, it)
		}
	}
	res := Result{Items: visible, RemoteErr: remoteErr}
	if len(visible) == 0 {
		res.Message = NothingFound
	}
	return res
}

// Render renders it through the dropdown's decorators.
func (d *Dropdown) Render(it Item) string {
	l := Line{Title: it.Title}
	for _, dec := range d.decorators {
		l = dec.Decorate(it, l)
	}
	return l.String()
}
