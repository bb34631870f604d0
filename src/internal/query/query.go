// Package query derives the visible slice of a fully loaded collection:
// filter, then sort, then paginate. Every function here is pure; the input
// slice is never reordered or modified.
package query

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SearchKey is the filter key matched against every searchable field.
const SearchKey = "search"

// MatchAll is the dropdown value meaning "no restriction".
const MatchAll = "All"

var ErrUnknownField = errors.New("unknown field")

type Kind int

const (
	Text Kind = iota
	Enum
	Number
)

type Field[T any] struct {
	Kind       Kind
	Searchable bool
	Value      func(T) any
}

type Schema[T any] map[string]Field[T]

type Filter map[string]string

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Sort struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Toggle returns the sort produced by clicking the column key.
func (s Sort) Toggle(key string) Sort {
	if s.Key == key {
		if s.Direction == Asc {
			return Sort{Key: key, Direction: Desc}
		}
		return Sort{Key: key, Direction: Asc}
	}
	return Sort{Key: key, Direction: Asc}
}

type Page struct {
	Page        int `json:"page"`
	RowsPerPage int `json:"rowsPerPage"`
}

type Params struct {
	Filter Filter
	Sort   Sort
	Page   Page
}

type Result[T any] struct {
	Items       []T `json:"items"`
	TotalCount  int `json:"totalCount"`
	PageCount   int `json:"pageCount"`
	Page        int `json:"page"`
	RowsPerPage int `json:"rowsPerPage"`
}

func Apply[T any](items []T, schema Schema[T], p Params) (Result[T], error) {
	filtered, err := FilterItems(items, schema, p.Filter)
	if err != nil {
		return Result[T]{}, err
	}
	if err := SortItems(filtered, schema, p.Sort); err != nil {
		return Result[T]{}, err
	}
	return Paginate(filtered, p.Page), nil
}

// FilterItems returns a new slice holding the items matching every filter entry.
func FilterItems[T any](items []T, schema Schema[T], f Filter) ([]T, error) {
	active := make(map[string]string, len(f))
	for k, v := range f {
		v = strings.TrimSpace(v)
		if v == "" || v == MatchAll {
			continue
		}
		if k != SearchKey {
			if _, ok := schema[k]; !ok {
				return nil, fmt.Errorf("%w: filter %q", ErrUnknownField, k)
			}
		}
		active[k] = v
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		if matches(it, schema, active) {
			out = append(out, it)
		}
	}
	return out, nil
}

func matches[T any](it T, schema Schema[T], f Filter) bool {
	for k, want := range f {
		if k == SearchKey {
			if !searchMatches(it, schema, want) {
				return false
			}
			continue
		}
		if !fieldMatches(schema[k], it, want) {
			return false
		}
	}
	return true
}

func searchMatches[T any](it T, schema Schema[T], needle string) bool {
	needle = strings.ToLower(needle)
	for _, fd := range schema {
		if !fd.Searchable {
			continue
		}
		if s, ok := stringOf(fd.Value(it)); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func fieldMatches[T any](fd Field[T], it T, want string) bool {
	v := fd.Value(it)
	switch fd.Kind {
	case Enum:
		s, ok := stringOf(v)
		return ok && s == want
	case Number:
		n, ok := numberOf(v)
		if !ok {
			return false
		}
		w, err := strconv.ParseFloat(want, 64)
		return err == nil && n == w
	default:
		s, ok := stringOf(v)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(want))
	}
}

// SortItems sorts items in place and stably. Nil and empty values sort last
// in both directions. An empty key leaves the order untouched.
func SortItems[T any](items []T, schema Schema[T], s Sort) error {
	if s.Key == "" {
		return nil
	}
	fd, ok := schema[s.Key]
	if !ok {
		return fmt.Errorf("%w: sort %q", ErrUnknownField, s.Key)
	}
	keys := make([]any, len(items))
	for i, it := range items {
		keys[i] = normalize(fd.Value(it))
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	desc := s.Direction == Desc
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		switch {
		case ka == nil && kb == nil:
			return false
		case ka == nil:
			return false
		case kb == nil:
			return true
		}
		c := compare(ka, kb)
		if desc {
			return c > 0
		}
		return c < 0
	})
	sorted := make([]T, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
	return nil
}

// Paginate cuts the requested page out of items. A page past the end yields
// no items; RowsPerPage <= 0 puts everything on one page.
func Paginate[T any](items []T, p Page) Result[T] {
	total := len(items)
	res := Result[T]{TotalCount: total, Page: p.Page, RowsPerPage: p.RowsPerPage, PageCount: 1}
	if p.RowsPerPage <= 0 {
		res.Items = items
		return res
	}
	if pages := int(math.Ceil(float64(total) / float64(p.RowsPerPage))); pages > 1 {
		res.PageCount = pages
	}
	// checked before multiplying so a huge page number cannot overflow
	if p.Page < 0 || total == 0 || p.Page >= res.PageCount {
		res.Items = []T{}
		return res
	}
	start := p.Page * p.RowsPerPage
	end := start + p.RowsPerPage
	if end > total {
		end = total
	}
	res.Items = items[start:end]
	return res
}

func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case *int:
		if x == nil {
			return nil
		}
		return float64(*x)
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	case string:
		if x == "" {
			return nil
		}
		return x
	}
	if n, ok := numberOf(v); ok {
		return n
	}
	return v
}

func compare(a, b any) int {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	as, _ := stringOf(a)
	bs, _ := stringOf(b)
	return strings.Compare(as, bs)
}

func numberOf(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case *int:
		if x == nil {
			return 0, false
		}
		return float64(*x), true
	}
	return 0, false
}

func stringOf(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	}
	return fmt.Sprint(v), true
}
