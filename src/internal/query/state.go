package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// State is the list view state a table keeps between renders.
type State struct {
	filter Filter
	sort   Sort
	page   Page
}

func NewState(rowsPerPage int) *State {
	return &State{filter: Filter{}, page: Page{RowsPerPage: rowsPerPage}}
}

// SetFilter changes one filter entry and returns to the first page.
func (s *State) SetFilter(key, value string) {
	if value == "" {
		delete(s.filter, key)
	} else {
		s.filter[key] = value
	}
	s.page.Page = 0
}

func (s *State) ToggleSort(key string) {
	s.sort = s.sort.Toggle(key)
}

func (s *State) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	s.page.Page = page
}

// SetRowsPerPage changes the page size and returns to the first page.
func (s *State) SetRowsPerPage(n int) {
	s.page.RowsPerPage = n
	s.page.Page = 0
}

func (s *State) Params() Params {
	f := make(Filter, len(s.filter))
	for k, v := range s.filter {
		f[k] = v
	}
	return Params{Filter: f, Sort: s.sort, Page: s.page}
}

var reserved = map[string]bool{"sort": true, "dir": true, "page": true, "rowsPerPage": true}

// ParseParams reads list parameters from a URL query. Keys other than sort,
// dir, page and rowsPerPage become filter entries; keys listed in skip are ignored.
func ParseParams(q url.Values, defaultRows int, skip ...string) (Params, error) {
	p := Params{Filter: Filter{}, Page: Page{RowsPerPage: defaultRows}}

	ignored := make(map[string]bool, len(skip))
	for _, k := range skip {
		ignored[k] = true
	}
	for k, vs := range q {
		if reserved[k] || ignored[k] || len(vs) == 0 {
			continue
		}
		p.Filter[k] = vs[0]
	}

	p.Sort.Key = q.Get("sort")
	switch dir := strings.ToLower(q.Get("dir")); dir {
	case "", string(Asc):
		p.Sort.Direction = Asc
	case string(Desc):
		p.Sort.Direction = Desc
	default:
		return Params{}, fmt.Errorf("invalid dir %q", dir)
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Params{}, fmt.Errorf("invalid page %q", v)
		}
		p.Page.Page = n
	}
	if v := q.Get("rowsPerPage"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Params{}, fmt.Errorf("invalid rowsPerPage %q", v)
		}
		p.Page.RowsPerPage = n
	}
	return p, nil
}
