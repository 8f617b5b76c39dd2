package todolist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/idilsaglam/todolist/internal/model"
)

var ErrUnknownFilter = errors.New("unknown filter")

// Filter is the selector passed to ApplyFilter.
type Filter int

const (
	FilterAll Filter = iota
	FilterDone
	FilterPending
)

// ParseFilter accepts all|done|pending or their index.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "0":
		return FilterAll, nil
	case "done", "1":
		return FilterDone, nil
	case "pending", "2":
		return FilterPending, nil
	}
	return FilterAll, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

func (f Filter) String() string {
	switch f {
	case FilterDone:
		return "done"
	case FilterPending:
		return "pending"
	}
	return "all"
}

// Next cycles all -> done -> pending -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterDone
	case FilterDone:
		return FilterPending
	}
	return FilterAll
}

// predicate falls back to "all" for indices outside the known range.
func (f Filter) predicate() func(model.Item) bool {
	switch f {
	case FilterDone:
		return func(it model.Item) bool { return it.Done }
	case FilterPending:
		return func(it model.Item) bool { return !it.Done }
	}
	return func(model.Item) bool { return true }
}
