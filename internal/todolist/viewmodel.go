// Package todolist holds the to-do list view-model: the authoritative item
// list, the filtered view derived from it and the persistence hand-off that
// follows every mutation.
package todolist

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idilsaglam/todolist/internal/model"
)

// Repository is the persistence boundary. Load is called once, at
// construction; Save always receives the complete current collection.
type Repository interface {
	Load(ctx context.Context) ([]model.Item, error)
	Save(ctx context.Context, items []model.Item) error
}

// Snapshot is what observers receive after a state change.
type Snapshot struct {
	Items       []model.Item
	Filtered    []model.Item
	FilterIndex int
}

// Observer is notified synchronously after every public operation.
type Observer func(Snapshot)

type Option func(*ViewModel)

// WithLogger routes mutation and save events to l.
func WithLogger(l *log.Logger) Option {
	return func(vm *ViewModel) {
		if l != nil {
			vm.log = l
		}
	}
}

// ViewModel is not safe for concurrent use; callers serialize access.
type ViewModel struct {
	repo        Repository
	log         *log.Logger
	items       []model.Item
	filtered    []model.Item
	filterIndex int

	observers map[int]Observer
	order     []int
	nextObs   int
}

// New loads the initial items from repo and derives the unfiltered view.
func New(ctx context.Context, repo Repository, opts ...Option) (*ViewModel, error) {
	vm := &ViewModel{
		repo:      repo,
		log:       log.New(io.Discard),
		observers: map[int]Observer{},
	}
	for _, opt := range opts {
		opt(vm)
	}
	items, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	vm.items = append([]model.Item(nil), items...)
	vm.log.Debug("items loaded", "count", len(vm.items))
	vm.derive(0)
	return vm, nil
}

// Add appends item as-is; duplicate identities are not rejected.
func (vm *ViewModel) Add(ctx context.Context, item model.Item) error {
	vm.items = append(vm.items, item)
	vm.log.Debug("item added", "id", item.ID, "title", item.Title)
	return vm.commit(ctx)
}

// ToggleCompletion flips the flag of the first item sharing item's identity.
// Without a match nothing changes, but the list is still saved and re-derived.
func (vm *ViewModel) ToggleCompletion(ctx context.Context, item model.Item) error {
	if i := vm.indexOf(item.ID); i >= 0 {
		vm.items[i] = vm.items[i].Toggled()
		vm.log.Debug("item toggled", "id", item.ID, "done", vm.items[i].Done)
	}
	return vm.commit(ctx)
}

// Remove drops every item sharing item's identity.
func (vm *ViewModel) Remove(ctx context.Context, item model.Item) error {
	kept := vm.items[:0]
	for _, it := range vm.items {
		if it.ID != item.ID {
			kept = append(kept, it)
		}
	}
	if removed := len(vm.items) - len(kept); removed > 0 {
		vm.log.Debug("item removed", "id", item.ID, "count", removed)
	}
	clear(vm.items[len(kept):])
	vm.items = kept
	return vm.commit(ctx)
}

// ApplyFilter selects the view: 1 done, 2 pending, anything else all items.
// It never persists.
func (vm *ViewModel) ApplyFilter(index int) {
	vm.derive(index)
	vm.notify()
}

// Items returns a copy of the authoritative list.
func (vm *ViewModel) Items() []model.Item {
	return append([]model.Item(nil), vm.items...)
}

// Filtered returns a copy of the current view.
func (vm *ViewModel) Filtered() []model.Item {
	return append([]model.Item(nil), vm.filtered...)
}

func (vm *ViewModel) FilterIndex() int { return vm.filterIndex }

// Lookup finds an item by identity in the authoritative list.
func (vm *ViewModel) Lookup(id uuid.UUID) (model.Item, bool) {
	if i := vm.indexOf(id); i >= 0 {
		return vm.items[i], true
	}
	return model.Item{}, false
}

// Stats counts done and pending items over the whole list.
func (vm *ViewModel) Stats() (done, pending int) {
	for _, it := range vm.items {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

// Subscribe registers fn and returns a func that removes it.
func (vm *ViewModel) Subscribe(fn Observer) func() {
	id := vm.nextObs
	vm.nextObs++
	vm.observers[id] = fn
	vm.order = append(vm.order, id)
	return func() {
		delete(vm.observers, id)
		for i, o := range vm.order {
			if o == id {
				vm.order = append(vm.order[:i], vm.order[i+1:]...)
				break
			}
		}
	}
}

// commit persists, re-derives and notifies. The in-memory mutation stands
// even when the save fails; the error is returned to the caller.
func (vm *ViewModel) commit(ctx context.Context) error {
	err := vm.repo.Save(ctx, vm.Items())
	if err != nil {
		vm.log.Error("save failed", "count", len(vm.items), "err", err)
		err = fmt.Errorf("save items: %w", err)
	}
	vm.derive(vm.filterIndex)
	vm.notify()
	return err
}

func (vm *ViewModel) derive(index int) {
	vm.filterIndex = index
	keep := Filter(index).predicate()
	out := make([]model.Item, 0, len(vm.items))
	for _, it := range vm.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	vm.filtered = out
}

func (vm *ViewModel) notify() {
	if len(vm.order) == 0 {
		return
	}
	snap := Snapshot{Items: vm.Items(), Filtered: vm.Filtered(), FilterIndex: vm.filterIndex}
	for _, id := range append([]int(nil), vm.order...) {
		if fn, ok := vm.observers[id]; ok {
			fn(snap)
		}
	}
}

func (vm *ViewModel) indexOf(id uuid.UUID) int {
	for i, it := range vm.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
