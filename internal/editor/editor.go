// Package editor implements the inline edit flow: Viewing -> Editing -> Saving -> Viewing.
//
// Field updates only touch the draft. Save hands the whole draft to the caller's save function;
// on failure the editor stays in Editing with the draft intact so the user can retry, on
// success the draft is dropped. Cancel drops the draft without calling anything.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotEditing     = errors.New("editor is not editing")
	ErrAlreadyEditing = errors.New("editor is already editing")
	ErrSaving         = errors.New("editor is saving")
)

type State int

const (
	Viewing State = iota
	Editing
	Saving
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type SaveFunc[T any] func(ctx context.Context, draft T) error

type Editor[T any] struct {
	mu    sync.Mutex
	state State
	draft T
}

func New[T any]() *Editor[T] {
	return &Editor[T]{}
}

// Begin copies current into the draft and enters Editing.
func (e *Editor[T]) Begin(current T) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Viewing {
		return ErrAlreadyEditing
	}
	e.draft = current
	e.state = Editing
	return nil
}

func (e *Editor[T]) Update(fn func(draft *T)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case Editing:
		fn(&e.draft)
		return nil
	case Saving:
		return ErrSaving
	default:
		return ErrNotEditing
	}
}

// Save submits the draft through fn. The lock is not held while fn runs.
func (e *Editor[T]) Save(ctx context.Context, fn SaveFunc[T]) error {
	e.mu.Lock()
	switch e.state {
	case Editing:
	case Saving:
		e.mu.Unlock()
		return ErrSaving
	default:
		e.mu.Unlock()
		return ErrNotEditing
	}
	e.state = Saving
	draft := e.draft
	e.mu.Unlock()

	err := fn(ctx, draft)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = Editing
		return err
	}
	var zero T
	e.draft = zero
	e.state = Viewing
	return nil
}

func (e *Editor[T]) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	var zero T
	e.draft = zero
	e.state = Viewing
}

func (e *Editor[T]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Draft returns the current draft and whether there is one.
func (e *Editor[T]) Draft() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft, e.state != Viewing
}

type snapshot[T any] struct {
	State State `json:"state"`
	Draft *T    `json:"draft,omitempty"`
}

func (e *Editor[T]) MarshalJSON() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := snapshot[T]{State: e.state}
	if e.state != Viewing {
		draft := e.draft
		s.Draft = &draft
	}
	return json.Marshal(s)
}

// UnmarshalJSON restores an editor. An editor persisted mid-save comes back as Editing, the
// outcome of that save is unknown to it.
func (e *Editor[T]) UnmarshalJSON(data []byte) error {
	var s snapshot[T]
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var zero T
	e.draft = zero
	e.state = Viewing
	if s.State != Viewing && s.Draft != nil {
		e.draft = *s.Draft
		e.state = Editing
	}
	return nil
}
