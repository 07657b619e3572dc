package editor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestEditor_SaveSuccess(t *testing.T) {
	e := New[item]()
	require.Equal(t, Viewing, e.State())
	require.ErrorIs(t, e.Update(func(*item) {}), ErrNotEditing)

	require.NoError(t, e.Begin(item{Name: "acme", Count: 1}))
	require.ErrorIs(t, e.Begin(item{}), ErrAlreadyEditing)
	require.NoError(t, e.Update(func(d *item) { d.Count = 5 }))

	var saved item
	err := e.Save(context.Background(), func(ctx context.Context, draft item) error {
		require.Equal(t, Saving, e.State())
		saved = draft
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, item{Name: "acme", Count: 5}, saved)
	require.Equal(t, Viewing, e.State())

	_, ok := e.Draft()
	require.False(t, ok)
}

func TestEditor_SaveFailureKeepsDraft(t *testing.T) {
	e := New[item]()
	require.NoError(t, e.Begin(item{Name: "acme"}))
	require.NoError(t, e.Update(func(d *item) { d.Name = "acme inc" }))

	boom := errors.New("backend unavailable")
	err := e.Save(context.Background(), func(context.Context, item) error { return boom })

	require.ErrorIs(t, err, boom)
	require.Equal(t, Editing, e.State())
	draft, ok := e.Draft()
	require.True(t, ok)
	require.Equal(t, "acme inc", draft.Name)
}

func TestEditor_CancelMakesNoRequest(t *testing.T) {
	e := New[item]()
	require.NoError(t, e.Begin(item{Name: "acme"}))
	e.Cancel()

	require.Equal(t, Viewing, e.State())
	err := e.Save(context.Background(), func(context.Context, item) error {
		t.Fatal("save must not be called")
		return nil
	})
	require.ErrorIs(t, err, ErrNotEditing)
}

func TestEditor_SaveWhileSaving(t *testing.T) {
	e := New[item]()
	require.NoError(t, e.Begin(item{}))

	err := e.Save(context.Background(), func(ctx context.Context, _ item) error {
		require.ErrorIs(t, e.Save(ctx, func(context.Context, item) error { return nil }), ErrSaving)
		require.ErrorIs(t, e.Update(func(*item) {}), ErrSaving)
		return nil
	})
	require.NoError(t, err)
}

func TestEditor_JSON(t *testing.T) {
	e := New[item]()
	require.NoError(t, e.Begin(item{Name: "acme", Count: 2}))

	data, err := json.Marshal(e)
	require.NoError(t, err)
	require.JSONEq(t, `{"state":1,"draft":{"name":"acme","count":2}}`, string(data))

	restored := New[item]()
	require.NoError(t, json.Unmarshal(data, restored))
	require.Equal(t, Editing, restored.State())
	draft, ok := restored.Draft()
	require.True(t, ok)
	require.Equal(t, item{Name: "acme", Count: 2}, draft)

	data, err = json.Marshal(New[item]())
	require.NoError(t, err)
	require.JSONEq(t, `{"state":0}`, string(data))
}
