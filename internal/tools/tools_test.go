package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoRegistry(name string) *Registry {
	r := NewRegistry()
	r.Register(Definition{Name: name, Parameters: map[string]any{"type": "object"}},
		func(_ context.Context, args map[string]any) (string, error) {
			v, _ := args["value"].(string)
			return name + ":" + v, nil
		})
	return r
}

func TestRegistry_Call(t *testing.T) {
	r := echoRegistry("echo")

	out, err := r.Call(context.Background(), "echo", `{"value":"hi"}`)
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", out)

	out, err = r.Call(context.Background(), "echo", "")
	require.NoError(t, err)
	assert.Equal(t, "echo:", out)
}

func TestRegistry_Errors(t *testing.T) {
	r := echoRegistry("echo")

	_, err := r.Call(context.Background(), "missing", "{}")
	assert.ErrorIs(t, err, ErrToolNotFound)

	_, err = r.Call(context.Background(), "echo", "{not json")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrToolNotFound))
}

func TestRegistry_DefinitionsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "b"}, nil)
	r.Register(Definition{Name: "a"}, nil)
	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "a", defs[0].Name)
}

func TestMulti(t *testing.T) {
	m := Multi{echoRegistry("one"), nil, echoRegistry("two"), echoRegistry("one")}

	assert.Len(t, m.Definitions(), 2)

	out, err := m.Call(context.Background(), "two", `{"value":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, "two:x", out)

	_, err = m.Call(context.Background(), "three", "")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestWithout(t *testing.T) {
	ts := Without(Multi{echoRegistry("keep"), echoRegistry("drop")}, "drop")

	require.Len(t, ts.Definitions(), 1)
	assert.Equal(t, "keep", ts.Definitions()[0].Name)

	out, err := ts.Call(context.Background(), "keep", `{"value":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, "keep:x", out)

	_, err = ts.Call(context.Background(), "drop", `{"value":"x"}`)
	assert.ErrorIs(t, err, ErrToolNotFound)
}
