package mux

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-mux/domain/entities"
)

type closingGreeter struct {
	closed atomic.Int32
}

func (c *closingGreeter) Greet() string { return "bye" }

func (c *closingGreeter) Close() error {
	c.closed.Add(1)
	return nil
}

func TestValue_ReleaseClosesOnLastReference(t *testing.T) {
	m, greet, _ := newShape(t, WithMode(entities.ModeFull))

	obj := &closingGreeter{}
	v, err := m.Wrap(obj)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Refs())

	clone := v.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, int64(2), v.Refs())

	require.NoError(t, v.Release())
	assert.True(t, v.Released())
	assert.Equal(t, int32(0), obj.closed.Load())

	_, ok := v.TryAs(greet)
	assert.False(t, ok, "a released reference answers absent")
	_, ok = v.Underlying()
	assert.False(t, ok)
	assert.Nil(t, v.Clone())

	_, ok = clone.TryAs(greet)
	assert.True(t, ok, "other references stay valid")

	require.NoError(t, clone.Release())
	assert.Equal(t, int32(1), obj.closed.Load())

	require.NoError(t, v.Release())
	require.NoError(t, clone.Release())
	assert.Equal(t, int32(1), obj.closed.Load(), "releasing twice is a no-op")
}

func TestValue_CloneAfterGroupReleased(t *testing.T) {
	m, _, _ := newShape(t, WithMode(entities.ModeFull))

	v, err := m.Wrap(&greeter{})
	require.NoError(t, err)
	require.NoError(t, v.Release())

	assert.Nil(t, v.Clone())
	assert.Equal(t, int64(0), v.Refs())
}

func TestValue_ReleaserError(t *testing.T) {
	boom := errors.New("boom")
	m, _, _ := newShape(t,
		WithMode(entities.ModeFull),
		WithReleaser(func(any) error { return boom }),
	)

	v, err := m.Wrap(&greeter{})
	require.NoError(t, err)
	clone := v.Clone()

	assert.NoError(t, v.Release())
	assert.ErrorIs(t, clone.Release(), boom, "the last releaser sees the error")
}

func TestValue_NilReleaser(t *testing.T) {
	m, _, _ := newShape(t, WithMode(entities.ModeFull), WithReleaser(nil))

	obj := &closingGreeter{}
	v, err := m.Wrap(obj)
	require.NoError(t, err)
	require.NoError(t, v.Release())
	assert.Equal(t, int32(0), obj.closed.Load())
}

func TestValue_ConcurrentCloneRelease(t *testing.T) {
	var released atomic.Int32
	m, greet, _ := newShape(t,
		WithMode(entities.ModeFull),
		WithReleaser(func(any) error {
			released.Add(1)
			return nil
		}),
	)

	v, err := m.Wrap(&greeter{name: "x"})
	require.NoError(t, err)

	const workers = 64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for range 100 {
				c := v.Clone()
				if c == nil {
					return
				}
				if _, ok := c.TryAs(greet); !ok {
					t.Error("live clone lost its capability")
				}
				_ = c.Release()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(0), released.Load())
	assert.Equal(t, int64(1), v.Refs())

	require.NoError(t, v.Release())
	assert.Equal(t, int32(1), released.Load())
}

func TestValue_ConcurrentFinalRelease(t *testing.T) {
	var released atomic.Int32
	m, _, _ := newShape(t,
		WithMode(entities.ModeFull),
		WithReleaser(func(any) error {
			released.Add(1)
			return nil
		}),
	)

	v, err := m.Wrap(&greeter{})
	require.NoError(t, err)

	refs := []*Value{v}
	for range 31 {
		refs = append(refs, v.Clone())
	}

	var wg sync.WaitGroup
	for _, r := range refs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Release()
			_ = r.Release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), released.Load())
}

func TestHandleIndex(t *testing.T) {
	set := entities.SetOf(1, 4, 63)
	assert.Equal(t, 0, handleIndex(set, 1))
	assert.Equal(t, 1, handleIndex(set, 4))
	assert.Equal(t, 2, handleIndex(set, 63))
}
