package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	t.Run("creates instances lazily up to capacity", func(t *testing.T) {
		created := 0
		p := newPoolWithFactory(2, func() (*Instance, error) {
			created++
			return &Instance{}, nil
		})

		a, err := p.Acquire()
		require.NoError(t, err)
		b, err := p.Acquire()
		require.NoError(t, err)
		assert.NotNil(t, a)
		assert.NotNil(t, b)
		assert.Equal(t, 2, created)
	})

	t.Run("replaces an unhealthy instance on checkout", func(t *testing.T) {
		created := 0
		p := newPoolWithFactory(1, func() (*Instance, error) {
			created++
			return &Instance{}, nil
		})

		a, err := p.Acquire()
		require.NoError(t, err)
		p.Release(a)

		// A bare Instance has no live browser, so the health check
		// discards it and the factory runs again.
		b, err := p.Acquire()
		require.NoError(t, err)
		assert.NotSame(t, a, b)
		assert.Equal(t, 2, created)
	})

	t.Run("factory failure frees the capacity slot", func(t *testing.T) {
		calls := 0
		p := newPoolWithFactory(1, func() (*Instance, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("no chromium")
			}
			return &Instance{}, nil
		})

		_, err := p.Acquire()
		require.Error(t, err)

		inst, err := p.Acquire()
		require.NoError(t, err)
		assert.NotNil(t, inst)
	})

	t.Run("closing a nil instance is safe", func(t *testing.T) {
		// Acquire can observe the closed channel's zero value when Close
		// races a checkout; both paths must tolerate a nil instance.
		var inst *Instance
		assert.False(t, inst.Healthy())
		assert.NoError(t, inst.Close())
	})

	t.Run("acquire sees the closed channel as a closed pool", func(t *testing.T) {
		p := newPoolWithFactory(1, func() (*Instance, error) {
			return &Instance{}, nil
		})
		a, err := p.Acquire()
		require.NoError(t, err)
		p.Release(a)
		require.NoError(t, p.Close())

		// The closed flag is reset to force Acquire past its early check
		// and into the channel receive, the window a racing Close leaves.
		p.mu.Lock()
		p.closed = false
		p.mu.Unlock()

		_, err = p.Acquire()
		assert.ErrorIs(t, err, ErrPoolClosed)
	})

	t.Run("acquire after close fails", func(t *testing.T) {
		p := newPoolWithFactory(1, func() (*Instance, error) {
			return &Instance{}, nil
		})
		require.NoError(t, p.Close())

		_, err := p.Acquire()
		assert.ErrorIs(t, err, ErrPoolClosed)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		p := newPoolWithFactory(1, func() (*Instance, error) {
			return &Instance{}, nil
		})
		require.NoError(t, p.Close())
		require.NoError(t, p.Close())
	})

	t.Run("size clamps to a minimum of one", func(t *testing.T) {
		p := newPoolWithFactory(0, func() (*Instance, error) { return &Instance{}, nil })
		assert.Equal(t, 1, p.Size())
	})
}

func TestResolvePoolSize(t *testing.T) {
	t.Run("explicit value wins", func(t *testing.T) {
		assert.Equal(t, 3, ResolvePoolSize(3))
	})

	t.Run("derived value stays within bounds", func(t *testing.T) {
		n := ResolvePoolSize(0)
		assert.GreaterOrEqual(t, n, MinPoolSize)
		assert.LessOrEqual(t, n, MaxPoolSize)
	})
}
