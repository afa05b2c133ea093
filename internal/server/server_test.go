package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docbridge/docbridge/internal/renderer"
	"github.com/docbridge/docbridge/internal/sweeper"
)

func TestListenAndServe_Shutdown(t *testing.T) {
	t.Run("context cancellation drains and returns cleanly", func(t *testing.T) {
		s, _ := newTestServer(t)
		// Port 0 binds an ephemeral port so parallel test runs never clash.
		s.config.Port = 0
		s.sweeper = sweeper.New(sweeper.Config{Catalog: s.catalog, Outputs: s.outputs})
		s.renderer = renderer.NewService(renderer.ServiceConfig{
			Pool:  renderer.NewPool(1),
			Store: s.outputs,
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- s.ListenAndServe(ctx)
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down after cancellation")
		}
	})
}
