package cli

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/rescuegrid/internal/config"
	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, cfg config.Config, scenario string) (string, func() error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunServe(ctx, ServeOptions{Config: cfg, Scenario: scenario, Version: "test", Listener: ln})
	}()

	base := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	stop := func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(shutdownTimeout + time.Second):
			t.Fatal("server did not stop")
			return nil
		}
	}
	return base, stop
}

func TestRunServe(t *testing.T) {
	cfg := config.Default()
	cfg.Grid.Cols, cfg.Grid.Rows = 4, 3
	cfg.Store.Path = t.TempDir()

	base, stop := startServer(t, cfg, "")

	resp, err := http.Get(base + "/snapshot")
	require.NoError(t, err)
	var snap domain.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, 4, snap.Cols())
	assert.Equal(t, 3, snap.Rows())

	next := domain.NewSnapshot(4, 3)
	_ = next.SetCell(domain.C(3, 2), domain.Exit)
	body, err := json.Marshal(next)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, base+"/snapshot", strings.NewReader(string(body)))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req, err = http.NewRequest(http.MethodPut, base+"/scenarios/exit", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	metrics, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "rescuegrid_snapshot_replacements_total 1")

	assert.NoError(t, stop())
}

func TestRunServeSeedsScenario(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendFile
	cfg.Store.Path = t.TempDir()
	cfg.Metrics.Enabled = false

	seed := domain.NewSnapshot(2, 5)
	_ = seed.SetCell(domain.C(1, 4), domain.Fire)
	store, _, err := OpenStore(cfg.Store, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "seed", seed))

	base, stop := startServer(t, cfg, "seed")

	resp, err := http.Get(base + "/snapshot")
	require.NoError(t, err)
	var snap domain.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.True(t, seed.Equal(&snap))

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.NoError(t, stop())
}
