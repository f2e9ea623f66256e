package retroview

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// LoadStatus represents where an asynchronous asset load is in its lifecycle.
type LoadStatus int

const (
	LoadIdle    LoadStatus = iota // Nothing has been requested yet
	LoadLoading                   // A load is in flight
	LoadReady                     // The asset is available
	LoadFailed                    // The last load failed; the snapshot's Err describes why
)

func (status LoadStatus) String() string {
	switch status {
	case LoadIdle:
		return "idle"
	case LoadLoading:
		return "loading"
	case LoadReady:
		return "ready"
	case LoadFailed:
		return "failed"
	}
	return "unknown"
}

// Resolved returns true once the load has finished, successfully or not.
func (status LoadStatus) Resolved() bool {
	return status == LoadReady || status == LoadFailed
}

// LoadSnapshot is a consistent view of a LoadState at one point in time.
type LoadSnapshot struct {
	Status     LoadStatus
	Asset      *Asset
	Err        error
	Generation uint64 // Incremented on every status change, so pollers can tell when something happened
}

// LoadState tracks one asset load explicitly, replacing an implicit suspension: the Scene Root starts a load, polls
// the state every update, and renders the Loading Indicator, an error view, or the scene accordingly.
// It's safe for concurrent use; the load runs in its own goroutine and the game loop polls Snapshot().
type LoadState struct {
	cache   *AssetCache
	timeout time.Duration
	logger  *slog.Logger

	mu         sync.Mutex
	status     LoadStatus
	asset      *Asset
	err        error
	generation uint64
	cancel     context.CancelFunc
	onChange   func(LoadSnapshot)
}

// NewLoadState creates a LoadState that loads through the AssetCache given. A timeout of 0 waits forever.
func NewLoadState(cache *AssetCache, timeout time.Duration, logger *slog.Logger) *LoadState {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadState{
		cache:   cache,
		timeout: timeout,
		logger:  logger,
	}
}

// SetOnChange sets a function that's called every time the status changes. It runs with the LoadState locked,
// so it must not call back into the LoadState.
func (state *LoadState) SetOnChange(onChange func(LoadSnapshot)) {
	state.mu.Lock()
	state.onChange = onChange
	state.mu.Unlock()
}

// Start begins loading the asset at assetPath, cancelling any load already in flight. It returns immediately.
func (state *LoadState) Start(ctx context.Context, assetPath string) {

	var loadCtx context.Context
	var cancel context.CancelFunc

	if state.timeout > 0 {
		loadCtx, cancel = context.WithTimeout(ctx, state.timeout)
	} else {
		loadCtx, cancel = context.WithCancel(ctx)
	}

	state.mu.Lock()
	if state.cancel != nil {
		state.cancel()
	}
	state.cancel = cancel
	generation := state.setLocked(LoadLoading, nil, nil)
	state.mu.Unlock()

	state.logger.Info("loading model", "path", assetPath)

	go func() {

		defer cancel()

		start := time.Now()
		asset, err := state.cache.Get(loadCtx, assetPath)

		state.mu.Lock()
		defer state.mu.Unlock()

		// A newer Start() superseded this load.
		if state.generation != generation {
			return
		}

		// Stopped, or the owner went away; leave the status as it is.
		if errors.Is(loadCtx.Err(), context.Canceled) {
			return
		}

		if err != nil {
			state.logger.Error("model failed to load", "path", assetPath, "error", err)
			state.setLocked(LoadFailed, nil, err)
			return
		}

		state.logger.Info("model ready", "path", assetPath, "took", time.Since(start).Round(time.Millisecond))
		state.setLocked(LoadReady, asset, nil)

	}()

}

// setLocked changes the status; state.mu must be held.
func (state *LoadState) setLocked(status LoadStatus, asset *Asset, err error) uint64 {
	state.status = status
	state.asset = asset
	state.err = err
	state.generation++
	if state.onChange != nil {
		state.onChange(state.snapshotLocked())
	}
	return state.generation
}

func (state *LoadState) snapshotLocked() LoadSnapshot {
	return LoadSnapshot{
		Status:     state.status,
		Asset:      state.asset,
		Err:        state.err,
		Generation: state.generation,
	}
}

// Snapshot returns the current status, asset and error together.
func (state *LoadState) Snapshot() LoadSnapshot {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.snapshotLocked()
}

// Status returns the current LoadStatus.
func (state *LoadState) Status() LoadStatus {
	return state.Snapshot().Status
}

// Stop cancels any load in flight. The status is left as-is.
func (state *LoadState) Stop() {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.cancel != nil {
		state.cancel()
		state.cancel = nil
	}
}
