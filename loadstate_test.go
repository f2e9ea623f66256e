package retroview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 5 * time.Second
const tick = 5 * time.Millisecond

func waitForStatus(t *testing.T, state *LoadState, status LoadStatus) LoadSnapshot {
	t.Helper()
	require.Eventually(t, func() bool { return state.Status() == status }, waitFor, tick, "waiting for %s", status)
	return state.Snapshot()
}

func TestLoadStatus(t *testing.T) {

	assert.False(t, LoadIdle.Resolved())
	assert.False(t, LoadLoading.Resolved())
	assert.True(t, LoadReady.Resolved())
	assert.True(t, LoadFailed.Resolved())

	assert.Equal(t, "loading", LoadLoading.String())
	assert.Equal(t, "unknown", LoadStatus(42).String())

}

func TestLoadStateResolves(t *testing.T) {

	loader := newCountingLoader()
	loader.release = make(chan struct{})
	state := NewLoadState(NewAssetCache(loader, nil), 0, nil)

	statuses := []LoadStatus{}
	mu := sync.Mutex{}
	state.SetOnChange(func(snap LoadSnapshot) {
		mu.Lock()
		statuses = append(statuses, snap.Status)
		mu.Unlock()
	})

	assert.Equal(t, LoadIdle, state.Status())

	state.Start(context.Background(), "box/scene.gltf")

	snap := state.Snapshot()
	assert.Equal(t, LoadLoading, snap.Status)
	assert.Nil(t, snap.Asset)
	assert.Equal(t, uint64(1), snap.Generation)

	close(loader.release)

	snap = waitForStatus(t, state, LoadReady)
	require.NotNil(t, snap.Asset)
	assert.Equal(t, "box/scene.gltf", snap.Asset.Path)
	assert.NoError(t, snap.Err)
	assert.Equal(t, uint64(2), snap.Generation)

	mu.Lock()
	assert.Equal(t, []LoadStatus{LoadLoading, LoadReady}, statuses)
	mu.Unlock()

}

func TestLoadStateFails(t *testing.T) {

	failure := errors.New("404 not found")

	loader := newCountingLoader()
	loader.fail = func(int32) error { return failure }
	state := NewLoadState(NewAssetCache(loader, nil), 0, nil)

	state.Start(context.Background(), "box/scene.gltf")

	snap := waitForStatus(t, state, LoadFailed)
	assert.ErrorIs(t, snap.Err, failure)
	assert.Nil(t, snap.Asset)

}

func TestLoadStateTimeout(t *testing.T) {

	loader := newCountingLoader()
	loader.release = make(chan struct{})
	defer close(loader.release)

	state := NewLoadState(NewAssetCache(loader, nil), 20*time.Millisecond, nil)

	state.Start(context.Background(), "box/scene.gltf")

	snap := waitForStatus(t, state, LoadFailed)
	assert.ErrorIs(t, snap.Err, context.DeadlineExceeded)

}

func TestLoadStateSupersede(t *testing.T) {

	loader := newCountingLoader()
	loader.release = make(chan struct{})
	state := NewLoadState(NewAssetCache(loader, nil), 0, nil)

	state.Start(context.Background(), "first/scene.gltf")
	<-loader.started

	state.Start(context.Background(), "second/scene.gltf")
	<-loader.started

	close(loader.release)

	snap := waitForStatus(t, state, LoadReady)
	assert.Equal(t, "second/scene.gltf", snap.Asset.Path)

	// The superseded load never overwrites the newer result.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, snap, state.Snapshot())

}

func TestLoadStateStop(t *testing.T) {

	loader := newCountingLoader()
	loader.release = make(chan struct{})
	defer close(loader.release)

	state := NewLoadState(NewAssetCache(loader, nil), 0, nil)

	state.Start(context.Background(), "box/scene.gltf")
	<-loader.started

	state.Stop()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, LoadLoading, state.Status())

	// Stopping again, or before anything started, is harmless.
	state.Stop()
	NewLoadState(NewAssetCache(loader, nil), 0, nil).Stop()

}
