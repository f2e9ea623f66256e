package retroview

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boxDocument returns a glTF document with a single box-shaped mesh spanning min to max, under a node translated by
// the offset given.
func boxDocument(min, max, translation Vector) *gltf.Document {
	return &gltf.Document{
		Asset: gltf.Asset{Version: "2.0"},
		Scene: gltf.Index(0),
		Scenes: []*gltf.Scene{
			{Name: "Scene", Nodes: []int{0}},
		},
		Nodes: []*gltf.Node{
			{Name: "Box", Mesh: gltf.Index(0), Translation: [3]float64{translation.X, translation.Y, translation.Z}},
		},
		Meshes: []*gltf.Mesh{
			{Name: "Box", Primitives: []*gltf.Primitive{{Attributes: map[string]int{gltf.POSITION: 0}}}},
		},
		Accessors: []*gltf.Accessor{
			{
				ComponentType: gltf.ComponentFloat,
				Type:          gltf.AccessorVec3,
				Count:         8,
				Min:           min.Floats(),
				Max:           max.Floats(),
			},
		},
	}
}

func encodeDocument(t testing.TB, doc *gltf.Document) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, gltf.NewEncoder(buf).Encode(doc))
	return buf.Bytes()
}

func testAssets(t testing.TB) fstest.MapFS {
	return fstest.MapFS{
		"box/scene.gltf":    {Data: encodeDocument(t, boxDocument(NewVector(-1, 0, -1), NewVector(1, 2, 1), Vector{}))},
		"tall/scene.gltf":   {Data: encodeDocument(t, boxDocument(NewVector(-0.5, 0, -0.5), NewVector(0.5, 8, 0.5), NewVector(0, 1, 0)))},
		"broken/scene.gltf": {Data: []byte(`{"asset": `)},
	}
}

// countingLoader counts its loads, optionally holding each one until release is closed.
type countingLoader struct {
	loads   atomic.Int32
	started chan string
	release chan struct{}
	fail    func(attempt int32) error
}

func newCountingLoader() *countingLoader {
	return &countingLoader{started: make(chan string, 16)}
}

func (loader *countingLoader) Load(ctx context.Context, assetPath string) (*Asset, error) {

	attempt := loader.loads.Add(1)
	loader.started <- assetPath

	if loader.release != nil {
		select {
		case <-loader.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if loader.fail != nil {
		if err := loader.fail(attempt); err != nil {
			return nil, err
		}
	}

	return &Asset{Path: assetPath, Bounds: NewDimensions(NewVector(-1, 0, -1), NewVector(1, 2, 1))}, nil

}

func TestCleanAssetPath(t *testing.T) {

	tests := map[string]string{
		"a/b.gltf":     "a/b.gltf",
		"./a/b.gltf":   "a/b.gltf",
		"a//b.gltf":    "a/b.gltf",
		"/a/b.gltf":    "a/b.gltf",
		`a\b.gltf`:     "a/b.gltf",
		"a/../b.gltf":  "b.gltf",
		"../../b.gltf": "b.gltf",
		"  a/b.gltf  ": "a/b.gltf",
		"":             "",
		"   ":          "",
	}

	for input, want := range tests {
		assert.Equal(t, want, CleanAssetPath(input), "input %q", input)
	}

}

func TestDocumentBounds(t *testing.T) {

	doc := boxDocument(NewVector(-1, 0, -1), NewVector(1, 2, 1), NewVector(0, 1, 0))

	bounds, err := DocumentBounds(doc)
	require.NoError(t, err)
	assert.True(t, bounds.Min.Equals(NewVector(-1, 1, -1), 1e-9), "min %s", bounds.Min)
	assert.True(t, bounds.Max.Equals(NewVector(1, 3, 1), 1e-9), "max %s", bounds.Max)

	// Children inherit their parent's transform.
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "Child", Mesh: gltf.Index(0), Translation: [3]float64{10, 0, 0}, Scale: [3]float64{2, 2, 2}})
	doc.Nodes[0].Children = []int{1}

	bounds, err = DocumentBounds(doc)
	require.NoError(t, err)
	assert.True(t, bounds.Max.Equals(NewVector(12, 5, 2), 1e-9), "max %s", bounds.Max)

	_, err = DocumentBounds(&gltf.Document{})
	assert.ErrorIs(t, err, ErrNoScene)

	doc.Scene = gltf.Index(3)
	_, err = DocumentBounds(doc)
	assert.ErrorIs(t, err, ErrNoScene)

}

func TestDocumentLoader(t *testing.T) {

	built := []string{}

	loader := DocumentLoader(testAssets(t), func(fsys fs.FS, assetPath string, doc *gltf.Document) (any, error) {
		built = append(built, assetPath)
		return len(doc.Nodes), nil
	})

	asset, err := loader.Load(context.Background(), "tall/scene.gltf")
	require.NoError(t, err)
	require.NotNil(t, asset.Document)
	assert.Equal(t, 1, asset.Handle)
	assert.True(t, asset.Bounds.Max.Equals(NewVector(0.5, 9, 0.5), 1e-9), "max %s", asset.Bounds.Max)
	assert.Equal(t, []string{"tall/scene.gltf"}, built)

	_, err = loader.Load(context.Background(), "missing/scene.gltf")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = loader.Load(context.Background(), "broken/scene.gltf")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = loader.Load(ctx, "box/scene.gltf")
	assert.ErrorIs(t, err, context.Canceled)

}

func TestAssetCacheCollapsesConcurrentLoads(t *testing.T) {

	loader := newCountingLoader()
	loader.release = make(chan struct{})
	cache := NewAssetCache(loader, nil)

	const requests = 8

	results := make([]*Asset, requests)
	wg := sync.WaitGroup{}

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			asset, err := cache.Get(context.Background(), "./box/scene.gltf")
			assert.NoError(t, err)
			results[i] = asset
		}(i)
	}

	<-loader.started
	close(loader.release)
	wg.Wait()

	assert.Equal(t, int32(1), loader.loads.Load())

	for _, asset := range results {
		assert.Same(t, results[0], asset)
	}

	assert.Equal(t, "box/scene.gltf", results[0].Path)

	cached, ok := cache.Cached("box/scene.gltf")
	assert.True(t, ok)
	assert.Same(t, results[0], cached)

}

func TestAssetCacheDoesNotRememberFailures(t *testing.T) {

	failure := errors.New("connection reset")

	loader := newCountingLoader()
	loader.fail = func(attempt int32) error {
		if attempt == 1 {
			return failure
		}
		return nil
	}

	cache := NewAssetCache(loader, nil)

	_, err := cache.Get(context.Background(), "box/scene.gltf")
	require.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "box/scene.gltf")

	_, ok := cache.Cached("box/scene.gltf")
	assert.False(t, ok)

	asset, err := cache.Get(context.Background(), "box/scene.gltf")
	require.NoError(t, err)
	assert.NotNil(t, asset)
	assert.Equal(t, int32(2), loader.loads.Load())

}

func TestAssetCacheInvalidate(t *testing.T) {

	loader := newCountingLoader()
	cache := NewAssetCache(loader, nil)

	first, err := cache.Get(context.Background(), "box/scene.gltf")
	require.NoError(t, err)

	again, err := cache.Get(context.Background(), "box//scene.gltf")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, int32(1), loader.loads.Load())

	assert.True(t, cache.Invalidate("./box/scene.gltf"))
	assert.False(t, cache.Invalidate("box/scene.gltf"))

	reloaded, err := cache.Get(context.Background(), "box/scene.gltf")
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
	assert.Equal(t, int32(2), loader.loads.Load())

}

func TestAssetCacheInvalidateDuringLoad(t *testing.T) {

	var loads atomic.Int32
	started := make(chan struct{}, 1)
	hold := make(chan struct{})

	cache := NewAssetCache(LoaderFunc(func(ctx context.Context, assetPath string) (*Asset, error) {
		attempt := loads.Add(1)
		if attempt == 1 {
			started <- struct{}{}
			<-hold
		}
		return &Asset{Path: assetPath, Handle: attempt}, nil
	}), nil)

	stale := make(chan *Asset, 1)
	go func() {
		asset, err := cache.Get(context.Background(), "m.gltf")
		assert.NoError(t, err)
		stale <- asset
	}()

	<-started

	// Nothing is cached yet, but the running load is now out of date.
	assert.False(t, cache.Invalidate("m.gltf"))

	fresh, err := cache.Get(context.Background(), "m.gltf")
	require.NoError(t, err)
	assert.Equal(t, int32(2), fresh.Handle)

	close(hold)

	select {
	case asset := <-stale:
		require.NotNil(t, asset)
		assert.Equal(t, int32(1), asset.Handle)
	case <-time.After(5 * time.Second):
		t.Fatal("the first Get never returned")
	}

	cached, ok := cache.Cached("m.gltf")
	require.True(t, ok)
	assert.Equal(t, int32(2), cached.Handle)
	assert.Equal(t, int32(2), loads.Load())

}

func TestAssetCacheErrors(t *testing.T) {

	cache := NewAssetCache(LoaderFunc(func(ctx context.Context, assetPath string) (*Asset, error) {
		return nil, nil
	}), nil)

	_, err := cache.Get(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = cache.Get(context.Background(), "box/scene.gltf")
	assert.ErrorIs(t, err, ErrNoAsset)

}

func TestAssetCacheGetHonorsContext(t *testing.T) {

	loader := newCountingLoader()
	loader.release = make(chan struct{})
	cache := NewAssetCache(loader, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, "box/scene.gltf")
		done <- err
	}()

	<-loader.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Get didn't return after its context was cancelled")
	}

	// The shared load carries on, so a later request picks up its result.
	close(loader.release)
	asset, err := cache.Get(context.Background(), "box/scene.gltf")
	require.NoError(t, err)
	assert.NotNil(t, asset)
	assert.Equal(t, int32(1), loader.loads.Load())

}

func TestAssetCachePreload(t *testing.T) {

	cache := NewAssetCache(DocumentLoader(testAssets(t), nil), nil)

	require.NoError(t, cache.Preload(context.Background(), "box/scene.gltf", "tall/scene.gltf"))

	paths := cache.Paths()
	sort.Strings(paths)
	assert.Equal(t, []string{"box/scene.gltf", "tall/scene.gltf"}, paths)

	// One failure is reported, but the assets that did load stay cached.
	cache = NewAssetCache(DocumentLoader(testAssets(t), nil), nil)
	err := cache.Preload(context.Background(), "box/scene.gltf", "missing/scene.gltf")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	// The failure cancels the group's context, so the other load may still be finishing in the background.
	assert.Eventually(t, func() bool {
		_, ok := cache.Cached("box/scene.gltf")
		return ok
	}, 5*time.Second, 10*time.Millisecond)

}
