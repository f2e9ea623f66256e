package retroview

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/qmuntal/gltf"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrEmptyPath is returned when an asset is requested without a path.
var ErrEmptyPath = errors.New("empty asset path")

// ErrNoScene is returned when a glTF document doesn't contain a scene to display.
var ErrNoScene = errors.New("gltf document has no scene")

// Asset represents a loaded 3D asset. It's created by a Loader on first request, cached by path, and
// treated as read-only afterwards.
type Asset struct {
	Path     string         // Cleaned path the Asset was requested by
	Document *gltf.Document // The decoded glTF document
	Bounds   Dimensions     // Object-space bounds of the document's default scene
	// Handle is the engine-side representation of the asset (for example, a *tetra3d.Library); the viewer core
	// never looks inside it.
	Handle any
}

// Loader resolves an asset path to a loaded Asset.
type Loader interface {
	Load(ctx context.Context, assetPath string) (*Asset, error)
}

// LoaderFunc adapts an ordinary function to the Loader interface.
type LoaderFunc func(ctx context.Context, assetPath string) (*Asset, error)

func (f LoaderFunc) Load(ctx context.Context, assetPath string) (*Asset, error) {
	return f(ctx, assetPath)
}

// CleanAssetPath normalizes an asset path so that "./a/b.gltf", "a//b.gltf" and "a/b.gltf" share a cache entry.
func CleanAssetPath(assetPath string) string {
	p := strings.TrimSpace(strings.ReplaceAll(assetPath, "\\", "/"))
	if p == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// AssetCache memoizes assets by path. Concurrent requests for the same path share one load, failed loads are not
// remembered (so they can be retried), and successful ones live until they're invalidated.
type AssetCache struct {
	loader Loader
	logger *slog.Logger

	mu       sync.RWMutex
	assets   map[string]*Asset
	requests singleflight.Group
	// generations counts invalidations per path; a load only stores its result if none happened while it ran.
	generations map[string]uint64
}

// NewAssetCache returns a new AssetCache that loads assets through the Loader given. A nil logger uses slog.Default().
func NewAssetCache(loader Loader, logger *slog.Logger) *AssetCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetCache{
		loader:      loader,
		logger:      logger,
		assets:      map[string]*Asset{},
		generations: map[string]uint64{},
	}
}

// Get returns the Asset for the path given, loading it if it isn't already cached.
// Get blocks until the asset is ready, the load fails, or the context is done.
func (cache *AssetCache) Get(ctx context.Context, assetPath string) (*Asset, error) {

	key := CleanAssetPath(assetPath)
	if key == "" {
		return nil, ErrEmptyPath
	}

	if asset, ok := cache.Cached(key); ok {
		return asset, nil
	}

	result := cache.requests.DoChan(key, func() (any, error) {

		cache.mu.RLock()
		asset, ok := cache.assets[key]
		generation := cache.generations[key]
		cache.mu.RUnlock()

		if ok {
			return asset, nil
		}

		cache.logger.Debug("loading asset", "path", key)

		// The shared load outlives any single caller's context; callers that give up simply stop waiting.
		asset, err := cache.loader.Load(context.WithoutCancel(ctx), key)
		if err != nil {
			cache.logger.Warn("asset load failed", "path", key, "error", err)
			return nil, fmt.Errorf("loading asset %q: %w", key, err)
		}

		if asset == nil {
			return nil, fmt.Errorf("loading asset %q: %w", key, ErrNoAsset)
		}

		asset.Path = key

		cache.mu.Lock()
		current := cache.generations[key] == generation
		if current {
			cache.assets[key] = asset
		}
		cache.mu.Unlock()

		if !current {
			cache.logger.Debug("asset invalidated while loading; not caching", "path", key)
			return asset, nil
		}

		cache.logger.Info("asset loaded", "path", key)

		return asset, nil

	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-result:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Asset), nil
	}

}

// Cached returns the Asset for the given path if it has already been loaded, without starting a load.
func (cache *AssetCache) Cached(assetPath string) (*Asset, bool) {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	asset, ok := cache.assets[CleanAssetPath(assetPath)]
	return asset, ok
}

// Preload warms every path given concurrently, returning the first error encountered (if any).
// Assets that loaded successfully stay cached even if others fail.
func (cache *AssetCache) Preload(ctx context.Context, assetPaths ...string) error {

	group, groupCtx := errgroup.WithContext(ctx)

	for _, p := range assetPaths {
		group.Go(func() error {
			_, err := cache.Get(groupCtx, p)
			return err
		})
	}

	return group.Wait()

}

// Invalidate drops the cached Asset for the path given, so the next Get() loads it again. A load already running for
// the path still answers its own callers, but its result isn't cached.
// It returns true if an entry was removed.
func (cache *AssetCache) Invalidate(assetPath string) bool {

	key := CleanAssetPath(assetPath)

	cache.mu.Lock()
	defer cache.mu.Unlock()

	_, ok := cache.assets[key]
	delete(cache.assets, key)
	cache.generations[key]++
	cache.requests.Forget(key)
	return ok

}

// Paths returns the paths of every cached Asset.
func (cache *AssetCache) Paths() []string {

	cache.mu.RLock()
	defer cache.mu.RUnlock()

	paths := make([]string, 0, len(cache.assets))
	for p := range cache.assets {
		paths = append(paths, p)
	}
	return paths

}

// DecodeDocument reads and decodes the glTF (.gltf or .glb) document at assetPath within fsys. External buffers
// and images are resolved relative to the document's directory.
func DecodeDocument(fsys fs.FS, assetPath string) (*gltf.Document, error) {

	f, err := fsys.Open(assetPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dir, err := fs.Sub(fsys, path.Dir(assetPath))
	if err != nil {
		return nil, err
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(f, dir).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", assetPath, err)
	}

	return doc, nil

}

// DocumentLoader returns a Loader that decodes glTF documents from fsys and computes their bounds. If build isn't nil,
// it's called with the decoded document to produce the engine-side Handle.
func DocumentLoader(fsys fs.FS, build func(fsys fs.FS, assetPath string, doc *gltf.Document) (any, error)) Loader {

	return LoaderFunc(func(ctx context.Context, assetPath string) (*Asset, error) {

		doc, err := DecodeDocument(fsys, assetPath)
		if err != nil {
			return nil, err
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bounds, err := DocumentBounds(doc)
		if err != nil {
			return nil, err
		}

		asset := &Asset{
			Path:     assetPath,
			Document: doc,
			Bounds:   bounds,
		}

		if build != nil {
			if asset.Handle, err = build(fsys, assetPath, doc); err != nil {
				return nil, err
			}
		}

		return asset, nil

	})

}

// DocumentBounds computes the axis-aligned bounds of a glTF document's default scene (or its first scene, if no
// default is set), using the POSITION accessors' min / max values transformed through the node hierarchy.
func DocumentBounds(doc *gltf.Document) (Dimensions, error) {

	if len(doc.Scenes) == 0 {
		return Dimensions{}, ErrNoScene
	}

	sceneIndex := 0
	if doc.Scene != nil {
		sceneIndex = *doc.Scene
	}

	if sceneIndex < 0 || sceneIndex >= len(doc.Scenes) {
		return Dimensions{}, fmt.Errorf("%w: scene index %d out of range", ErrNoScene, sceneIndex)
	}

	bounds := NewEmptyDimensions()

	var walk func(nodeIndex int, parent Matrix4, depth int)

	walk = func(nodeIndex int, parent Matrix4, depth int) {

		if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) || depth > len(doc.Nodes) {
			return
		}

		node := doc.Nodes[nodeIndex]
		world := parent.Mult(nodeTransform(node))

		if node.Mesh != nil && *node.Mesh >= 0 && *node.Mesh < len(doc.Meshes) {
			bounds = bounds.Union(meshBounds(doc, doc.Meshes[*node.Mesh]).Transform(world))
		}

		for _, child := range node.Children {
			walk(child, world, depth+1)
		}

	}

	for _, n := range doc.Scenes[sceneIndex].Nodes {
		walk(n, NewMatrix4(), 0)
	}

	return bounds, nil

}

func nodeTransform(node *gltf.Node) Matrix4 {

	if m := node.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return NewMatrix4ColumnMajor(m)
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()

	return NewMatrix4Translate(t[0], t[1], t[2]).
		Mult(NewQuaternion(r[0], r[1], r[2], r[3]).ToMatrix4()).
		Mult(NewMatrix4Scale(s[0], s[1], s[2]))

}

func meshBounds(doc *gltf.Document, mesh *gltf.Mesh) Dimensions {

	bounds := NewEmptyDimensions()

	for _, prim := range mesh.Primitives {

		index, ok := prim.Attributes[gltf.POSITION]
		if !ok || index < 0 || index >= len(doc.Accessors) {
			continue
		}

		accessor := doc.Accessors[index]
		if len(accessor.Min) < 3 || len(accessor.Max) < 3 {
			continue
		}

		bounds = bounds.Union(NewDimensions(
			NewVector(accessor.Min[0], accessor.Min[1], accessor.Min[2]),
			NewVector(accessor.Max[0], accessor.Max[1], accessor.Max[2]),
		))

	}

	return bounds

}
