package retroview

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// AssetWatcher watches the directories of assets on disk and calls OnChange with an asset's path whenever any file
// belonging to it (the document itself, its buffers or its textures) is written, created, removed or renamed.
// Bursts of events are collapsed into a single call per asset.
type AssetWatcher struct {
	// OnChange is called, from the watcher's goroutine, with the asset path (as passed to Watch) that changed.
	OnChange func(assetPath string)
	Debounce time.Duration

	root    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu      sync.Mutex
	dirs    map[string][]string // Absolute watched directory -> asset paths it belongs to
	pending map[string]*time.Timer
}

// NewAssetWatcher creates an AssetWatcher for assets stored under the root directory given.
func NewAssetWatcher(root string, onChange func(assetPath string), logger *slog.Logger) (*AssetWatcher, error) {

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &AssetWatcher{
		OnChange: onChange,
		Debounce: 200 * time.Millisecond,
		root:     root,
		watcher:  watcher,
		logger:   logger,
		dirs:     map[string][]string{},
		pending:  map[string]*time.Timer{},
	}, nil

}

// Watch starts watching the directory of each asset path given (relative to the root), including its subdirectories.
// Subdirectories created later are watched as they appear.
func (aw *AssetWatcher) Watch(assetPaths ...string) error {

	aw.mu.Lock()
	defer aw.mu.Unlock()

	for _, assetPath := range assetPaths {

		dir := filepath.Join(aw.root, filepath.FromSlash(filepath.Dir(CleanAssetPath(assetPath))))

		if err := aw.addTree(dir, assetPath); err != nil {
			return err
		}

		aw.logger.Debug("watching asset", "path", assetPath, "dir", dir)

	}

	return nil

}

// addTree watches dir and every directory under it on behalf of the asset path given. aw.mu must be held.
func (aw *AssetWatcher) addTree(dir, assetPath string) error {

	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if _, watched := aw.dirs[p]; !watched {
			if err := aw.watcher.Add(p); err != nil {
				return err
			}
		}
		if !slices.Contains(aw.dirs[p], assetPath) {
			aw.dirs[p] = append(aw.dirs[p], assetPath)
		}
		return nil
	})

}

// watchCreated starts watching a newly created directory for the assets that own its parent.
func (aw *AssetWatcher) watchCreated(p string, owners []string) {

	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		return
	}

	aw.mu.Lock()
	defer aw.mu.Unlock()

	for _, assetPath := range owners {
		if err := aw.addTree(p, assetPath); err != nil {
			aw.logger.Warn("watching new directory failed", "dir", p, "error", err)
			return
		}
	}

	aw.logger.Debug("watching new directory", "dir", p)

}

// Run processes file events until the context is done or the watcher is closed.
func (aw *AssetWatcher) Run(ctx context.Context) {

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			owners := aw.owners(event.Name)
			if event.Op.Has(fsnotify.Create) && len(owners) > 0 {
				aw.watchCreated(event.Name, owners)
			}
			for _, assetPath := range owners {
				aw.schedule(assetPath)
			}
		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return
			}
			aw.logger.Warn("asset watcher error", "error", err)
		}
	}

}

// owners returns the asset paths that a changed file belongs to.
func (aw *AssetWatcher) owners(file string) []string {

	aw.mu.Lock()
	defer aw.mu.Unlock()

	seen := map[string]bool{}
	owners := []string{}

	for dir, assets := range aw.dirs {
		if filepath.Dir(file) != dir && !strings.HasPrefix(file, dir+string(filepath.Separator)) {
			continue
		}
		for _, a := range assets {
			if !seen[a] {
				seen[a] = true
				owners = append(owners, a)
			}
		}
	}

	return owners

}

func (aw *AssetWatcher) schedule(assetPath string) {

	aw.mu.Lock()
	defer aw.mu.Unlock()

	if timer, ok := aw.pending[assetPath]; ok {
		timer.Reset(aw.Debounce)
		return
	}

	aw.pending[assetPath] = time.AfterFunc(aw.Debounce, func() {

		aw.mu.Lock()
		delete(aw.pending, assetPath)
		aw.mu.Unlock()

		aw.logger.Info("asset changed on disk", "path", assetPath)

		if aw.OnChange != nil {
			aw.OnChange(assetPath)
		}

	})

}

// Close stops watching and cancels pending change notifications.
func (aw *AssetWatcher) Close() error {

	aw.mu.Lock()
	for p, timer := range aw.pending {
		timer.Stop()
		delete(aw.pending, p)
	}
	aw.mu.Unlock()

	return aw.watcher.Close()

}
