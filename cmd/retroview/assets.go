//go:build !js

package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/solarlune/retroview"
)

// Escape quits on the desktop.
const quitAllowed = true

func openAssets(dir string) (fs.FS, error) {

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("asset directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("asset directory %s: not a directory", dir)
	}

	return os.DirFS(dir), nil

}

// watchAssets reloads the SceneRoot's assets whenever their files change under dir. The returned function stops watching.
func watchAssets(ctx context.Context, dir string, root *retroview.SceneRoot, logger *slog.Logger) (func(), error) {

	watcher, err := retroview.NewAssetWatcher(dir, root.RequestReload, logger)
	if err != nil {
		return nil, err
	}

	if err := watcher.Watch(root.Config.AssetPaths()...); err != nil {
		watcher.Close()
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	go watcher.Run(watchCtx)

	return func() {
		cancel()
		watcher.Close()
	}, nil

}
