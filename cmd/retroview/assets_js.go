//go:build js

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/solarlune/retroview"
)

// The page owns the canvas, so Escape doesn't end the loop.
const quitAllowed = false

func openAssets(dir string) (fs.FS, error) {

	base, err := url.Parse(dir + "/")
	if err != nil {
		return nil, fmt.Errorf("asset URL %q: %w", dir, err)
	}

	return httpFS{base: base, client: http.DefaultClient}, nil

}

func watchAssets(context.Context, string, *retroview.SceneRoot, *slog.Logger) (func(), error) {
	return nil, errors.New("watching assets isn't supported in the browser")
}

// httpFS is a read-only fs.FS fetching files relative to a base URL, so assets resolve the way the page that serves
// the viewer lays them out.
type httpFS struct {
	base   *url.URL
	client *http.Client
}

func (fsys httpFS) Open(name string) (fs.File, error) {

	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	ref, err := url.Parse(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	resp, err := fsys.client.Get(fsys.base.ResolveReference(ref).String())
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	case resp.StatusCode != http.StatusOK:
		return nil, &fs.PathError{Op: "open", Path: name, Err: errors.New(resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}

	return &httpFile{Reader: bytes.NewReader(data), name: path.Base(name), size: int64(len(data))}, nil

}

type httpFile struct {
	*bytes.Reader
	name string
	size int64
}

func (f *httpFile) Stat() (fs.FileInfo, error) { return f, nil }
func (f *httpFile) Close() error               { return nil }
func (f *httpFile) Name() string               { return f.name }
func (f *httpFile) Size() int64                { return f.size }
func (f *httpFile) Mode() fs.FileMode          { return 0o444 }
func (f *httpFile) ModTime() time.Time         { return time.Time{} }
func (f *httpFile) IsDir() bool                { return false }
func (f *httpFile) Sys() any                   { return nil }
