// Package asset loads model files off the frame loop's goroutine.
package asset

import (
	"context"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/zeusync/trackrun/internal/core/observability/log"
)

var ErrUnsupportedFormat = errors.New("unsupported model format")

// Loader starts an asynchronous load and returns immediately.
type Loader interface {
	Load(ctx context.Context, path string) *Future
}

// FileLoader reads glTF (.gltf, JSON) files from a file system. Concurrent
// loads of the same path share one read.
type FileLoader struct {
	fsys   fs.FS
	group  singleflight.Group
	logger log.Log
}

func NewFileLoader(fsys fs.FS, logger log.Log) *FileLoader {
	if fsys == nil {
		fsys = os.DirFS(".")
	}
	if logger == nil {
		logger = log.Provide()
	}
	return &FileLoader{fsys: fsys, logger: logger.Named("asset")}
}

func (l *FileLoader) Load(ctx context.Context, name string) *Future {
	f := newFuture(name)
	go func() {
		start := time.Now()
		ch := l.group.DoChan(name, func() (any, error) {
			return l.read(name)
		})

		select {
		case <-ctx.Done():
			l.logger.Warn("model load cancelled", log.String("path", name), log.Error(ctx.Err()))
			f.complete(Model{}, ctx.Err())
		case res := <-ch:
			if res.Err != nil {
				l.logger.Error("model load failed", log.String("path", name), log.Error(res.Err))
				f.complete(Model{}, res.Err)
				return
			}
			m := res.Val.(Model)
			if res.Shared {
				// every caller gets its own root object
				m.Root = m.Root.Clone()
			}
			l.logger.Debug("model loaded",
				log.String("path", name),
				log.Int("nodes", len(m.Nodes)),
				log.Int("clips", len(m.Clips)),
				log.Duration("took", time.Since(start)))
			f.complete(m, nil)
		}
	}()
	return f
}

func (l *FileLoader) read(name string) (Model, error) {
	if !fs.ValidPath(name) {
		return Model{}, errors.Wrapf(fs.ErrInvalid, "model path %q", name)
	}
	ext := strings.ToLower(path.Ext(name))
	if ext != ".gltf" {
		return Model{}, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
	raw, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return Model{}, errors.Wrapf(err, "read model %s", name)
	}
	base := strings.TrimSuffix(path.Base(name), ext)
	m, err := decodeGLTF(base, raw)
	if err != nil {
		return Model{}, errors.Wrapf(err, "decode model %s", name)
	}
	return m, nil
}
