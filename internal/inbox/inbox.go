// Package inbox watches a folder for resume files and imports them into the
// editor while it sits on the upload view.
package inbox

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/cvdraft/internal/apperr"
	"github.com/starford/cvdraft/internal/upload"
)

// settleDelay is how long a file must stay quiet before it is imported.
const settleDelay = 300 * time.Millisecond

// Importer receives candidate files. editor.Session satisfies it.
type Importer interface {
	Import(ctx context.Context, f upload.File) (upload.File, error)
}

// ResultCallback is called once per import attempt. err is nil on success.
type ResultCallback func(name string, err error)

// Watch imports .pdf and .docx files created or written under dir until ctx
// is cancelled. Files are validated like any upload; rejected files and
// files arriving while the editor is busy editing are logged and skipped.
func Watch(ctx context.Context, dir string, imp Importer, logger *slog.Logger, cb ResultCallback) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("inbox: started", slog.String("dir", dir))

	pending := make(map[string]struct{})
	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	schedule := func(path string) {
		pending[path] = struct{}{}
		if settleTimer == nil {
			settleTimer = time.NewTimer(settleDelay)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settleDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("inbox: stopped")
			return nil

		case <-settleCh:
			for path := range pending {
				delete(pending, path)
				importFile(ctx, path, imp, logger, cb)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !wanted(ev.Name) {
				continue
			}
			schedule(ev.Name)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: error", slog.String("error", watchErr.Error()))
		}
	}
}

func importFile(ctx context.Context, path string, imp Importer, logger *slog.Logger, cb ResultCallback) {
	name := filepath.Base(path)
	f, err := upload.FromPath(path)
	if err == nil {
		_, err = imp.Import(ctx, f)
	}

	switch {
	case err == nil:
		logger.Info("inbox: imported", slog.String("file", name))
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("inbox: file gone before import", slog.String("file", name))
	case errors.Is(err, apperr.ErrConflict):
		logger.Info("inbox: skipped, editor has a draft open", slog.String("file", name))
	default:
		logger.Warn("inbox: import failed", slog.String("file", name), slog.String("error", err.Error()))
	}
	if cb != nil {
		cb(name, err)
	}
}

func wanted(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".pdf", ".docx":
		return true
	}
	return false
}
