package classifier

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// LexiconSink receives reloaded lexicon sets. The learning state implements
// this so operator edits to the lexicon file take effect without a restart.
type LexiconSink interface {
	ReplaceLexicons(set models.LexiconSet)
}

// Watcher hot-reloads the lexicon file into a sink when it changes on disk.
type Watcher struct {
	path    string
	sink    LexiconSink
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchLexicons starts watching the lexicon file's directory and pushes
// every successful reload into the sink. Malformed edits are logged and
// skipped; the previous lexicons stay active.
func WatchLexicons(path string, sink LexiconSink, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory rather than the file: editors replace files on
	// save, which would otherwise drop the watch.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		sink:    sink,
		logger:  logger,
		watcher: fw,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			set, err := LoadLexicons(w.path)
			if err != nil {
				w.logger.Warn("lexicon reload skipped",
					zap.String("path", w.path), zap.Error(err))
				continue
			}
			w.sink.ReplaceLexicons(set)
			w.logger.Info("lexicons reloaded", zap.String("path", w.path))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("lexicon watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
