package importer

import (
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher imports supported files dropped into a directory. Existing files
// are drained on start, then filesystem events drive the rest.
type Watcher struct {
	imp     *Importer
	dir     string
	watcher *fsnotify.Watcher
	done    chan struct{}
	logger  *log.Logger
}

// NewWatcher builds a watcher over dir.
func NewWatcher(imp *Importer, dir string) *Watcher {
	return &Watcher{
		imp:    imp,
		dir:    dir,
		done:   make(chan struct{}),
		logger: log.New(os.Stderr, "watch: ", log.LstdFlags),
	}
}

// Start drains files already present, then begins watching. Call Stop to
// shut down.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.dir, 0700); err != nil {
		return err
	}

	w.drainExisting()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return err
	}
	w.watcher = fsw

	go w.loop()
	w.logger.Printf("watching %s for new entries", w.dir)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !Supported(evt.Name) {
				continue
			}
			w.importOne(evt.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) drainExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if Supported(path) {
			w.importOne(path)
		}
	}
}

func (w *Watcher) importOne(path string) {
	result, err := w.imp.ImportFile(path)
	if err != nil {
		w.logger.Printf("import %s failed: %v", path, err)
		return
	}
	if result.Success > 0 {
		w.logger.Printf("imported %s", path)
	}
}
