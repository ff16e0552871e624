package prefabs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change says which part of the prefab tree an edited file belongs to.
type Change int

const (
	ChangeOther Change = iota
	ChangeTiles
	ChangeAvatar
	ChangeNav
	ChangeNPCs
	ChangeScript
)

// Classify maps an edited file path to the prefab it invalidates.
func Classify(path string) Change {
	if isScriptFile(path) {
		return ChangeScript
	}
	switch strings.ToLower(filepath.Base(path)) {
	case "tiles.yaml":
		return ChangeTiles
	case "avatar.yaml":
		return ChangeAvatar
	case "nav.yaml":
		return ChangeNav
	case "npcs.yaml":
		return ChangeNPCs
	}
	return ChangeOther
}

// DebounceInterval is how long a file must stay quiet before its edit is
// reported.
const DebounceInterval = 100 * time.Millisecond

// Watcher reports edits to spec and script files, debounced per file.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// WatchPrefabDirs watches the on-disk prefab tree next to the working
// directory. It returns nil without error when there is none, e.g. when
// running a shipped binary that only has the embedded copies.
func WatchPrefabDirs() (*Watcher, error) {
	var dirs []string
	for _, dir := range []string{"prefabs", filepath.Join("prefabs", "scripts")} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil, nil
	}
	return NewWatcher(dirs...)
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	// each file gets a timer that is pushed back by every new event, so
	// only the last write of a burst is reported
	done := make(chan struct{})
	defer close(done)
	fired := make(chan string)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isSpecFile(event.Name) && !isScriptFile(event.Name) {
				continue
			}
			if t, ok := pending[event.Name]; ok {
				t.Reset(DebounceInterval)
				continue
			}
			name := event.Name
			pending[name] = time.AfterFunc(DebounceInterval, func() {
				select {
				case fired <- name:
				case <-done:
				}
			})
		case name := <-fired:
			delete(pending, name)
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
