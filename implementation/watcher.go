package implementation

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	protocol "github.com/tliron/glsp/protocol_3_16"
	urlpkg "go.lsp.dev/uri"

	"github.com/tminor/tags-lsp/tags"
)

// DefaultDebounce is how long a folder must stay quiet before it is re-indexed.
const DefaultDebounce = 500 * time.Millisecond

// Files written by the index builder itself.
var tagFiles = map[string]struct{}{
	"GTAGS":  {},
	"GRTAGS": {},
	"GPATH":  {},
	"GSYMS":  {},
}

// Watcher re-indexes a workspace folder after files under it change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(protocol.WorkspaceFolder)
	debounce time.Duration

	lock    sync.Mutex
	folders []protocol.WorkspaceFolder
	timers  map[string]*time.Timer
	closed  bool
}

func NewWatcher(debounce time.Duration, onChange func(protocol.WorkspaceFolder)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	self := &Watcher{
		watcher:  watcher,
		onChange: onChange,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
	go self.run()
	return self, nil
}

// Add watches every directory under the folder, skipping hidden ones.
func (self *Watcher) Add(folder protocol.WorkspaceFolder) {
	root, err := tags.URIPath(folder.URI)
	if err != nil {
		log.Warningf("not watching %s: %s", folder.URI, err.Error())
		return
	}

	self.lock.Lock()
	self.folders = append(self.folders, folder)
	self.lock.Unlock()

	self.addTree(root)
	log.Debugf("watching %s", root)
}

// Remove stops reacting to changes under the folder.
func (self *Watcher) Remove(folder protocol.WorkspaceFolder) {
	self.lock.Lock()
	defer self.lock.Unlock()

	kept := self.folders[:0]
	for _, existing := range self.folders {
		if existing.URI != folder.URI {
			kept = append(kept, existing)
		}
	}
	self.folders = kept

	if timer, ok := self.timers[folder.URI]; ok {
		timer.Stop()
		delete(self.timers, folder.URI)
	}

	if root, err := tags.URIPath(folder.URI); err == nil {
		for _, path := range self.watcher.WatchList() {
			if (path == root) || strings.HasPrefix(path, root+string(filepath.Separator)) {
				self.watcher.Remove(path)
			}
		}
	}
}

func (self *Watcher) Close() error {
	self.lock.Lock()
	self.closed = true
	for uri, timer := range self.timers {
		timer.Stop()
		delete(self.timers, uri)
	}
	self.lock.Unlock()

	return self.watcher.Close()
}

func (self *Watcher) addTree(root string) {
	filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if (path != root) && isHidden(entry.Name()) {
			return filepath.SkipDir
		}
		if err := self.watcher.Add(path); err != nil {
			log.Warningf("cannot watch %s: %s", path, err.Error())
		}
		return nil
	})
}

func (self *Watcher) run() {
	for {
		select {
		case event, ok := <-self.watcher.Events:
			if !ok {
				return
			}
			self.handle(event)

		case err, ok := <-self.watcher.Errors:
			if !ok {
				return
			}
			log.Warningf("watcher: %s", err.Error())
		}
	}
}

func (self *Watcher) handle(event fsnotify.Event) {
	self.lock.Lock()
	defer self.lock.Unlock()
	if self.closed {
		return
	}

	folder, err := tags.FindFolder(self.folders, string(urlpkg.File(event.Name)))
	if err != nil {
		return
	}
	if root, err := tags.URIPath(folder.URI); (err != nil) || ignored(root, event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); (err == nil) && info.IsDir() {
			self.addTree(event.Name)
		}
	}

	if timer, ok := self.timers[folder.URI]; ok {
		timer.Reset(self.debounce)
		return
	}
	self.timers[folder.URI] = time.AfterFunc(self.debounce, func() {
		self.lock.Lock()
		delete(self.timers, folder.URI)
		closed := self.closed
		self.lock.Unlock()

		if !closed {
			log.Debugf("changes under %s", folder.URI)
			self.onChange(folder)
		}
	})
}

// ignored reports whether a change to path under root should not trigger
// indexing.
func ignored(root string, path string) bool {
	if _, ok := tagFiles[filepath.Base(path)]; ok {
		return true
	}
	relative, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(relative), "/") {
		if isHidden(part) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && (name != ".") && (name != "..")
}
