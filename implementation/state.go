package implementation

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/tags-lsp/config"
	"github.com/tminor/tags-lsp/tags"
)

// State is the runtime state shared by all requests. The lock is only held to
// read or update the fields, never across a tool run or a file read.
type State struct {
	lock sync.Mutex

	folders          []protocol.WorkspaceFolder
	documents        documentStore
	config           config.Config
	workDoneProgress bool
	ready            bool
	shutdown         bool
}

func NewState(config config.Config) *State {
	return &State{
		folders:   make([]protocol.WorkspaceFolder, 0),
		documents: newDocumentStore(),
		config:    config,
	}
}

// Snapshot returns a copy of the folder list and the configuration.
func (self *State) Snapshot() ([]protocol.WorkspaceFolder, config.Config) {
	self.lock.Lock()
	defer self.lock.Unlock()
	folders := make([]protocol.WorkspaceFolder, len(self.folders))
	copy(folders, self.folders)
	return folders, self.config
}

// Folders returns a copy of the folder list in registration order.
func (self *State) Folders() []protocol.WorkspaceFolder {
	folders, _ := self.Snapshot()
	return folders
}

func (self *State) initialize(folders []protocol.WorkspaceFolder, workDoneProgress bool) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.folders = folders
	self.workDoneProgress = workDoneProgress
	self.ready = false
}

func (self *State) setReady() {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.ready = true
}

func (self *State) isReady() bool {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.ready && !self.shutdown
}

// checkReady fails unless initialize succeeded and shutdown has not been requested.
func (self *State) checkReady() error {
	self.lock.Lock()
	defer self.lock.Unlock()
	if self.shutdown {
		return tags.NewError(tags.ServerShuttingDown, "server is shutting down", nil, nil)
	}
	if !self.ready {
		return tags.NewError(tags.ServerNotInitialized, "server is not initialized", nil, nil)
	}
	return nil
}

func (self *State) supportsWorkDoneProgress() bool {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.workDoneProgress
}

// changeFolders removes folders by name, then appends the added ones.
func (self *State) changeFolders(added []protocol.WorkspaceFolder, removed []protocol.WorkspaceFolder) {
	self.lock.Lock()
	defer self.lock.Unlock()

	for _, folder := range removed {
		kept := self.folders[:0]
		for _, existing := range self.folders {
			if existing.Name != folder.Name {
				kept = append(kept, existing)
			}
		}
		self.folders = kept
	}
	self.folders = append(self.folders, added...)
}

func (self *State) markShutdown() bool {
	self.lock.Lock()
	defer self.lock.Unlock()
	already := self.shutdown
	self.shutdown = true
	return !already
}

func (self *State) isShutdown() bool {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.shutdown
}

func (self *State) setDocument(uri protocol.DocumentUri, content string) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.documents.set(uri, content)
}

func (self *State) deleteDocument(uri protocol.DocumentUri) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.documents.delete(uri)
}

// DocumentText implements tags.DocumentSource.
func (self *State) DocumentText(uri string) (string, bool) {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.documents.get(uri)
}
