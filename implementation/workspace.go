package implementation

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// protocol.WorkspaceDidChangeWorkspaceFoldersFunc signature
func (self *Server) WorkspaceDidChangeWorkspaceFolders(context *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	added := params.Event.Added
	removed := params.Event.Removed
	self.state.changeFolders(added, removed)

	watcher := self.currentWatcher()
	for _, folder := range removed {
		log.Infof("removed workspace folder: %s", folder.URI)
		if watcher != nil {
			watcher.Remove(folder)
		}
	}
	for _, folder := range added {
		log.Infof("added workspace folder: %s", folder.URI)
		if watcher != nil {
			watcher.Add(folder)
		}
		self.schedule(folder)
	}
	return nil
}
