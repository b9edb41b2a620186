package implementation

import (
	"github.com/op/go-logging"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// workspaceCapabilities is the unnamed type of protocol.ServerCapabilities.Workspace.
type workspaceCapabilities = struct {
	WorkspaceFolders *protocol.WorkspaceFoldersServerCapabilities `json:"workspaceFolders,omitempty"`
	FileOperations   *struct {
		DidCreate  *protocol.FileOperationRegistrationOptions `json:"didCreate,omitempty"`
		WillCreate *protocol.FileOperationRegistrationOptions `json:"willCreate,omitempty"`
		DidRename  *protocol.FileOperationRegistrationOptions `json:"didRename,omitempty"`
		WillRename *protocol.FileOperationRegistrationOptions `json:"willRename,omitempty"`
		DidDelete  *protocol.FileOperationRegistrationOptions `json:"didDelete,omitempty"`
		WillDelete *protocol.FileOperationRegistrationOptions `json:"willDelete,omitempty"`
	} `json:"fileOperations,omitempty"`
}

// protocol.InitializeFunc signature
func (self *Server) Initialize(context *glsp.Context, params *protocol.InitializeParams) (interface{}, error) {
	folders := make([]protocol.WorkspaceFolder, 0)
	if params.RootURI != nil {
		folders = append(folders, protocol.WorkspaceFolder{URI: *params.RootURI})
	}
	if len(params.WorkspaceFolders) > 0 {
		folders = append(folders[:0], params.WorkspaceFolders...)
	}

	workDoneProgress := false
	if window := params.Capabilities.Window; (window != nil) && (window.WorkDoneProgress != nil) {
		workDoneProgress = *window.WorkDoneProgress
	}

	self.state.initialize(folders, workDoneProgress)
	for _, folder := range folders {
		log.Infof("workspace folder: %s", folder.URI)
	}

	for _, check := range self.checks {
		if err := check.Check(self.context); err != nil {
			return nil, fail("initialize", err)
		}
	}

	capabilities := self.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull
	prepareRename := true
	capabilities.RenameProvider = &protocol.RenameOptions{PrepareProvider: &prepareRename}
	supported := true
	capabilities.Workspace = &workspaceCapabilities{
		WorkspaceFolders: &protocol.WorkspaceFoldersServerCapabilities{
			Supported:           &supported,
			ChangeNotifications: &protocol.BoolOrString{Value: true},
		},
	}

	self.state.setReady()

	return &protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &self.version,
		},
	}, nil
}

// protocol.InitializedFunc signature
func (self *Server) Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	if !self.state.isReady() {
		log.Warning("initialized before a successful initialize, not indexing")
		return nil
	}

	folders, config := self.state.Snapshot()
	for _, folder := range folders {
		self.schedule(folder)
	}

	if config.Watch {
		watcher, err := NewWatcher(DefaultDebounce, func(folder protocol.WorkspaceFolder) {
			self.schedule(folder)
		})
		if err != nil {
			log.Errorf("cannot watch workspace: %s", err.Error())
			return nil
		}
		for _, folder := range folders {
			watcher.Add(folder)
		}
		self.setWatcher(watcher)
	}

	return nil
}

// protocol.ShutdownFunc signature
func (self *Server) Shutdown(context *glsp.Context) error {
	if self.state.markShutdown() {
		log.Infof("shutting down")
		self.Close()
	}
	return nil
}

// protocol.ExitFunc signature
func (self *Server) Exit(context *glsp.Context) error {
	if self.state.isShutdown() {
		self.exit(0)
	} else {
		self.Close()
		self.exit(1)
	}
	return nil
}

// protocol.SetTraceFunc signature
func (self *Server) SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	switch string(params.Value) {
	case "off":
		setLogLevel(logging.INFO)
	case "message", "messages", "verbose":
		setLogLevel(logging.DEBUG)
	default:
		log.Warningf("unknown trace value: %s", params.Value)
	}
	return nil
}

// schedule starts indexing folder unless the server is shutting down.
func (self *Server) schedule(folder protocol.WorkspaceFolder) {
	if self.state.isShutdown() {
		return
	}
	self.indexer.Schedule(self.context, folder, self.currentClient(), self.state.supportsWorkDoneProgress())
}
