package implementation

import (
	contextpkg "context"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/tags-lsp/config"
	"github.com/tminor/tags-lsp/tags"
)

const ServerName = "tags-lsp"

// Checker verifies at initialization that an external program can be run.
type Checker interface {
	Check(context contextpkg.Context) error
}

type Options struct {
	Config  config.Config
	Fs      afero.Fs
	Tool    tags.Tool
	Builder tags.Builder
	// Checks run during initialize; the first failure fails the request.
	Checks    []Checker
	Heartbeat time.Duration
	Version   string
	Exit      func(int)
}

// NewOptions wires the real programs named by the configuration.
func NewOptions(config config.Config, version string) Options {
	command := tags.NewCommand(config.Global)
	command.MaxOutput = config.MaxOutput
	command.Timeout = config.QueryTimeout
	builder := tags.NewGtagsBuilder(config.Gtags)

	return Options{
		Config:  config,
		Fs:      afero.NewOsFs(),
		Tool:    command,
		Builder: builder,
		Checks:  []Checker{builder},
		Version: version,
		Exit:    os.Exit,
	}
}

type Server struct {
	state   *State
	files   *tags.FileReader
	index   *tags.Index
	indexer *Indexer
	checks  []Checker
	version string
	exit    func(int)

	// context is cancelled on shutdown and bounds background work.
	context contextpkg.Context
	cancel  contextpkg.CancelFunc

	handler protocol.Handler

	// streams tracks workspace symbol searches delivered as partial results.
	streams sync.WaitGroup

	watcherLock sync.Mutex
	watcher     *Watcher

	clientLock sync.Mutex
	client     Client
}

func NewServer(options Options) *Server {
	if options.Fs == nil {
		options.Fs = afero.NewOsFs()
	}
	if options.Exit == nil {
		options.Exit = os.Exit
	}

	state := NewState(options.Config)
	files := tags.NewFileReader(options.Fs, state)
	context, cancel := contextpkg.WithCancel(contextpkg.Background())

	self := &Server{
		state:   state,
		files:   files,
		index:   tags.NewIndex(options.Tool, files, options.Config.LowPrecision),
		indexer: NewIndexer(options.Builder, options.Heartbeat),
		checks:  options.Checks,
		version: options.Version,
		exit:    options.Exit,
		context: context,
		cancel:  cancel,
	}
	self.handler = self.newHandler()
	return self
}

// Connect sets the client that background work reports to.
func (self *Server) Connect(client Client) {
	self.clientLock.Lock()
	defer self.clientLock.Unlock()
	self.client = client
}

func (self *Server) currentClient() Client {
	self.clientLock.Lock()
	defer self.clientLock.Unlock()
	return self.client
}

func (self *Server) State() *State {
	return self.state
}

func (self *Server) Indexer() *Indexer {
	return self.indexer
}

// Wait blocks until background indexing and streamed searches have finished.
func (self *Server) Wait() {
	self.indexer.Wait()
	self.streams.Wait()
}

// Close stops the watcher and kills running index builds. It is safe to call
// more than once.
func (self *Server) Close() {
	self.cancel()
	self.setWatcher(nil)
}

// setWatcher replaces the current watcher, closing the previous one.
func (self *Server) setWatcher(watcher *Watcher) {
	self.watcherLock.Lock()
	previous := self.watcher
	self.watcher = watcher
	self.watcherLock.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			log.Warningf("closing watcher: %s", err.Error())
		}
	}
}

func (self *Server) currentWatcher() *Watcher {
	self.watcherLock.Lock()
	defer self.watcherLock.Unlock()
	return self.watcher
}

// folderOf resolves the folder owning uri from the current folder list.
func (self *Server) folderOf(uri protocol.DocumentUri) (protocol.WorkspaceFolder, error) {
	return tags.FindFolder(self.state.Folders(), uri)
}

// symbolAt resolves the owning folder and then the token under the cursor.
// The folder is checked first so that a file outside every folder never reads
// anything or runs the tool.
func (self *Server) symbolAt(uri protocol.DocumentUri, position protocol.Position) (protocol.WorkspaceFolder, string, error) {
	folder, err := self.folderOf(uri)
	if err != nil {
		return folder, "", err
	}

	lines, err := self.files.Lines(uri)
	if err != nil {
		return folder, "", err
	}

	line, column := int(position.Line), int(position.Character)
	if line < len(lines) {
		column = tags.ByteColumn(lines[line], column)
	}
	symbol, err := tags.SymbolAtPosition(lines, line, column)
	if err != nil {
		return folder, "", err
	}

	return folder, symbol, nil
}

// requestContext bounds a request by the server lifetime.
func (self *Server) requestContext() (contextpkg.Context, contextpkg.CancelFunc) {
	return contextpkg.WithCancel(self.context)
}
