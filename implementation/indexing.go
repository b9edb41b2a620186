package implementation

import (
	contextpkg "context"
	"sync"
	"time"

	"github.com/google/uuid"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/tags-lsp/tags"
)

// IndexState is the lifecycle of one index build for one folder.
type IndexState int

const (
	IndexNotStarted IndexState = iota
	IndexCreated
	IndexRunning
	IndexCompleted
)

func (self IndexState) String() string {
	switch self {
	case IndexNotStarted:
		return "not started"
	case IndexCreated:
		return "created"
	case IndexRunning:
		return "running"
	case IndexCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// DefaultHeartbeat is the interval between progress reports while indexing.
const DefaultHeartbeat = time.Second

// The heartbeat stops at 99; 100 is only reported once the build has exited.
const heartbeatLimit = 99

type indexJob struct {
	state   IndexState
	pending bool
}

// Indexer runs one index build per workspace folder at a time. Builds of
// different folders run concurrently and queries are never blocked by them.
type Indexer struct {
	builder   tags.Builder
	heartbeat time.Duration

	lock sync.Mutex
	jobs map[string]*indexJob
	wait sync.WaitGroup
}

func NewIndexer(builder tags.Builder, heartbeat time.Duration) *Indexer {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Indexer{
		builder:   builder,
		heartbeat: heartbeat,
		jobs:      make(map[string]*indexJob),
	}
}

// State returns the lifecycle state of the most recent build for the folder.
func (self *Indexer) State(folder protocol.WorkspaceFolder) IndexState {
	self.lock.Lock()
	defer self.lock.Unlock()
	if job, ok := self.jobs[folder.URI]; ok {
		return job.state
	}
	return IndexNotStarted
}

// Schedule starts a build for the folder in the background. If one is already
// running, a single follow-up build is queued instead. Progress goes to client,
// which may be nil.
func (self *Indexer) Schedule(context contextpkg.Context, folder protocol.WorkspaceFolder, client Client, workDoneProgress bool) {
	self.lock.Lock()
	job, ok := self.jobs[folder.URI]
	if ok && (job.state == IndexCreated || job.state == IndexRunning) {
		job.pending = true
		self.lock.Unlock()
		log.Debugf("indexing already running for %s, queued", folder.URI)
		return
	}
	job = &indexJob{state: IndexCreated}
	self.jobs[folder.URI] = job
	self.wait.Add(1)
	self.lock.Unlock()

	go func() {
		defer self.wait.Done()
		for {
			self.run(context, folder, newProgress(client, workDoneProgress, uuid.NewString()))

			// Completed is only set in the same critical section that reads pending.
			self.lock.Lock()
			if !job.pending || context.Err() != nil {
				job.state = IndexCompleted
				self.lock.Unlock()
				log.Debugf("indexing %s: %s", folder.URI, IndexCompleted)
				return
			}
			job.pending = false
			job.state = IndexCreated
			self.lock.Unlock()
		}
	}()
}

// Wait blocks until every scheduled build has finished.
func (self *Indexer) Wait() {
	self.wait.Wait()
}

func (self *Indexer) setState(folder protocol.WorkspaceFolder, state IndexState) {
	self.lock.Lock()
	defer self.lock.Unlock()
	if job, ok := self.jobs[folder.URI]; ok {
		job.state = state
	}
	log.Debugf("indexing %s: %s", folder.URI, state)
}

func (self *Indexer) run(context contextpkg.Context, folder protocol.WorkspaceFolder, progress *progress) {
	path, err := tags.URIPath(folder.URI)
	if err != nil {
		log.Errorf("cannot index %s: %s", folder.URI, err.Error())
		return
	}

	progress.create(context)
	progress.begin("Indexing", path)

	build, err := self.builder.Start(context, path)
	if err != nil {
		log.Errorf("cannot index %s: %s", path, err.Error())
		progress.end()
		return
	}
	self.setState(folder, IndexRunning)
	log.Infof("indexing %s", path)

	ticker := time.NewTicker(self.heartbeat)
	defer ticker.Stop()

heartbeat:
	for percentage := 1; percentage <= heartbeatLimit; percentage++ {
		progress.report(path, percentage)

		select {
		case <-context.Done():
			break heartbeat
		case <-ticker.C:
		}

		if build.Exited() {
			break
		}
	}

	if err := build.Wait(); err != nil {
		log.Warningf("indexing %s finished with: %s", path, err.Error())
	} else {
		log.Infof("indexed %s", path)
	}

	progress.report(path, 100)
	progress.end()
}
