package implementation

import (
	contextpkg "context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/tags-lsp/tags"
)

// fakeBuilder starts builds that exit after a number of polls, or when
// released if polls is negative.
type fakeBuilder struct {
	polls   int
	release chan struct{}

	lock sync.Mutex
	dirs []string
}

func newFakeBuilder(polls int) *fakeBuilder {
	return &fakeBuilder{polls: polls, release: make(chan struct{})}
}

func (self *fakeBuilder) Start(context contextpkg.Context, dir string) (tags.Build, error) {
	self.lock.Lock()
	self.dirs = append(self.dirs, dir)
	self.lock.Unlock()
	return &fakeBuild{polls: int32(self.polls), blocking: self.polls < 0, release: self.release}, nil
}

func (self *fakeBuilder) started() []string {
	self.lock.Lock()
	defer self.lock.Unlock()
	return append([]string(nil), self.dirs...)
}

type fakeBuild struct {
	polls    int32
	blocking bool
	release  chan struct{}
}

func (self *fakeBuild) Exited() bool {
	if self.blocking {
		select {
		case <-self.release:
			return true
		default:
			return false
		}
	}
	return atomic.AddInt32(&self.polls, -1) <= 0
}

func (self *fakeBuild) Wait() error {
	if self.blocking {
		<-self.release
	}
	return nil
}

func percentages(t *testing.T, progress []*protocol.ProgressParams) ([]string, []protocol.UInteger) {
	t.Helper()
	kinds := make([]string, 0)
	values := make([]protocol.UInteger, 0)
	for _, params := range progress {
		switch value := params.Value.(type) {
		case *protocol.WorkDoneProgressBegin:
			kinds = append(kinds, value.Kind)
		case *protocol.WorkDoneProgressReport:
			kinds = append(kinds, value.Kind)
			values = append(values, *value.Percentage)
		case *protocol.WorkDoneProgressEnd:
			kinds = append(kinds, value.Kind)
		default:
			t.Fatalf("unexpected progress value %T", value)
		}
	}
	return kinds, values
}

func TestIndexerReportsProgress(t *testing.T) {
	builder := newFakeBuilder(3)
	indexer := NewIndexer(builder, time.Millisecond)
	recorder := &recorder{}
	folder := protocol.WorkspaceFolder{URI: "file:///proj"}

	assert.Equal(t, IndexNotStarted, indexer.State(folder))
	indexer.Schedule(contextpkg.Background(), folder, recorder, true)
	indexer.Wait()

	assert.Equal(t, IndexCompleted, indexer.State(folder))
	assert.Equal(t, []string{"/proj"}, builder.started())
	assert.Equal(t, []string{methodWorkDoneProgressCreate}, recorder.calls)

	progress := recorder.progress()
	kinds, values := percentages(t, progress)
	assert.Equal(t, []string{"begin", "report", "report", "report", "report", "end"}, kinds)
	assert.Equal(t, []protocol.UInteger{1, 2, 3, 100}, values)

	token := progress[0].Token
	for _, params := range progress {
		assert.Equal(t, token, params.Token)
	}
	begin := progress[0].Value.(*protocol.WorkDoneProgressBegin)
	assert.Equal(t, "/proj", *begin.Message)
}

func TestIndexerHeartbeatStopsAt99(t *testing.T) {
	builder := newFakeBuilder(1000)
	indexer := NewIndexer(builder, time.Microsecond)
	recorder := &recorder{}

	indexer.Schedule(contextpkg.Background(), protocol.WorkspaceFolder{URI: "file:///proj"}, recorder, true)
	indexer.Wait()

	_, values := percentages(t, recorder.progress())
	require.Len(t, values, 100)
	for index := 0; index < 99; index++ {
		assert.Equal(t, protocol.UInteger(index+1), values[index])
	}
	assert.Equal(t, protocol.UInteger(100), values[99])
}

func TestIndexerWithoutProgressCapability(t *testing.T) {
	builder := newFakeBuilder(2)
	indexer := NewIndexer(builder, time.Millisecond)
	recorder := &recorder{}
	folder := protocol.WorkspaceFolder{URI: "file:///proj"}

	indexer.Schedule(contextpkg.Background(), folder, recorder, false)
	indexer.Wait()

	assert.Equal(t, IndexCompleted, indexer.State(folder))
	assert.Equal(t, []string{"/proj"}, builder.started())
	assert.Empty(t, recorder.progress())
	assert.Empty(t, recorder.calls)
}

func TestIndexerRefusedTokenSendsNoProgress(t *testing.T) {
	builder := newFakeBuilder(2)
	indexer := NewIndexer(builder, time.Millisecond)
	recorder := &recorder{refuse: true}

	indexer.Schedule(contextpkg.Background(), protocol.WorkspaceFolder{URI: "file:///proj"}, recorder, true)
	indexer.Wait()

	assert.Equal(t, []string{methodWorkDoneProgressCreate}, recorder.calls)
	assert.Empty(t, recorder.progress())
	assert.Equal(t, []string{"/proj"}, builder.started())
}

// overlapBuilder records how many builds run at the same time.
type overlapBuilder struct {
	active  int32
	maximum int32
}

func (self *overlapBuilder) Start(context contextpkg.Context, dir string) (tags.Build, error) {
	active := atomic.AddInt32(&self.active, 1)
	for {
		maximum := atomic.LoadInt32(&self.maximum)
		if active <= maximum || atomic.CompareAndSwapInt32(&self.maximum, maximum, active) {
			break
		}
	}
	return &overlapBuild{builder: self}, nil
}

type overlapBuild struct {
	builder *overlapBuilder
}

func (self *overlapBuild) Exited() bool {
	return true
}

func (self *overlapBuild) Wait() error {
	atomic.AddInt32(&self.builder.active, -1)
	return nil
}

func TestIndexerNeverOverlapsBuildsOfOneFolder(t *testing.T) {
	builder := &overlapBuilder{}
	indexer := NewIndexer(builder, time.Microsecond)
	folder := protocol.WorkspaceFolder{URI: "file:///proj"}

	for index := 0; index < 500; index++ {
		indexer.Schedule(contextpkg.Background(), folder, nil, false)
		if index%10 == 0 {
			time.Sleep(50 * time.Microsecond)
		}
	}
	indexer.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builder.maximum))
	assert.Equal(t, IndexCompleted, indexer.State(folder))
}

func TestIndexerCoalescesRequests(t *testing.T) {
	builder := newFakeBuilder(-1)
	indexer := NewIndexer(builder, time.Millisecond)
	folder := protocol.WorkspaceFolder{URI: "file:///proj"}

	indexer.Schedule(contextpkg.Background(), folder, nil, false)
	require.Eventually(t, func() bool {
		return indexer.State(folder) == IndexRunning
	}, time.Second, time.Millisecond)

	indexer.Schedule(contextpkg.Background(), folder, nil, false)
	indexer.Schedule(contextpkg.Background(), folder, nil, false)
	close(builder.release)
	indexer.Wait()

	assert.Equal(t, []string{"/proj", "/proj"}, builder.started())
	assert.Equal(t, IndexCompleted, indexer.State(folder))
}

func TestIndexerFoldersAreIndependent(t *testing.T) {
	builder := newFakeBuilder(1)
	indexer := NewIndexer(builder, time.Millisecond)

	indexer.Schedule(contextpkg.Background(), protocol.WorkspaceFolder{URI: "file:///a"}, nil, false)
	indexer.Schedule(contextpkg.Background(), protocol.WorkspaceFolder{URI: "file:///b"}, nil, false)
	indexer.Wait()

	assert.ElementsMatch(t, []string{"/a", "/b"}, builder.started())
}

func TestIndexerSkipsNonFileFolders(t *testing.T) {
	builder := newFakeBuilder(1)
	indexer := NewIndexer(builder, time.Millisecond)
	folder := protocol.WorkspaceFolder{URI: "https://example.com/repo"}

	indexer.Schedule(contextpkg.Background(), folder, nil, true)
	indexer.Wait()

	assert.Empty(t, builder.started())
	assert.Equal(t, IndexCompleted, indexer.State(folder))
}

func TestInitializedIndexesEveryFolder(t *testing.T) {
	server := newTestServer(t, nil, newFakeTool(), false)
	builder := server.indexer.builder.(*fakeBuilder)
	initialize(t, server, "file:///a", "file:///b")

	require.NoError(t, server.Initialized(&glsp.Context{}, &protocol.InitializedParams{}))
	server.Wait()
	assert.ElementsMatch(t, []string{"/a", "/b"}, builder.started())
}

func TestDidSaveSchedulesIndexing(t *testing.T) {
	server := newTestServer(t, nil, newFakeTool(), false)
	builder := server.indexer.builder.(*fakeBuilder)
	initialize(t, server, "file:///a")

	require.NoError(t, server.TextDocumentDidSave(&glsp.Context{}, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a/x.c"},
	}))
	require.NoError(t, server.TextDocumentDidSave(&glsp.Context{}, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///elsewhere/x.c"},
	}))
	server.Wait()
	assert.Equal(t, []string{"/a"}, builder.started())
}
