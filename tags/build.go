package tags

import (
	contextpkg "context"
	"os/exec"
)

// Builder starts index builds.
type Builder interface {
	Start(context contextpkg.Context, dir string) (Build, error)
}

// Build is a running index build.
type Build interface {
	// Exited reports, without blocking, whether the build has finished.
	Exited() bool
	// Wait blocks until the build has finished.
	Wait() error
}

// GtagsBuilder runs gtags(1) with incremental update.
type GtagsBuilder struct {
	Program string
	Args    []string
}

func NewGtagsBuilder(program string) *GtagsBuilder {
	return &GtagsBuilder{Program: program, Args: []string{"-i"}}
}

func (self *GtagsBuilder) Start(context contextpkg.Context, dir string) (Build, error) {
	// stdin, stdout and stderr stay nil, which attaches them to the null device.
	command := exec.CommandContext(context, self.Program, self.Args...)
	command.Dir = dir
	if err := command.Start(); err != nil {
		return nil, newError(ToolSpawnFailed, "cannot execute index builder", map[string]interface{}{
			"program": self.Program,
			"cwd":     dir,
		}, err)
	}

	build := &processBuild{done: make(chan struct{})}
	go func() {
		build.err = command.Wait()
		close(build.done)
	}()
	return build, nil
}

// Check verifies once that the builder can be started at all.
func (self *GtagsBuilder) Check(context contextpkg.Context) error {
	return (&Command{Program: self.Program}).Check(context)
}

type processBuild struct {
	done chan struct{}
	err  error
}

func (self *processBuild) Exited() bool {
	select {
	case <-self.done:
		return true
	default:
		return false
	}
}

func (self *processBuild) Wait() error {
	<-self.done
	return self.err
}
