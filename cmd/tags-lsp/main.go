package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/tebeka/atexit"
)

func main() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, os.Interrupt)
	go func() {
		<-signals
		atexit.Exit(1)
	}()

	if err := command.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
