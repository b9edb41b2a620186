package implementation

import (
	contextpkg "context"
	"net"
	"os"
)

// RunStdio serves one client on stdin and stdout until it disconnects.
func (self *Server) RunStdio(debug bool) error {
	log.Info("reading from stdin, writing to stdout")
	NewConnection(self).Serve(contextpkg.Background(), stdrwc{}, debug)
	log.Info("stdin/stdout connection closed")
	return nil
}

// RunTCP accepts clients on address. Every connection gets its own server, and
// exit only ends that connection.
func RunTCP(address string, options Options, debug bool) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	defer listener.Close()

	log.Infof("listening for TCP connections on %s", address)
	options.Exit = func(int) {}

	for id := 1; ; id++ {
		connection, err := listener.Accept()
		if err != nil {
			return err
		}

		log.Infof("received incoming TCP connection #%d", id)
		go func(id int) {
			server := NewServer(options)
			defer server.Close()
			NewConnection(server).Serve(contextpkg.Background(), connection, debug)
			log.Infof("TCP connection #%d closed", id)
		}(id)
	}
}

type stdrwc struct{}

// io.ReadWriteCloser interface
func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

// io.ReadWriteCloser interface
func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

// io.ReadWriteCloser interface
func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
