package daemon

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"src.tmb.sh/pkg/store"
)

// ServeOpts keeps options that can be passed to Serve.
type ServeOpts struct {
	// If not nil, will be closed when the daemon is ready to serve requests.
	Ready chan<- struct{}
	// Causes the daemon to abort if closed or sent any data. If nil, Serve
	// will set up its own signal channel by listening to SIGINT and SIGTERM.
	Signals <-chan os.Signal
}

// Serve runs the daemon, listening on the unix socket sockpath and recording
// configurations to the database at dbpath, until it is terminated by a
// signal. It returns the exit status.
func Serve(sockpath, dbpath string, opts ServeOpts) int {
	logger.Println("pid is", os.Getpid())
	logger.Println("going to listen", sockpath)
	listener, err := net.Listen("unix", sockpath)
	if err != nil {
		logger.Printf("failed to listen on %s: %v", sockpath, err)
		logger.Println("aborting")
		return 2
	}

	var st store.DBStore
	if s, err := store.NewStore(dbpath); err != nil {
		logger.Printf("failed to create storage: %v", err)
		logger.Println("serving anyway; configurations will not be recorded")
	} else {
		st = s
	}

	svc := newService(st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connCh := make(chan net.Conn, 10)
	listenErrCh := make(chan error, 1)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				listenErrCh <- err
				close(listenErrCh)
				return
			}
			connCh <- conn
		}
	}()

	sigCh := opts.Signals
	if sigCh == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		sigCh = ch
	}

	if opts.Ready != nil {
		close(opts.Ready)
	}

loop:
	for {
		select {
		case sig := <-sigCh:
			logger.Printf("received signal %v", sig)
			break loop
		case err := <-listenErrCh:
			logger.Println("could not listen:", err)
			break loop
		case conn := <-connCh:
			svc.accept(ctx, conn)
		}
	}

	logger.Printf("going to close %v active connections", svc.numClients())
	svc.closeClients()
	if err := os.Remove(sockpath); err != nil {
		logger.Printf("failed to remove socket %s: %v", sockpath, err)
	}
	if st != nil {
		if err := st.Close(); err != nil {
			logger.Printf("failed to close storage: %v", err)
		}
	}
	if err := listener.Close(); err != nil {
		logger.Printf("failed to close listener: %v", err)
	}
	// Ensure that the listener goroutine has exited before returning.
	<-listenErrCh
	return 0
}
