package main

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ctrlterm/ptyproc"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// relay drives one ptyproc.PtyProcess end-to-end: it wires the outer
// terminal's size and raw mode onto the child's pty, forwards
// SIGWINCH/SIGINT/SIGTERM, copies bytes in both directions, and
// optionally mirrors the byte stream over a WebSocket (see
// websocket.go).
type relay struct {
	proc  *ptyproc.PtyProcess
	outer *outerTerm
	ws    *wsMirror // nil if no relay_url configured
	log   *logrus.Entry
}

func newRelay(proc *ptyproc.PtyProcess, outer *outerTerm, ws *wsMirror, log *logrus.Entry) *relay {
	return &relay{proc: proc, outer: outer, ws: ws, log: log}
}

// Run blocks until the child exits.
func (r *relay) Run(ctx context.Context) error {
	if err := r.syncWinsize(); err != nil {
		r.log.WithError(err).Warn("initial syncWinsize failed")
	}
	if err := r.outer.setRaw(); err != nil {
		return err
	}
	defer r.outer.restore()

	if r.ws != nil {
		go r.ws.Run(ctx, r.proc)
	}

	winchCh := make(chan os.Signal, 1)
	signal.Notify(winchCh, unix.SIGWINCH)
	defer signal.Stop(winchCh)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM)
	defer signal.Stop(sigCh)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		for {
			select {
			case <-winchCh:
				if err := r.syncWinsize(); err != nil {
					r.log.WithError(err).Warn("syncWinsize on SIGWINCH failed")
				}
			case sig := <-sigCh:
				if err := r.proc.Signal().SignalGroup(sig.(syscall.Signal)); err != nil {
					r.log.WithError(err).Warn("forwarding signal to child group failed")
				}
			case <-gctx.Done():
				return nil
			}
		}
	})

	group.Go(func() error {
		stream, err := r.proc.GetStream()
		if err != nil {
			return err
		}
		defer stream.Close()

		buf := make([]byte, 4096)
		for {
			n, err := stream.Read(buf)
			if n > 0 {
				os.Stdout.Write(buf[:n])
				if r.ws != nil {
					r.ws.Send(buf[:n])
				}
			}
			if err != nil {
				return err
			}
		}
	})

	group.Go(func() error {
		buf := make([]byte, 256)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				r.writeSplittingSuspend(buf[:n])
			}
			if err != nil {
				return err
			}
		}
	})

	status, waitErr := r.proc.Wait()
	r.log.WithField("status", status.String()).Info("child exited")

	_ = group.Wait() // drain copier goroutines; their errors are expected once the master closes
	return waitErr
}

// writeSplittingSuspend writes data to the master, intercepting Ctrl-Z
// (0x1a) to run the job-control suspend dance instead of forwarding it
// as a literal byte.
func (r *relay) writeSplittingSuspend(data []byte) {
	for len(data) > 0 {
		idx := bytes.IndexByte(data, 0x1a)
		if idx == -1 {
			if _, err := r.proc.Send(data); err != nil {
				r.log.WithError(err).Debug("send to child failed")
			}
			return
		}
		if idx > 0 {
			if _, err := r.proc.Send(data[:idx]); err != nil {
				r.log.WithError(err).Debug("send to child failed")
			}
		}
		r.suspend()
		data = data[idx+1:]
	}
}

// suspend stops the relay and suspends ptysh itself for shell job
// control. When the user resumes (e.g. "fg"), it re-enters raw mode
// and resyncs the window size.
func (r *relay) suspend() {
	r.outer.restore()

	signal.Reset(unix.SIGTSTP)
	_ = unix.Kill(0, unix.SIGTSTP)
	// Execution resumes here after SIGCONT.

	if err := r.outer.setRaw(); err != nil {
		r.log.WithError(err).Warn("setRaw after resume failed")
	}
	if err := r.syncWinsize(); err != nil {
		r.log.WithError(err).Warn("syncWinsize after resume failed")
	}
}

func (r *relay) syncWinsize() error {
	ws, err := r.outer.size()
	if err != nil {
		return err
	}
	return r.proc.Terminal().SetWindowSize(ws)
}
