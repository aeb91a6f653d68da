// Command ptysh drives one child process through a pty, mirroring
// its byte stream to the invoking terminal and, optionally, to a
// WebSocket peer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ctrlterm/ptyproc"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

var version = "dev"

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCommand{}, "")
	subcommands.Register(&versionCommand{}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}

func newLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	return log.WithField("component", "ptysh")
}

// runCommand spawns a command under a pty and relays it to the
// caller's terminal until it exits.
type runCommand struct {
	relayURL string
	session  string
}

func (*runCommand) Name() string     { return "run" }
func (*runCommand) Synopsis() string { return "run a command under a pty and relay it to this terminal" }
func (*runCommand) Usage() string {
	return "run [-relay ws://host/path] [-session name] -- <command> [args...]\n"
}

func (c *runCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.relayURL, "relay", "", "optional WebSocket URL to mirror the session to")
	f.StringVar(&c.session, "session", "default", "session name, used for the single-instance lock")
}

func (c *runCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	args := f.Args()
	if len(args) == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	log := newLogger()

	lock, err := acquireSessionLock(c.session)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer lock.release()

	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Warn("failed to load config, using defaults")
		cfg = defaultConfig()
	}
	if c.relayURL != "" {
		cfg.RelayURL = c.relayURL
	}

	outer, err := newOuterTerm()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ptysh: opening controlling terminal:", err)
		return subcommands.ExitFailure
	}

	spec := ptyproc.DefaultCommandSpec(args[0], args[1:]...)
	if size, err := outer.size(); err == nil {
		spec.InitialSize = size
	}

	proc, err := ptyproc.Spawn(spec)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ptysh: spawn:", err)
		return subcommands.ExitFailure
	}
	defer proc.Close()
	if cfg.TerminateTimeout > 0 {
		proc.SetTerminateTimeout(cfg.TerminateTimeout)
	}

	var mirror *wsMirror
	if cfg.RelayURL != "" {
		mirror = newWSMirror(cfg.RelayURL, os.Getenv("PTYSH_RELAY_TOKEN"), log)
	}

	r := newRelay(proc, outer, mirror, log)
	if err := r.Run(ctx); err != nil {
		log.WithError(err).Debug("relay ended")
	}

	status, err := proc.Status()
	if err != nil {
		return subcommands.ExitFailure
	}
	if status.Kind == ptyproc.Exited {
		os.Exit(status.ExitCode)
	}
	return subcommands.ExitSuccess
}

type versionCommand struct{}

func (*versionCommand) Name() string          { return "version" }
func (*versionCommand) Synopsis() string      { return "print ptysh's version" }
func (*versionCommand) Usage() string         { return "version\n" }
func (*versionCommand) SetFlags(*flag.FlagSet) {}
func (*versionCommand) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	fmt.Println("ptysh", version)
	return subcommands.ExitSuccess
}
