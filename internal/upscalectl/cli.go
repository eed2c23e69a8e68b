// Package upscalectl implements the upscalectl command line client.
package upscalectl

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

const defaultServer = "http://localhost:8080"

// Config carries the persistent flags shared by every subcommand.
type Config struct {
	Server  string
	Timeout time.Duration
	Out     io.Writer
}

// context returns a context bounded by the configured timeout, if any.
func (c *Config) context() (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.Timeout)
	}
	return context.WithCancel(context.Background())
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: upscalectl [--server URL] [--timeout D] <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  upscale <image> [-o out.png] [-m model]")
	fmt.Fprintln(w, "  status")
	fmt.Fprintln(w, "  models")
	fmt.Fprintln(w, "  health")
}

// MainWithArgs runs the CLI and returns the process exit code:
// 0 on success, 1 on a command error and 2 when no command was given.
func MainWithArgs(args []string) int { return mainWithArgs(args, os.Stdout, os.Stderr) }

func mainWithArgs(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	cfg := &Config{Server: defaultServer, Out: stdout}
	root := buildRootCmdWith(cfg)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/upscalectl.
func Main() int { return MainWithArgs(os.Args[1:]) }
