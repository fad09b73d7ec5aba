package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Dialer starts a server and returns the stream to talk to it.
// Closing the stream must stop the server.
type Dialer func(ctx context.Context) (io.ReadWriteCloser, error)

// Command describes how to launch the server binary.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string // appended to the current environment
	// Stderr receives the server's stderr; nil discards it.
	Stderr io.Writer
}

// ExecDialer launches cmd and talks to it over stdin/stdout.
func ExecDialer(cmd Command) Dialer {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		if cmd.Path == "" {
			return nil, errors.New("server command is empty")
		}
		c := exec.Command(cmd.Path, cmd.Args...) //nolint:gosec // server path comes from project config
		c.Dir = cmd.Dir
		c.Env = append(os.Environ(), cmd.Env...)
		c.Stderr = cmd.Stderr

		stdin, err := c.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("stdin pipe: %w", err)
		}
		stdout, err := c.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("stdout pipe: %w", err)
		}
		if err := c.Start(); err != nil {
			return nil, fmt.Errorf("start %s: %w", cmd.Path, err)
		}
		if err := ctx.Err(); err != nil {
			_ = c.Process.Kill()
			_ = c.Wait()
			return nil, err
		}
		return &procConn{cmd: c, stdin: stdin, stdout: stdout}, nil
	}
}

// procConn reads the server's stdout and writes its stdin.
type procConn struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (p *procConn) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *procConn) Write(b []byte) (int, error) { return p.stdin.Write(b) }

// Close kills the server and reaps it.
func (p *procConn) Close() error {
	_ = p.stdin.Close()
	if p.cmd.ProcessState == nil {
		_ = p.cmd.Process.Kill()
	}
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// убитый процесс всегда завершается с ошибкой
		return nil
	}
	return err
}
