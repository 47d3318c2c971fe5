// Package xexec runs external tools and captures their output so failures
// can be reported with the tool's own diagnostics.
package xexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command describes one process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string // appended to the current environment
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result holds the exit code and captured output of a finished process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Combined returns stderr followed by stdout, trimmed.
func (r Result) Combined() string {
	return strings.TrimSpace(strings.TrimSpace(r.Stderr) + "\n" + strings.TrimSpace(r.Stdout))
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// OS runs commands as child processes.
type OS struct{}

// Run executes cmd and returns exit code, stdout and stderr. A non-zero exit
// is returned as an *exec.ExitError together with the captured output.
func (OS) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	var outBuf, errBuf bytes.Buffer
	c.Stdout = &outBuf
	c.Stderr = &errBuf
	err := c.Run()
	res := Result{Stdout: outBuf.String(), Stderr: errBuf.String()}
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			res.ExitCode = ee.ExitCode()
			return res, err
		}
		// non-exit error (e.g., command not found)
		res.ExitCode = -1
		return res, fmt.Errorf("exec %s: %w", cmd.Name, err)
	}
	return res, nil
}

// Split turns a configured command line such as "npx apollo" into the
// program name and its leading arguments.
func Split(line string) (string, []string) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return "", nil
	}
	return f[0], f[1:]
}
