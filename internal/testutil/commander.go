package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Commander is a fake remote command runner.
type Commander struct {
	mu    sync.Mutex
	calls [][]string
	fail  map[string]string
}

// NewCommander creates a Commander where every command succeeds.
func NewCommander() *Commander {
	return &Commander{fail: make(map[string]string)}
}

// FailOn makes every command whose program is name fail with output.
func (c *Commander) FailOn(name, output string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail[name] = output
}

// Run records argv and returns the configured result.
func (c *Commander) Run(ctx context.Context, argv ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, append([]string(nil), argv...))
	if out, ok := c.fail[argv[0]]; ok {
		return []byte(out), fmt.Errorf("exit status 1")
	}
	return nil, nil
}

// Calls returns the recorded commands.
func (c *Commander) Calls() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.calls...)
}

// CallLines returns the recorded commands joined with spaces.
func (c *Commander) CallLines() []string {
	calls := c.Calls()
	lines := make([]string, len(calls))
	for i, argv := range calls {
		lines[i] = strings.Join(argv, " ")
	}
	return lines
}
