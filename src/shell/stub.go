package shell

import (
	"context"
	"fmt"
	"sync"
)

// StubResponse is the canned outcome a StubRunner returns for a matching
// command.
type StubResponse struct {
	Result Result
	Err    error
}

// StubRunner records every command it is asked to run and replays canned
// responses. Matching is by command name plus first argument, falling back to
// a default response.
type StubRunner struct {
	mu        sync.Mutex
	responses map[string]StubResponse
	Default   StubResponse
	calls     []Command
}

// NewStubRunner creates an empty StubRunner whose default response succeeds.
func NewStubRunner() *StubRunner {
	return &StubRunner{
		responses: make(map[string]StubResponse),
	}
}

// Respond registers a canned response for commands matching "name arg0".
func (r *StubRunner) Respond(nameAndFirstArg string, resp StubResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[nameAndFirstArg] = resp
}

// Run records the command and returns the matching canned response.
func (r *StubRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cmd)

	key := cmd.Name
	if len(cmd.Args) > 0 {
		key = fmt.Sprintf("%s %s", cmd.Name, cmd.Args[0])
	}
	if resp, ok := r.responses[key]; ok {
		return resp.Result, resp.Err
	}
	return r.Default.Result, r.Default.Err
}

// Calls returns a copy of every command run so far.
func (r *StubRunner) Calls() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := make([]Command, len(r.calls))
	copy(calls, r.calls)
	return calls
}
