package system

import (
	"context"
	"strings"
	"sync"

	shellquote "github.com/kballard/go-shellquote"
)

// MockCall records a single invocation seen by the MockExecutor.
type MockCall struct {
	Name string
	Args []string
	Env  []string
}

// String renders the call as a shell-quoted command line.
func (c MockCall) String() string {
	return shellquote.Join(append([]string{c.Name}, c.Args...)...)
}

// MockExecutor implements CommandExecutor for testing. Responses are
// scripted per command-line substring; unmatched commands succeed with
// empty output.
type MockExecutor struct {
	mu        sync.Mutex
	calls     []MockCall
	responses []mockResponse

	// RunErr, if set, is returned from every Run call (simulates a
	// missing binary).
	RunErr error
}

type mockResponse struct {
	match  string
	result Result
}

// NewMockExecutor creates a MockExecutor with no scripted responses.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// Respond scripts a response for any command line containing match.
// Later registrations take precedence.
func (m *MockExecutor) Respond(match string, result Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{match: match, result: result})
}

// Calls returns a copy of all recorded invocations.
func (m *MockExecutor) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallLines returns the recorded invocations as shell-quoted lines.
func (m *MockExecutor) CallLines() []string {
	calls := m.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

func (m *MockExecutor) Run(ctx context.Context, env []string, name string, args ...string) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := MockCall{Name: name, Args: args, Env: env}
	m.calls = append(m.calls, call)

	if m.RunErr != nil {
		return nil, m.RunErr
	}

	line := call.String()
	for i := len(m.responses) - 1; i >= 0; i-- {
		if strings.Contains(line, m.responses[i].match) {
			r := m.responses[i].result
			return &r, nil
		}
	}

	return &Result{}, nil
}

// MockProber implements PortProber for testing. Ports listed in Busy are
// reported as unavailable.
type MockProber struct {
	mu   sync.Mutex
	Busy map[int]bool
}

// NewMockProber creates a MockProber with no busy ports.
func NewMockProber() *MockProber {
	return &MockProber{Busy: make(map[int]bool)}
}

// SetBusy marks a port as bound at the OS level.
func (p *MockProber) SetBusy(port int, busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Busy[port] = busy
}

func (p *MockProber) Free(port int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.Busy[port]
}
