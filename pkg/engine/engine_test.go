package engine

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/srxwire-net/srxwire/pkg/device"
	"github.com/srxwire-net/srxwire/pkg/util"
)

// expectedCommands is the exact directive sequence for the canonical
// simulated request: interface ge-0/0/1, IP 192.168.10.1/24, zone trust.
var expectedCommands = []string{
	"set interfaces ge-0/0/1 unit 0 family inet address 192.168.10.1/24",
	"set interfaces ge-0/0/1 unit 0 description 'Automated configuration'",
	"set security zones security-zone trust interfaces ge-0/0/1.0",
	"set security policies from-zone trust to-zone untrust policy allow-http match source-address any",
	"set security policies from-zone trust to-zone untrust policy allow-http match destination-address any",
	"set security policies from-zone trust to-zone untrust policy allow-http match application junos-http",
	"set security policies from-zone trust to-zone untrust policy allow-http then permit",
}

func simulatedRequest() *Request {
	return &Request{
		Address:     "192.168.1.1",
		Simulate:    true,
		Interface:   "ge-0/0/1",
		InterfaceIP: "192.168.10.1/24",
		Zone:        "trust",
	}
}

// captureRecorder remembers everything recorded.
type captureRecorder struct {
	mu       sync.Mutex
	requests []Request
	outcomes []*Outcome
}

func (r *captureRecorder) Record(req Request, outcome *Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	r.outcomes = append(r.outcomes, outcome)
}

func (r *captureRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outcomes)
}

// fakeSession is a scriptable Session for failure injection.
type fakeSession struct {
	address     string
	connectErr  error
	failApplyOn string // Apply fails for directives containing this
	commitErr   error
	checkErr    error
	connectGate chan struct{} // if set, Connect blocks until closed
	connectedCh chan struct{} // if set, closed once Connect is entered

	mu        sync.Mutex
	staged    []string
	rollbacks int
	commits   int
	connected bool
	once      sync.Once
}

func (f *fakeSession) Connect(ctx context.Context) (*device.Facts, error) {
	if f.connectedCh != nil {
		f.once.Do(func() { close(f.connectedCh) })
	}
	if f.connectGate != nil {
		select {
		case <-f.connectGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	return &device.Facts{Hostname: "fake", Model: "vSRX", Version: "20.4R3.8"}, nil
}

func (f *fakeSession) Apply(directive string) error {
	if f.failApplyOn != "" && strings.Contains(directive, f.failApplyOn) {
		return &device.ApplyError{Directive: directive, Reason: "injected failure"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staged = append(f.staged, directive)
	return nil
}

func (f *fakeSession) Check(ctx context.Context) error { return f.checkErr }
func (f *fakeSession) Commit(ctx context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
	f.staged = nil
	return nil
}

func (f *fakeSession) Rollback() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rollbacks++
	f.staged = nil
	return nil
}

func (f *fakeSession) RunningConfig(ctx context.Context) (string, error) {
	return "set system host-name fake\n", nil
}

func (f *fakeSession) Facts() *device.Facts { return &device.Facts{Hostname: "fake"} }
func (f *fakeSession) Address() string      { return f.address }
func (f *fakeSession) State() device.State  { return device.StateConnected }
func (f *fakeSession) Close() error         { return nil }

func TestConfigure_SimulatedSuccess(t *testing.T) {
	rec := &captureRecorder{}
	eng := New(WithRecorder(rec))

	outcome, err := eng.Configure(context.Background(), simulatedRequest())
	if err != nil {
		t.Fatalf("Configure returned error: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("outcome not successful: %s", outcome.Message)
	}
	if !outcome.Simulated {
		t.Error("outcome should be marked simulated")
	}
	if !reflect.DeepEqual(outcome.Commands, expectedCommands) {
		t.Errorf("commands mismatch:\ngot:  %v\nwant: %v", outcome.Commands, expectedCommands)
	}

	completed := outcome.CompletedSteps()
	if !reflect.DeepEqual(completed, Sequence()) {
		t.Errorf("completed steps = %v, want full sequence", completed)
	}
	if outcome.FailedStep != "" {
		t.Errorf("FailedStep = %q, want empty on success", outcome.FailedStep)
	}

	// Exactly one audit record whose outcome equals the returned one.
	if rec.len() != 1 {
		t.Fatalf("recorded %d entries, want 1", rec.len())
	}
	if rec.outcomes[0] != outcome {
		t.Error("recorded outcome should be the returned outcome")
	}
	if rec.requests[0].Password != "" {
		t.Error("recorded request should have the password elided")
	}
}

func TestConfigure_IncludeHTTPS(t *testing.T) {
	req := simulatedRequest()
	req.IncludeHTTPS = true

	outcome, err := New().Configure(context.Background(), req)
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if len(outcome.Commands) != len(expectedCommands)+4 {
		t.Fatalf("got %d commands, want %d", len(outcome.Commands), len(expectedCommands)+4)
	}
	last := outcome.Commands[len(outcome.Commands)-1]
	want := "set security policies from-zone trust to-zone untrust policy allow-https then permit"
	if last != want {
		t.Errorf("last command = %q, want %q", last, want)
	}
}

func TestConfigure_InvalidCIDRRejectedBeforeConnect(t *testing.T) {
	rec := &captureRecorder{}
	factoryCalled := false
	eng := New(
		WithRecorder(rec),
		WithSessionFactory(func(req *Request) device.Session {
			factoryCalled = true
			return device.NewMockSession(req.Address)
		}),
	)

	req := simulatedRequest()
	req.InterfaceIP = "192.168.10.1" // missing mask

	outcome, err := eng.Configure(context.Background(), req)
	if outcome != nil {
		t.Error("outcome should be nil for validation failure")
	}
	var verr *util.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T (%v), want *util.ValidationError", err, err)
	}
	if factoryCalled {
		t.Error("no session should be created for an invalid request")
	}
	if rec.len() != 0 {
		t.Error("validation failures must not be recorded")
	}
}

func TestConfigure_MissingCredentialsForRealDevice(t *testing.T) {
	req := &Request{
		Address:     "192.168.1.1",
		Simulate:    false,
		Interface:   "ge-0/0/1",
		InterfaceIP: "192.168.10.1/24",
		Zone:        "trust",
	}
	_, err := New().Configure(context.Background(), req)
	if !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("error = %v, want validation failure", err)
	}
}

func TestConfigure_FailureInjection(t *testing.T) {
	fake := &fakeSession{address: "192.168.1.1", failApplyOn: "policy allow-http"}
	rec := &captureRecorder{}
	eng := New(
		WithRecorder(rec),
		WithSessionFactory(func(req *Request) device.Session { return fake }),
	)

	outcome, err := eng.Configure(context.Background(), simulatedRequest())
	if err != nil {
		t.Fatalf("Configure returned error: %v", err)
	}
	if outcome.Success {
		t.Fatal("outcome should not be successful")
	}
	if outcome.FailedStep != StepCreatePolicies {
		t.Errorf("FailedStep = %s, want %s", outcome.FailedStep, StepCreatePolicies)
	}

	wantCompleted := []Step{StepConnect, StepBackup, StepLoadInterfaceConfig, StepConfigureIP, StepAssignZone}
	if !reflect.DeepEqual(outcome.CompletedSteps(), wantCompleted) {
		t.Errorf("completed = %v, want %v", outcome.CompletedSteps(), wantCompleted)
	}
	if fake.rollbacks != 1 {
		t.Errorf("rollbacks = %d, want exactly 1", fake.rollbacks)
	}
	if fake.commits != 0 {
		t.Errorf("commits = %d, want 0", fake.commits)
	}
	if outcome.Commands != nil {
		t.Error("failed outcome should not advertise emitted commands")
	}

	// Failed attempts are still recorded.
	if rec.len() != 1 {
		t.Errorf("recorded %d entries, want 1", rec.len())
	}
}

func TestConfigure_ConnectFailureNoRollback(t *testing.T) {
	fake := &fakeSession{
		address:    "192.168.1.1",
		connectErr: &device.ConnectionError{Address: "192.168.1.1", Kind: device.ErrUnreachable, Err: errors.New("refused")},
	}
	eng := New(WithSessionFactory(func(req *Request) device.Session { return fake }))

	outcome, err := eng.Configure(context.Background(), simulatedRequest())
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if outcome.Success {
		t.Fatal("outcome should fail")
	}
	if outcome.FailedStep != StepConnect {
		t.Errorf("FailedStep = %s, want Connect", outcome.FailedStep)
	}
	if len(outcome.CompletedSteps()) != 0 {
		t.Errorf("completed steps = %v, want none", outcome.CompletedSteps())
	}
	if fake.rollbacks != 0 {
		t.Errorf("rollbacks = %d, want 0 when Connect itself failed", fake.rollbacks)
	}
}

func TestConfigure_OutcomePrefixInvariant(t *testing.T) {
	// For every failure point, the completed steps must be a strict prefix
	// of the canonical sequence and FailedStep must be the next step.
	seq := Sequence()
	injections := []struct {
		name string
		fake *fakeSession
		want Step
	}{
		{"apply-ip", &fakeSession{address: "a", failApplyOn: "family inet address"}, StepConfigureIP},
		{"apply-zone", &fakeSession{address: "a", failApplyOn: "security zones"}, StepAssignZone},
		{"check", &fakeSession{address: "a", checkErr: errors.New("bad config")}, StepValidate},
		{"commit", &fakeSession{address: "a", commitErr: &device.CommitError{Address: "a", Err: errors.New("rejected")}}, StepCommit},
	}

	for _, tt := range injections {
		t.Run(tt.name, func(t *testing.T) {
			eng := New(WithSessionFactory(func(req *Request) device.Session { return tt.fake }))
			outcome, err := eng.Configure(context.Background(), simulatedRequest())
			if err != nil {
				t.Fatalf("Configure: %v", err)
			}
			if outcome.FailedStep != tt.want {
				t.Fatalf("FailedStep = %s, want %s", outcome.FailedStep, tt.want)
			}
			completed := outcome.CompletedSteps()
			for i, s := range completed {
				if seq[i] != s {
					t.Errorf("completed[%d] = %s, want %s (must be canonical prefix)", i, s, seq[i])
				}
			}
			if len(completed) >= len(seq) {
				t.Error("failed outcome must have a strict prefix of the sequence")
			}
			if seq[len(completed)] != tt.want {
				t.Errorf("FailedStep %s should immediately follow the completed prefix", tt.want)
			}
			if tt.fake.rollbacks != 1 {
				t.Errorf("rollbacks = %d, want 1", tt.fake.rollbacks)
			}
		})
	}
}

func TestConfigure_SameAddressRejected(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{})
	slow := &fakeSession{address: "192.168.1.1", connectGate: gate, connectedCh: entered}

	eng := New(
		WithTimeout(5*time.Second),
		WithSessionFactory(func(req *Request) device.Session { return slow }),
	)

	done := make(chan *Outcome, 1)
	go func() {
		outcome, _ := eng.Configure(context.Background(), simulatedRequest())
		done <- outcome
	}()

	<-entered // first attempt is inside Connect, holding the address

	_, err := eng.Configure(context.Background(), simulatedRequest())
	if !errors.Is(err, util.ErrDeviceBusy) {
		t.Errorf("second concurrent attempt error = %v, want ErrDeviceBusy", err)
	}

	close(gate)
	if outcome := <-done; !outcome.Success {
		t.Errorf("first attempt should succeed: %s", outcome.Message)
	}

	// The address is released afterwards.
	if _, err := eng.Configure(context.Background(), simulatedRequest()); err != nil {
		t.Errorf("attempt after release failed: %v", err)
	}
}

func TestConfigure_DifferentAddressesParallel(t *testing.T) {
	rec := &captureRecorder{}
	eng := New(WithRecorder(rec))

	reqA := simulatedRequest()
	reqB := simulatedRequest()
	reqB.Address = "192.168.1.2"

	var wg sync.WaitGroup
	results := make([]*Outcome, 2)
	errs := make([]error, 2)
	for i, req := range []*Request{reqA, reqB} {
		wg.Add(1)
		go func(i int, req *Request) {
			defer wg.Done()
			results[i], errs[i] = eng.Configure(context.Background(), req)
		}(i, req)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("attempt %d error: %v", i, errs[i])
		}
		if !results[i].Success {
			t.Errorf("attempt %d failed: %s", i, results[i].Message)
		}
	}
	if rec.len() != 2 {
		t.Errorf("recorded %d entries, want 2 independent entries", rec.len())
	}
}

func TestValidate_DryRunStopsBeforeCommit(t *testing.T) {
	fake := &fakeSession{address: "192.168.1.1"}
	eng := New(WithSessionFactory(func(req *Request) device.Session { return fake }))

	outcome, err := eng.Validate(context.Background(), simulatedRequest())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("dry run should succeed: %s", outcome.Message)
	}
	if !outcome.DryRun {
		t.Error("outcome should be marked as dry run")
	}
	if fake.commits != 0 {
		t.Errorf("commits = %d, want 0 for dry run", fake.commits)
	}
	if fake.rollbacks != 1 {
		t.Errorf("rollbacks = %d, want 1 (staged batch discarded)", fake.rollbacks)
	}

	completed := outcome.CompletedSteps()
	if completed[len(completed)-1] != StepValidate {
		t.Errorf("last completed step = %s, want Validate", completed[len(completed)-1])
	}
	for _, s := range completed {
		if s == StepCommit {
			t.Error("dry run must not execute Commit")
		}
	}
}

func TestValidate_SimulatedAlwaysSucceeds(t *testing.T) {
	outcome, err := New().Validate(context.Background(), simulatedRequest())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !outcome.Success {
		t.Errorf("simulated dry run should always report success: %s", outcome.Message)
	}
}

func TestTestConnection_Idempotent(t *testing.T) {
	eng := New()
	ctx := context.Background()

	f1, err := eng.TestConnection(ctx, "192.168.1.1", device.Credentials{}, true)
	if err != nil {
		t.Fatalf("first TestConnection: %v", err)
	}
	f2, err := eng.TestConnection(ctx, "192.168.1.1", device.Credentials{}, true)
	if err != nil {
		t.Fatalf("second TestConnection: %v", err)
	}
	if *f1 != *f2 {
		t.Errorf("facts differ between identical calls: %+v vs %+v", f1, f2)
	}
}

func TestEngine_Backup(t *testing.T) {
	eng := New()
	rec, err := eng.Backup(context.Background(), "192.168.1.1", device.Credentials{}, true)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if rec.Address != "192.168.1.1" {
		t.Errorf("Address = %s", rec.Address)
	}
	if !rec.Simulated {
		t.Error("record should be marked simulated")
	}
	if rec.Config == "" {
		t.Error("config snapshot should not be empty")
	}
	if rec.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestProgressCallback_OrderAndTiming(t *testing.T) {
	var mu sync.Mutex
	var seen []Step
	eng := New(WithProgress(func(r StepResult) {
		mu.Lock()
		seen = append(seen, r.Step)
		mu.Unlock()
	}))

	if _, err := eng.Configure(context.Background(), simulatedRequest()); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if !reflect.DeepEqual(seen, Sequence()) {
		t.Errorf("progress events = %v, want canonical sequence", seen)
	}
}

func TestConfigure_SpecExample(t *testing.T) {
	// request {address=192.168.1.1, interface=ge-0/0/1, ip=192.168.10.1/24,
	// zone=trust, simulate=true}
	outcome, err := New().Configure(context.Background(), &Request{
		Address:     "192.168.1.1",
		Simulate:    true,
		Interface:   "ge-0/0/1",
		InterfaceIP: "192.168.10.1/24",
		Zone:        "trust",
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("success = false: %s", outcome.Message)
	}

	want := "set interfaces ge-0/0/1 unit 0 family inet address 192.168.10.1/24"
	found := false
	for _, c := range outcome.Commands {
		if c == want {
			found = true
		}
	}
	if !found {
		t.Errorf("commands missing %q", want)
	}
}
