package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/srxwire-net/srxwire/pkg/backup"
	"github.com/srxwire-net/srxwire/pkg/device"
	"github.com/srxwire-net/srxwire/pkg/util"
)

// SessionFactory produces a session for a request. Injected so tests can
// substitute fakes and callers can tune transport parameters.
type SessionFactory func(req *Request) device.Session

// Recorder receives the final outcome of every configuration attempt.
// Request validation failures are rejected before a Recorder ever sees them.
type Recorder interface {
	Record(req Request, outcome *Outcome)
}

// ProgressFunc is invoked after each step completes (or fails), so displayed
// progress always reflects true step timing.
type ProgressFunc func(StepResult)

// Engine orchestrates the staged apply sequence. One attempt at a time per
// device address; attempts against different addresses run in parallel,
// each owning its session exclusively.
type Engine struct {
	sessions SessionFactory
	recorder Recorder
	progress ProgressFunc
	backups  *backup.Store
	timeout  time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder sets the audit recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithSessionFactory overrides session construction.
func WithSessionFactory(f SessionFactory) Option {
	return func(e *Engine) { e.sessions = f }
}

// WithProgress sets the step-completion callback.
func WithProgress(p ProgressFunc) Option {
	return func(e *Engine) { e.progress = p }
}

// WithBackupStore persists the Backup step's snapshot to disk.
func WithBackupStore(s *backup.Store) Option {
	return func(e *Engine) { e.backups = s }
}

// WithTimeout bounds session I/O (connect, apply, commit, backup query).
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// New creates an engine with the default session factory: a mock session
// when the request asks for simulation, an SSH session otherwise.
func New(opts ...Option) *Engine {
	e := &Engine{
		timeout:  device.DefaultConnectTimeout,
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sessions == nil {
		e.sessions = e.defaultFactory
	}
	return e
}

func (e *Engine) defaultFactory(req *Request) device.Session {
	if req.Simulate {
		return device.NewMockSession(req.Address)
	}
	creds := device.Credentials{Username: req.Username, Password: req.Password}
	return device.NewSSHSession(req.Address, creds, e.timeout)
}

// Configure runs the full staged sequence for the request and records the
// outcome. Returns a ValidationError before any session work for malformed
// requests, or a DeviceBusyError when an attempt for the same address is
// already in flight. Step-level failures are folded into the outcome, never
// returned as errors.
func (e *Engine) Configure(ctx context.Context, req *Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !e.acquire(req.Address) {
		return nil, &util.DeviceBusyError{Address: req.Address}
	}
	defer e.release(req.Address)

	outcome := e.run(ctx, req, false)
	e.record(req, outcome)
	return outcome, nil
}

// Validate performs a dry run: the same sequence up to and including the
// commit check, then a rollback. No changes are committed. In simulated
// mode this always succeeds for a valid request.
func (e *Engine) Validate(ctx context.Context, req *Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !e.acquire(req.Address) {
		return nil, &util.DeviceBusyError{Address: req.Address}
	}
	defer e.release(req.Address)

	outcome := e.run(ctx, req, true)
	e.record(req, outcome)
	return outcome, nil
}

// TestConnection opens a session, gathers device facts, and closes it.
func (e *Engine) TestConnection(ctx context.Context, address string, creds device.Credentials, simulate bool) (*device.Facts, error) {
	req := &Request{
		Address:  address,
		Username: creds.Username,
		Password: creds.Password,
		Simulate: simulate,
	}
	sess := e.sessions(req)
	defer sess.Close()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return sess.Connect(ctx)
}

// Backup captures a configuration snapshot outside the apply sequence.
func (e *Engine) Backup(ctx context.Context, address string, creds device.Credentials, simulate bool) (*backup.Record, error) {
	req := &Request{
		Address:  address,
		Username: creds.Username,
		Password: creds.Password,
		Simulate: simulate,
	}
	sess := e.sessions(req)
	defer sess.Close()

	if _, err := sess.Connect(ctx); err != nil {
		return nil, &backup.Error{Address: address, Err: err}
	}

	rec, err := backup.Create(ctx, sess)
	if err != nil {
		return nil, err
	}
	if e.backups != nil {
		if path, err := e.backups.Save(rec); err != nil {
			util.WithDevice(address).Warnf("Could not persist backup: %v", err)
		} else {
			util.WithDevice(address).Infof("Backup saved to %s", path)
		}
	}
	return rec, nil
}

// stepFunc executes one step and returns a human-readable detail plus the
// directives it emitted, if any.
type stepFunc func(ctx context.Context) (detail string, commands []string, err error)

// run executes the staged sequence against a fresh session. dryRun stops
// after the Validate step and rolls the staged batch back instead of
// committing.
func (e *Engine) run(ctx context.Context, req *Request, dryRun bool) *Outcome {
	log := util.WithDevice(req.Address)
	sess := e.sessions(req)
	defer sess.Close()

	outcome := &Outcome{
		Simulated: req.Simulate,
		DryRun:    dryRun,
		Timestamp: time.Now(),
	}

	var emitted []string
	stage := func(cmds []string) error {
		for _, c := range cmds {
			if err := sess.Apply(c); err != nil {
				return err
			}
		}
		emitted = append(emitted, cmds...)
		return nil
	}

	plan := []struct {
		step Step
		fn   stepFunc
	}{
		{StepConnect, func(ctx context.Context) (string, []string, error) {
			facts, err := sess.Connect(ctx)
			if err != nil {
				return "", nil, err
			}
			return fmt.Sprintf("connected to %s (%s %s)", facts.Hostname, facts.Model, facts.Version), nil, nil
		}},
		{StepBackup, func(ctx context.Context) (string, []string, error) {
			rec, err := backup.Create(ctx, sess)
			if err != nil {
				return "", nil, err
			}
			detail := fmt.Sprintf("captured %d-byte configuration snapshot", len(rec.Config))
			if e.backups != nil && !dryRun {
				path, err := e.backups.Save(rec)
				if err != nil {
					log.Warnf("Could not persist backup: %v", err)
				} else {
					detail += ", saved to " + path
				}
			}
			return detail, nil, nil
		}},
		{StepLoadInterfaceConfig, func(ctx context.Context) (string, []string, error) {
			cfg, err := sess.RunningConfig(ctx)
			if err != nil {
				return "", nil, err
			}
			n := countInterfaceStatements(cfg, req.Interface)
			return fmt.Sprintf("loaded current configuration: %d existing statements for %s", n, req.Interface), nil, nil
		}},
		{StepConfigureIP, func(ctx context.Context) (string, []string, error) {
			cmds := interfaceCommands(req.Interface, req.InterfaceIP)
			if err := stage(cmds); err != nil {
				return "", nil, err
			}
			return fmt.Sprintf("staged address %s on %s", req.InterfaceIP, req.Interface), cmds, nil
		}},
		{StepAssignZone, func(ctx context.Context) (string, []string, error) {
			cmds := zoneCommands(req.Zone, req.Interface)
			if err := stage(cmds); err != nil {
				return "", nil, err
			}
			return fmt.Sprintf("staged %s membership in zone %s", req.Interface, req.Zone), cmds, nil
		}},
		{StepCreatePolicies, func(ctx context.Context) (string, []string, error) {
			cmds := policyCommands(req.Zone, req.IncludeHTTPS)
			if err := stage(cmds); err != nil {
				return "", nil, err
			}
			return fmt.Sprintf("staged %d policy directives (%s to untrust)", len(cmds), req.Zone), cmds, nil
		}},
		{StepValidate, func(ctx context.Context) (string, []string, error) {
			if err := sess.Check(ctx); err != nil {
				return "", nil, err
			}
			return "commit check passed", nil, nil
		}},
		{StepCommit, func(ctx context.Context) (string, []string, error) {
			if err := sess.Commit(ctx); err != nil {
				return "", nil, err
			}
			return fmt.Sprintf("committed %d directives", len(emitted)), nil, nil
		}},
	}

	for _, p := range plan {
		if dryRun && p.step == StepCommit {
			break
		}

		stepCtx, cancel := context.WithTimeout(ctx, e.timeout)
		started := time.Now()
		detail, cmds, err := p.fn(stepCtx)
		cancel()

		result := StepResult{
			Step:     p.step,
			OK:       err == nil,
			Detail:   detail,
			Commands: cmds,
			Duration: time.Since(started),
		}
		if err != nil {
			result.Err = err.Error()
		}
		outcome.Steps = append(outcome.Steps, result)
		if e.progress != nil {
			e.progress(result)
		}

		if err != nil {
			log.WithField("step", string(p.step)).Errorf("Step failed: %v", err)
			outcome.FailedStep = p.step
			outcome.Message = fmt.Sprintf("configuration failed at step %s: %v", p.step, err)

			// Discard anything staged after a successful connect. A
			// rollback failure is logged but never masks the step error.
			if p.step != StepConnect {
				if rerr := sess.Rollback(); rerr != nil {
					log.Errorf("Rollback after failed %s: %v", p.step, rerr)
				}
			}
			return outcome
		}

		log.WithField("step", string(p.step)).Debug(detail)
	}

	outcome.Success = true
	outcome.Commands = emitted
	if dryRun {
		// Nothing was committed; drop the staged batch.
		if err := sess.Rollback(); err != nil {
			log.Warnf("Rollback after dry run: %v", err)
		}
		outcome.Message = "validation successful, no changes committed"
	} else {
		outcome.Message = "configuration applied successfully"
	}
	return outcome
}

// acquire marks the address as having an attempt in flight. Returns false
// when one is already running: staged-but-uncommitted directives on a shared
// target must never interleave.
func (e *Engine) acquire(address string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, busy := e.inflight[address]; busy {
		return false
	}
	e.inflight[address] = struct{}{}
	return true
}

func (e *Engine) release(address string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, address)
}

func (e *Engine) record(req *Request, outcome *Outcome) {
	if e.recorder == nil {
		return
	}
	e.recorder.Record(req.Snapshot(), outcome)
}

// countInterfaceStatements counts display-set lines mentioning the interface.
func countInterfaceStatements(cfg, ifname string) int {
	n := 0
	for _, line := range strings.Split(cfg, "\n") {
		if strings.Contains(line, "interfaces "+ifname) {
			n++
		}
	}
	return n
}
