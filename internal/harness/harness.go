package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/standin/internal/engine"
	"github.com/roach88/standin/internal/journal"
	"github.com/roach88/standin/internal/surface"
	"github.com/roach88/standin/internal/testutil"
	"github.com/roach88/standin/internal/value"
)

// Harness is the scenario execution engine.
// It drives the real double engine: stubs register through
// Double.Configure, calls dispatch through Double.Call, and the trace is
// built from the outcomes the engine actually produced.
type Harness struct {
	registry *engine.Registry
	inbox    *engine.Inbox
	journal  *journal.Journal
	doubles  map[string]*engine.Double
	clock    *testutil.DeterministicClock
	logger   *slog.Logger
}

// Option configures scenario execution.
type Option func(*runConfig)

type runConfig struct {
	reals  map[string]engine.RealTarget
	logger *slog.Logger
}

// WithRealBinding supplies the real implementation for a spy double
// declared in the scenario. Real implementations are Go functions and
// cannot be expressed in YAML, so tests bind them programmatically:
//
//	real := surface.NewReal(calc).MustBind("add", addImpl)
//	result, err := harness.Run(scenario, harness.WithRealBinding("calc", real))
func WithRealBinding(doubleName string, target engine.RealTarget) Option {
	return func(c *runConfig) {
		c.reals[doubleName] = target
	}
}

// WithLogger replaces the default discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh registry, inbox, and in-memory journal for
// isolation. Identities are the declared double names, so the same
// scenario always produces a byte-identical trace.
//
// Execution flow:
// 1. Compile surfaces and open a fresh in-memory journal
// 2. Create doubles with pinned identities
// 3. Register stubs and expectations
// 4. Execute call steps with expect validation
// 5. Mirror the inbox into the journal and evaluate assertions
// 6. Auto-verify remaining verifying doubles
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := &runConfig{
		reals:  make(map[string]engine.RealTarget),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(cfg)
	}

	surfaces, err := loadSurfaces(scenario.Surfaces)
	if err != nil {
		return nil, err
	}

	jnl, err := journal.Open(journal.InMemory)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer jnl.Close()

	h := &Harness{
		registry: engine.NewRegistry(
			engine.WithIdentityGenerator(testutil.NewPrefixIdentityGenerator(scenario.Name)),
		),
		inbox:   engine.NewInbox(),
		journal: jnl,
		doubles: make(map[string]*engine.Double, len(scenario.Doubles)),
		clock:   testutil.NewDeterministicClock(),
		logger:  cfg.logger,
	}
	defer h.registry.CloseAll()

	if err := h.createDoubles(scenario.Doubles, surfaces, cfg.reals); err != nil {
		return nil, err
	}

	if err := h.registerStubs(scenario.Configure); err != nil {
		return nil, err
	}

	if err := h.registerExpectations(scenario.Expect); err != nil {
		return nil, err
	}

	result := NewResult()
	if err := h.executeCalls(scenario.Calls, result); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := h.journal.Mirror(ctx, h.inbox.Records()); err != nil {
		return nil, fmt.Errorf("failed to mirror inbox: %w", err)
	}

	actx := &AssertionContext{
		Journal: h.journal,
		Doubles: h.doubles,
		Ctx:     ctx,
	}
	verified := make(map[string]bool)
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx, verified) {
		result.AddError(errMsg)
	}

	// Verifying doubles not covered by an explicit verify assertion are
	// checked automatically at teardown.
	for _, decl := range scenario.Doubles {
		if decl.Mode != ModeVerifying || verified[decl.Name] {
			continue
		}
		if err := h.doubles[decl.Name].Verify(); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

// loadSurfaces compiles every listed CUE file and merges the results.
func loadSurfaces(paths []string) ([]*surface.Surface, error) {
	var surfaces []*surface.Surface
	for _, path := range paths {
		loaded, err := surface.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load surface file %s: %w", path, err)
		}
		surfaces = append(surfaces, loaded...)
	}
	return surfaces, nil
}

// createDoubles builds every declared double with its name pinned as the
// registry identity.
func (h *Harness) createDoubles(decls []DoubleDecl, surfaces []*surface.Surface, reals map[string]engine.RealTarget) error {
	for i, decl := range decls {
		opts := []engine.DoubleOption{engine.WithIdentity(decl.Name)}

		if decl.Surface != "" {
			s, ok := surface.FindByName(surfaces, decl.Surface)
			if !ok {
				return fmt.Errorf("doubles[%d]: surface %q not found in loaded surfaces", i, decl.Surface)
			}
			opts = append(opts, engine.WithSurface(s))
		}

		mode := engine.ModePlain
		switch decl.Mode {
		case ModeVerifying:
			mode = engine.ModeVerifying
		case ModeSpy:
			mode = engine.ModeSpy
			real, ok := reals[decl.Name]
			if !ok {
				return fmt.Errorf("doubles[%d]: spy double %q needs a real binding (use WithRealBinding)", i, decl.Name)
			}
			opts = append(opts, engine.WithReal(real))
		}

		d, err := h.registry.Create(h.inbox, mode, opts...)
		if err != nil {
			return fmt.Errorf("doubles[%d]: %w", i, err)
		}
		h.doubles[decl.Name] = d

		h.logger.Info("double created",
			"double", decl.Name,
			"mode", mode.String(),
			"surface", decl.Surface,
		)
	}
	return nil
}

// registerStubs applies every configure step.
func (h *Harness) registerStubs(steps []StubStep) error {
	for i, step := range steps {
		pattern, err := buildPattern(step.Args, step.Arity)
		if err != nil {
			return fmt.Errorf("configure[%d]: %w", i, err)
		}

		action, err := buildAction(step.Returns, step.Raise)
		if err != nil {
			return fmt.Errorf("configure[%d]: %w", i, err)
		}

		if err := h.doubles[step.Double].Configure(step.Operation, pattern, action); err != nil {
			return fmt.Errorf("configure[%d]: %w", i, err)
		}

		h.logger.Info("stub registered",
			"double", step.Double,
			"operation", step.Operation,
			"pattern", pattern.String(),
		)
	}
	return nil
}

// registerExpectations applies every expect step.
func (h *Harness) registerExpectations(steps []ExpectStep) error {
	for i, step := range steps {
		pattern, err := buildPattern(step.Args, step.Arity)
		if err != nil {
			return fmt.Errorf("expect[%d]: %w", i, err)
		}
		if err := h.doubles[step.Double].Expect(step.Operation, pattern); err != nil {
			return fmt.Errorf("expect[%d]: %w", i, err)
		}
	}
	return nil
}

// executeCalls runs the main flow and validates expect clauses.
//
// Unlike setup failures, a failed expect clause does not abort the run: it
// is recorded on the result so later calls and assertions still execute
// and the full trace stays available for debugging.
func (h *Harness) executeCalls(calls []CallStep, result *Result) error {
	for i, step := range calls {
		args, err := convertArgs(step.Args)
		if err != nil {
			return fmt.Errorf("calls[%d]: failed to convert args: %w", i, err)
		}

		result.AddCallTrace(step.Double, step.Operation, step.Args, h.clock.Next())

		got, callErr := h.doubles[step.Double].Call(step.Operation, args)

		if callErr != nil {
			code, kind, message := classifyError(callErr)
			result.AddErrorTrace(step.Double, step.Operation, code, kind, message, h.clock.Next())
		} else {
			result.AddReturnTrace(step.Double, step.Operation, got, h.clock.Next())
		}

		if step.Expect != nil {
			if errMsg := checkExpectClause(i, step, got, callErr); errMsg != "" {
				result.AddError(errMsg)
			}
		}

		h.logger.Info("call step completed",
			"step", i,
			"double", step.Double,
			"operation", step.Operation,
			"failed", callErr != nil,
		)
	}
	return nil
}

// checkExpectClause validates one call outcome against its expect clause.
// Returns an error message, or empty on success.
func checkExpectClause(index int, step CallStep, got value.Value, callErr error) string {
	expect := step.Expect

	if expect.Error != nil {
		if callErr == nil {
			return fmt.Sprintf("calls[%d]: expected error, got result %v", index, got)
		}
		code, kind, message := classifyError(callErr)
		if expect.Error.Code != "" && expect.Error.Code != code {
			return fmt.Sprintf("calls[%d]: expected error code %s, got %s", index, expect.Error.Code, code)
		}
		if expect.Error.Kind != "" && expect.Error.Kind != kind {
			return fmt.Sprintf("calls[%d]: expected error kind %s, got %s", index, expect.Error.Kind, kind)
		}
		if expect.Error.Message != "" && expect.Error.Message != message {
			return fmt.Sprintf("calls[%d]: expected error message %q, got %q", index, expect.Error.Message, message)
		}
		return ""
	}

	if callErr != nil {
		return fmt.Sprintf("calls[%d]: unexpected error: %v", index, callErr)
	}

	want, err := value.FromGo(expect.Result)
	if err != nil {
		return fmt.Sprintf("calls[%d]: invalid expected result: %v", index, err)
	}
	if !value.Equal(got, want) {
		return fmt.Sprintf("calls[%d]: expected result %v, got %v", index, want, got)
	}
	return ""
}

// classifyError splits a call failure into its code (dispatch errors) or
// kind and message (injected errors).
func classifyError(err error) (code, kind, message string) {
	var dispatchErr *engine.DispatchError
	if errors.As(err, &dispatchErr) {
		return string(dispatchErr.Code), "", dispatchErr.Message
	}

	var injected *engine.InjectedError
	if errors.As(err, &injected) {
		return "", injected.Kind, injected.Message
	}

	// Spy real-implementation errors propagate as-is.
	return "", "", err.Error()
}

// buildPattern converts a step's args/arity pair into a match pattern.
// Scenario validation guarantees exactly one is set.
func buildPattern(rawArgs []interface{}, arity *int) (engine.Pattern, error) {
	if arity != nil {
		return engine.AnyArgs(*arity), nil
	}
	args, err := convertArgs(rawArgs)
	if err != nil {
		return engine.Pattern{}, err
	}
	return engine.ExactArgs(args), nil
}

// buildAction converts a step's returns/raise pair into a stub action.
// Neither set means return null.
func buildAction(returns interface{}, raise *RaiseClause) (engine.Action, error) {
	if raise != nil {
		return engine.Raise(raise.Kind, raise.Message), nil
	}
	if returns == nil {
		return engine.Return(value.Null{}), nil
	}
	v, err := value.FromGo(returns)
	if err != nil {
		return engine.Action{}, fmt.Errorf("invalid returns value: %w", err)
	}
	return engine.Return(v), nil
}

// convertArgs converts YAML-parsed argument lists to engine values.
func convertArgs(raw []interface{}) (value.Array, error) {
	args := make(value.Array, len(raw))
	for i, elem := range raw {
		v, err := value.FromGo(elem)
		if err != nil {
			return nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		args[i] = v
	}
	return args, nil
}
