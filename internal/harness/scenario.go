package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a declarative test scenario.
// Scenarios create doubles, configure stubs, execute a flow of calls, and
// assert on the observed trace.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Surfaces lists paths to CUE surface files to compile and load.
	// Paths are relative to the scenario file location.
	Surfaces []string `yaml:"surfaces,omitempty"`

	// Doubles declares the doubles the scenario creates before the flow.
	Doubles []DoubleDecl `yaml:"doubles"`

	// Configure registers stubs before the flow runs.
	Configure []StubStep `yaml:"configure,omitempty"`

	// Expect registers ordered expectations before the flow runs.
	Expect []ExpectStep `yaml:"expect,omitempty"`

	// Calls contains the main flow - a sequence of dispatches with
	// optional result validation.
	Calls []CallStep `yaml:"calls"`

	// Assertions validate the final trace.
	// Supported types: calls_contain, call_order, call_count, verify
	Assertions []Assertion `yaml:"assertions"`
}

// DoubleDecl declares a double to create.
type DoubleDecl struct {
	// Name is the double's pinned identity. Call steps and assertions
	// reference doubles by this name.
	Name string `yaml:"name"`

	// Surface is the name of a surface loaded via Scenario.Surfaces.
	// Empty means the double is open (any operation allowed).
	Surface string `yaml:"surface,omitempty"`

	// Mode is "plain" (default), "verifying", or "spy".
	// Spy doubles need a real binding supplied via WithRealBinding.
	Mode string `yaml:"mode,omitempty"`
}

// StubStep registers one stub on a double.
// Exactly one of Args (exact pattern) or Arity (wildcard pattern) must be
// set, and exactly one of Returns or Raise.
type StubStep struct {
	// Double names the target double.
	Double string `yaml:"double"`

	// Operation is the stubbed operation name.
	Operation string `yaml:"operation"`

	// Args are the exact argument values to match. `args: []` matches a
	// zero-argument call.
	Args []interface{} `yaml:"args,omitempty"`

	// Arity declares a wildcard pattern matching any arguments of this
	// count. Mutually exclusive with Args.
	Arity *int `yaml:"arity,omitempty"`

	// Returns is the value the stub produces.
	Returns interface{} `yaml:"returns,omitempty"`

	// Raise makes the stub produce an injected error instead.
	Raise *RaiseClause `yaml:"raise,omitempty"`
}

// RaiseClause describes an injected error.
type RaiseClause struct {
	// Kind classifies the error. Empty defaults to "RuntimeError".
	Kind string `yaml:"kind,omitempty"`

	// Message is the error text.
	Message string `yaml:"message"`
}

// ExpectStep registers one ordered expectation on a double.
// Pattern semantics match StubStep: Args for exact, Arity for wildcard.
type ExpectStep struct {
	Double    string        `yaml:"double"`
	Operation string        `yaml:"operation"`
	Args      []interface{} `yaml:"args,omitempty"`
	Arity     *int          `yaml:"arity,omitempty"`
}

// CallStep dispatches one call in the main flow.
type CallStep struct {
	// Double names the target double.
	Double string `yaml:"double"`

	// Operation is the operation to invoke.
	Operation string `yaml:"operation"`

	// Args are the call arguments. Omitted means a zero-argument call.
	Args []interface{} `yaml:"args,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, no validation is performed (call assumed to succeed).
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a call step.
type ExpectClause struct {
	// Result is the expected return value.
	Result interface{} `yaml:"result,omitempty"`

	// Error expects the call to fail instead of returning.
	Error *ErrorClause `yaml:"error,omitempty"`
}

// ErrorClause describes an expected call failure.
// Code matches dispatch errors (UNSTUBBED_CALL, ARITY_MISMATCH,
// UNKNOWN_OPERATION, DOUBLE_CLOSED); Kind/Message match injected errors.
type ErrorClause struct {
	Code    string `yaml:"code,omitempty"`
	Kind    string `yaml:"kind,omitempty"`
	Message string `yaml:"message,omitempty"`
}

// Assertion validates the observed trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "calls_contain": Check an applied call appears with these args
	// - "call_order": Check operations appear in order
	// - "call_count": Check an operation was applied exactly N times
	// - "verify": Run ordered expectation verification on a double
	Type string `yaml:"type"`

	// Double scopes the assertion to one double.
	// Required for calls_contain, call_count, and verify; optional for
	// call_order (empty means across all doubles).
	Double string `yaml:"double,omitempty"`

	// Operation is the operation name (calls_contain, call_count).
	Operation string `yaml:"operation,omitempty"`

	// Args are the expected call arguments (calls_contain).
	// Omitted means any arguments.
	Args []interface{} `yaml:"args,omitempty"`

	// Count is the expected number of occurrences (call_count).
	Count int `yaml:"count,omitempty"`

	// Operations is the expected operation order (call_order).
	Operations []string `yaml:"operations,omitempty"`
}

// Assertion type constants.
const (
	AssertCallsContain = "calls_contain"
	AssertCallOrder    = "call_order"
	AssertCallCount    = "call_count"
	AssertVerify       = "verify"
)

// Double mode constants for DoubleDecl.Mode.
const (
	ModePlain     = "plain"
	ModeVerifying = "verifying"
	ModeSpy       = "spy"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, "")
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving surface paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve surface paths relative to base path BEFORE validation
	for i, surfacePath := range scenario.Surfaces {
		if !filepath.IsAbs(surfacePath) && basePath != "" {
			scenario.Surfaces[i] = filepath.Join(basePath, surfacePath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Doubles) == 0 {
		return fmt.Errorf("doubles list is required and must be non-empty")
	}

	if len(s.Calls) == 0 {
		return fmt.Errorf("calls list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, surfacePath := range s.Surfaces {
		if _, err := os.Stat(surfacePath); os.IsNotExist(err) {
			return fmt.Errorf("surface file not found: %s", surfacePath)
		}
	}

	names := make(map[string]bool, len(s.Doubles))
	for i, decl := range s.Doubles {
		if decl.Name == "" {
			return fmt.Errorf("doubles[%d]: name is required", i)
		}
		if names[decl.Name] {
			return fmt.Errorf("doubles[%d]: duplicate double name %q", i, decl.Name)
		}
		names[decl.Name] = true

		switch decl.Mode {
		case "", ModePlain, ModeVerifying, ModeSpy:
		default:
			return fmt.Errorf("doubles[%d]: unknown mode %q", i, decl.Mode)
		}
		if decl.Surface != "" && len(s.Surfaces) == 0 {
			return fmt.Errorf("doubles[%d]: surface %q referenced but no surfaces loaded", i, decl.Surface)
		}
	}

	for i, step := range s.Configure {
		if err := validatePatternStep("configure", i, step.Double, step.Operation, step.Args, step.Arity, names); err != nil {
			return err
		}
		if step.Returns != nil && step.Raise != nil {
			return fmt.Errorf("configure[%d]: returns and raise are mutually exclusive", i)
		}
		if step.Raise != nil && step.Raise.Message == "" {
			return fmt.Errorf("configure[%d]: raise.message is required", i)
		}
	}

	for i, step := range s.Expect {
		if err := validatePatternStep("expect", i, step.Double, step.Operation, step.Args, step.Arity, names); err != nil {
			return err
		}
	}

	for i, step := range s.Calls {
		if step.Double == "" {
			return fmt.Errorf("calls[%d]: double is required", i)
		}
		if !names[step.Double] {
			return fmt.Errorf("calls[%d]: unknown double %q", i, step.Double)
		}
		if step.Operation == "" {
			return fmt.Errorf("calls[%d]: operation is required", i)
		}
		if step.Expect != nil && step.Expect.Result != nil && step.Expect.Error != nil {
			return fmt.Errorf("calls[%d].expect: result and error are mutually exclusive", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, names); err != nil {
			return err
		}
	}

	return nil
}

// validatePatternStep checks the shared double/operation/pattern fields of
// configure and expect steps.
func validatePatternStep(section string, index int, double, operation string, args []interface{}, arity *int, names map[string]bool) error {
	if double == "" {
		return fmt.Errorf("%s[%d]: double is required", section, index)
	}
	if !names[double] {
		return fmt.Errorf("%s[%d]: unknown double %q", section, index, double)
	}
	if operation == "" {
		return fmt.Errorf("%s[%d]: operation is required", section, index)
	}
	if args != nil && arity != nil {
		return fmt.Errorf("%s[%d]: args and arity are mutually exclusive", section, index)
	}
	if args == nil && arity == nil {
		return fmt.Errorf("%s[%d]: one of args (exact) or arity (wildcard) is required", section, index)
	}
	if arity != nil && *arity < 0 {
		return fmt.Errorf("%s[%d]: arity must be non-negative", section, index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, names map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCallsContain:
		if a.Double == "" {
			return fmt.Errorf("assertions[%d]: double is required for calls_contain", index)
		}
		if a.Operation == "" {
			return fmt.Errorf("assertions[%d]: operation is required for calls_contain", index)
		}
	case AssertCallOrder:
		if len(a.Operations) == 0 {
			return fmt.Errorf("assertions[%d]: operations list is required for call_order", index)
		}
	case AssertCallCount:
		if a.Double == "" {
			return fmt.Errorf("assertions[%d]: double is required for call_count", index)
		}
		if a.Operation == "" {
			return fmt.Errorf("assertions[%d]: operation is required for call_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for call_count", index)
		}
	case AssertVerify:
		if a.Double == "" {
			return fmt.Errorf("assertions[%d]: double is required for verify", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Double != "" && !names[a.Double] {
		return fmt.Errorf("assertions[%d]: unknown double %q", index, a.Double)
	}

	return nil
}
