package harness

// TraceEvent records one step of scenario execution.
// Calls and their outcomes interleave in the trace so golden comparison
// captures the full dispatch history.
type TraceEvent struct {
	Type      string      `json:"type"` // "call", "return" or "error"
	Double    string      `json:"double,omitempty"`
	Operation string      `json:"operation,omitempty"`
	Args      interface{} `json:"args,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	ErrCode   string      `json:"error_code,omitempty"`
	ErrKind   string      `json:"error_kind,omitempty"`
	Message   string      `json:"message,omitempty"`
	Seq       int64       `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if all expect clauses and assertions hold.
	Pass bool `json:"pass"`

	// Trace contains all calls and outcomes in execution order.
	// Used for trace assertions and golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCallTrace adds a dispatched call to the trace.
func (r *Result) AddCallTrace(double, operation string, args interface{}, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:      "call",
		Double:    double,
		Operation: operation,
		Args:      args,
		Seq:       seq,
	})
}

// AddReturnTrace adds a successful outcome to the trace.
func (r *Result) AddReturnTrace(double, operation string, result interface{}, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:      "return",
		Double:    double,
		Operation: operation,
		Result:    result,
		Seq:       seq,
	})
}

// AddErrorTrace adds a failed outcome to the trace.
// code is set for dispatch errors, kind for injected errors.
func (r *Result) AddErrorTrace(double, operation, code, kind, message string, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:      "error",
		Double:    double,
		Operation: operation,
		ErrCode:   code,
		ErrKind:   kind,
		Message:   message,
		Seq:       seq,
	})
}
