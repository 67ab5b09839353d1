package summary

// Outcome is the resolved state of a test or of the whole suite.
type Outcome string

const (
	OutcomeOk      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeIgnored Outcome = "ignored"
	OutcomeTimeout Outcome = "timeout"
)

// Marker returns the visual indicator of the outcome.
func (o Outcome) Marker() string {
	switch o {
	case OutcomeOk:
		return "✅"
	case OutcomeFailed:
		return "❌"
	case OutcomeIgnored:
		return "⏭️"
	case OutcomeTimeout:
		return "⏱️"
	}
	return "❔"
}

// IsFailure reports whether the outcome counts against the run.
func (o Outcome) IsFailure() bool {
	return o == OutcomeFailed || o == OutcomeTimeout
}

// TestRecord is the final state of one named test.
type TestRecord struct {
	Name    string
	Outcome Outcome

	// Elapsed is the test execution time in seconds, nil when not measured.
	Elapsed *float64

	// Stdout is the captured output of a failed test.
	Stdout *string

	// Message is the ignore reason of an ignored test.
	Message *string
}

// SuiteSummary holds the suite counters and the overall outcome.
type SuiteSummary struct {
	Total       uint64
	Passed      uint64
	Failed      uint64
	Ignored     uint64
	Measured    uint64
	FilteredOut uint64

	// Elapsed is the suite execution time in seconds, nil when not reported.
	Elapsed *float64

	// Outcome is OutcomeOk or OutcomeFailed.
	Outcome Outcome

	// Derived is true when no suite result was seen and the counters were
	// computed from the test records.
	Derived bool
}

// TestRun is the aggregate of one test execution, ready for rendering.
type TestRun struct {
	Summary SuiteSummary

	// Tests are ordered by the first time each name was seen.
	Tests []TestRecord

	// Incomplete lists, in first-seen order, the tests which started but
	// never reported a result.
	Incomplete []string

	// Expected is the test count announced by the suite start, if any.
	Expected *uint64
}

// Failures returns the failed and timed out records in run order.
func (tr *TestRun) Failures() []TestRecord {
	failures := []TestRecord{}
	for _, rec := range tr.Tests {
		if rec.Outcome.IsFailure() {
			failures = append(failures, rec)
		}
	}
	return failures
}
