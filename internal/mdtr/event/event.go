// Package event holds the typed records found in a test runner JSON stream
// and the tolerant line parser producing them.
package event

// Record type discriminants (field "type").
const (
	TypeSuite = "suite"
	TypeTest  = "test"
)

// Record event discriminants (field "event").
const (
	KindStarted = "started"
	KindOk      = "ok"
	KindFailed  = "failed"
	KindIgnored = "ignored"
	KindTimeout = "timeout"
)

// Event is one classified record. The set of implementations is closed:
// SuiteStarted, SuiteOk, SuiteFailed, TestStarted, TestOk, TestFailed,
// TestIgnored and TestTimeout.
type Event interface {
	isEvent()
}

// SuiteCounts are the counters carried by a suite terminal event.
type SuiteCounts struct {
	Passed      uint64
	Failed      uint64
	Ignored     uint64
	Measured    uint64
	FilteredOut uint64

	// Elapsed is the suite execution time in seconds, nil when not reported.
	Elapsed *float64
}

type SuiteStarted struct {
	TestCount uint64
}

type SuiteOk struct {
	SuiteCounts
}

type SuiteFailed struct {
	SuiteCounts
}

type TestStarted struct {
	Name string
}

type TestOk struct {
	Name    string
	Elapsed *float64
}

type TestFailed struct {
	Name    string
	Elapsed *float64
	Stdout  *string
}

type TestIgnored struct {
	Name string
	// Message is the optional ignore reason, e.g. from #[ignore = "..."].
	Message *string
}

type TestTimeout struct {
	Name    string
	Elapsed *float64
}

func (SuiteStarted) isEvent() {}
func (SuiteOk) isEvent()      {}
func (SuiteFailed) isEvent()  {}
func (TestStarted) isEvent()  {}
func (TestOk) isEvent()       {}
func (TestFailed) isEvent()   {}
func (TestIgnored) isEvent()  {}
func (TestTimeout) isEvent()  {}
