// Package summary folds the parsed event stream into a TestRun.
package summary

import (
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/event"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/logging"
)

// entry is the in-progress state of a test; a nil outcome means the test has
// started but not finished.
type entry struct {
	record  TestRecord
	outcome *Outcome
}

// Aggregator consumes events in order and builds one TestRun. It is owned by
// a single goroutine and handed off through Result.
type Aggregator struct {
	logger log.FieldLogger

	tests map[string]*entry
	order []string

	suite    *SuiteSummary
	expected *uint64
}

// NewAggregator creates an empty Aggregator. A nil logger discards diagnostics.
func NewAggregator(logger log.FieldLogger) *Aggregator {
	return &Aggregator{
		logger: logging.OrDiscard(logger),
		tests:  make(map[string]*entry),
	}
}

// Add folds a single event into the run.
func (a *Aggregator) Add(ev event.Event) {
	switch e := ev.(type) {
	case event.SuiteStarted:
		count := e.TestCount
		a.expected = &count
	case event.SuiteOk:
		a.setSuite(e.SuiteCounts, OutcomeOk)
	case event.SuiteFailed:
		a.setSuite(e.SuiteCounts, OutcomeFailed)
	case event.TestStarted:
		a.lookup(e.Name)
	case event.TestOk:
		a.finish(e.Name, OutcomeOk, e.Elapsed, nil, nil)
	case event.TestFailed:
		a.finish(e.Name, OutcomeFailed, e.Elapsed, e.Stdout, nil)
	case event.TestIgnored:
		a.finish(e.Name, OutcomeIgnored, nil, nil, e.Message)
	case event.TestTimeout:
		a.finish(e.Name, OutcomeTimeout, e.Elapsed, nil, nil)
	default:
		a.logger.Debugf("ignoring unsupported event %T", ev)
	}
}

// lookup returns the entry for name, inserting it in first-seen order.
func (a *Aggregator) lookup(name string) *entry {
	if en, ok := a.tests[name]; ok {
		return en
	}
	en := &entry{record: TestRecord{Name: name}}
	a.tests[name] = en
	a.order = append(a.order, name)
	return en
}

// finish overwrites any previous result of the test: the last result wins.
func (a *Aggregator) finish(name string, outcome Outcome, elapsed *float64, stdout, message *string) {
	en := a.lookup(name)
	if en.outcome != nil {
		a.logger.Debugf("test %q reported again: %s -> %s", name, *en.outcome, outcome)
	}
	en.outcome = &outcome
	en.record = TestRecord{
		Name:    name,
		Outcome: outcome,
		Elapsed: elapsed,
		Stdout:  stdout,
		Message: message,
	}
}

func (a *Aggregator) setSuite(c event.SuiteCounts, outcome Outcome) {
	a.suite = &SuiteSummary{
		Total:       c.Passed + c.Failed + c.Ignored + c.Measured,
		Passed:      c.Passed,
		Failed:      c.Failed,
		Ignored:     c.Ignored,
		Measured:    c.Measured,
		FilteredOut: c.FilteredOut,
		Elapsed:     c.Elapsed,
		Outcome:     outcome,
	}
}

// Result builds the TestRun from everything added so far.
func (a *Aggregator) Result() *TestRun {
	run := &TestRun{
		Tests:      []TestRecord{},
		Incomplete: []string{},
		Expected:   a.expected,
	}
	for _, name := range a.order {
		en := a.tests[name]
		if en.outcome == nil {
			run.Incomplete = append(run.Incomplete, name)
			continue
		}
		run.Tests = append(run.Tests, en.record)
	}

	if a.suite != nil {
		run.Summary = *a.suite
		a.checkConsistency(run)
	} else {
		run.Summary = deriveSummary(run.Tests)
	}
	if len(run.Incomplete) > 0 {
		a.logger.Warnf("%d test(s) started without reporting a result", len(run.Incomplete))
	}
	return run
}

// deriveSummary counts the records when the stream carried no suite result.
func deriveSummary(tests []TestRecord) SuiteSummary {
	s := SuiteSummary{
		Total:   uint64(len(tests)),
		Passed:  countOutcome(tests, OutcomeOk),
		Ignored: countOutcome(tests, OutcomeIgnored),
		Failed: uint64(lo.CountBy(tests, func(r TestRecord) bool {
			return r.Outcome.IsFailure()
		})),
		Outcome: OutcomeOk,
		Derived: true,
	}
	if s.Failed > 0 {
		s.Outcome = OutcomeFailed
	}
	return s
}

func countOutcome(tests []TestRecord, o Outcome) uint64 {
	return uint64(lo.CountBy(tests, func(r TestRecord) bool {
		return r.Outcome == o
	}))
}

// checkConsistency logs when the suite counters disagree with the records;
// the counters are kept as reported.
func (a *Aggregator) checkConsistency(run *TestRun) {
	observed := deriveSummary(run.Tests)
	if observed.Passed != run.Summary.Passed ||
		observed.Failed != run.Summary.Failed ||
		observed.Ignored != run.Summary.Ignored {
		a.logger.Warnf("suite counters (passed=%d failed=%d ignored=%d) differ from test results (passed=%d failed=%d ignored=%d)",
			run.Summary.Passed, run.Summary.Failed, run.Summary.Ignored,
			observed.Passed, observed.Failed, observed.Ignored)
	}
}

// Aggregate drains the parser into a new TestRun. The returned error is the
// parser read error, if any; the run holds whatever was read before it.
func Aggregate(p *event.Parser, logger log.FieldLogger) (*TestRun, error) {
	a := NewAggregator(logger)
	for p.Next() {
		a.Add(p.Event())
	}
	return a.Result(), p.Err()
}
