package event

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/logging"
)

// rawRecord is the union of every field a recognized line may carry. Pointers
// tell a missing field apart from a zero value.
type rawRecord struct {
	Type        string   `json:"type"`
	Event       string   `json:"event"`
	Name        *string  `json:"name"`
	TestCount   *uint64  `json:"test_count"`
	Passed      *uint64  `json:"passed"`
	Failed      *uint64  `json:"failed"`
	Ignored     *uint64  `json:"ignored"`
	Measured    *uint64  `json:"measured"`
	FilteredOut *uint64  `json:"filtered_out"`
	ExecTime    *float64 `json:"exec_time"`
	Stdout      *string  `json:"stdout"`
	Message     *string  `json:"message"`
}

// Parse classifies a single line. It returns false when the line is not a JSON
// object or does not match any known event shape.
func Parse(line []byte) (Event, bool) {
	ev, err := classify(line)
	if err != nil {
		return nil, false
	}
	return ev, true
}

func classify(line []byte) (Event, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, errors.New("empty line")
	}
	if line[0] != '{' {
		return nil, errors.New("not a JSON object")
	}
	rec := rawRecord{}
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, err
	}
	switch rec.Type {
	case TypeSuite:
		return rec.suiteEvent()
	case TypeTest:
		return rec.testEvent()
	}
	return nil, fmt.Errorf("unknown record type %q", rec.Type)
}

func (r *rawRecord) suiteEvent() (Event, error) {
	switch r.Event {
	case KindStarted:
		if r.TestCount == nil {
			return nil, errors.New("suite started without test_count")
		}
		return SuiteStarted{TestCount: *r.TestCount}, nil
	case KindOk, KindFailed:
		if r.Passed == nil || r.Failed == nil {
			return nil, errors.New("suite result without passed/failed counters")
		}
		counts := SuiteCounts{
			Passed:      *r.Passed,
			Failed:      *r.Failed,
			Ignored:     valueOrZero(r.Ignored),
			Measured:    valueOrZero(r.Measured),
			FilteredOut: valueOrZero(r.FilteredOut),
			Elapsed:     r.ExecTime,
		}
		if r.Event == KindOk {
			return SuiteOk{counts}, nil
		}
		return SuiteFailed{counts}, nil
	}
	return nil, fmt.Errorf("unknown suite event %q", r.Event)
}

func (r *rawRecord) testEvent() (Event, error) {
	if r.Name == nil {
		return nil, errors.New("test event without name")
	}
	name := *r.Name
	switch r.Event {
	case KindStarted:
		return TestStarted{Name: name}, nil
	case KindOk:
		return TestOk{Name: name, Elapsed: r.ExecTime}, nil
	case KindFailed:
		return TestFailed{Name: name, Elapsed: r.ExecTime, Stdout: r.Stdout}, nil
	case KindIgnored:
		return TestIgnored{Name: name, Message: r.Message}, nil
	case KindTimeout:
		return TestTimeout{Name: name, Elapsed: r.ExecTime}, nil
	}
	return nil, fmt.Errorf("unknown test event %q", r.Event)
}

func valueOrZero(v *uint64) uint64 {
	if v == nil {
		return 0
	}
	return *v
}

// Parser reads a line oriented stream and yields the recognized events, one at
// a time, in input order. Unrecognized lines are skipped. A Parser is not
// rewindable: to read the stream again create a new Parser over a fresh reader.
//
//	p := event.NewParser(r, logger)
//	for p.Next() {
//		handle(p.Event())
//	}
//	if err := p.Err(); err != nil { ... }
type Parser struct {
	reader *bufio.Reader
	logger log.FieldLogger

	current Event
	err     error
	done    bool

	lines   int
	skipped int
}

// NewParser creates a Parser over r. A nil logger discards diagnostics.
func NewParser(r io.Reader, logger log.FieldLogger) *Parser {
	return &Parser{
		reader: bufio.NewReader(r),
		logger: logging.OrDiscard(logger),
	}
}

// Next advances to the next recognized event, returning false at the end of
// the stream or on a read error.
func (p *Parser) Next() bool {
	p.current = nil
	for !p.done {
		// ReadBytes has no line length limit; failure output can be large.
		data, err := p.reader.ReadBytes('\n')
		if err != nil {
			p.done = true
			if !errors.Is(err, io.EOF) {
				p.err = errors.Wrapf(err, "reading line %d", p.lines+1)
			}
		}
		if len(data) == 0 {
			continue
		}
		p.lines++
		ev, cerr := classify(data)
		if cerr != nil {
			p.skipped++
			p.logger.Debugf("ignoring line %d: %v", p.lines, cerr)
			continue
		}
		p.current = ev
		return true
	}
	return false
}

// Event returns the event produced by the last successful call to Next.
func (p *Parser) Event() Event {
	return p.current
}

// Err returns the first read error. Malformed lines are never errors.
func (p *Parser) Err() error {
	return p.err
}

// Lines returns the number of lines consumed so far.
func (p *Parser) Lines() int {
	return p.lines
}

// Skipped returns the number of lines dropped so far.
func (p *Parser) Skipped() int {
	return p.skipped
}
