package api

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/summary"
)

// JUnit documents produced from a test run, and read back by adm parse-junit.
type TestStatus string

const (
	TestStatusPass    TestStatus = "pass"
	TestStatusFail    TestStatus = "fail"
	TestStatusSkipped TestStatus = "skipped"

	DefaultSuiteName = "markdown-test-report"
)

type Skipped struct {
	Message string `xml:"message,attr,omitempty"`
}

type Failure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Text    string `xml:",chardata"`
}

type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type Properties struct {
	Property []Property `xml:"property"`
}

type TestCase struct {
	Name      string     `xml:"name,attr"`
	Classname string     `xml:"classname,attr,omitempty"`
	Time      string     `xml:"time,attr,omitempty"`
	Failure   *Failure   `xml:"failure,omitempty"`
	Skipped   *Skipped   `xml:"skipped,omitempty"`
	SystemOut string     `xml:"system-out,omitempty"`
	Status    TestStatus `xml:"-"`
}

type TestSuite struct {
	XMLName    xml.Name    `xml:"testsuite"`
	Name       string      `xml:"name,attr"`
	Tests      int         `xml:"tests,attr"`
	Skipped    int         `xml:"skipped,attr"`
	Failures   int         `xml:"failures,attr"`
	Time       string      `xml:"time,attr,omitempty"`
	Properties *Properties `xml:"properties,omitempty"`
	TestCases  []TestCase  `xml:"testcase"`
}

type TestSuites struct {
	XMLName   xml.Name  `xml:"testsuites"`
	Tests     int       `xml:"tests,attr"`
	Disabled  int       `xml:"disabled,attr"`
	Errors    int       `xml:"errors,attr"`
	Failures  int       `xml:"failures,attr"`
	Time      string    `xml:"time,attr,omitempty"`
	TestSuite TestSuite `xml:"testsuite"`
}

// NewJUnitFromRun converts a test run into a JUnit document. Timed out tests
// are reported as failures of type timeout.
func NewJUnitFromRun(run *summary.TestRun, name string) *TestSuites {
	if name == "" {
		name = DefaultSuiteName
	}
	suite := TestSuite{
		Name:      name,
		TestCases: make([]TestCase, 0, len(run.Tests)),
	}

	var elapsed float64
	for _, rec := range run.Tests {
		tc := TestCase{
			Name:      rec.Name,
			Classname: classname(rec.Name),
		}
		if rec.Elapsed != nil {
			tc.Time = formatTime(*rec.Elapsed)
			elapsed += *rec.Elapsed
		}
		switch rec.Outcome {
		case summary.OutcomeFailed:
			tc.Failure = &Failure{Message: "test failed", Type: string(rec.Outcome)}
			suite.Failures++
		case summary.OutcomeTimeout:
			tc.Failure = &Failure{Message: "test timed out", Type: string(rec.Outcome)}
			suite.Failures++
		case summary.OutcomeIgnored:
			tc.Skipped = &Skipped{}
			if rec.Message != nil {
				tc.Skipped.Message = *rec.Message
			}
			suite.Skipped++
		}
		if rec.Stdout != nil {
			tc.SystemOut = *rec.Stdout
		}
		suite.TestCases = append(suite.TestCases, tc)
	}
	suite.Tests = len(suite.TestCases)

	if run.Summary.Elapsed != nil {
		elapsed = *run.Summary.Elapsed
	}
	suite.Time = formatTime(elapsed)

	props := []Property{{Name: "outcome", Value: string(run.Summary.Outcome)}}
	if run.Expected != nil {
		props = append(props, Property{Name: "expected", Value: fmt.Sprintf("%d", *run.Expected)})
	}
	for _, name := range run.Incomplete {
		props = append(props, Property{Name: "incomplete", Value: name})
	}
	suite.Properties = &Properties{Property: props}

	return &TestSuites{
		Tests:     suite.Tests,
		Failures:  suite.Failures,
		Time:      suite.Time,
		TestSuite: suite,
	}
}

// classname is the module path of a test, the name without its last segment.
func classname(name string) string {
	if idx := strings.LastIndex(name, "::"); idx > 0 {
		return name[:idx]
	}
	return ""
}

func formatTime(s float64) string {
	return fmt.Sprintf("%.3f", s)
}

// Write encodes the document with the XML header.
func (ts *TestSuites) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(ts); err != nil {
		return errors.Wrap(err, "unable to encode JUnit document")
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Save writes the document to path.
func (ts *TestSuites) Save(path string) error {
	fd, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	defer fd.Close()
	if err := ts.Write(fd); err != nil {
		return err
	}
	return fd.Close()
}

type JUnitCounter struct {
	Total    int
	Skipped  int
	Failures int
	Pass     int
}

type JUnitXMLParser struct {
	XMLFile  string
	Parsed   *TestSuite
	Counters *JUnitCounter
	Failures []string
	Cases    []*TestCase
}

func NewJUnitXMLParser(xmlFile string) (*JUnitXMLParser, error) {
	p := &JUnitXMLParser{
		XMLFile:  xmlFile,
		Parsed:   &TestSuite{},
		Counters: &JUnitCounter{},
		Cases:    []*TestCase{},
	}
	xmlData, err := os.ReadFile(xmlFile)
	if err != nil {
		return nil, fmt.Errorf("error reading XML file: %w", err)
	}
	if err := xml.Unmarshal(xmlData, p.Parsed); err != nil {
		ts := &TestSuites{}
		if err.Error() == "expected element type <testsuite> but have <testsuites>" {
			log.Debugf("JUnit document %s wraps the suite in <testsuites>", xmlFile)
			if err := xml.Unmarshal(xmlData, ts); err != nil {
				return nil, fmt.Errorf("error parsing XML data with testsuites: %w", err)
			}
			p.Parsed = &ts.TestSuite
		} else {
			return nil, fmt.Errorf("error parsing XML data: %w", err)
		}
	}
	// Iterate over the test cases
	for i := range p.Parsed.TestCases {
		tc := &p.Parsed.TestCases[i]
		p.Counters.Total += 1
		if tc.Skipped != nil {
			p.Counters.Skipped += 1
			tc.Status = TestStatusSkipped
			p.Cases = append(p.Cases, tc)
			continue
		}
		if tc.Failure != nil {
			p.Counters.Failures += 1
			p.Failures = append(p.Failures, fmt.Sprintf("\"%s\"", tc.Name))
			tc.Status = TestStatusFail
			p.Cases = append(p.Cases, tc)
			continue
		}
		tc.Status = TestStatusPass
		p.Cases = append(p.Cases, tc)
	}
	p.Counters.Pass = p.Counters.Total - (p.Counters.Skipped + p.Counters.Failures)

	return p, nil
}
