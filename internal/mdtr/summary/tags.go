package summary

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// tagRegex captures the leading module path segment of a test name.
// Example test name: 'registry::tests::create' the 'registry' is the tag.
var tagRegex = regexp.MustCompile(`^([A-Za-z0-9_-]+)::`)

const tagTotal = "total"

// SortedData stores the key/value to be sorted.
type SortedData struct {
	Key   string
	Value int
}

// TestTags stores the test tags map with it's counter. Names without a module
// path only increment the total.
type TestTags map[string]int

// NewTestTags creates the TestTags populating the tag values and counters.
func NewTestTags(names []string) TestTags {
	tt := make(TestTags, len(names)+1)
	tt[tagTotal] = 0
	for _, name := range names {
		tt.Add(name)
	}
	return tt
}

// NewFailureTags tags every failed or timed out test of the run.
func NewFailureTags(run *TestRun) TestTags {
	names := []string{}
	for _, rec := range run.Failures() {
		names = append(names, rec.Name)
	}
	return NewTestTags(names)
}

// Add extracts the tag from the test name, store, and increment the counter.
func (tt TestTags) Add(name string) {
	if match := tagRegex.FindStringSubmatch(name); len(match) > 0 {
		tt[match[1]]++
	}
	tt[tagTotal]++
}

// sortRev ranks the tags by counter, highest first, ties by name.
func (tt TestTags) sortRev() []SortedData {
	tags := make([]SortedData, 0, len(tt))
	for k, v := range tt {
		if k == tagTotal {
			continue
		}
		tags = append(tags, SortedData{k, v})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Value != tags[j].Value {
			return tags[i].Value > tags[j].Value
		}
		return tags[i].Key < tags[j].Key
	})
	return tags
}

// HasTags reports whether at least one name carried a module path.
func (tt TestTags) HasTags() bool {
	return len(tt) > 1
}

// ShowSorted return an string with the rank of tags.
func (tt TestTags) ShowSorted() string {
	msg := []string{fmt.Sprintf("[%s=%d]", tagTotal, tt[tagTotal])}
	for _, k := range tt.sortRev() {
		msg = append(msg, fmt.Sprintf("[%s=%s]", k.Key, UtilsCalcPercStr(int64(k.Value), int64(tt[tagTotal]))))
	}
	return strings.Join(msg, " ")
}

// UtilsCalcPercStr receives the numerator and denominator and return the numerator and percentage as string.
func UtilsCalcPercStr(num, den int64) string {
	if den == 0 {
		return fmt.Sprintf("%d (0.00%%)", num)
	}
	return fmt.Sprintf("%d (%.2f%%)", num, (float64(num)/float64(den))*100)
}
