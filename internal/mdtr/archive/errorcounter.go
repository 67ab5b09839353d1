package archive

import (
	"regexp"
	"sort"
)

// CommonErrorPatterns are the failure signatures searched in captured test output.
var CommonErrorPatterns = []string{
	`panicked at`,
	`assertion( .+)? failed`,
	`called .Option::unwrap\(\). on a .None. value`,
	`called .Result::unwrap\(\). on an .Err. value`,
	`stack overflow`,
	`timed out`,
}

// ErrorCounter is a map to handle a generic error counter, indexed by error pattern.
type ErrorCounter map[string]int

const errorCounterTotal = "total"

// NewErrorCounter counts the occurrences of each pattern, plus the generic
// `error` word, in buf. It returns nil when nothing matched.
func NewErrorCounter(buf *string, pattern []string) ErrorCounter {
	if buf == nil {
		return nil
	}
	total := 0
	counters := make(ErrorCounter, len(pattern)+2)

	for _, errName := range append(append([]string{}, pattern...), `error`) {
		reErr := regexp.MustCompile(errName)
		if matches := reErr.FindAllStringIndex(*buf, -1); len(matches) != 0 {
			counters[errName] += len(matches)
			total += len(matches)
		}
	}

	if total == 0 {
		return nil
	}
	counters[errorCounterTotal] = total
	return counters
}

// MergeErrorCounters sums two counters into a new one.
func MergeErrorCounters(ec1, ec2 *ErrorCounter) *ErrorCounter {
	merged := make(ErrorCounter, len(CommonErrorPatterns))
	if ec1 == nil && ec2 == nil {
		return &merged
	}
	for _, ec := range []*ErrorCounter{ec1, ec2} {
		if ec == nil {
			continue
		}
		for kerr, cnt := range *ec {
			merged[kerr] += cnt
		}
	}
	return &merged
}

// Total returns the sum of every pattern occurrence.
func (ec ErrorCounter) Total() int {
	return ec[errorCounterTotal]
}

// Patterns returns the matched patterns, most frequent first, ties by pattern.
func (ec ErrorCounter) Patterns() []string {
	keys := []string{}
	for k := range ec {
		if k != errorCounterTotal {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if ec[keys[i]] != ec[keys[j]] {
			return ec[keys[i]] > ec[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
