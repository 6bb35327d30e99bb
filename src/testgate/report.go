package testgate

import (
	"regexp"
	"strconv"
	"strings"
)

// Report aggregates the per-suite summary lines of a cargo test run.
type Report struct {
	Suites  int
	Passed  int
	Failed  int
	Ignored int
	// Names of failing tests, as listed in the failures section.
	Failures []string
}

// Total returns the number of tests cargo reported across all suites.
func (r *Report) Total() int {
	return r.Passed + r.Failed + r.Ignored
}

// cargo prints one summary per suite:
//   test result: ok. 12 passed; 0 failed; 1 ignored; 0 measured; 0 filtered out; ...
var summaryPattern = regexp.MustCompile(`test result: \w+\. (\d+) passed; (\d+) failed; (\d+) ignored`)

// failing tests are listed as "test config::tests::loads_yaml ... FAILED"
var failedTestPattern = regexp.MustCompile(`^test (\S+) \.\.\. FAILED$`)

// ParseReport extracts the suite summaries and failing test names from raw
// cargo test output. Unparseable output yields an empty report; the gate
// then relies on the process exit code alone.
func ParseReport(output string) *Report {
	report := &Report{}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)

		if m := summaryPattern.FindStringSubmatch(line); m != nil {
			report.Suites++
			report.Passed += mustAtoi(m[1])
			report.Failed += mustAtoi(m[2])
			report.Ignored += mustAtoi(m[3])
			continue
		}
		if m := failedTestPattern.FindStringSubmatch(line); m != nil {
			report.Failures = append(report.Failures, m[1])
		}
	}
	return report
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
