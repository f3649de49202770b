package diag

import "sync"

// Assessor decides the severity of a diagnostic.
type Assessor interface {
	Assess(d *Diagnostic) Severity
}

// AssessorFunc adapts a function to the Assessor interface.
type AssessorFunc func(d *Diagnostic) Severity

func (f AssessorFunc) Assess(d *Diagnostic) Severity { return f(d) }

// Diagnostician assesses diagnostics and hands them to a reporter.
// It is safe for concurrent use.
type Diagnostician struct {
	Assessor Assessor
	Reporter Reporter

	mu     sync.Mutex
	counts [Error + 1]int
}

// NewDiagnostician returns a diagnostician using the default registry.
func NewDiagnostician(r Reporter) *Diagnostician {
	return &Diagnostician{Assessor: NewRegistry(), Reporter: r}
}

// Handle reports ds and their sub-diagnostics and returns the highest
// severity among them. An empty list yields Ignore.
func (d *Diagnostician) Handle(ds []*Diagnostic) Severity {
	d.mu.Lock()
	defer d.mu.Unlock()

	max := Ignore
	for _, diag := range Flatten(ds) {
		sev := d.Assessor.Assess(diag)
		if sev > max {
			max = sev
		}
		d.counts[sev]++
		if sev == Ignore {
			continue
		}
		d.Reporter.Report(diag, sev)
	}
	return max
}

// Count returns how many diagnostics of severity s were handled.
func (d *Diagnostician) Count(s Severity) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(s) >= len(d.counts) {
		return 0
	}
	return d.counts[s]
}
