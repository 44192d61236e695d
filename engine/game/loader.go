package game

import (
	"log/slog"
)

// LoadStep is one phase of chunked loading: a name for the progress bar, a
// weight for its share of the bar, and the builder doing the work.
type LoadStep struct {
	Name   string
	Weight float64
	Build  func() error
}

// Loader consumes one load step per tick so the host can render progress
// between phases instead of freezing on one long call.
type Loader struct {
	steps    []LoadStep
	index    int
	total    float64
	done     float64
	lastErr  error
	failures []string
}

// NewLoader creates a loader over the given steps.
func NewLoader(steps []LoadStep) *Loader {
	total := 0.0
	for _, step := range steps {
		total += step.Weight
	}
	if total == 0 {
		total = 1
	}
	return &Loader{steps: steps, total: total}
}

// Update runs the next step. A failing step is recorded and skipped; loading
// always runs to completion so the UI can report what broke.
func (l *Loader) Update() {
	if l.Done() {
		return
	}
	step := l.steps[l.index]
	if err := step.Build(); err != nil {
		l.lastErr = err
		l.failures = append(l.failures, step.Name)
		slog.Error("load step failed", "step", step.Name, "error", err)
	}
	l.done += step.Weight
	l.index++
}

// Done reports whether every step ran.
func (l *Loader) Done() bool { return l.index >= len(l.steps) }

// Progress returns the weighted completion in [0, 1].
func (l *Loader) Progress() float64 { return l.done / l.total }

// CurrentStep names the step about to run, for the loading screen.
func (l *Loader) CurrentStep() string {
	if l.Done() {
		return ""
	}
	return l.steps[l.index].Name
}

// Err returns the last failure, if any step failed.
func (l *Loader) Err() error { return l.lastErr }

// Failures lists the names of failed steps.
func (l *Loader) Failures() []string { return l.failures }

// BeginLoading installs a loader consumed by subsequent Update calls.
func (g *Game) BeginLoading(steps []LoadStep) *Loader {
	g.loader = NewLoader(steps)
	return g.loader
}

// Loading reports whether a loader is still consuming steps.
func (g *Game) Loading() bool { return g.loader != nil && !g.loader.Done() }
