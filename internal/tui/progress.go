// Package tui renders run progress in the terminal. Progress draws an
// animated task list for concurrent scenario runs; SimpleProgress is a
// plain line-by-line reporter for everything else.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter is the event surface the progress widgets implement.
type ProgressReporter interface {
	AddTask(id, name, description string)
	StartTask(id string)
	CompleteTask(id string)
	FailTask(id string, err error)
	SkipTask(id string)
}

// NopProgressReporter discards all progress events. Used when output
// is suppressed but the caller still wants a non-nil reporter.
type NopProgressReporter struct{}

func (n *NopProgressReporter) AddTask(id, name, description string) {}
func (n *NopProgressReporter) StartTask(id string)                  {}
func (n *NopProgressReporter) CompleteTask(id string)               {}
func (n *NopProgressReporter) FailTask(id string, err error)        {}
func (n *NopProgressReporter) SkipTask(id string)                   {}

type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskSuccess
	TaskError
	TaskSkipped
)

// Task is one tracked unit of work, typically a scenario in a run.
type Task struct {
	ID          string
	Name        string
	Description string
	Status      TaskStatus
	Error       error
	StartTime   time.Time
	EndTime     time.Time
}

// Progress renders one line per task and redraws them in place while
// the run is live. Safe for concurrent use; the runner reports task
// completions from pool goroutines.
type Progress struct {
	mu      sync.Mutex
	writer  io.Writer
	title   string
	tasks   []*Task
	taskMap map[string]*Task
	frame   int
	drawn   int
	ticker  *time.Ticker
	done    chan struct{}
	started bool
	stopped bool
}

func NewProgress(title string) *Progress {
	return &Progress{
		title:   title,
		tasks:   make([]*Task, 0),
		taskMap: make(map[string]*Task),
		done:    make(chan struct{}),
	}
}

// SetWriter redirects output, primarily for tests. Call before Start.
func (p *Progress) SetWriter(w io.Writer) {
	p.writer = w
}

func (p *Progress) getWriter() io.Writer {
	if p.writer == nil {
		return os.Stdout
	}
	return p.writer
}

func (p *Progress) AddTask(id, name, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	task := &Task{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      TaskPending,
	}
	p.tasks = append(p.tasks, task)
	p.taskMap[id] = task
}

func (p *Progress) StartTask(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	task, ok := p.taskMap[id]
	if !ok {
		return
	}
	task.Status = TaskRunning
	task.StartTime = time.Now()
}

func (p *Progress) CompleteTask(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	task, ok := p.taskMap[id]
	if !ok {
		return
	}
	task.Status = TaskSuccess
	task.EndTime = time.Now()
}

func (p *Progress) FailTask(id string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	task, ok := p.taskMap[id]
	if !ok {
		return
	}
	task.Status = TaskError
	task.Error = err
	task.EndTime = time.Now()
}

func (p *Progress) SkipTask(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	task, ok := p.taskMap[id]
	if !ok {
		return
	}
	task.Status = TaskSkipped
}

// Start prints the title and the initial task list, then begins the
// spinner animation. Calling Start more than once has no effect.
func (p *Progress) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true

	_, _ = fmt.Fprintln(p.getWriter())
	_, _ = fmt.Fprintln(p.getWriter(), StyleTitle.Render(" "+p.title+" "))
	_, _ = fmt.Fprintln(p.getWriter())

	p.render()
	p.mu.Unlock()

	p.ticker = time.NewTicker(100 * time.Millisecond)
	go p.animate()
}

func (p *Progress) animate() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.stopped {
				p.mu.Unlock()
				return
			}
			p.frame = (p.frame + 1) % len(SpinnerFrames)
			p.render()
			p.mu.Unlock()
		}
	}
}

// render rewinds over the previously drawn task lines and redraws the
// current state. Tasks added after Start appear on the next redraw.
// Caller must hold p.mu.
func (p *Progress) render() {
	if p.drawn > 0 {
		_, _ = fmt.Fprint(p.getWriter(), strings.Repeat("\033[A\033[2K", p.drawn))
	}
	for _, task := range p.tasks {
		_, _ = fmt.Fprintln(p.getWriter(), p.formatTaskLine(task))
	}
	p.drawn = len(p.tasks)
}

func (p *Progress) formatTaskLine(task *Task) string {
	var icon, name, status string

	switch task.Status {
	case TaskRunning:
		icon = StyleSpinner.Render(SpinnerFrames[p.frame])
		name = StyleSpinner.Render(task.Name)
		elapsed := time.Since(task.StartTime).Round(time.Second)
		status = StyleSpinner.Render(fmt.Sprintf("running %s", elapsed))
	case TaskSuccess:
		icon = StyleSuccess.Render(IconSuccess)
		name = StyleSuccess.Render(task.Name)
		duration := task.EndTime.Sub(task.StartTime).Round(time.Millisecond)
		status = StyleSuccess.Render(fmt.Sprintf("passed %s", duration))
	case TaskError:
		icon = StyleError.Render(IconError)
		name = StyleError.Render(task.Name)
		status = StyleError.Render("failed")
	case TaskSkipped:
		icon = StyleMuted.Render(IconPending)
		name = StyleMuted.Render(task.Name)
		status = StyleMuted.Render("skipped")
	default:
		icon = StyleMuted.Render(IconPending)
		name = StyleMuted.Render(task.Name)
		status = StyleMuted.Render("waiting")
	}

	return fmt.Sprintf("  %s %s %s", icon, name, status)
}

// Stop ends the animation and draws the final task states. Safe to
// call more than once; no task line is written after Stop returns.
func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopped {
		return
	}
	p.stopped = true

	p.ticker.Stop()
	close(p.done)

	p.render()
}

// PrintSummary prints pass/fail/skip counts and lists every failed
// scenario with its error.
func (p *Progress) PrintSummary() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var passed, failed, skipped int
	for _, t := range p.tasks {
		switch t.Status {
		case TaskSuccess:
			passed++
		case TaskError:
			failed++
		case TaskSkipped:
			skipped++
		}
	}

	_, _ = fmt.Fprintln(p.getWriter())
	_, _ = fmt.Fprintln(p.getWriter(), strings.Repeat("─", 50))

	summary := fmt.Sprintf("Passed: %d/%d", passed, len(p.tasks)-skipped)
	if failed > 0 {
		summary += fmt.Sprintf(", Failed: %d", failed)
	}
	if skipped > 0 {
		summary += fmt.Sprintf(", Skipped: %d", skipped)
	}

	if failed == 0 {
		_, _ = fmt.Fprintf(p.getWriter(), "%s %s\n",
			StyleSuccess.Render(IconSuccess),
			StyleSuccess.Render(summary))
	} else {
		_, _ = fmt.Fprintf(p.getWriter(), "%s %s\n",
			StyleError.Render(IconError),
			StyleWarning.Render(summary))
	}

	if failed > 0 {
		_, _ = fmt.Fprintln(p.getWriter())
		_, _ = fmt.Fprintln(p.getWriter(), StyleError.Render("Failed scenarios:"))
		for _, t := range p.tasks {
			if t.Status != TaskError {
				continue
			}
			line := fmt.Sprintf("  %s %s", StyleError.Render(IconError), t.Name)
			if t.Error != nil {
				line += ": " + t.Error.Error()
			}
			_, _ = fmt.Fprintln(p.getWriter(), line)
		}
	}

	_, _ = fmt.Fprintln(p.getWriter())
}

// SimpleProgress prints one line per event without animation. Commands
// that do sequential work use it instead of the task list.
type SimpleProgress struct {
	writer  io.Writer
	title   string
	started bool
}

func NewSimpleProgress(title string) *SimpleProgress {
	return &SimpleProgress{
		title: title,
	}
}

// SetWriter redirects output, primarily for tests.
func (sp *SimpleProgress) SetWriter(w io.Writer) {
	sp.writer = w
}

func (sp *SimpleProgress) getWriter() io.Writer {
	if sp.writer == nil {
		return os.Stdout
	}
	return sp.writer
}

func (sp *SimpleProgress) Start() {
	if sp.started {
		return
	}
	sp.started = true
	_, _ = fmt.Fprintln(sp.getWriter())
	_, _ = fmt.Fprintln(sp.getWriter(), StyleTitle.Render(" "+sp.title+" "))
	_, _ = fmt.Fprintln(sp.getWriter())
}

func (sp *SimpleProgress) Step(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n",
		StyleHighlight.Render(IconStep),
		message)
}

func (sp *SimpleProgress) Success(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n",
		StyleSuccess.Render(IconSuccess),
		StyleSuccess.Render(message))
}

func (sp *SimpleProgress) Error(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n",
		StyleError.Render(IconError),
		StyleError.Render(message))
}

func (sp *SimpleProgress) Warning(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n",
		StyleWarning.Render(IconWarning),
		message)
}

func (sp *SimpleProgress) Info(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "  %s\n",
		StyleMuted.Render(message))
}

func (sp *SimpleProgress) Done() {
	_, _ = fmt.Fprintln(sp.getWriter())
}

func (sp *SimpleProgress) Failed(err error) {
	_, _ = fmt.Fprintln(sp.getWriter())
	if err != nil {
		_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n",
			StyleError.Render(IconError+" Failed:"),
			err.Error())
	} else {
		_, _ = fmt.Fprintln(sp.getWriter(), StyleError.Render(IconError+" Failed"))
	}
}
