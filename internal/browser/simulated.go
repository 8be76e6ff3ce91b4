package browser

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"time"

	apperrors "github.com/user/webpilot/internal/errors"
)

// Action names used for scripting and dispatch accounting
const (
	ActionNavigate       = "navigate"
	ActionClick          = "click"
	ActionType           = "type"
	ActionReadText       = "read_text"
	ActionScreenshot     = "screenshot"
	ActionWaitForElement = "wait_for_element"
	ActionGetPageState   = "get_page_state"
)

// SimulatedConfig controls the failure profile of a SimulatedAgent
type SimulatedConfig struct {
	Seed                  int64
	Latency               time.Duration
	FailureRate           float64 // chance a dispatch fails transiently
	FailuresBeforeSuccess int     // first N dispatches of each action fail
}

// SimulatedAgent is a deterministic in-memory BrowserAgent. It keeps a
// virtual page and injects failures per its config, which makes it
// suitable both for tests and for tuning retry budgets from the CLI.
type SimulatedAgent struct {
	mu         sync.Mutex
	rng        *rand.Rand
	cfg        SimulatedConfig
	dispatches map[string]int
	scripted   map[string][]error
	crashed    bool
	page       PageState
}

// NewSimulatedAgent creates a simulated agent with the given profile
func NewSimulatedAgent(cfg SimulatedConfig) *SimulatedAgent {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedAgent{
		rng:        rand.New(rand.NewSource(seed)),
		cfg:        cfg,
		dispatches: make(map[string]int),
		scripted:   make(map[string][]error),
		page: PageState{
			URL:      "about:blank",
			Title:    "Blank",
			Elements: make(map[string]string),
		},
	}
}

// Script queues outcomes consumed in order by subsequent dispatches of
// action. A nil outcome is a forced success.
func (a *SimulatedAgent) Script(action string, outcomes ...error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scripted[action] = append(a.scripted[action], outcomes...)
}

// FailTimes queues err n times for action, so the n+1th dispatch is the
// first that can succeed.
func (a *SimulatedAgent) FailTimes(action string, n int, err error) {
	for i := 0; i < n; i++ {
		a.Script(action, err)
	}
}

// Dispatches returns how many times action reached the agent
func (a *SimulatedAgent) Dispatches(action string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dispatches[action]
}

// SetElement places an element on the virtual page
func (a *SimulatedAgent) SetElement(selector, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.page.Elements[selector] = text
}

// Crash puts the agent into a crashed state; every dispatch afterwards
// fails terminally.
func (a *SimulatedAgent) Crash() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.crashed = true
}

// simulate applies latency and the failure profile for one dispatch.
// A scripted outcome wins over the profile.
func (a *SimulatedAgent) simulate(ctx context.Context, action, target string) error {
	if a.cfg.Latency > 0 {
		select {
		case <-time.After(a.cfg.Latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.dispatches[action]++

	if a.crashed {
		return apperrors.NewBrowserCrashedError(errBrowserGone)
	}

	if queue := a.scripted[action]; len(queue) > 0 {
		outcome := queue[0]
		a.scripted[action] = queue[1:]
		return outcome
	}

	if a.dispatches[action] <= a.cfg.FailuresBeforeSuccess {
		return a.transientFor(action, target)
	}

	if a.cfg.FailureRate > 0 && a.rng.Float64() < a.cfg.FailureRate {
		return a.transientFor(action, target)
	}

	return nil
}

func (a *SimulatedAgent) transientFor(action, target string) error {
	switch action {
	case ActionNavigate:
		return apperrors.NewNavigationError(target, errSimulatedFlake)
	case ActionScreenshot, ActionGetPageState:
		return apperrors.NewTransientError(apperrors.ReasonPageUnstable, "page still rendering")
	default:
		return apperrors.NewElementNotFoundError(target)
	}
}

var (
	errSimulatedFlake = fmt.Errorf("simulated network flake")
	errBrowserGone    = fmt.Errorf("simulated browser process exited")
)

// Navigate loads url into the virtual page. Schemes a real driver
// refuses to automate (file, chrome, javascript) are rejected
// terminally before the page is touched.
func (a *SimulatedAgent) Navigate(ctx context.Context, rawURL string) error {
	if parsed, err := url.Parse(rawURL); err == nil && !allowedScheme(parsed.Scheme) {
		return apperrors.NewPermissionDeniedError("navigate to " + rawURL)
	}

	if err := a.simulate(ctx, ActionNavigate, rawURL); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.page = PageState{
		URL:   rawURL,
		Title: titleFor(rawURL),
		Elements: map[string]string{
			"body": "Simulated page for " + rawURL,
		},
	}
	return nil
}

// Click activates selector on the virtual page
func (a *SimulatedAgent) Click(ctx context.Context, selector string) error {
	if err := a.simulate(ctx, ActionClick, selector); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.page.Elements[selector]; !ok {
		a.page.Elements[selector] = ""
	}
	return nil
}

// Type enters text into selector on the virtual page
func (a *SimulatedAgent) Type(ctx context.Context, selector, text string) error {
	if err := a.simulate(ctx, ActionType, selector); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.page.Elements[selector] = text
	return nil
}

// ReadText returns the text of selector, or a transient error when the
// element has not been placed on the page
func (a *SimulatedAgent) ReadText(ctx context.Context, selector string) (string, error) {
	if err := a.simulate(ctx, ActionReadText, selector); err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	text, ok := a.page.Elements[selector]
	if !ok {
		return "", apperrors.NewElementNotFoundError(selector)
	}
	return text, nil
}

// Screenshot returns a small synthetic capture of the virtual page
func (a *SimulatedAgent) Screenshot(ctx context.Context) ([]byte, error) {
	if err := a.simulate(ctx, ActionScreenshot, ""); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return []byte("simulated-screenshot:" + a.page.URL), nil
}

// WaitForElement polls the virtual page until selector appears or
// timeout elapses
func (a *SimulatedAgent) WaitForElement(ctx context.Context, selector string, timeout time.Duration) error {
	if err := a.simulate(ctx, ActionWaitForElement, selector); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	for {
		a.mu.Lock()
		_, ok := a.page.Elements[selector]
		a.mu.Unlock()
		if ok {
			return nil
		}
		if timeout <= 0 || time.Now().After(deadline) {
			return apperrors.NewElementNotFoundError(selector)
		}

		select {
		case <-time.After(10 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// GetPageState returns a copy of the virtual page
func (a *SimulatedAgent) GetPageState(ctx context.Context) (*PageState, error) {
	if err := a.simulate(ctx, ActionGetPageState, ""); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	elements := make(map[string]string, len(a.page.Elements))
	for k, v := range a.page.Elements {
		elements[k] = v
	}
	return &PageState{
		URL:      a.page.URL,
		Title:    a.page.Title,
		Elements: elements,
	}, nil
}

func titleFor(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}

func allowedScheme(scheme string) bool {
	switch scheme {
	case "", "http", "https", "about":
		return true
	}
	return false
}
