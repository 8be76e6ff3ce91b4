// Package browser defines the contract the executor dispatches browser
// actions against. Concrete drivers live outside this module; the
// simulated agent here serves runs and tests.
package browser

import (
	"context"
	"time"
)

// PageState is a snapshot of the page a driver currently serves
type PageState struct {
	URL      string            `json:"url"`
	Title    string            `json:"title"`
	Elements map[string]string `json:"elements"` // selector -> visible text
}

// BrowserAgent is the driver contract. Every operation observes ctx and
// returns errors classifiable as transient or terminal.
type BrowserAgent interface {
	// Navigate loads a URL
	Navigate(ctx context.Context, url string) error

	// Click activates the element matching selector
	Click(ctx context.Context, selector string) error

	// Type enters text into the element matching selector
	Type(ctx context.Context, selector, text string) error

	// ReadText returns the visible text of the element matching selector
	ReadText(ctx context.Context, selector string) (string, error)

	// Screenshot captures the current viewport
	Screenshot(ctx context.Context) ([]byte, error)

	// WaitForElement blocks until the element appears or timeout elapses
	WaitForElement(ctx context.Context, selector string, timeout time.Duration) error

	// GetPageState returns a snapshot of the current page
	GetPageState(ctx context.Context) (*PageState, error)
}
