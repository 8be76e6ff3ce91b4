package tools

import (
	"context"
	"time"

	"github.com/user/webpilot/internal/browser"
)

// DefaultWaitTimeout bounds wait_for_element when the call does not
// pass timeout_ms
const DefaultWaitTimeout = 5 * time.Second

// NavigateTool loads a URL in the browser
type NavigateTool struct {
	agent browser.BrowserAgent
}

// NewNavigateTool creates a new navigate tool
func NewNavigateTool(agent browser.BrowserAgent) *NavigateTool {
	return &NavigateTool{agent: agent}
}

// Name returns the tool name
func (nt *NavigateTool) Name() string {
	return "navigate"
}

// Description returns the tool description
func (nt *NavigateTool) Description() string {
	return "Navigate the browser to a URL and wait for the page to load."
}

// Parameters returns the parameter specs
func (nt *NavigateTool) Parameters() map[string]ParameterSpec {
	return map[string]ParameterSpec{
		"url": {
			Type:        "string",
			Required:    true,
			Description: "Absolute URL to navigate to",
		},
	}
}

// Execute navigates to the requested URL
func (nt *NavigateTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	url, err := stringParam(params, "url")
	if err != nil {
		return nil, err
	}

	if err := nt.agent.Navigate(ctx, url); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"url":    url,
		"status": "navigated",
	}, nil
}

// ClickTool activates an element on the current page
type ClickTool struct {
	agent browser.BrowserAgent
}

// NewClickTool creates a new click tool
func NewClickTool(agent browser.BrowserAgent) *ClickTool {
	return &ClickTool{agent: agent}
}

// Name returns the tool name
func (ct *ClickTool) Name() string {
	return "click"
}

// Description returns the tool description
func (ct *ClickTool) Description() string {
	return "Click the element matched by a CSS selector."
}

// Parameters returns the parameter specs
func (ct *ClickTool) Parameters() map[string]ParameterSpec {
	return map[string]ParameterSpec{
		"selector": {
			Type:        "string",
			Required:    true,
			Description: "CSS selector of the element to click",
		},
	}
}

// Execute clicks the requested element
func (ct *ClickTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	selector, err := stringParam(params, "selector")
	if err != nil {
		return nil, err
	}

	if err := ct.agent.Click(ctx, selector); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"selector": selector,
		"status":   "clicked",
	}, nil
}

// TypeTextTool types text into an input element
type TypeTextTool struct {
	agent browser.BrowserAgent
}

// NewTypeTextTool creates a new type text tool
func NewTypeTextTool(agent browser.BrowserAgent) *TypeTextTool {
	return &TypeTextTool{agent: agent}
}

// Name returns the tool name
func (tt *TypeTextTool) Name() string {
	return "type_text"
}

// Description returns the tool description
func (tt *TypeTextTool) Description() string {
	return "Type text into the element matched by a CSS selector."
}

// Parameters returns the parameter specs
func (tt *TypeTextTool) Parameters() map[string]ParameterSpec {
	return map[string]ParameterSpec{
		"selector": {
			Type:        "string",
			Required:    true,
			Description: "CSS selector of the input element",
		},
		"text": {
			Type:        "string",
			Required:    true,
			Description: "Text to type into the element",
		},
	}
}

// Execute types the text into the requested element
func (tt *TypeTextTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	selector, err := stringParam(params, "selector")
	if err != nil {
		return nil, err
	}
	text, err := stringParam(params, "text")
	if err != nil {
		return nil, err
	}

	if err := tt.agent.Type(ctx, selector, text); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"selector":    selector,
		"typed_chars": len(text),
		"status":      "typed",
	}, nil
}

// ReadTextTool reads the text content of an element
type ReadTextTool struct {
	agent browser.BrowserAgent
}

// NewReadTextTool creates a new read text tool
func NewReadTextTool(agent browser.BrowserAgent) *ReadTextTool {
	return &ReadTextTool{agent: agent}
}

// Name returns the tool name
func (rt *ReadTextTool) Name() string {
	return "read_text"
}

// Description returns the tool description
func (rt *ReadTextTool) Description() string {
	return "Read the visible text of the element matched by a CSS selector."
}

// Parameters returns the parameter specs
func (rt *ReadTextTool) Parameters() map[string]ParameterSpec {
	return map[string]ParameterSpec{
		"selector": {
			Type:        "string",
			Required:    true,
			Description: "CSS selector of the element to read",
		},
	}
}

// Execute reads the text of the requested element
func (rt *ReadTextTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	selector, err := stringParam(params, "selector")
	if err != nil {
		return nil, err
	}

	text, err := rt.agent.ReadText(ctx, selector)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"selector": selector,
		"text":     text,
	}, nil
}

// ScreenshotTool captures the current page
type ScreenshotTool struct {
	agent browser.BrowserAgent
}

// NewScreenshotTool creates a new screenshot tool
func NewScreenshotTool(agent browser.BrowserAgent) *ScreenshotTool {
	return &ScreenshotTool{agent: agent}
}

// Name returns the tool name
func (st *ScreenshotTool) Name() string {
	return "screenshot"
}

// Description returns the tool description
func (st *ScreenshotTool) Description() string {
	return "Capture a screenshot of the current page."
}

// Parameters returns the parameter specs
func (st *ScreenshotTool) Parameters() map[string]ParameterSpec {
	return map[string]ParameterSpec{}
}

// Execute captures the screenshot
func (st *ScreenshotTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	data, err := st.agent.Screenshot(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"size_bytes": len(data),
		"data":       data,
	}, nil
}

// WaitForElementTool waits for an element to appear on the page
type WaitForElementTool struct {
	agent browser.BrowserAgent
}

// NewWaitForElementTool creates a new wait for element tool
func NewWaitForElementTool(agent browser.BrowserAgent) *WaitForElementTool {
	return &WaitForElementTool{agent: agent}
}

// Name returns the tool name
func (wt *WaitForElementTool) Name() string {
	return "wait_for_element"
}

// Description returns the tool description
func (wt *WaitForElementTool) Description() string {
	return "Wait until the element matched by a CSS selector appears. Default timeout: 5000ms."
}

// Parameters returns the parameter specs
func (wt *WaitForElementTool) Parameters() map[string]ParameterSpec {
	return map[string]ParameterSpec{
		"selector": {
			Type:        "string",
			Required:    true,
			Description: "CSS selector of the element to wait for",
		},
		"timeout_ms": {
			Type:        "integer",
			Required:    false,
			Description: "Maximum time to wait, in milliseconds",
			Default:     5000,
		},
	}
}

// Execute waits for the requested element
func (wt *WaitForElementTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	selector, err := stringParam(params, "selector")
	if err != nil {
		return nil, err
	}
	timeout := durationMsParam(params, "timeout_ms", DefaultWaitTimeout)

	if err := wt.agent.WaitForElement(ctx, selector, timeout); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"selector": selector,
		"status":   "visible",
	}, nil
}

// GetPageStateTool returns a snapshot of the current page
type GetPageStateTool struct {
	agent browser.BrowserAgent
}

// NewGetPageStateTool creates a new get page state tool
func NewGetPageStateTool(agent browser.BrowserAgent) *GetPageStateTool {
	return &GetPageStateTool{agent: agent}
}

// Name returns the tool name
func (gt *GetPageStateTool) Name() string {
	return "get_page_state"
}

// Description returns the tool description
func (gt *GetPageStateTool) Description() string {
	return "Return the current URL, title and known elements of the page."
}

// Parameters returns the parameter specs
func (gt *GetPageStateTool) Parameters() map[string]ParameterSpec {
	return map[string]ParameterSpec{}
}

// Execute reads the page state
func (gt *GetPageStateTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	state, err := gt.agent.GetPageState(ctx)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// BrowserTools returns the built-in tool catalog bound to agent
func BrowserTools(agent browser.BrowserAgent) []Tool {
	return []Tool{
		NewNavigateTool(agent),
		NewClickTool(agent),
		NewTypeTextTool(agent),
		NewReadTextTool(agent),
		NewScreenshotTool(agent),
		NewWaitForElementTool(agent),
		NewGetPageStateTool(agent),
	}
}

// NewBrowserRegistry creates a registry holding the built-in browser
// tool catalog bound to agent
func NewBrowserRegistry(agent browser.BrowserAgent) (*Registry, error) {
	registry := NewRegistry()
	for _, tool := range BrowserTools(agent) {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
