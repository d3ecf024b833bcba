package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// RodDriver drives a real Chromium instance via go-rod. It is an optional
// attachment for local/dev use; the production default is QueueingDriver.
type RodDriver struct {
	browser *rod.Browser
	page    *rod.Page
}

// RodOption configures a RodDriver at construction.
type RodOption func(*rodConfig)

type rodConfig struct {
	controlURL string
	headless   bool
}

// WithControlURL points the driver at an already-running Chromium instance
// (e.g. a remote debugging endpoint) instead of launching a local one.
func WithControlURL(url string) RodOption {
	return func(c *rodConfig) { c.controlURL = url }
}

// WithHeadful disables headless mode, useful when debugging locally.
func WithHeadful() RodOption {
	return func(c *rodConfig) { c.headless = false }
}

// NewRodDriver launches (or attaches to) a Chromium instance and opens a
// blank page ready for navigate_to.
func NewRodDriver(opts ...RodOption) (*RodDriver, error) {
	cfg := rodConfig{headless: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	controlURL := cfg.controlURL
	if controlURL == "" {
		l := launcher.New().Headless(cfg.headless)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch chromium: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("browser: open page: %w", err)
	}

	return &RodDriver{browser: b, page: page}, nil
}

// Close releases the underlying Chromium connection.
func (d *RodDriver) Close() error {
	if d.browser == nil {
		return nil
	}
	return d.browser.Close()
}

func (d *RodDriver) Execute(ctx context.Context, action Action) (Result, error) {
	page := d.page.Context(ctx)

	switch action.Tool {
	case model.ToolNavigateTo:
		return d.navigate(page, action)
	case model.ToolClickElement:
		return d.click(page, action)
	case model.ToolInputText:
		return d.input(page, action)
	case model.ToolExtractData:
		return d.extract(page, action)
	default:
		return Result{}, fmt.Errorf("browser: unsupported tool %q", action.Tool)
	}
}

func (d *RodDriver) navigate(page *rod.Page, action Action) (Result, error) {
	url, _ := action.Params["url"].(string)
	if url == "" {
		return Result{}, fmt.Errorf("browser: navigate_to missing params.url")
	}
	if err := page.Navigate(url); err != nil {
		return Result{}, fmt.Errorf("browser: navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return Result{}, fmt.Errorf("browser: wait load: %w", err)
	}
	return Result{
		Output:   map[string]any{"url": url},
		Strategy: model.StrategyDirect,
	}, nil
}

func (d *RodDriver) click(page *rod.Page, action Action) (Result, error) {
	el, strategy, err := d.resolve(page, action)
	if err != nil {
		return Result{}, err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return Result{}, fmt.Errorf("browser: click: %w", err)
	}
	return Result{Output: map[string]any{"clicked": true}, Strategy: strategy}, nil
}

func (d *RodDriver) input(page *rod.Page, action Action) (Result, error) {
	text, _ := action.Params["text"].(string)
	el, strategy, err := d.resolve(page, action)
	if err != nil {
		return Result{}, err
	}
	if err := el.Input(text); err != nil {
		return Result{}, fmt.Errorf("browser: input: %w", err)
	}
	return Result{Output: map[string]any{"entered": text}, Strategy: strategy}, nil
}

func (d *RodDriver) extract(page *rod.Page, action Action) (Result, error) {
	el, strategy, err := d.resolve(page, action)
	if err != nil {
		return Result{}, err
	}
	text, err := el.Text()
	if err != nil {
		return Result{}, fmt.Errorf("browser: extract: %w", err)
	}
	return Result{Output: map[string]any{"text": text}, Strategy: strategy}, nil
}

// resolve finds the target element using whichever single strategy is
// named by action.Params["selector_strategy"]. Visual is unimplemented (no
// vision-based element recognition here) and always fails so the caller's
// strategy walker advances past it.
func (d *RodDriver) resolve(page *rod.Page, action Action) (*rod.Element, model.Strategy, error) {
	strategy := selectorStrategy(action.Params, model.StrategySemantic)

	switch strategy {
	case model.StrategySemantic:
		label, _ := action.Params["semantic_selector"].(string)
		if label == "" {
			return nil, strategy, fmt.Errorf("browser: semantic strategy requires params.semantic_selector")
		}
		el, err := page.ElementR("*", label)
		if err != nil {
			return nil, strategy, fmt.Errorf("browser: semantic resolve %q: %w", label, err)
		}
		return el, strategy, nil

	case model.StrategyStructural:
		selector, _ := action.Params["selector"].(string)
		if selector == "" {
			return nil, strategy, fmt.Errorf("browser: structural strategy requires params.selector")
		}
		el, err := page.Element(selector)
		if err != nil {
			return nil, strategy, fmt.Errorf("browser: structural resolve %q: %w", selector, err)
		}
		return el, strategy, nil

	case model.StrategyVisual:
		return nil, strategy, fmt.Errorf("browser: visual strategy not implemented")

	case model.StrategyCoordinate:
		x, xok := action.Params["x"].(float64)
		y, yok := action.Params["y"].(float64)
		if !xok || !yok {
			return nil, strategy, fmt.Errorf("browser: coordinate strategy requires params.x and params.y")
		}
		el, err := page.ElementFromPoint(int(x), int(y))
		if err != nil {
			return nil, strategy, fmt.Errorf("browser: coordinate resolve (%v,%v): %w", x, y, err)
		}
		return el, strategy, nil

	default:
		return nil, strategy, fmt.Errorf("browser: unknown selector strategy %q", strategy)
	}
}
