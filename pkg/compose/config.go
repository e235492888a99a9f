package compose

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrymomot/hxcompose/pkg/htmx"
	"github.com/dmitrymomot/hxcompose/pkg/rewrite"
)

// MaxDepth is the recursion ceiling for nested compositions.
const MaxDepth = 10

// Config names the attributes and query parameters the composer and the
// select filter read. It is passed to each component at construction.
type Config struct {
	// TargetAttr holds the fragment reference of a directive element.
	TargetAttr string `yaml:"target_attr"`
	// TriggerAttr and TriggerValue qualify a directive for expansion when
	// RequireTrigger is set: TriggerValue must be a whitespace separated
	// token of the TriggerAttr value.
	TriggerAttr    string `yaml:"trigger_attr"`
	TriggerValue   string `yaml:"trigger_value"`
	RequireTrigger bool   `yaml:"require_trigger"`
	// SelectAttr is the per-directive selector appended to the resolution key.
	SelectAttr string `yaml:"select_attr"`
	// SelectParam is the query parameter the select filter reads.
	SelectParam string `yaml:"select_param"`
	SwapAttr    string `yaml:"swap_attr"`
	// ParentParam triggers child indirection; ChildSentinel is the target
	// value that refers back to the page that asked for the parent.
	ParentParam   string `yaml:"parent_param"`
	ChildSentinel string `yaml:"child_sentinel"`
	MaxDepth      int    `yaml:"max_depth"`
}

// DefaultConfig returns the recursive-dispatch configuration: directives
// are elements matching [hx-get][hx-trigger~="server"].
func DefaultConfig() Config {
	return Config{
		TargetAttr:     htmx.AttrGet,
		TriggerAttr:    htmx.AttrTrigger,
		TriggerValue:   htmx.TriggerServer,
		RequireTrigger: true,
		SelectAttr:     htmx.AttrSelect,
		SelectParam:    htmx.AttrSelect,
		SwapAttr:       htmx.AttrSwap,
		ParentParam:    "parent",
		ChildSentinel:  "[child]",
		MaxDepth:       MaxDepth,
	}
}

// TemplateConfig returns the pre-registration configuration: every element
// carrying the target attribute is a directive.
func TemplateConfig() Config {
	cfg := DefaultConfig()
	cfg.RequireTrigger = false
	return cfg
}

// DirectiveSelector returns the selector matching directive elements.
func (c Config) DirectiveSelector() string {
	if !c.RequireTrigger {
		return "[" + c.TargetAttr + "]"
	}
	return "[" + c.TargetAttr + "][" + c.TriggerAttr + "~=" + strconv.Quote(c.TriggerValue) + "]"
}

// Validate reports the first problem with c, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	required := []struct{ name, value string }{
		{"target attribute", c.TargetAttr},
		{"select attribute", c.SelectAttr},
		{"select parameter", c.SelectParam},
		{"swap attribute", c.SwapAttr},
		{"parent parameter", c.ParentParam},
		{"child sentinel", c.ChildSentinel},
	}
	if c.RequireTrigger {
		required = append(required,
			struct{ name, value string }{"trigger attribute", c.TriggerAttr},
			struct{ name, value string }{"trigger value", c.TriggerValue},
		)
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, r.name)
		}
	}

	if c.MaxDepth != MaxDepth {
		return fmt.Errorf("%w: max depth is fixed at %d, got %d", ErrInvalidConfig, MaxDepth, c.MaxDepth)
	}
	if _, err := rewrite.ParseSelector(c.DirectiveSelector()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
