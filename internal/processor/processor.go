package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/noahjenkins/termfolio/internal/commands"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const catCommand = "cat"

// Dispatch labels which branch produced a result.
type Dispatch string

const (
	DispatchEmpty    Dispatch = "empty"
	DispatchCat      Dispatch = "cat"
	DispatchRegistry Dispatch = "registry"
	DispatchNotFound Dispatch = "not_found"
)

// Result is one processed submission.
type Result struct {
	// Command is the raw input exactly as submitted.
	Command   string
	Output    []string
	Timestamp time.Time
}

// Option configures Processor construction.
type Option func(*Processor)

// WithClock overrides the wall clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithTracer configures the tracer used for processing spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Processor) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// Processor turns raw input lines into results. It never fails: unknown
// commands and missing files are reported as output text.
type Processor struct {
	registry *commands.Registry
	now      func() time.Time
	tracer   trace.Tracer

	mu   sync.Mutex
	last time.Time
}

// New builds a processor over registry.
func New(registry *commands.Registry, options ...Option) (*Processor, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}

	p := &Processor{
		registry: registry,
		now:      time.Now,
		tracer:   otel.Tracer("termfolio/processor"),
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		option(p)
	}
	return p, nil
}

// Registry returns the command table this processor dispatches to.
func (p *Processor) Registry() *commands.Registry {
	return p.registry
}

// Process dispatches one line of input.
func (p *Processor) Process(ctx context.Context, input string) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := p.tracer.Start(ctx, "terminal.process")
	defer span.End()

	name, args := tokenize(input)
	output, dispatch := p.dispatch(name, args)

	span.SetAttributes(
		attribute.String("command_name", name),
		attribute.String("dispatch", string(dispatch)),
		attribute.Int("line_count", len(output)),
	)

	return Result{
		Command:   input,
		Output:    output,
		Timestamp: p.timestamp(),
	}
}

func (p *Processor) dispatch(name string, args []string) ([]string, Dispatch) {
	if name == "" {
		return []string{}, DispatchEmpty
	}

	if name == catCommand && len(args) > 0 {
		return p.cat(args[0]), DispatchCat
	}

	if produce, ok := p.registry.Lookup(name); ok {
		return nonNil(produce()), DispatchRegistry
	}

	return NotFound(name), DispatchNotFound
}

func (p *Processor) cat(file string) []string {
	if produce, ok := p.registry.LookupFile(file); ok {
		return nonNil(produce())
	}
	return []string{fmt.Sprintf("cat: %s: No such file or directory", file)}
}

// timestamp returns the current time, clamped so that results from one
// processor never go backwards.
func (p *Processor) timestamp() time.Time {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if now.Before(p.last) {
		now = p.last
	}
	p.last = now
	return now
}

// NotFound returns the two-line unknown command message.
func NotFound(name string) []string {
	return []string{
		fmt.Sprintf("Command not found: %s", name),
		"Type 'help' for available commands.",
	}
}

func tokenize(input string) (string, []string) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
