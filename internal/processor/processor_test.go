package processor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/noahjenkins/termfolio/internal/commands"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestProcessEmptyInput(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	for _, input := range []string{"", "   ", "\t"} {
		result := p.Process(context.Background(), input)
		if result.Command != input {
			t.Fatalf("command = %q, want raw input %q", result.Command, input)
		}
		if result.Output == nil || len(result.Output) != 0 {
			t.Fatalf("output for %q = %#v, want empty non-nil slice", input, result.Output)
		}
		if result.Timestamp.IsZero() {
			t.Fatalf("timestamp for %q is zero", input)
		}
	}
}

func TestProcessUnknownCommand(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	tests := []struct {
		input    string
		wantName string
	}{
		{input: "unknown-command", wantName: "unknown-command"},
		{input: "FooBar", wantName: "foobar"},
		{input: "  sudo rm -rf  ", wantName: "sudo"},
		{input: "cat", wantName: "cat"},
	}

	for _, tc := range tests {
		result := p.Process(context.Background(), tc.input)
		want := []string{
			"Command not found: " + tc.wantName,
			"Type 'help' for available commands.",
		}
		if strings.Join(result.Output, "\n") != strings.Join(want, "\n") {
			t.Fatalf("Process(%q) output = %#v, want %#v", tc.input, result.Output, want)
		}
		if result.Command != tc.input {
			t.Fatalf("Process(%q) command = %q", tc.input, result.Command)
		}
	}
}

func TestProcessIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	lower := p.Process(context.Background(), "help").Output
	for _, input := range []string{"HELP", "Help", "  help  "} {
		got := p.Process(context.Background(), input).Output
		if strings.Join(got, "\n") != strings.Join(lower, "\n") {
			t.Fatalf("Process(%q) differs from Process(\"help\")", input)
		}
	}
	if lower[0] != "Available commands:" {
		t.Fatalf("help first line = %q", lower[0])
	}
}

func TestProcessClearReturnsSentinel(t *testing.T) {
	t.Parallel()

	result := newTestProcessor(t).Process(context.Background(), "clear")
	if !commands.IsClearSignal(result.Output) {
		t.Fatalf("clear output = %#v, want sentinel", result.Output)
	}
}

func TestProcessCatReusesSectionProducers(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	for _, file := range p.Registry().Files() {
		section := strings.TrimSuffix(file, ".txt")
		viaCat := p.Process(context.Background(), "cat "+file).Output
		direct := p.Process(context.Background(), section).Output
		if strings.Join(viaCat, "\n") != strings.Join(direct, "\n") {
			t.Fatalf("cat %s output differs from %s", file, section)
		}
	}
}

func TestProcessCatEdgeCases(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)

	missing := p.Process(context.Background(), "cat nosuchfile.txt").Output
	if len(missing) != 1 || missing[0] != "cat: nosuchfile.txt: No such file or directory" {
		t.Fatalf("missing file output = %#v", missing)
	}

	extra := p.Process(context.Background(), "cat about.txt extra arguments").Output
	about := p.Process(context.Background(), "about").Output
	if strings.Join(extra, "\n") != strings.Join(about, "\n") {
		t.Fatalf("cat with extra args should use the first argument only")
	}

	upper := p.Process(context.Background(), "CAT About.TXT").Output
	if strings.Join(upper, "\n") != strings.Join(about, "\n") {
		t.Fatalf("cat should match files case-insensitively")
	}

	command := p.Process(context.Background(), "cat help.txt").Output
	if len(command) != 1 || command[0] != "cat: help.txt: No such file or directory" {
		t.Fatalf("commands without a file entry must not be cat-able: %#v", command)
	}
}

func TestProcessTimestampsAreNonDecreasing(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(time.Second), base.Add(-time.Minute), base.Add(2 * time.Second)}
	index := 0
	clock := func() time.Time {
		now := ticks[index]
		index++
		return now
	}

	p, err := New(commands.Builtin(), WithClock(clock))
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	var previous time.Time
	for i := range ticks {
		got := p.Process(context.Background(), "ls").Timestamp
		if got.Before(previous) {
			t.Fatalf("timestamp %d = %s went backwards from %s", i, got, previous)
		}
		previous = got
	}
	if !previous.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("final timestamp = %s", previous)
	}
}

func TestProcessRecordsSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	p, err := New(commands.Builtin(), WithTracer(provider.Tracer("test/processor")))
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	p.Process(context.Background(), "cat contact.txt")
	p.Process(context.Background(), "nope")

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	if spans[0].Name() != "terminal.process" {
		t.Fatalf("span name = %q", spans[0].Name())
	}
	if got := spanAttr(spans[0].Attributes(), "dispatch"); got != string(DispatchCat) {
		t.Fatalf("first dispatch = %q, want cat", got)
	}
	if got := spanAttr(spans[1].Attributes(), "dispatch"); got != string(DispatchNotFound) {
		t.Fatalf("second dispatch = %q, want not_found", got)
	}
	if got := spanAttr(spans[1].Attributes(), "command_name"); got != "nope" {
		t.Fatalf("command_name = %q", got)
	}
}

func TestNewRequiresRegistry(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil registry")
	}
}

func TestProcessNilContext(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // nil context is tolerated
	result := newTestProcessor(t).Process(nil, "about")
	if len(result.Output) == 0 {
		t.Fatal("expected about output with nil context")
	}
}

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	p, err := New(commands.Builtin())
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	return p
}

func spanAttr(attrs []attribute.KeyValue, key string) string {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value.Emit()
		}
	}
	return ""
}
