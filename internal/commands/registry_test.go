package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryRejectsInvalidCommands(t *testing.T) {
	t.Parallel()

	lines := func() []string { return []string{"ok"} }

	tests := []struct {
		name     string
		commands []Command
		wantErr  string
	}{
		{
			name:     "empty name",
			commands: []Command{{Name: "  ", Produce: lines}},
			wantErr:  "must not be empty",
		},
		{
			name:     "uppercase name",
			commands: []Command{{Name: "Help", Produce: lines}},
			wantErr:  "single lowercase token",
		},
		{
			name:     "name with space",
			commands: []Command{{Name: "cat file", Produce: lines}},
			wantErr:  "single lowercase token",
		},
		{
			name:     "missing producer",
			commands: []Command{{Name: "about"}},
			wantErr:  "no producer",
		},
		{
			name:     "duplicate name",
			commands: []Command{{Name: "about", Produce: lines}, {Name: "about", Produce: lines}},
			wantErr:  "duplicate command",
		},
		{
			name: "duplicate file",
			commands: []Command{
				{Name: "about", File: "about.txt", Produce: lines},
				{Name: "bio", File: "about.txt", Produce: lines},
			},
			wantErr: "duplicate file",
		},
		{
			name:     "sentinel from non-control command",
			commands: []Command{{Name: "wipe", Produce: clearTerminal}},
			wantErr:  "reserved clear signal",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewRegistry(tc.commands...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRegistryLookupAndFilesShareProducers(t *testing.T) {
	t.Parallel()

	calls := 0
	about := func() []string {
		calls++
		return []string{"about me"}
	}
	registry, err := NewRegistry(
		Command{Name: "about", File: "about.txt", Produce: about},
		Command{Name: "clear", Control: true, Produce: clearTerminal},
		Command{Name: "egg", Hidden: true, Produce: func() []string { return nil }},
	)
	require.NoError(t, err)
	calls = 0

	produce, ok := registry.Lookup("about")
	require.True(t, ok)
	assert.Equal(t, []string{"about me"}, produce())

	fileProduce, ok := registry.LookupFile("about.txt")
	require.True(t, ok)
	assert.Equal(t, []string{"about me"}, fileProduce())
	assert.Equal(t, 2, calls)

	_, ok = registry.Lookup("ABOUT")
	assert.False(t, ok, "lookup must not fold case itself")
	_, ok = registry.LookupFile("clear.txt")
	assert.False(t, ok)

	assert.Equal(t, []string{"about", "clear"}, registry.Names())
	assert.Equal(t, []string{"about.txt"}, registry.Files())
	assert.Len(t, registry.Commands(), 3)
}

func TestNilRegistryLookupsAreAbsent(t *testing.T) {
	t.Parallel()

	var registry *Registry
	_, ok := registry.Lookup("help")
	assert.False(t, ok)
	_, ok = registry.LookupFile("about.txt")
	assert.False(t, ok)
	assert.Nil(t, registry.Names())
}

func TestIsClearSignal(t *testing.T) {
	t.Parallel()

	assert.True(t, IsClearSignal([]string{ClearSignal}))
	assert.False(t, IsClearSignal([]string{ClearSignal, ""}))
	assert.False(t, IsClearSignal([]string{"clear"}))
	assert.False(t, IsClearSignal(nil))
}

func TestBuiltinVocabulary(t *testing.T) {
	t.Parallel()

	registry := Builtin()

	for _, name := range []string{
		"help", "about", "experience", "skills", "education", "projects",
		"certifications", "contact", "clear", "whoami", "ls", "secrets",
		"r2d2", "darth", "moria", "precious",
	} {
		produce, ok := registry.Lookup(name)
		if !ok {
			t.Fatalf("builtin registry missing %q", name)
		}
		if len(produce()) == 0 {
			t.Fatalf("builtin command %q produced no lines", name)
		}
	}

	wantFiles := []string{
		"about.txt", "experience.txt", "skills.txt", "education.txt",
		"projects.txt", "certifications.txt", "contact.txt",
	}
	assert.Equal(t, wantFiles, registry.Files())

	for _, name := range registry.Names() {
		for _, egg := range []string{"r2d2", "darth", "moria", "precious"} {
			if name == egg {
				t.Fatalf("hidden command %q listed in Names()", egg)
			}
		}
	}
}

func TestBuiltinProducersReturnFreshCopies(t *testing.T) {
	t.Parallel()

	produce, ok := Builtin().Lookup("about")
	require.True(t, ok)

	first := produce()
	first[0] = "mutated"
	second := produce()
	assert.Equal(t, "Noah Jenkins - Cloud Administrator, Full Stack Developer & Voice Actor", second[0])
}

func TestBuiltinContentMatchesResume(t *testing.T) {
	t.Parallel()

	registry := Builtin()
	tests := []struct {
		command string
		want    []string
	}{
		{command: "help", want: []string{"Available commands:", "  help           - Show this help message", "  clear       - Clear terminal"}},
		{command: "about", want: []string{"Always learning, always building, always creating."}},
		{command: "experience", want: []string{"Professional Experience:", "🏢 Middleby, Cloud Engineer", "🏢 MSI, Cloud Administrator"}},
		{command: "skills", want: []string{"Technical Skills:", "🔒 Security:", "⚡ Automation:"}},
		{command: "education", want: []string{"🎓 London App Brewery, Python Developer Bootcamp"}},
		{command: "contact", want: []string{"📧 Email:     noah@noahjenkins.com"}},
		{command: "whoami", want: []string{"noah@jenkins-terminal:~$ whoami", "Current session: Interactive Resume Terminal"}},
		{command: "ls", want: []string{"about.txt         experience.txt    skills.txt", `Use "cat [filename]" to view contents`}},
		{command: "r2d2", want: []string{"Art by Shanaka Dias", "*BEEP BOOP* R2-D2 reporting for duty!"}},
		{command: "moria", want: []string{"- Gandalf the Grey"}},
		{command: "precious", want: []string{"Art by Anil K. Narayanan", "Gollum! Gollum!"}},
		{command: "secrets", want: []string{"  r2d2      - R2-D2 from Star Wars", "  precious  - Gollum from Lord of the Rings"}},
	}

	for _, tc := range tests {
		produce, ok := registry.Lookup(tc.command)
		require.True(t, ok, tc.command)
		lines := produce()
		for _, want := range tc.want {
			assert.Contains(t, lines, want, "command %s", tc.command)
		}
	}
}

func TestWelcomeVariants(t *testing.T) {
	t.Parallel()

	window := Welcome(false)
	overlay := Welcome(true)

	assert.Equal(t, "Welcome to Noah Jenkins Interactive Resume Terminal", window[0])
	assert.Equal(t, "", window[len(window)-1])
	assert.NotContains(t, strings.Join(window, "\n"), "Escape")
	assert.Contains(t, overlay, "Press Escape or Ctrl/Cmd+` to close terminal.")
	assert.Len(t, overlay, len(window)+1)
}
