package commands

import (
	"embed"
	"fmt"
	"slices"
	"strings"
)

//go:embed content/*.txt
var contentFS embed.FS

// Builtin returns the resume vocabulary: sections exposed both as commands
// and as cat files, the clear control command, and hidden easter eggs.
func Builtin() *Registry {
	registry, err := NewRegistry(
		Command{Name: "help", Summary: "Show this help message", Produce: section("help")},
		Command{Name: "about", Summary: "Personal summary", File: "about.txt", Produce: section("about")},
		Command{Name: "experience", Summary: "Work history", File: "experience.txt", Produce: section("experience")},
		Command{Name: "skills", Summary: "Technical skills", File: "skills.txt", Produce: section("skills")},
		Command{Name: "education", Summary: "Educational background", File: "education.txt", Produce: section("education")},
		Command{Name: "projects", Summary: "Notable projects", File: "projects.txt", Produce: section("projects")},
		Command{
			Name:    "certifications",
			Summary: "Certifications & exams",
			File:    "certifications.txt",
			Produce: section("certifications"),
		},
		Command{Name: "contact", Summary: "Contact information", File: "contact.txt", Produce: section("contact")},
		Command{Name: "clear", Summary: "Clear terminal", Control: true, Produce: clearTerminal},
		Command{Name: "whoami", Summary: "Current user info", Produce: section("whoami")},
		Command{Name: "ls", Summary: "List available sections", Produce: section("ls")},
		Command{Name: "r2d2", Summary: "R2-D2 from Star Wars", Hidden: true, Produce: section("r2d2")},
		Command{Name: "darth", Summary: "Darth Vader from Star Wars", Hidden: true, Produce: section("darth")},
		Command{Name: "moria", Summary: "Gandalf from Lord of the Rings", Hidden: true, Produce: section("moria")},
		Command{Name: "precious", Summary: "Gollum from Lord of the Rings", Hidden: true, Produce: section("precious")},
		Command{Name: "secrets", Summary: "Hmmm, what could this be?", Produce: section("secrets")},
	)
	if err != nil {
		panic(fmt.Sprintf("commands: builtin registry: %v", err))
	}
	return registry
}

// Welcome returns the greeting seeded into a fresh session. The overlay
// greeting also explains how to close the window.
func Welcome(overlay bool) []string {
	if overlay {
		return mustLoad("welcome_overlay")
	}
	return mustLoad("welcome")
}

func section(name string) Producer {
	lines := mustLoad(name)
	return func() []string {
		return slices.Clone(lines)
	}
}

func clearTerminal() []string {
	return []string{ClearSignal}
}

func mustLoad(name string) []string {
	lines, err := load(name)
	if err != nil {
		panic(fmt.Sprintf("commands: %v", err))
	}
	return lines
}

func load(name string) ([]string, error) {
	raw, err := contentFS.ReadFile("content/" + name + ".txt")
	if err != nil {
		return nil, fmt.Errorf("read content %q: %w", name, err)
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n"), nil
}
