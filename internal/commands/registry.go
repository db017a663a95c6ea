package commands

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// ClearSignal is the reserved output line returned by the clear command.
// A result whose output is exactly []string{ClearSignal} wipes the transcript
// instead of being displayed.
const ClearSignal = "CLEAR_TERMINAL"

// Producer yields the display lines for one command.
type Producer func() []string

// Command describes one registry entry.
type Command struct {
	// Name is the lowercase token users type.
	Name string
	// Summary is a short description used by listings.
	Summary string
	// File, when set, exposes the same producer through `cat <File>`.
	File string
	// Hidden commands are omitted from listings.
	Hidden bool
	// Control commands may emit ClearSignal.
	Control bool
	Produce Producer
}

// Registry is an ordered, immutable command table plus its cat file table.
type Registry struct {
	commands []Command
	byName   map[string]int
	byFile   map[string]int
}

// NewRegistry validates commands and builds a registry preserving their order.
func NewRegistry(commands ...Command) (*Registry, error) {
	registry := &Registry{
		commands: make([]Command, 0, len(commands)),
		byName:   make(map[string]int, len(commands)),
		byFile:   make(map[string]int),
	}

	for _, command := range commands {
		name := strings.TrimSpace(command.Name)
		if name == "" {
			return nil, errors.New("command name must not be empty")
		}
		if name != strings.ToLower(name) || strings.ContainsFunc(name, unicode.IsSpace) {
			return nil, fmt.Errorf("command name %q must be a single lowercase token", command.Name)
		}
		if command.Produce == nil {
			return nil, fmt.Errorf("command %q has no producer", name)
		}
		if _, exists := registry.byName[name]; exists {
			return nil, fmt.Errorf("duplicate command %q", name)
		}
		if !command.Control && IsClearSignal(command.Produce()) {
			return nil, fmt.Errorf("command %q emits the reserved clear signal", name)
		}

		file := strings.TrimSpace(command.File)
		if file != "" {
			if _, exists := registry.byFile[file]; exists {
				return nil, fmt.Errorf("duplicate file %q for command %q", file, name)
			}
			registry.byFile[file] = len(registry.commands)
		}

		command.Name = name
		command.File = file
		registry.byName[name] = len(registry.commands)
		registry.commands = append(registry.commands, command)
	}

	return registry, nil
}

// Lookup returns the producer registered under name. The caller lowercases
// the name before lookup.
func (r *Registry) Lookup(name string) (Producer, bool) {
	if r == nil {
		return nil, false
	}
	index, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.commands[index].Produce, true
}

// LookupFile returns the producer backing a cat file name.
func (r *Registry) LookupFile(file string) (Producer, bool) {
	if r == nil {
		return nil, false
	}
	index, ok := r.byFile[file]
	if !ok {
		return nil, false
	}
	return r.commands[index].Produce, true
}

// Commands returns a copy of every command in registration order.
func (r *Registry) Commands() []Command {
	if r == nil {
		return nil
	}
	return slices.Clone(r.commands)
}

// Names returns the visible command names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.commands))
	for _, command := range r.commands {
		if command.Hidden {
			continue
		}
		names = append(names, command.Name)
	}
	return names
}

// Files returns the cat file names in registration order.
func (r *Registry) Files() []string {
	if r == nil {
		return nil
	}
	files := make([]string, 0, len(r.byFile))
	for _, command := range r.commands {
		if command.File != "" {
			files = append(files, command.File)
		}
	}
	return files
}

// IsClearSignal reports whether output is exactly the clear sentinel.
func IsClearSignal(output []string) bool {
	return len(output) == 1 && output[0] == ClearSignal
}

