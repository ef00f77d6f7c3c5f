package core

import (
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Command{}
)

// RegisterCommand registers a command
func RegisterCommand(cmd Command) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[cmd.Name()] = cmd
	for _, a := range cmd.Aliases() {
		registry[a] = cmd
	}
}

// GetCommand returns the command with the given name
func GetCommand(name string) (Command, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	cmd, ok := registry[name]
	return cmd, ok
}

// AllCommands returns all registered commands sorted by name
func AllCommands() []Command {
	registryMu.RLock()
	defer registryMu.RUnlock()
	seen := map[string]bool{}
	list := make([]Command, 0, len(registry))
	for _, cmd := range registry {
		if seen[cmd.Name()] {
			continue
		}
		list = append(list, cmd)
		seen[cmd.Name()] = true
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Groups returns the distinct command groups.
func Groups() []string {
	seen := map[string]bool{}
	var groups []string
	for _, cmd := range AllCommands() {
		if g := cmd.Group(); g != "" && !seen[g] {
			seen[g] = true
			groups = append(groups, g)
		}
	}
	sort.Strings(groups)
	return groups
}

// resetRegistry clears every registration. Tests only.
func resetRegistry() {
	registryMu.Lock()
	registry = map[string]Command{}
	registryMu.Unlock()
}
