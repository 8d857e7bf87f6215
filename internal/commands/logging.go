package commands

import (
	"strings"

	"github.com/goliatone/go-bower/internal/logging"
	"github.com/goliatone/go-bower/pkg/interfaces"
)

const commandModuleRoot = "bower.commands"

// CommandLogger returns a module-scoped logger for command handlers.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
