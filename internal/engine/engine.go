// Pure command interpreter for the red/blue exercise
package engine

import (
	"strings"
	"time"

	"cyberrange-sim/internal/config"
	"cyberrange-sim/internal/game"
)

// LogRequest asks the runtime to append one audit entry.
type LogRequest struct {
	Source     game.Source
	Message    string
	Visibility game.Visibility
}

// DeferredEffect describes output and mutations to apply after a delay. The
// interpreter never schedules anything itself; the runtime owns the timers.
type DeferredEffect struct {
	Delay time.Duration
	Lines []game.Line
	Delta *game.Delta
	Logs  []LogRequest
}

// Result is the complete effect description of one submitted command.
type Result struct {
	Lines     []game.Line
	NewPrompt *game.Prompt
	Clear     bool
	Delta     *game.Delta
	Logs      []LogRequest
	Deferred  []DeferredEffect
}

// remoteOnly lists command names that require an active session on a target
// host. They are rejected while the prompt still points at the home host.
var remoteOnly = map[string]bool{
	"ufw": true, "nano": true, "systemctl": true, "grep": true,
	"ss": true, "ls": true, "chmod": true, "openssl": true,
	"top": true, "htop": true, "journalctl": true,
	"fail2ban-client": true, "sha256sum": true, "wget": true,
}

// Engine evaluates raw commands against the shared state. It performs no I/O
// and holds no mutable state of its own, so results depend only on the input
// tuple and the scenario content.
type Engine struct {
	cfg *config.Scenario
}

// New creates an engine for the given scenario; nil selects the built-in one.
func New(cfg *config.Scenario) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{cfg: cfg}
}

// Scenario exposes the engine's scenario content.
func (e *Engine) Scenario() *config.Scenario { return e.cfg }

// Eval interprets one raw command for the acting team. Parsing is whitespace
// splitting only; the first token is the case-insensitive command name and a
// leading sudo is stripped.
func (e *Engine) Eval(raw string, team game.Team, st game.State, prompt game.Prompt) Result {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Result{}
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]
	if name == "sudo" {
		if len(args) == 0 {
			return errResult("sudo: a command is required")
		}
		name = strings.ToLower(args[0])
		args = args[1:]
	}

	atHome := prompt.Host == e.cfg.HomeHost(team)

	switch name {
	case "help":
		return e.help(team, atHome)
	case "clear":
		return Result{Clear: true}
	case "marca":
		return e.marca()
	case "exit":
		return e.exit(team, atHome, prompt)
	}

	if atHome && remoteOnly[name] {
		return errResult("%s: requires an active session on a target host (connect with ssh first)", name)
	}

	switch {
	case team == game.TeamRed && atHome:
		return e.offensive(name, args, st)
	case team == game.TeamBlue:
		return e.defensive(name, args, st, atHome)
	default: // any team on a remote host not covered above
		return e.compromised(name, args, prompt)
	}
}

// target resolves a known target host from the argument list. Arguments may
// name the host directly or embed it in a URL.
func (e *Engine) target(args []string) (string, bool) {
	for _, a := range args {
		up := strings.ToUpper(a)
		if strings.Contains(up, strings.ToUpper(e.cfg.VaultHost)) {
			return e.cfg.VaultHost, true
		}
		if strings.Contains(up, strings.ToUpper(e.cfg.PortalHost)) {
			return e.cfg.PortalHost, true
		}
	}
	return "", false
}

func errResult(format string, args ...any) Result {
	return Result{Lines: []game.Line{game.Errorf(format, args...)}}
}

func contextError(name string) Result {
	return errResult("%s: command not recognized in this context", name)
}
