package engine

import (
	"fmt"

	"cyberrange-sim/internal/game"
)

// compromised is the minimal command set on a captured host: the attacker
// stages a payload, nothing more.
func (e *Engine) compromised(name string, args []string, prompt game.Prompt) Result {
	if name != "wget" {
		return contextError(name)
	}
	if len(args) == 0 {
		return errResult("wget: missing URL")
	}
	return Result{
		Lines: []game.Line{
			game.Output(fmt.Sprintf("Resolving %s ... connected.", args[0])),
			game.Output("HTTP request sent, awaiting response... 200 OK"),
			game.Output(fmt.Sprintf("'%s' saved [4096/4096]", e.cfg.PayloadFile)),
		},
		Delta: &game.Delta{PayloadDeployed: game.Bool(true)},
		Logs: []LogRequest{{
			Source:     game.SourceRed,
			Message:    fmt.Sprintf("Payload staged on %s: %s", prompt.Host, e.cfg.PayloadFile),
			Visibility: game.VisRed,
		}},
	}
}
