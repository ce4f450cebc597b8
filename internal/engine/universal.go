package engine

import (
	"fmt"

	"cyberrange-sim/internal/game"
)

// help lists the commands reachable from the caller's current context.
func (e *Engine) help(team game.Team, atHome bool) Result {
	lines := []game.Line{
		game.Output("Available commands:"),
		game.Output("  help                      show this listing"),
		game.Output("  clear                     wipe your terminal"),
		game.Output("  marca                     show the exercise banner"),
		game.Output("  exit                      close the active remote session"),
	}
	switch {
	case team == game.TeamRed && atHome:
		lines = append(lines,
			game.Output(fmt.Sprintf("  nmap <host>               port scan %s or %s", e.cfg.VaultHost, e.cfg.PortalHost)),
			game.Output("  hydra <host>              brute-force SSH or portal credentials"),
			game.Output("  hping3 <host>             SYN flood a target"),
			game.Output("  ssh <user>@<host>         open a session on a target"),
			game.Output("  curl|dirb|nikto <url>     probe the target web surface"),
		)
	case team == game.TeamBlue && atHome:
		lines = append(lines,
			game.Output(fmt.Sprintf("  ssh <user>@<host>         connect to %s for defense work", e.cfg.VaultHost)),
		)
	case team == game.TeamBlue:
		lines = append(lines,
			game.Output("  ufw enable|status         perimeter firewall"),
			game.Output("  nano sshd_config          harden the SSH daemon"),
			game.Output("  systemctl restart sshd    apply SSH configuration"),
			game.Output("  chmod 640 <file>          restrict file permissions"),
			game.Output("  fail2ban-client ban <ip>  ban an address"),
			game.Output("  ss | top | htop           inspect connections and load"),
			game.Output("  journalctl | grep         inspect authentication logs"),
			game.Output("  ls | sha256sum | openssl  inspect the web root"),
		)
	default:
		lines = append(lines,
			game.Output("  wget <url>                fetch a remote file"),
		)
	}
	return Result{Lines: lines}
}

// marca prints the exercise banner.
func (e *Engine) marca() Result {
	return Result{Lines: []game.Line{
		game.Rich(`  ____ ___ ____  _____ ____      ____      _    _   _  ____ _____`),
		game.Rich(` / ___|_ _| __ )| ____|  _ \    |  _ \    / \  | \ | |/ ___| ____|`),
		game.Rich(`| |    | ||  _ \|  _| | |_) |   | |_) |  / _ \ |  \| | |  _|  _|`),
		game.Rich(`| |___ | || |_) | |___|  _ <    |  _ <  / ___ \| |\  | |_| | |___`),
		game.Rich(` \____|___|____/|_____|_| \_\   |_| \_\/_/   \_\_| \_|\____|_____|`),
		game.Rich(""),
		game.Rich("        ejercicio red/blue :: entrenamiento SOC"),
	}}
}

// exit closes the active remote session. At the home host there is nothing
// to close.
func (e *Engine) exit(team game.Team, atHome bool, prompt game.Prompt) Result {
	if atHome {
		return errResult("exit: no active remote session")
	}
	home := e.cfg.HomePrompt(team)
	return Result{
		Lines:     []game.Line{game.Output(fmt.Sprintf("Connection to %s closed.", prompt.Host))},
		NewPrompt: &home,
	}
}
