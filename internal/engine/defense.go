package engine

import (
	"fmt"
	"path"
	"strings"

	"cyberrange-sim/internal/game"
)

// defensive handles the blue team anywhere. At the home host only ssh is
// meaningful; the full toolset needs a session on the protected host.
func (e *Engine) defensive(name string, args []string, st game.State, atHome bool) Result {
	if atHome {
		if name == "ssh" {
			return e.sshConnect(args, st)
		}
		return contextError(name)
	}

	switch name {
	case "ufw":
		return e.ufw(args, st)
	case "nano":
		return e.nano(args)
	case "systemctl":
		return e.systemctl(args, st)
	case "chmod":
		return e.chmod(args)
	case "fail2ban-client":
		return e.fail2ban(args, st)
	case "ss":
		return e.ss(st)
	case "ls":
		return e.lsWebRoot(st)
	case "top", "htop":
		return e.top(st)
	case "journalctl", "grep":
		return e.authLog(name, args, st)
	case "openssl":
		return Result{Lines: []game.Line{
			game.Output("subject=CN = boveda-web.local"),
			game.Output("notAfter=Dec 31 23:59:59 2026 GMT"),
		}}
	case "sha256sum":
		return e.sha256sum(args, st)
	}
	return contextError(name)
}

func (e *Engine) ufw(args []string, st game.State) Result {
	if len(args) == 0 {
		return errResult("usage: ufw enable|status")
	}
	switch args[0] {
	case "enable":
		return Result{
			Lines: []game.Line{game.Output("Firewall is active and enabled on system startup")},
			Delta: &game.Delta{FirewallEnabled: game.Bool(true)},
			Logs: []LogRequest{{
				Source:     game.SourceBlue,
				Message:    fmt.Sprintf("Defense: perimeter firewall enabled on %s", e.cfg.VaultHost),
				Visibility: game.VisAll,
			}},
		}
	case "status":
		status := "inactive"
		if st.FirewallEnabled {
			status = "active"
		}
		lines := []game.Line{game.Output("Status: " + status)}
		for _, ip := range st.BannedIPs {
			lines = append(lines, game.Output(fmt.Sprintf("Anywhere                   DENY        %s", ip)))
		}
		return Result{Lines: lines}
	}
	return errResult("usage: ufw enable|status")
}

func (e *Engine) nano(args []string) Result {
	if len(args) == 0 || !strings.Contains(args[0], "sshd_config") {
		return errResult("nano: %s: no such file", strings.Join(args, " "))
	}
	return Result{
		Lines: []game.Line{
			game.Output("GNU nano 6.2    /etc/ssh/sshd_config"),
			game.Output("PermitRootLogin no"),
			game.Output("[ Wrote 1 line ]"),
		},
		Delta: &game.Delta{SSHHardened: game.Bool(true)},
		Logs: []LogRequest{{
			Source:     game.SourceBlue,
			Message:    "Defense: sshd_config hardened (PermitRootLogin no)",
			Visibility: game.VisAll,
		}},
	}
}

func (e *Engine) systemctl(args []string, st game.State) Result {
	if len(args) >= 2 && args[0] == "restart" && args[1] == "sshd" {
		return Result{Lines: []game.Line{
			game.Output("sshd.service restarted, configuration applied"),
		}}
	}
	if len(args) >= 2 && args[0] == "status" && args[1] == "sshd" {
		mode := "default configuration"
		if st.SSHHardened {
			mode = "hardened configuration"
		}
		return Result{Lines: []game.Line{
			game.Output("sshd.service - OpenBSD Secure Shell server"),
			game.Output("   Active: active (running), " + mode),
		}}
	}
	return errResult("usage: systemctl restart|status sshd")
}

func (e *Engine) chmod(args []string) Result {
	cfgFile := path.Base(e.cfg.DBConfigPath)
	if len(args) >= 2 && args[0] == game.PermsHardened && strings.Contains(args[1], cfgFile) {
		return Result{
			Delta: &game.Delta{DBConfigPermissions: game.Str(game.PermsHardened)},
			Logs: []LogRequest{{
				Source:     game.SourceBlue,
				Message:    fmt.Sprintf("Defense: %s permissions restricted to %s", cfgFile, game.PermsHardened),
				Visibility: game.VisAll,
			}},
		}
	}
	return errResult("chmod: expected 'chmod %s %s'", game.PermsHardened, e.cfg.DBConfigPath)
}

func (e *Engine) fail2ban(args []string, st game.State) Result {
	if len(args) >= 2 && args[0] == "ban" {
		ip := args[1]
		return Result{
			Lines: []game.Line{game.Output("1")},
			Delta: &game.Delta{AddBannedIPs: []string{ip}},
			Logs: []LogRequest{{
				Source:     game.SourceBlue,
				Message:    fmt.Sprintf("Defense: fail2ban banned %s", ip),
				Visibility: game.VisAll,
			}},
		}
	}
	if len(args) >= 1 && args[0] == "status" {
		lines := []game.Line{
			game.Output("Status for the jail: sshd"),
			game.Output(fmt.Sprintf("|- Currently banned: %d", len(st.BannedIPs))),
		}
		if len(st.BannedIPs) > 0 {
			lines = append(lines, game.Output("`- Banned IP list: "+strings.Join(st.BannedIPs, " ")))
		}
		return Result{Lines: lines}
	}
	return errResult("usage: fail2ban-client ban <ip> | status")
}

func (e *Engine) ss(st game.State) Result {
	lines := []game.Line{
		game.Output("State     Recv-Q Send-Q  Local Address:Port   Peer Address:Port"),
		game.Output("ESTAB     0      0       10.0.40.10:22        10.0.40.17:51442"),
	}
	if st.DoSActive {
		for _, port := range []string{"41002", "41003", "41004", "41005"} {
			lines = append(lines, game.Output(fmt.Sprintf(
				"SYN-RECV  0      0       10.0.40.10:80        %s:%s", e.cfg.AttackerIP, port)))
		}
		lines = append(lines, game.Output("... 48211 more SYN-RECV entries not shown"))
	}
	return Result{Lines: lines}
}

func (e *Engine) lsWebRoot(st game.State) Result {
	entries := []string{"assets", path.Base(e.cfg.DBConfigPath), path.Base(e.cfg.WebIndexPath), "uploads"}
	if st.PayloadDeployed {
		entries = append(entries, e.cfg.PayloadFile)
	}
	return Result{Lines: []game.Line{game.Output(strings.Join(entries, "  "))}}
}

func (e *Engine) top(st game.State) Result {
	load := 0.42
	if st.DoSActive {
		load = st.ServerLoad
	}
	return Result{Lines: []game.Line{
		game.Output(fmt.Sprintf("load average: %.2f, %.2f, %.2f", load, load, load)),
		game.Output(fmt.Sprintf("%%Cpu(s): %.1f us,  0.3 sy,  0.0 ni", load)),
	}}
}

// authLog backs journalctl and grep over the simulated auth log. Failed
// password lines appear once hydra has run at least once.
func (e *Engine) authLog(name string, args []string, st game.State) Result {
	if name == "grep" && len(args) < 2 {
		return errResult("usage: grep <pattern> /var/log/auth.log")
	}
	if st.HydraRunCount == 0 {
		if name == "grep" {
			return Result{}
		}
		return Result{Lines: []game.Line{
			game.Output("sshd[1023]: Accepted publickey for analista from 10.0.40.17"),
		}}
	}
	lines := []game.Line{
		game.Output(fmt.Sprintf("sshd[1023]: Failed password for root from %s port 48212 ssh2", e.cfg.AttackerIP)),
		game.Output(fmt.Sprintf("sshd[1023]: Failed password for root from %s port 48213 ssh2", e.cfg.AttackerIP)),
		game.Output(fmt.Sprintf("sshd[1023]: message repeated %d times: Failed password for root", st.HydraRunCount*4821)),
	}
	return Result{Lines: lines}
}

func (e *Engine) sha256sum(args []string, st game.State) Result {
	idxFile := path.Base(e.cfg.WebIndexPath)
	if len(args) == 0 || !strings.Contains(args[0], idxFile) {
		return errResult("sha256sum: %s: No such file or directory", strings.Join(args, " "))
	}
	if st.PayloadDeployed {
		return Result{
			Lines: []game.Line{game.Output(fmt.Sprintf("%s  %s", e.cfg.TamperedIndexHash, e.cfg.WebIndexPath))},
			Logs: []LogRequest{{
				Source:     game.SourceSystem,
				Message:    fmt.Sprintf("CRITICAL: integrity check failed for %s, hash deviates from baseline", e.cfg.WebIndexPath),
				Visibility: game.VisAll,
			}},
		}
	}
	return Result{Lines: []game.Line{
		game.Output(fmt.Sprintf("%s  %s", e.cfg.CleanIndexHash, e.cfg.WebIndexPath)),
	}}
}
