package engine

import (
	"fmt"
	"path"
	"strings"

	"cyberrange-sim/internal/game"
)

// offensive handles the red team's command set at its home host.
func (e *Engine) offensive(name string, args []string, st game.State) Result {
	switch name {
	case "nmap", "hydra", "hping3", "ssh":
		if st.IPBanned(e.cfg.AttackerIP) {
			return errResult("%s: connect from %s: network is unreachable", name, e.cfg.AttackerIP)
		}
	}

	switch name {
	case "nmap":
		return e.nmap(args, st)
	case "hydra":
		return e.hydra(args, st)
	case "hping3":
		return e.hping3(args)
	case "ssh":
		return e.sshConnect(args, st)
	case "curl", "dirb", "nikto":
		return e.recon(name, args, st)
	}
	return contextError(name)
}

// nmap defers its report to simulate scan latency. The open-port set is
// computed from the firewall state at interpretation time.
func (e *Engine) nmap(args []string, st game.State) Result {
	target, ok := e.target(args)
	if !ok {
		return errResult("nmap: target host required (%s or %s)", e.cfg.VaultHost, e.cfg.PortalHost)
	}

	report := []game.Line{
		game.Output(fmt.Sprintf("Nmap scan report for %s", target)),
		game.Output("PORT     STATE SERVICE"),
		game.Output("22/tcp   open  ssh"),
		game.Output("80/tcp   open  http"),
	}
	if !st.FirewallEnabled {
		report = append(report,
			game.Output("443/tcp  open  https"),
			game.Output("3306/tcp open  mysql"),
		)
	}
	report = append(report, game.Output("Nmap done: 1 IP address (1 host up) scanned"))

	return Result{
		Lines: []game.Line{game.Output(fmt.Sprintf("Starting Nmap 7.94SVN ( https://nmap.org ) against %s", target))},
		Deferred: []DeferredEffect{{
			Delay: e.cfg.ScanDelay(),
			Lines: report,
			Logs: []LogRequest{{
				Source:     game.SourceNetwork,
				Message:    fmt.Sprintf("IDS: port scan against %s from %s", target, e.cfg.AttackerIP),
				Visibility: game.VisBlue,
			}},
		}},
	}
}

// hydra brute-forces the vault's SSH daemon or the portal login. Every run
// bumps the attempt counter so the defenders see it in the auth log.
func (e *Engine) hydra(args []string, st game.State) Result {
	target, ok := e.target(args)
	if !ok {
		return errResult("hydra: target host required (%s or %s)", e.cfg.VaultHost, e.cfg.PortalHost)
	}

	lines := []game.Line{
		game.Output("Hydra v9.5 (c) 2023 by van Hauser/THC - for authorized use only"),
		game.Output(fmt.Sprintf("[DATA] attacking %s with wordlist rockyou.txt", target)),
	}
	delta := &game.Delta{HydraRuns: 1}

	if target == e.cfg.PortalHost {
		lines = append(lines,
			game.Output(fmt.Sprintf("[80][http-post-form] host: %s   login: admin   password: %s", target, e.cfg.PortalAdminPassword)),
			game.Output("1 of 1 target successfully completed, 1 valid password found"),
		)
		delta.AdminPasswordFound = game.Bool(true)
		return Result{
			Lines: lines,
			Delta: delta,
			Logs: []LogRequest{{
				Source:     game.SourceSystem,
				Message:    fmt.Sprintf("CRITICAL: portal admin password cracked by brute force (login admin on %s)", target),
				Visibility: game.VisAll,
			}},
		}
	}

	if st.SSHHardened {
		lines = append(lines,
			game.Output("[STATUS] 14344399 tries, connection refused for root"),
			game.Output("0 of 1 target completed, 0 valid passwords found"),
		)
		return Result{
			Lines: lines,
			Delta: delta,
			Logs: []LogRequest{{
				Source:     game.SourceNetwork,
				Message:    fmt.Sprintf("IDS: SSH brute-force burst against %s, all attempts rejected", target),
				Visibility: game.VisBlue,
			}},
		}
	}

	lines = append(lines,
		game.Output(fmt.Sprintf("[22][ssh] host: %s   login: root   password: %s", target, e.cfg.VaultRootPassword)),
		game.Output("1 of 1 target successfully completed, 1 valid password found"),
	)
	return Result{
		Lines: lines,
		Delta: delta,
		Logs: []LogRequest{{
			Source:     game.SourceNetwork,
			Message:    fmt.Sprintf("CRITICAL: SSH brute force against %s recovered valid root credentials", target),
			Visibility: game.VisBlue,
		}},
	}
}

// hping3 starts the flood unconditionally; only an explicit defensive action
// stops it later, never a timer.
func (e *Engine) hping3(args []string) Result {
	target, ok := e.target(args)
	if !ok {
		return errResult("hping3: target host required (%s or %s)", e.cfg.VaultHost, e.cfg.PortalHost)
	}
	return Result{
		Lines: []game.Line{
			game.Output(fmt.Sprintf("HPING %s (eth0): S set, 40 headers + 0 data bytes", target)),
			game.Output("--- flood mode active, not showing replies ---"),
		},
		Delta: &game.Delta{DoSActive: game.Bool(true), ServerLoad: game.Float(99.9)},
		Logs: []LogRequest{{
			Source:     game.SourceNetwork,
			Message:    fmt.Sprintf("ALERT: traffic anomaly, SYN flood saturating %s, load at 99.9", target),
			Visibility: game.VisAll,
		}},
	}
}

// sshConnect applies the fixed access table. It is shared by both teams: the
// combinations below are the only ones that open a session.
func (e *Engine) sshConnect(args []string, st game.State) Result {
	if len(args) == 0 || !strings.Contains(args[0], "@") {
		return errResult("usage: ssh <user>@<host>")
	}
	user, host, _ := strings.Cut(args[0], "@")
	hostUp := strings.ToUpper(host)

	switch {
	case hostUp == strings.ToUpper(e.cfg.VaultHost) && user == "root":
		if st.SSHHardened {
			break
		}
		p := game.Prompt{User: "root", Host: e.cfg.VaultHost, Dir: "#"}
		return Result{
			Lines: []game.Line{
				game.Output(fmt.Sprintf("Welcome to %s (Ubuntu 22.04.3 LTS)", e.cfg.VaultHost)),
				game.Output("Last login: from 10.0.40.17"),
			},
			NewPrompt: &p,
			Logs: []LogRequest{{
				Source:     game.SourceNetwork,
				Message:    fmt.Sprintf("CRITICAL: root SSH session established on %s from %s", e.cfg.VaultHost, e.cfg.AttackerIP),
				Visibility: game.VisBlue,
			}},
		}
	case hostUp == strings.ToUpper(e.cfg.PortalHost) && user == "admin":
		if !st.AdminPasswordFound {
			break
		}
		p := game.Prompt{User: "admin", Host: e.cfg.PortalHost, Dir: "~"}
		return Result{
			Lines: []game.Line{
				game.Output(fmt.Sprintf("Welcome to %s (Debian GNU/Linux 12)", e.cfg.PortalHost)),
			},
			NewPrompt: &p,
			Logs: []LogRequest{{
				Source:     game.SourceNetwork,
				Message:    fmt.Sprintf("CRITICAL: admin session opened on %s with cracked credentials", e.cfg.PortalHost),
				Visibility: game.VisAll,
			}},
		}
	}
	return errResult("ssh: %s@%s: Permission denied (publickey,password)", user, host)
}

// recon handles curl, dirb, and nikto. Requests touching the database config
// resolve after a delay; whether they leak depends on the permissions at
// interpretation time.
func (e *Engine) recon(name string, args []string, st game.State) Result {
	if len(args) == 0 {
		return errResult("%s: target URL required", name)
	}
	url := args[len(args)-1]
	cfgFile := path.Base(e.cfg.DBConfigPath)

	if strings.Contains(strings.ToLower(url), cfgFile) {
		var deferred DeferredEffect
		deferred.Delay = e.cfg.ReconDelay()
		if st.DBConfigPermissions == game.PermsLax {
			deferred.Lines = []game.Line{
				game.Output("HTTP/1.1 200 OK"),
				game.Output("<?php"),
				game.Output(fmt.Sprintf("define('DB_USER', '%s');", e.cfg.DBUser)),
				game.Output(fmt.Sprintf("define('DB_PASS', '%s');", e.cfg.DBPassword)),
				game.Output("?>"),
			}
			deferred.Logs = []LogRequest{{
				Source:     game.SourceSystem,
				Message:    fmt.Sprintf("CRITICAL: %s served with database credentials, permissions still %s", cfgFile, game.PermsLax),
				Visibility: game.VisAll,
			}}
		} else {
			deferred.Lines = []game.Line{
				game.Output("HTTP/1.1 403 Forbidden"),
				game.Output(fmt.Sprintf("Access to %s denied", cfgFile)),
			}
		}
		return Result{
			Lines:    []game.Line{game.Output(fmt.Sprintf("%s: requesting %s ...", name, url))},
			Deferred: []DeferredEffect{deferred},
		}
	}

	switch name {
	case "curl":
		return Result{Lines: []game.Line{
			game.Output("HTTP/1.1 200 OK"),
			game.Output("<title>Portal Corporativo</title>"),
		}}
	case "dirb":
		return Result{Lines: []game.Line{
			game.Output(fmt.Sprintf("---- Scanning URL: %s ----", url)),
			game.Output("+ /index.php (CODE:200|SIZE:4096)"),
			game.Output(fmt.Sprintf("+ /%s (CODE:200|SIZE:512)", cfgFile)),
		}}
	default: // nikto
		return Result{Lines: []game.Line{
			game.Output("- Nikto v2.5.0"),
			game.Output("+ Server: Apache/2.4.52 (Ubuntu)"),
			game.Output(fmt.Sprintf("+ /%s: PHP config file may contain database IDs and passwords.", cfgFile)),
		}}
	}
}
