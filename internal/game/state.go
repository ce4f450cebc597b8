package game

import "time"

// File permission modes for the database config.
const (
	PermsLax      = "644"
	PermsHardened = "640"
)

// State is the single shared simulation document per session. Every field is
// monotonic or idempotent under the reachable command set, so last-writer-wins
// merges cannot violate the invariants.
type State struct {
	FirewallEnabled     bool      `json:"firewall_enabled"`
	SSHHardened         bool      `json:"ssh_hardened"`
	BannedIPs           []string  `json:"banned_ips"`
	HydraRunCount       int       `json:"hydra_run_count"`
	AdminPasswordFound  bool      `json:"admin_password_found"`
	DBConfigPermissions string    `json:"db_config_permissions"`
	DoSActive           bool      `json:"dos_active"`
	ServerLoad          float64   `json:"server_load"`
	PayloadDeployed     bool      `json:"payload_deployed"`
	LastUpdated         time.Time `json:"last_updated"`
}

// NewState returns the initial state of a fresh session.
func NewState() State {
	return State{DBConfigPermissions: PermsLax}
}

// IPBanned reports whether ip was banned by the defenders.
func (s State) IPBanned(ip string) bool {
	for _, b := range s.BannedIPs {
		if b == ip {
			return true
		}
	}
	return false
}

// Delta is a partial state overlay. Nil pointers leave the field untouched;
// AddBannedIPs appends and HydraRuns increments, so concurrent deltas from the
// two teams compose instead of clobbering each other.
type Delta struct {
	FirewallEnabled     *bool    `json:"firewall_enabled,omitempty"`
	SSHHardened         *bool    `json:"ssh_hardened,omitempty"`
	AddBannedIPs        []string `json:"add_banned_ips,omitempty"`
	HydraRuns           int      `json:"hydra_runs,omitempty"`
	AdminPasswordFound  *bool    `json:"admin_password_found,omitempty"`
	DBConfigPermissions *string  `json:"db_config_permissions,omitempty"`
	DoSActive           *bool    `json:"dos_active,omitempty"`
	ServerLoad          *float64 `json:"server_load,omitempty"`
	PayloadDeployed     *bool    `json:"payload_deployed,omitempty"`
}

// Empty reports whether applying d would change nothing.
func (d Delta) Empty() bool {
	return d.FirewallEnabled == nil && d.SSHHardened == nil &&
		len(d.AddBannedIPs) == 0 && d.HydraRuns == 0 &&
		d.AdminPasswordFound == nil && d.DBConfigPermissions == nil &&
		d.DoSActive == nil && d.ServerLoad == nil && d.PayloadDeployed == nil
}

// Apply overlays d onto s and stamps LastUpdated with now. The receiver is
// not modified; banned IPs already present are skipped.
func (s State) Apply(d Delta, now time.Time) State {
	next := s
	next.BannedIPs = append([]string(nil), s.BannedIPs...)
	if d.FirewallEnabled != nil {
		next.FirewallEnabled = *d.FirewallEnabled
	}
	if d.SSHHardened != nil {
		next.SSHHardened = *d.SSHHardened
	}
	for _, ip := range d.AddBannedIPs {
		if !next.IPBanned(ip) {
			next.BannedIPs = append(next.BannedIPs, ip)
		}
	}
	next.HydraRunCount += d.HydraRuns
	if d.AdminPasswordFound != nil {
		next.AdminPasswordFound = *d.AdminPasswordFound
	}
	if d.DBConfigPermissions != nil {
		next.DBConfigPermissions = *d.DBConfigPermissions
	}
	if d.DoSActive != nil {
		next.DoSActive = *d.DoSActive
	}
	if d.ServerLoad != nil {
		next.ServerLoad = *d.ServerLoad
	}
	if d.PayloadDeployed != nil {
		next.PayloadDeployed = *d.PayloadDeployed
	}
	next.LastUpdated = now
	return next
}

// Bool returns a pointer for use in Delta literals.
func Bool(v bool) *bool { return &v }

// Float returns a pointer for use in Delta literals.
func Float(v float64) *float64 { return &v }

// Str returns a pointer for use in Delta literals.
func Str(v string) *string { return &v }
