// YAML scenario loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"cyberrange-sim/internal/game"
)

// PromptTemplate is the initial shell context of a team.
type PromptTemplate struct {
	User string `yaml:"user"`
	Host string `yaml:"host"`
	Dir  string `yaml:"dir"`
}

// Prompt converts the template into a runtime prompt.
func (p PromptTemplate) Prompt() game.Prompt {
	return game.Prompt{User: p.User, Host: p.Host, Dir: p.Dir}
}

// Scenario is the root configuration: target hosts, planted credentials, and
// timing of deferred effects. Help text and banners live with the engine; the
// scenario only carries the knobs an instructor would tune per exercise.
type Scenario struct {
	VaultHost           string         `yaml:"vault_host"`
	PortalHost          string         `yaml:"portal_host"`
	AttackerIP          string         `yaml:"attacker_ip"`
	VaultRootPassword   string         `yaml:"vault_root_password"`
	PortalAdminPassword string         `yaml:"portal_admin_password"`
	DBUser              string         `yaml:"db_user"`
	DBPassword          string         `yaml:"db_password"`
	DBConfigPath        string         `yaml:"db_config_path"`
	WebIndexPath        string         `yaml:"web_index_path"`
	PayloadFile         string         `yaml:"payload_file"`
	CleanIndexHash      string         `yaml:"clean_index_hash"`
	TamperedIndexHash   string         `yaml:"tampered_index_hash"`
	ScanDelayMS         int            `yaml:"scan_delay_ms"`
	ReconDelayMS        int            `yaml:"recon_delay_ms"`
	RedPrompt           PromptTemplate `yaml:"red_prompt"`
	BluePrompt          PromptTemplate `yaml:"blue_prompt"`
}

// Default returns the built-in training scenario.
func Default() *Scenario {
	return &Scenario{
		VaultHost:           "BOVEDA-WEB",
		PortalHost:          "PORTAL-RRHH",
		AttackerIP:          "203.0.113.66",
		VaultRootPassword:   "B0v3d4!2024",
		PortalAdminPassword: "P0rtal*Adm1n",
		DBUser:              "webapp",
		DBPassword:          "Sup3rS3cret!",
		DBConfigPath:        "/var/www/html/db_config.php",
		WebIndexPath:        "/var/www/html/index.php",
		PayloadFile:         "sys_update.php",
		CleanIndexHash:      "9f2ac8dd4f1b35e0a7c6b41d8e02f3a95c7d816e4b02a9c3f5e6d7081a2b3c4d",
		TamperedIndexHash:   "d41fe8a07b6c5d3e2f1a0b9c8d7e6f5a4b3c2d1e0f9a8b7c6d5e4f3a2b1c0d9e",
		ScanDelayMS:         2500,
		ReconDelayMS:        1800,
		RedPrompt:           PromptTemplate{User: "operador", Host: "kali-red", Dir: "~"},
		BluePrompt:          PromptTemplate{User: "analista", Host: "soc-blue", Dir: "~"},
	}
}

// ScanDelay is the deferred-output delay of port scans.
func (s *Scenario) ScanDelay() time.Duration {
	return time.Duration(s.ScanDelayMS) * time.Millisecond
}

// ReconDelay is the deferred-output delay of web reconnaissance.
func (s *Scenario) ReconDelay() time.Duration {
	return time.Duration(s.ReconDelayMS) * time.Millisecond
}

// HomeHost returns the home host of a team.
func (s *Scenario) HomeHost(team game.Team) string {
	if team == game.TeamRed {
		return s.RedPrompt.Host
	}
	return s.BluePrompt.Host
}

// HomePrompt returns the home prompt of a team.
func (s *Scenario) HomePrompt(team game.Team) game.Prompt {
	if team == game.TeamRed {
		return s.RedPrompt.Prompt()
	}
	return s.BluePrompt.Prompt()
}

// Load reads a YAML scenario and validates it against a CUE schema. Fields
// absent from the file keep their built-in defaults.
func Load(configPath, cueSchemaPath string) (*Scenario, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return cfg, nil
}
