package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cyberrange-sim/internal/bus"
	"cyberrange-sim/internal/config"
	"cyberrange-sim/internal/engine"
	"cyberrange-sim/internal/game"
	"cyberrange-sim/internal/session"
	"cyberrange-sim/internal/store"
	"cyberrange-sim/internal/tui"
)

var (
	playTeam       string
	playConfigPath string
	playSchemaPath string
	playPrintOnly  bool
	playLogFile    string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run a local single-operator console",
	Long:  "play starts an in-process session and attaches a terminal console for one team.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("play requires an interactive terminal")
		}
		team := game.Team(playTeam)
		if !team.Valid() {
			return fmt.Errorf("team must be red or blue, got %q", playTeam)
		}

		cfg, err := config.Load(playConfigPath, playSchemaPath)
		if err != nil {
			return err
		}

		audit, transcript, cleanup, err := newSinks(playPrintOnly, playLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		b := bus.New()
		rt := session.NewRuntime(engine.New(cfg), store.NewSessionStore(), store.NewEventLog(), b, audit, transcript, nil)
		id := rt.CreateSession("")

		return tui.NewConsole(rt, b, id, team).Run()
	},
}

func init() {
	playCmd.Flags().StringVar(&playTeam, "team", "red", "Team to drive (red or blue)")
	playCmd.Flags().StringVar(&playConfigPath, "config", "config/scenario.yaml", "Path to scenario configuration YAML")
	playCmd.Flags().StringVar(&playSchemaPath, "schema", "schemas/scenario.cue", "Path to CUE schema file")
	playCmd.Flags().BoolVar(&playPrintOnly, "print-only", false, "Print audit/transcript rows to STDOUT instead of writing to DB")
	playCmd.Flags().StringVar(&playLogFile, "log-file", "", "Path to export audit/transcript logs (JSONL)")
}
