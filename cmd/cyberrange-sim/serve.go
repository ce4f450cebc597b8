package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cyberrange-sim/internal/bus"
	"cyberrange-sim/internal/config"
	"cyberrange-sim/internal/engine"
	"cyberrange-sim/internal/logging"
	"cyberrange-sim/internal/server"
	"cyberrange-sim/internal/session"
	"cyberrange-sim/internal/store"
)

var (
	serveAddr       string
	serveConfigPath string
	serveSchemaPath string
	servePrintOnly  bool
	serveLogFile    string
	serveSession    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the multi-session exercise server",
	Long:  "serve starts the HTTP/websocket server hosting red/blue exercise sessions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New("server")
		ctx := logging.NewContext(context.Background(), log)

		cfg, err := config.Load(serveConfigPath, serveSchemaPath)
		if err != nil {
			return err
		}

		audit, transcript, cleanup, err := newSinks(servePrintOnly, serveLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		b := bus.New()
		rt := session.NewRuntime(engine.New(cfg), store.NewSessionStore(), store.NewEventLog(), b, audit, transcript, nil)

		if serveSession != "" {
			id := rt.CreateSession(serveSession)
			log.Info("session ready", "id", id)
		}

		srv := server.NewServer(rt, b)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			log.Info("listening", "addr", serveAddr)
			if err := srv.Start(ctx, serveAddr); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-sigs:
		}

		cancel()
		log.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "config/scenario.yaml", "Path to scenario configuration YAML")
	serveCmd.Flags().StringVar(&serveSchemaPath, "schema", "schemas/scenario.cue", "Path to CUE schema file")
	serveCmd.Flags().BoolVar(&servePrintOnly, "print-only", false, "Print audit/transcript rows to STDOUT instead of writing to DB")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Path to export audit/transcript logs (JSONL)")
	serveCmd.Flags().StringVar(&serveSession, "session", "", "Create a session with this id at startup")
}
