package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobem/internal/metrics"
	"github.com/alexiusacademia/gobem/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rotor evaluations over websocket",
	Long: `Start a websocket service that evaluates the configured rotor on request.

Endpoints:
  /ws       websocket; send {"type":"point","wind_speed":10,"rpm":8.8} or
            {"type":"sweep","mode":"tsr","wind_speed":10,"omega_min":0.1,"omega_max":1.3,"n":50}
            {"type":"sweep","mode":"power","winds":[6,8],"rpm_min":0,"rpm_max":30,"n":60}
            Each evaluated point is sent as {"type":"point","content":{...}},
            followed by {"type":"done"}. Failures reply {"type":"error"}.
  /metrics  Prometheus metrics

Examples:
  gobem serve --airfoil dtu.csv --blade dtu10mw.json --addr :9000`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addRotorFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: [server] addr)")
	serveCmd.Flags().IntVar(&sweepWorkers, "workers", 4, "Parallel workers per request (default: [sweep] workers)")
}

func runServe(cmd *cobra.Command, args []string) {
	rotor, _, err := buildRotor(cmd)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	collector := metrics.New()
	rotor.Observer = collector

	addr := cfg.ServerAddr
	if cmd.Flags().Changed("addr") {
		addr = serveAddr
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	s := server.NewServer(addr, upgrader, rotor, workers(cmd), collector)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving on %s (websocket /ws, metrics /metrics)\n", addr)
	if err := s.Serve(ctx); err != nil && err != http.ErrServerClosed {
		fmt.Printf("Error: %v\n", err)
	}
}
