package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mnightingale/tablefsm"
	"github.com/mnightingale/tablefsm/internal/server"
)

var (
	serveAddr  string
	serveDelim string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the machine over HTTP",
	Long:  `Exposes POST /parse, GET /machine and GET /metrics.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := loadMachine()
		if err != nil {
			return err
		}
		delim, err := parseDelimiter(serveDelim)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())

		handler, err := server.NewHandler(server.Config{
			Machine:   m,
			Delimiter: delim,
			Metrics:   tablefsm.NewMetrics(reg, "tablefsm"),
			Gatherer:  reg,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("serving machine", "name", m.Name, "addr", serveAddr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVarP(&serveDelim, "delimiter", "d", `\n`, "Frame delimiter: a byte, an escape such as \\n, or 0xNN")
	rootCmd.AddCommand(serveCmd)
}
