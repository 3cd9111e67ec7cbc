package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bridgeport/bridgeport-go/internal/infrastructure/metrics"
)

type metricsListener struct {
	srv *http.Server
}

func (m *metricsListener) run() error {
	err := m.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics listener: %w", err)
	}
	return nil
}

func (m *metricsListener) shutdown(ctx context.Context) {
	if err := m.srv.Shutdown(ctx); err != nil {
		m.srv.Close()
	}
}

var (
	// Serve command flags
	serveListenAddr string
	serveTLSCert    string
	serveTLSKey     string
	servePeerURL    string
	serveTimeout    time.Duration
)

// serveCmd runs the bridge
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge",
	Long: `Run the HTTPS listener and the message channel to the peer.
Examples:
  bridgeport serve --cert server.crt --key server.key
  bridgeport serve --listen :8443 --peer ws://127.0.0.1:9777/channel`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := Container.Config

		// Flags override the configuration file
		if serveListenAddr != "" {
			cfg.ListenAddr = serveListenAddr
		}
		if serveTLSCert != "" {
			cfg.TLSCert = serveTLSCert
		}
		if serveTLSKey != "" {
			cfg.TLSKey = serveTLSKey
		}
		if servePeerURL != "" {
			cfg.PeerURL = servePeerURL
		}
		if serveTimeout > 0 {
			cfg.RequestTimeout = serveTimeout
		}

		if cfg.TLSCert == "" || cfg.TLSKey == "" {
			fmt.Println("Error: a TLS certificate and key are required (--cert/--key or tls_cert/tls_key in the config file)")
			os.Exit(1)
		}
		for _, path := range []string{cfg.TLSCert, cfg.TLSKey} {
			if _, err := os.Stat(path); err != nil {
				fmt.Printf("Error: cannot read %s: %v\n", path, err)
				os.Exit(1)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// The channel must be up before the listener starts accepting;
		// there is no reconnect, so a dead peer at startup is fatal.
		if err := Container.Channel.Connect(ctx); err != nil {
			fmt.Printf("Error: failed to connect to peer: %v\n", err)
			os.Exit(1)
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return Container.Listener.Start()
		})

		var metricsServer *metricsListener
		if cfg.MetricsAddr != "" {
			srv := metrics.NewServer(cfg.MetricsAddr)
			metricsServer = &metricsListener{srv: srv}
			Container.Logger.Info("Metrics listening on %s", cfg.MetricsAddr)
			g.Go(metricsServer.run)
		}

		g.Go(func() error {
			<-ctx.Done()
			Container.Logger.Info("Shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := Container.Listener.Shutdown(shutdownCtx); err != nil {
				Container.Logger.Error("Listener shutdown: %v", err)
			}
			if metricsServer != nil {
				metricsServer.shutdown(shutdownCtx)
			}
			// Fails anything still pending and closes the channel.
			return Container.Bridge.Shutdown()
		})

		if err := g.Wait(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "Listen address for the HTTPS front door")
	serveCmd.Flags().StringVar(&serveTLSCert, "cert", "", "Path to the TLS certificate file")
	serveCmd.Flags().StringVar(&serveTLSKey, "key", "", "Path to the TLS key file")
	serveCmd.Flags().StringVar(&servePeerURL, "peer", "", "Websocket endpoint of the peer process")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 0, "Per-request deadline for peer replies")

	RootCmd.AddCommand(serveCmd)
}
