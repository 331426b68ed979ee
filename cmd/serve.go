package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/satriadp/hadirku/internal/capture"
	"github.com/satriadp/hadirku/internal/config"
	"github.com/satriadp/hadirku/internal/engine"
	"github.com/satriadp/hadirku/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance web server",
	Long: `Start the Hadirku web server.
It serves the camera kiosk for check-ins and the operator API for
enrollment, attendance listing, and CSV export.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// initIndex builds the in-memory HNSW index over the enrolled gallery.
// Returns nil when the build fails; the caller falls back to the linear scan.
func initIndex(ctx context.Context, st engine.GalleryProvider, threshold float64) *engine.IndexMatcher {
	fmt.Println("Building in-memory HNSW index for face matching...")
	index := engine.NewIndexMatcher(threshold)
	if err := index.Build(ctx, st); err != nil {
		fmt.Printf("Warning: failed to build HNSW index: %v\n", err)
		fmt.Println("Face matching will use a linear gallery scan (slower)")
		return nil
	}
	fmt.Printf("HNSW index built with %d identities (in-memory only)\n", index.Count())
	return index
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	fmt.Printf("Using %s backend\n", cfg.Database.Driver)

	gallery := engine.GalleryFunc(st.ListAll)
	var matcher engine.Matcher = engine.NewLinearMatcher(gallery, cfg.Recognition.RecognitionThreshold)

	enrollment := engine.NewEnrollmentService(st, cfg.Recognition.Dim, cfg.Recognition.DedupThreshold)
	if cfg.Recognition.UseIndex {
		if index := initIndex(cmd.Context(), gallery, cfg.Recognition.RecognitionThreshold); index != nil {
			matcher = index
			enrollment.SetIndex(index)
		}
	}

	ledger := engine.NewLedger(st, st, matcher)
	extractor := capture.NewClient(&cfg.Extractor)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, web.Deps{
		Store:      st,
		Ledger:     ledger,
		Enrollment: enrollment,
		Extractor:  extractor,
	}, port, host)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Hadirku on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
