package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/drishti/internal/app"
	"github.com/ayusman/drishti/internal/config"
	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/internal/server"
	"github.com/ayusman/drishti/internal/store"
	"github.com/ayusman/drishti/internal/tray"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		addr        = flag.String("addr", "", "HTTP listen address (overrides config)")
		configPath  = flag.String("config", "", "path to config file")
		dbPath      = flag.String("db", "", "path to the settings database")
		cameraIndex = flag.Int("camera", -2, "camera device index (-1 probes, overrides config)")
		debug       = flag.Bool("debug", false, "enable the MJPEG debug stream")
		withTray    = flag.Bool("tray", false, "show a system tray status icon")
	)
	flag.Parse()

	fmt.Println("Drishti Vision Service")

	cfg := loadConfig(*configPath)
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *cameraIndex >= -1 {
		cfg.CameraIndex = *cameraIndex
	}
	if *debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	st, err := openStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	applySettings(cfg, st)

	a := app.New(app.Config{
		CameraIndices: probeOrder(cfg),
		Face:          newFaceDetector(cfg),
		Hands:         newHandDetector(),
	})
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer a.Stop()

	srv := server.New(server.Config{
		App:          a,
		Store:        st,
		TickInterval: cfg.TickInterval(),
		Debug:        cfg.Debug,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", cfg.ListenAddr)
		errCh <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	if *withTray {
		runTray(ctx, stop, a)
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// loadConfig reads the config file if one exists, falling back to
// defaults. An explicit -config path must exist.
func loadConfig(path string) *config.Config {
	explicit := path != ""
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		if explicit {
			log.Fatalf("Failed to load config: %v", err)
		}
		return config.Default()
	}
	return cfg
}

// openStore opens the settings database, creating the data directory
// under the user's home when no explicit path is given.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		dir := filepath.Join(home, ".drishti")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		path = filepath.Join(dir, "drishti.db")
	}

	return store.New(path)
}

// applySettings overlays persisted settings onto the config. File and
// flag values win for the camera index only when explicitly pinned.
func applySettings(cfg *config.Config, st *store.Store) {
	settings, err := st.Settings().Load()
	if err != nil {
		log.Printf("Failed to load settings, using config: %v", err)
		return
	}

	if cfg.CameraIndex == -1 && settings.CameraIndex >= 0 {
		cfg.CameraIndex = settings.CameraIndex
	}
	if settings.FaceBackend != "" {
		cfg.FaceBackend = settings.FaceBackend
	}
}

// probeOrder translates the configured camera index into a probe list.
func probeOrder(cfg *config.Config) []int {
	if cfg.CameraIndex >= 0 {
		return []int{cfg.CameraIndex}
	}

	indices := make([]int, cfg.CameraProbeLimit)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// newFaceDetector builds the configured face backend. A backend that
// fails to initialize degrades to no face detection rather than
// aborting startup.
func newFaceDetector(cfg *config.Config) detector.FaceDetector {
	switch cfg.FaceBackend {
	case config.FaceBackendCascade:
		d, err := detector.NewCascadeFaceDetector(cfg.CascadePath)
		if err != nil {
			log.Printf("Cascade face detector unavailable: %v", err)
			return nil
		}
		return d
	case config.FaceBackendOllama:
		d, err := detector.NewOllamaFaceDetector(cfg.OllamaHost, cfg.OllamaModel)
		if err != nil {
			log.Printf("Ollama face detector unavailable: %v", err)
			return nil
		}
		return d
	default:
		return nil
	}
}

// newHandDetector builds the hand landmark detector, falling back to a
// no-hands mock when the sidecar script is not installed.
func newHandDetector() detector.HandDetector {
	d, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		log.Printf("Hand detector unavailable, hands disabled: %v", err)
		return detector.NewMockHandDetector()
	}
	return d
}

// runTray blocks on the tray loop, mirroring pipeline state into the
// menu until the context is cancelled or Quit is clicked.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App) {
	t := tray.New()
	t.OnQuit(stop)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-ticker.C:
				t.SetCameraAvailable(a.CameraAvailable())
				t.SetLastGesture(a.LastGesture())
			}
		}
	}()

	t.Run()
}
