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

	"github.com/ayusman/picam/internal/app"
	"github.com/ayusman/picam/internal/capture"
	"github.com/ayusman/picam/internal/config"
	"github.com/ayusman/picam/internal/framestore"
	"github.com/ayusman/picam/internal/server"
	"github.com/ayusman/picam/internal/snapshot"
	"github.com/ayusman/picam/internal/store"
	"github.com/ayusman/picam/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config (default ~/.picam/config.json)")
	addr := flag.String("addr", "", "listen address, overrides config")
	saveDir := flag.String("save-dir", "", "snapshot directory, overrides config")
	withTray := flag.Bool("tray", false, "show a system tray menu")
	flag.Parse()

	fmt.Println("PiCam - Camera Stream Server")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "save-dir":
			cfg.SaveDir = *saveDir
		case "tray":
			cfg.Tray = *withTray
		}
	})

	// Initialize the store
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	st, err := store.New(filepath.Join(cfg.DataDir, "picam.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	frames := framestore.New()
	defer frames.Close()

	encoder := capture.NewJPEGEncoder(cfg.JPEGQuality)

	saver, err := snapshot.New(snapshot.Config{
		Dir:     cfg.SaveDir,
		Frames:  frames,
		Encoder: encoder,
		Catalog: st,
	})
	if err != nil {
		log.Fatalf("Failed to prepare save directory: %v", err)
	}
	fmt.Printf("Saving snapshots to %s\n", saver.Dir())

	// The capture loop starts before the server accepts requests.
	capturer := app.New(app.Config{
		Camera:        capture.NewCamera(cfg.Source()),
		Frames:        frames,
		Transform:     capture.NewFlip(cfg.Orientation()),
		FPS:           cfg.FPS,
		RetryInterval: cfg.RetryInterval(),
	})
	capturer.Start()

	srv := server.New(server.Config{
		Frames:        frames,
		Encoder:       encoder,
		Saver:         saver,
		Store:         st,
		Capture:       capturer,
		SaveDir:       saver.Dir(),
		PollInterval:  cfg.StreamPoll(),
		FrameInterval: cfg.StreamInterval(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	if cfg.Tray {
		runTray(ctx, stop, cfg.Addr, saver)
	} else {
		<-ctx.Done()
	}

	shutdown(srv, capturer)
}

// loadConfig reads the config file, defaulting to ~/.picam/config.json.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = filepath.Join(config.DefaultConfig().DataDir, "config.json")
	}
	return config.Load(path)
}

// runTray blocks on the tray menu until Quit is chosen or ctx ends.
func runTray(ctx context.Context, stop context.CancelFunc, addr string, saver *snapshot.Saver) {
	t := tray.New()
	t.OnOpen(func() {
		log.Printf("Viewer available at %s", viewerURL(addr))
	})
	t.OnSave(func() string {
		res, err := saver.Save()
		switch {
		case errors.Is(err, snapshot.ErrNoFrame):
			return "no frame"
		case err != nil:
			log.Printf("Save failed: %v", err)
			return "failed"
		default:
			return res.Filename
		}
	})
	t.OnQuit(stop)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
}

// viewerURL turns a listen address into a browsable URL.
func viewerURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr + "/"
	}
	return "http://" + addr + "/"
}

// shutdown stops the server, then the capture loop. Best effort: the
// camera is released even if the server times out.
func shutdown(srv *server.Server, capturer *app.App) {
	fmt.Println("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	capturer.Stop()
}
