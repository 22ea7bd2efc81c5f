// mpcd is the trajectory-controller daemon. It listens for the driving
// platform's websocket session, runs one receding-horizon solve per
// telemetry frame, and answers with steering and throttle commands.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/pathtrack/internal/config"
	"github.com/banshee-data/pathtrack/internal/control"
	"github.com/banshee-data/pathtrack/internal/cyclelog"
	"github.com/banshee-data/pathtrack/internal/monitoring"
	"github.com/banshee-data/pathtrack/internal/simlink"
)

var (
	listen     = flag.String("listen", ":4567", "Listen address for the platform websocket")
	configPath = flag.String("config", "", "Optional tuning config JSON file")
	recordPath = flag.String("record", "", "Optional sqlite file to record per-cycle diagnostics")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	driver := control.NewDriver(cfg)

	if *recordPath != "" {
		rec, err := cyclelog.Open(*recordPath)
		if err != nil {
			log.Fatalf("failed to open cycle log: %v", err)
		}
		defer rec.Close()
		driver.SetRecorder(rec)
		log.Printf("recording cycles to %s (session %s)", *recordPath, rec.Session())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    *listen,
		Handler: simlink.NewServer(driver.ProcessCycle).ServeMux(),
	}

	go func() {
		log.Printf("listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	monitoring.LogCounters()
	log.Printf("graceful shutdown complete")
}
