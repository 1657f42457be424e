package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"vigil/internal/annotations"
	"vigil/internal/config"
	"vigil/internal/engine"
	"vigil/internal/geometry"
	"vigil/internal/metrics"
	"vigil/internal/render"
	"vigil/internal/slack"
	"vigil/internal/store"
	"vigil/internal/ws"
)

func main() {
	var (
		annotationsF = flag.String("annotations", "annotations.json", "Path to the detections file")
		regionsF     = flag.String("regions", "", "Path to a regions JSON file (defaults to the stock gate-camera regions)")
		fpsF         = flag.Int("fps", 0, "Replay pacing in frames per second (0 = as fast as possible)")
		serveF       = flag.Bool("serve", false, "Keep the HTTP server running after the replay completes")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[vigil] ", log.Ltime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("configuration error: %v", err)
	}

	manifest, err := annotations.Load(*annotationsF)
	if err != nil {
		logger.Fatalf("failed to load annotations: %v", err)
	}
	logger.Printf("loaded %d frames for camera %q", len(manifest.Frames), manifest.CamName)

	var polygons []geometry.Polygon
	if *regionsF != "" {
		polygons, err = config.LoadRegions(*regionsF)
		if err != nil {
			logger.Fatalf("failed to load regions: %v", err)
		}
	} else {
		polygons = config.DefaultRegions()
	}

	regions, err := engine.NewRegionSet(polygons, cfg.TrackedClasses)
	if err != nil {
		logger.Fatalf("failed to build region set: %v", err)
	}

	notifier, err := slack.NewNotifier(slack.Config{Token: cfg.SlackToken, Channel: cfg.SlackChannel})
	if err != nil {
		logger.Fatalf("configuration error: %v", err)
	}
	if !notifier.Enabled() {
		logger.Printf("no Slack token configured; notifications disabled, rule evaluation continues")
	}

	m := metrics.New()
	m.SetRegions(regions.Len())

	db, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		logger.Fatalf("failed to migrate store: %v", err)
	}

	bus := engine.NewBus()
	defer bus.Close()

	renderer := render.New(polygons)

	sink, err := render.NewJPEGSink(renderer, cfg.OutDir, logger)
	if err != nil {
		logger.Fatalf("failed to create output sink: %v", err)
	}
	defer sink.Close()
	defer bus.Subscribe(sink)()

	live := render.NewLiveStream(renderer, logger)
	defer live.Close()
	defer bus.Subscribe(live)()

	hub := ws.NewHub()
	defer bus.Subscribe(hub)()

	defer bus.Subscribe(store.NewRecorder(db, logger))()

	rules := []engine.Rule{engine.NewCarAndPerson()}
	orch := engine.NewOrchestrator(
		manifest.CamName,
		regions,
		notifier,
		cfg.MaxFrameDiff,
		rules,
		engine.WithBus(bus),
		engine.WithMetrics(m),
		engine.WithLogger(logger),
	)

	// Channel used by the signal handler, the HTTP server and the
	// replay goroutine to tell the main goroutine when to stop. Main
	// receives exactly once; later failures go through sendErr so they
	// cannot block a sender after shutdown has begun.
	errc := make(chan error)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-c:
			sendErr(ctx, errc, fmt.Errorf("%s", s))
		case <-ctx.Done():
		}
	}()

	handleHTTPServer(ctx, cfg.ListenAddr, live, ws.NewHandler(hub), m.Handler(), &wg, errc, logger)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := replay(ctx, orch, manifest.Frames, *fpsF); err != nil {
			sendErr(ctx, errc, fmt.Errorf("replay failed: %w", err))
			return
		}
		for _, r := range rules {
			logger.Printf("rule %q: %d occurrences", r.Name(), r.Occurrences())
			if err := db.SaveRuleTotal(r.Name(), r.Occurrences()); err != nil {
				logger.Printf("failed to persist rule total: %v", err)
			}
		}
		if !*serveF {
			sendErr(ctx, errc, nil)
		}
	}()

	if err := <-errc; err != nil {
		logger.Printf("exiting (%v)", err)
	} else {
		logger.Printf("replay complete, exiting")
	}

	cancel()
	wg.Wait()
	logger.Println("exited")
}

// sendErr reports a goroutine's outcome to main. Once shutdown has
// begun nobody is receiving anymore, so the send is abandoned instead
// of blocking the sender and wedging the WaitGroup drain.
func sendErr(ctx context.Context, errc chan<- error, err error) {
	select {
	case errc <- err:
	case <-ctx.Done():
	}
}

// replay feeds the frame batches to the orchestrator, optionally paced
// at a fixed rate so the live stream plays at watchable speed.
func replay(ctx context.Context, orch *engine.Orchestrator, frames []engine.FrameBatch, fps int) error {
	if fps <= 0 {
		return orch.Run(ctx, frames)
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for i := range frames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if _, err := orch.ProcessFrame(ctx, &frames[i]); err != nil {
			return err
		}
	}
	return nil
}
