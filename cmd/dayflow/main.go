package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"dayflow/internal/capture"
	"dayflow/internal/config"
	"dayflow/internal/ics"
	appLog "dayflow/internal/log"
	"dayflow/internal/model"
	"dayflow/internal/plan"
	"dayflow/internal/svg"
	"dayflow/internal/timeline"
	"dayflow/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	day        string
	dumpSVG    string
	debug      bool
}

func main() {
	appLog.Info("dayflow starting", "version", "0.1.0")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"day_window", conf.DayStart+"-"+conf.DayEnd,
		"refresh", conf.RefreshCron,
		"participants", len(conf.Participants),
		"ics_count", len(conf.ICS),
		"once", flags.once,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	cacheDir := "/var/lib/dayflow/ics-cache"
	previewPath := "/var/lib/dayflow/preview.png"
	if flags.debug {
		cacheDir = "./cache/ics-cache"
		previewPath = "./cache/preview.png"
	}

	if flags.once {
		if err := runOnce(ctx, conf, cacheDir, flags); err != nil {
			appLog.Error("single-shot run failed", err)
			os.Exit(1)
		}
		return
	}

	// Periodic refresh: re-render the timeline and snapshot the preview.
	c := cron.New()
	captureURL := "http://" + conf.Listen + "/timeline.svg"
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		if err := capture.TimelinePNG(ctx, capture.Options{
			URL:        captureURL,
			OutputPath: previewPath,
			Width:      conf.Width,
		}); err != nil {
			appLog.Error("preview capture failed", err, "url", captureURL)
			return
		}
		appLog.Info("preview captured", "path", previewPath)
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	go func() {
		if err := web.StartServer(ctx, conf, cacheDir, previewPath); err != nil {
			appLog.Error("HTTP server exited", err)
			cancel()
		}
	}()

	<-ctx.Done()
	time.Sleep(100 * time.Millisecond)
	appLog.Info("dayflow exiting")
}

// runOnce runs one fetch → layout → render pass and writes the SVG to disk.
func runOnce(ctx context.Context, conf *config.Config, cacheDir string, flags flagConfig) error {
	loc := time.Local
	if l, err := time.LoadLocation(conf.Timezone); err == nil {
		loc = l
	}

	day := time.Now().In(loc)
	if flags.day != "" {
		parsed, err := time.ParseInLocation("2006-01-02", flags.day, loc)
		if err != nil {
			return err
		}
		day = parsed
	}

	p, err := plan.Load(conf.PlanPath)
	if err != nil {
		return err
	}

	events := fetchDayEvents(ctx, conf, cacheDir, day)

	layout := timeline.Compute(p.Tasks, events, p.Routines, day, conf.Participants, timeline.Options{
		DayStartMinute: conf.DayStartMinute(),
		DayEndMinute:   conf.DayEndMinute(),
		PixelsPerHour:  conf.PixelsPerHour,
		Width:          float64(conf.Width),
		Margins:        timeline.Margins{Left: 48, Right: 16},
	})

	out := flags.dumpSVG
	if out == "" {
		out = "timeline.svg"
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(out, []byte(svg.Render(layout, conf.Participants)), 0o644); err != nil {
		return err
	}

	appLog.Info("timeline rendered",
		"day", day.Format("2006-01-02"),
		"items", len(layout.Items),
		"convergence_zones", len(layout.Convergence),
		"free_zones", len(layout.Free),
		"output", out,
	)
	return nil
}

func fetchDayEvents(ctx context.Context, conf *config.Config, cacheDir string, day time.Time) []model.Event {
	sources := make([]ics.Source, 0, len(conf.ICS))
	for _, c := range conf.ICS {
		if c.URL == "" {
			continue
		}
		id := c.ID
		if id == "" {
			id = c.Name
		}
		sources = append(sources, ics.Source{ID: id, URL: c.URL})
	}
	if len(sources) == 0 {
		return nil
	}

	fetcher := ics.NewFetcher(cacheDir)
	results, errs := fetcher.FetchAll(ctx, sources)
	if len(errs) > 0 {
		appLog.Error("ics fetch errors", errs[0], "error_count", len(errs))
	}

	parsed := make([]ics.ParsedEvent, 0)
	for _, res := range results {
		events, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			continue
		}
		parsed = append(parsed, events...)
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	events, err := ics.ExpandOccurrences(parsed, ics.ExpandConfig{
		DisplayLocation: day.Location(),
		RangeStart:      dayStart,
		RangeEnd:        dayStart.Add(24 * time.Hour),
		Participants:    conf.Participants,
	})
	if err != nil {
		appLog.Error("ics expand failed", err)
		return nil
	}
	return events
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/dayflow/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Render one day's timeline SVG and exit")
	flag.StringVar(&cfg.day, "day", "", "Day to render as YYYY-MM-DD (default: today)")
	flag.StringVar(&cfg.dumpSVG, "dump-svg", "", "Output path for -once SVG (default: timeline.svg)")
	flag.BoolVar(&cfg.debug, "debug", false, "Debug logging and local cache paths")

	flag.Parse()

	return cfg
}
