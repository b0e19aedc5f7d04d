package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"monthcal/internal/config"
	appLog "monthcal/internal/log"
	"monthcal/internal/web"
	"monthcal/internal/widget"
)

const version = "0.1.0"

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	dump       bool
}

func main() {
	appLog.Info("monthcal starting", "version", version)

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	level, err := appLog.ParseLevel(conf.LogLevel)
	if err != nil {
		appLog.Error("unknown log level; using info", err)
	}
	appLog.SetLevel(level)

	cal, err := conf.Calendar()
	if err != nil {
		appLog.Error("failed to build calendar", err)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", cal.Location.String(),
		"week_start", cal.WeekStart.String(),
		"refresh", conf.RefreshCron,
		"timeline_days", conf.TimelineDays,
		"title_rows", conf.Titles(),
		"display", conf.Display,
		"capture", conf.Capture.Enabled,
		"once", flags.once,
		"dump", flags.dump,
	)

	provider := widget.NewComplication(cal,
		widget.WithHorizon(conf.TimelineDays),
		widget.WithLocation(cal.Location),
	)
	server := web.NewServer(conf, provider, widget.MidnightPolicy{Location: cal.Location})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Bind before the first refresh so a capture can reach the page.
	ln, err := net.Listen("tcp", conf.Listen)
	if err != nil {
		appLog.Error("failed to listen", err, "listen", conf.Listen)
		os.Exit(1)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx, ln) }()

	p := &pipeline{
		cfg:      conf,
		provider: provider,
		server:   server,
		baseURL:  "http://" + ln.Addr().String(),
		dump:     flags.dump,
	}

	if flags.once {
		err := p.run(ctx)
		cancel()
		<-serveErr
		if err != nil {
			appLog.Error("refresh failed", err)
			os.Exit(1)
		}
		appLog.Info("monthcal exiting")
		return
	}

	if err := p.run(ctx); err != nil {
		appLog.Error("initial refresh failed", err)
	}

	sched := cron.New(
		cron.WithLocation(cal.Location),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := sched.AddFunc(conf.RefreshCron, func() {
		if err := p.run(ctx); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		cancel()
		<-serveErr
		os.Exit(1)
	}
	sched.Start()

	select {
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	case err := <-serveErr:
		if err != nil {
			appLog.Error("http server stopped", err)
		}
		cancel()
	}

	<-sched.Stop().Done()
	appLog.Info("monthcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/monthcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one refresh cycle and exit")
	flag.BoolVar(&cfg.dump, "dump", false, "Write packed ink/accent planes next to the preview")

	flag.Parse()

	return cfg
}

// cronLogger routes cron's own messages into appLog.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...any) {
	appLog.Error("cron: "+msg, err, kv...)
}
