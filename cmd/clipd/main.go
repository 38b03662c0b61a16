package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dooshek/clipd/internal/clipboard"
	"github.com/dooshek/clipd/internal/config"
	"github.com/dooshek/clipd/internal/dbus"
	"github.com/dooshek/clipd/internal/fileops"
	"github.com/dooshek/clipd/internal/hotkey"
	"github.com/dooshek/clipd/internal/logger"
	"github.com/dooshek/clipd/internal/notification"
	"github.com/dooshek/clipd/internal/pasteback"
	"github.com/dooshek/clipd/internal/server"
	"github.com/dooshek/clipd/internal/store"
	"github.com/dooshek/clipd/internal/types"
	"github.com/dooshek/clipd/internal/watcher"
	"github.com/dooshek/clipd/internal/windowdetect"
)

func init() {
	// Set custom usage message to show -- prefix
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(out, "  --%s", f.Name)
			name, usage := flag.UnquoteUsage(f)
			if len(name) > 0 {
				fmt.Fprintf(out, " %s", name)
			}
			fmt.Fprintf(out, "\n    \t%s", usage)
			if f.DefValue != "" && f.DefValue != "false" {
				fmt.Fprintf(out, " (default %q)", f.DefValue)
			}
			fmt.Fprintf(out, "\n")
		})
	}
}

func main() {
	runWizard := flag.Bool("wizard", false, "Run the configuration wizard")
	logLevel := flag.String("log-level", "info", "Set log level (debug|info|warn|error)")
	logFilename := flag.String("log-filename", "", "Log to file instead of stdout")
	flag.Parse()

	logger.SetLevel(*logLevel)
	if *logFilename != "" {
		if err := logger.SetOutputFile(*logFilename); err != nil {
			fmt.Printf("Error setting log file: %v\n", err)
			os.Exit(1)
		}
		defer logger.CloseLogFile()
	}

	if *runWizard {
		if err := config.RunWizard(); err != nil {
			logger.Error("Error running wizard", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Error loading config", err)
		os.Exit(1)
	}
	if cfg == nil {
		logger.Info("No configuration found, starting with defaults")
		logger.Info("💡 Run `clipd --wizard` to configure the open-window shortcut")
		cfg = &types.Config{}
	}

	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		logger.Error("Failed to initialize file operations", err)
		os.Exit(1)
	}
	if err := fileOps.EnsureDirectories(); err != nil {
		logger.Error("Failed to create necessary directories", err)
		os.Exit(1)
	}

	// A second launch raises the running instance's window instead of
	// starting another daemon
	if err := fileOps.CheckPID(); err != nil {
		if errors.Is(err, fileops.ErrProcessAlreadyRunning) {
			logger.Info("clipd is already running, activating it")
			if err := dbus.ActivateRunning(); err != nil {
				logger.Error("Failed to activate running instance", err)
				os.Exit(1)
			}
			os.Exit(0)
		}
		logger.Warnf("PID check failed: %v", err)
	}
	if err := fileOps.SavePID(); err != nil {
		logger.Error("Failed to save PID file", err)
		os.Exit(1)
	}
	defer func() {
		if err := fileOps.CleanupPID(); err != nil {
			logger.Error("Failed to cleanup PID file", err)
		}
	}()

	st := store.New(fileOps.GetDatabasePath())
	logger.Infof("Loaded %d history entries from %s", len(st.History()), fileOps.GetDatabasePath())

	sysClip, err := clipboard.NewSystem()
	if err != nil {
		logger.Error("Failed to initialize clipboard access", err)
		os.Exit(1)
	}

	notifier := notification.New()

	detector, err := windowdetect.New()
	if err != nil {
		logger.Warnf("Window detection unavailable: %v", err)
		notifier.Notify("📋 clipd", "xdotool not found - pasting into terminals may not use the right shortcut")
		detector = nil
	}

	var srv *dbus.Server
	paste := pasteback.New(
		st,
		sysClip,
		pasteback.NewWindowClassifier(detector),
		pasteback.NewKeySynthesizer(cfg.GetYdotoolConfig()),
		func() {
			if srv != nil {
				srv.EmitHideWindow()
			}
		},
	)

	monitor := hotkey.NewMonitor(cfg.OpenKey, func() {
		srv.EmitShowWindow()
	})

	srv = dbus.NewServer(st, paste, func(enabled bool) {
		if !enabled {
			monitor.Stop()
			return
		}
		if cfg.OpenKey.Key == "" {
			logger.Warn("Internal shortcut enabled but no key is configured, run `clipd --wizard`")
			return
		}
		if err := monitor.Start(); err != nil {
			logger.Error("Failed to start hotkey monitor", err)
		}
	})

	if err := srv.Start(); err != nil {
		if errors.Is(err, dbus.ErrServiceRunning) {
			logger.Info("clipd D-Bus service is already registered, activating it")
			if err := dbus.ActivateRunning(); err != nil {
				logger.Error("Failed to activate running instance", err)
				os.Exit(1)
			}
			os.Exit(0)
		}
		logger.Error("Failed to start D-Bus service", err)
		os.Exit(1)
	}
	defer srv.Stop()

	hub := server.NewHub(st)
	if err := hub.Start(cfg.ListenAddress()); err != nil {
		// The daemon still works over D-Bus without the push channel
		logger.Error("Failed to start notification endpoint", err)
	} else {
		defer hub.Stop()
	}

	if st.Settings().UseInternalShortcut && cfg.OpenKey.Key != "" {
		if err := monitor.Start(); err != nil {
			logger.Error("Failed to start hotkey monitor", err)
		}
		defer monitor.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(sysClip, st, watcher.DefaultInterval)
	go w.Run(ctx)

	notifier.Notify("📋 clipd started", "Watching the clipboard")
	if cfg.OpenKey.Key != "" {
		logger.Infof("Open-window shortcut: %s", config.FormatKeyCombo(cfg.OpenKey))
	}

	<-ctx.Done()
	logger.Info("Shutting down...")
}
