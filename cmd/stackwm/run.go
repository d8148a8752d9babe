package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/ipc"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/runtimepath"
	"github.com/1broseidon/stackwm/internal/wm"
	"github.com/1broseidon/stackwm/internal/x11"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the window manager on $DISPLAY (foreground)",
	Args:  cobra.NoArgs,
	RunE:  runWM,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runWM(cmd *cobra.Command, _ []string) error {
	res, err := loadConfig()
	if err != nil {
		return err
	}

	var level slog.LevelVar
	level.Set(res.Config.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)
	if !res.Exists {
		logger.Info("no config file, using defaults", "path", res.Path)
	}

	conn, err := x11.NewConnection(x11.Options{Logger: logger, Name: "stackwm"})
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	wcfg, err := res.Config.WMConfig(logger)
	if err != nil {
		return err
	}
	bindings, err := res.Config.Bindings()
	if err != nil {
		return err
	}

	hooks := &wm.Hooks{}
	hooks.BeforeEvent(logEvent)
	ctrl, err := wm.New(conn, wcfg, bindings, hooks)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	reload := func() error {
		next, err := config.Load(res.Path)
		if err != nil {
			return err
		}
		ncfg, err := next.Config.WMConfig(logger)
		if err != nil {
			return err
		}
		nbind, err := next.Config.Bindings()
		if err != nil {
			return err
		}
		level.Set(next.Config.SlogLevel())
		return postAndWait(conn, func() { ctrl.Reload(ncfg, nbind) })
	}

	if socket, err := runtimepath.SocketPath(); err != nil {
		logger.Warn("ipc disabled", "error", err)
	} else {
		srv, err := ipc.NewServer(ipc.ServerConfig{
			SocketPath: socket,
			Target:     ctrl,
			Poster:     conn,
			Reload:     reload,
			Logger:     logger,
		})
		if err != nil {
			return err
		}
		if err := srv.Start(); err != nil {
			logger.Warn("ipc disabled", "error", err)
		} else {
			defer srv.Stop()
		}
	}

	if res.Config.WatchConfig {
		w, err := config.NewWatcher(config.WatcherConfig{
			Path:   res.Path,
			Logger: logger,
			OnChange: func() {
				if err := reload(); err != nil {
					logger.Warn("config reload failed", "error", err)
				}
			},
		})
		if err != nil {
			logger.Warn("config watch disabled", "error", err)
		} else {
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Warn("config watcher stopped", "error", err)
				}
			}()
		}
	}

	go forwardSignals(ctx, conn, logger, reload)

	err = ctrl.Run(ctx)
	cancel()
	return err
}

// forwardSignals turns process signals into loop events. SIGHUP reloads
// the configuration.
func forwardSignals(ctx context.Context, poster platform.Poster, logger *slog.Logger, reload func() error) {
	sigCh := make(chan os.Signal, 8)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGCHLD)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGCHLD:
				poster.Post(platform.ChildExited{})
			case syscall.SIGHUP:
				logger.Info("received SIGHUP, reloading config")
				if err := reload(); err != nil {
					logger.Warn("config reload failed", "error", err)
				}
			default:
				logger.Info("shutting down", "signal", sig.String())
				poster.Post(platform.Shutdown{})
				return
			}
		}
	}
}

// postAndWait runs fn on the event loop and waits for it.
func postAndWait(poster platform.Poster, fn func()) error {
	done := make(chan struct{})
	poster.Post(platform.Call{Fn: func() {
		defer close(done)
		fn()
	}})
	select {
	case <-done:
		return nil
	case <-time.After(ipc.DefaultTimeout):
		return fmt.Errorf("window manager did not apply the new configuration in time")
	}
}

func logEvent(c *wm.Controller, ev platform.Event) error {
	switch ev.(type) {
	case platform.Unknown, platform.Call:
		return nil
	}
	c.Logger().Debug("event", "type", fmt.Sprintf("%T", ev))
	return nil
}
