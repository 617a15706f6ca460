package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"reflect"
	"syscall"
	"time"

	"github.com/encodeous/loom/state"
	"github.com/encodeous/loom/transport"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// Start runs one router instance until its context is cancelled. A nil
// transport binds UDP from the configuration; tests pass an in-memory one.
// initState, when non-nil, receives the instance state before the loop
// starts so callers can cancel it.
func Start(cfg state.Config, logLevel slog.Level, tr transport.Transport, hooks state.Hooks, initState **state.State) error {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(context.Canceled)

	dispatch := make(chan func(*state.State) error, state.DispatchQueueSize)

	handlers := []slog.Handler{
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        logLevel,
			AddSource:    false,
			CustomPrefix: string(cfg.Id),
		}),
	}
	if cfg.LogPath != "" {
		if err := os.MkdirAll(path.Dir(cfg.LogPath), 0700); err != nil {
			return err
		}
		f, err := os.OpenFile(cfg.LogPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0700)
		if err != nil {
			return err
		}
		defer f.Close()
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel}))
	}
	logger := slog.New(slogmulti.Fanout(handlers...))

	if tr == nil {
		group, err := cfg.GroupAddr()
		if err != nil {
			return err
		}
		tr, err = transport.NewUDP(cfg.Port, group)
		if err != nil {
			// fatal: never run with a partially initialized transport
			return fmt.Errorf("transport setup: %w", err)
		}
	}
	defer tr.Close()

	s := state.State{
		Modules: make(map[string]state.Module),
		Env: &state.Env{
			Config:          cfg,
			Hooks:           hooks,
			DispatchChannel: dispatch,
			Context:         ctx,
			Cancel:          cancel,
			Log:             logger,
		},
	}
	if initState != nil {
		*initState = &s
	}

	s.Log.Debug("init modules")
	if err := initModules(&s, tr); err != nil {
		return err
	}

	go receiveLoop(s.Env, tr)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			s.Cancel(errors.New("received shutdown signal"))
		case <-ctx.Done():
		}
	}()

	s.Log.Info("router started", "id", cfg.Id, "mode", cfg.Mode, "port", cfg.Port, "group", cfg.Group)
	return MainLoop(&s, dispatch)
}

func initModules(s *state.State, tr transport.Transport) error {
	modules := []state.Module{
		NewRouter(tr),
		NewDiscovery(tr),
	}
	for _, module := range modules {
		s.Modules[reflect.TypeOf(module).String()] = module
		if err := module.Init(s); err != nil {
			return err
		}
	}
	return nil
}

// Stop cancels a running instance. The main loop performs module cleanup
// on its own goroutine before returning.
func Stop(s *state.State) {
	if s.Stopping.Swap(true) {
		return // don't stop twice
	}
	s.Cancel(context.Canceled)
}

func MainLoop(s *state.State, dispatch <-chan func(*state.State) error) error {
	s.Log.Debug("started main loop")
	s.Started.Store(true)
	for {
		select {
		case fun := <-dispatch:
			start := time.Now()
			if err := fun(s); err != nil {
				s.Log.Error("error occurred during dispatch", "error", err)
				s.Cancel(err)
			}
			if elapsed := time.Since(start); elapsed > state.SlowDispatchWarnTime {
				s.Log.Warn("dispatch took a long time", "elapsed", elapsed)
			}
		case <-s.Context.Done():
			s.Log.Info("stopped main loop", "reason", context.Cause(s.Context).Error())
			cleanup(s)
			return nil
		}
	}
}

func cleanup(s *state.State) {
	for moduleName, module := range s.Modules {
		if err := module.Cleanup(s); err != nil {
			s.Log.Error("error occurred during cleanup", "module", moduleName, "error", err)
		}
	}
}
