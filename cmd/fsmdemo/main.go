// Command fsmdemo runs a geoposition-style machine interactively: pick
// events from a menu, watch the snapshot evolve, and optionally persist
// every snapshot and print the DOT diagram on exit.
//
// Configuration comes from the environment:
//
//	FSM_DEFINITION    path to a YAML/JSON definition (default: built-in machine)
//	FSM_SNAPSHOT_DIR  directory for snapshot persistence (default: off)
//	FSM_LOG_JSON      JSON log output (default: text)
//	FSM_DEBUG         debug-level logging
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/caarlos0/env/v11"
	"github.com/manifoldco/promptui"

	"github.com/corvid-labs/fsmkit"
	"github.com/corvid-labs/fsmkit/persist"
	"github.com/corvid-labs/fsmkit/viz"
)

type config struct {
	Definition  string `env:"FSM_DEFINITION"`
	SnapshotDir string `env:"FSM_SNAPSHOT_DIR"`
	LogJSON     bool   `env:"FSM_LOG_JSON"`
	Debug       bool   `env:"FSM_DEBUG"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fsmdemo:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	logger := newLogger(cfg)

	def, err := loadDefinition(cfg)
	if err != nil {
		return err
	}

	in, err := fsmkit.New(def, demoActions(logger), demoGuards(),
		fsmkit.WithLogger(fsmkit.NewSlogLogger(logger)),
	)
	if err != nil {
		return fmt.Errorf("construct interpreter: %w", err)
	}

	if cfg.SnapshotDir != "" {
		p, err := persist.NewJSONPersister(cfg.SnapshotDir)
		if err != nil {
			return err
		}
		detach := persist.Attach(in, p, func(err error) {
			logger.Error("persist snapshot", "error", err)
		})
		defer detach()
	}

	unsubscribe := in.Subscribe(func(snap fsmkit.Snapshot) {
		fmt.Printf("-> state=%s context=%v\n", snap.State, snap.Context)
	})
	defer unsubscribe()

	for {
		choices := menuChoices(def, in.Current())
		prompt := promptui.Select{
			Label: fmt.Sprintf("Send event (state: %s)", in.Current()),
			Items: choices,
		}
		_, choice, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) {
				break
			}
			return err
		}
		switch choice {
		case "quit":
			fmt.Println(viz.ExportDOT(def, in.Current()))
			return in.Stop()
		default:
			if _, err := in.Send(fsmkit.NewEvent(fsmkit.EventType(choice), demoPayload(choice))); err != nil {
				logger.Error("send failed", "event", choice, "error", err)
			}
		}
	}
	return in.Stop()
}

func newLogger(cfg config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func loadDefinition(cfg config) (fsmkit.Definition, error) {
	if cfg.Definition != "" {
		return fsmkit.LoadDefinition(cfg.Definition)
	}
	return geopositionDefinition()
}

// geopositionDefinition is the built-in demo machine: a position watch with
// explicit unsupported, pending, resolved and rejected states.
func geopositionDefinition() (fsmkit.Definition, error) {
	return fsmkit.NewBuilder("geoposition", "idle").
		Context("position", nil).
		Context("error", nil).
		State("idle").
		On("START", "pending").
		OnGuarded("REJECT_NOT_SUPPORTED", "rejectedNotSupported", "notSupported").
		State("pending").
		Entry("logPending").
		On("RESOLVE", "resolved", "setPosition").
		On("REJECT", "rejected", "setError").
		State("resolved").
		Internal("RESOLVE", "setPosition").
		On("REJECT", "rejected", "setError").
		State("rejected").
		On("START", "pending", "clearError").
		State("rejectedNotSupported").
		Build()
}

func demoActions(logger *slog.Logger) fsmkit.ActionMap {
	return fsmkit.ActionMap{
		"logPending": func(ctx *fsmkit.Context, event fsmkit.Event) error {
			logger.Info("watching for position updates")
			return nil
		},
		"setPosition": func(ctx *fsmkit.Context, event fsmkit.Event) error {
			ctx.Set("position", event.Payload)
			return nil
		},
		"setError": func(ctx *fsmkit.Context, event fsmkit.Event) error {
			ctx.Set("error", event.Payload)
			return nil
		},
		"clearError": func(ctx *fsmkit.Context, event fsmkit.Event) error {
			ctx.Delete("error")
			return nil
		},
	}
}

func demoGuards() fsmkit.GuardMap {
	return fsmkit.GuardMap{
		"notSupported": func(ctx *fsmkit.Context, event fsmkit.Event) (bool, error) {
			return true, nil
		},
	}
}

func demoPayload(event string) any {
	switch event {
	case "RESOLVE":
		return map[string]float64{"lat": 52.52, "lng": 13.405}
	case "REJECT":
		return "position timeout"
	default:
		return nil
	}
}

func menuChoices(def fsmkit.Definition, current fsmkit.StateID) []string {
	events := def.Events(current)
	choices := make([]string, 0, len(events)+1)
	for _, e := range events {
		choices = append(choices, string(e))
	}
	sort.Strings(choices)
	return append(choices, "quit")
}
