package main

import (
	"fmt"
	"os"

	"github.com/corvid-labs/fsmkit"
)

func announce(msg string) fsmkit.ActionFunc {
	return func(ctx *fsmkit.Context, event fsmkit.Event) error {
		fmt.Println(msg)
		return nil
	}
}

func main() {
	def, err := fsmkit.NewBuilder("toggler", "idle").
		State("idle").
		Entry("enterIdle").
		Exit("exitIdle").
		On("RUN", "running").
		State("running").
		Entry("enterRunning").
		Exit("exitRunning").
		On("STOP", "idle").
		Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	in, err := fsmkit.New(def, fsmkit.ActionMap{
		"enterIdle":    announce("enter idle"),
		"exitIdle":     announce("exit idle"),
		"enterRunning": announce("enter running"),
		"exitRunning":  announce("exit running"),
	}, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, event := range []fsmkit.EventType{"RUN", "STOP", "RUN"} {
		snap, err := in.Send(fsmkit.NewEvent(event, nil))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("after %s: %s\n", event, snap.State)
	}

	if err := in.Stop(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
