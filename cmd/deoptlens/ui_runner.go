package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"deoptlens/internal/driver"
	"deoptlens/internal/ui"
)

type annotateOutcome struct {
	result *driver.Result
	err    error
}

// runAnnotateWithUI runs the driver in the background while a progress view
// consumes its events.
func runAnnotateWithUI(ctx context.Context, title string, req *driver.Request) (*driver.Result, error) {
	if req == nil {
		return nil, fmt.Errorf("missing annotate request")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan annotateOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Sink = driver.ChannelSink{Ch: events}
		res, err := driver.Annotate(ctx, &reqCopy)
		outcomeCh <- annotateOutcome{result: res, err: err}
		close(events)
	}()

	files := make([]string, len(req.Files))
	for i, f := range req.Files {
		files[i] = f.HTMLPath
	}
	model := ui.NewProgressModel(title, files, events, cancel)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the driver from blocking on a full channel
		cancel()
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
