package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"typecore/internal/driver"
	"typecore/internal/ui"
)

type checkOutcome struct {
	session *driver.Session
	err     error
}

// runCheckWithUI runs the driver in the background and shows its progress
// on stderr until it finishes.
func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*driver.Session, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		s, err := driver.Check(ctx, files, opts)
		outcomeCh <- checkOutcome{session: s, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// программа могла выйти раньше драйвера
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.session, uiErr
	}
	return outcome.session, outcome.err
}
