package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"pampac/internal/batch"
	"pampac/internal/rules"
	"pampac/internal/ui"
)

type batchOutcome struct {
	results []batch.Result
	err     error
}

// runBatchWithUI runs the batch while a progress view consumes its events.
func runBatchWithUI(ctx context.Context, title string, rs *rules.RuleSet, docs []string, opts batch.Options) ([]batch.Result, error) {
	events := make(chan batch.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		opts.Sink = batch.ChannelSink{Ch: events}
		res, err := batch.Run(ctx, rs, docs, opts)
		outcomeCh <- batchOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, docs, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the view may quit early; keep the workers unblocked
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
