package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"career-predictor/cmd/career-predictor/ui"
	"career-predictor/internal/career/share"
)

func runUI(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logs go to a file so they do not tear the alt screen
	a, err := newApp(ctx, cfg, opts.logFile)
	if err != nil {
		return err
	}
	defer a.Close()

	feed := ui.NewFeed()
	ctrl, err := a.controller(feed.Notifier(), os.Stderr)
	if err != nil {
		return err
	}
	ctrl.Subscribe(feed.Observe)

	var clip share.Clipboard
	if share.SupportsClipboard() {
		clip = share.SystemClipboard{}
	}

	return ui.Run(ctx, ui.Options{
		Controller: ctrl,
		Share:      a.shareAction(feed.Notifier(), clip),
		Feed:       feed,
	})
}
