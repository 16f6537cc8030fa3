package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/peopledex/peopledex/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the vault and keep mention counts current",
		Long: `Perform a full mention scan, then watch the vault for document
changes and rescan changed documents incrementally. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd)
		},
	}
	return cmd
}

func runWatch(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	if err := a.counter.PerformFullScan(ctx, a.records); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl-c to stop)\n", a.cfg.Vault.Path)

	debounce, err := a.cfg.WatchDebounce()
	if err != nil {
		return err
	}
	w, err := watcher.NewVaultWatcher(watcher.Options{DebounceWindow: debounce})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case batch, ok := <-w.Events():
				if !ok {
					return
				}
				for _, event := range batch {
					slog.Debug("vault change",
						slog.String("path", event.Path),
						slog.String("op", event.Operation.String()))
					a.counter.Enqueue(event.Path)
				}
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				slog.Warn("watcher error", slog.String("error", err.Error()))
			}
		}
	}()

	if err := w.Start(ctx, a.cfg.Vault.Path); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
