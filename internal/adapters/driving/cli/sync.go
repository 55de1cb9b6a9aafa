package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/minirag/internal/connectors/filesystem"
	"github.com/custodia-labs/minirag/internal/logger"
)

// startWatch re-ingests changes under the --docs paths until ctx is done.
// The returned function stops every watcher.
func startWatch(ctx context.Context, cmd *cobra.Command, paths []string) (func(), error) {
	if syncOrchestrator == nil {
		return nil, errors.New("sync orchestrator not configured")
	}
	if len(paths) == 0 {
		return nil, errors.New("--watch needs at least one --docs path")
	}

	orchestrator := syncOrchestrator
	ctx, cancel := context.WithCancel(ctx)
	var connectors []*filesystem.Connector
	stop := func() {
		cancel()
		for _, c := range connectors {
			_ = c.Close()
		}
	}

	for _, p := range paths {
		connector := filesystem.New(p)
		changes, err := connector.Watch(ctx)
		if err != nil {
			stop()
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
		connectors = append(connectors, connector)

		errOut := cmd.ErrOrStderr()
		go func(root string) {
			result, err := orchestrator.Watch(ctx, changes)
			if err != nil && !errors.Is(err, context.Canceled) {
				fmt.Fprintf(errOut, "Warning: watch %s stopped: %v\n", root, err)
				return
			}
			if result != nil {
				logger.Debug("Watch %s applied %d changes, %d failed", root, result.Processed, result.Failed)
			}
		}(connector.RootPath())
	}

	logger.Info("Watching %d paths", len(paths))
	return stop, nil
}
