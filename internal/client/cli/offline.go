package cli

import (
	"context"
	"fmt"
)

// Offline toggles offline mode. Enabling snapshots the local dataset and
// suspends automatic syncing; disabling resumes it and drains the queues.
func (a *App) Offline(ctx context.Context, on bool) error {
	if on {
		a.engine.EnableOfflineMode(ctx)
		fmt.Fprintln(a.out, "Offline mode on; local snapshot captured")
		return nil
	}

	a.engine.DisableOfflineMode(ctx)
	fmt.Fprintln(a.out, "Offline mode off")
	return nil
}
