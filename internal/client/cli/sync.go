package cli

import (
	"context"
	"fmt"
)

// Sync runs a sync pass immediately.
func (a *App) Sync(ctx context.Context) error {
	if !a.engine.Online() {
		fmt.Fprintln(a.out, "Offline; changes will sync when the server is reachable")
		return nil
	}
	a.engine.SyncNow(ctx)
	return nil
}

// Status prints connectivity, pending work, and the last successful pass.
func (a *App) Status(ctx context.Context) error {
	st := a.engine.Status()

	fmt.Fprintf(a.out, "Connectivity:  %s\n", onOff(a.engine.Online()))
	fmt.Fprintf(a.out, "Offline mode:  %s\n", onOff(a.engine.OfflineModeEnabled()))
	fmt.Fprintf(a.out, "Push channel:  %s\n", a.push.State())
	fmt.Fprintf(a.out, "Pending items: %d\n", st.PendingItems)
	if st.IsSyncing {
		fmt.Fprintf(a.out, "Sync running:  %d%%\n", st.Progress)
	}
	if !st.LastSync.IsZero() {
		fmt.Fprintf(a.out, "Last sync:     %s\n", st.LastSync.Format("2006-01-02 15:04:05"))
	}
	for _, e := range st.Errors {
		fmt.Fprintf(a.out, "  error: %s\n", e)
	}
	if st.DeadLettered > 0 {
		fmt.Fprintf(a.out, "Parked items:  %d (run 'retry' to re-queue)\n", st.DeadLettered)
	}
	return nil
}

// Retry re-queues items parked after exhausting their retry budget.
func (a *App) Retry(ctx context.Context) error {
	parked := a.engine.DeadLettered(ctx)
	if len(parked) == 0 {
		fmt.Fprintln(a.out, "Nothing to retry")
		return nil
	}
	a.engine.RetryDeadLettered(ctx)
	fmt.Fprintf(a.out, "Re-queued %d items\n", len(parked))
	if a.engine.Online() {
		go a.engine.SyncNow(context.Background())
	}
	return nil
}

// Backup exports the local database and uploads it to the backend.
func (a *App) Backup(ctx context.Context) error {
	if err := a.engine.BackupSnapshot(ctx); err != nil {
		fmt.Fprintf(a.out, "Backup failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Backup uploaded")
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
