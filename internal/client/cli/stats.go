package cli

import "context"

// Stats prints listing counts and the client's counters.
func (a *App) Stats(ctx context.Context) error {
	a.printf("Jobs loaded:     %d\n", len(a.ledger.Jobs()))
	if a.isLoggedIn() {
		a.printf("Saved jobs:      %d\n", len(a.ledger.SavedJobs()))
		a.printf("Applications:    %d\n", len(a.ledger.Applications()))
	}

	lines, err := a.metrics.Snapshot()
	if err != nil {
		a.logger.Error(ctx, "metrics snapshot failed", "error", err)
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	a.println()
	for _, l := range lines {
		a.println(l)
	}
	return nil
}
