package jobs

import (
	"context"
	"time"

	"cabinfolio-backend/internal/logger"
)

// FlagAllowanceCloseouts marks allowance records whose reset date has
// passed as requiring an external closeout and notifies the admin. It
// deliberately never resets days_used itself; the annual rollover is an
// explicit operator action.
func (jr *JobRunner) FlagAllowanceCloseouts() {
	jr.runWithRecovery("FlagAllowanceCloseouts", func() {
		ctx := context.Background()

		due, err := jr.allowances.ListPastReset(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to list allowances past reset", "error", err)
			return
		}
		if len(due) == 0 {
			logger.Debug("No allowances past reset date")
			return
		}

		for _, a := range due {
			if err := jr.allowances.FlagCloseoutRequired(ctx, a.ID); err != nil {
				logger.Error("Failed to flag allowance for closeout", "allowance_id", a.ID, "error", err)
				continue
			}
			logger.Info("Allowance flagged for closeout",
				"owner_id", a.OwnerID, "property_id", a.PropertyID, "year", a.Year, "days_used", a.DaysUsed)

			if jr.email != nil && jr.config.Accounting.AdminEmail != "" {
				if err := jr.email.SendCloseoutNotice(ctx, jr.config.Accounting.AdminEmail, a.OwnerID, a.PropertyID, a.Year, a.DaysUsed); err != nil {
					logger.Warn("Failed to send closeout notice", "allowance_id", a.ID, "error", err)
				}
			}
		}
	})
}

// SweepReconciliation emails the admin a digest of unresolved
// reconciliation entries so ledger gaps do not linger silently.
func (jr *JobRunner) SweepReconciliation() {
	jr.runWithRecovery("SweepReconciliation", func() {
		ctx := context.Background()

		entries, err := jr.recon.ListUnresolved(ctx)
		if err != nil {
			logger.Error("Failed to list reconciliation entries", "error", err)
			return
		}
		if len(entries) == 0 {
			logger.Debug("No unresolved reconciliation entries")
			return
		}

		logger.Warn("Unresolved reconciliation entries found", "count", len(entries))
		if jr.email != nil && jr.config.Accounting.AdminEmail != "" {
			if err := jr.email.SendReconciliationAlert(ctx, jr.config.Accounting.AdminEmail, entries); err != nil {
				logger.Error("Failed to send reconciliation alert", "error", err)
			}
		}
	})
}
