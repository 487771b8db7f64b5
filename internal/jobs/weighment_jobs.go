package jobs

import (
	"context"
)

// DayRollover pushes the new day's finalized list to every session, so
// operator screens switch to the new date without a reload.
func (jr *JobRunner) DayRollover() {
	jr.runWithRecovery("DayRollover", func(ctx context.Context) error {
		return jr.services.Weighment.PublishCompleted(ctx, jr.services.Weighment.Today())
	})
}

// ResetSerials clears in-flight transactions and restarts serial numbering.
func (jr *JobRunner) ResetSerials() {
	jr.runWithRecovery("ResetSerials", func(ctx context.Context) error {
		return jr.services.Admin.ResetSerials(ctx)
	})
}
