package jobs

import (
	"context"
	"time"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/logger"
)

// ClosePastPods marks pods whose meet time has passed as CLOSED. Closed pods
// accept no further membership changes; existing rows are kept for history.
func (jr *JobRunner) ClosePastPods() {
	jr.runWithRecovery("ClosePastPods", func() {
		ctx := context.Background()

		pods, err := jr.store.Pods().ListExpired(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list expired pods", "error", err)
			return
		}

		count := 0
		for _, pod := range pods {
			if err := jr.store.Pods().UpdateStatus(ctx, pod.ID, domain.PodStatusClosed); err != nil {
				logger.Error("Failed to close pod", "podID", pod.ID, "error", err)
				continue
			}
			count++
			logger.Debug("Closed pod past its meet time", "podID", pod.ID, "meetAt", pod.MeetAt)
		}

		logger.Info("Expired pods closed", "count", count, "candidates", len(pods))
	})
}
