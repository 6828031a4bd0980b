package jobs

import (
	"context"

	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
)

// CleanupExpiredDocuments removes pending uploads that were never confirmed
// together with any partial blob.
func (jr *JobRunner) CleanupExpiredDocuments() {
	jr.runWithRecovery("CleanupExpiredDocuments", func(ctx context.Context) {
		removed, err := jr.services.Documents.CleanupExpired(ctx, jr.now())
		if err != nil {
			logger.Error("Failed to clean up expired documents", "removed", removed, "error", err)
			return
		}
		logger.Info("Cleaned up expired documents", "count", removed)
	})
}
