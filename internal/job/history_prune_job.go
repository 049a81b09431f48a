package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// HistoryPruner is the slice of the history repository the job needs.
type HistoryPruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// HistoryPruneJob trims every session down to the retention window so the
// conversations table does not grow without bound.
type HistoryPruneJob struct {
	history HistoryPruner
	keep    int
}

func NewHistoryPruneJob(history HistoryPruner, keep int) *HistoryPruneJob {
	return &HistoryPruneJob{history: history, keep: keep}
}

func (j *HistoryPruneJob) Name() string {
	return "history_prune"
}

func (j *HistoryPruneJob) Run(ctx context.Context) error {
	deleted, err := j.history.Prune(ctx, j.keep)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("history pruned", zap.Int("keep", j.keep), zap.Int64("deleted", deleted))
	return nil
}
