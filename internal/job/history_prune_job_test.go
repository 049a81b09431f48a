package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	deleted  int64
	err      error
	lastKeep int
}

func (f *fakePruner) Prune(_ context.Context, keep int) (int64, error) {
	f.lastKeep = keep
	return f.deleted, f.err
}

func TestHistoryPruneJobRun(t *testing.T) {
	pruner := &fakePruner{deleted: 7}
	j := NewHistoryPruneJob(pruner, 14)
	require.Equal(t, "history_prune", j.Name())
	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, 14, pruner.lastKeep)
}

func TestHistoryPruneJobRunError(t *testing.T) {
	j := NewHistoryPruneJob(&fakePruner{err: errors.New("db down")}, 14)
	require.Error(t, j.Run(context.Background()))
}
