package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmalov/spravka/internal/docsource"
	"github.com/pmalov/spravka/internal/ingest"
	"github.com/pmalov/spravka/internal/pkg/errs"
)

type fakeIndex struct {
	count     int64
	countErr  error
	populated []string
}

func (f *fakeIndex) Count(context.Context) (int64, error) { return f.count, f.countErr }

func (f *fakeIndex) Populate(_ context.Context, chunks []string) error {
	f.populated = chunks
	return nil
}

type fakeSource struct {
	docs []docsource.Document
	err  error
}

func (f *fakeSource) Load(context.Context) ([]docsource.Document, error) { return f.docs, f.err }

func TestSetupIngestsWhenEmpty(t *testing.T) {
	idx := &fakeIndex{}
	source := &fakeSource{docs: []docsource.Document{
		{Name: "a.txt", Data: []byte("О льготах ветеранам.")},
	}}
	svc := NewKnowledgeService(idx, source, ingest.NewSplitter(1000, 150))

	require.NoError(t, svc.Setup(context.Background()))
	require.Equal(t, []string{"О льготах ветеранам."}, idx.populated)
}

func TestSetupSkipsWhenPopulated(t *testing.T) {
	idx := &fakeIndex{count: 42}
	source := &fakeSource{err: errors.New("must not be called")}
	svc := NewKnowledgeService(idx, source, ingest.NewSplitter(1000, 150))

	require.NoError(t, svc.Setup(context.Background()))
	require.Nil(t, idx.populated)
}

func TestSetupEmptyCorpusIsFatal(t *testing.T) {
	svc := NewKnowledgeService(&fakeIndex{}, &fakeSource{}, ingest.NewSplitter(1000, 150))
	err := svc.Setup(context.Background())
	require.ErrorIs(t, err, errs.ErrEmptyCorpus)
}

func TestSetupSourceErrorPropagates(t *testing.T) {
	svc := NewKnowledgeService(&fakeIndex{}, &fakeSource{err: errors.New("s3 unreachable")}, ingest.NewSplitter(1000, 150))
	require.Error(t, svc.Setup(context.Background()))
}
