package errs

import "errors"

var (
	// ErrNotReady marks requests arriving before startup ingestion finished.
	ErrNotReady = errors.New("service not ready")
	// ErrEmptyCorpus marks a startup with no indexable documents.
	ErrEmptyCorpus = errors.New("document corpus is empty")
)

func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}
