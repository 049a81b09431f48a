package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pmalov/spravka/internal/docsource"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// ExtractText converts a raw document into plain text according to its
// file extension. Unknown extensions are an error; callers filter with
// docsource.SupportedExtension before reaching here.
func ExtractText(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return extractPDFText(data)
	case ".md":
		return extractMarkdownText(data), nil
	case ".txt":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported document type: %s", name)
	}
}

// BuildCorpus extracts and splits every document into chunks. Documents
// that yield no text are skipped with a warning instead of failing the
// whole ingestion.
func BuildCorpus(ctx context.Context, sp *Splitter, docs []docsource.Document) []string {
	logger := logutil.GetLogger(ctx)
	var chunks []string
	for _, doc := range docs {
		txt, err := ExtractText(doc.Name, doc.Data)
		if err != nil {
			logger.Warn("document extraction failed, skipping", zap.String("name", doc.Name), zap.Error(err))
			continue
		}
		txt = strings.TrimSpace(txt)
		if len(txt) == 0 {
			logger.Warn("document yielded no text, skipping", zap.String("name", doc.Name))
			continue
		}
		parts := sp.Split(txt)
		logger.Info("document ingested", zap.String("name", doc.Name), zap.Int("chunks", len(parts)))
		chunks = append(chunks, parts...)
	}
	return chunks
}
