package theory

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoadCorpus reads one document analysis per line. Lines are JSON objects in
// the same shape as the YAML wire format. Malformed lines are logged and
// skipped; a file without any valid document is an error.
func LoadCorpus(path string, logger *slog.Logger) ([]*Document, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var docs []*Document
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		doc, err := Decode([]byte(line))
		if err != nil {
			logger.Warn("skipping malformed document", "path", path, "line", i+1, "err", err)
			continue
		}
		if doc.ID == "" {
			doc.ID = fmt.Sprintf("%s:%d", path, i+1)
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no valid documents found in %s", path)
	}
	return docs, nil
}
