// Package hdb reads the bulk car park attribute feed, a CSV export of the
// public housing car park dataset.
package hdb

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/carpark-service/internal/domain/repository"
	"go.uber.org/zap"
)

type csvSource struct {
	path   string
	logger *zap.Logger
}

// NewCSVSource streams rows from the CSV file at path. The file is read row by
// row; memory stays bounded regardless of file size.
func NewCSVSource(path string, logger *zap.Logger) repository.AttributeSource {
	return &csvSource{
		path:   path,
		logger: logger,
	}
}

func (s *csvSource) StreamRows(ctx context.Context, fn func(record []string) error) (int, error) {
	f, err := os.Open(s.path)
	if err != nil {
		s.logger.Error("Failed to open attribute feed", zap.String("path", s.path), zap.Error(err))
		return 0, fmt.Errorf("open attribute feed: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Rows from the feed occasionally vary in trailing columns.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("attribute feed is empty or invalid: %w", err)
	}
	s.logger.Info("Streaming attribute feed",
		zap.String("path", s.path),
		zap.Int("header_columns", len(header)))

	malformed := 0
	for {
		if err := ctx.Err(); err != nil {
			return malformed, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			return malformed, nil
		}
		if err != nil {
			// One malformed line never aborts the whole run.
			if parseErr, ok := err.(*csv.ParseError); ok {
				s.logger.Warn("Skipping malformed CSV line",
					zap.Int("line", parseErr.Line), zap.Error(err))
				malformed++
				continue
			}
			return malformed, fmt.Errorf("read attribute feed: %w", err)
		}

		if err := fn(record); err != nil {
			return malformed, err
		}
	}
}
