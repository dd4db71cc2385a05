package hdb_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carpark-service/internal/repository/hdb"
)

func writeFeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "carparks.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSource_StreamRows(t *testing.T) {
	ctx := context.Background()

	t.Run("skips the header and yields raw records", func(t *testing.T) {
		path := writeFeed(t, "car_park_no,address,x_coord,y_coord\n"+
			"A1,BLK 1 TEST ST,28001.642,38744.572\n"+
			"B2,BLK 2 TEST ST,29000.000,39000.000\n")

		src := hdb.NewCSVSource(path, zap.NewNop())

		var rows [][]string
		malformed, err := src.StreamRows(ctx, func(record []string) error {
			rows = append(rows, record)
			return nil
		})

		assert.NoError(t, err)
		assert.Zero(t, malformed)
		assert.Len(t, rows, 2)
		assert.Equal(t, "A1", rows[0][0])
		assert.Equal(t, "B2", rows[1][0])
	})

	t.Run("a malformed line is skipped, the rest still stream", func(t *testing.T) {
		path := writeFeed(t, "car_park_no,address\n"+
			"A1,GOOD ROW\n"+
			"X1,bad\"quote\n"+
			"B2,ANOTHER GOOD ROW\n")

		src := hdb.NewCSVSource(path, zap.NewNop())

		var codes []string
		malformed, err := src.StreamRows(ctx, func(record []string) error {
			codes = append(codes, record[0])
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, malformed)
		assert.Equal(t, []string{"A1", "B2"}, codes)
	})

	t.Run("rows with varying column counts are passed through", func(t *testing.T) {
		path := writeFeed(t, "h1,h2,h3\n"+
			"A1,only,two,extra\n"+
			"B2,two\n")

		src := hdb.NewCSVSource(path, zap.NewNop())

		var widths []int
		_, err := src.StreamRows(ctx, func(record []string) error {
			widths = append(widths, len(record))
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, []int{4, 2}, widths)
	})

	t.Run("callback error aborts the stream", func(t *testing.T) {
		path := writeFeed(t, "h\nA1\nB2\n")
		src := hdb.NewCSVSource(path, zap.NewNop())

		sentinel := errors.New("stop")
		count := 0
		_, err := src.StreamRows(ctx, func(record []string) error {
			count++
			return sentinel
		})

		assert.Equal(t, sentinel, err)
		assert.Equal(t, 1, count)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		src := hdb.NewCSVSource(filepath.Join(t.TempDir(), "nope.csv"), zap.NewNop())

		_, err := src.StreamRows(ctx, func(record []string) error { return nil })
		assert.Error(t, err)
	})

	t.Run("cancelled context stops the stream", func(t *testing.T) {
		path := writeFeed(t, "h\nA1\nB2\n")
		src := hdb.NewCSVSource(path, zap.NewNop())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := src.StreamRows(cancelled, func(record []string) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
