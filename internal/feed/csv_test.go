package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tastreamv1/internal/model"
	"tastreamv1/internal/ringbuf"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func drain(ring *ringbuf.Ring) []model.Bar {
	var bars []model.Bar
	for {
		b, ok := ring.Pop()
		if !ok {
			return bars
		}
		bars = append(bars, b)
	}
}

func TestCSVSource_ReadsBars(t *testing.T) {
	path := writeTempCSV(t, `ts,symbol,open,high,low,close,volume
2024-03-01T09:15:00Z,INFY,1540.00,1545.50,1538.25,1544.00,12000
2024-03-01T09:16:00Z,INFY,1544.00,1548.00,1543.00,1547.25,9800
`)
	ring := ringbuf.New(16)
	src := New(path, "FALLBACK")

	require.NoError(t, src.Run(context.Background(), ring, 0))

	bars := drain(ring)
	require.Len(t, bars, 2)
	assert.Equal(t, "INFY", bars[0].Symbol())
	assert.Equal(t, "1544", bars[0].Close().String())
	assert.Equal(t, "2024-03-01T09:16:00Z", bars[1].Timestamp().Format("2006-01-02T15:04:05Z07:00"))
}

func TestCSVSource_ColumnOrderFree(t *testing.T) {
	path := writeTempCSV(t, `close,open,volume,low,high
11,10,100,9,12
`)
	ring := ringbuf.New(4)
	src := New(path, "TCS")

	require.NoError(t, src.Run(context.Background(), ring, 0))

	bars := drain(ring)
	require.Len(t, bars, 1)
	assert.Equal(t, "TCS", bars[0].Symbol()) // fallback symbol
	assert.Equal(t, "12", bars[0].High().String())
}

func TestCSVSource_SkipsMalformedRows(t *testing.T) {
	path := writeTempCSV(t, `open,high,low,close,volume
10,12,9,11,100
oops,12,9,11,100
10,9,11,12,100
10,12,9,11,200
`)
	ring := ringbuf.New(8)
	src := New(path, "X")

	require.NoError(t, src.Run(context.Background(), ring, 0))

	// bad price row and inverted high/low row are dropped
	bars := drain(ring)
	require.Len(t, bars, 2)
	assert.Equal(t, "100", bars[0].Volume().String())
	assert.Equal(t, "200", bars[1].Volume().String())
}

func TestCSVSource_MissingColumn(t *testing.T) {
	path := writeTempCSV(t, `open,high,low,close
10,12,9,11
`)
	ring := ringbuf.New(4)
	src := New(path, "X")

	err := src.Run(context.Background(), ring, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume")
}
