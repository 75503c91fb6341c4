package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_DelimiterRoundTrip(t *testing.T) {
	// A well-formed table serialized with any supported delimiter must
	// come back with the original shape.
	header := []string{"Date", "Close", "Volume"}
	rows := [][]string{
		{"2025-07-09", "3312.14", "1200"},
		{"2025-07-08", "3300.00", "900"},
		{"2025-07-07", "3295.50", "1100"},
	}

	tests := []struct {
		name  string
		delim string
	}{
		{"comma", ","},
		{"semicolon", ";"},
		{"tab", "\t"},
		{"pipe", "|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			sb.WriteString(strings.Join(header, tt.delim) + "\n")
			for _, row := range rows {
				sb.WriteString(strings.Join(row, tt.delim) + "\n")
			}

			table, ok, err := Probe(sb.String())
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, len(header), table.Cols())
			assert.Equal(t, len(rows), table.Rows())
			assert.Equal(t, header, table.Headers())
		})
	}
}

func TestProbe_Plausibility(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantOK   bool
		wantCols int
	}{
		{
			name:     "multi column accepted",
			text:     "Date,Price\n2025-07-09,3312.14\n",
			wantOK:   true,
			wantCols: 2,
		},
		{
			name:   "single unsplit column rejected",
			text:   "Price\n3.14\n",
			wantOK: false,
		},
		{
			name: "quoted single column accepted",
			// Quote stripping is evidence the parse did something.
			text:     "\"Price\"\n\"3.14\"\n",
			wantOK:   true,
			wantCols: 1,
		},
		{
			name:   "empty input rejected",
			text:   "",
			wantOK: false,
		},
		{
			name: "semicolon text is not claimed by comma",
			// Comma produces one unsplit column here, so the probe must
			// move on and let semicolon split it.
			text:     "Date;Close\n2025-07-09;3312.14\n",
			wantOK:   true,
			wantCols: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, ok, err := Probe(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCols, table.Cols())
			} else {
				assert.Nil(t, table)
			}
		})
	}
}

func TestParseHeaderless(t *testing.T) {
	t.Run("first row is data", func(t *testing.T) {
		table, err := ParseHeaderless("1,2,3\n4,5,6\n")
		require.NoError(t, err)
		assert.Equal(t, []string{"Column_1", "Column_2", "Column_3"}, table.Headers())
		assert.Equal(t, 2, table.Rows())
		assert.Equal(t, []string{"1", "2", "3"}, table.Row(0))
	})

	t.Run("short rows are padded", func(t *testing.T) {
		table, err := ParseHeaderless("1,2,3\n4\n")
		require.NoError(t, err)
		assert.Equal(t, 3, table.Cols())
		assert.Equal(t, []string{"4", "", ""}, table.Row(1))
	})

	t.Run("empty input is unparseable", func(t *testing.T) {
		_, err := ParseHeaderless("")
		require.Error(t, err)
		assert.Equal(t, ErrUnparseable, KindOf(err))
	})
}
