package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/status"
)

func sampleRows() []model.CheckRow {
	return []model.CheckRow{
		{
			CheckRecord: model.CheckRecord{
				ID: 1, ItemID: 1, GroupName: "Team A", CheckedBy: "jdoe",
				Quantity: "3", Status: status.Low, Note: "running out, order soon",
				CheckDate: "2026-02-26", CreatedAt: "2026-02-26 10:15:00",
			},
			ItemName: "DMEM", StockPlace: "Fridge 1", Minimum: "6 bottles",
		},
		{
			CheckRecord: model.CheckRecord{
				ID: 2, ItemID: 2, GroupName: "Team A", CheckedBy: "jdoe",
				Quantity: "9999", Status: status.OK,
				CheckDate: "2026-02-26", CreatedAt: "2026-02-26 10:15:00",
			},
			ItemName: "Pipette tips", StockPlace: "Shelf", Minimum: "",
		},
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "stock_check_2026-02-26.csv", Filename("2026-02-26", "csv"))
	assert.Equal(t, "stock_check_all.pdf", Filename("", "pdf"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, utf8BOM), "missing BOM")

	records, err := csv.NewReader(bytes.NewReader(out[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{
		"2026-02-26", "Team A", "jdoe", "Fridge 1", "DMEM",
		"6 bottles", "3", "low", "running out, order soon", "2026-02-26 10:15:00",
	}, records[1])
	assert.Equal(t, "ok", records[2][7])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, string(utf8BOM)+strings.Join(Header, ",")+"\n", buf.String())
}

func TestPDF(t *testing.T) {
	out, err := PDF(sampleRows(), "Stock check 2026-02-26", "2026-02-26 18:00:00")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFManyPages(t *testing.T) {
	var rows []model.CheckRow
	for i := 0; i < 200; i++ {
		rows = append(rows, sampleRows()...)
	}
	out, err := PDF(rows, "Stock check (all dates)", "now")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFEmpty(t *testing.T) {
	out, err := PDF(nil, "Stock check", "now")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestColumnWidthsFitPage(t *testing.T) {
	var total float64
	for _, w := range columnWidths {
		total += w
	}
	assert.Len(t, columnWidths, len(Header))
	assert.InDelta(t, 297-2*margin, total, 0.01)
}
