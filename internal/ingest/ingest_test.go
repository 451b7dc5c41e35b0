package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/internal/models"
)

const sampleCSV = `date,amount,type,category,description
2025-03-01,30000,credit,Salary,March pay
2025-03-03,5000,debit,Rent,
2025-03-10,"8,000.50",debit,Food Groceries,weekly shop
`

func TestParseCSV(t *testing.T) {
	txns, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, models.KindInflow, txns[0].Kind)
	assert.Equal(t, "salary", txns[0].Category)
	assert.Equal(t, "March pay", txns[0].Description)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), txns[0].Date)

	assert.Equal(t, models.KindOutflow, txns[2].Kind)
	assert.Equal(t, "food_groceries", txns[2].Category)
	assert.Equal(t, "8000.5", txns[2].Amount.String())
}

func TestParseCSVSignDecidesKind(t *testing.T) {
	in := "Date,Amount,Category\n2025-03-01,1200,salary\n2025-03-02,-40.25,transport\n"
	txns, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, models.KindInflow, txns[0].Kind)
	assert.Equal(t, models.KindOutflow, txns[1].Kind)
	assert.Equal(t, 40.25, txns[1].Value())
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing amount column", "date,kind\n2025-03-01,credit\n", `missing "amount" column`},
		{"bad date", "date,amount\nyesterday,10\n", "line 2"},
		{"bad amount", "date,amount\n2025-03-01,ten\n", "invalid amount"},
		{"bad kind", "date,amount,kind\n2025-03-01,10,transfer\n", "unknown kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseCSVEmpty(t *testing.T) {
	txns, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, txns)
	assert.NotNil(t, txns)
}

func TestParseJSON(t *testing.T) {
	in := `[
		{"date": "2025-03-01", "amount": 30000, "kind": "inflow", "category": "salary"},
		{"date": "2025-03-02T09:30:00Z", "amount": "120.75", "type": "debit", "category": "Transport", "description": "cab"}
	]`
	txns, err := ParseJSON(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, 30000.0, txns[0].Value())
	assert.Equal(t, models.KindOutflow, txns[1].Kind)
	assert.Equal(t, "transport", txns[1].Category)
	assert.Equal(t, 9, txns[1].Date.Hour())

	_, err = ParseJSON(strings.NewReader(`[{"date": "2025-03-01", "amount": 1, "kind": "sideways"}]`))
	assert.ErrorIs(t, err, models.ErrInvalidTransaction)

	_, err = ParseJSON(strings.NewReader(`{"not": "a list"}`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "march.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))

	txns, err := LoadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, txns, 3)

	xlsPath := filepath.Join(dir, "march.xlsx")
	require.NoError(t, os.WriteFile(xlsPath, []byte("x"), 0o644))
	_, err = LoadFile(xlsPath)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestWriteCSVIsReadable(t *testing.T) {
	txns, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txns))
	assert.True(t, strings.HasPrefix(buf.String(), "date,amount,kind,category,description\n"))
	assert.Contains(t, buf.String(), "2025-03-10,8000.50,outflow,food_groceries,weekly shop")

	again, err := ParseCSV(&buf)
	require.NoError(t, err)
	assert.Len(t, again, len(txns))
}
