package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/FinSage/internal/models"
)

var ErrUnsupportedFormat = errors.New("unsupported transaction file format")

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// LoadFile reads transactions from a .csv or .json file.
func LoadFile(path string) ([]models.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transactions: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseCSV(f)
	case ".json":
		return ParseJSON(f)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// ParseCSV reads a header row followed by one transaction per row. Columns
// are matched by name: date, amount, kind (or type), category, description.
// Without a kind column the sign of amount decides the direction.
func ParseCSV(r io.Reader) ([]models.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []models.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["kind"]; !ok {
		if i, ok := cols["type"]; ok {
			cols["kind"] = i
		}
	}
	for _, required := range []string{"date", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	txns := []models.Transaction{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := buildTransaction(field(row, "date"), field(row, "amount"), field(row, "kind"),
			field(row, "category"), field(row, "description"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

type jsonTransaction struct {
	Date        string          `json:"date"`
	Amount      json.RawMessage `json:"amount"`
	Kind        string          `json:"kind"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// ParseJSON reads a JSON array of transaction objects. Amounts may be
// numbers or strings.
func ParseJSON(r io.Reader) ([]models.Transaction, error) {
	var raw []jsonTransaction
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	txns := make([]models.Transaction, 0, len(raw))
	for i, jt := range raw {
		kind := jt.Kind
		if kind == "" {
			kind = jt.Type
		}
		amount := strings.Trim(strings.TrimSpace(string(jt.Amount)), `"`)
		t, err := buildTransaction(jt.Date, amount, kind, jt.Category, jt.Description)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func buildTransaction(date, amount, kind, category, description string) (models.Transaction, error) {
	d, err := parseDate(date)
	if err != nil {
		return models.Transaction{}, err
	}
	amt, err := decimal.NewFromString(strings.ReplaceAll(amount, ",", ""))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	var k models.TransactionKind
	if kind == "" {
		k = models.KindInflow
		if amt.IsNegative() {
			k = models.KindOutflow
		}
	} else {
		var ok bool
		if k, ok = models.ParseKind(kind); !ok {
			return models.Transaction{}, fmt.Errorf("%w: unknown kind %q", models.ErrInvalidTransaction, kind)
		}
	}

	t := models.Transaction{
		Date:        d,
		Amount:      amt,
		Kind:        k,
		Category:    models.NormalizeCategory(category),
		Description: strings.TrimSpace(description),
	}
	if err := models.ValidateTransaction(t); err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", models.ErrInvalidTransaction, raw)
}

// WriteCSV writes transactions in the format ParseCSV reads.
func WriteCSV(w io.Writer, txns []models.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "amount", "kind", "category", "description"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, t := range txns {
		row := []string{
			t.Date.Format("2006-01-02"),
			t.Amount.Abs().StringFixed(2),
			string(t.Kind),
			t.Category,
			t.Description,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
