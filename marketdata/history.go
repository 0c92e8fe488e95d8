package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"market-pulse/models"
)

// HistoryStore archives one CSV file per index and trading day under a
// data directory. Files are named like masi_2026-08-21.csv with a
// single header row and a single value row.
type HistoryStore struct {
	dir string
}

// NewHistoryStore creates the store, making the directory if needed.
func NewHistoryStore(dir string) (*HistoryStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &HistoryStore{dir: dir}, nil
}

// Name identifies the store on snapshots and metrics.
func (s *HistoryStore) Name() models.SnapshotSource {
	return models.SourceHistory
}

// Fetch implements Source over the CSV archive.
func (s *HistoryStore) Fetch(ctx context.Context, symbol, date string) (models.MarketRecord, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return s.Load(symbol, date)
}

// historyDefault is the value a field takes when its column is missing
// or malformed. Oscillators default to their midpoint.
func historyDefault(f models.Field) float64 {
	switch f {
	case models.FieldRSI, models.FieldStochastic:
		return 50
	default:
		return 0
	}
}

// Load reads the archived record for a symbol and date. Every known
// field is materialized, with defaults for absent or malformed cells;
// change_pct is always recomputed from open and close.
func (s *HistoryStore) Load(symbol, date string) (models.MarketRecord, error) {
	f, err := os.Open(s.path(symbol, date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrNoData
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[name] = i
	}
	values := rows[1]

	record := models.NewMarketRecord()
	for _, field := range models.AllFields {
		if field == models.FieldChangePct {
			continue
		}
		value := historyDefault(field)
		if i, ok := columns[string(field)]; ok && i < len(values) && values[i] != "" {
			if parsed, err := strconv.ParseFloat(values[i], 64); err == nil {
				value = parsed
			}
		}
		record.Set(field, value)
	}
	record.DeriveChangePct()

	return record, nil
}

// Save archives a record, replacing any existing file for the date.
// The write goes through a temp file so readers never see a torn row.
func (s *HistoryStore) Save(symbol, date string, record models.MarketRecord) error {
	tmp, err := os.CreateTemp(s.dir, ".history-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	header := make([]string, len(models.AllFields))
	row := make([]string, len(models.AllFields))
	for i, field := range models.AllFields {
		header[i] = string(field)
		if record.Has(field) {
			row[i] = strconv.FormatFloat(record.Get(field, 0), 'f', -1, 64)
		}
	}

	w := csv.NewWriter(tmp)
	writeErr := w.Write(header)
	if writeErr == nil {
		writeErr = w.Write(row)
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write history file: %w", writeErr)
	}

	if err := os.Rename(tmpName, s.path(symbol, date)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store history file: %w", err)
	}
	return nil
}

// Dates lists the archived days for a symbol, newest first.
func (s *HistoryStore) Dates(symbol string) ([]string, error) {
	prefix := strings.ToLower(symbol) + "_"
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list history directory: %w", err)
	}

	var dates []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		date := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".csv")
		if _, err := time.Parse("2006-01-02", date); err != nil {
			continue
		}
		dates = append(dates, date)
	}

	// ISO dates sort lexically, so reverse order is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func (s *HistoryStore) path(symbol, date string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.csv", strings.ToLower(symbol), date))
}
