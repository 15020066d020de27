// Package export writes the ledger's transaction log as CSV and reads it back.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// Header is the CSV header for an exported transaction log.
const Header = "seq,type,timestamp,account,counterparty,merged,amount"

const (
	numFields    = 7
	colSeq       = 0
	colType      = 1
	colTimestamp = 2
	colAccount   = 3
	colCparty    = 4
	colMerged    = 5
	colAmount    = 6
)

// FormatAmount renders an integer amount of minor units with scale decimal
// places, e.g. (1050, 2) -> "10.50".
func FormatAmount(amount int64, scale int32) string {
	return decimal.New(amount, -scale).StringFixed(scale)
}

// ParseAmount is the inverse of FormatAmount. Values with more precision than
// scale allows are rejected.
func ParseAmount(s string, scale int32) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	minor := d.Shift(scale)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, scale)
	}
	return minor.IntPart(), nil
}

// MarshalRecord converts a record and its log position to a CSV row.
func MarshalRecord(seq int, r model.Record, scale int32) []string {
	row := make([]string, numFields)
	row[colSeq] = strconv.Itoa(seq)
	row[colType] = string(r.Kind())
	row[colTimestamp] = strconv.FormatInt(r.Time(), 10)

	switch r := r.(type) {
	case model.Deposit:
		row[colAccount] = r.Account
		row[colAmount] = FormatAmount(r.Amount, scale)
	case model.Transfer:
		row[colAccount] = r.From
		row[colCparty] = r.To
		row[colAmount] = FormatAmount(r.Amount, scale)
	case model.Merge:
		row[colAccount] = r.A
		row[colCparty] = r.B
		row[colMerged] = r.Merged
	}
	return row
}

// UnmarshalRecord converts a CSV row back to a record.
func UnmarshalRecord(record []string, scale int32) (model.Record, error) {
	if len(record) != numFields {
		return nil, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := strconv.ParseInt(record[colTimestamp], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	switch model.RecordKind(record[colType]) {
	case model.KindDeposit:
		amount, err := ParseAmount(record[colAmount], scale)
		if err != nil {
			return nil, err
		}
		return model.Deposit{Account: record[colAccount], Amount: amount, Timestamp: ts}, nil
	case model.KindTransfer:
		amount, err := ParseAmount(record[colAmount], scale)
		if err != nil {
			return nil, err
		}
		return model.Transfer{From: record[colAccount], To: record[colCparty], Amount: amount, Timestamp: ts}, nil
	case model.KindMerge:
		return model.Merge{A: record[colAccount], B: record[colCparty], Merged: record[colMerged], Timestamp: ts}, nil
	}
	return nil, fmt.Errorf("unknown record type %q", record[colType])
}

// WriteRecords writes recs to w (including header) in log order.
func WriteRecords(w io.Writer, recs []model.Record, scale int32) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range recs {
		if err := cw.Write(MarshalRecord(i, r, scale)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing log CSV: %w", err)
	}
	return nil
}

// ReadRecords reads an exported log. An empty input yields no records.
func ReadRecords(r io.Reader, scale int32) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading log CSV: %w", err)
	}

	if len(rows) <= 1 {
		return nil, nil
	}

	var recs []model.Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row, scale)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteFile writes recs to path, replacing any existing file.
func WriteFile(path string, recs []model.Record, scale int32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	if err := WriteRecords(f, recs, scale); err != nil {
		f.Close()
		return fmt.Errorf("writing export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}
	return nil
}
