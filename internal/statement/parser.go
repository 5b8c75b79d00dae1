// Package statement parses raw bank-statement exports into normalized
// transaction records. Exports differ per bank: the delimiter is sniffed
// from a leading sample, a header row is optional, and dates arrive in a
// handful of formats. Malformed rows are skipped; the only hard failure is
// an unreadable source.
package statement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PhantomExMachina/Budget-Tool/internal/ledger"
)

// sniffSample bounds how much of the source the delimiter sniffer looks at.
const sniffSample = 1024

// dateColumns are the recognized header names for the date column, probed in
// priority order.
var dateColumns = []string{"date", "posting date", "effective date", "transaction date"}

// dateFormats are tried in order; the first that parses wins.
var dateFormats = []string{time.RFC3339, "2006-01-02", "20060102", "01/02/2006"}

// columnMap resolves which column holds each field for one statement.
type columnMap struct {
	date        int
	description int
	amount      int
	category    int // -1 when the export carries no category column
}

// positional is the fallback layout for headerless exports.
var positional = columnMap{date: 0, description: 1, amount: 2, category: -1}

// Parse reads one tabular statement export and returns its transactions in
// input row order. No date ordering is imposed; the caller's grouping into
// periods is trusted.
func Parse(r io.Reader) ([]ledger.Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var (
		txs   []ledger.Transaction
		cols  = positional
		first = true
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A row the csv reader cannot make sense of degrades by
			// omission, same as any other malformed row.
			continue
		}
		if first {
			first = false
			if m, ok := mapHeader(row); ok {
				cols = m
				continue
			}
		}
		if tx, ok := parseRow(row, cols); ok {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

// sniffDelimiter guesses the delimiter from a leading sample of the content.
// The candidate that appears most often in the first line wins; comma is the
// fallback when nothing stands out.
func sniffDelimiter(data []byte) rune {
	sample := data
	if len(sample) > sniffSample {
		sample = sample[:sniffSample]
	}
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}

	best, bestCount := ',', 0
	for _, cand := range []rune{',', '\t', ';', '|'} {
		if n := bytes.Count(sample, []byte(string(cand))); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

// mapHeader decides whether row is a header and, if so, resolves the column
// layout from it. A row counts as a header only when it names both an amount
// and a description column.
func mapHeader(row []string) (columnMap, bool) {
	names := make([]string, len(row))
	for i, cell := range row {
		names[i] = strings.ToLower(strings.TrimSpace(cell))
	}

	m := columnMap{date: 0, description: -1, amount: -1, category: -1}
	for i, name := range names {
		switch name {
		case "amount":
			if m.amount < 0 {
				m.amount = i
			}
		case "description":
			if m.description < 0 {
				m.description = i
			}
		}
	}
	if m.amount < 0 || m.description < 0 {
		return columnMap{}, false
	}

	for _, alias := range dateColumns {
		if i := indexOf(names, alias); i >= 0 {
			m.date = i
			break
		}
	}
	for i, name := range names {
		if strings.Contains(name, "category") {
			m.category = i
			break
		}
	}
	return m, true
}

func indexOf(names []string, want string) int {
	for i, name := range names {
		if name == want {
			return i
		}
	}
	return -1
}

// parseRow converts one data row. Rows with too few columns, an unparsable
// date or an unparsable amount are dropped.
func parseRow(row []string, cols columnMap) (ledger.Transaction, bool) {
	if len(row) < 3 {
		return ledger.Transaction{}, false
	}
	if cols.date >= len(row) || cols.description >= len(row) || cols.amount >= len(row) {
		return ledger.Transaction{}, false
	}

	date, ok := parseDate(strings.TrimSpace(row[cols.date]))
	if !ok {
		return ledger.Transaction{}, false
	}
	amount, ok := parseAmount(row[cols.amount])
	if !ok {
		return ledger.Transaction{}, false
	}

	tx := ledger.Transaction{
		Date:        date,
		Description: strings.TrimSpace(row[cols.description]),
		Amount:      amount,
	}
	if cols.category >= 0 && cols.category < len(row) {
		tx.Category = strings.TrimSpace(row[cols.category])
	}
	return tx, true
}

// parseDate walks the ordered format fallback chain.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmount strips currency symbols and thousands separators, preserving
// the sign as exported.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
