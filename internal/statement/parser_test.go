package statement

import (
	"strings"
	"testing"
	"time"
)

func TestParseHeaderRoundTrip(t *testing.T) {
	src := "date,description,amount\n2025-01-15,  Coffee Shop ,-4.50\n"
	txs, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	tx := txs[0]
	if !tx.Date.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("wrong date: %v", tx.Date)
	}
	if tx.Description != "Coffee Shop" {
		t.Errorf("description not trimmed: %q", tx.Description)
	}
	if tx.Amount != -4.50 {
		t.Errorf("wrong amount: %v", tx.Amount)
	}
	if tx.Category != "" {
		t.Errorf("category should be unset, got %q", tx.Category)
	}
}

func TestParseDelimiterSniffing(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"comma", "2025-01-02,Rent,-1200\n"},
		{"semicolon", "2025-01-02;Rent;-1200\n"},
		{"tab", "2025-01-02\tRent\t-1200\n"},
		{"pipe", "2025-01-02|Rent|-1200\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			txs, err := Parse(strings.NewReader(tc.src))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(txs) != 1 || txs[0].Description != "Rent" || txs[0].Amount != -1200 {
				t.Fatalf("bad parse: %+v", txs)
			}
		})
	}
}

func TestParseHeaderDetection(t *testing.T) {
	// A first row with only one of the two required tokens is data, and since
	// its date column does not parse it is skipped.
	src := "date,merchant,value\n2025-01-02,Rent,-1200\n"
	txs, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
}

func TestParseDateColumnAliases(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"posting date", "description,posting date,amount\nRent,2025-01-02,-1200\n"},
		{"effective date", "description,effective date,amount\nRent,2025-01-02,-1200\n"},
		{"transaction date", "description,transaction date,amount\nRent,2025-01-02,-1200\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			txs, err := Parse(strings.NewReader(tc.src))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(txs) != 1 || txs[0].Date.Year() != 2025 {
				t.Fatalf("bad parse: %+v", txs)
			}
		})
	}
}

func TestParseCategorySubstringMatch(t *testing.T) {
	src := "date,description,amount,expense category\n2025-01-02,Gym,-10.00,Fitness\n"
	txs, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 || txs[0].Category != "Fitness" {
		t.Fatalf("expected category Fitness, got %+v", txs)
	}
}

func TestParseDateFormats(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-09T00:00:00Z", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"2025-03-09", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"20250309", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"03/09/2025", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
	}
	for i, tc := range cases {
		got, ok := parseDate(tc.in)
		if !ok {
			t.Fatalf("case %d: %q did not parse", i, tc.in)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("case %d: got %v want %v", i, got, tc.want)
		}
	}
	if _, ok := parseDate("not a date"); ok {
		t.Fatal("expected failure for junk date")
	}
}

func TestParseAmountNormalization(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,234.56", 1234.56, true},
		{"-$45.00", -45, true},
		{" 12.5 ", 12.5, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for i, tc := range cases {
		got, ok := parseAmount(tc.in)
		if ok != tc.ok {
			t.Fatalf("case %d: ok=%v want %v", i, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("case %d: got %v want %v", i, got, tc.want)
		}
	}
}

func TestParseSkipsMalformedRows(t *testing.T) {
	src := strings.Join([]string{
		"date,description,amount",
		"2025-01-02,Rent,-1200",
		"bad-date,Broken,-5",
		"2025-01-03,Short",
		"2025-01-04,NotANumber,xx",
		"2025-01-05,Groceries,-80.25",
	}, "\n")
	txs, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 valid rows, got %d: %+v", len(txs), txs)
	}
	if txs[0].Description != "Rent" || txs[1].Description != "Groceries" {
		t.Fatalf("unexpected rows: %+v", txs)
	}
}

func TestParseEmptyInput(t *testing.T) {
	txs, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected empty result, got %d", len(txs))
	}
}
