// Package recurring partitions several periods' worth of parsed statement
// transactions into charges that repeat every period and one-off outflows.
package recurring

import (
	"math"
	"strings"
	"time"

	"github.com/PhantomExMachina/Budget-Tool/internal/ledger"
)

// Defaults used by callers that do not configure matching.
const (
	DefaultTolerance = 0.1
	DefaultDayWindow = 0
)

// anchorKey dedups same-day repeats of a merchant inside the anchor period.
type anchorKey struct {
	description string
	day         int
}

// Detect runs anchor-and-sweep recurring detection over the supplied
// periods. The first period is the anchor; an anchor transaction is
// recurring when every later period contains a first structural match:
// equal lowercased description, day-of-month within dayWindow, and amount
// within tolerance of the anchor amount in relative terms.
//
// Amounts are compared with their signs: a charge whose debit/credit
// convention flips between statements will not match. The returned set holds
// the lowercased descriptions of every transaction that took part in a
// recurring match, for the caller's one-time classification.
func Detect(periods [][]ledger.Transaction, tolerance float64, dayWindow int) ([]ledger.RecurringCandidate, map[string]struct{}) {
	matched := make(map[string]struct{})
	if len(periods) == 0 {
		return nil, matched
	}

	var candidates []ledger.RecurringCandidate
	seen := make(map[anchorKey]struct{})

	for _, anchor := range periods[0] {
		desc := strings.ToLower(anchor.Description)
		key := anchorKey{description: desc, day: anchor.Date.Day()}
		if _, done := seen[key]; done {
			continue
		}
		seen[key] = struct{}{}

		sum := anchor.Amount
		found := true
		for _, period := range periods[1:] {
			match, ok := findMatch(period, desc, anchor, tolerance, dayWindow)
			if !ok {
				found = false
				break
			}
			sum += match.Amount
		}
		if !found {
			continue
		}

		matched[desc] = struct{}{}
		candidates = append(candidates, ledger.RecurringCandidate{
			Description: anchor.Description,
			Amount:      math.Abs(sum / float64(len(periods))),
			Category:    anchor.Category,
		})
	}
	return candidates, matched
}

// findMatch returns the first transaction in period that structurally
// matches the anchor. No best-match ranking is attempted.
func findMatch(period []ledger.Transaction, desc string, anchor ledger.Transaction, tolerance float64, dayWindow int) (ledger.Transaction, bool) {
	for _, tx := range period {
		if strings.ToLower(tx.Description) != desc {
			continue
		}
		if abs(tx.Date.Day()-anchor.Date.Day()) > dayWindow {
			continue
		}
		if math.Abs(tx.Amount-anchor.Amount) > math.Abs(anchor.Amount)*tolerance {
			continue
		}
		return tx, true
	}
	return ledger.Transaction{}, false
}

// OneTimes collects the complementary one-time candidates: every outflow in
// any scanned period whose description never took part in a recurring match.
// Candidates are deduplicated by (description, absolute amount, date-only)
// so overlapping statement windows do not re-emit the same charge; the
// storage layer enforces the same identity across repeated scans.
func OneTimes(periods [][]ledger.Transaction, matched map[string]struct{}) []ledger.OneTimeCandidate {
	var out []ledger.OneTimeCandidate
	emitted := make(map[string]struct{})

	for _, period := range periods {
		for _, tx := range period {
			if tx.Amount >= 0 {
				continue
			}
			if _, ok := matched[strings.ToLower(tx.Description)]; ok {
				continue
			}
			c := ledger.OneTimeCandidate{
				Description: tx.Description,
				Amount:      math.Abs(tx.Amount),
				Date:        dateOnly(tx.Date),
				Category:    tx.Category,
			}
			if _, dup := emitted[c.Key()]; dup {
				continue
			}
			emitted[c.Key()] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
