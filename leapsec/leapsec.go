// Package leapsec maintains the TAI-UTC leap-second table: a
// piecewise-constant step function of the form "for epochs on or after date
// D, TAI-UTC = O seconds".
//
// A builtin table covering 1972..2017 is compiled in; deployments with a
// fresher table install one parsed from a small text file. Lookups outside
// the table's range extrapolate with the nearest known offset and log a
// warning once, since a stale table is operationally common and should
// degrade gracefully rather than fail.
package leapsec

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/signalsfoundry/geodesy/internal/calendar"
	"github.com/signalsfoundry/geodesy/internal/logging"
)

// Entry is one step of the table: from 0h UTC of the day at MJD, the
// cumulative TAI-UTC offset is Offset seconds.
type Entry struct {
	MJD    int
	Offset float64
}

// Table is an immutable, sorted leap-second table.
type Table struct {
	entries []Entry
	log     logging.Logger

	warnedBefore sync.Once
	warnedAfter  sync.Once
}

// builtin is the table shipped with the library, current through the
// 2017-01-01 leap second.
var builtin = []Entry{
	{41317, 10}, // 1972-01-01
	{41499, 11}, // 1972-07-01
	{41683, 12}, // 1973-01-01
	{42048, 13}, // 1974-01-01
	{42413, 14}, // 1975-01-01
	{42778, 15}, // 1976-01-01
	{43144, 16}, // 1977-01-01
	{43509, 17}, // 1978-01-01
	{43874, 18}, // 1979-01-01
	{44239, 19}, // 1980-01-01
	{44786, 20}, // 1981-07-01
	{45151, 21}, // 1982-07-01
	{45516, 22}, // 1983-07-01
	{46247, 23}, // 1985-07-01
	{47161, 24}, // 1988-01-01
	{47892, 25}, // 1990-01-01
	{48257, 26}, // 1991-01-01
	{48804, 27}, // 1992-07-01
	{49169, 28}, // 1993-07-01
	{49534, 29}, // 1994-07-01
	{50083, 30}, // 1996-01-01
	{50630, 31}, // 1997-07-01
	{51179, 32}, // 1999-01-01
	{53736, 33}, // 2006-01-01
	{54832, 34}, // 2009-01-01
	{56109, 35}, // 2012-07-01
	{57204, 36}, // 2015-07-01
	{57754, 37}, // 2017-01-01
}

// Builtin returns a table holding the compiled-in entries.
func Builtin() *Table {
	return newTable(builtin, logging.Noop())
}

func newTable(entries []Entry, log logging.Logger) *Table {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MJD < sorted[j].MJD })
	if log == nil {
		log = logging.Noop()
	}
	return &Table{entries: sorted, log: log}
}

// Parse reads a leap-second table from a small text resource of
// "YYYY-MM-DD offset" rows. Blank lines and lines starting with '#' are
// skipped.
func Parse(r io.Reader, log logging.Logger) (*Table, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("leapsec: line %d: want \"YYYY-MM-DD offset\", got %q", lineno, line)
		}
		mjd, err := parseDate(fields[0])
		if err != nil {
			return nil, fmt.Errorf("leapsec: line %d: %w", lineno, err)
		}
		offset, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("leapsec: line %d: bad offset %q: %w", lineno, fields[1], err)
		}
		entries = append(entries, Entry{MJD: mjd, Offset: offset})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("leapsec: read table: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("leapsec: empty table")
	}
	return newTable(entries, log), nil
}

func parseDate(s string) (int, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad date %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad year in %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, fmt.Errorf("bad month in %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("bad day in %q", s)
	}
	return calendar.MJDFromDate(year, month, day), nil
}

// OffsetAt returns the cumulative TAI-UTC offset in seconds effective at the
// given UTC epoch expressed as a (possibly fractional) MJD. Epochs before
// the first entry extrapolate with the first offset; epochs after the last
// entry use the last offset, which only counts as extrapolation (and logs a
// warning, once per table) when the epoch is more than a year past the last
// entry, since leap seconds are announced at least six months ahead.
func (t *Table) OffsetAt(mjd float64) float64 {
	n := len(t.entries)
	if mjd < float64(t.entries[0].MJD) {
		t.warnedBefore.Do(func() {
			t.log.Warn(context.Background(), "epoch precedes leap-second table; extrapolating first offset",
				logging.Any("mjd", mjd),
				logging.Int("table_start_mjd", t.entries[0].MJD))
		})
		return t.entries[0].Offset
	}
	if mjd >= float64(t.entries[n-1].MJD) {
		if mjd >= float64(t.entries[n-1].MJD)+366 {
			t.warnedAfter.Do(func() {
				t.log.Warn(context.Background(), "epoch beyond leap-second table; extrapolating last offset",
					logging.Any("mjd", mjd),
					logging.Int("table_end_mjd", t.entries[n-1].MJD))
			})
		}
		return t.entries[n-1].Offset
	}
	// Rightmost entry whose MJD <= mjd.
	i := sort.Search(n, func(i int) bool { return float64(t.entries[i].MJD) > mjd }) - 1
	return t.entries[i].Offset
}

// Entries returns a copy of the table rows in ascending MJD order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// defaultTable is the process-wide table consulted by the epoch scale
// conversions. It starts as the builtin table and may be replaced once at
// startup by Install.
var defaultTable atomic.Pointer[Table]

func init() {
	defaultTable.Store(Builtin())
}

// Default returns the process-wide table.
func Default() *Table {
	return defaultTable.Load()
}

// Install replaces the process-wide table. Call during initialization,
// before any conversion is attempted.
func Install(t *Table) {
	if t == nil {
		return
	}
	defaultTable.Store(t)
}
