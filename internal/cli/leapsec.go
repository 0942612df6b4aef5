package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/geodesy/internal/calendar"
	"github.com/signalsfoundry/geodesy/leapsec"
)

var leapsecCmd = &cobra.Command{
	Use:   "leapsec [yyyy-mm-dd]",
	Short: "Show the TAI-UTC offset effective at a date",
	Example: `  geoconv leapsec 2009-11-02
  geoconv leapsec --list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetBool("list")
		table := leapsec.Default()
		if list {
			for _, e := range table.Entries() {
				y, m, d := calendar.DateFromMJD(e.MJD)
				cmd.Printf("%04d-%02d-%02d  %g\n", y, m, d, e.Offset)
			}
			return nil
		}
		if len(args) != 1 {
			return fmt.Errorf("expected one yyyy-mm-dd argument")
		}
		mjd, err := parseDate(args[0])
		if err != nil {
			return err
		}
		cmd.Printf("TAI-UTC at %s: %g s\n", args[0], table.OffsetAt(float64(mjd)))
		return nil
	},
}

func init() {
	leapsecCmd.Flags().Bool("list", false, "print the full leap-second table")
	rootCmd.AddCommand(leapsecCmd)
}

func parseDate(s string) (int, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad date %q, want yyyy-mm-dd", s)
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
