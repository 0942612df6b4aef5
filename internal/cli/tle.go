package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/geodesy/ephemeris"
	"github.com/signalsfoundry/geodesy/epoch"
	"github.com/signalsfoundry/geodesy/internal/observability"
	"github.com/signalsfoundry/geodesy/position"
)

var tleCmd = &cobra.Command{
	Use:   "tle [iso-epoch ...]",
	Short: "Propagate a two-line element set to the given UTC epochs",
	Example: `  geoconv tle --line1 "1 25544U ..." --line2 "2 25544 ..." 2008-09-20T12:25:40
  geoconv tle --line1 ... --line2 ... --llh 2008-09-20T12:25:40 2008-09-20T12:55:40`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line1, _ := cmd.Flags().GetString("line1")
		line2, _ := cmd.Flags().GetString("line2")
		asLLH, _ := cmd.Flags().GetBool("llh")
		if line1 == "" || line2 == "" {
			return fmt.Errorf("both --line1 and --line2 are required")
		}

		metrics, err := observability.NewEphemerisCollector(nil)
		if err != nil {
			return fmt.Errorf("register ephemeris metrics: %w", err)
		}
		prop, err := ephemeris.NewFromTLE(line1, line2,
			ephemeris.WithLogger(log),
			ephemeris.WithMetrics(metrics),
		)
		if err != nil {
			return err
		}

		t, err := epoch.New("utc", "iso", args)
		if err != nil {
			return err
		}

		ctx, span := otel.Tracer("geoconv").Start(cmd.Context(), "tle.propagate")
		span.SetAttributes(
			attribute.String("satellite", prop.Name()),
			attribute.Int("epochs", t.Len()),
		)
		defer span.End()

		states, err := prop.StatesAt(ctx, t)
		if err != nil {
			return err
		}
		if asLLH {
			pos, err := states.Position()
			if err != nil {
				return err
			}
			llh, err := pos.At(position.LLH)
			if err != nil {
				return err
			}
			cmd.Println("# llh (radian, radian, meter)")
			for _, row := range llh.Data() {
				cmd.Printf("%.9f %.9f %.3f\n", row[0], row[1], row[2])
			}
			return nil
		}
		cmd.Println("# trs (meter, meter/second)")
		for _, row := range states.Data() {
			cmd.Printf("%.3f %.3f %.3f  %.6f %.6f %.6f\n",
				row[0], row[1], row[2], row[3], row[4], row[5])
		}
		return nil
	},
}

func init() {
	tleCmd.Flags().String("line1", "", "first TLE line")
	tleCmd.Flags().String("line2", "", "second TLE line")
	tleCmd.Flags().Bool("llh", false, "print geodetic coordinates instead of TRS states")
	rootCmd.AddCommand(tleCmd)
}
