package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/geodesy/epoch"
	"github.com/signalsfoundry/geodesy/internal/logging"
	"github.com/signalsfoundry/geodesy/registry"
)

var timeCmd = &cobra.Command{
	Use:   "time [values...]",
	Short: "Convert epochs between time scales and formats",
	Example: `  geoconv time --scale utc --to gps "2009-11-02T00:00:00"
  geoconv time --scale utc --to tt --in mjd --out iso 55137.5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scale, _ := cmd.Flags().GetString("scale")
		target, _ := cmd.Flags().GetString("to")
		inFormat, _ := cmd.Flags().GetString("in")
		outFormat, _ := cmd.Flags().GetString("out")

		ctx, span := otel.Tracer("geoconv").Start(cmd.Context(), "time.convert")
		span.SetAttributes(
			attribute.String("scale.from", scale),
			attribute.String("scale.to", target),
			attribute.Int("epochs", len(args)),
		)
		defer span.End()

		values, err := decodeArgs(inFormat, args)
		if err != nil {
			return err
		}
		v, err := epoch.New(registry.Tag(scale), inFormat, values)
		if err != nil {
			return err
		}
		conv, err := v.At(registry.Tag(target))
		if err != nil {
			return err
		}
		encoded, err := conv.Encode(outFormat)
		if err != nil {
			return err
		}

		log.Debug(ctx, "epochs converted",
			logging.String("from", scale), logging.String("to", target),
			logging.Int("epochs", conv.Len()))
		printEncoded(cmd, encoded)
		return nil
	},
}

func init() {
	timeCmd.Flags().String("scale", "utc", "input time scale")
	timeCmd.Flags().String("to", "utc", "target time scale")
	timeCmd.Flags().String("in", "iso", "input format (iso, mjd, jd, decimalyear)")
	timeCmd.Flags().String("out", "iso", "output format")
	rootCmd.AddCommand(timeCmd)
}

// decodeArgs shapes command line strings into the payload the named format's
// decoder expects.
func decodeArgs(format string, args []string) (any, error) {
	switch format {
	case "iso":
		return args, nil
	case "mjd", "jd", "decimalyear":
		values := make([]float64, len(args))
		for i, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			values[i] = v
		}
		return values, nil
	default:
		return nil, fmt.Errorf("format %q cannot be read from command line arguments", format)
	}
}

func printEncoded(cmd *cobra.Command, encoded any) {
	switch v := encoded.(type) {
	case []string:
		for _, s := range v {
			cmd.Println(s)
		}
	case []float64:
		for _, f := range v {
			cmd.Printf("%.12f\n", f)
		}
	case epoch.GPSWeekSow:
		for i := range v.Week {
			cmd.Printf("%d %.6f\n", v.Week[i], v.Sow[i])
		}
	case epoch.YearDoySod:
		for i := range v.Year {
			cmd.Printf("%d %03d %.6f\n", v.Year[i], v.Doy[i], v.Sod[i])
		}
	case []map[string]string:
		for _, vars := range v {
			cmd.Printf("yyyy=%s mm=%s dd=%s doy=%s hh=%s min=%s sec=%s\n",
				vars["yyyy"], vars["mm"], vars["dd"], vars["doy"], vars["hh"], vars["min"], vars["sec"])
		}
	default:
		cmd.Printf("%v\n", encoded)
	}
}
