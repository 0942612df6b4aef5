package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/geodesy/position"
	"github.com/signalsfoundry/geodesy/registry"
)

var posCmd = &cobra.Command{
	Use:   "pos [x y z ...]",
	Short: "Convert positions between coordinate systems",
	Example: `  geoconv pos --from trs --to llh 3148244.690 597997.517 5496192.542
  geoconv pos --from llh --to trs 1.04 0.188 412.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		rows, err := parseRows(args, 3)
		if err != nil {
			return err
		}

		_, span := otel.Tracer("geoconv").Start(cmd.Context(), "pos.convert")
		span.SetAttributes(
			attribute.String("system.from", from),
			attribute.String("system.to", to),
			attribute.Int("elements", len(rows)),
		)
		defer span.End()

		p, err := position.NewPosition(registry.Tag(from), cfg.SelectedEllipsoid(), rows)
		if err != nil {
			return err
		}
		conv, err := p.At(registry.Tag(to))
		if err != nil {
			return err
		}
		units := strings.Join(conv.Unit(), ", ")
		cmd.Printf("# %s (%s)\n", to, units)
		for _, row := range conv.Data() {
			cmd.Printf("%.9f %.9f %.9f\n", row[0], row[1], row[2])
		}
		return nil
	},
}

func init() {
	posCmd.Flags().String("from", "trs", "input coordinate system")
	posCmd.Flags().String("to", "llh", "target coordinate system")
	rootCmd.AddCommand(posCmd)
}

// parseRows groups flat numeric arguments into rows of the given width.
func parseRows(args []string, width int) ([][]float64, error) {
	if len(args) == 0 || len(args)%width != 0 {
		return nil, fmt.Errorf("expected a multiple of %d values, got %d", width, len(args))
	}
	rows := make([][]float64, len(args)/width)
	for i := range rows {
		row := make([]float64, width)
		for j := 0; j < width; j++ {
			v, err := strconv.ParseFloat(args[i*width+j], 64)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i*width+j, err)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}
