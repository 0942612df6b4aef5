package position

import (
	"github.com/signalsfoundry/geodesy/registry"
)

// checkRows validates that every row has the family's component width.
func checkRows(what string, rows [][]float64, width int) error {
	for _, row := range rows {
		if len(row) != width {
			return &registry.LengthMismatchError{What: what, Want: width, Got: len(row)}
		}
	}
	return nil
}

func cloneRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func addRows(a, b [][]float64) [][]float64 {
	out := make([][]float64, len(a))
	for i := range a {
		row := make([]float64, len(a[i]))
		for j := range row {
			row[j] = a[i][j] + b[i][j]
		}
		out[i] = row
	}
	return out
}

func subRows(a, b [][]float64) [][]float64 {
	out := make([][]float64, len(a))
	for i := range a {
		row := make([]float64, len(a[i]))
		for j := range row {
			row[j] = a[i][j] - b[i][j]
		}
		out[i] = row
	}
	return out
}
