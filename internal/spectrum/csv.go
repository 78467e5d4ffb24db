package spectrum

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/514687572h/Berreman4x4/internal/stack"
)

// WriteCSV writes one row per wavelength with the named power
// coefficients as columns. The first column is the vacuum wavelength
// in metres.
func WriteCSV(w io.Writer, points []Point, names []string) error {
	coeffs := make([]stack.Coefficient, len(names))
	for i, name := range names {
		c, err := stack.ParseCoefficient(name)
		if err != nil {
			return err
		}
		coeffs[i] = c
	}

	cw := csv.NewWriter(w)
	header := append([]string{"lambda_m"}, names...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(names)+1)
	for _, p := range points {
		row[0] = strconv.FormatFloat(p.Lambda, 'e', 9, 64)
		for i, c := range coeffs {
			row[i+1] = strconv.FormatFloat(c.Extract(p.Jones), 'g', 9, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
