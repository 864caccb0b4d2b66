package export

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/san-kum/hoopsim/internal/storage"
)

// WriteReport writes a one-page PDF listing the run parameters and each
// body's initial and final energy.
func WriteReport(w io.Writer, meta *storage.RunMetadata, records []storage.Record) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Bead on a hoop: run sheet")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	if meta != nil {
		line := func(format string, args ...interface{}) {
			pdf.Cell(0, 6, fmt.Sprintf(format, args...))
			pdf.Ln(6)
		}
		line("Run: %s", meta.ID)
		if meta.Preset != "" {
			line("Preset: %s", meta.Preset)
		}
		if !meta.Timestamp.IsZero() {
			line("Date: %s", meta.Timestamp.Format(time.RFC3339))
		}
		line("Gravity: %.4f m/s^2    Radius: %.4f m", meta.Gravity, meta.Radius)
		line("Step: %.4f s    Duration: %.3f s    Edit policy: %s", meta.Dt, meta.Duration, meta.EditPolicy)
		pdf.Ln(4)
	}

	headers := []string{"Body", "Samples", "E0 (J)", "E1 (J)", "Theta1 (rad)", "Omega1 (rad/s)"}
	widths := []float64{35, 22, 32, 32, 32, 32}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	order, groups := storage.ByBody(records)
	for _, body := range order {
		rs := groups[body]
		first, last := rs[0].Rounded(), rs[len(rs)-1].Rounded()
		cells := []string{
			body,
			fmt.Sprintf("%d", len(rs)),
			fmt.Sprintf("%.*f", storage.EnergyPrecision, first.Total),
			fmt.Sprintf("%.*f", storage.EnergyPrecision, last.Total),
			fmt.Sprintf("%.*f", storage.AnglePrecision, last.Theta),
			fmt.Sprintf("%.*f", storage.AngularVelPrecision, last.Omega),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(order) == 0 {
		pdf.Cell(0, 6, "No records captured.")
		pdf.Ln(6)
	}

	return pdf.Output(w)
}
