package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/hoopsim/internal/storage"
	"github.com/xuri/excelize/v2"
)

const SummarySheet = "Summary"

// sheet names are capped by Excel
const maxSheetName = 31

// WriteXLSX writes a workbook with a summary sheet followed by one sheet of
// rounded records per body.
func WriteXLSX(w io.Writer, meta *storage.RunMetadata, records []storage.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if err := writeSummary(f, meta, records); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}

	order, groups := storage.ByBody(records)
	used := map[string]bool{SummarySheet: true}
	for _, body := range order {
		name := SheetName(body, used)
		used[name] = true
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
		if err := writeBodySheet(f, name, groups[body]); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSummary(f *excelize.File, meta *storage.RunMetadata, records []storage.Record) error {
	rows := [][]interface{}{}
	if meta != nil {
		rows = append(rows,
			[]interface{}{"run", meta.ID},
			[]interface{}{"preset", meta.Preset},
			[]interface{}{"gravity_m_s2", meta.Gravity},
			[]interface{}{"radius_m", meta.Radius},
			[]interface{}{"dt_s", meta.Dt},
			[]interface{}{"duration_s", meta.Duration},
			[]interface{}{"edit_policy", meta.EditPolicy},
			[]interface{}{},
		)
	}
	rows = append(rows, []interface{}{"body", "samples", "initial_total_j", "final_total_j", "final_theta_rad", "final_omega_rad_s"})

	order, groups := storage.ByBody(records)
	for _, body := range order {
		rs := groups[body]
		first, last := rs[0].Rounded(), rs[len(rs)-1].Rounded()
		rows = append(rows, []interface{}{body, len(rs), first.Total, last.Total, last.Theta, last.Omega})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeBodySheet(f *excelize.File, sheet string, records []storage.Record) error {
	header := make([]interface{}, len(storage.Header))
	for i, h := range storage.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, rec := range records {
		r := rec.Rounded()
		row := []interface{}{r.Time, r.Body, r.Theta, r.Omega, r.Speed, r.Kinetic, r.Potential, r.Total, r.Centripetal}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// SheetName maps a body name to a valid, unused worksheet name.
func SheetName(body string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, body)
	name = strings.Trim(name, "'")
	if name == "" {
		name = "body"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	base := name
	for i := 2; used[name]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	return name
}
