package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrMalformedRecord = errors.New("storage: malformed record")

// WriteCSV writes the header and one row per record, each field rounded to
// its documented precision half away from zero, same as Record.Rounded.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, rec := range records {
		r := rec.Rounded()
		row := []string{
			strconv.FormatFloat(r.Time, 'f', TimePrecision, 64),
			r.Body,
			strconv.FormatFloat(r.Theta, 'f', AnglePrecision, 64),
			strconv.FormatFloat(r.Omega, 'f', AngularVelPrecision, 64),
			strconv.FormatFloat(r.Speed, 'f', SpeedPrecision, 64),
			strconv.FormatFloat(r.Kinetic, 'f', EnergyPrecision, 64),
			strconv.FormatFloat(r.Potential, 'f', EnergyPrecision, 64),
			strconv.FormatFloat(r.Total, 'f', EnergyPrecision, 64),
			strconv.FormatFloat(r.Centripetal, 'f', AccelerationPrecision, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file produced by WriteCSV.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if err == io.EOF {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedRecord, err)
	}
	for i, h := range Header {
		if head[i] != h {
			return nil, fmt.Errorf("%w: header column %d is %q, want %q", ErrMalformedRecord, i, head[i], h)
		}
	}

	records := make([]Record, 0)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, line, err)
		}

		var vals [8]float64
		for i, idx := range []int{0, 2, 3, 4, 5, 6, 7, 8} {
			v, err := strconv.ParseFloat(row[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrMalformedRecord, line, Header[idx], err)
			}
			vals[i] = v
		}

		records = append(records, Record{
			Time:        vals[0],
			Body:        row[1],
			Theta:       vals[1],
			Omega:       vals[2],
			Speed:       vals[3],
			Kinetic:     vals[4],
			Potential:   vals[5],
			Total:       vals[6],
			Centripetal: vals[7],
		})
	}

	return records, nil
}
