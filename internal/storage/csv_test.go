package storage

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/san-kum/hoopsim/internal/physics"
)

func TestCSVRoundTrip(t *testing.T) {
	bead, err := physics.NewMotionState(0.1, 2.0, 9.8, 1.57079, 0)
	if err != nil {
		t.Fatal(err)
	}

	var records []Record
	for i := 1; i <= 500; i++ {
		if err := bead.Step(0.002); err != nil {
			t.Fatal(err)
		}
		records = append(records, NewRecord(float64(i)*0.002, "ball1", bead.Snapshot()))
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}

	within := func(field string, want, have float64, places int) {
		t.Helper()
		tol := 0.5*math.Pow(10, -float64(places)) + 1e-12
		if math.Abs(want-have) > tol {
			t.Errorf("%s: %v vs %v exceeds %d places", field, want, have, places)
		}
	}

	for i := range records {
		w, h := records[i], got[i]
		if h.Body != w.Body {
			t.Fatalf("record %d body %q, want %q", i, h.Body, w.Body)
		}
		within("time", w.Time, h.Time, TimePrecision)
		within("theta", w.Theta, h.Theta, AnglePrecision)
		within("omega", w.Omega, h.Omega, AngularVelPrecision)
		within("speed", w.Speed, h.Speed, SpeedPrecision)
		within("kinetic", w.Kinetic, h.Kinetic, EnergyPrecision)
		within("potential", w.Potential, h.Potential, EnergyPrecision)
		within("total", w.Total, h.Total, EnergyPrecision)
		within("centripetal", w.Centripetal, h.Centripetal, AccelerationPrecision)
	}
}

func TestCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	want := "time_s,body,theta_rad,omega_rad_s,speed_m_s,kinetic_j,potential_j,total_j,centripetal_m_s2\n"
	if buf.String() != want {
		t.Errorf("header = %q, want %q", buf.String(), want)
	}
}

func TestCSVFormatting(t *testing.T) {
	var buf bytes.Buffer
	rec := Record{Time: 1.23456, Body: "ball1", Theta: -0.123456, Omega: 2, Speed: 4, Kinetic: 0.8, Potential: 1.1234567, Total: 1.9234567, Centripetal: 8}
	if err := WriteCSV(&buf, []Record{rec}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := "1.235,ball1,-0.1235,2.0000,4.0000,0.800000,1.123457,1.923457,8.0000"
	if lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestCSVRoundsHalfAwayFromZero(t *testing.T) {
	rec := Record{Time: 1.0005, Body: "ball1", Theta: -2.00005}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []Record{rec}); err != nil {
		t.Fatal(err)
	}
	fields := strings.Split(strings.Split(strings.TrimSpace(buf.String()), "\n")[1], ",")
	if fields[0] != "1.001" {
		t.Errorf("time = %s, want 1.001", fields[0])
	}
	if fields[2] != "-2.0001" {
		t.Errorf("theta = %s, want -2.0001", fields[2])
	}

	// the CSV and the rounded record agree
	rounded := rec.Rounded()
	if got := strconv.FormatFloat(rounded.Time, 'f', TimePrecision, 64); got != fields[0] {
		t.Errorf("Rounded time %s differs from CSV %s", got, fields[0])
	}
}

func TestReadCSVMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong header", "t,body,a,b,c,d,e,f,g\n"},
		{"bad number", strings.Join(Header, ",") + "\nabc,ball1,0,0,0,0,0,0,0\n"},
		{"short row", strings.Join(Header, ",") + "\n0.1,ball1,0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}
}

func TestReadCSVEmpty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   float64
	}{
		{1.23456, 3, 1.235},
		{-1.23456, 3, -1.235},
		{2.5, 0, 3},
		{-2.5, 0, -3},
		{0.1234564, 6, 0.123456},
	}
	for _, tt := range tests {
		if got := Round(tt.v, tt.places); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.places, got, tt.want)
		}
	}
	if !math.IsNaN(Round(math.NaN(), 2)) {
		t.Error("expected NaN to pass through")
	}
}

func TestByBody(t *testing.T) {
	records := append(sampleRecords(), Record{Time: 0.004, Body: "ball1"})
	order, groups := ByBody(records)
	if len(order) != 2 || order[0] != "ball1" || order[1] != "ball2" {
		t.Errorf("unexpected order %v", order)
	}
	if len(groups["ball1"]) != 2 {
		t.Errorf("expected 2 ball1 records, got %d", len(groups["ball1"]))
	}
}
