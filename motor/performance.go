package motor

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// Record is one row of the motor performance table: a single PWM setting's
// measured characteristics (spec.md §4.5). Columns follow the original
// CSV layout in order.
type Record struct {
	Pwm        float64
	Rpm        float64
	Current    float64
	Voltage    float64
	Power      float64
	Force      float64
	Efficiency float64
}

// Performance is a CW-wired motor's force-to-command lookup table, sorted
// by Force ascending (NaN sorts last, spec.md §4.5: "total ordering
// including NaN = last").
type Performance struct {
	records []Record
}

// LoadPerformanceCSV parses a seven-column CSV (pwm,rpm,current,voltage,
// power,force,efficiency) into a Performance table. No CSV library exists
// in the retrieval pack (SPEC_FULL.md F.2); encoding/csv is the idiomatic
// standard-library choice for a small fixed-width numeric table.
func LoadPerformanceCSV(r io.Reader) (*Performance, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 7

	// Skip an optional header row.
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("motor: read performance csv: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		vals := make([]float64, 7)
		ok := true
		for i, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue // header row or malformed line
		}
		records = append(records, Record{
			Pwm: vals[0], Rpm: vals[1], Current: vals[2], Voltage: vals[3],
			Power: vals[4], Force: vals[5], Efficiency: vals[6],
		})
	}

	sort.Slice(records, func(i, j int) bool { return lessForce(records[i].Force, records[j].Force) })
	return &Performance{records: records}, nil
}

func lessForce(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}

// Lookup interpolates the table at the given signed force and returns the
// effective PWM command, mirroring CCW-wired motors per spec.md §4.5: "For
// motors wired CCW, the effective pwm is 3000 − pwm (the table is stored
// for CW)."
func (p *Performance) Lookup(force float64, dir Direction) (Record, bool) {
	rec, ok := p.interpolate(force)
	if !ok {
		return Record{}, false
	}
	if dir == CCW {
		rec.Pwm = 3000 - rec.Pwm
	}
	return rec, true
}

func (p *Performance) interpolate(force float64) (Record, bool) {
	n := len(p.records)
	if n == 0 {
		return Record{}, false
	}

	idx := sort.Search(n, func(i int) bool { return p.records[i].Force >= force })

	if idx == 0 {
		return p.records[0], true
	}
	if idx >= n {
		return p.records[n-1], true
	}

	lo, hi := p.records[idx-1], p.records[idx]
	if hi.Force == lo.Force {
		return lo, true
	}
	t := (force - lo.Force) / (hi.Force - lo.Force)
	return Record{
		Pwm:        lerp(lo.Pwm, hi.Pwm, t),
		Rpm:        lerp(lo.Rpm, hi.Rpm, t),
		Current:    lerp(lo.Current, hi.Current, t),
		Voltage:    lerp(lo.Voltage, hi.Voltage, t),
		Power:      lerp(lo.Power, hi.Power, t),
		Force:      force,
		Efficiency: lerp(lo.Efficiency, hi.Efficiency, t),
	}, true
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
