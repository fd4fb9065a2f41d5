package telemetry

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record is one steering telemetry line: error, derivative and the
// saturated correction.
type Record struct {
	Error      int
	Derivative int
	Output     int
}

func (r Record) String() string {
	return fmt.Sprintf("%d,%d,%d", r.Error, r.Derivative, r.Output)
}

// ParseLine parses "error,derivative,mv". Anything else, such as status
// lines, is rejected.
func ParseLine(line string) (Record, bool) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 3 {
		return Record{}, false
	}
	var vals [3]int
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return Record{}, false
		}
		vals[i] = v
	}
	return Record{Error: vals[0], Derivative: vals[1], Output: vals[2]}, true
}

// ParseLog reads a captured diagnostics stream and returns the telemetry
// records in order, skipping every other line.
func ParseLog(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if rec, ok := ParseLine(sc.Text()); ok {
			out = append(out, rec)
		}
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read telemetry log: %w", err)
	}
	return out, nil
}

// Columns splits records into float series for plotting.
func Columns(recs []Record) (errs, derivs, outs []float64) {
	errs = make([]float64, len(recs))
	derivs = make([]float64, len(recs))
	outs = make([]float64, len(recs))
	for i, r := range recs {
		errs[i] = float64(r.Error)
		derivs[i] = float64(r.Derivative)
		outs[i] = float64(r.Output)
	}
	return errs, derivs, outs
}
