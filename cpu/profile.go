package cpu

import (
	"fmt"
	"io"
)

// ProfileEntry is the accounting of a single opcode.
type ProfileEntry struct {
	Count float64 // Instructions executed.
	Time  float64 // Accumulated delay, in microseconds.
}

// Profile is the per-opcode instruction time accounting.
type Profile [OPCODE_COUNT]ProfileEntry

// Account adds one instruction. Instructions without delay are not
// accounted.
func (prof *Profile) Account(op Opcode, delay float64) {
	if delay <= 0 || op < 0 || op >= OPCODE_COUNT {
		return
	}

	prof[op].Count++
	prof[op].Time += delay
}

// Reset clears all accounting.
func (prof *Profile) Reset() {
	clear(prof[:])
}

// Total returns the accumulated count and time over all opcodes.
func (prof *Profile) Total() (total ProfileEntry) {
	for _, entry := range prof {
		total.Count += entry.Count
		total.Time += entry.Time
	}
	return
}

// Report writes the profile table and summary.
func (prof *Profile) Report(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w, "\n*** Command time profile stat ***\n")
	if err != nil {
		return
	}

	for n, entry := range prof {
		if entry.Count == 0 {
			continue
		}
		_, err = fmt.Fprintf(w, "opcode=%02o   count=%-9.0f  times=%-15.2f  avg_time=%-15.2f   (%s)\n",
			n, entry.Count, entry.Time, entry.Time/entry.Count, Opcode(n).String())
		if err != nil {
			return
		}
	}

	total := prof.Total()
	var avg float64
	if total.Count > 0 {
		avg = total.Time / total.Count
	}
	_, err = fmt.Fprintf(w, "Summary:  times=%.2f  count=%.0f  avg_time=%.2f\n**********\n\n", total.Time, total.Count, avg)

	return
}
