package pagination

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Entry is a single marker in a pagination range: either a 1-based page number or Gap.
type Entry int

// Gap marks an elided run of two or more pages. It can never collide with a page number.
const Gap Entry = -1

// GapLabel is how a gap is rendered in text and JSON.
const GapLabel = "..."

// IsGap reports whether e stands for collapsed pages rather than a page number.
func (e Entry) IsGap() bool { return e == Gap }

// Page returns the page number and false for a gap.
func (e Entry) Page() (int, bool) {
	if e.IsGap() {
		return 0, false
	}
	return int(e), true
}

func (e Entry) String() string {
	if e.IsGap() {
		return GapLabel
	}
	return strconv.Itoa(int(e))
}

// MarshalJSON encodes pages as numbers and gaps as the "..." string so that clients can
// render the sequence without knowing the sentinel value.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.IsGap() {
		return json.Marshal(GapLabel)
	}
	return []byte(strconv.Itoa(int(e))), nil
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != GapLabel {
			return fmt.Errorf("pagination: unexpected range marker %q", s)
		}
		*e = Gap
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("pagination: invalid page number %s: %w", data, err)
	}
	if n < 1 {
		return fmt.Errorf("pagination: page number must be >= 1, got %d", n)
	}
	*e = Entry(n)
	return nil
}

// Pages drops gaps and returns the plain page numbers of a range.
func Pages(r []Entry) []int {
	out := make([]int, 0, len(r))
	for _, e := range r {
		if p, ok := e.Page(); ok {
			out = append(out, p)
		}
	}
	return out
}

// Format joins a range into a single line, e.g. "1 ... 4 5 6 ... 10".
func Format(r []Entry) string {
	var b bytes.Buffer
	for i, e := range r {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.String())
	}
	return b.String()
}
