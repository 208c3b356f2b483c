package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/timeconv"

	"github.com/shopspring/decimal"
)

var nullLiteral = []byte("null")

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, nullLiteral) || bytes.Equal(trimmed, []byte(`""`))
}

// parseDecimal reads a decimal string or bare JSON number without going
// through float64. ok is false for an absent value.
func parseDecimal(raw json.RawMessage) (d decimal.Decimal, ok bool, err error) {
	if isAbsent(raw) {
		return decimal.Zero, false, nil
	}
	s := string(bytes.TrimSpace(raw))
	if s[0] == '"' {
		if s, err = strconv.Unquote(s); err != nil {
			return decimal.Zero, false, err
		}
	}
	d, err = decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

// fieldParser collects the first malformed field so callers can parse a
// whole record before checking for failure.
type fieldParser struct {
	resource string
	detail   string
	err      error
}

func (p *fieldParser) optional(name string, raw json.RawMessage) (decimal.Decimal, bool) {
	d, ok, err := parseDecimal(raw)
	if err != nil {
		p.fail(name, raw)
		return decimal.Zero, false
	}
	return d, ok
}

func (p *fieldParser) required(name string, raw json.RawMessage) decimal.Decimal {
	d, ok, err := parseDecimal(raw)
	if err != nil || !ok {
		p.fail(name, raw)
		return decimal.Zero
	}
	return d
}

func (p *fieldParser) fail(name string, raw json.RawMessage) {
	if p.err != nil {
		return
	}
	p.err = &domain.UpstreamDataError{
		Resource: p.resource,
		Detail:   p.detail,
		Reason:   fmt.Sprintf("malformed %s %s", name, truncate(raw)),
	}
}

func truncate(raw json.RawMessage) string {
	const max = 32
	s := string(bytes.TrimSpace(raw))
	if s == "" {
		return "(missing)"
	}
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func floatPtr(d decimal.Decimal, ok bool) *float64 {
	if !ok {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// epoch returns the millisecond timestamp and its ISO rendering, both nil
// when the value is not a usable time.
func epoch(raw json.RawMessage) (*int64, *string) {
	t, ok := timeconv.ToAbsoluteTime(raw)
	if !ok {
		return nil, nil
	}
	ms := t.UnixMilli()
	iso := timeconv.ISO(t)
	return &ms, &iso
}

func rawString(raw json.RawMessage) string {
	if isAbsent(raw) {
		return ""
	}
	s := string(bytes.TrimSpace(raw))
	if unq, err := strconv.Unquote(s); err == nil {
		return unq
	}
	return s
}
