package normalize

import (
	"fmt"

	"bitbank-mcp/internal/domain"
)

// Candles returns at most limit rows from the tail of the first candle
// group, oldest first as received. A limit <= 0 keeps every row. An empty
// result is not an error; callers report it as no data for the date.
func Candles(raw RawCandlestick, limit int, detail string) ([]domain.Candle, error) {
	if len(raw.Candlestick) == 0 {
		return []domain.Candle{}, nil
	}
	rows := raw.Candlestick[0].Ohlcv
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}

	out := make([]domain.Candle, 0, len(rows))
	fp := &fieldParser{resource: "candlestick", detail: detail}
	for i, row := range rows {
		if len(row) < 6 {
			return nil, &domain.UpstreamDataError{
				Resource: "candlestick",
				Detail:   detail,
				Reason:   fmt.Sprintf("row %d has %d fields, want 6", i, len(row)),
			}
		}
		c := domain.Candle{
			Open:   toFloat(fp.required("open", row[0])),
			High:   toFloat(fp.required("high", row[1])),
			Low:    toFloat(fp.required("low", row[2])),
			Close:  toFloat(fp.required("close", row[3])),
			Volume: toFloat(fp.required("volume", row[4])),
		}
		if fp.err != nil {
			return nil, fp.err
		}
		if !isAbsent(row[5]) {
			ts, iso := epoch(row[5])
			if ts == nil {
				return nil, &domain.UpstreamDataError{
					Resource: "candlestick",
					Detail:   detail,
					Reason:   fmt.Sprintf("malformed timestamp %s in row %d", truncate(row[5]), i),
				}
			}
			c.Timestamp = *ts
			c.IsoTime = iso
		}
		out = append(out, c)
	}
	return out, nil
}
