// Package normalize converts raw bitbank payloads into typed domain records.
// Every function here is pure.
package normalize

import "encoding/json"

// Numeric fields stay as raw JSON until parsed: upstream sends decimal
// strings, but a bare number or null must not break decoding.

type RawTicker struct {
	Pair      string          `json:"pair,omitempty"`
	Sell      json.RawMessage `json:"sell"`
	Buy       json.RawMessage `json:"buy"`
	High      json.RawMessage `json:"high"`
	Low       json.RawMessage `json:"low"`
	Open      json.RawMessage `json:"open"`
	Last      json.RawMessage `json:"last"`
	Vol       json.RawMessage `json:"vol"`
	Timestamp json.RawMessage `json:"timestamp"`
}

type RawCandlestick struct {
	Candlestick []RawCandleGroup `json:"candlestick"`
}

// RawCandleGroup holds rows of [open, high, low, close, volume, timestampMs].
type RawCandleGroup struct {
	Type  string              `json:"type"`
	Ohlcv [][]json.RawMessage `json:"ohlcv"`
}

// RawDepth levels are [price, amount].
type RawDepth struct {
	Asks       [][]json.RawMessage `json:"asks"`
	Bids       [][]json.RawMessage `json:"bids"`
	Timestamp  json.RawMessage     `json:"timestamp"`
	SequenceID json.RawMessage     `json:"sequenceId"`
}

type RawTransactions struct {
	Transactions []RawTransaction `json:"transactions"`
}

type RawTransaction struct {
	TransactionID json.RawMessage `json:"transaction_id"`
	Side          string          `json:"side"`
	Price         json.RawMessage `json:"price"`
	Amount        json.RawMessage `json:"amount"`
	ExecutedAt    json.RawMessage `json:"executed_at"`
}
