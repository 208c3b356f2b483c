package mcp

type tickerInput struct {
	Pair string `json:"pair" jsonschema:"trading pair (e.g. btc_jpy, eth_jpy)"`
}

type tickersInput struct {
	Market string `json:"market,omitempty" jsonschema:"market filter: all or jpy (default all)"`
}

type tickersJPYInput struct{}

type candlesInput struct {
	Pair  string `json:"pair" jsonschema:"trading pair (e.g. btc_jpy)"`
	Type  string `json:"type,omitempty" jsonschema:"candle type: 1min, 5min, 15min, 30min, 1hour, 4hour, 8hour, 12hour, 1day, 1week, 1month (default 1day)"`
	Date  string `json:"date,omitempty" jsonschema:"YYYYMMDD for 1min..1hour, YYYY for 4hour..1month; defaults to today or this year"`
	Limit int    `json:"limit,omitempty" jsonschema:"number of most recent candles to return, 1-1000 (default 200)"`
}

type orderbookInput struct {
	Pair string `json:"pair" jsonschema:"trading pair (e.g. btc_jpy)"`
	TopN int    `json:"topN,omitempty" jsonschema:"price levels per side, 1-200 (default 20)"`
}

type depthInput struct {
	Pair      string `json:"pair" jsonschema:"trading pair (e.g. btc_jpy)"`
	MaxLevels int    `json:"maxLevels,omitempty" jsonschema:"maximum price levels per side, 1-500 (default 200)"`
}

type transactionsInput struct {
	Pair  string `json:"pair" jsonschema:"trading pair (e.g. btc_jpy)"`
	Limit int    `json:"limit,omitempty" jsonschema:"number of most recent trades to return, 1-1000 (default 100)"`
	Date  string `json:"date,omitempty" jsonschema:"optional day in YYYYMMDD; omit for the latest trades"`
}
