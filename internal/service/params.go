package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"bitbank-mcp/internal/domain"
)

const (
	defaultCandleLimit = 200
	maxCandleLimit     = 1000
	defaultTopN        = 20
	maxTopN            = 200
	defaultMaxLevels   = 200
	maxMaxLevels       = 500
	defaultTxLimit     = 100
	maxTxLimit         = 1000
)

var (
	yearPattern = regexp.MustCompile(`^\d{4}`)
	dayPattern  = regexp.MustCompile(`^\d{8}$`)
)

// resolveLimit maps zero to def and rejects anything outside [1, max].
func resolveLimit(name string, v, def, max int) (int, error) {
	if v == 0 {
		return def, nil
	}
	if v < 1 || v > max {
		return 0, domain.NewUserError(domain.ErrInvalidParam, "%s must be between 1 and %d (got %d)", name, max, v)
	}
	return v, nil
}

func resolveMarket(market string) (string, error) {
	market = strings.ToLower(strings.TrimSpace(market))
	switch market {
	case "", domain.MarketAll:
		return domain.MarketAll, nil
	case domain.MarketJPY:
		return domain.MarketJPY, nil
	default:
		return "", domain.NewUserError(domain.ErrInvalidParam, "market must be 'all' or 'jpy' (got '%s')", market)
	}
}

func resolveCandleType(candleType string) (string, error) {
	candleType = strings.ToLower(strings.TrimSpace(candleType))
	if candleType == "" {
		return domain.DefaultCandleType, nil
	}
	if !domain.IsCandleType(candleType) {
		return "", domain.NewUserError(domain.ErrInvalidParam,
			"unsupported candle type '%s' (use one of: %s)", candleType, strings.Join(domain.CandleTypes, ", "))
	}
	return candleType, nil
}

// resolveCandleDate returns YYYY for yearly types and YYYYMMDD otherwise,
// defaulting to the current year or day on the local clock.
func resolveCandleDate(candleType, date string, now time.Time) (string, error) {
	date = strings.TrimSpace(date)
	if domain.IsYearlyCandleType(candleType) {
		if date == "" {
			return strconv.Itoa(now.Year()), nil
		}
		if !yearPattern.MatchString(date) {
			return "", domain.NewUserError(domain.ErrInvalidParam,
				"date for %s candles must start with a 4-digit year, e.g. %d (got '%s')", candleType, now.Year(), date)
		}
		return date[:4], nil
	}
	if date == "" {
		return now.Format("20060102"), nil
	}
	if err := checkDay(date); err != nil {
		return "", domain.NewUserError(domain.ErrInvalidParam,
			"date for %s candles must be YYYYMMDD, e.g. %s (got '%s')", candleType, now.Format("20060102"), date)
	}
	return date, nil
}

func resolveTransactionsDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", nil
	}
	if err := checkDay(date); err != nil {
		return "", domain.NewUserError(domain.ErrInvalidParam, "date must be YYYYMMDD, e.g. 20250115 (got '%s')", date)
	}
	return date, nil
}

func checkDay(date string) error {
	if !dayPattern.MatchString(date) {
		return domain.ErrInvalidParam
	}
	_, err := time.Parse("20060102", date)
	return err
}
