package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestYearlyCandleTypes(t *testing.T) {
	for _, ct := range []string{"4hour", "8hour", "12hour", "1day", "1week", "1month"} {
		if !IsYearlyCandleType(ct) {
			t.Errorf("expected %s to be yearly", ct)
		}
	}
	for _, ct := range []string{"1min", "5min", "15min", "30min", "1hour"} {
		if IsYearlyCandleType(ct) {
			t.Errorf("expected %s to be daily", ct)
		}
	}
}

func TestIsCandleType(t *testing.T) {
	if !IsCandleType("1hour") || IsCandleType("2hour") {
		t.Fatal("unexpected candle type membership")
	}
	if !IsCandleType(DefaultCandleType) {
		t.Fatal("default candle type must be supported")
	}
}

func TestUserErrorKinds(t *testing.T) {
	err := fmt.Errorf("ticker: %w", NewUserError(ErrUnsupportedPair, "unsupported pair: %s", "foo_bar"))
	if !IsUserError(err) {
		t.Fatal("expected user error")
	}
	if !errors.Is(err, ErrUnsupportedPair) || errors.Is(err, ErrInvalidPair) {
		t.Fatal("expected unsupported kind only")
	}
	if IsUpstreamDataError(err) {
		t.Fatal("user error must not look like upstream error")
	}
}

func TestUpstreamDataErrorMessage(t *testing.T) {
	err := &UpstreamDataError{Resource: "candlestick", Detail: "btc_jpy/1day/2024", Reason: "success=0"}
	want := "no candlestick data available (btc_jpy/1day/2024): success=0"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if !IsUpstreamDataError(err) {
		t.Fatal("expected upstream data error")
	}
}

func TestTickerSpread(t *testing.T) {
	buy, sell := 100.0, 101.5
	tk := Ticker{Buy: &buy, Sell: &sell}
	if s := tk.Spread(); s == nil || *s != 1.5 {
		t.Fatalf("unexpected spread: %v", s)
	}
	if (Ticker{Buy: &buy}).Spread() != nil {
		t.Fatal("expected nil spread with one side missing")
	}
}
