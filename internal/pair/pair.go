// Package pair normalizes and validates trading-pair identifiers.
package pair

import (
	"regexp"
	"sort"
	"strings"

	"bitbank-mcp/internal/domain"
)

// Pattern is the accepted shape of a normalized pair, e.g. btc_jpy.
var Pattern = regexp.MustCompile(`^[a-z]{3,6}_[a-z]{3,6}$`)

// allowed is the hand-maintained list of active bitbank pairs. New listings
// are not discovered at runtime; add them here.
// Source: https://github.com/bitbankinc/bitbank-api-docs/blob/master/pairs.md
var allowed = map[string]struct{}{
	"btc_jpy":    {},
	"eth_jpy":    {},
	"xrp_jpy":    {},
	"ltc_jpy":    {},
	"bcc_jpy":    {},
	"mona_jpy":   {},
	"xlm_jpy":    {},
	"qtum_jpy":   {},
	"bat_jpy":    {},
	"omg_jpy":    {},
	"xym_jpy":    {},
	"link_jpy":   {},
	"boba_jpy":   {},
	"enj_jpy":    {},
	"dot_jpy":    {},
	"doge_jpy":   {},
	"astr_jpy":   {},
	"ada_jpy":    {},
	"avax_jpy":   {},
	"axs_jpy":    {},
	"flr_jpy":    {},
	"sand_jpy":   {},
	"gala_jpy":   {},
	"ape_jpy":    {},
	"chz_jpy":    {},
	"oas_jpy":    {},
	"mana_jpy":   {},
	"grt_jpy":    {},
	"bnb_jpy":    {},
	"dai_jpy":    {},
	"op_jpy":     {},
	"arb_jpy":    {},
	"klay_jpy":   {},
	"imx_jpy":    {},
	"mask_jpy":   {},
	"pol_jpy":    {}, // formerly matic_jpy
	"sol_jpy":    {},
	"cyber_jpy":  {},
	"render_jpy": {}, // formerly rndr_jpy
	"trx_jpy":    {},
	"lpt_jpy":    {},
	"atom_jpy":   {},
	"sui_jpy":    {},
	"sky_jpy":    {}, // formerly mkr_jpy
}

var separators = strings.NewReplacer("/", "_", "-", "_")

// Normalize trims, lowercases and rewrites "/" or "-" separators to "_".
func Normalize(raw string) string {
	return separators.Replace(strings.ToLower(strings.TrimSpace(raw)))
}

// Validate returns the normalized pair, or a UserError whose kind is
// domain.ErrInvalidPair for shape failures and domain.ErrUnsupportedPair for
// well-formed pairs missing from the allow-list.
func Validate(raw string) (string, error) {
	norm := Normalize(raw)
	if norm == "" || !Pattern.MatchString(norm) {
		return "", domain.NewUserError(domain.ErrInvalidPair, "invalid pair '%s' (example: btc_jpy)", raw)
	}
	if !IsAllowed(norm) {
		return "", domain.NewUserError(domain.ErrUnsupportedPair,
			"unsupported pair: '%s' (supported examples: btc_jpy, eth_jpy, xrp_jpy)", norm)
	}
	return norm, nil
}

func IsAllowed(p string) bool {
	_, ok := allowed[p]
	return ok
}

// Supported returns the allow-list sorted alphabetically.
func Supported() []string {
	out := make([]string, 0, len(allowed))
	for p := range allowed {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// IsJPY reports whether the quote currency is JPY, judged by suffix.
func IsJPY(p string) bool {
	return strings.HasSuffix(p, "_jpy")
}

// Base returns the upper-cased base currency, e.g. BTC for btc_jpy.
func Base(p string) string {
	base, _, _ := strings.Cut(p, "_")
	return strings.ToUpper(base)
}

// Display renders btc_jpy as BTC/JPY.
func Display(p string) string {
	return strings.Replace(strings.ToUpper(p), "_", "/", 1)
}
