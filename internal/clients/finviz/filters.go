package finviz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/valuescout/internal/models"
)

// SignalKey is the filter name carrying the screener's technical signal.
// It is sent as its own query parameter rather than in the filter list.
const SignalKey = "Signal"

// ErrUnknownFilter is returned when a filter name or option label is not in
// the screener's option tables.
var ErrUnknownFilter = errors.New("unknown screener filter")

// filterOptions maps filter name -> option label -> screener code.
var filterOptions = map[string]map[string]string{
	"Exchange": {
		"AMEX":   "exch_amex",
		"NASDAQ": "exch_nasd",
		"NYSE":   "exch_nyse",
	},
	"Index": {
		"S&P 500":      "idx_sp500",
		"NASDAQ 100":   "idx_ndx",
		"DJIA":         "idx_dji",
		"RUSSELL 2000": "idx_rut",
	},
	"Sector": {
		"Basic Materials":        "sec_basicmaterials",
		"Communication Services": "sec_communicationservices",
		"Consumer Cyclical":      "sec_consumercyclical",
		"Consumer Defensive":     "sec_consumerdefensive",
		"Energy":                 "sec_energy",
		"Financial":              "sec_financial",
		"Healthcare":             "sec_healthcare",
		"Industrials":            "sec_industrials",
		"Real Estate":            "sec_realestate",
		"Technology":             "sec_technology",
		"Utilities":              "sec_utilities",
	},
	"Country": {
		"USA":              "geo_usa",
		"Foreign (ex-USA)": "geo_notusa",
		"Canada":           "geo_canada",
		"United Kingdom":   "geo_unitedkingdom",
	},
	"Market Cap.": {
		"Mega ($200bln and more)":   "cap_mega",
		"Large ($10bln to $200bln)": "cap_large",
		"Mid ($2bln to $10bln)":     "cap_mid",
		"Small ($300mln to $2bln)":  "cap_small",
		"Micro ($50mln to $300mln)": "cap_micro",
		"Nano (under $50mln)":       "cap_nano",
		"+Large (over $10bln)":      "cap_largeover",
		"+Mid (over $2bln)":         "cap_midover",
		"+Small (over $300mln)":     "cap_smallover",
		"+Micro (over $50mln)":      "cap_microover",
		"-Large (under $200bln)":    "cap_largeunder",
		"-Mid (under $10bln)":       "cap_midunder",
		"-Small (under $2bln)":      "cap_smallunder",
		"-Micro (under $300mln)":    "cap_microunder",
	},
	"P/E": thresholdOptions("fa_pe", map[string]string{
		"Low (<15)":       "low",
		"Profitable (>0)": "profitable",
		"High (>50)":      "high",
	}, []string{"5", "10", "15", "20", "25", "30", "35", "40", "45", "50"}, ""),
	"Forward P/E": thresholdOptions("fa_fpe", map[string]string{
		"Low (<15)":       "low",
		"Profitable (>0)": "profitable",
		"High (>50)":      "high",
	}, []string{"5", "10", "15", "20", "25", "30", "35", "40", "45", "50"}, ""),
	"PEG": thresholdOptions("fa_peg", map[string]string{
		"Low (<1)":  "low",
		"High (>2)": "high",
	}, []string{"1", "2", "3"}, ""),
	"P/S": thresholdOptions("fa_ps", map[string]string{
		"Low (<1)":   "low",
		"High (>10)": "high",
	}, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}, ""),
	"P/B": thresholdOptions("fa_pb", map[string]string{
		"Low (<1)":  "low",
		"High (>5)": "high",
	}, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}, ""),
	"Debt/Equity": thresholdOptions("fa_debteq", map[string]string{
		"High (>0.5)": "high",
		"Low (<0.1)":  "low",
	}, []string{"0.1", "0.2", "0.3", "0.4", "0.5", "0.6", "0.7", "0.8", "0.9", "1"}, ""),
	"Current Ratio": thresholdOptions("fa_curratio", map[string]string{
		"High (>3)": "high",
		"Low (<1)":  "low",
	}, []string{"0.5", "1", "1.5", "2", "3", "4", "5", "10"}, ""),
	"Net Profit Margin": thresholdOptions("fa_netmargin", map[string]string{
		"Positive (>0%)":        "pos",
		"Negative (<0%)":        "neg",
		"Very Negative (<-20%)": "veryneg",
		"High (>20%)":           "high",
	}, []string{"0", "5", "10", "15", "20", "25", "30"}, "%"),
	"Return on Equity": thresholdOptions("fa_roe", map[string]string{
		"Positive (>0%)":        "pos",
		"Negative (<0%)":        "neg",
		"Very Positive (>30%)":  "verypos",
		"Very Negative (<-15%)": "veryneg",
	}, []string{"5", "10", "15", "20", "25", "30"}, "%"),
	"Dividend Yield": thresholdOptions("fa_div", map[string]string{
		"None (0%)":        "none",
		"Positive (>0%)":   "pos",
		"High (>5%)":       "high",
		"Very High (>10%)": "veryhigh",
	}, nil, ""),
	"EPS growth next year": thresholdOptions("fa_epsyoy1", map[string]string{
		"Negative (<0%)":       "neg",
		"Positive (>0%)":       "pos",
		"Positive Low (0-10%)": "poslow",
		"High (>25%)":          "high",
	}, []string{"5", "10", "15", "20", "25", "30"}, "%"),
	"Average Volume": {
		"Under 50K":  "sh_avgvol_u50",
		"Under 100K": "sh_avgvol_u100",
		"Under 500K": "sh_avgvol_u500",
		"Over 50K":   "sh_avgvol_o50",
		"Over 100K":  "sh_avgvol_o100",
		"Over 200K":  "sh_avgvol_o200",
		"Over 500K":  "sh_avgvol_o500",
		"Over 1M":    "sh_avgvol_o1000",
	},
	"Price": thresholdOptions("sh_price", nil, []string{"1", "2", "3", "4", "5", "10", "15", "20", "30", "40", "50"}, "$"),
	"RSI (14)": {
		"Overbought (80)":      "ta_rsi_ob80",
		"Overbought (70)":      "ta_rsi_ob70",
		"Overbought (60)":      "ta_rsi_ob60",
		"Oversold (40)":        "ta_rsi_os40",
		"Oversold (30)":        "ta_rsi_os30",
		"Oversold (20)":        "ta_rsi_os20",
		"Not Overbought (<60)": "ta_rsi_nob60",
		"Not Overbought (<50)": "ta_rsi_nob50",
		"Not Oversold (>50)":   "ta_rsi_nos50",
		"Not Oversold (>40)":   "ta_rsi_nos40",
	},
	"52-Week High/Low": {
		"New High":               "ta_highlow52w_nh",
		"New Low":                "ta_highlow52w_nl",
		"0-10% below High":       "ta_highlow52w_b0to10h",
		"10% or more below High": "ta_highlow52w_b10h",
		"20% or more below High": "ta_highlow52w_b20h",
		"30% or more below High": "ta_highlow52w_b30h",
		"50% or more below High": "ta_highlow52w_b50h",
		"0-10% above Low":        "ta_highlow52w_a0to10h",
	},
	"Analyst Recom.": {
		"Strong Buy (1)": "an_recom_strongbuy",
		"Buy or better":  "an_recom_buybetter",
		"Buy":            "an_recom_buy",
		"Hold or better": "an_recom_holdbetter",
		"Hold":           "an_recom_hold",
		"Hold or worse":  "an_recom_holdworse",
		"Sell":           "an_recom_sell",
	},
	SignalKey: {
		"Top Gainers":            "ta_topgainers",
		"Top Losers":             "ta_toplosers",
		"New High":               "ta_newhigh",
		"New Low":                "ta_newlow",
		"Most Volatile":          "ta_mostvolatile",
		"Most Active":            "ta_mostactive",
		"Unusual Volume":         "ta_unusualvolume",
		"Overbought":             "ta_overbought",
		"Oversold":               "ta_oversold",
		"Downgrades":             "n_downgrades",
		"Upgrades":               "n_upgrades",
		"Major News":             "n_majornews",
		"Recent Insider Buying":  "it_latestbuys",
		"Recent Insider Selling": "it_latestsales",
		"Double Bottom":          "ta_p_doublebottom",
	},
}

// thresholdOptions builds the "Under N" / "Over N" option family shared by
// most numeric filters, plus any named options.
func thresholdOptions(prefix string, named map[string]string, steps []string, unit string) map[string]string {
	out := make(map[string]string, len(named)+2*len(steps))
	for label, code := range named {
		out[label] = prefix + "_" + code
	}
	for _, s := range steps {
		label := s + unit
		if unit == "$" {
			label = unit + s
		}
		out["Under "+label] = prefix + "_u" + s
		out["Over "+label] = prefix + "_o" + s
	}
	return out
}

// canonicalName accepts filter names with or without a trailing period and
// in any case ("Market Cap", "market cap.").
func canonicalName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if _, ok := filterOptions[name]; ok {
		return name, true
	}
	trimmed := strings.TrimSuffix(name, ".")
	for known := range filterOptions {
		if strings.EqualFold(strings.TrimSuffix(known, "."), trimmed) {
			return known, true
		}
	}
	return "", false
}

// lookupCode resolves one name/label pair. A label also matches on its text
// before the parenthesised range, so "Positive" selects "Positive (>0%)" and
// "Small" selects "Small ($300mln to $2bln)".
func lookupCode(name, label string) (string, string, error) {
	canon, ok := canonicalName(name)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	options := filterOptions[canon]
	label = strings.TrimSpace(label)
	if code, ok := options[label]; ok {
		return canon, code, nil
	}
	for known, code := range options {
		if strings.EqualFold(known, label) {
			return canon, code, nil
		}
	}
	var matches []string
	for known := range options {
		short := known
		if i := strings.Index(known, " ("); i > 0 {
			short = known[:i]
		}
		if strings.EqualFold(short, label) {
			matches = append(matches, known)
		}
	}
	if len(matches) == 1 {
		return canon, options[matches[0]], nil
	}
	return "", "", fmt.Errorf("%w: %s=%q", ErrUnknownFilter, canon, label)
}

// encodeFilters converts named filters into the screener's filter list and
// signal code. Filter codes are emitted in name order so equal filter sets
// always produce the same URL.
func encodeFilters(filters models.FilterSet) ([]string, string, error) {
	codes := make([]string, 0, len(filters))
	signal := ""
	for _, name := range filters.Keys() {
		canon, code, err := lookupCode(name, filters[name])
		if err != nil {
			return nil, "", err
		}
		if canon == SignalKey {
			signal = code
			continue
		}
		codes = append(codes, code)
	}
	return codes, signal, nil
}

// FilterNames lists every supported filter name, sorted.
func FilterNames() []string {
	names := make([]string, 0, len(filterOptions))
	for name := range filterOptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilterLabels lists the option labels of one filter, sorted.
func FilterLabels(name string) []string {
	canon, ok := canonicalName(name)
	if !ok {
		return nil
	}
	labels := make([]string, 0, len(filterOptions[canon]))
	for label := range filterOptions[canon] {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// ValidateFilters reports the first filter that cannot be encoded.
func ValidateFilters(filters models.FilterSet) error {
	_, _, err := encodeFilters(filters)
	return err
}
