package finviz

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/valuescout/internal/models"
)

func TestLookupCode(t *testing.T) {
	tests := []struct {
		name, label string
		wantName    string
		wantCode    string
	}{
		{"Market Cap.", "Small ($300mln to $2bln)", "Market Cap.", "cap_small"},
		{"Market Cap", "Small ($300mln to $2bln)", "Market Cap.", "cap_small"},
		{"market cap.", "small", "Market Cap.", "cap_small"},
		{"P/B", "Under 1", "P/B", "fa_pb_u1"},
		{"P/E", "Under 15", "P/E", "fa_pe_u15"},
		{"Debt/Equity", "Under 0.5", "Debt/Equity", "fa_debteq_u0.5"},
		{"Net Profit Margin", "Positive", "Net Profit Margin", "fa_netmargin_pos"},
		{"Net Profit Margin", "Positive (>0%)", "Net Profit Margin", "fa_netmargin_pos"},
		{"Price", "Under $5", "Price", "sh_price_u5"},
		{"Sector", "Technology", "Sector", "sec_technology"},
		{"Signal", "Top Gainers", "Signal", "ta_topgainers"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"="+tt.label, func(t *testing.T) {
			name, code, err := lookupCode(tt.name, tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestLookupCode_Unknown(t *testing.T) {
	_, _, err := lookupCode("Nope", "Under 1")
	assert.ErrorIs(t, err, ErrUnknownFilter)

	_, _, err = lookupCode("Sector", "Crypto")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestScreenURL(t *testing.T) {
	client := NewClient(WithBaseURL("https://example.test/"))

	raw, err := client.ScreenURL(models.FilterSet{
		"P/E":    "Under 15",
		"P/B":    "Under 1",
		"Signal": "New High",
	}, 41)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "example.test", u.Host)
	assert.Equal(t, "/screener.ashx", u.Path)

	q := u.Query()
	assert.Equal(t, "fa_pb_u1,fa_pe_u15", q.Get("f"))
	assert.Equal(t, "ta_newhigh", q.Get("s"))
	assert.Equal(t, "41", q.Get("r"))
	assert.Equal(t, customColumns, q.Get("c"))
}

func TestFilterNamesAndLabels(t *testing.T) {
	names := FilterNames()
	assert.Contains(t, names, "Market Cap.")
	assert.Contains(t, names, SignalKey)

	labels := FilterLabels("market cap")
	assert.Contains(t, labels, "Small ($300mln to $2bln)")
	assert.Nil(t, FilterLabels("unknown"))
}
