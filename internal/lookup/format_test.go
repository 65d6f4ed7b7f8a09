package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatResultKnownKind(t *testing.T) {
	data := map[string]any{
		"BANK":   "State Bank of India",
		"BRANCH": "Connaught Place",
		"IFSC":   "SBIN0000691",
		"CITY":   "New Delhi",
	}

	out := formatResult("bank_ifsc", "SBIN0000691", data)
	assert.Contains(t, out, "Result for SBIN0000691")
	assert.Contains(t, out, "Bank: State Bank of India")
	assert.Contains(t, out, "State: N/A")
}

func TestFormatResultUnwrapsDataEnvelope(t *testing.T) {
	data := map[string]any{
		"status": "success",
		"data": map[string]any{
			"ip":      "8.8.8.8",
			"country": "United States",
			"isp":     "Google LLC",
		},
	}

	out := formatResult("ip", "8.8.8.8", data)
	assert.Contains(t, out, "Country: United States")
	assert.Contains(t, out, "ISP: Google LLC")
}

func TestFormatResultUnknownKindFlatDump(t *testing.T) {
	data := map[string]any{
		"plate": "MH12AB1234",
		"owner": "Someone",
		"nested": map[string]any{
			"skipped": true,
		},
	}

	out := formatResult("vehicle_rc", "MH12AB1234", data)
	assert.Contains(t, out, "plate: MH12AB1234")
	assert.Contains(t, out, "owner: Someone")
	assert.NotContains(t, out, "skipped")
}

func TestFormatResultPlainText(t *testing.T) {
	assert.Equal(t, "already formatted", formatResult("number", "q", "already formatted"))
}

func TestPrices(t *testing.T) {
	prices := Prices()
	assert.Equal(t, 5, prices["vehicle_rc"])
	_, ok := prices["number"]
	assert.False(t, ok, "free kinds carry no price entry")
}
