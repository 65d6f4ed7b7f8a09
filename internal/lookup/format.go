package lookup

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const notAvailable = "N/A"

// Field lists per kind: providers change shape without notice, so missing
// keys render as N/A instead of failing.
var kindFields = map[string][]fieldSpec{
	"bank_ifsc": {
		{"Bank", []string{"BANK", "bank"}},
		{"Branch", []string{"BRANCH", "branch"}},
		{"IFSC", []string{"IFSC", "ifsc"}},
		{"City", []string{"CITY", "city"}},
		{"State", []string{"STATE", "state"}},
		{"Address", []string{"ADDRESS", "address"}},
	},
	"ip": {
		{"IP", []string{"ip", "query"}},
		{"Country", []string{"country", "country_name"}},
		{"Region", []string{"region", "regionName"}},
		{"City", []string{"city"}},
		{"ISP", []string{"isp", "org"}},
		{"Timezone", []string{"timezone"}},
	},
	"upi": {
		{"Name", []string{"name", "account_holder"}},
		{"UPI ID", []string{"upi_id", "vpa"}},
		{"Bank", []string{"bank", "bank_name"}},
	},
	"pan": {
		{"Name", []string{"name", "full_name"}},
		{"PAN", []string{"pan", "pan_number"}},
		{"Type", []string{"type", "category"}},
	},
	"insta_profile": {
		{"Username", []string{"username"}},
		{"Full name", []string{"full_name", "name"}},
		{"Followers", []string{"followers", "follower_count"}},
		{"Following", []string{"following", "following_count"}},
		{"Posts", []string{"posts", "media_count"}},
		{"Bio", []string{"biography", "bio"}},
	},
}

type fieldSpec struct {
	Label string
	Keys  []string
}

// formatResult renders provider data as display text. Known kinds get a
// labelled field list; everything else falls back to a flat key dump.
func formatResult(kind, query string, data any) string {
	if text, ok := data.(string); ok {
		return text
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return renderJSON(data)
	}
	// Providers commonly nest the payload under data/result/info.
	for _, wrapper := range []string{"data", "result", "info"} {
		if inner, ok := obj[wrapper].(map[string]any); ok {
			obj = inner
			break
		}
	}

	specs, known := kindFields[kind]
	if !known {
		return renderFlat(obj)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Result for %s\n", query)
	for _, spec := range specs {
		fmt.Fprintf(&b, "• %s: %s\n", spec.Label, pick(obj, spec.Keys))
	}
	return strings.TrimRight(b.String(), "\n")
}

func pick(obj map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			s := fmt.Sprintf("%v", v)
			if s != "" {
				return s
			}
		}
	}
	return notAvailable
}

func renderFlat(obj map[string]any) string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := obj[k]
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		fmt.Fprintf(&b, "• %s: %v\n", k, v)
	}
	if b.Len() == 0 {
		return renderJSON(obj)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderJSON(data any) string {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return notAvailable
	}
	return string(out)
}
