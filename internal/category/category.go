// Package category derives a reporting label for a store key from its prefix.
package category

import "strings"

// CredentialKey is the reserved key holding the API credential. It is
// infrastructure, never user data, and is excluded from every count.
const CredentialKey = "data_transfer_api_key"

// Category is a reporting label.
type Category string

const (
	VPNStats        Category = "vpnStats"
	IMSIData        Category = "imsiData"
	NetworkData     Category = "networkData"
	IoTDevices      Category = "iotDevices"
	SecurityEvents  Category = "securityEvents"
	UserPreferences Category = "userPreferences"
	SystemConfig    Category = "systemConfig"
	PaymentData     Category = "paymentData"
	Other           Category = "other"

	// Reserved marks the credential key. It never appears in counts.
	Reserved Category = "reserved"
)

// Rule maps a key prefix to a category.
type Rule struct {
	Prefix   string
	Category Category
}

// Rules are evaluated in order; the first matching prefix wins.
var Rules = []Rule{
	{"vpn_stats_", VPNStats},
	{"imsi_", IMSIData},
	{"network_", NetworkData},
	{"iot_device_", IoTDevices},
	{"security_event_", SecurityEvents},
	{"user_pref_", UserPreferences},
	{"system_config_", SystemConfig},
	{"payment_", PaymentData},
}

// Classify returns the category for key. Only an exact match on
// CredentialKey is Reserved; keys that merely start with it are Other.
func Classify(key string) Category {
	if key == CredentialKey {
		return Reserved
	}
	for _, r := range Rules {
		if strings.HasPrefix(key, r.Prefix) {
			return r.Category
		}
	}
	return Other
}

// Labels returns every reportable category in rule order, followed by Other.
func Labels() []Category {
	labels := make([]Category, 0, len(Rules)+1)
	for _, r := range Rules {
		labels = append(labels, r.Category)
	}
	return append(labels, Other)
}

// NewCounts returns a zeroed tally with one entry per reportable label.
func NewCounts() map[Category]int {
	counts := make(map[Category]int, len(Rules)+1)
	for _, c := range Labels() {
		counts[c] = 0
	}
	return counts
}

// Tally counts keys per category, skipping the reserved credential key.
// It returns the counts and the number of keys counted.
func Tally(keys []string) (map[Category]int, int) {
	counts := NewCounts()
	total := 0
	for _, k := range keys {
		c := Classify(k)
		if c == Reserved {
			continue
		}
		counts[c]++
		total++
	}
	return counts, total
}
