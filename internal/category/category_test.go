package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		key  string
		want Category
	}{
		{"vpn_stats_2026_10_19", VPNStats},
		{"imsi_pool_primary", IMSIData},
		{"network_optimization_eu", NetworkData},
		{"iot_device_thermostat", IoTDevices},
		{"security_event_001", SecurityEvents},
		{"user_pref_theme", UserPreferences},
		{"system_config_version", SystemConfig},
		{"payment_subscription", PaymentData},
		{"random_key", Other},
		{"", Other},
		{"vpn_stats", Other},
		{"IMSI_upper", Other},
		{CredentialKey, Reserved},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.key))
		})
	}
}

// Only the exact credential key is reserved. A lookalike key is ordinary data.
func TestClassify_CredentialLookalikeIsOther(t *testing.T) {
	assert.Equal(t, Other, Classify(CredentialKey+"_backup"))
	assert.Equal(t, Other, Classify("x"+CredentialKey))
}

func TestLabels_OrderAndCompleteness(t *testing.T) {
	assert.Equal(t, []Category{
		VPNStats, IMSIData, NetworkData, IoTDevices,
		SecurityEvents, UserPreferences, SystemConfig, PaymentData, Other,
	}, Labels())
}

func TestTally_Partition(t *testing.T) {
	keys := []string{
		"vpn_stats_a", "vpn_stats_b", "imsi_1", "payment_x",
		"whatever", CredentialKey, CredentialKey + "_backup",
	}
	counts, total := Tally(keys)

	assert.Equal(t, 6, total)
	assert.Equal(t, 2, counts[VPNStats])
	assert.Equal(t, 1, counts[IMSIData])
	assert.Equal(t, 1, counts[PaymentData])
	assert.Equal(t, 2, counts[Other])
	assert.Zero(t, counts[IoTDevices])
	assert.NotContains(t, counts, Reserved)

	sum := 0
	for _, n := range counts {
		sum += n
	}
	assert.Equal(t, total, sum)
}

func TestNewCounts_HasEveryLabel(t *testing.T) {
	counts := NewCounts()
	assert.Len(t, counts, len(Rules)+1)
	for _, c := range Labels() {
		assert.Contains(t, counts, c)
	}
}
