package transfer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ijaxt/datavault/internal/store"
)

// demoRecords covers every category with fixed keys and values, so
// reseeding rewrites the same data.
var demoRecords = []store.Record{
	{Key: "vpn_stats_daily", Value: json.RawMessage(`{"date":"2026-10-19","bytesUp":734003200,"bytesDown":2147483648,"sessions":42,"avgLatencyMs":38}`)},
	{Key: "vpn_stats_weekly", Value: json.RawMessage(`{"week":"2026-W42","bytesUp":5138022400,"bytesDown":15032385536,"sessions":301,"uptimePct":99.97}`)},
	{Key: "vpn_stats_servers", Value: json.RawMessage(`[{"id":"fra-01","load":0.42,"region":"eu-central"},{"id":"nyc-02","load":0.67,"region":"us-east"},{"id":"sgp-01","load":0.21,"region":"ap-southeast"}]`)},

	{Key: "imsi_pool_primary", Value: json.RawMessage(`{"carrier":"Carrier A","mcc":"310","mnc":"260","available":128,"assigned":72}`)},
	{Key: "imsi_pool_backup", Value: json.RawMessage(`{"carrier":"Carrier B","mcc":"234","mnc":"15","available":64,"assigned":8}`)},
	{Key: "imsi_rotation_schedule", Value: json.RawMessage(`{"intervalMinutes":30,"strategy":"round-robin","enabled":true}`)},

	{Key: "network_optimization_eu", Value: json.RawMessage(`{"region":"eu","protocol":"wireguard","mtu":1420,"congestionControl":"bbr"}`)},
	{Key: "network_optimization_us", Value: json.RawMessage(`{"region":"us","protocol":"wireguard","mtu":1380,"congestionControl":"cubic"}`)},
	{Key: "network_latency_map", Value: json.RawMessage(`{"fra-01":18,"nyc-02":74,"sgp-01":162}`)},

	{Key: "iot_device_thermostat_01", Value: json.RawMessage(`{"name":"Living room thermostat","type":"thermostat","status":"online","protected":true}`)},
	{Key: "iot_device_camera_02", Value: json.RawMessage(`{"name":"Front door camera","type":"camera","status":"online","protected":true}`)},
	{Key: "iot_device_gateway_03", Value: json.RawMessage(`{"name":"Home gateway","type":"router","status":"offline","protected":false}`)},

	{Key: "security_event_0001", Value: json.RawMessage(`{"type":"blocked_connection","severity":"medium","source":"203.0.113.7","at":"2026-10-18T22:14:05Z"}`)},
	{Key: "security_event_0002", Value: json.RawMessage(`{"type":"dns_leak_prevented","severity":"low","source":"198.51.100.23","at":"2026-10-19T06:41:12Z"}`)},

	{Key: "user_pref_theme", Value: json.RawMessage(`"dark"`)},
	{Key: "user_pref_language", Value: json.RawMessage(`"en"`)},
	{Key: "user_pref_notifications", Value: json.RawMessage(`{"email":true,"push":false,"securityAlerts":true}`)},

	{Key: "system_config_version", Value: json.RawMessage(`{"app":"2.4.1","schema":3}`)},
	{Key: "system_config_features", Value: json.RawMessage(`{"killSwitch":true,"splitTunneling":true,"imsiRotation":true}`)},

	{Key: "payment_subscription", Value: json.RawMessage(`{"plan":"pro","interval":"monthly","amountCents":999,"currency":"USD","status":"active"}`)},
	{Key: "payment_history", Value: json.RawMessage(`[{"id":"inv_1001","amountCents":999,"paidAt":"2026-09-19"},{"id":"inv_1002","amountCents":999,"paidAt":"2026-10-19"}]`)},
}

// DemoRecords returns a copy of the demo catalog.
func DemoRecords() []store.Record {
	out := make([]store.Record, len(demoRecords))
	copy(out, demoRecords)
	return out
}

// Seed writes the demo catalog with unconditional sets. A failed write is
// recorded and the rest still run.
func (s *Service) Seed(ctx context.Context) SeedOutcome {
	var (
		out  SeedOutcome
		errs errorLog
	)
	for _, r := range demoRecords {
		if err := s.store.Set(ctx, r.Key, r.Value); err != nil {
			errs.add(fmt.Sprintf("%s: %v", r.Key, err))
			continue
		}
		out.Seeded++
	}
	out.Errors = errs.count
	out.Messages = errs.list()
	s.logger.Info("demo data seeded", "seeded", out.Seeded, "errors", out.Errors)
	return out
}
