package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// BucketCount is the number of latency histogram buckets, +Inf included.
const BucketCount = 8

// CounterDef names one store counter.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef names one store histogram.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// Source is what the exporters read. *goSession.Store satisfies it.
type Source interface {
	MetricsSnapshot() goSession.MetricsSnapshot
	AuditDropped() uint64
}

// AuditDroppedName and AuditDroppedHelp describe the dispatcher drop counter.
const (
	AuditDroppedName = "nutracall_session_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "nutracall_session_login_success_total", Help: "Successful logins."},
	{ID: goSession.MetricLoginFailure, Name: "nutracall_session_login_failure_total", Help: "Failed logins, validation failures included."},
	{ID: goSession.MetricSignupSuccess, Name: "nutracall_session_signup_success_total", Help: "Successful signups."},
	{ID: goSession.MetricSignupFailure, Name: "nutracall_session_signup_failure_total", Help: "Failed signups, validation failures included."},
	{ID: goSession.MetricLogout, Name: "nutracall_session_logout_total", Help: "Logouts."},
	{ID: goSession.MetricSessionRestored, Name: "nutracall_session_restored_total", Help: "Sessions restored from durable storage."},
	{ID: goSession.MetricSessionCorrupt, Name: "nutracall_session_corrupt_total", Help: "Persisted sessions discarded as corrupt."},
	{ID: goSession.MetricSessionExpired, Name: "nutracall_session_expired_total", Help: "Persisted sessions discarded for an expired token."},
	{ID: goSession.MetricSessionUnauthorized, Name: "nutracall_session_unauthorized_total", Help: "Sessions cleared after an unauthorized API response."},
	{ID: goSession.MetricUserUpdated, Name: "nutracall_session_user_updated_total", Help: "Profile updates."},
	{ID: goSession.MetricUserRefreshed, Name: "nutracall_session_user_refreshed_total", Help: "Profile reloads from durable storage."},
	{ID: goSession.MetricPersistFailure, Name: "nutracall_session_persist_failure_total", Help: "Durable storage writes that failed."},
}

var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricAuthLatency, Name: "nutracall_session_auth_latency_seconds", Help: "Authentication backend latency of login and signup."},
}

// HistogramBounds are the Prometheus le labels, matching
// goSession.LatencyBucketBounds.
var HistogramBounds = [BucketCount]string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix renders HistogramBounds for instrument names.
var HistogramBoundSuffix = [BucketCount]string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to BucketCount entries.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
