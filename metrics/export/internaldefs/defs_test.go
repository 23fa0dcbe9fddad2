package internaldefs

import (
	"strconv"
	"testing"

	goSession "github.com/MrEthical07/goSession"
)

func TestCounterDefsCoverEveryCounter(t *testing.T) {
	seen := make(map[goSession.MetricID]bool)
	names := make(map[string]bool)
	for _, def := range CounterDefs {
		if seen[def.ID] {
			t.Fatalf("duplicate id %d", def.ID)
		}
		if names[def.Name] {
			t.Fatalf("duplicate name %s", def.Name)
		}
		seen[def.ID] = true
		names[def.Name] = true
	}

	m := goSession.NewMetrics(goSession.MetricsConfig{Enabled: true})
	for id := range m.Snapshot().Counters {
		if !seen[id] {
			t.Fatalf("counter %d has no definition", id)
		}
	}
}

func TestHistogramBoundsMatchStore(t *testing.T) {
	bounds := goSession.LatencyBucketBounds()
	if len(bounds) != BucketCount-1 {
		t.Fatalf("store has %d bounds, want %d", len(bounds), BucketCount-1)
	}
	for i, b := range bounds {
		want := strconv.FormatFloat(b.Seconds(), 'f', -1, 64)
		if HistogramBounds[i] != want {
			t.Fatalf("bound %d = %s, want %s", i, HistogramBounds[i], want)
		}
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [BucketCount]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}
