package models

import (
	"testing"
	"time"
)

func TestSummarizeMetrics(t *testing.T) {
	metrics := []DirectoryMetric{
		{Path: "/a", Elapsed: 10 * time.Millisecond},
		{Path: "/a/b", Elapsed: 40 * time.Millisecond},
		{Path: "/a/c", Elapsed: 10 * time.Millisecond},
	}

	summary := SummarizeMetrics(metrics)

	if summary.Count != 3 {
		t.Errorf("expected count 3, got %d", summary.Count)
	}
	if summary.Min != 10*time.Millisecond {
		t.Errorf("expected min 10ms, got %v", summary.Min)
	}
	if summary.Max != 40*time.Millisecond {
		t.Errorf("expected max 40ms, got %v", summary.Max)
	}
	if summary.Average != 20*time.Millisecond {
		t.Errorf("expected average 20ms, got %v", summary.Average)
	}
}

func TestSummarizeMetrics_Empty(t *testing.T) {
	summary := SummarizeMetrics(nil)
	if summary.Count != 0 || summary.Min != 0 || summary.Max != 0 || summary.Average != 0 {
		t.Fatalf("expected zero summary for no metrics, got %+v", summary)
	}
}

func TestSummarizeMetrics_Single(t *testing.T) {
	summary := SummarizeMetrics([]DirectoryMetric{{Path: "/only", Elapsed: time.Second}})
	if summary.Min != time.Second || summary.Max != time.Second || summary.Average != time.Second {
		t.Fatalf("expected all aggregates to equal the single sample, got %+v", summary)
	}
}
