package main

import (
	"strings"
	"testing"

	"github.com/kacebover/memleak-detector/memcheck"
)

// TestAnalysisNotification tests the notification verdict text
func TestAnalysisNotification(t *testing.T) {
	tests := []struct {
		name    string
		outcome *memcheck.AnalyzeOutcome
		want    string
	}{
		{
			"leaks detected",
			&memcheck.AnalyzeOutcome{Mode: "wsl", Report: &memcheck.Report{LeaksDetected: true}},
			"обнаружены утечки памяти",
		},
		{
			"no leaks",
			&memcheck.AnalyzeOutcome{Mode: "wsl", Report: &memcheck.Report{LeaksDetected: false}},
			"утечек памяти не обнаружено",
		},
		{
			"basic fallback",
			&memcheck.AnalyzeOutcome{Mode: "basic", Basic: &memcheck.BasicRun{ExitCode: 0}},
			"базовый анализ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysisNotification(`C:\src\prog`, tt.outcome)
			if !strings.Contains(got, tt.want) {
				t.Errorf("analysisNotification() = %q, want substring %q", got, tt.want)
			}
			if !strings.Contains(got, "prog") {
				t.Errorf("analysisNotification() = %q, want the executable name", got)
			}
		})
	}
}
