package display

import (
	"testing"

	"github.com/AaryanMohanta/ScamScan/internal/session"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{0.824, 82},
		{0.3, 30},
		{0.75, 75},
		{0.0, 0},
		{1.0, 100},
		{0.005, 1},
	}
	for _, tt := range tests {
		if got := Percent(tt.score); got != tt.want {
			t.Errorf("Percent(%v) = %d, want %d", tt.score, got, tt.want)
		}
		// Re-deriving from the same score must not drift.
		if got := Percent(tt.score); got != tt.want {
			t.Errorf("Percent(%v) not idempotent", tt.score)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		percent int
		want    Band
	}{
		{0, BandLow},
		{29, BandLow},
		{30, BandMedium},
		{74, BandMedium},
		{75, BandHigh},
		{100, BandHigh},
	}
	for _, tt := range tests {
		if got := Classify(tt.percent); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.percent, got, tt.want)
		}
	}
}

func TestRenderWithoutAnalysis(t *testing.T) {
	if _, ok := Render(session.Session{Status: session.StatusSubmitting}); ok {
		t.Fatal("Render produced a view with no analysis present")
	}
}

func TestRenderKeepsBothClassifications(t *testing.T) {
	// Local band and backend verdict can disagree; both are surfaced, and
	// only the backend verdict enables reporting.
	s := session.Session{
		Status: session.StatusAnalysed,
		Analysis: &session.Analysis{
			Transcript: "transcript",
			ScamScore:  0.8,
			RiskLevel:  session.RiskMedium,
			Advice:     "be careful",
		},
	}
	view, ok := Render(s)
	if !ok {
		t.Fatal("expected a view")
	}
	if view.Band != BandHigh {
		t.Errorf("band = %s, want HIGH from the 80%% score", view.Band)
	}
	if view.ModelVerdict != session.RiskMedium {
		t.Errorf("model verdict = %s, want the backend's MEDIUM", view.ModelVerdict)
	}
	if view.CanReport {
		t.Error("report enabled by the local band; must follow the backend verdict")
	}
}

func TestRenderBands(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		headline string
	}{
		{"low", 0.05, "SAFE / VERIFIED"},
		{"medium", 0.45, "POTENTIALLY SUSPICIOUS"},
		{"high", 0.9, "CRITICAL THREAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session.Session{
				Status:   session.StatusAnalysed,
				Analysis: &session.Analysis{ScamScore: tt.score, RiskLevel: session.RiskLow},
			}
			view, ok := Render(s)
			if !ok {
				t.Fatal("expected a view")
			}
			if view.Headline != tt.headline {
				t.Errorf("headline = %q, want %q", view.Headline, tt.headline)
			}
		})
	}
}

func TestRenderCarriesReport(t *testing.T) {
	s := session.Session{
		Status:   session.StatusReported,
		Analysis: &session.Analysis{ScamScore: 0.82, RiskLevel: session.RiskHigh},
		Report:   &session.Report{CallerIdentifier: "+15551234567", TxReference: "0xABC"},
	}
	view, ok := Render(s)
	if !ok {
		t.Fatal("expected a view")
	}
	if !view.CanReport {
		t.Error("HIGH verdict should keep the report action available")
	}
	if view.TxReference != "0xABC" {
		t.Errorf("tx = %q, want 0xABC", view.TxReference)
	}
}
