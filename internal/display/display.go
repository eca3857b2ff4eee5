package display

import (
	"math"

	"github.com/AaryanMohanta/ScamScan/internal/session"
)

// Band is the display classification derived locally from the numeric score.
// It is deliberately kept separate from the backend risk_level: the two can
// disagree, and both are shown.
type Band string

const (
	BandLow    Band = "LOW"
	BandMedium Band = "MEDIUM"
	BandHigh   Band = "HIGH"
)

// View is everything the UI needs to render a verdict.
type View struct {
	Percent      int               `json:"percent"`
	Band         Band              `json:"band"`
	Headline     string            `json:"headline"`
	Explanation  string            `json:"explanation"`
	ModelVerdict session.RiskLevel `json:"model_verdict"`
	Advice       string            `json:"advice"`
	Transcript   string            `json:"transcript"`
	CanReport    bool              `json:"can_report"`
	TxReference  string            `json:"tx_reference,omitempty"`
}

// Percent converts a scam score fraction to a whole percentage.
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

// Classify maps a percentage to its display band: below 30 low, 30 to 74
// medium, 75 and up high.
func Classify(percent int) Band {
	switch {
	case percent >= 75:
		return BandHigh
	case percent >= 30:
		return BandMedium
	default:
		return BandLow
	}
}

func headline(b Band) (string, string) {
	switch b {
	case BandHigh:
		return "CRITICAL THREAT",
			"Do not engage. This call matches patterns from known scam scripts, including high-pressure tactics and requests for sensitive information."
	case BandMedium:
		return "POTENTIALLY SUSPICIOUS",
			"Proceed with caution. Some language and behaviour in this call resemble common spam or social engineering attempts."
	default:
		return "SAFE / VERIFIED",
			"No threats detected. This number appears consistent with normal behaviour and there is no history of spam reports."
	}
}

// Render derives the display data for a session. The second return is false
// until an analysis exists. The report action is gated on the backend
// verdict, not the local band.
func Render(s session.Session) (View, bool) {
	if s.Analysis == nil {
		return View{}, false
	}
	pct := Percent(s.Analysis.ScamScore)
	band := Classify(pct)
	head, explanation := headline(band)
	view := View{
		Percent:      pct,
		Band:         band,
		Headline:     head,
		Explanation:  explanation,
		ModelVerdict: s.Analysis.RiskLevel,
		Advice:       s.Analysis.Advice,
		Transcript:   s.Analysis.Transcript,
		CanReport:    s.Analysis.RiskLevel == session.RiskHigh,
	}
	if s.Report != nil {
		view.TxReference = s.Report.TxReference
	}
	return view, true
}
