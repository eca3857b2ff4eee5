package session

import (
	"errors"
	"testing"
)

func highAnalysis() Analysis {
	return Analysis{
		Transcript: "caller asked for a bank transfer code",
		ScamScore:  0.82,
		RiskLevel:  RiskHigh,
		Advice:     "Hang up and contact your bank via official channels.",
	}
}

func TestAdvanceHappyPath(t *testing.T) {
	s := New()
	s.Supersede()

	steps := []struct {
		name   string
		event  Event
		status Status
	}{
		{"submit", SubmitStarted{Input: Input{Kind: InputPhoneNumber, PhoneNumber: "+15551234567"}}, StatusSubmitting},
		{"submitted", SubmitSucceeded{SessionID: "call-1"}, StatusSubmitted},
		{"analysing", AnalysisStarted{}, StatusAnalysing},
		{"analysed", AnalysisSucceeded{Analysis: highAnalysis()}, StatusAnalysed},
		{"reporting", ReportStarted{CallerIdentifier: "+15551234567"}, StatusReportPending},
		{"reported", ReportSucceeded{TxReference: "0xABC"}, StatusReported},
	}
	for _, step := range steps {
		snap, err := s.Advance(step.event)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", step.name, err)
		}
		if snap.Status != step.status {
			t.Fatalf("%s: status = %s, want %s", step.name, snap.Status, step.status)
		}
	}

	if s.ID != "call-1" {
		t.Errorf("ID = %q, want call-1", s.ID)
	}
	if s.PhoneHint != "+15551234567" {
		t.Errorf("PhoneHint = %q, want the submitted number", s.PhoneHint)
	}
	if s.Report == nil || s.Report.TxReference != "0xABC" {
		t.Errorf("Report = %+v, want tx reference 0xABC", s.Report)
	}
}

func TestAdvanceIllegalTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Session)
		event Event
	}{
		{"analyse from idle", func(s *Session) {}, AnalysisStarted{}},
		{"report from idle", func(s *Session) {}, ReportStarted{CallerIdentifier: "x"}},
		{"submit result from idle", func(s *Session) {}, SubmitSucceeded{SessionID: "call-1"}},
		{"analysis result without analyse", func(s *Session) {
			s.Advance(SubmitStarted{Input: Input{Kind: InputPhoneNumber, PhoneNumber: "+15551234567"}})
		}, AnalysisSucceeded{Analysis: highAnalysis()}},
		{"double submit", func(s *Session) {
			s.Advance(SubmitStarted{Input: Input{Kind: InputPhoneNumber, PhoneNumber: "+15551234567"}})
		}, SubmitStarted{Input: Input{Kind: InputPhoneNumber, PhoneNumber: "+15550000000"}}},
		{"empty session id", func(s *Session) {
			s.Advance(SubmitStarted{Input: Input{Kind: InputPhoneNumber, PhoneNumber: "+15551234567"}})
		}, SubmitSucceeded{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.setup(s)
			before := s.Snapshot()

			_, err := s.Advance(tt.event)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("err = %v, want ErrInvalidTransition", err)
			}
			after := s.Snapshot()
			if after.Status != before.Status || after.ID != before.ID {
				t.Fatalf("illegal event mutated session: %+v -> %+v", before, after)
			}
		})
	}
}

func TestReportRequiresHighVerdict(t *testing.T) {
	for _, level := range []RiskLevel{RiskLow, RiskMedium} {
		t.Run(string(level), func(t *testing.T) {
			s := New()
			s.Advance(SubmitStarted{Input: Input{Kind: InputPhoneNumber, PhoneNumber: "+15551234567"}})
			s.Advance(SubmitSucceeded{SessionID: "call-1"})
			s.Advance(AnalysisStarted{})
			a := highAnalysis()
			a.RiskLevel = level
			a.ScamScore = 0.2
			s.Advance(AnalysisSucceeded{Analysis: a})

			_, err := s.Advance(ReportStarted{CallerIdentifier: "+15551234567"})
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("err = %v, want ErrInvalidTransition", err)
			}
			if s.Report != nil {
				t.Fatalf("report = %+v, want nil", s.Report)
			}
		})
	}
}

func TestReportRetryAfterFailure(t *testing.T) {
	s := New()
	s.Advance(SubmitStarted{Input: Input{Kind: InputPhoneNumber, PhoneNumber: "+15551234567"}})
	s.Advance(SubmitSucceeded{SessionID: "call-1"})
	s.Advance(AnalysisStarted{})
	s.Advance(AnalysisSucceeded{Analysis: highAnalysis()})
	s.Advance(ReportStarted{CallerIdentifier: "+15551234567"})
	s.Advance(ReportFailed{Err: NewError(ErrReport, "ledger unavailable")})

	if s.Status != StatusFailed {
		t.Fatalf("status = %s, want FAILED", s.Status)
	}
	if s.Analysis == nil {
		t.Fatal("report failure must not discard the analysis")
	}

	snap, err := s.Advance(ReportStarted{CallerIdentifier: "+15551234567"})
	if err != nil {
		t.Fatalf("retry rejected: %v", err)
	}
	if snap.Status != StatusReportPending {
		t.Fatalf("status = %s, want REPORT_PENDING", snap.Status)
	}
	if snap.Err != nil {
		t.Fatalf("retry should clear the stored error, got %v", snap.Err)
	}
}

func TestSupersedeResets(t *testing.T) {
	s := New()
	s.Advance(SubmitStarted{Input: Input{Kind: InputPhoneNumber, PhoneNumber: "+15551234567"}})
	s.Advance(SubmitSucceeded{SessionID: "call-1"})
	s.Advance(AnalysisStarted{})
	s.Advance(AnalysisFailed{Err: NewError(ErrAnalysis, "timeout")})
	gen := s.Generation

	s.Supersede()

	if s.Generation != gen+1 {
		t.Fatalf("generation = %d, want %d", s.Generation, gen+1)
	}
	if s.Status != StatusIdle || s.ID != "" || s.Analysis != nil || s.Report != nil || s.Err != nil {
		t.Fatalf("supersede left state behind: %+v", s.Snapshot())
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New()
	s.Advance(SubmitStarted{Input: Input{
		Kind:     InputAudioFile,
		FileName: "call.mp3",
		Audio:    []byte{1, 2, 3},
	}})
	s.Advance(SubmitSucceeded{SessionID: "call-1"})
	s.Advance(AnalysisStarted{})
	s.Advance(AnalysisSucceeded{Analysis: highAnalysis()})

	snap := s.Snapshot()
	snap.Analysis.ScamScore = 0
	snap.Input.Audio[0] = 9

	if s.Analysis.ScamScore != 0.82 {
		t.Error("snapshot shares analysis with session")
	}
	if s.Input.Audio[0] != 1 {
		t.Error("snapshot shares audio buffer with session")
	}
}
