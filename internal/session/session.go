package session

import (
	"fmt"
)

type Status string

const (
	StatusIdle          Status = "IDLE"
	StatusSubmitting    Status = "SUBMITTING"
	StatusSubmitted     Status = "SUBMITTED"
	StatusAnalysing     Status = "ANALYSING"
	StatusAnalysed      Status = "ANALYSED"
	StatusReportPending Status = "REPORT_PENDING"
	StatusReported      Status = "REPORTED"
	StatusFailed        Status = "FAILED"
)

type InputKind string

const (
	InputAudioFile   InputKind = "AUDIO_FILE"
	InputPhoneNumber InputKind = "PHONE_NUMBER"
)

// Input is what the user handed us: either a call recording or a phone
// number. Immutable once the session is created.
type Input struct {
	Kind        InputKind
	FileName    string
	MIMEType    string
	Audio       []byte
	PhoneNumber string
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Analysis is the backend verdict for one call.
type Analysis struct {
	Transcript string    `json:"transcript"`
	ScamScore  float64   `json:"scam_score"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Advice     string    `json:"advice"`
}

// Report records one report attempt against a flagged caller.
type Report struct {
	CallerIdentifier string `json:"caller_identifier"`
	TxReference      string `json:"tx_reference,omitempty"`
}

// Session is the authoritative record of one analysis attempt. It is owned
// exclusively by the workflow controller; everyone else sees snapshots.
type Session struct {
	ID         string    `json:"id,omitempty"`
	Input      Input     `json:"-"`
	InputKind  InputKind `json:"input_kind,omitempty"`
	PhoneHint  string    `json:"phone_hint,omitempty"`
	Status     Status    `json:"status"`
	Analysis   *Analysis `json:"analysis,omitempty"`
	Report     *Report   `json:"report,omitempty"`
	Err        *Error    `json:"error,omitempty"`
	Generation uint64    `json:"generation"`
}

func New() *Session {
	return &Session{Status: StatusIdle}
}

// Snapshot returns a deep copy safe to hand outside the controller.
func (s *Session) Snapshot() Session {
	cp := *s
	cp.Input.Audio = append([]byte(nil), s.Input.Audio...)
	if s.Analysis != nil {
		a := *s.Analysis
		cp.Analysis = &a
	}
	if s.Report != nil {
		r := *s.Report
		cp.Report = &r
	}
	if s.Err != nil {
		e := *s.Err
		cp.Err = &e
	}
	return cp
}

// Supersede abandons the current attempt: the generation is bumped so that
// any in-flight resolutions belonging to the old attempt are discarded when
// they eventually land, and the session is reset to a blank Idle state.
func (s *Session) Supersede() {
	s.Generation++
	s.ID = ""
	s.Input = Input{}
	s.InputKind = ""
	s.PhoneHint = ""
	s.Status = StatusIdle
	s.Analysis = nil
	s.Report = nil
	s.Err = nil
}

// Event is a state-machine input applied through Advance.
type Event interface {
	apply(s *Session) error
}

// SubmitStarted begins a new attempt from Idle.
type SubmitStarted struct {
	Input     Input
	PhoneHint string
}

// SubmitSucceeded stores the backend-issued call identifier.
type SubmitSucceeded struct {
	SessionID string
}

type SubmitFailed struct {
	Err *Error
}

// AnalysisStarted freezes the phone hint for the rest of the attempt.
type AnalysisStarted struct{}

type AnalysisSucceeded struct {
	Analysis Analysis
}

type AnalysisFailed struct {
	Err *Error
}

// ReportStarted is only legal once a HIGH-risk verdict exists. A prior
// report failure does not invalidate the verdict, so re-entry from Failed
// is allowed as long as the analysis survived.
type ReportStarted struct {
	CallerIdentifier string
}

type ReportSucceeded struct {
	TxReference string
}

type ReportFailed struct {
	Err *Error
}

// Advance applies ev to the session and returns the resulting snapshot.
// Illegal transitions leave the session untouched.
func (s *Session) Advance(ev Event) (Session, error) {
	if err := ev.apply(s); err != nil {
		return s.Snapshot(), err
	}
	return s.Snapshot(), nil
}

func (s *Session) transitionErr(ev string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, ev, s.Status)
}

func (e SubmitStarted) apply(s *Session) error {
	if s.Status != StatusIdle {
		return s.transitionErr("submit")
	}
	s.Input = e.Input
	s.InputKind = e.Input.Kind
	s.PhoneHint = e.PhoneHint
	if e.Input.Kind == InputPhoneNumber && s.PhoneHint == "" {
		s.PhoneHint = e.Input.PhoneNumber
	}
	s.Status = StatusSubmitting
	s.Err = nil
	return nil
}

func (e SubmitSucceeded) apply(s *Session) error {
	if s.Status != StatusSubmitting {
		return s.transitionErr("submit result")
	}
	if e.SessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidTransition)
	}
	s.ID = e.SessionID
	s.Status = StatusSubmitted
	return nil
}

func (e SubmitFailed) apply(s *Session) error {
	if s.Status != StatusSubmitting {
		return s.transitionErr("submit result")
	}
	s.Status = StatusFailed
	s.Err = e.Err
	return nil
}

func (e AnalysisStarted) apply(s *Session) error {
	if s.Status != StatusSubmitted {
		return s.transitionErr("analyse")
	}
	s.Status = StatusAnalysing
	s.Err = nil
	return nil
}

func (e AnalysisSucceeded) apply(s *Session) error {
	if s.Status != StatusAnalysing {
		return s.transitionErr("analysis result")
	}
	a := e.Analysis
	s.Analysis = &a
	s.Status = StatusAnalysed
	return nil
}

func (e AnalysisFailed) apply(s *Session) error {
	if s.Status != StatusAnalysing {
		return s.transitionErr("analysis result")
	}
	s.Status = StatusFailed
	s.Err = e.Err
	return nil
}

func (e ReportStarted) apply(s *Session) error {
	switch s.Status {
	case StatusAnalysed, StatusReported:
	case StatusFailed:
		if s.Analysis == nil {
			return s.transitionErr("report")
		}
	default:
		return s.transitionErr("report")
	}
	if s.Analysis == nil || s.Analysis.RiskLevel != RiskHigh {
		return fmt.Errorf("%w: report requires a HIGH risk verdict", ErrInvalidTransition)
	}
	s.Report = &Report{CallerIdentifier: e.CallerIdentifier}
	s.Status = StatusReportPending
	s.Err = nil
	return nil
}

func (e ReportSucceeded) apply(s *Session) error {
	if s.Status != StatusReportPending {
		return s.transitionErr("report result")
	}
	s.Report.TxReference = e.TxReference
	s.Status = StatusReported
	return nil
}

func (e ReportFailed) apply(s *Session) error {
	if s.Status != StatusReportPending {
		return s.transitionErr("report result")
	}
	s.Status = StatusFailed
	s.Err = e.Err
	return nil
}
