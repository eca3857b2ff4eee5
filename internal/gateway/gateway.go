package gateway

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AaryanMohanta/ScamScan/internal/session"
)

// Gateway presents one uniform contract to the workflow controller no matter
// which physical backend variant is configured.
type Gateway interface {
	// SubmitInput registers the user's input with the backend and returns the
	// call identifier. Phone-number submissions never hit the network; the
	// identifier is minted locally and the number travels later as the
	// analysis hint.
	SubmitInput(ctx context.Context, in session.Input) (string, error)

	// RequestAnalysis asks the backend for a verdict on an already submitted
	// call. phoneHint is forwarded as the optional caller number.
	RequestAnalysis(ctx context.Context, sessionID, phoneHint string) (session.Analysis, error)

	// SubmitReport files an on-chain report against the caller and returns
	// the transaction reference, when the backend provides one.
	SubmitReport(ctx context.Context, sessionID, callerIdentifier string) (string, error)
}

// FromEnv instantiates the gateway variant declared in CALLCHECK_BACKEND
// ("unified" or "split").
func FromEnv(logger zerolog.Logger) (Gateway, error) {
	client := &http.Client{Timeout: envDuration("CALLCHECK_HTTP_TIMEOUT", 60*time.Second)}
	variant := strings.TrimSpace(strings.ToLower(os.Getenv("CALLCHECK_BACKEND")))
	switch variant {
	case "", "unified":
		base := os.Getenv("CALLCHECK_BASE_URL")
		if base == "" {
			base = "http://localhost:8001"
		}
		return NewUnified(base, client, logger), nil
	case "split":
		upload := os.Getenv("CALLCHECK_UPLOAD_URL")
		analysis := os.Getenv("CALLCHECK_ANALYSIS_URL")
		if upload == "" || analysis == "" {
			return nil, fmt.Errorf("CALLCHECK_UPLOAD_URL/CALLCHECK_ANALYSIS_URL required for split backend")
		}
		return NewSplit(upload, analysis, client, logger), nil
	default:
		return nil, fmt.Errorf("unknown backend variant %q", variant)
	}
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return def
}

var phoneShape = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,19}$`)

var allowedAudioExts = map[string]struct{}{
	".mp3": {},
	".wav": {},
	".m4a": {},
	".ogg": {},
}

// validateInput is a UX guard, not a security boundary; the authoritative
// checks stay server-side.
func validateInput(in session.Input) *session.Error {
	switch in.Kind {
	case session.InputAudioFile:
		if len(in.Audio) == 0 {
			return session.NewError(session.ErrValidation, "no audio file selected")
		}
		if strings.HasPrefix(in.MIMEType, "audio/") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(in.FileName))
		if _, ok := allowedAudioExts[ext]; !ok {
			return session.NewError(session.ErrValidation, "unsupported file type %q", ext)
		}
		return nil
	case session.InputPhoneNumber:
		number := strings.TrimSpace(in.PhoneNumber)
		if number == "" {
			return session.NewError(session.ErrValidation, "no phone number entered")
		}
		if !phoneShape.MatchString(number) {
			return session.NewError(session.ErrValidation, "%q does not look like a phone number", number)
		}
		return nil
	default:
		return session.NewError(session.ErrValidation, "unknown input kind %q", in.Kind)
	}
}

func validateScore(a session.Analysis) *session.Error {
	if a.ScamScore < 0 || a.ScamScore > 1 {
		return session.NewError(session.ErrAnalysis, "backend returned scam_score %v outside [0,1]", a.ScamScore)
	}
	return nil
}
