package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/AaryanMohanta/ScamScan/internal/gateway"
	"github.com/AaryanMohanta/ScamScan/internal/session"
)

// ErrSuperseded reports that a gateway call resolved after a newer top-level
// submission had taken over; its result was dropped.
var ErrSuperseded = errors.New("attempt superseded by a newer submission")

// Controller owns the single active session and drives it through its state
// machine. Gateway calls block the calling goroutine, not the controller:
// the lock is released around every call and each resolution is committed
// only if the session generation still matches.
type Controller struct {
	mu     sync.Mutex
	gw     gateway.Gateway
	sess   *session.Session
	logger zerolog.Logger
}

func New(gw gateway.Gateway, logger zerolog.Logger) *Controller {
	return &Controller{
		gw:     gw,
		sess:   session.New(),
		logger: logger.With().Str("component", "workflow").Logger(),
	}
}

// Session returns a snapshot of the active session.
func (c *Controller) Session() session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Snapshot()
}

// Submit starts a new analysis attempt. Any prior attempt, including one
// with calls still in flight, is superseded; its eventual resolutions are
// discarded by the generation check.
func (c *Controller) Submit(ctx context.Context, in session.Input, phoneHint string) (session.Session, error) {
	c.mu.Lock()
	if c.sess.Status != session.StatusIdle {
		c.logger.Info().
			Uint64("generation", c.sess.Generation).
			Str("status", string(c.sess.Status)).
			Msg("superseding previous attempt")
	}
	c.sess.Supersede()
	gen := c.sess.Generation
	snap, err := c.sess.Advance(session.SubmitStarted{Input: in, PhoneHint: phoneHint})
	c.mu.Unlock()
	if err != nil {
		return snap, err
	}

	id, callErr := c.gw.SubmitInput(ctx, in)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Generation != gen {
		c.logger.Debug().Uint64("generation", gen).Msg("dropping stale submit resolution")
		return c.sess.Snapshot(), ErrSuperseded
	}
	if callErr != nil {
		typed := coerce(callErr, session.ErrUpload)
		snap, _ = c.sess.Advance(session.SubmitFailed{Err: typed})
		return snap, typed
	}
	return c.sess.Advance(session.SubmitSucceeded{SessionID: id})
}

// Analyze runs the analysis step for the current session. It refuses to run
// unless the submit step has completed for this generation.
func (c *Controller) Analyze(ctx context.Context) (session.Session, error) {
	c.mu.Lock()
	snap, err := c.sess.Advance(session.AnalysisStarted{})
	if err != nil {
		c.mu.Unlock()
		return snap, session.NewError(session.ErrAnalysis, "no submitted call to analyse")
	}
	gen := c.sess.Generation
	id := c.sess.ID
	hint := c.sess.PhoneHint
	c.mu.Unlock()

	analysis, callErr := c.gw.RequestAnalysis(ctx, id, hint)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Generation != gen {
		c.logger.Debug().Uint64("generation", gen).Msg("dropping stale analysis resolution")
		return c.sess.Snapshot(), ErrSuperseded
	}
	if callErr != nil {
		typed := coerce(callErr, session.ErrAnalysis)
		snap, _ = c.sess.Advance(session.AnalysisFailed{Err: typed})
		return snap, typed
	}
	return c.sess.Advance(session.AnalysisSucceeded{Analysis: analysis})
}

// Scan is the common user action: submit the input, then analyse it. The
// state machine still passes through SUBMITTED so both input kinds flow the
// same way.
func (c *Controller) Scan(ctx context.Context, in session.Input, phoneHint string) (session.Session, error) {
	snap, err := c.Submit(ctx, in, phoneHint)
	if err != nil {
		return snap, err
	}
	return c.Analyze(ctx)
}

// Report files an on-chain report against the analysed caller. Only legal
// when the backend verdict is HIGH; a failed report keeps the verdict, so
// the step may be retried.
func (c *Controller) Report(ctx context.Context, callerIdentifier string) (session.Session, error) {
	c.mu.Lock()
	if callerIdentifier == "" {
		snap := c.sess.Snapshot()
		c.mu.Unlock()
		return snap, session.NewError(session.ErrValidation, "caller identifier is required")
	}
	snap, err := c.sess.Advance(session.ReportStarted{CallerIdentifier: callerIdentifier})
	if err != nil {
		c.mu.Unlock()
		return snap, session.NewError(session.ErrReport, "reporting requires a HIGH risk verdict")
	}
	gen := c.sess.Generation
	id := c.sess.ID
	c.mu.Unlock()

	tx, callErr := c.gw.SubmitReport(ctx, id, callerIdentifier)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Generation != gen {
		c.logger.Debug().Uint64("generation", gen).Msg("dropping stale report resolution")
		return c.sess.Snapshot(), ErrSuperseded
	}
	if callErr != nil {
		typed := coerce(callErr, session.ErrReport)
		snap, _ = c.sess.Advance(session.ReportFailed{Err: typed})
		return snap, typed
	}
	return c.sess.Advance(session.ReportSucceeded{TxReference: tx})
}

func coerce(err error, kind session.ErrorKind) *session.Error {
	var typed *session.Error
	if errors.As(err, &typed) {
		return typed
	}
	return session.NewError(kind, "%v", err)
}
