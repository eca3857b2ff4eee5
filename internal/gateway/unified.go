package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AaryanMohanta/ScamScan/internal/session"
)

// unified talks to a single backend exposing upload, analyse and report.
type unified struct {
	base   string
	client *http.Client
	logger zerolog.Logger
}

func NewUnified(baseURL string, client *http.Client, logger zerolog.Logger) Gateway {
	return &unified{
		base:   baseURL,
		client: client,
		logger: logger.With().Str("component", "gateway").Str("variant", "unified").Logger(),
	}
}

func (g *unified) SubmitInput(ctx context.Context, in session.Input) (string, error) {
	if err := validateInput(in); err != nil {
		return "", err
	}
	if in.Kind == session.InputPhoneNumber {
		return uuid.NewString(), nil
	}
	id, err := postAudio(ctx, g.client, joinURL(g.base, "/calls/upload"), in)
	if err != nil {
		return "", err
	}
	g.logger.Info().Str("call_id", id).Str("file", in.FileName).Msg("audio uploaded")
	return id, nil
}

func (g *unified) RequestAnalysis(ctx context.Context, sessionID, phoneHint string) (session.Analysis, error) {
	if sessionID == "" {
		return session.Analysis{}, session.NewError(session.ErrAnalysis, "no call to analyse")
	}
	payload := struct {
		PhoneNumber *string `json:"phone_number"`
	}{}
	if phoneHint != "" {
		payload.PhoneNumber = &phoneHint
	}
	var analysis session.Analysis
	url := joinURL(g.base, fmt.Sprintf("/calls/%s/analyse", sessionID))
	if err := postJSON(ctx, g.client, url, payload, &analysis, session.ErrAnalysis); err != nil {
		return session.Analysis{}, err
	}
	if err := validateScore(analysis); err != nil {
		return session.Analysis{}, err
	}
	g.logger.Info().Str("call_id", sessionID).Str("risk", string(analysis.RiskLevel)).Msg("analysis received")
	return analysis, nil
}

func (g *unified) SubmitReport(ctx context.Context, sessionID, callerIdentifier string) (string, error) {
	if sessionID == "" {
		return "", session.NewError(session.ErrReport, "no call to report")
	}
	payload := struct {
		CallID           string `json:"callId"`
		CallerIdentifier string `json:"callerIdentifier"`
	}{CallID: sessionID, CallerIdentifier: callerIdentifier}
	var body struct {
		TxHash string `json:"tx_hash"`
	}
	if err := postJSON(ctx, g.client, joinURL(g.base, "/call/report"), payload, &body, session.ErrReport); err != nil {
		return "", err
	}
	g.logger.Info().Str("call_id", sessionID).Str("tx", body.TxHash).Msg("report submitted")
	return body.TxHash, nil
}
