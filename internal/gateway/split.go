package gateway

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AaryanMohanta/ScamScan/internal/session"
)

// split talks to the two-service deployment: one service takes the audio,
// a second one does analysis and reporting, with the call id in the JSON
// body instead of the path.
type split struct {
	uploadBase   string
	analysisBase string
	client       *http.Client
	logger       zerolog.Logger
}

func NewSplit(uploadURL, analysisURL string, client *http.Client, logger zerolog.Logger) Gateway {
	return &split{
		uploadBase:   uploadURL,
		analysisBase: analysisURL,
		client:       client,
		logger:       logger.With().Str("component", "gateway").Str("variant", "split").Logger(),
	}
}

func (g *split) SubmitInput(ctx context.Context, in session.Input) (string, error) {
	if err := validateInput(in); err != nil {
		return "", err
	}
	if in.Kind == session.InputPhoneNumber {
		return uuid.NewString(), nil
	}
	id, err := postAudio(ctx, g.client, joinURL(g.uploadBase, "/audio/upload"), in)
	if err != nil {
		return "", err
	}
	g.logger.Info().Str("call_id", id).Str("file", in.FileName).Msg("audio uploaded")
	return id, nil
}

func (g *split) RequestAnalysis(ctx context.Context, sessionID, phoneHint string) (session.Analysis, error) {
	if sessionID == "" {
		return session.Analysis{}, session.NewError(session.ErrAnalysis, "no call to analyse")
	}
	payload := struct {
		CallID      string  `json:"callId"`
		PhoneNumber *string `json:"phone_number,omitempty"`
	}{CallID: sessionID}
	if phoneHint != "" {
		payload.PhoneNumber = &phoneHint
	}
	var analysis session.Analysis
	url := joinURL(g.analysisBase, "/api/call/analyse")
	if err := postJSON(ctx, g.client, url, payload, &analysis, session.ErrAnalysis); err != nil {
		return session.Analysis{}, err
	}
	if err := validateScore(analysis); err != nil {
		return session.Analysis{}, err
	}
	g.logger.Info().Str("call_id", sessionID).Str("risk", string(analysis.RiskLevel)).Msg("analysis received")
	return analysis, nil
}

func (g *split) SubmitReport(ctx context.Context, sessionID, callerIdentifier string) (string, error) {
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
	url := joinURL(g.analysisBase, "/api/call/report")
	if err := postJSON(ctx, g.client, url, payload, &body, session.ErrReport); err != nil {
		return "", err
	}
	g.logger.Info().Str("call_id", sessionID).Str("tx", body.TxHash).Msg("report submitted")
	return body.TxHash, nil
}
