package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/AaryanMohanta/ScamScan/internal/session"
)

const maxErrorBodyBytes = 8 * 1024

func postJSON(ctx context.Context, client *http.Client, url string, payload, out any, kind session.ErrorKind) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return session.NewError(kind, "encode request: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return session.NewError(kind, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return session.NewError(kind, "request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return session.NewError(kind, "%s", apiErrorMessage(resp))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return session.NewError(kind, "decode response: %v", err)
		}
	}
	return nil
}

func postAudio(ctx context.Context, client *http.Client, url string, in session.Input) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := createAudioPart(writer, in)
	if err != nil {
		return "", session.NewError(session.ErrUpload, "build form: %v", err)
	}
	if _, err := part.Write(in.Audio); err != nil {
		return "", session.NewError(session.ErrUpload, "build form: %v", err)
	}
	if err := writer.Close(); err != nil {
		return "", session.NewError(session.ErrUpload, "build form: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", session.NewError(session.ErrUpload, "build request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := client.Do(req)
	if err != nil {
		return "", session.NewError(session.ErrUpload, "upload failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", session.NewError(session.ErrUpload, "%s", apiErrorMessage(resp))
	}
	var body struct {
		CallID string `json:"call_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", session.NewError(session.ErrUpload, "decode response: %v", err)
	}
	if body.CallID == "" {
		return "", session.NewError(session.ErrUpload, "backend returned no call_id")
	}
	return body.CallID, nil
}

func createAudioPart(writer *multipart.Writer, in session.Input) (io.Writer, error) {
	if in.MIMEType == "" {
		return writer.CreateFormFile("file", in.FileName)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, in.FileName))
	header.Set("Content-Type", in.MIMEType)
	return writer.CreatePart(header)
}

// apiErrorMessage extracts a human message from a non-2xx response. Both
// backend variants answer either {"detail": "..."} or a plain text body.
func apiErrorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", resp.StatusCode, body.Detail)
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return fmt.Sprintf("backend returned %d: %s", resp.StatusCode, text)
	}
	return fmt.Sprintf("backend returned %d", resp.StatusCode)
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + path
}
