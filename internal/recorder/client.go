// Package recorder performs the durable remote write for completed study
// sessions and the retry machinery for writes that failed.
package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/service"
)

// RecordError describes a failed remote write. Retryable distinguishes
// transient failures (network, 5xx) from deterministic rejections (4xx);
// both currently end up queued, the tag exists so the contract can be
// tightened without reshaping the queue.
type RecordError struct {
	Status    int
	Retryable bool
	Message   string
}

func (e *RecordError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("record failed (status %d): %s", e.Status, e.Message)
	}
	return "record failed: " + e.Message
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     internal.Logger
}

func NewClient(baseURL, token string, logger internal.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// RecordSession performs a single durable write attempt against the API.
func (c *Client) RecordSession(ctx context.Context, session *internal.StudySession) error {
	body := service.SessionRequest{
		SubjectID: session.SubjectID,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
		Memo:      session.Memo,
		Source:    session.Source,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return &RecordError{Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/sessions", bytes.NewReader(raw))
	if err != nil {
		return &RecordError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnf("recorder: request failed: %v", err)
		return &RecordError{Retryable: true, Message: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode >= 500:
		c.logger.Warnf("recorder: server error %d", resp.StatusCode)
		return &RecordError{Status: resp.StatusCode, Retryable: true, Message: "server error"}
	default:
		c.logger.Warnf("recorder: rejected with %d", resp.StatusCode)
		return &RecordError{Status: resp.StatusCode, Message: "rejected"}
	}
}

// Ping reports whether the API is reachable; the retry queue's watcher uses
// it to detect offline-to-online transitions.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthz returned %d", resp.StatusCode)
	}
	return nil
}

// ListSubjects fetches the presets plus the user's custom subjects.
func (c *Client) ListSubjects(ctx context.Context) ([]internal.Subject, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/subjects", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("subjects returned %d", resp.StatusCode)
	}

	var envelope struct {
		Data []internal.Subject `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
