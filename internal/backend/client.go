// Package backend is the HTTP client for the remote resume service that
// enhances text and stores saved resumes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/cvdraft/internal/resume"
)

const defaultBaseURL = "http://localhost:8000"

// Sections accepted by the enhance endpoint.
const (
	SectionSummary    = "summary"
	SectionExperience = "experience"
	SectionSkills     = "skills"
)

// EnhanceRequest is the body of POST /ai-enhance.
type EnhanceRequest struct {
	Section string `json:"section"`
	Content string `json:"content"`
}

// EnhanceResponse is the reply of POST /ai-enhance.
type EnhanceResponse struct {
	EnhancedContent string   `json:"enhanced_content"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// SaveReceipt is the reply of POST /save-resume.
type SaveReceipt struct {
	Message  string `json:"message"`
	ResumeID string `json:"resume_id"`
	SavedAt  string `json:"saved_at"`
}

// ResumeList is the reply of GET /resumes.
type ResumeList struct {
	Resumes []string `json:"resumes"`
	Count   int      `json:"count"`
}

// Client talks to the resume service. Every call is a single attempt.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the service root, e.g. http://localhost:8000.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout bounds every call. Zero leaves calls unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client. A nil httpClient gets a fresh http.Client so
// WithTimeout never mutates http.DefaultClient.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	} else {
		cp := *httpClient
		httpClient = &cp
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string { return c.baseURL }

// EnhanceContent asks the service to improve content for the given section.
func (c *Client) EnhanceContent(ctx context.Context, section, content string) (*EnhanceResponse, error) {
	var out EnhanceResponse
	if err := c.do(ctx, OpEnhance, http.MethodPost, "/ai-enhance", EnhanceRequest{Section: section, Content: content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveResume stores the full record and returns the service's receipt.
func (c *Client) SaveResume(ctx context.Context, data resume.Data) (*SaveReceipt, error) {
	var out SaveReceipt
	if err := c.do(ctx, OpSave, http.MethodPost, "/save-resume", data.Normalize(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListResumes returns the ids of every saved resume.
func (c *Client) ListResumes(ctx context.Context) (*ResumeList, error) {
	var out ResumeList
	if err := c.do(ctx, OpList, http.MethodGet, "/resumes", nil, &out); err != nil {
		return nil, err
	}
	if out.Resumes == nil {
		out.Resumes = []string{}
	}
	return &out, nil
}

// GetResume fetches one saved resume.
func (c *Client) GetResume(ctx context.Context, id string) (resume.Data, error) {
	var out resume.Data
	if err := c.do(ctx, OpGet, http.MethodGet, "/resume/"+url.PathEscape(id), nil, &out); err != nil {
		return resume.Data{}, err
	}
	return out.Normalize(), nil
}

func (c *Client) do(ctx context.Context, op Op, method, path string, body, target any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}
