package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/cvdraft/internal/upload"
)

const (
	fetchTimeout = 30 * time.Second
	maxRedirects = 5
)

var (
	// extByMIME only names files; the content is sniffed again on upload.
	extByMIME = map[string]string{
		upload.MIMEPDF:  ".pdf",
		upload.MIMEDOCX: ".docx",
	}

	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

	errBlockedHost = errors.New("blocked host")
)

// resumeSource is a file handed to upload_resume before validation.
type resumeSource struct {
	name string
	data []byte
}

type uploadResult struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	MIME string `json:"mime"`
	View string `json:"view"`
}

func (s *Server) uploadResume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var src resumeSource
	if strings.HasPrefix(rawURL, "data:") {
		src, err = fromDataURI(rawURL)
	} else {
		src, err = download(ctx, rawURL)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if name, nErr := req.RequireString("filename"); nErr == nil && name != "" {
		src.name = name
	}

	f, err := s.session.Upload(ctx, upload.File{
		Name: cleanName(src.name),
		Size: int64(len(src.data)),
		Head: src.data,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, _ := json.Marshal(uploadResult{
		Name: f.Name,
		Size: f.Size,
		MIME: f.MIME,
		View: string(s.session.View()),
	})
	return mcp.NewToolResultText(string(out)), nil
}

// fromDataURI decodes data:<mime>;base64,<payload>.
func fromDataURI(uri string) (resumeSource, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return resumeSource{}, fmt.Errorf("invalid data URI: missing comma separator")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return resumeSource{}, fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return resumeSource{}, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	mime, _, _ = strings.Cut(mime, ";")
	return resumeSource{name: "resume" + extByMIME[mime], data: data}, nil
}

// download fetches an http(s) URL. Loopback and metadata hosts are refused,
// including after redirects, and at most upload.MaxSize+1 bytes are read so
// an oversized file is still reported as too large.
func download(ctx context.Context, rawURL string) (resumeSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return resumeSource{}, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return resumeSource{}, fmt.Errorf("unsupported scheme: %s (only http/https)", u.Scheme)
	}
	if err := guardHost(u.Hostname()); err != nil {
		return resumeSource{}, err
	}

	client := &http.Client{
		Timeout: fetchTimeout,
		CheckRedirect: func(r *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects (max %d)", maxRedirects)
			}
			return guardHost(r.URL.Hostname())
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return resumeSource{}, fmt.Errorf("invalid URL: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return resumeSource{}, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return resumeSource{}, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, upload.MaxSize+1))
	if err != nil {
		return resumeSource{}, fmt.Errorf("read body failed: %w", err)
	}

	name := path.Base(u.Path)
	if !strings.Contains(name, ".") {
		mime, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
		name = "resume" + extByMIME[strings.TrimSpace(mime)]
	}
	return resumeSource{name: name, data: data}, nil
}

// guardHost rejects loopback and cloud metadata addresses. Names that do not
// resolve are left for the HTTP client to report.
func guardHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("%w: %s", errBlockedHost, host)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil
		}
		ip = ips[0]
	}
	switch {
	case ip.IsLoopback():
		return fmt.Errorf("%w: loopback address %s", errBlockedHost, host)
	case ip.Equal(net.IPv4(169, 254, 169, 254)):
		return fmt.Errorf("%w: cloud metadata address %s", errBlockedHost, host)
	}
	return nil
}

// cleanName keeps the last path element and replaces unsafe characters.
func cleanName(name string) string {
	name = unsafeNameChars.ReplaceAllString(filepath.Base(name), "_")
	if name == "" || name == "." || name == "_" {
		return "resume"
	}
	return name
}
