// Package analysis produces patient assessments: a local rule-based pass and
// a collaborator-backed orthopedic summary.
package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// FileRef points the collaborator at one stored medical file.
type FileRef struct {
	Path     string
	MIMEType string
}

// Generator turns a prompt plus attached files into free-form analysis text.
type Generator interface {
	Generate(ctx context.Context, prompt string, files []FileRef) (string, error)
}

const defaultGeminiBase = "https://generativelanguage.googleapis.com"

// GeminiClient implements Generator against the generateContent endpoint.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBase,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt and inline base64 file parts. Files that are
// missing on disk are skipped with a warning rather than failing the call.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, files []FileRef) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("no api key configured")
	}

	contents := []geminiContent{{
		Role:  "user",
		Parts: []geminiPart{{Text: prompt}},
	}}
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			log.Warn().Str("path", f.Path).Err(err).Msg("skipping unreadable medical file")
			continue
		}
		contents = append(contents, geminiContent{
			Role: "user",
			Parts: []geminiPart{{InlineData: &geminiInlineData{
				MIMEType: f.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(data),
			}}},
		})
	}

	body, err := json.Marshal(geminiRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("model error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
