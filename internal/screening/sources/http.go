// Package sources holds the concrete list-source clients. Each vendor's
// response shape is normalized here so the orchestrator never sees it.
package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"amlgate/internal/screening"
)

// HTTPSource queries a JSON-over-HTTP list endpoint. All the national
// registries we integrate (sanctions, PEP, enforcement) expose the same
// minimal contract: POST an identity, get {match, detail} back.
type HTTPSource struct {
	name   string
	kind   screening.SourceKind
	url    string
	apiKey string
	client *http.Client
}

// NewHTTPSource builds a source client. kind is fixed configuration; it is
// deliberately a constructor argument and not derived from the endpoint.
func NewHTTPSource(name string, kind screening.SourceKind, url, apiKey string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{name: name, kind: kind, url: url, apiKey: apiKey, client: client}
}

func (s *HTTPSource) Name() string               { return s.name }
func (s *HTTPSource) Kind() screening.SourceKind { return s.kind }

type checkRequest struct {
	LegalID  string `json:"legal_id"`
	FullName string `json:"full_name"`
}

type checkResponse struct {
	Match  bool   `json:"match"`
	Detail string `json:"detail"`
}

// Check posts the identity to the list endpoint.
func (s *HTTPSource) Check(ctx context.Context, identity screening.Identity) (screening.Finding, error) {
	body, err := json.Marshal(checkRequest{
		LegalID:  identity.LegalID,
		FullName: identity.FullName,
	})
	if err != nil {
		return screening.Finding{}, fmt.Errorf("%s: marshal request: %w", s.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return screening.Finding{}, fmt.Errorf("%s: build request: %w", s.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return screening.Finding{}, fmt.Errorf("%s: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return screening.Finding{}, fmt.Errorf("%s: unexpected status %d", s.name, resp.StatusCode)
	}

	var parsed checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return screening.Finding{}, fmt.Errorf("%s: decode response: %w", s.name, err)
	}
	return screening.Finding{Found: parsed.Match, Detail: parsed.Detail}, nil
}
