package transaction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// AnomalyScorer is an external model consulted for additional context on the
// concerning path. It only ever contributes an alert; it never decides the
// classification on its own and its failure never fails a registration.
type AnomalyScorer interface {
	Score(ctx context.Context, tx Transaction) (float64, error)
}

// HTTPAnomalyScorer calls the anomaly-scoring service over HTTP.
type HTTPAnomalyScorer struct {
	url    string
	client *http.Client
}

// NewHTTPAnomalyScorer creates a scorer against the given endpoint.
func NewHTTPAnomalyScorer(url string, timeout time.Duration) *HTTPAnomalyScorer {
	return &HTTPAnomalyScorer{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPAnomalyScorer) Score(ctx context.Context, tx Transaction) (float64, error) {
	payload, err := json.Marshal(map[string]any{
		"client_id":    tx.ClientID.String(),
		"activity":     tx.Activity,
		"amount_units": tx.AmountUnits,
		"method":       tx.Method,
		"occurred_at":  tx.OccurredAt,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal anomaly request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build anomaly request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("anomaly service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("anomaly service returned %d", resp.StatusCode)
	}

	var body struct {
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode anomaly response: %w", err)
	}
	return body.Score, nil
}

// anomalyAlert formats the contributed alert for a score.
func anomalyAlert(score float64) Alert {
	return Alert{
		Code:    AlertAnomaly,
		Message: fmt.Sprintf("anomaly model scored this transaction %s", decimal.NewFromFloat(score).StringFixed(2)),
	}
}
