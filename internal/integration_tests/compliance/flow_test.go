// Package compliance exercises the full HTTP surface end to end: auth
// middleware, client onboarding, screening, transaction classification and
// the audit trail, wired exactly as cmd/server does but on in-memory stores.
package compliance

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amlgate/internal/audit"
	audithandler "amlgate/internal/audit/handler"
	"amlgate/internal/client"
	clienthandler "amlgate/internal/client/handler"
	httpapi "amlgate/internal/http"
	"amlgate/internal/reference"
	"amlgate/internal/screening"
	"amlgate/internal/screening/sources"
	"amlgate/internal/transaction"
	txhandler "amlgate/internal/transaction/handler"
	"amlgate/internal/units"
	"amlgate/pkg/platform/middleware/auth"
	"amlgate/pkg/requestcontext"
)

var signingKey = []byte("integration-test-signing-key")

// listedLegalID sits on the blocking sanctions list in the test stack.
const listedLegalID = "11111111-1"

type stack struct {
	router     http.Handler
	auditStore *audit.InMemoryStore
}

func newStack(t *testing.T) *stack {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	auditStore := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(auditStore, audit.WithLogger(logger))

	orch := screening.NewOrchestrator([]screening.Source{
		sources.NewStatic("un_sanctions", screening.KindBlocking, map[string]string{
			listedLegalID: "listed entity",
		}),
		sources.NewStatic("local_pep", screening.KindAdvisory, nil),
	}, screening.Timeouts{}, logger, nil)
	screeningSvc := screening.NewService(orch, screening.DefaultWeights(), screening.NewInMemoryStore(), publisher, logger)

	clientSvc := client.NewService(client.NewInMemoryStore(), screeningSvc, publisher, logger, 30, time.UTC)

	table, err := units.NewTable([]units.UnitValue{
		{EffectiveFrom: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(1000)},
	})
	require.NoError(t, err)
	converter := units.NewConverter(table, "CLP", nil)

	txSvc := transaction.NewService(transaction.NewInMemoryStore(), clientSvc, reference.DefaultCatalog(), converter, publisher, logger)

	router := httpapi.NewRouter(
		httpapi.Options{SigningKey: signingKey, Authenticate: true},
		logger,
		clienthandler.New(clientSvc, screeningSvc, logger),
		txhandler.New(txSvc, logger),
		audithandler.New(publisher, logger),
	)
	return &stack{router: router, auditStore: auditStore}
}

func token(t *testing.T, subject string, role requestcontext.Role) string {
	t.Helper()
	claims := auth.Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	require.NoError(t, err)
	return signed
}

func (s *stack) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeInto[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func createClient(t *testing.T, s *stack, bearer, legalID string) clienthandler.ClientResponse {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/clients", bearer, map[string]any{
		"legal_id":    legalID,
		"full_name":   "Comercial Andes Ltda",
		"person_type": "legal",
		"sector":      "retail",
		"activity":    "casa_de_cambio",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeInto[clienthandler.ClientResponse](t, rr)
}

func TestFlow_RequiresAuth(t *testing.T) {
	s := newStack(t)

	rr := s.do(t, http.MethodGet, "/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Health and metrics stay open.
	rr = s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFlow_RegisterAndClassify(t *testing.T) {
	s := newStack(t)
	operator := token(t, "analyst-1", requestcontext.RoleOperator)

	created := createClient(t, s, operator, "22222222-2")
	assert.Equal(t, "draft", created.State)
	assert.Equal(t, "pending", created.RiskLevel)

	// Current casa_de_cambio limits: 400 units to report, 100 cash. The test
	// unit is worth 1000 CLP.
	rr := s.do(t, http.MethodPost, "/transactions", operator, map[string]any{
		"client_id": created.ID,
		"amount":    "350000",
		"currency":  "CLP",
		"method":    "transfer",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	first := decodeInto[txhandler.RegisterResponse](t, rr)
	assert.Equal(t, "normal", first.Transaction.Classification)
	assert.Equal(t, "350.0000", first.Transaction.AmountUnits)

	// The registration ran the first screening; the case is approved now.
	rr = s.do(t, http.MethodGet, "/clients/"+created.ID, operator, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	refreshed := decodeInto[clienthandler.ClientResponse](t, rr)
	assert.Equal(t, "approved", refreshed.State)
	assert.Equal(t, "low", refreshed.RiskLevel)
	assert.NotNil(t, refreshed.LastScreeningAt)

	// Second transaction pushes the six-month accumulation past 400 units.
	rr = s.do(t, http.MethodPost, "/transactions", operator, map[string]any{
		"client_id": created.ID,
		"amount":    "100000",
		"currency":  "CLP",
		"method":    "transfer",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	second := decodeInto[txhandler.RegisterResponse](t, rr)
	assert.Equal(t, "relevant", second.Transaction.Classification)
	assert.Equal(t, "periodic_report", second.Transaction.Obligation)
	assert.Equal(t, "450.0000", second.AccumulatedUnits)
	require.NotEmpty(t, second.Transaction.Alerts)
	assert.Contains(t, second.Transaction.Alerts[0].LegalBasis, "Ley 19.913")

	// Cash over the ceiling is concerning regardless of accumulation.
	rr = s.do(t, http.MethodPost, "/transactions", operator, map[string]any{
		"client_id": created.ID,
		"amount":    "150000",
		"currency":  "CLP",
		"method":    "efectivo",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	cash := decodeInto[txhandler.RegisterResponse](t, rr)
	assert.Equal(t, "concerning", cash.Transaction.Classification)
	assert.Equal(t, "report_24h", cash.Transaction.Obligation)

	// Risk projection reflects the stored screening.
	rr = s.do(t, http.MethodGet, "/clients/"+created.ID+"/risk", operator, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	risk := decodeInto[clienthandler.RiskResponse](t, rr)
	assert.Equal(t, "low", risk.Level)
	assert.True(t, risk.Approved)
	assert.Contains(t, risk.Sources, "un_sanctions")
}

func TestFlow_DeletionPolicy(t *testing.T) {
	s := newStack(t)
	operator := token(t, "analyst-1", requestcontext.RoleOperator)
	created := createClient(t, s, operator, "22222222-2")

	rr := s.do(t, http.MethodPost, "/transactions", operator, map[string]any{
		"client_id": created.ID,
		"amount":    "50000",
		"currency":  "CLP",
		"method":    "transfer",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	registered := decodeInto[txhandler.RegisterResponse](t, rr)
	txID := registered.Transaction.ID

	// No reason, no deletion.
	rr = s.do(t, http.MethodDelete, "/transactions/"+txID, operator, map[string]any{"reason": ""})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, http.MethodDelete, "/transactions/"+txID, operator, map[string]any{"reason": "operator typo"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// The record survives as soft-deleted.
	rr = s.do(t, http.MethodGet, "/transactions/"+txID, operator, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	deleted := decodeInto[txhandler.TransactionResponse](t, rr)
	assert.NotNil(t, deleted.DeletedAt)

	// And the ledger holds the whole story under the transaction target.
	rr = s.do(t, http.MethodGet, "/audit/transaction/"+txID, operator, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	trail := decodeInto[[]audit.Entry](t, rr)
	require.Len(t, trail, 2)
	assert.Equal(t, audit.ActionTransactionRegistered, trail[0].Action)
	assert.Equal(t, audit.ActionTransactionDeleted, trail[1].Action)
	assert.Equal(t, "operator typo", trail[1].Reason)
	assert.Equal(t, "analyst-1", trail[1].Actor)
}

func TestFlow_BlockAndClear(t *testing.T) {
	s := newStack(t)
	operator := token(t, "analyst-1", requestcontext.RoleOperator)
	officer := token(t, "officer-7", requestcontext.RoleComplianceOfficer)

	created := createClient(t, s, operator, listedLegalID)

	// The registration triggers the screening, hits the blocking list and
	// refuses the transaction.
	rr := s.do(t, http.MethodPost, "/transactions", operator, map[string]any{
		"client_id": created.ID,
		"amount":    "50000",
		"currency":  "CLP",
		"method":    "transfer",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/clients/"+created.ID, operator, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	blocked := decodeInto[clienthandler.ClientResponse](t, rr)
	assert.Equal(t, "suspended", blocked.State)
	assert.Equal(t, "critical", blocked.RiskLevel)

	// Operators cannot clear a block.
	rr = s.do(t, http.MethodPost, "/clients/"+created.ID+"/clear-block", operator,
		map[string]any{"reason": "verified false positive"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// A compliance officer can, with a reason, and the ledger records it.
	rr = s.do(t, http.MethodPost, "/clients/"+created.ID+"/clear-block", officer,
		map[string]any{"reason": "homonym confirmed by registry check"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	cleared := decodeInto[clienthandler.ClientResponse](t, rr)
	assert.Equal(t, "pending_approval", cleared.State)

	trail, err := s.auditStore.ListByTarget(t.Context(), audit.TargetClient, created.ID)
	require.NoError(t, err)
	var actions []audit.Action
	for _, e := range trail {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, audit.ActionClientBlocked)
	assert.Contains(t, actions, audit.ActionBlockCleared)
	for _, e := range trail {
		if e.Action == audit.ActionBlockCleared {
			assert.Equal(t, "officer-7", e.Actor)
			assert.Equal(t, "homonym confirmed by registry check", e.Reason)
		}
	}
}
