package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Dan9191/finplan-service/internal/config"
	"github.com/Dan9191/finplan-service/internal/models"
	"github.com/Dan9191/finplan-service/internal/repository"
	"github.com/Dan9191/finplan-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRates struct{ err error }

func (s stubRates) GetReferenceRate(context.Context) (models.ReferenceRate, error) {
	return models.ReferenceRate{KeyRate: 11, LendingRate: 16}, s.err
}

type stubMailer struct{ sentTo string }

func (s *stubMailer) SendCapacityReport(to string, _ models.LoanTerms, _ models.CapacityResult) error {
	s.sentTo = to
	return nil
}

type testServer struct {
	router *mux.Router
	mailer *stubMailer
	token  string
}

func setupServer(t *testing.T, rates service.RateSource) *testServer {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret", SessionTTL: time.Hour, MaxHorizonMonths: 24}
	log, _ := test.NewNullLogger()
	mailer := &stubMailer{}
	svc := service.NewService(repository.NewRepository(), log, cfg, rates, mailer)
	ts := &testServer{router: NewRouter(NewHandler(svc, log), cfg), mailer: mailer}

	rec := ts.do(t, http.MethodPost, "/sessions", "", false)
	require.Equal(t, http.StatusCreated, rec.Code)
	var sess models.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	ts.token = sess.Token
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	ts := setupServer(t, stubRates{})
	rec := ts.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCapacity(t *testing.T) {
	ts := setupServer(t, stubRates{})

	body := `{"profile":{"monthly_revenue":"100000","existing_installment":5000,"other_commitments":2000,
		"surplus_low":15000,"surplus_median":20000,"surplus_high":25000,
		"behaviour":{"gst_on_time_ratio":"n/a"}},
		"terms":{"annual_interest_rate_pct":16,"tenure_months":60}}`
	rec := ts.do(t, http.MethodPost, "/capacity", body, false)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[models.CapacityResult](t, rec)
	assert.Equal(t, 2100.0, res.Survival.Installment)
	assert.Equal(t, 2600.0, res.Operating.Installment)
	assert.Equal(t, 3200.0, res.Stretch.Installment)
	assert.Equal(t, 45, res.BehaviourScore)
	assert.Equal(t, models.RiskRed, res.RiskBand)
}

func TestCapacity_EmptyFormStillRenders(t *testing.T) {
	ts := setupServer(t, stubRates{})

	rec := ts.do(t, http.MethodPost, "/capacity", `{"profile":{"monthly_revenue":true},"terms":{}}`, false)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[models.CapacityResult](t, rec)
	assert.Zero(t, res.Operating.Installment)
	assert.Equal(t, models.RiskRed, res.RiskBand)

	rec = ts.do(t, http.MethodPost, "/capacity", `{not json`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCapacity_LongTenureStaysFinite(t *testing.T) {
	ts := setupServer(t, stubRates{})

	body := `{"profile":{"monthly_revenue":100000,"existing_installment":5000,"other_commitments":2000,
		"surplus_low":15000,"surplus_median":20000,"surplus_high":25000},
		"terms":{"annual_interest_rate_pct":12,"tenure_months":100000}}`
	rec := ts.do(t, http.MethodPost, "/capacity", body, false)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[models.CapacityResult](t, rec)
	assert.Equal(t, 2600.0, res.Operating.Installment)
	assert.InDelta(t, 260000, res.Operating.LoanPrincipal, 1)
}

func TestWriteJSON_EncodingFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"principal": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"response encoding failed"}`, rec.Body.String())
}

func TestCapacityReport(t *testing.T) {
	ts := setupServer(t, stubRates{})

	body := `{"profile":{"monthly_revenue":100000,"surplus_median":20000},"terms":{"tenure_months":12},"email":"owner@shop.test"}`
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPost, "/capacity/report", body, false).Code)

	rec := ts.do(t, http.MethodPost, "/capacity/report", body, true)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "owner@shop.test", ts.mailer.sentTo)

	rec = ts.do(t, http.MethodPost, "/capacity/report", `{"email":"nobody"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReferenceRate(t *testing.T) {
	ts := setupServer(t, stubRates{})
	rec := ts.do(t, http.MethodGet, "/reference-rate", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 16.0, decode[models.ReferenceRate](t, rec).LendingRate)

	down := setupServer(t, stubRates{err: errors.New("offline")})
	assert.Equal(t, http.StatusBadGateway, down.do(t, http.MethodGet, "/reference-rate", "", false).Code)
}

func TestPositionRequiresSession(t *testing.T) {
	ts := setupServer(t, stubRates{})
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/position", "", false).Code)

	rec := ts.do(t, http.MethodGet, "/position", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DefaultDebtPosition(), decode[models.DebtPosition](t, rec))
}

func TestApplyStrategy(t *testing.T) {
	ts := setupServer(t, stubRates{})

	rec := ts.do(t, http.MethodPost, "/position/apply", `{"strategy":"avalanche"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12000.0, decode[models.DebtPosition](t, rec).OD.Balance)

	rec = ts.do(t, http.MethodPost, "/position/apply", `{"strategy":"snowball","target":"OCC"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 22500.0, decode[models.DebtPosition](t, rec).OCC.Balance)

	// the stored position reflects both applications
	pos := decode[models.DebtPosition](t, ts.do(t, http.MethodGet, "/position", "", true))
	assert.Equal(t, 22500.0+12000.0+8000.0, pos.Total())

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/position/apply", `{"strategy":"yolo"}`, true).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/position/apply", `{"strategy":"snowball","target":"card"}`, true).Code)
}

func TestProjection(t *testing.T) {
	ts := setupServer(t, stubRates{})

	rec := ts.do(t, http.MethodGet, "/projection?strategy=avalanche", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	points := decode[[]models.ProjectionPoint](t, rec)
	require.Len(t, points, 6)
	assert.Equal(t, "1M", points[0].Label)
	assert.Equal(t, 46042.0, points[0].TotalBalance)

	// projecting leaves the stored position untouched
	pos := decode[models.DebtPosition](t, ts.do(t, http.MethodGet, "/position", "", true))
	assert.Equal(t, models.DefaultDebtPosition(), pos)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/projection?months=-1", "", true).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/projection?months=99", "", true).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/projection?strategy=hope", "", true).Code)

	rec = ts.do(t, http.MethodGet, "/projections?months=3", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[map[string][]models.ProjectionPoint](t, rec)
	assert.Len(t, all, 4)
	assert.Len(t, all["velocity"], 3)
}

func TestFacilityLedger(t *testing.T) {
	ts := setupServer(t, stubRates{})

	rec := ts.do(t, http.MethodGet, "/facilities/wc/items", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[models.FacilityView](t, rec)
	assert.Equal(t, 8000.0, view.Balance.Balance)
	assert.Len(t, view.Ledger.Debits, 1)

	rec = ts.do(t, http.MethodPost, "/facilities/wc/items/debit", `{"label":"Seasonal stock","amount":"5000"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[models.FlowItem](t, rec)
	assert.Equal(t, 5000.0, item.Amount)

	rec = ts.do(t, http.MethodGet, "/facilities/wc/flow", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	flow := decode[[]models.ProjectionPoint](t, rec)
	// 9000 of outflows against 3000 of inflows
	assert.Equal(t, 2000.0, flow[5].TotalBalance)

	path := "/facilities/wc/items/debit/" + strconv.FormatInt(item.ID, 10)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodPut, path, `{"label":"Stock","amount":1000}`, true).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, path, "", true).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, path, "", true).Code)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/facilities/loan/items", "", true).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/facilities/wc/items/sideways", `{"label":"x"}`, true).Code)
}
