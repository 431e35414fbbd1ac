package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgpulse/internal/contracts"
	"github.com/wonny/esgpulse/internal/pipeline"
	"github.com/wonny/esgpulse/internal/quartile"
	"github.com/wonny/esgpulse/pkg/logger"
)

func testDataset() *contracts.Dataset {
	companies := []contracts.Company{
		{Ticker: "AAA", Name: "AAA Inc.", Sector: "Energy", ESG: contracts.ESGScore{Total: 85}, Quartile: contracts.Q1,
			Metrics: contracts.MetricBundle{AnnualizedReturn: 0.1, RecoveryDays: 10}},
		{Ticker: "BBB", Name: "BBB Inc.", Sector: "Utilities", ESG: contracts.ESGScore{Total: 40}, Quartile: contracts.Q4,
			Metrics: contracts.MetricBundle{AnnualizedReturn: -0.2, RecoveryDays: 30}},
	}
	return &contracts.Dataset{Companies: companies, QuartileMetrics: quartile.Aggregate(companies)}
}

func newTestRouter(t *testing.T) (*mux.Router, string) {
	path := filepath.Join(t.TempDir(), "processed_data.json")
	h := NewDatasetHandler(path, logger.Nop())

	r := mux.NewRouter()
	r.HandleFunc("/api/dataset", h.GetDataset).Methods("GET")
	r.HandleFunc("/api/companies", h.ListCompanies).Methods("GET")
	r.HandleFunc("/api/companies/{ticker}", h.GetCompany).Methods("GET")
	r.HandleFunc("/api/quartiles", h.ListQuartiles).Methods("GET")
	r.HandleFunc("/api/quartiles/{quartile}", h.GetQuartile).Methods("GET")
	return r, path
}

func get(r http.Handler, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestDatasetHandler_NotGenerated(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := get(r, "/api/dataset")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDatasetHandler_Endpoints(t *testing.T) {
	r, path := newTestRouter(t)
	require.NoError(t, pipeline.WriteDataset(path, testDataset()))

	rec := get(r, "/api/dataset")
	require.Equal(t, http.StatusOK, rec.Code)
	var ds contracts.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ds))
	assert.Len(t, ds.Companies, 2)
	assert.Len(t, ds.QuartileMetrics, 4)

	rec = get(r, "/api/companies?quartile=q4")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count     int                 `json:"count"`
		Companies []contracts.Company `json:"companies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "BBB", list.Companies[0].Ticker)

	rec = get(r, "/api/companies?sector=energy")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	assert.Equal(t, http.StatusBadRequest, get(r, "/api/companies?quartile=Q9").Code)

	rec = get(r, "/api/companies/aaa")
	require.Equal(t, http.StatusOK, rec.Code)
	var company contracts.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &company))
	assert.Equal(t, "AAA Inc.", company.Name)

	assert.Equal(t, http.StatusNotFound, get(r, "/api/companies/ZZZ").Code)

	rec = get(r, "/api/quartiles/Q1")
	require.Equal(t, http.StatusOK, rec.Code)
	var bucket QuartileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bucket))
	assert.Equal(t, 1, bucket.Count)
	assert.InDelta(t, 0.1, bucket.Metrics.AnnualizedReturn, 1e-12)

	rec = get(r, "/api/quartiles/Q2")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bucket))
	assert.Equal(t, 0, bucket.Count)
	assert.Equal(t, contracts.QuartileAggregate{}, bucket.Metrics)

	assert.Equal(t, http.StatusBadRequest, get(r, "/api/quartiles/Q5").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/quartiles").Code)
}

func TestDatasetHandler_ReloadsOnChange(t *testing.T) {
	r, path := newTestRouter(t)
	require.NoError(t, pipeline.WriteDataset(path, testDataset()))
	assert.Equal(t, http.StatusOK, get(r, "/api/companies/AAA").Code)

	updated := testDataset()
	updated.Companies = updated.Companies[1:]
	require.NoError(t, pipeline.WriteDataset(path, updated))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.Equal(t, http.StatusNotFound, get(r, "/api/companies/AAA").Code)
}
