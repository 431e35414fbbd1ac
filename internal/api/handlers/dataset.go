package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/esgpulse/internal/contracts"
	"github.com/wonny/esgpulse/internal/pipeline"
	"github.com/wonny/esgpulse/pkg/logger"
)

// DatasetHandler serves the processed dataset file. The file is re-read
// whenever its modification time changes, so a pipeline run is picked up
// without a restart.
// ⭐ SSOT: dataset API handlers live in this struct
type DatasetHandler struct {
	path   string
	logger *logger.Logger

	mu      sync.RWMutex
	dataset *contracts.Dataset
	modTime time.Time
}

// NewDatasetHandler creates a handler over the dataset JSON at path
func NewDatasetHandler(path string, log *logger.Logger) *DatasetHandler {
	return &DatasetHandler{
		path:   path,
		logger: log,
	}
}

// errNoDataset is returned before the first pipeline run
var errNoDataset = errors.New("dataset not generated yet")

// current returns the latest dataset, reloading the file when it changed
func (h *DatasetHandler) current() (*contracts.Dataset, error) {
	info, err := os.Stat(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNoDataset
	}
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	if h.dataset != nil && info.ModTime().Equal(h.modTime) {
		ds := h.dataset
		h.mu.RUnlock()
		return ds, nil
	}
	h.mu.RUnlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	ds, err := pipeline.ReadDataset(h.path)
	if err != nil {
		return nil, err
	}
	h.dataset = ds
	h.modTime = info.ModTime()

	h.logger.WithFields(map[string]interface{}{
		"path":      h.path,
		"companies": len(ds.Companies),
	}).Info("Dataset loaded")

	return ds, nil
}

// load writes an error response and returns nil when no dataset is available
func (h *DatasetHandler) load(w http.ResponseWriter) *contracts.Dataset {
	ds, err := h.current()
	if errors.Is(err, errNoDataset) {
		respondError(w, http.StatusServiceUnavailable, "Dataset not generated yet, run `esgpulse process`")
		return nil
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load dataset")
		respondError(w, http.StatusInternalServerError, "Failed to load dataset")
		return nil
	}
	return ds
}

// GetDataset returns the whole dataset document
// GET /api/dataset
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds := h.load(w)
	if ds == nil {
		return
	}

	respondJSON(w, http.StatusOK, ds)
}

// ListCompanies returns companies, optionally filtered by ?sector= and ?quartile=
// GET /api/companies
func (h *DatasetHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	ds := h.load(w)
	if ds == nil {
		return
	}

	sectorFilter := r.URL.Query().Get("sector")
	quartileFilter := strings.ToUpper(r.URL.Query().Get("quartile"))
	if quartileFilter != "" && !validQuartile(quartileFilter) {
		respondError(w, http.StatusBadRequest, "Invalid quartile (expected Q1-Q4)")
		return
	}

	companies := make([]contracts.Company, 0, len(ds.Companies))
	for _, c := range ds.Companies {
		if sectorFilter != "" && !strings.EqualFold(c.Sector, sectorFilter) {
			continue
		}
		if quartileFilter != "" && string(c.Quartile) != quartileFilter {
			continue
		}
		companies = append(companies, c)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(companies),
		"companies": companies,
	})
}

// GetCompany returns one company by ticker
// GET /api/companies/{ticker}
func (h *DatasetHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	ds := h.load(w)
	if ds == nil {
		return
	}

	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	company, ok := ds.FindCompany(ticker)
	if !ok {
		respondError(w, http.StatusNotFound, "Company not found: "+ticker)
		return
	}

	respondJSON(w, http.StatusOK, company)
}

// ListQuartiles returns the per-quartile aggregates
// GET /api/quartiles
func (h *DatasetHandler) ListQuartiles(w http.ResponseWriter, r *http.Request) {
	ds := h.load(w)
	if ds == nil {
		return
	}

	respondJSON(w, http.StatusOK, ds.QuartileMetrics)
}

// QuartileResponse is one bucket with its aggregate and members
type QuartileResponse struct {
	Quartile  contracts.Quartile          `json:"quartile"`
	Metrics   contracts.QuartileAggregate `json:"metrics"`
	Count     int                         `json:"count"`
	Companies []contracts.Company         `json:"companies"`
}

// GetQuartile returns one bucket
// GET /api/quartiles/{quartile}
func (h *DatasetHandler) GetQuartile(w http.ResponseWriter, r *http.Request) {
	q := strings.ToUpper(mux.Vars(r)["quartile"])
	if !validQuartile(q) {
		respondError(w, http.StatusBadRequest, "Invalid quartile (expected Q1-Q4)")
		return
	}

	ds := h.load(w)
	if ds == nil {
		return
	}

	quartile := contracts.Quartile(q)
	companies := ds.CompaniesIn(quartile)

	respondJSON(w, http.StatusOK, QuartileResponse{
		Quartile:  quartile,
		Metrics:   ds.QuartileMetrics[quartile],
		Count:     len(companies),
		Companies: companies,
	})
}

func validQuartile(q string) bool {
	for _, known := range contracts.Quartiles {
		if string(known) == q {
			return true
		}
	}
	return false
}
