package http

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
)

// DatasetProvider returns the dataset currently served, if any.
type DatasetProvider interface {
	Snapshot() (domain.Dataset, bool)
}

type apiHandler struct {
	datasets DatasetProvider
	logger   *slog.Logger
}

type datasetHandler func(w http.ResponseWriter, r *http.Request, ds domain.Dataset)

// withDataset answers 503 until the first dataset is available.
func (a *apiHandler) withDataset(next datasetHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, ok := a.datasets.Snapshot()
		if !ok {
			writeError(w, http.StatusServiceUnavailable, "dataset not loaded yet")
			return
		}
		next(w, r, ds)
	}
}

type recordsResponse struct {
	Records     []domain.DerivedRecord `json:"records"`
	GeneratedAt string                 `json:"generated_at"`
}

func (a *apiHandler) records(w http.ResponseWriter, r *http.Request, ds domain.Dataset) {
	records := ds.Records
	if label := r.URL.Query().Get("region"); label != "" {
		region, ok := a.lookupRegion(ds, label)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown region: "+label)
			return
		}
		records = domain.RecordsFor(ds.Records, region)
	}
	sharedobs.WriteJSON(w, http.StatusOK, recordsResponse{
		Records:     records,
		GeneratedAt: ds.GeneratedAt.Format(time.RFC3339),
	})
}

func (a *apiHandler) regions(w http.ResponseWriter, _ *http.Request, ds domain.Dataset) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string][]domain.Region{"regions": ds.Regions})
}

func (a *apiHandler) summaries(w http.ResponseWriter, _ *http.Request, ds domain.Dataset) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string][]domain.RegionSummary{"summaries": ds.Summaries})
}

type seriesResponse struct {
	Metric  domain.Metric     `json:"metric"`
	Regions []domain.Region   `json:"regions"`
	Rows    []domain.PivotRow `json:"rows"`
}

func (a *apiHandler) series(w http.ResponseWriter, r *http.Request, ds domain.Dataset) {
	m, err := domain.ParseMetric(r.PathValue("metric"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, seriesResponse{
		Metric:  m,
		Regions: ds.Regions,
		Rows:    domain.Pivot(ds.Records, m),
	})
}

func (a *apiHandler) trend(w http.ResponseWriter, r *http.Request, ds domain.Dataset) {
	labels := r.URL.Query()["region"]
	selected := make([]domain.Region, 0, len(labels))
	for _, label := range labels {
		region, ok := a.lookupRegion(ds, label)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown region: "+label)
			return
		}
		selected = append(selected, region)
	}
	sharedobs.WriteJSON(w, http.StatusOK, domain.Trend(ds.Summaries, selected))
}

// lookupRegion resolves a label to a region present in the dataset.
func (a *apiHandler) lookupRegion(ds domain.Dataset, label string) (domain.Region, bool) {
	region, ok := domain.NormalizeRegion(label)
	if !ok {
		a.logger.Debug("region query not recognized", "label", label)
		return "", false
	}
	return region, slices.Contains(ds.Regions, region)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
