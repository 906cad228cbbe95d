package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/logging"
	"github.com/giygas/medication-catalog/resolver"
	"github.com/giygas/medication-catalog/stats"
)

// medicationRow is one API list entry: the medication plus its resolved
// category label.
type medicationRow struct {
	entities.Medication
	CategoryLabel string `json:"category_label"`
}

// medicationResponse is a single medication with every label resolved.
type medicationResponse struct {
	*entities.Medication
	Labels resolver.Labels `json:"labels"`
}

// respondWithCatalogError maps err to a JSON error body, logging server
// failures.
func respondWithCatalogError(w http.ResponseWriter, action string, err error) {
	code := errorStatus(err)
	if code >= http.StatusInternalServerError {
		logging.Error("API action failed", "action", action, "error", err)
		RespondWithError(w, code, "Internal server error")
		return
	}
	RespondWithError(w, code, err.Error())
}

// APIListMedications returns the medications matching q, category and
// availability, newest first
func (h *HTTPHandlerImpl) APIListMedications(w http.ResponseWriter, r *http.Request) {
	c := criteriaFromQuery(r.URL.Query())

	rows, err := h.filterMedications(r.Context(), c)
	if err != nil {
		if entities.IsValidation(err) {
			logging.Warn("Unusual user input", "q", c.Search, "error", err)
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithCatalogError(w, "list medications", err)
		return
	}

	data := make([]medicationRow, 0, len(rows))
	for _, row := range rows {
		data = append(data, medicationRow{Medication: row.Medication, CategoryLabel: row.CategoryLabel})
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"count": len(data),
		"data":  data,
	})
}

// APIGetMedication returns one medication with its resolved labels
func (h *HTTPHandlerImpl) APIGetMedication(w http.ResponseWriter, r *http.Request) {
	id, err := h.parseID(r)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.store.GetMedication(r.Context(), id)
	if err != nil {
		respondWithCatalogError(w, "get medication", err)
		return
	}

	labels, err := h.resolver.ResolveAll(r.Context(), m)
	if err != nil {
		respondWithCatalogError(w, "get medication", err)
		return
	}

	RespondWithJSON(w, http.StatusOK, medicationResponse{Medication: m, Labels: labels})
}

// APIUpdateMedication applies a partial update. Only the fields present in
// the JSON body are written.
func (h *HTTPHandlerImpl) APIUpdateMedication(w http.ResponseWriter, r *http.Request) {
	id, err := h.parseID(r)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var patch entities.Medication
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	// A present but blank generic_name must be rejected, while an absent one
	// leaves the stored value alone.
	var probe struct {
		GenericName *string `json:"generic_name"`
	}
	_ = json.Unmarshal(body, &probe)
	if probe.GenericName != nil && patch.GenericName == "" {
		respondWithCatalogError(w, "update medication", entities.Required("generic_name"))
		return
	}

	if err := h.store.UpdateMedication(r.Context(), id, &patch); err != nil {
		respondWithCatalogError(w, "update medication", err)
		return
	}
	logging.Info("Medication updated", "id", id)

	m, err := h.store.GetMedication(r.Context(), id)
	if err != nil {
		respondWithCatalogError(w, "update medication", err)
		return
	}
	labels, err := h.resolver.ResolveAll(r.Context(), m)
	if err != nil {
		respondWithCatalogError(w, "update medication", err)
		return
	}

	RespondWithJSON(w, http.StatusOK, medicationResponse{Medication: m, Labels: labels})
}

// APIStatistics returns the distribution counts behind the charts
func (h *HTTPHandlerImpl) APIStatistics(w http.ResponseWriter, r *http.Request) {
	meds, err := h.store.ListMedications(r.Context())
	if err != nil {
		respondWithCatalogError(w, "statistics", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, stats.Summarize(meds))
}

type ageBand struct {
	Band string                       `json:"band"`
	Rows []entities.AgeWeightEstimate `json:"rows"`
}

// APIAgeWeight returns the age/weight table grouped by band
func (h *HTTPHandlerImpl) APIAgeWeight(w http.ResponseWriter, r *http.Request) {
	est, err := h.store.ListAgeWeightEstimates(r.Context())
	if err != nil {
		respondWithCatalogError(w, "age weight", err)
		return
	}

	bands := make([]ageBand, 0, len(entities.AgeBands))
	for _, b := range entities.AgeBands {
		rows := stats.Band(est, b)
		if rows == nil {
			rows = []entities.AgeWeightEstimate{}
		}
		bands = append(bands, ageBand{Band: b, Rows: rows})
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{"bands": bands})
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
}

// HealthCheck reports database health
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.health.HealthCheck(r.Context())
	if httpStatus != http.StatusOK {
		logging.Warn("Health check failed", "status", status)
	}
	RespondWithJSON(w, httpStatus, HealthResponse{Status: status, Data: data})
}
