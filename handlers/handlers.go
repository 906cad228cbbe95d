// Package handlers provides the HTTP handlers of the medication catalog: the
// Arabic HTML pages rendered with html/template and a small JSON API over the
// same store, with input validation and error handling at every action.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/logging"
	"github.com/giygas/medication-catalog/resolver"
)

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	RespondWithJSON(w, code, errorResponse)
}

// errorStatus maps catalog errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case entities.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the Arabic text shown for an error. Validation messages
// name the offending field by its form label.
func userMessage(err error) string {
	var ve *entities.ValidationError
	switch {
	case errors.As(err, &ve):
		label := ve.Field
		if f, ok := entities.LookupField(ve.Field); ok {
			label = f.Label
		}
		if ve.Message == "is required" {
			return "الحقل مطلوب: " + label
		}
		return "قيمة غير صالحة في الحقل: " + label
	case errors.Is(err, entities.ErrNotFound):
		return "السجل غير موجود"
	case errors.Is(err, entities.ErrInvalidArgument):
		return "طلب غير صالح"
	default:
		return "حدث خطأ في قاعدة البيانات: " + err.Error()
	}
}

// displayValue renders an optional value, or the unspecified marker when it
// is absent or blank.
func displayValue(v any) string {
	switch x := v.(type) {
	case nil:
		return resolver.Unspecified
	case string:
		if strings.TrimSpace(x) == "" {
			return resolver.Unspecified
		}
		return x
	case *string:
		if !entities.HasText(x) {
			return resolver.Unspecified
		}
		return *x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *float64:
		if x == nil {
			return resolver.Unspecified
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case *int64:
		if x == nil {
			return resolver.Unspecified
		}
		return strconv.FormatInt(*x, 10)
	case time.Time:
		if x.IsZero() {
			return resolver.Unspecified
		}
		return x.Format("2006-01-02 15:04")
	}
	return resolver.Unspecified
}

// orDash renders absent reference-table columns as "-".
func orDash(s *string) string {
	if !entities.HasText(s) {
		return "-"
	}
	return *s
}

// kindPaths maps table kinds to their page paths.
var kindPaths = map[entities.Kind]string{
	entities.KindMedication:        "/medications",
	entities.KindCategory:          "/categories",
	entities.KindDrugType:          "/drug-types",
	entities.KindManufacturer:      "/manufacturers",
	entities.KindAgeWeightEstimate: "/age-weight",
}

// kindLabels are the Arabic table names.
var kindLabels = map[entities.Kind]string{
	entities.KindMedication:        "الأدوية",
	entities.KindCategory:          "الفئات",
	entities.KindDrugType:          "الأنواع الدوائية",
	entities.KindManufacturer:      "الشركات المصنعة",
	entities.KindAgeWeightEstimate: "تقديرات العمر والوزن",
}

func kindPath(k entities.Kind) string { return kindPaths[k] }

func kindLabel(k entities.Kind) string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}
