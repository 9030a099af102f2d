package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"colmap-service/internal/config"
	"colmap-service/internal/fileio"
	"colmap-service/internal/mapping/model"
	mapsvc "colmap-service/internal/mapping/service"
)

// valueErrorLimit bounds the per-response validation noise; a broken
// export can fail on every single cell.
const valueErrorLimit = 100

type mapResponse struct {
	Results     []model.MappingResult `json:"results"`
	Unmapped    []string              `json:"unmapped"`
	Warnings    []string              `json:"warnings"`
	ValueErrors []string              `json:"value_errors,omitempty"`
	Statistics  model.Statistics      `json:"statistics"`
	Headers     int                   `json:"headers"`
	Rows        int                   `json:"rows"`
}

// MapColumns returns the handler for POST /map: read the uploaded
// spreadsheet, resolve its header row against the mapping configuration,
// and report the mapping decisions plus every visible gap.
func MapColumns(cfg config.Config, mapping *model.Configuration, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log := logger
		if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
			log = logger.With().Str("req_id", reqID).Logger()
		}

		defer r.Body.Close()
		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		headerRow := atoi(r.FormValue("header_row"), 1)
		headers, rows, err := fileio.ReadTable(file, header.Filename, headerRow)
		if err != nil {
			http.Error(w, "failed to read table: "+err.Error(), http.StatusBadRequest)
			return
		}

		minConfidence := toFloat(r.FormValue("min_confidence"), cfg.MinConfidence)

		// one mapper per request: the fuzzy cache and index are private
		// per-task state, so concurrent uploads never contend
		mapper, err := mapsvc.NewWithConfidence(mapping, minConfidence, log)
		if err != nil {
			log.Error().Err(err).Msg("mapping configuration rejected")
			http.Error(w, "mapping configuration error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		scope, ok := parseScope(r.FormValue("doc_type"))
		if !ok {
			http.Error(w, "unknown doc_type: "+r.FormValue("doc_type"), http.StatusBadRequest)
			return
		}

		var results []model.MappingResult
		if scope != "" {
			results = mapper.MapColumnsForType(headers, scope)
		} else {
			results = mapper.MapColumns(headers)
		}

		resp := mapResponse{
			Results:  results,
			Unmapped: unmappedHeaders(headers, results),
			Warnings: mapper.ValidateRequiredMappings(results),
			Headers:  len(headers),
			Rows:     len(rows),
		}
		if toBool(r.FormValue("validate_values"), false) {
			resp.ValueErrors = validateValues(mapper, results, rows)
		}
		resp.Statistics = mapper.Statistics()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}

		log.Info().
			Str("file", header.Filename).
			Int("headers", len(headers)).
			Int("mapped", len(results)).
			Int("unmapped", len(resp.Unmapped)).
			Dur("elapsed", time.Since(start)).
			Msg("columns mapped")
	}
}

func unmappedHeaders(headers []string, results []model.MappingResult) []string {
	mapped := make(map[string]struct{}, len(results))
	for _, r := range results {
		mapped[r.SourceColumn] = struct{}{}
	}
	unmapped := make([]string, 0)
	for _, h := range headers {
		if _, ok := mapped[h]; !ok {
			unmapped = append(unmapped, h)
		}
	}
	return unmapped
}

// validateValues runs every mapped column's cell values through its
// field's validation rule, capped so pathological files stay readable.
func validateValues(mapper *mapsvc.ColumnMapper, results []model.MappingResult, rows []map[string]string) []string {
	var errs []string
	for _, res := range results {
		if res.Validation == "" {
			continue
		}
		for _, row := range rows {
			value, ok := row[res.SourceColumn]
			if !ok {
				continue
			}
			errs = append(errs, mapper.ValidateFieldValue(res.TargetField, value)...)
			if len(errs) >= valueErrorLimit {
				return errs[:valueErrorLimit]
			}
		}
	}
	return errs
}

func parseScope(s string) (model.SourceType, bool) {
	switch s {
	case "":
		return "", true
	case string(model.SourceInventory):
		return model.SourceInventory, true
	case string(model.SourcePoam):
		return model.SourcePoam, true
	case string(model.SourceSspSection):
		return model.SourceSspSection, true
	case string(model.SourceControl):
		return model.SourceControl, true
	case string(model.SourceDocument):
		return model.SourceDocument, true
	default:
		return "", false
	}
}
