package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazyhaar/contact-normalizer/pkg/ingest"
	"github.com/hazyhaar/contact-normalizer/pkg/kit"
	"github.com/hazyhaar/contact-normalizer/pkg/normalize"
)

// RouterOptions configures the HTTP surface around the endpoints.
type RouterOptions struct {
	MaxBodyBytes int64               // JSON bodies and multipart uploads; 0 means 64 MiB
	Gatherer     prometheus.Gatherer // serves /metrics when set
	MCP          http.Handler        // mounted at /mcp when set
}

const defaultMaxBody = 64 << 20

// NewRouter returns an http.Handler with all API routes.
func NewRouter(eps *Endpoints, opts RouterOptions) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}
	mux := http.NewServeMux()
	h := &handler{eps: eps, maxBody: opts.MaxBodyBytes}

	mux.HandleFunc("POST /v1/map", h.handleMap)
	mux.HandleFunc("POST /v1/normalize", h.handleNormalize)
	mux.HandleFunc("POST /v1/import", h.handleImport)
	mux.HandleFunc("POST /v1/export/{format}", h.handleExport)
	mux.HandleFunc("POST /v1/headers", h.handleDescribeHeaders)
	mux.HandleFunc("GET /v1/format/phone", h.handleFormatPhone)
	mux.HandleFunc("GET /v1/format/name", h.handleFormatName)
	mux.HandleFunc("GET /v1/formats", h.handleFormats)
	mux.HandleFunc("GET /v1/presets", h.handlePresets)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if opts.MCP != nil {
		mux.Handle("/mcp", opts.MCP)
	}

	return kit.HTTPRequestID(cors(mux))
}

type handler struct {
	eps     *Endpoints
	maxBody int64
}

func (h *handler) serve(w http.ResponseWriter, r *http.Request, ep kit.Endpoint, req any) {
	resp, err := ep(r.Context(), req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// --- map / normalize ---

func (h *handler) handleMap(w http.ResponseWriter, r *http.Request) {
	var req MapRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.serve(w, r, h.eps.Map, &req)
}

func (h *handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.serve(w, r, h.eps.Normalize, &req)
}

// --- import ---

// handleImport accepts either a multipart form (file field "file", or pasted
// lines in "text") or a JSON ImportRequest.
func (h *handler) handleImport(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req ImportRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}
		h.serve(w, r, h.eps.Import, &req)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeEndpointError(w, &ingest.SizeError{Max: tooBig.Limit})
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := ImportRequest{
		RuleSelector: RuleSelector{Preset: r.FormValue("preset")},
		Encoding:     r.FormValue("encoding"),
		Format:       r.FormValue("format"),
	}
	if v := r.FormValue("rules"); v != "" {
		req.Rules = json.RawMessage(v)
	}
	if v := r.FormValue("normalize"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "normalize must be a boolean")
			return
		}
		req.Normalize = b
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "read upload")
			return
		}
		req.Name, req.Content = header.Filename, data
	case errors.Is(err, http.ErrMissingFile):
		text := r.FormValue("text")
		if strings.TrimSpace(text) == "" {
			writeError(w, http.StatusBadRequest, `missing "file" or "text" field`)
			return
		}
		req.Format, req.Content = ingest.FormatText, []byte(text)
	default:
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}

	h.serve(w, r, h.eps.Import, &req)
}

// --- export ---

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	req.Format = r.PathValue("format")

	resp, err := h.eps.Export(r.Context(), &req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	file := resp.(ExportResponse)
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Body)
}

// --- small lookups ---

func (h *handler) handleDescribeHeaders(w http.ResponseWriter, r *http.Request) {
	var req DescribeHeadersRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.serve(w, r, h.eps.DescribeHeaders, &req)
}

func (h *handler) handleFormatPhone(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.serve(w, r, h.eps.FormatPhone, &FormatPhoneRequest{
		Phone:  q.Get("phone"),
		Format: normalizePhoneToken(q.Get("format")),
	})
}

func (h *handler) handleFormatName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := FormatNameRequest{Name: q.Get("name"), Case: normalize.CaseCapitalize}
	if v := q.Get("case"); v != "" {
		if err := req.Case.UnmarshalText([]byte(v)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if v := q.Get("remove_accents"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid remove_accents %q", v))
			return
		}
		req.RemoveAccents = on
	}
	h.serve(w, r, h.eps.FormatName, &req)
}

func (h *handler) handleFormats(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.Formats, nil)
}

func (h *handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.Presets, nil)
}

// --- health ---

type healthResponse struct {
	Status  string `json:"status"`
	Presets int    `json:"presets"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Presets: h.eps.presets.Count(),
	})
}

// --- helpers ---

// normalizePhoneToken restores '+' that query strings decode as a space.
func normalizePhoneToken(s string) normalize.PhoneFormat {
	if strings.HasPrefix(s, " 55") {
		s = "+" + s[1:]
	}
	return normalize.PhoneFormat(s)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeEndpointError maps endpoint errors to a status. Input errors carry a
// user-facing message next to the technical one.
func writeEndpointError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case ingest.IsInputError(err):
		code := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, ingest.ErrFileTooLarge):
			code = http.StatusRequestEntityTooLarge
		case errors.Is(err, ingest.ErrUnsupportedFormat), errors.Is(err, ingest.ErrLegacyExcel):
			code = http.StatusUnsupportedMediaType
		}
		writeJSON(w, code, errorResponse{Error: err.Error(), Message: ingest.UserMessage(err)})
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+kit.RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, "+kit.RequestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
