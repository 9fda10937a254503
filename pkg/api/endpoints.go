// CLAUDE:SUMMARY Transport-agnostic endpoints (map, normalize, import, export, formats, presets, single-field formatting) shared by HTTP, MCP and CLI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/contact-normalizer/pkg/contact"
	"github.com/hazyhaar/contact-normalizer/pkg/export"
	"github.com/hazyhaar/contact-normalizer/pkg/ingest"
	"github.com/hazyhaar/contact-normalizer/pkg/kit"
	"github.com/hazyhaar/contact-normalizer/pkg/mapper"
	"github.com/hazyhaar/contact-normalizer/pkg/normalize"
	"github.com/hazyhaar/contact-normalizer/pkg/preset"
)

// ErrInvalidRequest marks caller mistakes (unknown preset, bad rules, empty
// input). Transports map it to a client error.
var ErrInvalidRequest = errors.New("invalid request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// Config wires the endpoints to their dependencies.
type Config struct {
	Presets        *preset.Registry
	Logger         *slog.Logger
	Metrics        *Metrics // nil disables instrumentation
	MaxUploadBytes int64    // 0 means ingest.DefaultMaxSize
	MaxRows        int      // 0 means unlimited
}

func (c Config) ingestOptions() ingest.Options {
	return ingest.Options{MaxSize: c.MaxUploadBytes, MaxRows: c.MaxRows}
}

// Endpoints are the actions exposed by every transport.
type Endpoints struct {
	Map             kit.Endpoint
	Normalize       kit.Endpoint
	Import          kit.Endpoint
	Export          kit.Endpoint
	Formats         kit.Endpoint
	Presets         kit.Endpoint
	FormatPhone     kit.Endpoint
	FormatName      kit.Endpoint
	DescribeHeaders kit.Endpoint

	presets *preset.Registry
}

// NewEndpoints builds the endpoints, each wrapped with request ids, logging
// and (when configured) metrics.
func NewEndpoints(cfg Config) *Endpoints {
	if cfg.Presets == nil {
		cfg.Presets = preset.NewRegistry("")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		mws := []kit.Middleware{kit.Logging(cfg.Logger, name)}
		if cfg.Metrics != nil {
			mws = append(mws, cfg.Metrics.Middleware(name))
		}
		return kit.Chain(kit.RequestID(), mws...)(ep)
	}
	return &Endpoints{
		Map:             wrap("map", mapEndpoint(cfg)),
		Normalize:       wrap("normalize", normalizeEndpoint(cfg)),
		Import:          wrap("import", importEndpoint(cfg)),
		Export:          wrap("export", exportEndpoint(cfg)),
		Formats:         wrap("formats", formatsEndpoint()),
		Presets:         wrap("presets", presetsEndpoint(cfg.Presets)),
		FormatPhone:     wrap("format_phone", formatPhoneEndpoint()),
		FormatName:      wrap("format_name", formatNameEndpoint()),
		DescribeHeaders: wrap("describe_headers", describeHeadersEndpoint()),
		presets:         cfg.Presets,
	}
}

// RuleSelector picks a preset and optionally overrides some of its rules.
// Overrides use the JSON rule keys; absent keys keep the preset value.
type RuleSelector struct {
	Preset string          `json:"preset,omitempty"`
	Rules  json.RawMessage `json:"rules,omitempty"`
}

func resolveRules(reg *preset.Registry, sel RuleSelector) (normalize.Rules, error) {
	p, ok := reg.Get(sel.Preset)
	if !ok {
		return normalize.Rules{}, invalid("unknown preset %q", sel.Preset)
	}
	rules := p.Rules
	if len(bytes.TrimSpace(sel.Rules)) > 0 && !bytes.Equal(bytes.TrimSpace(sel.Rules), []byte("null")) {
		if err := json.Unmarshal(sel.Rules, &rules); err != nil {
			return normalize.Rules{}, invalid("rules: %v", err)
		}
	}
	if err := rules.Validate(); err != nil {
		return normalize.Rules{}, invalid("%v", err)
	}
	return rules, nil
}

func checkCount(cfg Config, n int) error {
	if cfg.MaxRows > 0 && n > cfg.MaxRows {
		return invalid("too many contacts (max %d, got %d)", cfg.MaxRows, n)
	}
	return nil
}

// --- map ---

// MapRequest carries raw rows, either as a header line plus records or as
// explicit header/value cells.
type MapRequest struct {
	Headers []string     `json:"headers,omitempty"`
	Records [][]string   `json:"records,omitempty"`
	Rows    []mapper.Row `json:"rows,omitempty"`
}

type ContactsResponse struct {
	Contacts []contact.Contact `json:"contacts"`
	Dropped  int               `json:"dropped,omitempty"`
	Rules    *normalize.Rules  `json:"rules,omitempty"`
}

func mapEndpoint(cfg Config) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*MapRequest)
		rows := req.Rows
		if len(req.Records) > 0 {
			if len(req.Headers) == 0 {
				return nil, invalid("records given without headers")
			}
			t := &ingest.Table{Headers: req.Headers, Records: req.Records}
			rows = append(rows, t.Rows()...)
		}
		if err := checkCount(cfg, len(rows)); err != nil {
			return nil, err
		}
		contacts := mapper.MapAll(rows)
		cfg.Metrics.observeContacts("mapped", len(contacts))
		return ContactsResponse{Contacts: contacts, Dropped: len(rows) - len(contacts)}, nil
	}
}

// --- normalize ---

type NormalizeRequest struct {
	RuleSelector
	Contacts []contact.Contact `json:"contacts"`
}

func normalizeEndpoint(cfg Config) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*NormalizeRequest)
		if err := checkCount(cfg, len(req.Contacts)); err != nil {
			return nil, err
		}
		rules, err := resolveRules(cfg.Presets, req.RuleSelector)
		if err != nil {
			return nil, err
		}
		out := normalize.Normalize(req.Contacts, rules)
		cfg.Metrics.observeContacts("normalized", len(out))
		return ContactsResponse{Contacts: out, Rules: &rules}, nil
	}
}

// --- import ---

// ImportRequest is an uploaded file (Name picks the parser unless Format is
// set) or inline Text. Content is base64 in JSON; Text is taken verbatim and
// defaults to the pasted-lines format.
type ImportRequest struct {
	RuleSelector
	Name      string `json:"name,omitempty"`
	Format    string `json:"format,omitempty"`
	Content   []byte `json:"content,omitempty"`
	Text      string `json:"text,omitempty"`
	Encoding  string `json:"encoding,omitempty"`
	Normalize bool   `json:"normalize,omitempty"`
}

// ColumnInfo reports where a source column went.
type ColumnInfo struct {
	Header string `json:"header"`
	Target string `json:"target,omitempty"`
}

type ImportResponse struct {
	Format   string            `json:"format"`
	Columns  []ColumnInfo      `json:"columns"`
	Rows     int               `json:"rows"`
	Contacts []contact.Contact `json:"contacts"`
	Rules    *normalize.Rules  `json:"rules,omitempty"`
}

func importEndpoint(cfg Config) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*ImportRequest)
		opts := cfg.ingestOptions()
		opts.Encoding = req.Encoding

		content, format := req.Content, req.Format
		if len(content) == 0 && req.Text != "" {
			content = []byte(req.Text)
			if format == "" && req.Name == "" {
				format = ingest.FormatText
			}
		}
		if format == "" {
			f, err := ingest.FormatFromName(req.Name)
			if err != nil {
				return nil, err
			}
			format = f
		}
		table, err := ingest.Parse(format, bytes.NewReader(content), opts.ForFile(req.Name))
		if err != nil {
			return nil, err
		}

		resp := ImportResponse{
			Format:   table.Format,
			Columns:  describeColumns(table.Headers),
			Rows:     len(table.Records),
			Contacts: table.Contacts(),
		}
		cfg.Metrics.observeContacts("imported", len(resp.Contacts))

		if req.Normalize {
			rules, err := resolveRules(cfg.Presets, req.RuleSelector)
			if err != nil {
				return nil, err
			}
			resp.Contacts = normalize.Normalize(resp.Contacts, rules)
			resp.Rules = &rules
		}
		return resp, nil
	}
}

func describeColumns(headers []string) []ColumnInfo {
	out := make([]ColumnInfo, len(headers))
	for i, h := range headers {
		out[i] = ColumnInfo{Header: h, Target: mapper.Describe(h)}
	}
	return out
}

// --- export ---

// Export formats.
const (
	ExportCSV  = "csv"
	ExportText = "text"
	ExportXLSX = "xlsx"
)

type ExportRequest struct {
	RuleSelector
	Format    string            `json:"format"`
	Contacts  []contact.Contact `json:"contacts"`
	Normalize bool              `json:"normalize,omitempty"`
}

// ExportResponse is a rendered file. Body is base64 in JSON.
type ExportResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

var exportFormats = map[string]struct {
	filename    string
	contentType string
	write       func(w *bytes.Buffer, c []contact.Contact, r normalize.Rules) error
}{
	ExportCSV: {"contatos-normalizados.csv", "text/csv; charset=utf-8", func(w *bytes.Buffer, c []contact.Contact, r normalize.Rules) error {
		return export.WriteCSV(w, c, r)
	}},
	ExportText: {"contatos-normalizados.txt", "text/plain; charset=utf-8", func(w *bytes.Buffer, c []contact.Contact, r normalize.Rules) error {
		return export.WriteText(w, c, r)
	}},
	ExportXLSX: {"contatos-normalizados.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", func(w *bytes.Buffer, c []contact.Contact, r normalize.Rules) error {
		return export.WriteXLSX(w, c, r)
	}},
}

func exportEndpoint(cfg Config) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*ExportRequest)
		f, ok := exportFormats[strings.ToLower(req.Format)]
		if !ok {
			return nil, invalid("unknown export format %q (csv, text, xlsx)", req.Format)
		}
		if err := checkCount(cfg, len(req.Contacts)); err != nil {
			return nil, err
		}
		rules, err := resolveRules(cfg.Presets, req.RuleSelector)
		if err != nil {
			return nil, err
		}
		contacts := req.Contacts
		if req.Normalize {
			contacts = normalize.Normalize(contacts, rules)
		}

		var buf bytes.Buffer
		if err := f.write(&buf, contacts, rules); err != nil {
			return nil, fmt.Errorf("export %s: %w", req.Format, err)
		}
		cfg.Metrics.observeContacts("exported", len(contacts))
		return ExportResponse{Filename: f.filename, ContentType: f.contentType, Body: buf.Bytes()}, nil
	}
}

// --- formats ---

// sampleMobile is formatted with every token to show the result.
const sampleMobile = "31999998888"

type PhoneFormatInfo struct {
	Token   normalize.PhoneFormat `json:"token"`
	Example string                `json:"example"`
}

type FormatsResponse struct {
	PhoneFormats  []PhoneFormatInfo `json:"phone_formats"`
	CaseModes     []string          `json:"case_modes"`
	ImportFormats []string          `json:"import_formats"`
	ExportFormats []string          `json:"export_formats"`
	Headers       []string          `json:"headers"`
}

func formatsEndpoint() kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		resp := FormatsResponse{
			ImportFormats: []string{ingest.FormatCSV, ingest.FormatXLSX, ingest.FormatText},
			ExportFormats: []string{ExportCSV, ExportText, ExportXLSX},
			Headers:       contact.Headers(),
		}
		for _, f := range normalize.PhoneFormats() {
			resp.PhoneFormats = append(resp.PhoneFormats, PhoneFormatInfo{Token: f, Example: normalize.FormatPhone(sampleMobile, f)})
		}
		for _, m := range []normalize.CaseMode{normalize.CaseNone, normalize.CaseUpper, normalize.CaseLower, normalize.CaseCapitalize} {
			resp.CaseModes = append(resp.CaseModes, m.String())
		}
		return resp, nil
	}
}

// --- presets ---

type PresetsResponse struct {
	Presets []preset.Preset `json:"presets"`
}

func presetsEndpoint(reg *preset.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return PresetsResponse{Presets: reg.List()}, nil
	}
}

// --- single-field formatting ---

type FormatPhoneRequest struct {
	Phone  string                `json:"phone"`
	Format normalize.PhoneFormat `json:"format,omitempty"`
}

type FormatResponse struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

func formatPhoneEndpoint() kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*FormatPhoneRequest)
		format := req.Format
		if format == "" {
			format = normalize.DefaultRules().PhoneFormat
		}
		if !format.Valid() {
			return nil, invalid("unknown phone format %q", format)
		}
		return FormatResponse{Input: req.Phone, Output: normalize.FormatPhone(req.Phone, format)}, nil
	}
}

type FormatNameRequest struct {
	Name          string             `json:"name"`
	Case          normalize.CaseMode `json:"case"`
	RemoveAccents bool               `json:"remove_accents,omitempty"`
}

func formatNameEndpoint() kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*FormatNameRequest)
		r := normalize.Rules{Case: req.Case, RemoveAccents: req.RemoveAccents}
		return FormatResponse{Input: req.Name, Output: normalize.FormatName(req.Name, r)}, nil
	}
}

// --- describe headers ---

type DescribeHeadersRequest struct {
	Headers []string `json:"headers"`
}

type DescribeHeadersResponse struct {
	Columns []ColumnInfo `json:"columns"`
}

func describeHeadersEndpoint() kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*DescribeHeadersRequest)
		if len(req.Headers) == 0 {
			return nil, invalid("headers array is empty")
		}
		return DescribeHeadersResponse{Columns: describeColumns(req.Headers)}, nil
	}
}
