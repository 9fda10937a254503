package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/contact-normalizer/pkg/api"
	"github.com/hazyhaar/contact-normalizer/pkg/kit"
	"github.com/hazyhaar/contact-normalizer/pkg/preset"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != defaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("addr: \":9000\"\nmax_rows: 500\nlog_level: debug\ntls:\n  http3: true\n"), 0o644)

	cfg, err := loadConfig(path, discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9000" || cfg.MaxRows != 500 || cfg.LogLevel != "debug" || !cfg.TLS.HTTP3 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.PresetsDir != "presets" {
		t.Errorf("PresetsDir = %q, want default kept", cfg.PresetsDir)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("addr: [\n"), 0o644)
	if _, err := loadConfig(bad, discard); err == nil {
		t.Error("expected parse error")
	}

	neg := filepath.Join(dir, "neg.yaml")
	os.WriteFile(neg, []byte("max_upload_bytes: -1\n"), 0o644)
	if _, err := loadConfig(neg, discard); err == nil {
		t.Error("expected error for negative limit")
	}

	half := filepath.Join(dir, "half.yaml")
	os.WriteFile(half, []byte("tls:\n  enabled: true\n  cert_file: cert.pem\n"), 0o644)
	if _, err := loadConfig(half, discard); err == nil {
		t.Error("expected error for cert without key")
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		opts normalizeOptions
		want string
	}{
		{normalizeOptions{}, api.ExportCSV},
		{normalizeOptions{Out: "agenda.XLSX"}, api.ExportXLSX},
		{normalizeOptions{Out: "agenda.txt"}, api.ExportText},
		{normalizeOptions{Out: "agenda.xlsx", Format: "text"}, "text"},
	}
	for _, tt := range tests {
		if got := outputFormat(tt.opts); got != tt.want {
			t.Errorf("outputFormat(%+v) = %q, want %q", tt.opts, got, tt.want)
		}
	}
}

func newTestEndpoints(t *testing.T) *api.Endpoints {
	t.Helper()
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "crm.yaml"), []byte("id: crm\nrules:\n  phone_format: \"XXXXXXXXXXX\"\n  case: upper\n"), 0o644)
	reg := preset.NewRegistry(dir)
	if err := reg.Load(); err != nil {
		t.Fatal(err)
	}
	return api.NewEndpoints(api.Config{Presets: reg, Logger: discard})
}

func TestRunNormalizeText(t *testing.T) {
	eps := newTestEndpoints(t)
	ctx := kit.WithTransport(context.Background(), kit.TransportCLI)
	in := strings.NewReader("joão silva\t(31) 99999-8888\n\nmaria;21 3333-4444\n")

	var out bytes.Buffer
	err := runNormalize(ctx, eps, normalizeOptions{In: "-", InFormat: "text", Format: "text"}, in, &out)
	if err != nil {
		t.Fatal(err)
	}
	want := "Name\tPhone\tEmail\tCompany\n" +
		"João Silva\t+55 (31) 99999-8888\t\t\n" +
		"Maria\t+55 (21) 3333-4444\t\t"
	if out.String() != want {
		t.Errorf("output =\n%q\nwant\n%q", out.String(), want)
	}
}

func TestRunNormalizePresetAndRaw(t *testing.T) {
	eps := newTestEndpoints(t)
	ctx := context.Background()
	csv := "Nome,Telefone\nana souza,+55 31 98888-7777\n"

	var out bytes.Buffer
	if err := runNormalize(ctx, eps, normalizeOptions{In: "-", Preset: "crm", Format: "text"}, strings.NewReader(csv), &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "ANA SOUZA\t31988887777") {
		t.Errorf("preset not applied:\n%s", out.String())
	}

	out.Reset()
	if err := runNormalize(ctx, eps, normalizeOptions{In: "-", Raw: true, Format: "text"}, strings.NewReader(csv), &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "ana souza\t+55 31 98888-7777") {
		t.Errorf("raw output changed values:\n%s", out.String())
	}
}

func TestRunNormalizeToFile(t *testing.T) {
	eps := newTestEndpoints(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "contatos.csv")
	os.WriteFile(in, []byte("First Name,Phone 1 - Value\nJosé,31999998888\n"), 0o644)
	outPath := filepath.Join(dir, "out.csv")

	opts := normalizeOptions{In: in, Out: outPath, Rules: `{"removeAccents":true}`}
	if err := runNormalize(context.Background(), eps, opts, nil, io.Discard); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\uFEFFFirst Name,")) {
		t.Errorf("missing BOM or header: %q", data[:20])
	}
	if !bytes.Contains(data, []byte(`"Jose"`)) || !bytes.Contains(data, []byte(`"+55 (31) 99999-8888"`)) {
		t.Errorf("unexpected csv:\n%s", data)
	}
}

func TestRunNormalizeErrors(t *testing.T) {
	eps := newTestEndpoints(t)
	ctx := context.Background()

	if err := runNormalize(ctx, eps, normalizeOptions{In: "-"}, strings.NewReader(""), io.Discard); err == nil {
		t.Error("expected error for empty input")
	}
	if err := runNormalize(ctx, eps, normalizeOptions{In: "-", Preset: "nope"}, strings.NewReader("Nome\nAna\n"), io.Discard); err == nil {
		t.Error("expected error for unknown preset")
	}
	if err := runNormalize(ctx, eps, normalizeOptions{In: "-", Format: "pdf"}, strings.NewReader("Nome\nAna\n"), io.Discard); err == nil {
		t.Error("expected error for unknown output format")
	}
}
