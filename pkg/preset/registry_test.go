package preset

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hazyhaar/contact-normalizer/pkg/normalize"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func setupRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "agenda.yaml", `id: agenda
description: Agenda em maiúsculas
rules:
  phone_format: "(XX) XXXXX-XXXX"
  case: upper
  remove_accents: true
`)
	writeFile(t, dir, "crm.yml", `id: crm
rules:
  phone_format: "XXXXXXXXXXX"
  case: none
  include_address: false
`)
	writeFile(t, dir, "README.md", "not a preset")
	if err := os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(dir)
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return reg, dir
}

func TestRegistryLoad(t *testing.T) {
	reg, dir := setupRegistry(t)

	if reg.Count() != 3 {
		t.Fatalf("Count = %d, want 3", reg.Count())
	}

	p, ok := reg.Get("agenda")
	if !ok {
		t.Fatal("agenda not found")
	}
	if p.Rules.PhoneFormat != normalize.PhoneNational || p.Rules.Case != normalize.CaseUpper || !p.Rules.RemoveAccents {
		t.Errorf("agenda rules = %+v", p.Rules)
	}
	// unspecified keys keep their defaults
	if !p.Rules.CombineNames || !p.Rules.IncludeAddress {
		t.Errorf("agenda defaults lost: %+v", p.Rules)
	}
	if p.Source != filepath.Join(dir, "agenda.yaml") {
		t.Errorf("Source = %q", p.Source)
	}

	crm, _ := reg.Get("crm")
	if crm.Rules.Case != normalize.CaseNone || crm.Rules.IncludeAddress {
		t.Errorf("crm rules = %+v", crm.Rules)
	}
}

func TestRegistryDefault(t *testing.T) {
	reg := NewRegistry("")
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, ok := reg.Get("")
	if !ok || p.ID != DefaultID {
		t.Fatalf("Get(\"\") = %+v, %v", p, ok)
	}
	if p.Rules != normalize.DefaultRules() {
		t.Errorf("default rules = %+v", p.Rules)
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("Get(missing) found a preset")
	}
}

func TestRegistryOverrideDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yaml", "id: default\nrules:\n  case: lower\n")

	reg := NewRegistry(dir)
	if err := reg.Load(); err != nil {
		t.Fatal(err)
	}
	p, _ := reg.Get("")
	if p.Rules.Case != normalize.CaseLower {
		t.Errorf("Case = %s, want lower", p.Rules.Case)
	}
	if reg.Count() != 1 {
		t.Errorf("Count = %d, want 1", reg.Count())
	}
}

func TestRegistryList(t *testing.T) {
	reg, _ := setupRegistry(t)
	list := reg.List()
	var ids []string
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	if strings.Join(ids, ",") != "agenda,crm,default" {
		t.Errorf("List ids = %v", ids)
	}
}

func TestRegistryReload(t *testing.T) {
	reg, dir := setupRegistry(t)

	writeFile(t, dir, "novo.yaml", "id: novo\n")
	if err := reg.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if reg.Count() != 4 {
		t.Errorf("Count after reload = %d, want 4", reg.Count())
	}
}

func TestRegistryReloadKeepsPreviousOnError(t *testing.T) {
	reg, dir := setupRegistry(t)

	writeFile(t, dir, "broken.yaml", "id: broken\nrules:\n  phone_format: \"XX-XX\"\n")
	if err := reg.Reload(); err == nil {
		t.Fatal("expected error for invalid phone format")
	}
	if reg.Count() != 3 {
		t.Errorf("Count = %d, want previous 3", reg.Count())
	}
}

func TestRegistryErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"duplicate id", map[string]string{"a.yaml": "id: x\n", "b.yaml": "id: x\n"}, "defined in both"},
		{"missing id", map[string]string{"a.yaml": "description: sem id\n"}, "ID"},
		{"bad case", map[string]string{"a.yaml": "id: a\nrules:\n  case: shouting\n"}, "case mode"},
		{"bad yaml", map[string]string{"a.yaml": "id: [\n"}, "parse preset"},
		{"slash in id", map[string]string{"a.yaml": "id: a/b\n"}, "ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, body := range tt.files {
				writeFile(t, dir, name, body)
			}
			err := NewRegistry(dir).Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestRegistryMissingDir(t *testing.T) {
	reg := NewRegistry(filepath.Join(t.TempDir(), "nope"))
	if err := reg.Load(); err == nil {
		t.Fatal("expected error for missing dir")
	}
	if _, ok := reg.Get(DefaultID); !ok {
		t.Error("default preset missing after failed load")
	}
}

func TestRegistryConcurrentReads(t *testing.T) {
	reg, _ := setupRegistry(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Get("agenda")
				reg.List()
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.Reload()
		}()
	}
	wg.Wait()
}
