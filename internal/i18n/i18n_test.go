// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.
package i18n

import (
	"io/fs"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestInitAndAvailableLocales(t *testing.T) {
	Init("en")
	if GetLang() != "en" {
		t.Fatalf("expected lang 'en', got %q", GetLang())
	}

	av := GetAvailableLocales()
	if av["en"] != "English" {
		t.Fatalf("unexpected display name for en: %q", av["en"])
	}
	if av["ja"] != "日本語" {
		t.Fatalf("unexpected display name for ja: %q", av["ja"])
	}
	if got := Languages(); len(got) != 2 || got[0] != "en" || got[1] != "ja" {
		t.Fatalf("unexpected languages: %v", got)
	}
}

func TestT_BasicAndFormatting(t *testing.T) {
	Init("en")

	if got := T("auth.verify_prompt"); got != "Master password" {
		t.Fatalf("expected 'Master password', got %q", got)
	}
	if got := T("auth.wrong_password", 2); got != "Wrong password. 2 attempt(s) left." {
		t.Fatalf("unexpected formatted translation: %q", got)
	}
	if got := T("kdbx.success", "out.kdbx", 3); got != "Exported 3 items to out.kdbx." {
		t.Fatalf("unexpected indexed formatting: %q", got)
	}

	SetLang("ja")
	defer Init("en")
	if GetLang() != "ja" {
		t.Fatalf("expected lang 'ja', got %q", GetLang())
	}
	if got := T("prompt.yes"); got != "はい" {
		t.Fatalf("expected Japanese 'はい', got %q", got)
	}
}

func TestT_UnknownIDAndFallback(t *testing.T) {
	Init("fr")
	defer Init("en")

	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("expected id back for unknown message, got %q", got)
	}
	// Unknown languages fall back to English.
	if got := T("prompt.no"); got != "No" {
		t.Fatalf("expected English fallback, got %q", got)
	}
}

func TestLocales_SameKeys(t *testing.T) {
	load := func(name string) map[string]string {
		data, err := fs.ReadFile(localeFS, "locales/"+name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		out := map[string]string{}
		if err := yaml.Unmarshal(data, &out); err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		return out
	}
	en, ja := load("en.yaml"), load("ja.yaml")
	for k := range en {
		if _, ok := ja[k]; !ok {
			t.Errorf("ja.yaml is missing %q", k)
		}
	}
	for k := range ja {
		if _, ok := en[k]; !ok {
			t.Errorf("en.yaml has no %q", k)
		}
	}
}
