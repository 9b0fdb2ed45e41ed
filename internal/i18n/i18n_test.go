package i18n

import (
	"sort"
	"testing"
)

func TestTablesAreSymmetric(t *testing.T) {
	ref := Keys(DefaultLanguage)
	sort.Strings(ref)
	if len(ref) == 0 {
		t.Fatal("default language table is empty")
	}

	for _, lang := range Languages() {
		keys := Keys(lang)
		sort.Strings(keys)
		if len(keys) != len(ref) {
			t.Fatalf("%s table has %d keys, want %d", lang, len(keys), len(ref))
		}
		for i := range ref {
			if keys[i] != ref[i] {
				t.Errorf("%s table: key %q, want %q", lang, keys[i], ref[i])
			}
		}
	}
}

func TestTablesHaveNoEmptyValues(t *testing.T) {
	for _, lang := range Languages() {
		for _, key := range Keys(lang) {
			if Resolve(lang, key) == "" {
				t.Errorf("%s/%s resolves to empty string", lang, key)
			}
		}
	}
}

func TestResolve_UnknownLanguageFallsBack(t *testing.T) {
	got := Resolve("fr", KeyMainMenu)
	want := Resolve(DefaultLanguage, KeyMainMenu)
	if got != want {
		t.Errorf("Resolve(fr) = %q, want default-language %q", got, want)
	}
}

func TestResolve_UnknownKeyReturnsLiteral(t *testing.T) {
	if got := Resolve(LangEN, "no_such_key"); got != "no_such_key" {
		t.Errorf("Resolve unknown key = %q, want key literal", got)
	}
}

func TestKnown(t *testing.T) {
	for _, lang := range Languages() {
		if !Known(lang) {
			t.Errorf("Known(%q) = false", lang)
		}
	}
	if Known("de") {
		t.Error("Known(de) = true")
	}
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"🇷🇺 Русский", LangRU},
		{"русский", LangRU},
		{"🇺🇿 O'zbekcha", LangUZ},
		{"uzbek tili", LangUZ},
		{"🇬🇧 English", LangEN},
		{"ENGLISH please", LangEN},
		// Unmatched input selects the default language, it does not
		// re-prompt.
		{"banana", DefaultLanguage},
		{"", DefaultLanguage},
		{"français", DefaultLanguage},
	}
	for _, tt := range tests {
		if got := MatchLanguage(tt.input); got != tt.want {
			t.Errorf("MatchLanguage(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
