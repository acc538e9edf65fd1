package factid

import (
	"errors"
	"testing"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/freeze"
)

func TestNormalizeKey_Aliases(t *testing.T) {
	reg := freeze.NewRegistry()

	tests := []struct {
		raw  string
		want string
	}{
		{"Kaltmiete", "rent_cold"},
		{"nettokaltmiete", "rent_cold"},
		{"Grundmiete", "rent_cold"},
		{"Warmmiete", "rent_warm"},
		{"Nebenkosten", "operating_costs"},
		{"Kaution", "deposit"},
		{"Wohnfläche", "area_sqm"},
		{"rent_cold", "rent_cold"},
		{"Rent Cold", "rent_cold"},
		{"rent-cold", "rent_cold"},
	}

	for _, tt := range tests {
		got, err := NormalizeKey(tt.raw, domain.FactMeta{}, reg, KeyOptions{})
		if err != nil {
			t.Errorf("NormalizeKey(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeKey_RejectsUnknown(t *testing.T) {
	reg := freeze.NewRegistry()

	_, err := NormalizeKey("favorite_color", domain.FactMeta{}, reg, KeyOptions{})
	if !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}

	_, err = NormalizeKey("", domain.FactMeta{}, reg, KeyOptions{})
	if !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
}

func TestNormalizeKey_SystemTagged(t *testing.T) {
	reg := freeze.NewRegistry()

	got, err := NormalizeKey("Sys::Import_Batch", domain.FactMeta{}, reg, KeyOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "sys::import_batch" {
		t.Errorf("system key = %q, want lowercased passthrough", got)
	}

	_, err = NormalizeKey("plugin::anything", domain.FactMeta{}, reg, KeyOptions{})
	if !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected unknown namespace to be rejected, got %v", err)
	}
}

func TestNormalizeKey_Strict(t *testing.T) {
	reg := freeze.NewRegistry()

	// Alias rewrite is rejected in strict mode.
	_, err := NormalizeKey("Kaltmiete", domain.FactMeta{}, reg, KeyOptions{Strict: true})
	if !errors.Is(err, ErrKeyRewritten) {
		t.Errorf("expected ErrKeyRewritten, got %v", err)
	}

	// Case-only difference is not a rewrite.
	got, err := NormalizeKey("Rent_Cold", domain.FactMeta{}, reg, KeyOptions{Strict: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "rent_cold" {
		t.Errorf("got %q, want rent_cold", got)
	}

	// System-tagged keys are exempt.
	if _, err := NormalizeKey("sys::import_batch", domain.FactMeta{System: true}, reg, KeyOptions{Strict: true}); err != nil {
		t.Errorf("system key should pass strict mode: %v", err)
	}
}

func TestNormalizeValue_GermanLocale(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.200,50 €", 1200.5},
		{"1.200,50", 1200.5},
		{"900", 900},
		{"12,5 %", 12.5},
		{"1.200", 1200},
		{"-50,25", -50.25},
	}

	for _, tt := range tests {
		got, err := NormalizeValue(tt.in, "de-DE")
		if err != nil {
			t.Errorf("NormalizeValue(%q) error: %v", tt.in, err)
			continue
		}
		f, ok := got.(float64)
		if !ok || f != tt.want {
			t.Errorf("NormalizeValue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeValue_EnglishLocale(t *testing.T) {
	got, err := NormalizeValue("1,200.50", "en-US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f, ok := got.(float64); !ok || f != 1200.5 {
		t.Errorf("got %v, want 1200.5", got)
	}
}

func TestNormalizeValue_ProsePassesThrough(t *testing.T) {
	got, err := NormalizeValue("  Mietvertrag ab Januar  ", "de-DE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Mietvertrag ab Januar" {
		t.Errorf("got %q, want trimmed prose", got)
	}
}

func TestNormalizeValue_IdentifiersStayStrings(t *testing.T) {
	// Phone-like strings must not be reinterpreted as amounts.
	for _, in := range []string{"030123456", "+49 171 2345678"} {
		got, err := NormalizeValue(in, "de-DE")
		if err != nil {
			t.Fatalf("NormalizeValue(%q) error: %v", in, err)
		}
		if _, ok := got.(float64); ok {
			t.Errorf("NormalizeValue(%q) became a number, want string", in)
		}
	}
}

func TestNormalizeValue_RejectsImplausible(t *testing.T) {
	_, err := NormalizeValue("1,2,3,4", "de-DE")
	if !errors.Is(err, ErrImplausibleNumber) {
		t.Errorf("expected ErrImplausibleNumber, got %v", err)
	}
}

func TestNormalizeValue_Recursive(t *testing.T) {
	in := map[string]any{
		"betrag": "1.200,50 €",
		"posten": []any{"Miete", "100,00"},
	}
	got, err := NormalizeValue(in, "de-DE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := got.(map[string]any)
	if m["betrag"] != 1200.5 {
		t.Errorf("betrag = %v, want 1200.5", m["betrag"])
	}
	items := m["posten"].([]any)
	if items[0] != "Miete" || items[1] != 100.0 {
		t.Errorf("posten = %v", items)
	}
}

func TestStableSerialize_KeyOrder(t *testing.T) {
	a := map[string]any{"b": 2.0, "a": 1.0}
	b := map[string]any{"a": 1.0, "b": 2.0}
	if StableSerialize(a) != StableSerialize(b) {
		t.Error("serialization must be independent of map construction order")
	}
}

func TestStableSerialize_Rounding(t *testing.T) {
	if StableSerialize(0.1+0.2) != StableSerialize(0.3) {
		t.Errorf("6-decimal rounding should collapse float noise: %s vs %s",
			StableSerialize(0.1+0.2), StableSerialize(0.3))
	}
	if StableSerialize(1200.5) != StableSerialize(float32(1200.5)) {
		t.Error("float32 and float64 of the same value should serialize alike")
	}
}

func TestStableSerialize_Specials(t *testing.T) {
	if StableSerialize(nil) != "null" {
		t.Error("nil should serialize as null")
	}
	nan := 0.0
	nan = nan / nan
	if StableSerialize(nan) != "null" {
		t.Error("NaN should serialize as null")
	}
	if StableSerialize("  hi  ") != `"hi"` {
		t.Error("strings should be trimmed")
	}
}

func TestBuildFactID_LocaleEquivalence(t *testing.T) {
	entityID := "e1"

	vDe, err := NormalizeValue("1.200,50 €", "de-DE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idA := BuildFactID(entityID, "rent_cold", vDe, false, nil)
	idB := BuildFactID(entityID, "rent_cold", 1200.5, false, nil)
	if idA != idB {
		t.Errorf("locale-equivalent values must share one id: %s != %s", idA, idB)
	}
}

func TestBuildFactID_LatestIgnoresValue(t *testing.T) {
	a := BuildFactID("e1", "rent_cold", 900.0, true, nil)
	b := BuildFactID("e1", "rent_cold", 1000.0, true, nil)
	if a != b {
		t.Error("latest facts must share one value-independent id")
	}

	c := BuildFactID("e1", "rent_cold", 900.0, false, nil)
	d := BuildFactID("e1", "rent_cold", 1000.0, false, nil)
	if c == d {
		t.Error("non-latest facts with different values must differ")
	}
}

func TestBuildFactID_ValidityWindow(t *testing.T) {
	a := BuildFactID("e1", "rent_cold", 900.0, false, nil)
	b := BuildFactID("e1", "rent_cold", 900.0, false, &domain.Validity{From: "2024-01-01"})
	if a == b {
		t.Error("validity window must participate in identity")
	}
}
