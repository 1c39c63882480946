package domain

import "testing"

func TestResolveKey(t *testing.T) {
	tests := []struct {
		home     string
		away     string
		expected MatchKey
	}{
		{"Kilkenny", "Galway", "Kilkenny vs Galway"},
		{"  Dublin ", "Kerry\t", "Dublin vs Kerry"},
		{"St. Finbarr's", "Ballygunner", "St. Finbarr's vs Ballygunner"},
	}

	for _, tt := range tests {
		result := ResolveKey(UpdateRecord{HomeTeam: tt.home, AwayTeam: tt.away})
		if result != tt.expected {
			t.Errorf("ResolveKey(%q, %q) = %q, want %q", tt.home, tt.away, result, tt.expected)
		}
	}
}

func TestResolveKey_OrderSensitive(t *testing.T) {
	ab := ResolveKey(UpdateRecord{HomeTeam: "A", AwayTeam: "B"})
	ba := ResolveKey(UpdateRecord{HomeTeam: "B", AwayTeam: "A"})
	if ab == ba {
		t.Errorf("keys for swapped sides should differ, both are %q", ab)
	}
}

func TestResolveKey_CaseSensitive(t *testing.T) {
	lower := ResolveKey(UpdateRecord{HomeTeam: "dublin", AwayTeam: "kerry"})
	upper := ResolveKey(UpdateRecord{HomeTeam: "Dublin", AwayTeam: "Kerry"})
	if lower == upper {
		t.Errorf("keys should keep case, both are %q", lower)
	}
}

func TestMinuteValue(t *testing.T) {
	if _, ok := (UpdateRecord{}).MinuteValue(); ok {
		t.Fatalf("expected no minute on empty record")
	}
	m, ok := UpdateRecord{Minute: IntPtr(72)}.MinuteValue()
	if !ok || m != 72 {
		t.Fatalf("MinuteValue() = %d, %v, want 72, true", m, ok)
	}
}
