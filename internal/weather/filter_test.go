package weather

import "testing"

func TestFilterMatches(t *testing.T) {
	rec := Record{City: "Paris", CountryCode: "FR", Timestamp: 100}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"no selection", NewFilter(nil, nil), true},
		{"country hit", NewFilter([]string{"DE", "FR"}, nil), true},
		{"country miss", NewFilter([]string{"DE"}, nil), false},
		{"timestamp hit", NewFilter(nil, []int64{100}), true},
		{"timestamp miss", NewFilter(nil, []int64{200}), false},
		{"both hit", NewFilter([]string{"FR"}, []int64{100, 200}), true},
		{"country hit timestamp miss", NewFilter([]string{"FR"}, []int64{200}), false},
		{"blank countries ignored", NewFilter([]string{"", "  "}, nil), true},
		{"none policy without selection", NewFilter(nil, nil).WithPolicy(ShowNone), false},
		{"none policy with selection", NewFilter([]string{"FR"}, nil).WithPolicy(ShowNone), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(rec); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewFilterCollapsesDuplicates(t *testing.T) {
	f := NewFilter([]string{"FR", "FR", "DE"}, []int64{1, 1, 2, 3})
	if f.CountryCount() != 2 {
		t.Fatalf("expected 2 countries, got %d", f.CountryCount())
	}
	if f.TimestampCount() != 3 {
		t.Fatalf("expected 3 timestamps, got %d", f.TimestampCount())
	}
	if f.IsEmpty() {
		t.Fatalf("expected non-empty filter")
	}
}

func TestParseEmptySelection(t *testing.T) {
	for in, want := range map[string]EmptySelection{"": ShowAll, "all": ShowAll, "NONE": ShowNone, " none ": ShowNone} {
		got, err := ParseEmptySelection(in)
		if err != nil {
			t.Fatalf("ParseEmptySelection(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseEmptySelection(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseEmptySelection("some"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
