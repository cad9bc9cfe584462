package typeid

import (
	"strings"
	"testing"
)

func TestNewCarriesPrefix(t *testing.T) {
	cases := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"user", NewUserID, PrefixUser},
		{"layout", NewLayoutID, PrefixLayout},
		{"placement", NewPlacementID, PrefixPlacement},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := tc.gen()
			if !strings.HasPrefix(id, tc.prefix+"_") {
				t.Fatalf("id %q does not start with %q", id, tc.prefix+"_")
			}
			if err := Validate(id, tc.prefix); err != nil {
				t.Fatalf("Validate(%q): %v", id, err)
			}
		})
	}
}

func TestValidateRejectsWrongPrefix(t *testing.T) {
	id := NewLayoutID()
	if err := Validate(id, PrefixPlacement); err == nil {
		t.Fatalf("expected prefix mismatch error for %q", id)
	}
	if err := Validate("not-an-id", PrefixLayout); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewPlacementID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
