package rubric

import (
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
		err   bool
	}{
		{"core", Core, false},
		{"Foundation", Foundation, false},
		{"  PEAK  ", Peak, false},
		{"senior", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("ParseLevel(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEveryLevelHasCategories(t *testing.T) {
	for _, l := range AllLevels() {
		cats := Categories(l)
		if len(cats) == 0 {
			t.Errorf("level %s has no categories", l)
		}
		seen := map[string]bool{}
		for _, c := range cats {
			if c.ID == "" || c.Name == "" || c.Description == "" {
				t.Errorf("level %s: incomplete category %+v", l, c)
			}
			if seen[c.ID] {
				t.Errorf("level %s: duplicate category id %q", l, c.ID)
			}
			seen[c.ID] = true
		}
	}
}

func TestHas(t *testing.T) {
	if !Has(Core, "technical-craft") {
		t.Error("expected technical-craft to be valid for core")
	}
	if Has(Foundation, "technical-craft") {
		t.Error("technical-craft should not be valid for foundation")
	}
	if Has(Core, "") {
		t.Error("empty id should never be valid")
	}
}

func TestPromptTextListsAllIDs(t *testing.T) {
	text := PromptText(Peak)
	for _, id := range CategoryIDs(Peak) {
		if !strings.Contains(text, id) {
			t.Errorf("prompt text missing category id %q", id)
		}
	}
}
