package language

import (
	"slices"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "eng"},
		{"ENG", "eng"},
		{"fre", "fra"},
		{"fra", "fra"},
		{"ger", "deu"},
		{"chi", "zho"},
		{"French", "fra"},
		{"pt-BR", "por"},
		{"en_US", "eng"},
		{"de-CH", "deu"},
		{" eng\u0000", "eng"},
		{"", Undetermined},
		{"und", Undetermined},
		{"not a language", Undetermined},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFromTags(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string
	}{
		{"nil", nil, Undetermined},
		{"lowercase key", map[string]string{"language": "ger"}, "deu"},
		{"uppercase key", map[string]string{"LANGUAGE": "en"}, "eng"},
		{"ietf", map[string]string{"language_ietf": "fr-CA"}, "fra"},
		{"first key wins", map[string]string{"language": "spa", "lang": "eng"}, "spa"},
		{"blank value skipped", map[string]string{"language": " ", "lang": "ita"}, "ita"},
		{"title only", map[string]string{"title": "Commentary"}, Undetermined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromTags(tt.tags); got != tt.want {
				t.Fatalf("FromTags = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"eng": "English",
		"fre": "French",
		"und": "Unknown",
		"":    "Unknown",
		"xyz": "XYZ",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseSet(t *testing.T) {
	set, err := ParseSet([]string{"en,fre", " english ", "", "ger"})
	if err != nil {
		t.Fatalf("ParseSet: %v", err)
	}
	if got, want := set.Codes(), []string{"eng", "fra", "deu"}; !slices.Equal(got, want) {
		t.Fatalf("Codes = %v, want %v", got, want)
	}
	if !set.Contains("en") || !set.Contains("fra") || set.Contains("spa") || set.Contains("und") {
		t.Fatalf("unexpected membership for %v", set.Codes())
	}
}

func TestParseSetRejectsUnknown(t *testing.T) {
	if _, err := ParseSet([]string{"en", "not a language"}); err == nil {
		t.Fatal("expected unknown language to be rejected")
	}
	set, err := ParseSet([]string{"und"})
	if err != nil || !set.Contains("") {
		t.Fatalf("und should be selectable: %v", err)
	}
}

func TestEmptySetMatchesEverything(t *testing.T) {
	var set Set
	if !set.Empty() || !set.Contains("jpn") || !set.Contains("") {
		t.Fatal("zero set should match every language")
	}
}
