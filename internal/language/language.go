package language

import (
	"fmt"
	"slices"
	"strings"

	xlang "golang.org/x/text/language"
)

// Undetermined is the ISO 639-2 code of an unknown language.
const Undetermined = "und"

type entry struct {
	iso1    string
	iso3    string
	alt3    string // bibliographic variant, e.g. "fre" for "fra"
	display string
}

// Languages commonly found on release audio and subtitle streams. Codes not
// listed here still resolve through golang.org/x/text.
var known = []entry{
	{"en", "eng", "", "English"},
	{"es", "spa", "", "Spanish"},
	{"fr", "fra", "fre", "French"},
	{"de", "deu", "ger", "German"},
	{"it", "ita", "", "Italian"},
	{"pt", "por", "", "Portuguese"},
	{"ja", "jpn", "", "Japanese"},
	{"ko", "kor", "", "Korean"},
	{"zh", "zho", "chi", "Chinese"},
	{"ru", "rus", "", "Russian"},
	{"ar", "ara", "", "Arabic"},
	{"hi", "hin", "", "Hindi"},
	{"nl", "nld", "dut", "Dutch"},
	{"pl", "pol", "", "Polish"},
	{"sv", "swe", "", "Swedish"},
	{"da", "dan", "", "Danish"},
	{"no", "nor", "", "Norwegian"},
	{"fi", "fin", "", "Finnish"},
}

var index = func() map[string]*entry {
	m := make(map[string]*entry, len(known)*4)
	for i := range known {
		e := &known[i]
		for _, key := range []string{e.iso1, e.iso3, e.alt3, strings.ToLower(e.display)} {
			if key != "" {
				m[key] = e
			}
		}
	}
	return m
}()

// tagKeys are the stream tag names checked for a language, in order.
var tagKeys = []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}

// Normalize maps a language code, English name or BCP 47 tag to ISO 639-2.
// Anything unrecognized yields Undetermined.
func Normalize(value string) string {
	code := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(value, "\u0000", "")))
	if code == "" || code == Undetermined {
		return Undetermined
	}
	if e, ok := index[code]; ok {
		return e.iso3
	}
	tag, err := xlang.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return Undetermined
	}
	base, confidence := tag.Base()
	if confidence == xlang.No {
		return Undetermined
	}
	if e, ok := index[base.String()]; ok {
		return e.iso3
	}
	return base.ISO3()
}

// FromTags returns the normalized language of a stream's metadata tags.
func FromTags(tags map[string]string) string {
	for _, key := range tagKeys {
		if value := strings.TrimSpace(strings.ReplaceAll(tags[key], "\u0000", "")); value != "" {
			return Normalize(value)
		}
	}
	return Undetermined
}

// DisplayName returns a human-readable name for a normalized code.
func DisplayName(code string) string {
	if e, ok := index[strings.ToLower(strings.TrimSpace(code))]; ok {
		return e.display
	}
	if code = strings.TrimSpace(code); code == "" || code == Undetermined {
		return "Unknown"
	}
	return strings.ToUpper(code)
}

// Set filters tracks by language. The zero Set matches every language.
type Set struct {
	codes []string
}

// ParseSet builds a Set from user input. Values may be comma separated; an
// unrecognized language is an error.
func ParseSet(values []string) (Set, error) {
	var s Set
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			code := Normalize(part)
			if code == Undetermined && !strings.EqualFold(part, Undetermined) {
				return Set{}, fmt.Errorf("unknown language %q", part)
			}
			if !slices.Contains(s.codes, code) {
				s.codes = append(s.codes, code)
			}
		}
	}
	return s, nil
}

// Empty reports whether the set matches everything.
func (s Set) Empty() bool {
	return len(s.codes) == 0
}

// Contains reports whether code is selected.
func (s Set) Contains(code string) bool {
	return s.Empty() || slices.Contains(s.codes, Normalize(code))
}

// Codes returns the selected ISO 639-2 codes in input order.
func (s Set) Codes() []string {
	return slices.Clone(s.codes)
}
