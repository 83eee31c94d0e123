package subtitles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sample = "\ufeff1\r\n00:00:01,000 --> 00:00:02,500\r\nHello\r\n\r\n" +
	"2\n00:01:00.250 --> 00:01:02,000 X1:10 X2:20\nTwo\nlines\n\n" +
	"garbage block\n\n" +
	"00:02:00,000 --> 00:02:01,000\nNo index\n"

func TestParse(t *testing.T) {
	cues, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d: %+v", len(cues), cues)
	}
	if cues[0].Index != 1 || cues[0].Start != time.Second || cues[0].End != 2500*time.Millisecond || cues[0].Text != "Hello" {
		t.Fatalf("unexpected first cue %+v", cues[0])
	}
	if cues[1].Start != time.Minute+250*time.Millisecond || cues[1].Text != "Two\nlines" {
		t.Fatalf("unexpected second cue %+v", cues[1])
	}
	if cues[2].Index != 0 || cues[2].Start != 2*time.Minute {
		t.Fatalf("unexpected third cue %+v", cues[2])
	}
}

func TestParseTimestampRejectsMalformed(t *testing.T) {
	for _, value := range []string{"", "00:00:01", "00:01,000", "aa:00:01,000", "00:00:01,1000"} {
		if _, err := parseTimestamp(value); err == nil {
			t.Errorf("parseTimestamp(%q) should fail", value)
		}
	}
}

func TestWriteRenumbersAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	cues := []Cue{
		{Index: 7, Start: 3723004 * time.Millisecond, End: 3724 * time.Second, Text: "Late"},
		{Index: 9, Start: -time.Second, End: 500 * time.Millisecond, Text: "Clamped"},
	}
	if err := WriteFile(path, cues); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "1\n01:02:03,004 --> 01:02:04,000\nLate\n\n2\n00:00:00,000 --> 00:00:00,500\nClamped\n"
	if string(content) != want {
		t.Fatalf("content =\n%q\nwant\n%q", content, want)
	}
	back, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || back[0].Index != 1 || back[0].Start != cues[0].Start {
		t.Fatalf("unexpected round trip %+v", back)
	}
}
