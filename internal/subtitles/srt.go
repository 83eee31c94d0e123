package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"trackalign/internal/fileutil"
)

// Cue is one subtitle entry.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// ParseFile reads the SRT file at path.
func ParseFile(path string) ([]Cue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes SRT content. Blocks without a valid timing line are skipped.
func Parse(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cues  []Cue
		block []string
	)
	flush := func() {
		if cue, ok := parseBlock(block); ok {
			cues = append(cues, cue)
		}
		block = block[:0]
	}
	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan srt: %w", err)
	}
	flush()
	return cues, nil
}

func parseBlock(lines []string) (Cue, bool) {
	if len(lines) == 0 {
		return Cue{}, false
	}
	var cue Cue
	timing := 0
	if !strings.Contains(lines[0], "-->") {
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil || len(lines) < 2 {
			return Cue{}, false
		}
		cue.Index = index
		timing = 1
	}
	parts := strings.SplitN(lines[timing], "-->", 2)
	if len(parts) != 2 {
		return Cue{}, false
	}
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return Cue{}, false
	}
	// Position hints such as "X1:..." may follow the end timestamp.
	endField := strings.Fields(parts[1])
	if len(endField) == 0 {
		return Cue{}, false
	}
	end, err := parseTimestamp(endField[0])
	if err != nil {
		return Cue{}, false
	}
	cue.Start, cue.End = start, end
	cue.Text = strings.Join(lines[timing+1:], "\n")
	return cue, true
}

func parseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil || millis < 0 || millis > 999 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	return total + time.Duration(millis)*time.Millisecond, nil
}

func formatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Round(time.Millisecond).Milliseconds()
	hours := ms / 3_600_000
	ms %= 3_600_000
	minutes := ms / 60_000
	ms %= 60_000
	seconds := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, ms)
}

// Write encodes cues as SRT, numbering them from 1.
func Write(w io.Writer, cues []Cue) error {
	bw := bufio.NewWriter(w)
	for i, cue := range cues {
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "%d\n%s --> %s\n", i+1, formatTimestamp(cue.Start), formatTimestamp(cue.End))
		if cue.Text != "" {
			bw.WriteString(cue.Text)
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

// WriteFile writes cues to path atomically.
func WriteFile(path string, cues []Cue) error {
	var b strings.Builder
	if err := Write(&b, cues); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, []byte(b.String())); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}
