package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded log record.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Err       string
	// Fields holds the remaining key=value pairs sorted by key.
	Fields []string
}

// skipped fields are either shown elsewhere or only useful when grepping.
var skipped = map[string]bool{
	"time": true, "level": true, "message": true, "component": true,
	"error": true, "run": true, "session": true, "kind": true,
}

// Parse decodes a JSON log line. Lines that are not JSON objects come back as
// a plain message.
func Parse(line string) Entry {
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return Entry{Message: strings.TrimSpace(line)}
	}
	e := Entry{
		Level:     str(rec["level"]),
		Component: str(rec["component"]),
		Message:   str(rec["message"]),
		Err:       str(rec["error"]),
	}
	if ts := str(rec["time"]); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Time = t
		}
	}
	for k, v := range rec {
		if skipped[k] {
			continue
		}
		e.Fields = append(e.Fields, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(e.Fields)
	return e
}

// ParseLines decodes each line and drops blank ones.
func ParseLines(lines []string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, Parse(line))
	}
	return out
}

// String renders the entry on one line without styling.
func (e Entry) String() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Format("15:04:05"))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		b.WriteString(strings.ToUpper(e.Level))
		b.WriteByte(' ')
	}
	if e.Component != "" {
		b.WriteString("[" + e.Component + "] ")
	}
	b.WriteString(e.Message)
	if e.Err != "" {
		b.WriteString(": " + e.Err)
	}
	for _, f := range e.Fields {
		b.WriteString(" " + f)
	}
	return b.String()
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
