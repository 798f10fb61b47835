package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "none.log"), 5)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v, want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text",
			input:    "  not json  ",
			expected: "not json",
		},
		{
			name:     "info with component",
			input:    `{"level":"info","component":"editor","time":"2025-10-08T21:01:05Z","message":"document opened","path":"/tmp/a.pdf","pages":3}`,
			expected: "21:01:05 INFO [editor] document opened pages=3 path=/tmp/a.pdf",
		},
		{
			name:     "warn with error",
			input:    `{"level":"warn","session":"1234","kind":"save","error":"[io] create output: denied","message":"save failed"}`,
			expected: "WARN save failed: [io] create output: denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.input).String()
			if result != tt.expected {
				t.Errorf("Parse().String() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestParseLines_SkipsBlank(t *testing.T) {
	input := []string{
		`{"level":"info","message":"load started"}`,
		"   ",
		`{"level":"info","message":"load completed"}`,
	}
	result := ParseLines(input)
	if len(result) != 2 {
		t.Fatalf("ParseLines() returned %d entries, want 2", len(result))
	}
	if result[1].Message != "load completed" {
		t.Errorf("ParseLines()[1].Message = %q, want %q", result[1].Message, "load completed")
	}
}
