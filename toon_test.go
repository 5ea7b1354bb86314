package toon

import (
	"strings"
	"testing"
)

// obj builds an insertion-ordered mapping from alternating key/value
// arguments.
func obj(pairs ...Value) *Object {
	o := NewObject()
	for i := 0; i < len(pairs); i += 2 {
		o.Set(pairs[i].(string), pairs[i+1])
	}
	return o
}

func TestEncodeBasicTypes(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"null", nil, "null\n"},
		{"true", true, "true\n"},
		{"false", false, "false\n"},
		{"integer", 42, "42\n"},
		{"float", 3.14, "3.14\n"},
		{"string", "hello", "hello\n"},
		{"string with space", "hello world", "hello world\n"},
		{"empty object", map[string]any{}, "\n"},
		{"empty array", []any{}, "[0]:\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Encode(tt.input)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestEncodeEndToEnd(t *testing.T) {
	input := struct {
		Team  string `json:"team"`
		Flags []bool `json:"flags"`
	}{
		Team:  "platform",
		Flags: []bool{true, false, true},
	}

	result, err := Encode(input)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	expected := "team: platform\nflags[3]: true,false,true\n"
	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	input := map[string]any{
		"name":  "svc",
		"ports": []any{80, 443},
		"meta":  map[string]any{"zone": "eu", "tier": 2},
	}

	first, err := Encode(input)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Encode(input)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if again != first {
			t.Fatalf("Non-deterministic output:\n%q\n%q", first, again)
		}
	}
}

func TestKeyOrder(t *testing.T) {
	t.Run("ordered object keeps insertion order", func(t *testing.T) {
		input := obj("b", 1, "a", 2, "c", 3)
		result, err := Encode(input)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if result != "b: 1\na: 2\nc: 3\n" {
			t.Errorf("Insertion order not preserved: %q", result)
		}
	})

	t.Run("struct keeps declaration order", func(t *testing.T) {
		input := struct {
			Zed   int `json:"zed"`
			Alpha int `json:"alpha"`
		}{1, 2}
		result, err := Encode(input)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if result != "zed: 1\nalpha: 2\n" {
			t.Errorf("Declaration order not preserved: %q", result)
		}
	})

	t.Run("plain map sorts keys", func(t *testing.T) {
		input := map[string]any{"b": 1, "a": 2}
		result, err := Encode(input)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if result != "a: 2\nb: 1\n" {
			t.Errorf("Map keys not sorted: %q", result)
		}
	})
}

func TestTopLevelArrays(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		result, err := Encode([]any{1, 2, 3})
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if result != "[3]: 1,2,3\n" {
			t.Errorf("Expected inline layout, got %q", result)
		}
	})

	t.Run("tabular", func(t *testing.T) {
		input := []any{
			obj("id", 1, "name", "Ada"),
			obj("id", 2, "name", "Lin"),
		}
		result, err := Encode(input)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if result != "[2]{id,name}:\n  1,Ada\n  2,Lin\n" {
			t.Errorf("Expected tabular layout, got %q", result)
		}
	})

	t.Run("divergent key sets fall back to list", func(t *testing.T) {
		input := []any{
			obj("id", 1),
			obj("id", 1, "extra", 2),
		}
		result, err := Encode(input)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if strings.Contains(result, "{") {
			t.Errorf("Expected list layout, got %q", result)
		}
		expected := "[2]:\n  - id: 1\n  - id: 1\n    extra: 2\n"
		if result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
	})
}

func TestTrailingNewlineAndTrim(t *testing.T) {
	result, err := Encode(map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasSuffix(result, "\n") {
		t.Error("Output must end with a newline")
	}
	if strings.HasSuffix(result, "\n\n") {
		t.Error("Output must end with exactly one newline")
	}
	for _, line := range strings.Split(strings.TrimSuffix(result, "\n"), "\n") {
		if strings.TrimRight(line, " \t") != line {
			t.Errorf("Line has trailing whitespace: %q", line)
		}
	}
}
