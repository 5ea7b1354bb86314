package toon

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"testing"
	"time"
)

type stringish struct {
	code int
}

func (s stringish) String() string { return "code-42" }

func TestStrictRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
		{"timestamp", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"big integer", big.NewInt(1).Lsh(big.NewInt(1), 80)},
		{"channel", make(chan int)},
		{"function", func() {}},
		{"non-string map keys", map[int]string{1: "a"}},
		{"stringer type", stringish{code: 42}},
		{"absent marker", Absent},
		{"nested inside sequence", []any{1, math.Inf(1)}},
		{"nested inside mapping", map[string]any{"ok": 1, "bad": make(chan int)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.input)
			var ive *InvalidValueError
			if !errors.As(err, &ive) {
				t.Fatalf("Expected *InvalidValueError, got %v", err)
			}
			if ive.Type == "" {
				t.Error("InvalidValueError should name the offending type")
			}

			// The same tree must encode in sanitize mode.
			if _, err := EncodeWithOptions(tt.input, &EncodeOptions{Sanitize: true}); err != nil {
				t.Errorf("Sanitize mode should not fail: %v", err)
			}
		})
	}
}

func TestSanitizeCoercions(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"NaN becomes null", math.NaN(), "null\n"},
		{"infinity becomes null", math.Inf(1), "null\n"},
		{"negative zero becomes zero", math.Copysign(0, -1), "0\n"},
		{"big integer becomes its decimal string", new(big.Int).Lsh(big.NewInt(1), 80), "\"1208925819614629174706176\"\n"},
		{"timestamp becomes RFC 3339", ts, "2024-01-02T03:04:05Z\n"},
		{"function becomes null", func() {}, "null\n"},
		{"channel becomes null", make(chan int), "null\n"},
		{"stringer falls back to its string form", stringish{}, "code-42\n"},
		{"absent in sequence becomes null", []any{Absent}, "[1]: null\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EncodeWithOptions(tt.input, &EncodeOptions{Sanitize: true})
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestSanitizeDropsAbsentFields(t *testing.T) {
	input := map[string]any{
		"a": Absent,
		"b": []any{Absent},
	}
	result, err := EncodeWithOptions(input, &EncodeOptions{Sanitize: true})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	expected := "b[1]: null\n"
	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	input := map[string]any{
		"name":  "svc",
		"nan":   math.NaN(),
		"when":  time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		"gone":  Absent,
		"items": []any{1, Absent, "x", map[string]any{"k": math.Inf(-1)}},
	}

	once, err := Normalize(input, Sanitize)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	twice, err := Normalize(once, Sanitize)
	if err != nil {
		t.Fatalf("Normalize of normalized value failed: %v", err)
	}

	enc1, err := Encode(once)
	if err != nil {
		t.Fatalf("Encode of normalized value failed: %v", err)
	}
	enc2, err := Encode(twice)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if enc1 != enc2 {
		t.Errorf("Normalization not idempotent:\n%q\n%q", enc1, enc2)
	}
}

func TestNormalizeJSONNumber(t *testing.T) {
	t.Run("exact integers stay numeric", func(t *testing.T) {
		result, err := Encode(map[string]any{"n": json.Number("42")})
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if result != "n: 42\n" {
			t.Errorf("Expected %q, got %q", "n: 42\n", result)
		}
	})

	t.Run("oversized integers are big integers", func(t *testing.T) {
		in := map[string]any{"n": json.Number("9007199254740993")}
		_, err := Encode(in)
		var ive *InvalidValueError
		if !errors.As(err, &ive) {
			t.Fatalf("Expected *InvalidValueError, got %v", err)
		}
		result, err := EncodeWithOptions(in, &EncodeOptions{Sanitize: true})
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		// The decimal string reads back as a string, so it is quoted.
		if result != "n: \"9007199254740993\"\n" {
			t.Errorf("Got %q", result)
		}
	})
}

func TestNormalizeStructTags(t *testing.T) {
	type Inner struct {
		City string `json:"city"`
	}
	type outer struct {
		Name    string `json:"name"`
		Skip    string `json:"-"`
		Empty   string `json:"empty,omitempty"`
		Renamed int    `json:"n"`
		Inner
		hidden string
	}

	input := outer{Name: "x", Skip: "nope", Renamed: 7, Inner: Inner{City: "Oslo"}, hidden: "no"}
	result, err := Encode(input)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	expected := "name: x\nn: 7\ncity: Oslo\n"
	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestNormalizePointers(t *testing.T) {
	v := 5
	var nilPtr *int
	input := map[string]any{"p": &v, "q": nilPtr}
	result, err := Encode(input)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if result != "p: 5\nq: null\n" {
		t.Errorf("Got %q", result)
	}
}

func TestNormalizeBytes(t *testing.T) {
	result, err := Encode(map[string]any{"data": []byte("hi")})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if result != "data: aGk=\n" {
		t.Errorf("Expected base64 form, got %q", result)
	}
}
