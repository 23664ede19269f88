package node

import (
	"errors"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	cases := map[string]string{
		"":                                        "",
		`{"a":1}`:                                 `{"a":1}`,
		"```json\n{\"a\":1}\n```":                 `{"a":1}`,
		`Here you go: {"a":{"b":2}} hope it helps`: `{"a":{"b":2}}`,
		`[1,2,3] trailing`:                        `[1,2,3]`,
	}
	for in, want := range cases {
		if got := ExtractJSONObject(in); got != want {
			t.Errorf("ExtractJSONObject(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeJSONObject(t *testing.T) {
	var out struct {
		Title string `json:"title"`
	}
	if err := DecodeJSONObject("prefix {\"title\":\"Mars\"} suffix", &out); err != nil {
		t.Fatalf("DecodeJSONObject: %v", err)
	}
	if out.Title != "Mars" {
		t.Fatalf("title = %q", out.Title)
	}
	if err := DecodeJSONObject("no json at all", &out); err == nil {
		t.Fatal("expected error for non-json body")
	}
	if err := DecodeJSONObject("  ", &out); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestIsResponseFormatUnsupportedError(t *testing.T) {
	if IsResponseFormatUnsupportedError(nil) {
		t.Error("nil error")
	}
	if !IsResponseFormatUnsupportedError(errors.New("400: Unknown parameter: response_format")) {
		t.Error("response_format rejection not detected")
	}
	if IsResponseFormatUnsupportedError(errors.New("connection reset by peer")) {
		t.Error("transport error misclassified")
	}
}
