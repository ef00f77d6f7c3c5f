package main

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIndent(t *testing.T) {
	got, err := indent(json.RawMessage(`{"voice":"en_us_001","tags":[1,2]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"voice\": \"en_us_001\",\n  \"tags\": [\n    1,\n    2\n  ]\n}"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if _, err := indent(json.RawMessage(`{`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
