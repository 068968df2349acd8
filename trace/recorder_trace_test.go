//go:build trace

package trace_test

import (
	"encoding/json"
	"testing"

	"github.com/idobenamram/spicy-sub001/trace"
)

func TestRecorderFlushEmitsSteps(t *testing.T) {
	r := trace.NewRecorder()
	r.SetInitial("q_col", []int{0, 1, 2})
	r.PushArrayStep("q_col", []int{1, 2, 0})
	r.PushNumberStep("n_matches", 3)
	r.PushStep(42, "match")

	raw, err := r.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var decoded struct {
		Initial map[string]interface{} `json:"initial"`
		Steps   []struct {
			Type  string  `json:"type"`
			Label string  `json:"label"`
			Array []int   `json:"array"`
			Value float64 `json:"value"`
			Line  int     `json:"line"`
			Event string  `json:"event"`
		} `json:"steps"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded.Steps) != 3 {
		t.Fatalf("got %d steps, want 3", len(decoded.Steps))
	}
	if decoded.Steps[0].Type != "array" || decoded.Steps[1].Type != "number" || decoded.Steps[2].Type != "step" {
		t.Fatalf("unexpected step types: %+v", decoded.Steps)
	}
	if len(decoded.Initial) != 1 {
		t.Fatalf("expected 1 initial key, got %d: %+v", len(decoded.Initial), decoded.Initial)
	}
}
