//go:build trace

package trace

import "encoding/json"

// step is one entry of the "steps" array. Type is one of "array", "number"
// or "step"; the remaining fields are populated according to Type and
// omitted (via omitempty) otherwise, matching the original visualizer's
// loosely-typed JSON shape.
type step struct {
	Type  string  `json:"type"`
	Label string  `json:"label,omitempty"`
	Array []int   `json:"array,omitempty"`
	Value float64 `json:"value,omitempty"`
	Line  int     `json:"line,omitempty"`
	Event string  `json:"event,omitempty"`
}

// Recorder accumulates steps for a single BTF run and renders them to JSON
// on Flush. The zero value is ready to use; a nil *Recorder is also valid
// and every method on it is a no-op (see PushStep).
type Recorder struct {
	initial map[string]interface{}
	steps   []step
}

// NewRecorder returns a Recorder with no initial state and no steps.
func NewRecorder() *Recorder {
	return &Recorder{initial: make(map[string]interface{})}
}

// SetInitial records a named piece of initial state (e.g. the starting
// Q_col array) to surface alongside the step stream.
func (r *Recorder) SetInitial(name string, value interface{}) {
	if r == nil {
		return
	}
	if r.initial == nil {
		r.initial = make(map[string]interface{})
	}
	r.initial[name] = value
}

// PushArrayStep records a snapshot of an integer array (e.g. Q_col or
// P_row at a point during the BTF run) under label.
func (r *Recorder) PushArrayStep(label string, array []int) {
	if r == nil {
		return
	}
	cp := make([]int, len(array))
	copy(cp, array)
	r.steps = append(r.steps, step{Type: "array", Label: label, Array: cp})
}

// PushNumberStep records a scalar value under label.
func (r *Recorder) PushNumberStep(label string, value float64) {
	if r == nil {
		return
	}
	r.steps = append(r.steps, step{Type: "number", Label: label, Value: value})
}

// PushStep records a bare (line, event) tuple, the narrowest event the
// visualizer consumes: a source line number paired with a short event tag
// ("match", "augment", "scc-root", ...).
func (r *Recorder) PushStep(line int, event string) {
	if r == nil {
		return
	}
	r.steps = append(r.steps, step{Type: "step", Line: line, Event: event})
}

// Flush renders the recorded initial state and steps as the visualizer's
// JSON wire format.
func (r *Recorder) Flush() ([]byte, error) {
	if r == nil {
		return json.Marshal(struct {
			Initial map[string]interface{} `json:"initial"`
			Steps   []step                 `json:"steps"`
		}{Initial: map[string]interface{}{}, Steps: nil})
	}
	return json.Marshal(struct {
		Initial map[string]interface{} `json:"initial"`
		Steps   []step                 `json:"steps"`
	}{Initial: r.initial, Steps: r.steps})
}
