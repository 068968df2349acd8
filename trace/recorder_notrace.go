//go:build !trace

package trace

import "encoding/json"

// Recorder is the no-op stand-in compiled in when the "trace" build tag is
// absent. It exposes the same method set as the real, JSON-backed
// Recorder in recorder_trace.go so every caller compiles and behaves
// identically (observing nothing) regardless of which variant is built.
type Recorder struct{}

// NewRecorder returns an inert Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// SetInitial is a no-op in this build.
func (r *Recorder) SetInitial(name string, value interface{}) {}

// PushArrayStep is a no-op in this build.
func (r *Recorder) PushArrayStep(label string, array []int) {}

// PushNumberStep is a no-op in this build.
func (r *Recorder) PushNumberStep(label string, value float64) {}

// PushStep is a no-op in this build.
func (r *Recorder) PushStep(line int, event string) {}

// Flush returns the same empty wire shape the real Recorder's Flush
// returns for a nil receiver, so output shouldn't vary across builds.
func (r *Recorder) Flush() ([]byte, error) {
	return json.Marshal(struct {
		Initial map[string]interface{} `json:"initial"`
		Steps   []struct{}             `json:"steps"`
	}{Initial: map[string]interface{}{}})
}
