// Package backend wraps the heterogeneous text-recognition providers behind
// one adapter interface. An adapter never lets a provider error escape: every
// attempt, successful or not, comes back as a Result the orchestrator can
// rank and report.
package backend

import "context"

// Adapter is one text-recognition provider.
type Adapter interface {
	// Name returns the stable backend name used in configuration, logs and
	// attempt diagnostics.
	Name() string

	// Recognize runs one provider call on an encoded image. Network,
	// authentication and malformed-response conditions are all captured in
	// the Result; Recognize itself never fails.
	Recognize(ctx context.Context, image []byte) Result
}

// Result is the outcome of one recognition attempt. Results are created per
// attempt, never mutated afterwards, and collected in order for the duration
// of one extraction request.
type Result struct {
	BackendName   string  `json:"backend"`
	StrategyName  string  `json:"strategy,omitempty"`
	RawText       string  `json:"raw_text,omitempty"`
	Confidence    float64 `json:"confidence"` // 0-100
	ElapsedMillis int64   `json:"elapsed_ms"`
	Succeeded     bool    `json:"succeeded"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// Descriptor is a static capability entry for one backend, computed once at
// startup and read-only afterwards.
type Descriptor struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// lengthConfidence is the fallback confidence heuristic for providers that
// do not report their own score: longer extracted text implies a more
// complete read. Capped at 90 so a self-reported score can outrank it.
func lengthConfidence(text string) float64 {
	score := 25.0 + float64(len(text))/10.0
	if score > 90 {
		score = 90
	}
	return score
}

// failure builds a failed Result with the reason recorded.
func failure(name string, elapsedMillis int64, reason string) Result {
	return Result{
		BackendName:   name,
		ElapsedMillis: elapsedMillis,
		Succeeded:     false,
		FailureReason: reason,
	}
}
