package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncTokenIssued is a no-op.
func (n *NoopRecorder) IncTokenIssued() {}

// IncAuthCacheHit is a no-op.
func (n *NoopRecorder) IncAuthCacheHit() {}

// IncAuthCacheMiss is a no-op.
func (n *NoopRecorder) IncAuthCacheMiss() {}

// IncRecipeCreated is a no-op.
func (n *NoopRecorder) IncRecipeCreated() {}

// IncRecipeUpdated is a no-op.
func (n *NoopRecorder) IncRecipeUpdated() {}

// IncRecipeDeleted is a no-op.
func (n *NoopRecorder) IncRecipeDeleted() {}

// IncImageUploaded is a no-op.
func (n *NoopRecorder) IncImageUploaded() {}

// ObserveImageProcessingDuration is a no-op.
func (n *NoopRecorder) ObserveImageProcessingDuration(duration time.Duration) {}
