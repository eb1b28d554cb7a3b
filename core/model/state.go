package model

// StateManager tracks the fitted state of an estimator together with the
// data shape seen during fitting. Fields are exported for gob encoding.
type StateManager struct {
	Fitted    bool
	NFeatures int
	NSamples  int
}

// NewStateManager creates an unfitted StateManager.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	return s.Fitted
}

// SetFitted marks the model as fitted with the given training shape.
func (s *StateManager) SetFitted(nSamples, nFeatures int) {
	s.Fitted = true
	s.NSamples = nSamples
	s.NFeatures = nFeatures
}

// Reset returns the model to the unfitted state.
func (s *StateManager) Reset() {
	s.Fitted = false
	s.NFeatures = 0
	s.NSamples = 0
}
