package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	resultsApplied      int
	goalCorrections     int
	reversals           int
	resumes             int
	playerWriteFailures int
	applyDurations      []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		applyDurations: make([]float64, 0),
	}
}

func (m *Mock) IncResultsApplied() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsApplied++
}

func (m *Mock) IncGoalCorrections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goalCorrections++
}

func (m *Mock) IncReversals() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reversals++
}

func (m *Mock) IncResumes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes++
}

func (m *Mock) IncPlayerWriteFailures(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playerWriteFailures += n
}

func (m *Mock) ObserveApplyDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyDurations = append(m.applyDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ResultsApplied returns the number of times IncResultsApplied was called.
func (m *Mock) ResultsApplied() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsApplied
}

// GoalCorrections returns the number of times IncGoalCorrections was called.
func (m *Mock) GoalCorrections() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.goalCorrections
}

// Reversals returns the number of times IncReversals was called.
func (m *Mock) Reversals() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reversals
}

// Resumes returns the number of times IncResumes was called.
func (m *Mock) Resumes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumes
}

// PlayerWriteFailures returns the total passed to IncPlayerWriteFailures.
func (m *Mock) PlayerWriteFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playerWriteFailures
}

// ApplyDurations returns every observed duration.
func (m *Mock) ApplyDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.applyDurations...)
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
