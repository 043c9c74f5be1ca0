package analysis

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// QuestionResult is the outcome of one question. Number is its 1-based position in the question list.
type QuestionResult struct {
	Number   int
	Question string
	Answer   string
	Status   Status
	Duration time.Duration
}

func (r QuestionResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Summary holds the ordered results of one run. Counts and ratios are derived from Results on demand.
type Summary struct {
	ID        string
	StartedAt time.Time
	Results   []QuestionResult
}

func NewSummary(startedAt time.Time) *Summary {
	return &Summary{ID: uuid.NewString(), StartedAt: startedAt}
}

func (s *Summary) Total() int {
	return len(s.Results)
}

func (s *Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Succeeded() {
			n++
		}
	}
	return n
}

func (s *Summary) Failed() int {
	return s.Total() - s.Succeeded()
}

func (s *Summary) SuccessRatio() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Succeeded()) / float64(s.Total())
}
