package model

// Status is the quality outcome of one evaluated answer.
// Values are ordered from best to worst.
type Status string

const (
	StatusConforme    Status = "Conforme"
	StatusAmeliorer   Status = "À améliorer"
	StatusNonConforme Status = "Non conforme"
)

// Statuses lists every status from best to worst
var Statuses = []Status{StatusConforme, StatusAmeliorer, StatusNonConforme}

// Rank returns 0 for the best status and 2 for the worst, -1 if unknown
func (s Status) Rank() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the three known statuses
func (s Status) Valid() bool {
	return s.Rank() >= 0
}

// Engine identifies which evaluation strategy produced a verdict
type Engine string

const (
	EngineChatGPT   Engine = "chatgpt"     // Remote chat-completion evaluation
	EngineHeuristic Engine = "heuristique" // Local deterministic rules
)

// Provenance labels recorded in Verdict.Model
const (
	HeuristicModel     = "Heuristique locale"
	DefaultRemoteModel = "gpt-4o-mini"
)

// Verdict is the structured outcome of evaluating one answer against one rule.
// A Verdict is produced whole or not at all.
type Verdict struct {
	Status     Status   `json:"status" yaml:"status"`
	Feedback   string   `json:"feedback" yaml:"feedback"`
	Highlights []string `json:"highlights" yaml:"highlights"`
	Engine     Engine   `json:"engine" yaml:"engine"`
	Model      string   `json:"model" yaml:"model"`
}

// Summary counts verdicts per status bucket
type Summary struct {
	Conforme    int `json:"conforme" yaml:"conforme"`
	Ameliorer   int `json:"ameliorer" yaml:"ameliorer"`
	NonConforme int `json:"nonConforme" yaml:"nonConforme"`
}

// Add puts one status into its bucket. Unknown statuses are rejected.
func (s *Summary) Add(status Status) bool {
	switch status {
	case StatusConforme:
		s.Conforme++
	case StatusAmeliorer:
		s.Ameliorer++
	case StatusNonConforme:
		s.NonConforme++
	default:
		return false
	}
	return true
}

// Total returns the number of answers counted
func (s Summary) Total() int {
	return s.Conforme + s.Ameliorer + s.NonConforme
}

// Count returns the bucket size for a status
func (s Summary) Count(status Status) int {
	switch status {
	case StatusConforme:
		return s.Conforme
	case StatusAmeliorer:
		return s.Ameliorer
	case StatusNonConforme:
		return s.NonConforme
	}
	return 0
}
