package evaluate

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/util"
)

const (
	// minDetailedLength is the shortest response considered detailed enough
	minDetailedLength = 80

	// minStructuredLength is the shortest response considered structured
	minStructuredLength = 150

	// ruleKeywordTokens is how many leading rule tokens are checked
	ruleKeywordTokens = 2

	// minKeywordLength skips short tokens such as articles
	minKeywordLength = 3
)

const (
	feedbackEmpty      = "La réponse est vide."
	feedbackTooShort   = "Ajoutez davantage de détails (80 caractères minimum)."
	feedbackMissing    = "Mentionnez l'élément suivant : %q."
	feedbackStructure  = "Structurez la réponse avec objectifs, activités et évaluation."
	feedbackSufficient = "Réponse cohérente et suffisamment détaillée."
)

// Heuristic is the offline evaluator. It is pure: the same input always
// yields the same verdict and nothing outside the input is read.
type Heuristic struct{}

func (Heuristic) Engine() model.Engine { return model.EngineHeuristic }

// Evaluate never returns an error
func (h Heuristic) Evaluate(_ context.Context, in Input) (model.Verdict, error) {
	return h.Verdict(in), nil
}

// Verdict applies the rules in order: empty, too short, missing rule
// keyword, unstructured, conforming.
func (Heuristic) Verdict(in Input) model.Verdict {
	clean := strings.TrimSpace(in.Response)
	length := util.RuneLen(clean)

	switch {
	case length == 0:
		return heuristicVerdict(model.StatusNonConforme, feedbackEmpty)
	case length < minDetailedLength:
		return heuristicVerdict(model.StatusAmeliorer, feedbackTooShort)
	}

	if kw := missingKeyword(in.Rule, clean); kw != "" {
		v := heuristicVerdict(model.StatusAmeliorer, fmt.Sprintf(feedbackMissing, kw))
		v.Highlights = []string{kw}
		return v
	}

	if length < minStructuredLength {
		return heuristicVerdict(model.StatusAmeliorer, feedbackStructure)
	}
	return heuristicVerdict(model.StatusConforme, feedbackSufficient)
}

// missingKeyword returns the first of the rule's leading tokens that is long
// enough to matter and absent from the response
func missingKeyword(rule, response string) string {
	tokens := strings.Fields(strings.ToLower(rule))
	if len(tokens) > ruleKeywordTokens {
		tokens = tokens[:ruleKeywordTokens]
	}
	haystack := strings.ToLower(response)
	for _, tok := range tokens {
		if util.RuneLen(tok) > minKeywordLength && !strings.Contains(haystack, tok) {
			return tok
		}
	}
	return ""
}

func heuristicVerdict(status model.Status, feedback string) model.Verdict {
	return model.Verdict{
		Status:     status,
		Feedback:   feedback,
		Highlights: []string{},
		Engine:     model.EngineHeuristic,
		Model:      model.HeuristicModel,
	}
}
