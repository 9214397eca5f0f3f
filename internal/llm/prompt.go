package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt is the fixed grading instruction sent with every request
const SystemPrompt = "Tu es un coordonnateur pédagogique. Vérifie si une réponse respecte la question et la règle de validation fournie. " +
	"Décide entre Conforme, À améliorer et Non conforme. " +
	"Retourne uniquement un objet JSON avec les clés : status (Conforme, À améliorer, Non conforme), " +
	"feedback (français, 2 phrases max), highlights (liste courte des éléments requis mais absents)."

const noRule = "Non spécifiée"

// BuildPrompt renders the user message carrying question, rule and response
func BuildPrompt(req EvaluateRequest) string {
	rule := strings.TrimSpace(req.Rule)
	if rule == "" {
		rule = noRule
	}
	return fmt.Sprintf("Question : %s\nRègle IA : %s\nRéponse de l'enseignant :\n%s\n\nRetourne uniquement le JSON demandé, sans commentaire additionnel.",
		req.Question, rule, req.Response)
}
