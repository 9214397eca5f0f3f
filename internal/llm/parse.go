package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/util"
)

var (
	errEmptyReply = errors.New("empty reply")

	fencePattern = regexp.MustCompile("```(?:[jJ][sS][oO][nN])?")
)

// ParseReply turns the raw completion text into an EvaluateResponse.
// Status and feedback are mandatory; highlights may be absent or null.
func ParseReply(content string) (*EvaluateResponse, error) {
	cleaned := stripFences(content)
	if cleaned == "" {
		return nil, errEmptyReply
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}

	statusText, err := stringField(fields, "status", "aiStatus")
	if err != nil {
		return nil, err
	}
	status, ok := NormalizeStatus(statusText)
	if !ok {
		return nil, fmt.Errorf("unknown status %q", statusText)
	}

	feedback, err := stringField(fields, "feedback", "aiFeedback")
	if err != nil {
		return nil, err
	}

	highlights, err := listField(fields, "highlights", "aiHighlights")
	if err != nil {
		return nil, err
	}

	return &EvaluateResponse{
		Status:     status,
		Feedback:   feedback,
		Highlights: highlights,
	}, nil
}

// NormalizeStatus maps free-form status text onto the three known statuses.
// Accents, case and hyphens are ignored; anything else is rejected.
func NormalizeStatus(text string) (model.Status, bool) {
	folded := util.Fold(text)
	folded = strings.ReplaceAll(folded, "-", " ")
	folded = strings.Join(strings.Fields(strings.Trim(folded, " .!\"'")), " ")

	switch folded {
	case "conforme":
		return model.StatusConforme, true
	case "a ameliorer", "ameliorer":
		return model.StatusAmeliorer, true
	case "non conforme":
		return model.StatusNonConforme, true
	}
	return "", false
}

func stripFences(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(strings.TrimSpace(raw), ""))
}

func lookup(fields map[string]json.RawMessage, keys ...string) (string, json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && string(v) != "null" {
			return k, v, true
		}
	}
	return "", nil, false
}

func stringField(fields map[string]json.RawMessage, keys ...string) (string, error) {
	key, raw, ok := lookup(fields, keys...)
	if !ok {
		return "", fmt.Errorf("missing %q", keys[0])
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("field %q is not a string", key)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("field %q is empty", key)
	}
	return strings.TrimSpace(s), nil
}

func listField(fields map[string]json.RawMessage, keys ...string) ([]string, error) {
	key, raw, ok := lookup(fields, keys...)
	if !ok {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("field %q is not a list of strings", key)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}
