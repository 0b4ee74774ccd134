package roadmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	FieldCareerGoal         = "career_goal"
	FieldSkills             = "skills"
	FieldLearningPreference = "learning_preference"
)

// Request is a validated roadmap request. Every field is non-empty and Skills
// holds trimmed, non-empty entries in caller order.
type Request struct {
	CareerGoal         string
	Skills             []string
	LearningPreference string
}

// InvalidRequestError lists the fields that were missing, empty or of the
// wrong type. Callers answer with MsgInvalidRequest regardless of the list.
type InvalidRequestError struct {
	Missing []string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid roadmap request: missing or empty %s", strings.Join(e.Missing, ", "))
}

type rawRequest struct {
	CareerGoal         json.RawMessage `json:"career_goal"`
	Skills             json.RawMessage `json:"skills"`
	LearningPreference json.RawMessage `json:"learning_preference"`
}

// ParseRequest decodes and validates a request body. It never touches the
// model; every failure is an *InvalidRequestError.
func ParseRequest(body []byte) (Request, error) {
	var raw rawRequest
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &raw) != nil {
		return Request{}, &InvalidRequestError{Missing: []string{FieldCareerGoal, FieldSkills, FieldLearningPreference}}
	}

	var (
		req     Request
		missing []string
		ok      bool
	)
	if req.CareerGoal, ok = parseText(raw.CareerGoal); !ok {
		missing = append(missing, FieldCareerGoal)
	}
	if req.Skills, ok = parseSkills(raw.Skills); !ok {
		missing = append(missing, FieldSkills)
	}
	if req.LearningPreference, ok = parseText(raw.LearningPreference); !ok {
		missing = append(missing, FieldLearningPreference)
	}
	if len(missing) > 0 {
		return Request{}, &InvalidRequestError{Missing: missing}
	}
	return req, nil
}

func parseText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func parseSkills(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	skills := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			skills = append(skills, item)
		}
	}
	return skills, len(skills) > 0
}
