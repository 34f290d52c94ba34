package domain

import (
	"encoding/json"
	"strings"
)

// UnknownValue is the placeholder for a metadata field that could not be determined.
const UnknownValue = "Unknown"

// JobMetadata is the structured record extracted from a job description.
type JobMetadata struct {
	Role      string `json:"role"`
	Seniority string `json:"seniority"`
}

// UnknownMetadata returns the sentinel used when extraction fails.
func UnknownMetadata() JobMetadata {
	return JobMetadata{Role: UnknownValue, Seniority: UnknownValue}
}

// IsUnknown reports whether both fields hold the sentinel value.
func (m JobMetadata) IsUnknown() bool {
	return m.Role == UnknownValue && m.Seniority == UnknownValue
}

// DecodeMetadata parses generator output into JobMetadata.
// A surrounding markdown code fence is tolerated. Blank or missing fields are
// set to UnknownValue. The boolean is false when the text is not a JSON object,
// in which case the sentinel is returned.
func DecodeMetadata(text string) (JobMetadata, bool) {
	body := stripCodeFence(strings.TrimSpace(text))
	if !strings.HasPrefix(body, "{") {
		return UnknownMetadata(), false
	}

	var raw struct {
		Role      *string `json:"role"`
		Seniority *string `json:"seniority"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return UnknownMetadata(), false
	}

	return JobMetadata{
		Role:      valueOrUnknown(raw.Role),
		Seniority: valueOrUnknown(raw.Seniority),
	}, true
}

func valueOrUnknown(s *string) string {
	if s == nil {
		return UnknownValue
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return UnknownValue
	}
	return v
}

// stripCodeFence removes a ```json ... ``` wrapper if present.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the optional language tag on the opening line.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
