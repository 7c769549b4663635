// Package types provides type definitions for structured data used throughout the cold email agent.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NotSpecified is the sentinel used for absent text fields.
const NotSpecified = "Not specified"

// NoDescription is the default for a job posting without a description.
const NoDescription = "No description available"

// JobPosting represents one job extracted from a careers page
type JobPosting struct {
	Role        string    `json:"role"`
	Experience  string    `json:"experience"`
	Skills      SkillList `json:"skills"`
	Description string    `json:"description"`
}

// UnmarshalJSON implements json.Unmarshaler. Text fields accept strings, numbers,
// booleans and null, so "experience": 2 decodes as "2".
func (j *JobPosting) UnmarshalJSON(data []byte) error {
	var wire struct {
		Role        Text      `json:"role"`
		Experience  Text      `json:"experience"`
		Skills      SkillList `json:"skills"`
		Description Text      `json:"description"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*j = JobPosting{
		Role:        string(wire.Role),
		Experience:  string(wire.Experience),
		Skills:      wire.Skills,
		Description: string(wire.Description),
	}
	return nil
}

// WithDefaults returns a copy with every missing text field set to its default.
// Skills are never defaulted; an empty list means no skills were listed.
func (j JobPosting) WithDefaults() JobPosting {
	out := JobPosting{
		Role:        defaultIfBlank(j.Role, NotSpecified),
		Experience:  defaultIfBlank(j.Experience, NotSpecified),
		Description: defaultIfBlank(j.Description, NoDescription),
		Skills:      make(SkillList, len(j.Skills)),
	}
	copy(out.Skills, j.Skills)
	return out
}

// SkillList is an ordered list of skills. It decodes from a JSON array, a single
// string (split on commas) or null, so a posting always carries a list.
type SkillList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *SkillList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out SkillList
	switch v := raw.(type) {
	case nil:
	case string:
		out = appendSkills(out, strings.Split(v, ",")...)
	case []any:
		for _, item := range v {
			switch iv := item.(type) {
			case nil:
			case string:
				out = appendSkills(out, iv)
			case float64, bool:
				out = appendSkills(out, fmt.Sprint(iv))
			default:
				return fmt.Errorf("skills: unsupported element type %T", item)
			}
		}
	default:
		return fmt.Errorf("skills: expected array or string, got %T", raw)
	}

	if out == nil {
		out = SkillList{}
	}
	*s = out
	return nil
}

// Text is a scalar posting field. It decodes from a JSON string, number or
// boolean; null leaves it empty.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*t = ""
	case string:
		*t = Text(v)
	case json.Number:
		*t = Text(v.String())
	case bool:
		*t = Text(strconv.FormatBool(v))
	default:
		return fmt.Errorf("text: expected string, number or boolean, got %T", raw)
	}
	return nil
}

// Join renders the list for prompts, or NotSpecified when empty.
func (s SkillList) Join() string {
	if len(s) == 0 {
		return NotSpecified
	}
	return strings.Join(s, ", ")
}

func appendSkills(list SkillList, skills ...string) SkillList {
	for _, skill := range skills {
		if trimmed := strings.TrimSpace(skill); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

func defaultIfBlank(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
