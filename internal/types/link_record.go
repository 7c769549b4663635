package types

import (
	"sort"
	"strings"
)

// LinkRecord is one catalog row: a portfolio link and the tech stack it demonstrates.
type LinkRecord struct {
	TechStack string              `json:"techstack"`
	Tags      map[string]struct{} `json:"-"`
	URL       string              `json:"links"`
}

// NewLinkRecord builds a record, deriving lowercased tags from the comma-separated tech stack.
func NewLinkRecord(techStack, url string) LinkRecord {
	tags := make(map[string]struct{})
	for _, part := range strings.Split(techStack, ",") {
		if tag := strings.ToLower(strings.TrimSpace(part)); tag != "" {
			tags[tag] = struct{}{}
		}
	}
	return LinkRecord{
		TechStack: strings.TrimSpace(techStack),
		Tags:      tags,
		URL:       strings.TrimSpace(url),
	}
}

// SortedTags returns the record's tags in lexical order.
func (r LinkRecord) SortedTags() []string {
	tags := make([]string, 0, len(r.Tags))
	for tag := range r.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
