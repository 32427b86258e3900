package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AdminIDs is the administrator roster. It decodes from a comma-separated
// string (environment) or a YAML list; entries that are not plain digits are
// dropped without error.
type AdminIDs []int64

// ParseAdminIDs splits raw on commas and keeps only numeric entries.
func ParseAdminIDs(raw string) AdminIDs {
	var ids AdminIDs
	for _, part := range strings.Split(raw, ",") {
		if id, ok := parseAdminID(part); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseAdminID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Decode implements envconfig.Decoder.
func (a *AdminIDs) Decode(value string) error {
	*a = ParseAdminIDs(value)
	return nil
}

// UnmarshalYAML accepts either "1,2,3" or a sequence of ids.
func (a *AdminIDs) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*a = ParseAdminIDs(node.Value)
		return nil
	case yaml.SequenceNode:
		ids := make(AdminIDs, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				continue
			}
			if id, ok := parseAdminID(item.Value); ok {
				ids = append(ids, id)
			}
		}
		*a = ids
		return nil
	}
	return fmt.Errorf("admin_ids: unsupported YAML node kind %d", node.Kind)
}

// Unique returns the ids in first-seen order without duplicates.
func (a AdminIDs) Unique() AdminIDs {
	if len(a) == 0 {
		return a
	}
	seen := make(map[int64]struct{}, len(a))
	out := make(AdminIDs, 0, len(a))
	for _, id := range a {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Contains reports whether id is in the roster.
func (a AdminIDs) Contains(id int64) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}
