package model

import (
	"sort"
	"strings"
)

// Team membership is stored redundantly: as a relationship set (the
// canonical form, backed by a join table) and as a comma-joined ID list
// string (the form the backend's field-based API consumes). The two
// must always denote the same members; every mutation goes through
// SetMembers so they change together.

// JoinMemberIDs produces the denormalized ID-list string for a member
// set. IDs are de-duplicated and sorted so the string form is stable.
func JoinMemberIDs(ids []string) string {
	return strings.Join(NormalizeMemberIDs(ids), ",")
}

// SplitMemberIDs parses an ID-list string back into a member set.
func SplitMemberIDs(list string) []string {
	if list == "" {
		return []string{}
	}
	return NormalizeMemberIDs(strings.Split(list, ","))
}

// NormalizeMemberIDs trims, de-duplicates and sorts a member ID slice.
func NormalizeMemberIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SameMembers reports whether two member sets denote the same IDs.
func SameMembers(a, b []string) bool {
	na, nb := NormalizeMemberIDs(a), NormalizeMemberIDs(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}
