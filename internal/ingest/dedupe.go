package ingest

import organizationdomain "github.com/oneeighty/connect/internal/organization/domain"

// DedupeByName drops records whose exact name has already been seen,
// keeping the first occurrence. Matching is case-sensitive; "The Trust"
// and "the trust" are distinct organizations as far as merging is
// concerned.
func DedupeByName(records []organizationdomain.Organization) []organizationdomain.Organization {
	seen := make(map[string]struct{}, len(records))
	merged := make([]organizationdomain.Organization, 0, len(records))
	for _, record := range records {
		if _, ok := seen[record.Name]; ok {
			continue
		}
		seen[record.Name] = struct{}{}
		merged = append(merged, record)
	}
	return merged
}
