// Package unifier clusters auto-merge match pairs into connected components
// and merges each component into a single UnifiedEntity with full
// provenance. Records captured by no component carry over as singletons.
//
// Ordering is deliberate and documented: records are indexed in first-seen
// input order, components are emitted in order of their earliest member, and
// unified IDs are assigned sequentially, so the same input produces the same
// IDs on every run.
package unifier

import (
	"fmt"
	"log/slog"
	"strings"

	"unify/internal/resolution/models"
	pkgstrings "unify/pkg/platform/strings"
	"unify/pkg/unionfind"
)

// contactSuffix marks derived business-contact records. A singleton whose
// source ID carries the suffix is dropped when the base record exists
// elsewhere in the input, so a business's primary contact is not
// double-counted as a separate person.
const contactSuffix = "-CONTACT"

// Unifier builds the unified entity graph for one batch.
type Unifier struct {
	logger *slog.Logger
}

// NewUnifier builds a unifier.
func NewUnifier(logger *slog.Logger) *Unifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Unifier{logger: logger}
}

// Unify selects AUTO_MERGE matches, builds connected components over their
// record references, merges each component, and carries over unmatched
// records as singletons. The merge is any-to-any transitive: A-B and B-C
// place A, B, C in one component even if A-C was never directly scored.
func (u *Unifier) Unify(records []*models.NormalizedRecord, matches []models.MatchScore) []models.UnifiedEntity {
	refIndex := make(map[models.RecordRef]int, len(records))
	for i, r := range records {
		refIndex[r.Ref()] = i
	}

	uf := unionfind.New(len(records))
	clustered := make(map[int]struct{})
	for _, m := range matches {
		if m.MergeAction != models.MergeActionAutoMerge {
			continue
		}
		i, ok1 := refIndex[m.Entity1]
		j, ok2 := refIndex[m.Entity2]
		if !ok1 || !ok2 {
			continue
		}
		uf.Union(i, j)
		clustered[i] = struct{}{}
		clustered[j] = struct{}{}
	}

	// Components in first-seen order: walking records in input order and
	// bucketing by representative yields a stable component enumeration.
	var componentOrder []int
	components := make(map[int][]*models.NormalizedRecord)
	for i, r := range records {
		if _, ok := clustered[i]; !ok {
			continue
		}
		root := uf.Find(i)
		if _, ok := components[root]; !ok {
			componentOrder = append(componentOrder, root)
		}
		components[root] = append(components[root], r)
	}

	var unified []models.UnifiedEntity
	nextID := 1
	for _, root := range componentOrder {
		unified = append(unified, u.mergeComponent(nextID, components[root]))
		nextID++
	}

	mergedCount := len(unified)

	for i, r := range records {
		if _, ok := clustered[i]; ok {
			continue
		}
		if u.isDerivedContact(r, records) {
			continue
		}
		unified = append(unified, u.singleton(nextID, r))
		nextID++
	}

	u.logger.Info("entity unification complete",
		"source_records", len(records),
		"unified_entities", len(unified),
		"merged_components", mergedCount,
	)
	return unified
}

// mergeComponent builds one UnifiedEntity from a component's members. The
// canonical member is the most complete record: has a DOB, then longest
// email, then longest full name, first member winning ties.
func (u *Unifier) mergeComponent(id int, members []*models.NormalizedRecord) models.UnifiedEntity {
	canonical := members[0]
	for _, m := range members[1:] {
		if moreComplete(m, canonical) {
			canonical = m
		}
	}

	refs := make([]models.RecordRef, 0, len(members))
	var addresses []models.Address
	var phones, emails []string
	for _, m := range members {
		refs = append(refs, m.Ref())
		if m.Address != nil {
			addresses = append(addresses, *m.Address)
		}
		if m.PhonePrimary != nil && m.PhonePrimary.Formatted != "" {
			phones = append(phones, m.PhonePrimary.Formatted)
		}
		if m.Email != "" {
			emails = append(emails, m.Email)
		}
	}

	return models.UnifiedEntity{
		UnifiedID:     unifiedID(id),
		CanonicalName: canonical.Name.Full,
		EntityType:    canonical.EntityType,
		SourceRecords: refs,
		TaxIDLast4:    canonical.TaxIDLast4,
		DateOfBirth:   canonical.DateOfBirth,
		Addresses:     addresses,
		Phones:        pkgstrings.Dedupe(phones),
		Emails:        pkgstrings.DedupeLower(emails),
	}
}

func (u *Unifier) singleton(id int, r *models.NormalizedRecord) models.UnifiedEntity {
	e := models.UnifiedEntity{
		UnifiedID:     unifiedID(id),
		CanonicalName: r.Name.Full,
		EntityType:    r.EntityType,
		SourceRecords: []models.RecordRef{r.Ref()},
		TaxIDLast4:    r.TaxIDLast4,
		DateOfBirth:   r.DateOfBirth,
		Addresses:     []models.Address{},
		Phones:        []string{},
		Emails:        []string{},
	}
	if r.Address != nil {
		e.Addresses = append(e.Addresses, *r.Address)
	}
	if r.PhonePrimary != nil && r.PhonePrimary.Formatted != "" {
		e.Phones = append(e.Phones, r.PhonePrimary.Formatted)
	}
	if r.Email != "" {
		e.Emails = append(e.Emails, r.Email)
	}
	return e
}

// isDerivedContact reports whether r is a business-contact record whose base
// record (source ID minus the suffix) exists anywhere in the input.
func (u *Unifier) isDerivedContact(r *models.NormalizedRecord, records []*models.NormalizedRecord) bool {
	if !strings.HasSuffix(r.SourceID, contactSuffix) {
		return false
	}
	baseID := strings.TrimSuffix(r.SourceID, contactSuffix)
	for _, other := range records {
		if other.SourceID == baseID {
			return true
		}
	}
	return false
}

// moreComplete reports whether a is strictly more complete than b under the
// canonical-record ordering (has DOB, email length, full-name length).
func moreComplete(a, b *models.NormalizedRecord) bool {
	aDOB, bDOB := boolToInt(a.DateOfBirth != nil && *a.DateOfBirth != ""), boolToInt(b.DateOfBirth != nil && *b.DateOfBirth != "")
	if aDOB != bDOB {
		return aDOB > bDOB
	}
	if len(a.Email) != len(b.Email) {
		return len(a.Email) > len(b.Email)
	}
	return len(a.Name.Full) > len(b.Name.Full)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unifiedID(n int) string {
	return fmt.Sprintf("UNI-%04d", n)
}
