// Package relationship derives HOUSEHOLD, SPOUSE, and BUSINESS_OWNER edges
// between distinct entities.
//
// Inference reads the raw normalized records directly; it consults the match
// scores only to avoid re-flagging an already auto-merged pair as a separate
// relationship. Inferred relationships never feed back into merge decisions.
package relationship

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"unify/internal/resolution/models"
	"unify/internal/resolution/similarity"
)

const (
	householdConfidence     = 0.85
	businessOwnerConfidence = 0.90

	// ownerNameThreshold is the fuzzy-match floor for linking a name in a
	// business's related-entities list to a person record.
	ownerNameThreshold = 0.8
)

// Config tunes the inference heuristics. Zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// SpouseIndicators are uppercased tokens that, together with a name
	// mention in the other record's related-entities text, upgrade a
	// HOUSEHOLD edge to SPOUSE.
	SpouseIndicators []string
}

// DefaultConfig returns the standard spouse-indicator token set.
func DefaultConfig() Config {
	return Config{
		SpouseIndicators: []string{"SPOUSE", "WIFE", "HUSBAND"},
	}
}

// Inferencer runs the relationship heuristics over a batch snapshot.
type Inferencer struct {
	cfg    Config
	logger *slog.Logger
}

// NewInferencer builds an inferencer with the given heuristics config.
func NewInferencer(cfg Config, logger *slog.Logger) *Inferencer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inferencer{cfg: cfg, logger: logger}
}

// Infer derives household/spouse edges among person records and
// business-owner edges between businesses and persons. matches is the full
// candidate score set; only its AUTO_MERGE pairs are consulted, to suppress
// household edges between records that are the same person.
func (in *Inferencer) Infer(records []*models.NormalizedRecord, matches []models.MatchScore) []models.InferredRelationship {
	var persons, businesses []*models.NormalizedRecord
	for _, r := range records {
		switch r.EntityType {
		case models.EntityTypePerson:
			persons = append(persons, r)
		case models.EntityTypeBusiness:
			businesses = append(businesses, r)
		}
	}

	merged := make(map[string]struct{})
	for _, m := range matches {
		if m.MergeAction == models.MergeActionAutoMerge {
			merged[m.Key()] = struct{}{}
		}
	}

	relationships := in.inferHouseholds(persons, merged)
	relationships = append(relationships, in.inferBusinessOwners(businesses, persons)...)

	in.logger.Info("relationship inference complete", "relationships", len(relationships))
	return relationships
}

// inferHouseholds groups persons by (zip5, street_line1), sub-groups by last
// name, and pairs the members of each family group. Duplicate SSNs within a
// group are collapsed first: two records sharing a tax-id-last4 at the same
// address are the same person, not a household pair.
func (in *Inferencer) inferHouseholds(persons []*models.NormalizedRecord, merged map[string]struct{}) []models.InferredRelationship {
	var out []models.InferredRelationship

	addrKeys, byAddress := groupPersons(persons)
	for _, addrKey := range addrKeys {
		residents := byAddress[addrKey]
		if len(residents) < 2 {
			continue
		}

		lastNames, byLastName := groupByLastName(residents)
		for _, lastName := range lastNames {
			family := byLastName[lastName]
			if len(family) < 2 {
				continue
			}

			family = collapseDuplicateSSNs(family)

			for i, p1 := range family {
				for _, p2 := range family[i+1:] {
					if _, same := merged[models.PairKey(p1.Ref(), p2.Ref())]; same {
						continue
					}
					out = append(out, in.householdEdge(p1, p2, lastName))
				}
			}
		}
	}
	return out
}

func (in *Inferencer) householdEdge(p1, p2 *models.NormalizedRecord, lastName string) models.InferredRelationship {
	evidence := []string{
		fmt.Sprintf("Same address: %s", p1.Address.FullAddress),
		fmt.Sprintf("Same last name: %s", lastName),
	}

	relType := models.RelationshipHousehold
	if in.mentionsAsSpouse(p2, p1) {
		relType = models.RelationshipSpouse
		evidence = append(evidence, fmt.Sprintf("Referenced as spouse in %s", p2.SourceSystem))
	} else if in.mentionsAsSpouse(p1, p2) {
		relType = models.RelationshipSpouse
		evidence = append(evidence, fmt.Sprintf("Referenced as spouse in %s", p1.SourceSystem))
	}

	return models.InferredRelationship{
		Entity1:          p1.Ref(),
		Entity2:          p2.Ref(),
		Entity1Name:      p1.Name.Full,
		Entity2Name:      p2.Name.Full,
		RelationshipType: relType,
		Confidence:       householdConfidence,
		Evidence:         evidence,
	}
}

// mentionsAsSpouse reports whether holder's related-entities text mentions
// other's first or full name together with a spouse indicator.
func (in *Inferencer) mentionsAsSpouse(holder, other *models.NormalizedRecord) bool {
	if len(holder.RelatedEntities) == 0 {
		return false
	}
	related := strings.ToUpper(strings.Join(holder.RelatedEntities, " "))

	first := strings.ToUpper(strings.TrimSpace(other.Name.First))
	full := strings.ToUpper(strings.TrimSpace(other.Name.Full))
	mentioned := (first != "" && strings.Contains(related, first)) ||
		(full != "" && strings.Contains(related, full))
	if !mentioned {
		return false
	}

	for _, indicator := range in.cfg.SpouseIndicators {
		if strings.Contains(related, indicator) {
			return true
		}
	}
	return false
}

// inferBusinessOwners fuzzy-matches each name in a business's
// related-entities list against person full names; the first person at or
// above the threshold yields a BUSINESS_OWNER edge. An extra evidence line
// is recorded when the person's tax-id-last4 appears inside the business's
// raw payload.
func (in *Inferencer) inferBusinessOwners(businesses, persons []*models.NormalizedRecord) []models.InferredRelationship {
	var out []models.InferredRelationship
	for _, biz := range businesses {
		for _, relName := range biz.RelatedEntities {
			for _, person := range persons {
				if similarity.String(person.Name.Full, relName) < ownerNameThreshold {
					continue
				}

				evidence := []string{
					fmt.Sprintf("Listed as authorized signer for %s", biz.Name.Full),
					fmt.Sprintf("Name match: %s", relName),
				}
				if person.TaxIDLast4 != "" && bytes.Contains(biz.RawData, []byte(person.TaxIDLast4)) {
					evidence = append(evidence, "SSN matches business contact")
				}

				out = append(out, models.InferredRelationship{
					Entity1:          person.Ref(),
					Entity2:          biz.Ref(),
					Entity1Name:      person.Name.Full,
					Entity2Name:      biz.Name.Full,
					RelationshipType: models.RelationshipBusinessOwner,
					Confidence:       businessOwnerConfidence,
					Evidence:         evidence,
				})
				break
			}
		}
	}
	return out
}

// groupPersons buckets persons by (zip5, street_line1), skipping records
// with neither part, preserving first-seen key order for deterministic
// output.
func groupPersons(persons []*models.NormalizedRecord) ([]string, map[string][]*models.NormalizedRecord) {
	var keys []string
	groups := make(map[string][]*models.NormalizedRecord)
	for _, p := range persons {
		var zip, street string
		if p.Address != nil {
			zip, street = p.Address.Zip5, p.Address.StreetLine1
		}
		if zip == "" && street == "" {
			continue
		}
		key := zip + "|" + street
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], p)
	}
	return keys, groups
}

func groupByLastName(residents []*models.NormalizedRecord) ([]string, map[string][]*models.NormalizedRecord) {
	var keys []string
	groups := make(map[string][]*models.NormalizedRecord)
	for _, r := range residents {
		last := r.Name.Last
		if _, ok := groups[last]; !ok {
			keys = append(keys, last)
		}
		groups[last] = append(groups[last], r)
	}
	return keys, groups
}

// collapseDuplicateSSNs keeps the first record seen for each non-empty
// tax-id-last4 within a family group.
func collapseDuplicateSSNs(family []*models.NormalizedRecord) []*models.NormalizedRecord {
	seen := make(map[string]struct{}, len(family))
	unique := make([]*models.NormalizedRecord, 0, len(family))
	for _, p := range family {
		if p.TaxIDLast4 != "" {
			if _, dup := seen[p.TaxIDLast4]; dup {
				continue
			}
			seen[p.TaxIDLast4] = struct{}{}
		}
		unique = append(unique, p)
	}
	return unique
}
