// Package models defines the data model for the identity resolution
// pipeline: normalized input records, pairwise match scores, inferred
// relationships, and unified entities.
//
// Records arrive already normalized (names, addresses, phones canonicalized
// upstream). Absent optional fields are represented as nil pointers or empty
// values, never as sentinel strings.
package models

import (
	"encoding/json"
	"fmt"
)

// EntityType distinguishes person records from business records. Records of
// different types are never compared against each other.
type EntityType string

const (
	EntityTypePerson   EntityType = "PERSON"
	EntityTypeBusiness EntityType = "BUSINESS"
)

// Valid reports whether the entity type is one of the known values.
func (t EntityType) Valid() bool {
	return t == EntityTypePerson || t == EntityTypeBusiness
}

// ConfidenceLevel tiers a pairwise match score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"   // 0.95+ : auto-merge
	ConfidenceMedium ConfidenceLevel = "MEDIUM" // 0.70-0.94 : human review
	ConfidenceLow    ConfidenceLevel = "LOW"    // <0.70 : keep separate
)

// MergeAction is the decision derived from a confidence level.
type MergeAction string

const (
	MergeActionAutoMerge      MergeAction = "AUTO_MERGE"
	MergeActionReviewRequired MergeAction = "REVIEW_REQUIRED"
	MergeActionKeepSeparate   MergeAction = "KEEP_SEPARATE"
)

// RelationshipType classifies an inferred relationship between two distinct
// entities. Relationships connect different entities on purpose; they are
// never used to justify merging two records into one.
type RelationshipType string

const (
	RelationshipHousehold     RelationshipType = "HOUSEHOLD"
	RelationshipSpouse        RelationshipType = "SPOUSE"
	RelationshipBusinessOwner RelationshipType = "BUSINESS_OWNER"

	// Reserved for future inference passes.
	RelationshipParentChild  RelationshipType = "PARENT_CHILD"
	RelationshipJointAccount RelationshipType = "JOINT_ACCOUNT"
	RelationshipSamePerson   RelationshipType = "SAME_PERSON"
)

// Name holds the canonicalized name parts of a record.
type Name struct {
	First  string `json:"first_name"`
	Middle string `json:"middle_name"`
	Last   string `json:"last_name"`
	Full   string `json:"full_name"`
	Suffix string `json:"suffix"`
}

// Address holds a canonicalized US address.
type Address struct {
	StreetLine1 string `json:"street_line1"`
	StreetLine2 string `json:"street_line2"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip5        string `json:"zip5"`
	FullAddress string `json:"full_address"`
}

// Phone holds a canonicalized phone number. Number is digits only;
// Formatted is the display form.
type Phone struct {
	Number    string `json:"number"`
	Formatted string `json:"formatted"`
}

// NormalizedRecord is the input to the resolution pipeline, produced by the
// external normalization stage.
//
// Invariant: SourceID is unique within SourceSystem.
type NormalizedRecord struct {
	SourceSystem    string          `json:"source_system"`
	SourceID        string          `json:"source_id"`
	EntityType      EntityType      `json:"entity_type"`
	Name            Name            `json:"name"`
	TaxIDLast4      string          `json:"tax_id_last4"`
	DateOfBirth     *string         `json:"date_of_birth,omitempty"`
	Address         *Address        `json:"address,omitempty"`
	PhonePrimary    *Phone          `json:"phone_primary,omitempty"`
	Email           string          `json:"email"`
	RelatedEntities []string        `json:"related_entities,omitempty"`
	RawData         json.RawMessage `json:"raw_data,omitempty"`
}

// Ref returns the provenance pointer for the record.
func (r *NormalizedRecord) Ref() RecordRef {
	return RecordRef{Source: r.SourceSystem, ID: r.SourceID}
}

// Validate checks the fields required for a record to participate in the
// batch. Records failing validation are skipped, not fatal.
func (r *NormalizedRecord) Validate() error {
	if r.SourceID == "" {
		return fmt.Errorf("record missing source_id")
	}
	if !r.EntityType.Valid() {
		return fmt.Errorf("record %s has unknown entity_type %q", r.SourceID, r.EntityType)
	}
	return nil
}

// RecordRef identifies a source record by (source_system, source_id).
type RecordRef struct {
	Source string `json:"source"`
	ID     string `json:"id"`
}

func (r RecordRef) String() string {
	return r.Source + "/" + r.ID
}

// PairKey builds an order-independent key for a pair of records, used to
// de-duplicate candidate pairs and to cross-reference auto-merge decisions.
func PairKey(a, b RecordRef) string {
	if b.String() < a.String() {
		a, b = b, a
	}
	return a.String() + "|" + b.String()
}

// MatchScore is the detailed breakdown of a scored candidate pair. It is
// created once per pair and immutable thereafter.
type MatchScore struct {
	Entity1     RecordRef `json:"entity1"`
	Entity2     RecordRef `json:"entity2"`
	Entity1Name string    `json:"entity1_name"`
	Entity2Name string    `json:"entity2_name"`

	// Individual sub-scores, each in [0,1].
	SSNScore     float64 `json:"ssn_score"`
	DOBScore     float64 `json:"dob_score"`
	NameScore    float64 `json:"name_score"`
	AddressScore float64 `json:"address_score"`
	PhoneScore   float64 `json:"phone_score"`
	EmailScore   float64 `json:"email_score"`

	TotalScore      float64         `json:"total_score"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	MergeAction     MergeAction     `json:"merge_action"`

	MatchReasons    []string `json:"match_reasons"`
	MismatchReasons []string `json:"mismatch_reasons"`
}

// Key returns the order-independent pair key for the scored pair.
func (m *MatchScore) Key() string {
	return PairKey(m.Entity1, m.Entity2)
}

// InferredRelationship links two distinct entities with evidence.
type InferredRelationship struct {
	Entity1          RecordRef        `json:"entity1"`
	Entity2          RecordRef        `json:"entity2"`
	Entity1Name      string           `json:"entity1_name"`
	Entity2Name      string           `json:"entity2_name"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Confidence       float64          `json:"confidence"`
	Evidence         []string         `json:"evidence"`
}

// UnifiedEntity is one resolved real-world entity, built from a connected
// component of auto-merge matches or from a single unmatched record.
//
// The unifier exclusively owns construction; downstream consumers only read.
// SourceRecords carries one provenance entry per merged member and is never
// discarded.
type UnifiedEntity struct {
	UnifiedID     string      `json:"unified_id"`
	CanonicalName string      `json:"canonical_name"`
	EntityType    EntityType  `json:"entity_type"`
	SourceRecords []RecordRef `json:"source_records"`

	TaxIDLast4  string    `json:"tax_id_last4"`
	DateOfBirth *string   `json:"date_of_birth,omitempty"`
	Addresses   []Address `json:"addresses"`
	Phones      []string  `json:"phones"`
	Emails      []string  `json:"emails"`
}
