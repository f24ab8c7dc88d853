package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPairKeyOrderIndependent(t *testing.T) {
	a := RecordRef{Source: "deposit_core", ID: "CUST-001"}
	b := RecordRef{Source: "card_system", ID: "CH-77"}

	require.Equal(t, PairKey(a, b), PairKey(b, a))
	require.Equal(t, "card_system/CH-77|deposit_core/CUST-001", PairKey(a, b))
}

func TestMatchScoreKey(t *testing.T) {
	m := MatchScore{
		Entity1: RecordRef{Source: "deposit_core", ID: "CUST-001"},
		Entity2: RecordRef{Source: "card_system", ID: "CH-77"},
	}
	require.Equal(t, PairKey(m.Entity1, m.Entity2), m.Key())
}

func TestRecordValidate(t *testing.T) {
	valid := NormalizedRecord{SourceID: "CUST-001", EntityType: EntityTypePerson}
	require.NoError(t, valid.Validate())

	missingID := NormalizedRecord{EntityType: EntityTypePerson}
	require.Error(t, missingID.Validate())

	badType := NormalizedRecord{SourceID: "CUST-001", EntityType: "ALIEN"}
	require.Error(t, badType.Validate())
}

func TestEntityTypeValid(t *testing.T) {
	require.True(t, EntityTypePerson.Valid())
	require.True(t, EntityTypeBusiness.Valid())
	require.False(t, EntityType("").Valid())
}
