package checklist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
)

func TestItemsFor_Counts(t *testing.T) {
	tests := []struct {
		checklistType Type
		want          int
	}{
		{TypeSeller, 13},
		{TypeBuyer, 14},
		{TypeReform, 10},
	}

	for _, tt := range tests {
		t.Run(tt.checklistType.String(), func(t *testing.T) {
			defs, err := ItemsFor(tt.checklistType)
			require.NoError(t, err)
			assert.Len(t, defs, tt.want)
		})
	}
}

func TestItemsFor_OrderedAndUniqueKeys(t *testing.T) {
	for _, ct := range Types {
		defs, err := ItemsFor(ct)
		require.NoError(t, err)

		seen := make(map[string]bool)
		for i, def := range defs {
			assert.False(t, seen[def.Key], "duplicate key %s in %s", def.Key, ct)
			seen[def.Key] = true
			assert.NotEmpty(t, def.Label)
			if i > 0 {
				assert.Greater(t, def.Order, defs[i-1].Order, "%s not ordered at %s", ct, def.Key)
			}
		}
	}
}

func TestItemsFor_StableAcrossCalls(t *testing.T) {
	first, err := ItemsFor(TypeBuyer)
	require.NoError(t, err)

	// Mutating a returned slice must not leak into the catalog
	first[0].Label = "changed"

	second, err := ItemsFor(TypeBuyer)
	require.NoError(t, err)
	third, err := ItemsFor(TypeBuyer)
	require.NoError(t, err)

	if diff := cmp.Diff(second, third); diff != "" {
		t.Errorf("ItemsFor() not stable (-second +third):\n%s", diff)
	}
	assert.Equal(t, "購入希望条件の詳細ヒアリング", second[0].Label)
}

func TestItemsFor_UnknownType(t *testing.T) {
	_, err := ItemsFor(Type("rental"))
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestParseType(t *testing.T) {
	ct, err := ParseType("reform")
	require.NoError(t, err)
	assert.Equal(t, TypeReform, ct)

	_, err = ParseType("")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestDefinition(t *testing.T) {
	def, ok := Definition(TypeSeller, "handover")
	require.True(t, ok)
	assert.Equal(t, 13, def.Order)

	_, ok = Definition(TypeSeller, "site_survey")
	assert.False(t, ok)
}
