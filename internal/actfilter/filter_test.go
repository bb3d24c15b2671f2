package actfilter

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dbantje/premise/pkg/lci"
)

func testDatabase() lci.Database {
	return lci.Database{
		{Name: "electricity production, hard coal", ReferenceProduct: "electricity, high voltage", Unit: "kilowatt hour", Location: "DE"},
		{Name: "electricity production, hard coal", ReferenceProduct: "electricity, high voltage", Unit: "kilowatt hour", Location: "PL"},
		{Name: "electricity production, lignite", ReferenceProduct: "electricity, high voltage", Unit: "kilowatt hour", Location: "DE"},
		{Name: "electricity production, wind, 1-3MW turbine, onshore", ReferenceProduct: "electricity, high voltage", Unit: "kilowatt hour", Location: "DK"},
		{Name: "hard coal mine operation", ReferenceProduct: "hard coal", Unit: "kilogram", Location: "CN"},
		{Name: "market for hard coal", ReferenceProduct: "hard coal", Unit: "kilogram", Location: "GLO"},
		{Name: "treatment of hard coal ash", ReferenceProduct: "hard coal ash", Unit: "kilogram", Location: "GLO"},
	}
}

func names(db lci.Database) []string {
	out := make([]string, 0, len(db))
	for _, act := range db {
		out = append(out, act.Name)
	}
	sort.Strings(out)
	return out
}

func TestApplyPatternsWithinFieldAreORCombined(t *testing.T) {
	matches, err := Apply(testDatabase(), ByName("hard coal", "lignite"), Spec{}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"electricity production, hard coal",
		"electricity production, hard coal",
		"electricity production, lignite",
		"hard coal mine operation",
		"market for hard coal",
		"treatment of hard coal ash",
	}, names(matches))
}

func TestApplyFieldsAreANDCombined(t *testing.T) {
	include := ByName("hard coal").Merge(ByField("reference product", "electricity"))

	matches, err := Apply(testDatabase(), include, Spec{}, Options{})
	require.NoError(t, err)

	require.Len(t, matches, 2)
	for _, act := range matches {
		assert.Equal(t, "electricity production, hard coal", act.Name)
	}
}

func TestApplyMaskSubtracts(t *testing.T) {
	matches, err := Apply(testDatabase(), ByName("hard coal"), ByName("mine", "ash"), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"electricity production, hard coal",
		"electricity production, hard coal",
		"market for hard coal",
	}, names(matches))
}

func TestApplyMaskedResultIsSubsetOfUnmasked(t *testing.T) {
	db := testDatabase()
	unmasked, err := Apply(db, ByName("coal"), Spec{}, Options{})
	require.NoError(t, err)
	masked, err := Apply(db, ByName("coal"), ByName("market"), Options{})
	require.NoError(t, err)

	unmaskedNames := map[string]struct{}{}
	for _, act := range unmasked {
		unmaskedNames[act.Name] = struct{}{}
	}
	for _, act := range masked {
		assert.Contains(t, unmaskedNames, act.Name)
	}
	assert.Less(t, len(masked), len(unmasked))
}

func TestApplyExactMatch(t *testing.T) {
	matches, err := Apply(testDatabase(), ByName("electricity production, hard coal"), Spec{}, Options{FilterExact: true})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// A substring that is not a full name matches nothing in exact mode.
	matches, err = Apply(testDatabase(), ByName("hard coal"), Spec{}, Options{FilterExact: true})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestApplyEmptyIncludeFailsFast(t *testing.T) {
	_, err := Apply(testDatabase(), Spec{}, ByName("coal"), Options{})
	assert.ErrorIs(t, err, ErrEmptyFilter)
}

func TestApplyIsOrderIndependent(t *testing.T) {
	db := testDatabase()
	shuffled := make(lci.Database, len(db))
	copy(shuffled, db)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	a, err := Apply(db, ByName("coal"), ByName("ash"), Options{})
	require.NoError(t, err)
	b, err := Apply(shuffled, ByName("coal"), ByName("ash"), Options{})
	require.NoError(t, err)

	assert.Equal(t, names(a), names(b))
}

func TestSpecUnmarshalShapes(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want map[string][]string
	}{
		{
			name: "bare string defaults to name field",
			src:  `electricity production, hard coal`,
			want: map[string][]string{"name": {"electricity production, hard coal"}},
		},
		{
			name: "list defaults to name field",
			src:  "- hard coal\n- lignite",
			want: map[string][]string{"name": {"hard coal", "lignite"}},
		},
		{
			name: "field mapping with scalar",
			src:  "reference product: electricity",
			want: map[string][]string{"reference product": {"electricity"}},
		},
		{
			name: "field mapping with list",
			src:  "name:\n  - hard coal\n  - lignite\nunit: kilowatt hour",
			want: map[string][]string{"name": {"hard coal", "lignite"}, "unit": {"kilowatt hour"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var spec Spec
			require.NoError(t, yaml.Unmarshal([]byte(tc.src), &spec))
			for field, patterns := range tc.want {
				assert.Equal(t, patterns, spec.Patterns(field))
			}
			assert.Len(t, spec.Fields(), len(tc.want))
		})
	}
}

func TestDefinitionUnmarshal(t *testing.T) {
	src := `
fltr:
  - electricity production, hard coal
mask: mine
`
	var def Definition
	require.NoError(t, yaml.Unmarshal([]byte(src), &def))

	assert.Equal(t, []string{"electricity production, hard coal"}, def.Include.Patterns("name"))
	assert.Equal(t, []string{"mine"}, def.Exclude.Patterns("name"))
}
