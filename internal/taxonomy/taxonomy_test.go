package taxonomy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadEmbeddedTable(t *testing.T) {
	t.Parallel()

	tax, err := Load("en")
	require.NoError(t, err)

	assert.Equal(t, 21, tax.NumClasses())
	assert.Equal(t, "en", tax.Locale())

	// Row order is the model's output order and must survive loading.
	classes := tax.Classes()
	assert.Equal(t, "Agaricus bisporus", classes[0])
	assert.Equal(t, "Boletus edulis", classes[5])
	assert.Equal(t, "Xerocomellus chrysenteron", classes[20])
}

func TestLocaleSelectsCommonNameColumn(t *testing.T) {
	t.Parallel()

	english, err := Load("en")
	require.NoError(t, err)
	assert.Equal(t, "Porcini", english.CommonName("Boletus edulis"))
	assert.Equal(t, "Edible", english.Edibility("Boletus edulis"))
	assert.Equal(t, "Poisonous", english.Edibility("Amanita muscaria"))
	assert.Equal(t, "Unknown", english.Edibility("Tricholoma equestre"))

	polish, err := Load("pl")
	require.NoError(t, err)
	assert.Equal(t, "pl", polish.Locale())
	assert.Equal(t, "Borowik szlachetny", polish.CommonName("Boletus edulis"))
	assert.Equal(t, "Jadalny", polish.Edibility("Boletus edulis"))
	assert.Equal(t, "Trujący", polish.Edibility("Amanita muscaria"))
	assert.Equal(t, "Nieznane", polish.Edibility("Tricholoma equestre"))
}

func TestUnsupportedLocaleFallsBackToEnglish(t *testing.T) {
	t.Parallel()

	tax, err := Load("ja")
	require.NoError(t, err)
	assert.Equal(t, "en", tax.Locale())
	assert.Equal(t, "Porcini", tax.CommonName("Boletus edulis"))
}

func TestRegionalLocaleVariantMatches(t *testing.T) {
	t.Parallel()

	tax, err := Load("pl-PL")
	require.NoError(t, err)
	assert.Equal(t, "pl", tax.Locale())
}

func TestParseSkipsUnusableRows(t *testing.T) {
	t.Parallel()

	table := strings.Join([]string{
		"scientific_name,polish_name,english_name,edibility",
		"Boletus edulis,Borowik szlachetny,Porcini,edible",
		"short,row",                            // fewer than four fields
		",Bezimienny,Nameless,edible",          // empty scientific name
		"Amanita muscaria,Muchomor czerwony,Fly agaric,poisonous",
	}, "\n")

	tax, err := LoadFile(writeTable(t, table), "en")
	require.NoError(t, err)

	assert.Equal(t, []string{"Boletus edulis", "Amanita muscaria"}, tax.Classes())
}

func TestParseHeaderIsAlwaysSkipped(t *testing.T) {
	t.Parallel()

	// Even a header that looks like data must not become a class.
	table := strings.Join([]string{
		"Agaricus bisporus,Pieczarka,Button mushroom,edible",
		"Boletus edulis,Borowik szlachetny,Porcini,edible",
	}, "\n")

	tax, err := LoadFile(writeTable(t, table), "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"Boletus edulis"}, tax.Classes())
}

func TestParseEmptyTableIsAnError(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(writeTable(t, "scientific_name,polish_name,english_name,edibility\n"), "en")
	require.Error(t, err)
}

func TestLoadFileMissingPath(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"), "en")
	require.Error(t, err)
}

func TestEdibilityTokenMatchingIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	table := strings.Join([]string{
		"scientific_name,polish_name,english_name,edibility",
		"Boletus edulis,Borowik szlachetny,Porcini,EDIBLE",
		"Amanita muscaria,Muchomor czerwony,Fly agaric,Poisonous",
		"Tricholoma equestre,Gąska zielonka,Man on horseback,conditionally-edible",
	}, "\n")

	tax, err := LoadFile(writeTable(t, table), "en")
	require.NoError(t, err)

	assert.Equal(t, "Edible", tax.Edibility("Boletus edulis"))
	assert.Equal(t, "Poisonous", tax.Edibility("Amanita muscaria"))
	// Unrecognized tokens pass through unchanged.
	assert.Equal(t, "conditionally-edible", tax.Edibility("Tricholoma equestre"))
}

func TestCommonNameFallsBackToScientific(t *testing.T) {
	t.Parallel()

	tax, err := Load("en")
	require.NoError(t, err)
	assert.Equal(t, "Unknownus fungus", tax.CommonName("Unknownus fungus"))
}

func TestEdibilityForUnknownNameIsUnknown(t *testing.T) {
	t.Parallel()

	english, err := Load("en")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", english.Edibility("Unknownus fungus"))

	polish, err := Load("pl")
	require.NoError(t, err)
	assert.Equal(t, "Nieznane", polish.Edibility("Unknownus fungus"))
}
