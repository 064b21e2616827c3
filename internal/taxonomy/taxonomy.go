// Package taxonomy loads the bundled mushroom reference table and provides
// lookups from scientific names to localized common names and edibility.
//
// The row order of the table is the index-to-label mapping the classification
// model was trained with. It must never be reordered.
package taxonomy

import (
	"bufio"
	"bytes"
	_ "embed" // bundled reference table
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/Mark0fPride/app-cnn/internal/errors"
)

//go:embed data/mushrooms.csv
var embeddedTable []byte

// Number of columns a row needs to be usable.
const minFields = 4

// supportedLocales lists the locales the reference table carries common
// names for. The first entry is the fallback.
var supportedLocales = []language.Tag{
	language.English,
	language.Polish,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// edibilityDisplay maps lowercased edibility tokens to display strings per
// supported locale. Tokens not present pass through unchanged.
var edibilityDisplay = map[language.Tag]map[string]string{
	language.English: {
		"edible":    "Edible",
		"poisonous": "Poisonous",
		"unknown":   "Unknown",
	},
	language.Polish: {
		"edible":    "Jadalny",
		"poisonous": "Trujący",
		"unknown":   "Nieznane",
	},
}

// Taxonomy holds the loaded reference table.
type Taxonomy struct {
	classes     []string          // scientific names in table order
	commonNames map[string]string // scientific name -> localized common name
	edibility   map[string]string // scientific name -> localized edibility display
	locale      language.Tag
}

// Load parses the embedded reference table for the given locale code.
func Load(localeCode string) (*Taxonomy, error) {
	return parse(bytes.NewReader(embeddedTable), localeCode, "embedded")
}

// LoadFile parses a reference table from disk, for custom taxonomies.
func LoadFile(path, localeCode string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("opening taxonomy table: %w", err)).
			Component("taxonomy").
			Category(errors.CategoryTaxonomyLoad).
			FileContext(path).
			Build()
	}
	defer f.Close()
	return parse(f, localeCode, path)
}

// parse reads the delimited table. The header row is skipped. Rows with an
// empty scientific name or fewer than four fields are dropped without
// aborting the load.
func parse(r io.Reader, localeCode, source string) (*Taxonomy, error) {
	locale, _, _ := localeMatcher.Match(language.Make(localeCode))
	// Matcher may return a regional variant, reduce to the base language.
	base, _ := locale.Base()
	locale = language.Make(base.String())
	if _, ok := edibilityDisplay[locale]; !ok {
		locale = language.English
	}

	t := &Taxonomy{
		commonNames: make(map[string]string),
		edibility:   make(map[string]string),
		locale:      locale,
	}

	scanner := bufio.NewScanner(r)
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Split(scanner.Text(), ",")
		if len(fields) < minFields {
			continue
		}
		scientificName := strings.TrimSpace(fields[0])
		if scientificName == "" {
			continue
		}
		polishName := strings.TrimSpace(fields[1])
		englishName := strings.TrimSpace(fields[2])
		edibilityToken := strings.TrimSpace(fields[3])

		t.classes = append(t.classes, scientificName)
		if locale == language.Polish {
			t.commonNames[scientificName] = polishName
		} else {
			t.commonNames[scientificName] = englishName
		}
		t.edibility[scientificName] = translateEdibility(edibilityToken, locale)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(fmt.Errorf("reading taxonomy table: %w", err)).
			Component("taxonomy").
			Category(errors.CategoryTaxonomyLoad).
			Context("source", source).
			Build()
	}
	if len(t.classes) == 0 {
		return nil, errors.Newf("taxonomy table %s contains no usable rows", source).
			Component("taxonomy").
			Category(errors.CategoryTaxonomyLoad).
			Build()
	}
	return t, nil
}

// translateEdibility maps an edibility token to its localized display
// string. Matching is case-insensitive, unrecognized tokens pass through.
func translateEdibility(token string, locale language.Tag) string {
	if display, ok := edibilityDisplay[locale][strings.ToLower(token)]; ok {
		return display
	}
	return token
}

// Classes returns the scientific names in model output order.
func (t *Taxonomy) Classes() []string {
	return t.classes
}

// NumClasses returns the number of classes in the table.
func (t *Taxonomy) NumClasses() int {
	return len(t.classes)
}

// Locale returns the locale the table was loaded for.
func (t *Taxonomy) Locale() string {
	return t.locale.String()
}

// CommonName returns the localized common name for a scientific name, or
// the scientific name itself when unknown.
func (t *Taxonomy) CommonName(scientificName string) string {
	if name, ok := t.commonNames[strings.TrimSpace(scientificName)]; ok && name != "" {
		return name
	}
	return scientificName
}

// Edibility returns the localized edibility display string for a scientific
// name. Unknown names report the localized "unknown" string.
func (t *Taxonomy) Edibility(scientificName string) string {
	if edibility, ok := t.edibility[strings.TrimSpace(scientificName)]; ok {
		return edibility
	}
	return translateEdibility("unknown", t.locale)
}
