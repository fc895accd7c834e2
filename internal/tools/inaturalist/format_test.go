package inaturalist

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestFormatObservationUpgradesPhotoSize(t *testing.T) {
	obs := Observation{
		ID:     1234,
		Photos: []Photo{{URL: "https://static.inaturalist.org/photos/1/square.jpg"}},
	}

	text := formatObservation(obs)

	assert.Contains(t, text, "https://static.inaturalist.org/photos/1/medium.jpg")
	assert.NotContains(t, text, "square")
}

func TestFormatObservationNilTaxon(t *testing.T) {
	text := formatObservation(Observation{ID: 1})

	assert.Contains(t, text, "**Unknown** (*Unknown*)")
	assert.Contains(t, text, "Observer: unknown | Date: unknown")
	assert.Contains(t, text, "Location: Unknown location | Quality: unknown")
	assert.Contains(t, text, "Link: https://www.inaturalist.org/observations/1")
}

func TestFormatObservationDatePreference(t *testing.T) {
	obs := Observation{
		ObservedOn:        "2024-03-09",
		ObservedOnDetails: &ObservedOnDetails{Date: "2024-03-10"},
	}
	assert.Contains(t, formatObservation(obs), "Date: 2024-03-10")

	obs.ObservedOnDetails = nil
	assert.Contains(t, formatObservation(obs), "Date: 2024-03-09")
}

func TestFormatObservationFullRecord(t *testing.T) {
	obs := Observation{
		ID:           4567,
		Taxon:        &Taxon{Name: "Petroica longipes", PreferredCommonName: "North Island Robin"},
		User:         &User{Login: "kiwibirder"},
		ObservedOn:   "2024-01-15",
		PlaceGuess:   "Zealandia, Wellington",
		QualityGrade: "research",
	}

	text := formatObservation(obs)

	assert.Equal(t, strings.Join([]string{
		"**North Island Robin** (*Petroica longipes*)",
		"  Observer: kiwibirder | Date: 2024-01-15",
		"  Location: Zealandia, Wellington | Quality: research",
		"  Link: https://www.inaturalist.org/observations/4567",
	}, "\n"), text)
}

func TestFormatSpeciesCountPhotoFallback(t *testing.T) {
	item := SpeciesCount{
		Count: 12,
		Taxon: Taxon{
			Name:                "Trichosurus vulpecula",
			PreferredCommonName: "Common Brushtail Possum",
			DefaultPhoto:        &Photo{URL: "https://example.org/p.jpg"},
		},
	}

	text := formatSpeciesCount(item)
	assert.Contains(t, text, "**Common Brushtail Possum** (*Trichosurus vulpecula*) — 12 observations")
	assert.Contains(t, text, "Photo: https://example.org/p.jpg")

	item.Taxon.DefaultPhoto.MediumURL = "https://example.org/medium.jpg"
	assert.Contains(t, formatSpeciesCount(item), "Photo: https://example.org/medium.jpg")

	item.Taxon.DefaultPhoto = nil
	assert.NotContains(t, formatSpeciesCount(item), "Photo:")
}

func TestFormatTaxonBasic(t *testing.T) {
	taxon := Taxon{
		ID:                  43583,
		Name:                "Ornithorhynchus anatinus",
		PreferredCommonName: "Platypus",
		Rank:                "species",
		ObservationsCount:   5000,
	}

	assert.Equal(t, "**Platypus** (*Ornithorhynchus anatinus*) — species (ID: 43583, 5000 observations)",
		formatTaxon(taxon, false))

	taxon.PreferredCommonName = ""
	assert.Equal(t, "*Ornithorhynchus anatinus* — species (ID: 43583, 5000 observations)",
		formatTaxon(taxon, false))
}

func TestFormatTaxonAncestorChain(t *testing.T) {
	taxon := Taxon{
		Name: "Ornithorhynchus anatinus",
		Ancestors: []Taxon{
			{PreferredCommonName: "Animals", Name: "Animalia"},
			{Name: "Monotremata"},
			{},
		},
	}

	text := formatTaxon(taxon, true)
	assert.Contains(t, text, "  Taxonomy: Animals > Monotremata > ?")
}

func TestFormatTaxonConservationStatusPreference(t *testing.T) {
	taxon := Taxon{
		Name:               "Apteryx mantelli",
		ConservationStatus: &ConservationStatus{StatusName: "Declining", Status: "NT"},
		ConservationStatuses: []ConservationStatus{
			{Status: "VU", Authority: "IUCN"},
		},
	}

	// The singular status object wins over the list.
	text := formatTaxon(taxon, true)
	assert.Contains(t, text, "  Conservation: Declining")
	assert.NotContains(t, text, "VU (IUCN)")

	taxon.ConservationStatus = nil
	taxon.ConservationStatuses = []ConservationStatus{
		{Status: "VU", Authority: "IUCN"},
		{Status: "EN"},
		{Authority: "DOC"},
		{Status: "LC", Authority: "IUCN"},
	}
	text = formatTaxon(taxon, true)
	assert.Contains(t, text, "  Conservation: VU (IUCN), EN (?), ? (DOC)")
	assert.NotContains(t, text, "LC (IUCN)")
}

func TestFormatTaxonSummaryStrippedAndTruncated(t *testing.T) {
	summary := "<p><b>" + strings.Repeat("a", 320) + "</b></p>"
	taxon := Taxon{Name: "Testus", WikipediaSummary: summary}

	text := formatTaxon(taxon, true)

	assert.NotContains(t, text, "<")
	assert.Contains(t, text, "  Summary: "+strings.Repeat("a", 300)+"...")
}

func TestFormatTaxonShortSummaryKeptWhole(t *testing.T) {
	taxon := Taxon{Name: "Testus", WikipediaSummary: "<i>A small creature.</i>"}

	text := formatTaxon(taxon, true)

	assert.Contains(t, text, "  Summary: A small creature.")
	assert.NotContains(t, text, "...")
}

func TestFormatPlaceBounds(t *testing.T) {
	place := Place{
		ID:          6803,
		DisplayName: "New Zealand",
		BoundingBoxGeoJSON: &BoundingBox{
			Coordinates: [][][]float64{{
				{170.0, -34.5},
				{171.2, -35.75},
				{170.6, -33.1},
				{170.0, -34.5},
			}},
		},
	}

	text := formatPlace(place)

	assert.Contains(t, text, "**New Zealand** (ID: 6803)")
	assert.Contains(t, text, "\n  Bounds: -35.75,170.00 to -33.10,171.20")
}

func TestFormatPlaceFallbacks(t *testing.T) {
	assert.Equal(t, "**Unknown** (ID: 0)", formatPlace(Place{}))
	assert.Equal(t, "**Wellington** (ID: 5)", formatPlace(Place{ID: 5, Name: "Wellington"}))

	place := Place{ID: 5, Name: "Wellington", AdminLevel: intPtr(2)}
	assert.Equal(t, "**Wellington** (ID: 5) (admin level 2)", formatPlace(place))
}

func TestFormatPlaceIgnoresDegenerateRing(t *testing.T) {
	place := Place{
		ID:   9,
		Name: "Dot",
		BoundingBoxGeoJSON: &BoundingBox{
			Coordinates: [][][]float64{{{1.0, 2.0}, {1.0, 2.0}}},
		},
	}

	assert.NotContains(t, formatPlace(place), "Bounds:")
}

func TestFormatProject(t *testing.T) {
	project := Project{
		ID:                999,
		Title:             "City Nature Challenge",
		Slug:              "city-nature-challenge",
		Description:       "<p>A global <b>bioblitz</b> event.</p>",
		ObservationsCount: intPtr(5000),
		MembersCount:      intPtr(120),
	}

	text := formatProject(project)

	assert.Contains(t, text, "**City Nature Challenge** (ID: 999)")
	assert.Contains(t, text, "  Link: https://www.inaturalist.org/projects/city-nature-challenge")
	assert.Contains(t, text, "  5000 observations, 120 members")
	assert.Contains(t, text, "  A global bioblitz event.")
}

func TestFormatProjectSlugFallbackAndTruncation(t *testing.T) {
	project := Project{
		ID:          42,
		Title:       "Long One",
		Description: "<b>" + strings.Repeat("x", 250) + "</b>",
	}

	text := formatProject(project)

	assert.Contains(t, text, "  Link: https://www.inaturalist.org/projects/42")
	assert.Contains(t, text, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, text, strings.Repeat("x", 201))
}

func TestFormatProjectOmitsEmptyDescription(t *testing.T) {
	project := Project{ID: 1, Title: "Quiet", Description: "<p>  </p>"}

	text := formatProject(project)

	assert.Equal(t, "**Quiet** (ID: 1)\n  Link: https://www.inaturalist.org/projects/1", text)
}

func TestFormatUser(t *testing.T) {
	assert.Equal(t, "**Jane (@jane)** — 12 observations",
		formatUser(User{Login: "jane", Name: "Jane", ObservationsCount: 12}))
	assert.Equal(t, "**@jane** — 12 observations",
		formatUser(User{Login: "jane", ObservationsCount: 12}))
}

func TestFormatSearchRecordDispatch(t *testing.T) {
	taxonRecord, _ := json.Marshal(Taxon{Name: "Danaus plexippus", PreferredCommonName: "Monarch", Rank: "species", ID: 48662})
	placeRecord, _ := json.Marshal(Place{ID: 1, DisplayName: "Mexico"})
	userRecord, _ := json.Marshal(User{Login: "jane", Name: "Jane", ObservationsCount: 12})

	assert.Contains(t, formatSearchRecord(SearchRecord{Type: "Taxon", Record: taxonRecord}), "[Taxon] **Monarch** (*Danaus plexippus*)")
	assert.Contains(t, formatSearchRecord(SearchRecord{Type: "Place", Record: placeRecord}), "[Place] **Mexico** (ID: 1)")
	assert.Equal(t, "[User] **Jane (@jane)** — 12 observations", formatSearchRecord(SearchRecord{Type: "User", Record: userRecord}))
}

func TestFormatSearchRecordUnknownType(t *testing.T) {
	assert.Equal(t, "[Message] Field notes",
		formatSearchRecord(SearchRecord{Type: "Message", Record: json.RawMessage(`{"title": "Field notes"}`)}))
	assert.Equal(t, "[unknown] Unknown",
		formatSearchRecord(SearchRecord{Record: json.RawMessage(`{}`)}))
}

func TestTruncateCountsRunes(t *testing.T) {
	s := strings.Repeat("ū", 310)
	out := truncate(s, 300)
	assert.Equal(t, strings.Repeat("ū", 300)+"...", out)
}
