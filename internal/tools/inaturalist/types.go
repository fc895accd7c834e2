package inaturalist

import "encoding/json"

// Models for the subset of the iNaturalist API schema the formatters read.
// Absent fields decode to zero values; the formatters substitute "Unknown" or
// drop the line instead of failing.

// Photo represents an observation or taxon photo
type Photo struct {
	URL       string `json:"url"`
	MediumURL string `json:"medium_url"`
}

// ConservationStatus represents a taxon's conservation status entry
type ConservationStatus struct {
	Status     string `json:"status"`
	StatusName string `json:"status_name"`
	Authority  string `json:"authority"`
}

// Taxon represents a taxonomic unit (species, genus, family, ...)
type Taxon struct {
	ID                   int                  `json:"id"`
	Name                 string               `json:"name"`
	PreferredCommonName  string               `json:"preferred_common_name"`
	Rank                 string               `json:"rank"`
	ObservationsCount    int                  `json:"observations_count"`
	Ancestors            []Taxon              `json:"ancestors"`
	ConservationStatus   *ConservationStatus  `json:"conservation_status"`
	ConservationStatuses []ConservationStatus `json:"conservation_statuses"`
	WikipediaSummary     string               `json:"wikipedia_summary"`
	DefaultPhoto         *Photo               `json:"default_photo"`
}

// User represents an iNaturalist account
type User struct {
	Login             string `json:"login"`
	Name              string `json:"name"`
	ObservationsCount int    `json:"observations_count"`
}

// ObservedOnDetails is the structured form of an observation date
type ObservedOnDetails struct {
	Date string `json:"date"`
}

// Observation represents a single wildlife observation record
type Observation struct {
	ID                int                `json:"id"`
	Taxon             *Taxon             `json:"taxon"`
	User              *User              `json:"user"`
	ObservedOn        string             `json:"observed_on"`
	ObservedOnDetails *ObservedOnDetails `json:"observed_on_details"`
	PlaceGuess        string             `json:"place_guess"`
	QualityGrade      string             `json:"quality_grade"`
	Photos            []Photo            `json:"photos"`
}

// SpeciesCount is one entry of a species-counts or similar-species listing
type SpeciesCount struct {
	Count int   `json:"count"`
	Taxon Taxon `json:"taxon"`
}

// BoundingBox is the GeoJSON bounding geometry of a place
type BoundingBox struct {
	Coordinates [][][]float64 `json:"coordinates"`
}

// Place represents an iNaturalist place
type Place struct {
	ID                 int          `json:"id"`
	Name               string       `json:"name"`
	DisplayName        string       `json:"display_name"`
	AdminLevel         *int         `json:"admin_level"`
	BoundingBoxGeoJSON *BoundingBox `json:"bounding_box_geojson"`
}

// Project represents a community project
type Project struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	Slug              string `json:"slug"`
	Description       string `json:"description"`
	ObservationsCount *int   `json:"observations_count"`
	MembersCount      *int   `json:"members_count"`
}

// SearchRecord is one entry from the universal search endpoint: a type tag
// plus a record whose shape depends on the tag
type SearchRecord struct {
	Type   string          `json:"type"`
	Record json.RawMessage `json:"record"`
}

// Page envelopes. Every list endpoint wraps its records in a "results" array;
// the nearby-places endpoint alone returns an object of named arrays.

type observationsPage struct {
	TotalResults int           `json:"total_results"`
	Results      []Observation `json:"results"`
}

type speciesCountsPage struct {
	TotalResults int            `json:"total_results"`
	Results      []SpeciesCount `json:"results"`
}

type taxaPage struct {
	TotalResults int     `json:"total_results"`
	Results      []Taxon `json:"results"`
}

type placesPage struct {
	TotalResults int     `json:"total_results"`
	Results      []Place `json:"results"`
}

type projectsPage struct {
	TotalResults int       `json:"total_results"`
	Results      []Project `json:"results"`
}

type searchPage struct {
	TotalResults int            `json:"total_results"`
	Results      []SearchRecord `json:"results"`
}

type nearbyPlacesPage struct {
	Results struct {
		Standard  []Place `json:"standard"`
		Community []Place `json:"community"`
	} `json:"results"`
}
