package inaturalist

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const observationsBaseURL = "https://www.inaturalist.org"

// htmlTagPattern matches markup tags in user-authored summaries and
// descriptions. A full HTML parser is deliberately not used; the inputs are
// short prose snippets.
var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripTags(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}

// truncate shortens s to at most max characters, appending an ellipsis when
// anything was cut
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return s
}

// formatObservation renders one observation record as display text
func formatObservation(obs Observation) string {
	common, scientific := "Unknown", "Unknown"
	if obs.Taxon != nil {
		if obs.Taxon.PreferredCommonName != "" {
			common = obs.Taxon.PreferredCommonName
		}
		if obs.Taxon.Name != "" {
			scientific = obs.Taxon.Name
		}
	}

	observer := "unknown"
	if obs.User != nil && obs.User.Login != "" {
		observer = obs.User.Login
	}

	date := "unknown"
	switch {
	case obs.ObservedOnDetails != nil && obs.ObservedOnDetails.Date != "":
		date = obs.ObservedOnDetails.Date
	case obs.ObservedOn != "":
		date = obs.ObservedOn
	}

	place := obs.PlaceGuess
	if place == "" {
		place = "Unknown location"
	}
	quality := obs.QualityGrade
	if quality == "" {
		quality = "unknown"
	}

	lines := []string{
		fmt.Sprintf("**%s** (*%s*)", common, scientific),
		fmt.Sprintf("  Observer: %s | Date: %s", observer, date),
		fmt.Sprintf("  Location: %s | Quality: %s", place, quality),
		fmt.Sprintf("  Link: %s/observations/%d", observationsBaseURL, obs.ID),
	}
	if len(obs.Photos) > 0 && obs.Photos[0].URL != "" {
		// Photo URLs come back in the thumbnail variant; swap the size token
		// for the medium one.
		lines = append(lines, "  Photo: "+strings.ReplaceAll(obs.Photos[0].URL, "square", "medium"))
	}
	return strings.Join(lines, "\n")
}

// taxonPhotoURL picks the best representative photo URL for a taxon,
// preferring the medium-size variant
func taxonPhotoURL(t Taxon) string {
	if t.DefaultPhoto == nil {
		return ""
	}
	if t.DefaultPhoto.MediumURL != "" {
		return t.DefaultPhoto.MediumURL
	}
	return t.DefaultPhoto.URL
}

// formatSpeciesCount renders one species-counts entry as display text
func formatSpeciesCount(item SpeciesCount) string {
	common := item.Taxon.PreferredCommonName
	if common == "" {
		common = "Unknown"
	}
	scientific := item.Taxon.Name
	if scientific == "" {
		scientific = "Unknown"
	}

	line := fmt.Sprintf("**%s** (*%s*) — %d observations", common, scientific, item.Count)
	if photoURL := taxonPhotoURL(item.Taxon); photoURL != "" {
		line += "\n  Photo: " + photoURL
	}
	return line
}

// formatTaxon renders a taxon as display text. Detailed mode adds the
// ancestor chain, conservation status, a summary with markup stripped, and a
// representative photo.
func formatTaxon(t Taxon, detailed bool) string {
	scientific := t.Name
	if scientific == "" {
		scientific = "Unknown"
	}
	rank := t.Rank
	if rank == "" {
		rank = "unknown"
	}

	title := fmt.Sprintf("*%s*", scientific)
	if t.PreferredCommonName != "" {
		title = fmt.Sprintf("**%s** (*%s*)", t.PreferredCommonName, scientific)
	}
	lines := []string{fmt.Sprintf("%s — %s (ID: %d, %d observations)", title, rank, t.ID, t.ObservationsCount)}

	if detailed {
		if len(t.Ancestors) > 0 {
			names := make([]string, 0, len(t.Ancestors))
			for _, ancestor := range t.Ancestors {
				switch {
				case ancestor.PreferredCommonName != "":
					names = append(names, ancestor.PreferredCommonName)
				case ancestor.Name != "":
					names = append(names, ancestor.Name)
				default:
					names = append(names, "?")
				}
			}
			lines = append(lines, "  Taxonomy: "+strings.Join(names, " > "))
		}

		// The singular status object wins; the status list is only consulted
		// when no singular object is present.
		if cs := t.ConservationStatus; cs != nil {
			name := cs.StatusName
			if name == "" {
				name = cs.Status
			}
			if name == "" {
				name = "unknown"
			}
			lines = append(lines, "  Conservation: "+name)
		} else if len(t.ConservationStatuses) > 0 {
			statuses := t.ConservationStatuses
			if len(statuses) > 3 {
				statuses = statuses[:3]
			}
			parts := make([]string, 0, len(statuses))
			for _, status := range statuses {
				code := status.Status
				if code == "" {
					code = "?"
				}
				authority := status.Authority
				if authority == "" {
					authority = "?"
				}
				parts = append(parts, fmt.Sprintf("%s (%s)", code, authority))
			}
			lines = append(lines, "  Conservation: "+strings.Join(parts, ", "))
		}

		if t.WikipediaSummary != "" {
			lines = append(lines, "  Summary: "+truncate(stripTags(t.WikipediaSummary), 300))
		}

		if photoURL := taxonPhotoURL(t); photoURL != "" {
			lines = append(lines, "  Photo: "+photoURL)
		}
	}

	return strings.Join(lines, "\n")
}

// formatPlace renders a place as display text, including a min/max bounds
// summary when the place carries a bounding geometry
func formatPlace(p Place) string {
	name := p.DisplayName
	if name == "" {
		name = p.Name
	}
	if name == "" {
		name = "Unknown"
	}

	var admin string
	if p.AdminLevel != nil {
		admin = fmt.Sprintf(" (admin level %d)", *p.AdminLevel)
	}

	var bounds string
	if bbox := p.BoundingBoxGeoJSON; bbox != nil && len(bbox.Coordinates) > 0 {
		ring := bbox.Coordinates[0]
		if len(ring) >= 3 && len(ring[0]) >= 2 {
			minLat, maxLat := ring[0][1], ring[0][1]
			minLng, maxLng := ring[0][0], ring[0][0]
			for _, coord := range ring[1:] {
				if len(coord) < 2 {
					continue
				}
				minLat = math.Min(minLat, coord[1])
				maxLat = math.Max(maxLat, coord[1])
				minLng = math.Min(minLng, coord[0])
				maxLng = math.Max(maxLng, coord[0])
			}
			bounds = fmt.Sprintf("\n  Bounds: %.2f,%.2f to %.2f,%.2f", minLat, minLng, maxLat, maxLng)
		}
	}

	return fmt.Sprintf("**%s** (ID: %d)%s%s", name, p.ID, admin, bounds)
}

// formatProject renders a community project as display text
func formatProject(p Project) string {
	title := p.Title
	if title == "" {
		title = "Unknown"
	}
	slug := p.Slug
	if slug == "" {
		slug = strconv.Itoa(p.ID)
	}

	lines := []string{
		fmt.Sprintf("**%s** (ID: %d)", title, p.ID),
		fmt.Sprintf("  Link: %s/projects/%s", observationsBaseURL, slug),
	}

	var stats []string
	if p.ObservationsCount != nil {
		stats = append(stats, fmt.Sprintf("%d observations", *p.ObservationsCount))
	}
	if p.MembersCount != nil {
		stats = append(stats, fmt.Sprintf("%d members", *p.MembersCount))
	}
	if len(stats) > 0 {
		lines = append(lines, "  "+strings.Join(stats, ", "))
	}

	if p.Description != "" {
		clean := strings.TrimSpace(stripTags(p.Description))
		if clean != "" {
			lines = append(lines, "  "+truncate(clean, 200))
		}
	}
	return strings.Join(lines, "\n")
}

// formatUser renders a user search record as display text
func formatUser(u User) string {
	login := u.Login
	if login == "" {
		login = "unknown"
	}
	label := "@" + login
	if u.Name != "" {
		label = fmt.Sprintf("%s (@%s)", u.Name, login)
	}
	return fmt.Sprintf("**%s** — %d observations", label, u.ObservationsCount)
}

// formatSearchRecord renders one universal-search entry according to its type
// tag, falling back to a bare name/title line for types without a formatter
func formatSearchRecord(item SearchRecord) string {
	switch item.Type {
	case "Taxon":
		var t Taxon
		if err := json.Unmarshal(item.Record, &t); err == nil {
			return "[Taxon] " + formatTaxon(t, false)
		}
	case "Place":
		var p Place
		if err := json.Unmarshal(item.Record, &p); err == nil {
			return "[Place] " + formatPlace(p)
		}
	case "Project":
		var p Project
		if err := json.Unmarshal(item.Record, &p); err == nil {
			return "[Project] " + formatProject(p)
		}
	case "User":
		var u User
		if err := json.Unmarshal(item.Record, &u); err == nil {
			return "[User] " + formatUser(u)
		}
	}

	var generic struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	_ = json.Unmarshal(item.Record, &generic)
	label := generic.Name
	if label == "" {
		label = generic.Title
	}
	if label == "" {
		label = "Unknown"
	}
	recordType := item.Type
	if recordType == "" {
		recordType = "unknown"
	}
	return fmt.Sprintf("[%s] %s", recordType, label)
}
