// Package transform maps the working draft onto the backend's wire shapes:
// the JSON create/update request and the multipart form used when media is
// sent inline.
package transform

import (
	"sort"
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
)

// OtherRelativeID is used for every tag the table does not know.
const OtherRelativeID = 11

// relativeTags is the fixed tag -> id table shared with the backend.
var relativeTags = []struct {
	tag string
	id  int
}{
	{"father", 1},
	{"brother", 2},
	{"sister", 3},
	{"son", 4},
	{"daughter", 5},
	{"grandfather", 6},
	{"grandmother", 7},
	{"uncle", 8},
	{"aunt", 9},
	{"cousin", 10},
	{"other", OtherRelativeID},
	{"mother", 12},
	{"husband", 13},
	{"wife", 14},
	{"friend", 15},
	{"neighbor", 16},
	{"colleague", 17},
	{"grandchild", 18},
}

var (
	idByTag = make(map[string]int, len(relativeTags))
	tagByID = make(map[int]string, len(relativeTags))
)

func init() {
	for _, r := range relativeTags {
		idByTag[r.tag] = r.id
		tagByID[r.id] = r.tag
	}
}

// RelativeTypeID returns the id for tag, OtherRelativeID when unknown.
func RelativeTypeID(tag string) int {
	if id, ok := idByTag[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return id
	}
	return OtherRelativeID
}

// RelativeTag is the inverse of RelativeTypeID.
func RelativeTag(id int) string {
	if tag, ok := tagByID[id]; ok {
		return tag
	}
	return "other"
}

// RelativeTags lists the known tags in id order.
func RelativeTags() []string {
	tags := make([]string, 0, len(relativeTags))
	for _, r := range relativeTags {
		tags = append(tags, r.tag)
	}
	return tags
}

// RelativesToAPI drops relatives without a name and numbers the rest by
// their position in the result.
func RelativesToAPI(rels []models.DraftRelative) []models.Relative {
	out := make([]models.Relative, 0, len(rels))
	for _, r := range rels {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		out = append(out, models.Relative{
			RelativeTypeID: RelativeTypeID(r.Value),
			PersonName:     name,
			Order:          len(out),
		})
	}
	return out
}

// RelativesFromAPI converts server relatives back to draft entries, in
// Order. An id of 0 falls back to the embedded relative type key.
func RelativesFromAPI(rels []models.Relative) []models.DraftRelative {
	sorted := append([]models.Relative(nil), rels...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	out := make([]models.DraftRelative, 0, len(sorted))
	for _, r := range sorted {
		tag := RelativeTag(r.RelativeTypeID)
		if r.RelativeTypeID == 0 && r.RelativeType != nil {
			tag = RelativeTag(RelativeTypeID(r.RelativeType.Key))
		}
		out = append(out, models.DraftRelative{Value: tag, Name: r.PersonName})
	}
	return out
}
