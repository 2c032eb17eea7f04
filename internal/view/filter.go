package view

import (
	"strconv"

	"clubboard/internal/models"
)

// AllParts is the part filter that matches every profile.
const AllParts = "全パート"

// FilterState is the profile list search. An empty Part matches everything.
type FilterState struct {
	Generation string
	Part       string
}

// NewFilterState matches every profile.
func NewFilterState() FilterState {
	return FilterState{Part: AllParts}
}

// VisibleProfiles applies the visibility rules in order: the viewer's own
// record is hidden while they are soft-deleted, other soft-deleted records
// are hidden, then the generation and part filters apply.
func VisibleProfiles(all []models.Profile, myID string, myDeleted bool, f FilterState) []models.Profile {
	gen := NormalizeGeneration(f.Generation)
	out := make([]models.Profile, 0, len(all))
	for _, p := range all {
		if p.ID == myID {
			if myDeleted {
				continue
			}
		} else if p.IsDeleted() {
			continue
		}
		if gen != "" && (p.Generation == nil || strconv.Itoa(*p.Generation) != gen) {
			continue
		}
		if f.Part != "" && f.Part != AllParts && !p.HasPart(models.Part(f.Part)) {
			continue
		}
		out = append(out, p)
	}
	return out
}
