package view

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"clubboard/internal/models"
)

// ProfileForm is the editable copy of a profile. Generation is kept as the
// typed text and parsed on save.
type ProfileForm struct {
	Username        string
	SchoolInfo      string
	FavoriteArtists string
	BandImage       string
	LineName        string
	OtherSNS        string
	Remarks         string
	Bio             string
	VocalRange      string
	GaibuIyoku      string
	Allergy         string
	AvatarURL       string
	Generation      string
	BandCount       string
	KikakuCount     string
	CurrentRegular  string
	CurrentKikaku   string
	Part            models.Part
	Part2           models.Part
	Part3           models.Part
	Part4           models.Part
}

// NewProfileForm returns an empty form.
func NewProfileForm() ProfileForm {
	var f ProfileForm
	f.Reset()
	return f
}

// Reset clears every field and unsets all parts.
func (f *ProfileForm) Reset() {
	*f = ProfileForm{
		Part:  models.PartUnset,
		Part2: models.PartUnset,
		Part3: models.PartUnset,
		Part4: models.PartUnset,
	}
}

// LoadFrom copies p into the form.
func (f *ProfileForm) LoadFrom(p models.Profile) {
	*f = ProfileForm{
		Username:        p.Username,
		SchoolInfo:      p.SchoolInfo,
		FavoriteArtists: p.FavoriteArtists,
		BandImage:       p.BandImage,
		LineName:        p.LineName,
		OtherSNS:        p.OtherSNS,
		Remarks:         p.Remarks,
		Bio:             p.Bio,
		VocalRange:      p.VocalRange,
		GaibuIyoku:      p.GaibuIyoku,
		Allergy:         p.Allergy,
		AvatarURL:       p.AvatarURL,
		BandCount:       p.BandCount,
		KikakuCount:     p.KikakuCount,
		CurrentRegular:  p.CurrentRegular,
		CurrentKikaku:   p.CurrentKikaku,
		Part:            p.Part,
		Part2:           p.Part2,
		Part3:           p.Part3,
		Part4:           p.Part4,
	}
	if p.Generation != nil {
		f.Generation = strconv.Itoa(*p.Generation)
	}
}

// ToProfile builds the record saved under id. The generation accepts
// full-width digits.
func (f *ProfileForm) ToProfile(id string) (*models.Profile, error) {
	p := &models.Profile{
		ID:              id,
		Username:        f.Username,
		SchoolInfo:      f.SchoolInfo,
		FavoriteArtists: f.FavoriteArtists,
		BandImage:       f.BandImage,
		LineName:        f.LineName,
		OtherSNS:        f.OtherSNS,
		Remarks:         f.Remarks,
		Bio:             f.Bio,
		VocalRange:      f.VocalRange,
		GaibuIyoku:      f.GaibuIyoku,
		Allergy:         f.Allergy,
		AvatarURL:       f.AvatarURL,
		BandCount:       f.BandCount,
		KikakuCount:     f.KikakuCount,
		CurrentRegular:  f.CurrentRegular,
		CurrentKikaku:   f.CurrentKikaku,
		Part:            f.Part,
		Part2:           f.Part2,
		Part3:           f.Part3,
		Part4:           f.Part4,
	}
	if g := NormalizeGeneration(f.Generation); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil {
			return nil, models.NewValidationError("期は数字で入力してください")
		}
		p.Generation = &n
	}
	p.Normalize()
	return p, nil
}

// NormalizeGeneration trims s and narrows full-width digits.
func NormalizeGeneration(s string) string {
	return strings.TrimSpace(width.Narrow.String(s))
}
