// Package models contains the persisted records of the club board and the
// errors the API reports about them.
package models

import (
	"strings"
	"time"
)

// Part is a performance part a member can play.
type Part string

// Known parts. PartUnset is the stored default.
const (
	PartUnset Part = "未設定"
	PartLead  Part = "Lead"
	Part1st   Part = "1st"
	Part2nd   Part = "2nd"
	Part3rd   Part = "3rd"
	Part4th   Part = "4th"
	PartBass  Part = "Bass"
	PartPerc  Part = "Perc"
)

// Parts lists every selectable part in display order.
var Parts = []Part{PartUnset, PartLead, Part1st, Part2nd, Part3rd, Part4th, PartBass, PartPerc}

// Valid reports whether p is one of Parts.
func (p Part) Valid() bool {
	for _, known := range Parts {
		if p == known {
			return true
		}
	}
	return false
}

// Answers to the gaibu_iyoku question. Empty means unanswered.
const (
	GaibuYes = "あり"
	GaibuNo  = "なし"
)

// Profile is one member's self-description. The id is the member id and
// never changes; saving replaces every field.
type Profile struct {
	ID              string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Username        string     `gorm:"not null" json:"username"`
	SchoolInfo      string     `json:"school_info"`
	FavoriteArtists string     `json:"favorite_artists"`
	BandImage       string     `json:"band_image"`
	LineName        string     `json:"line_name"`
	OtherSNS        string     `gorm:"column:other_sns" json:"other_sns"`
	Remarks         string     `json:"remarks"`
	Bio             string     `gorm:"type:text" json:"bio"`
	VocalRange      string     `json:"vocal_range"`
	GaibuIyoku      string     `json:"gaibu_iyoku"`
	Allergy         string     `json:"allergy"`
	AvatarURL       string     `json:"avatar_url"`
	Generation      *int       `gorm:"index" json:"generation"`
	BandCount       string     `json:"band_count"`
	KikakuCount     string     `json:"kikaku_count"`
	CurrentRegular  string     `json:"current_regular"`
	CurrentKikaku   string     `json:"current_kikaku"`
	Part            Part       `gorm:"default:未設定" json:"part"`
	Part2           Part       `gorm:"column:part2;default:未設定" json:"part2"`
	Part3           Part       `gorm:"column:part3;default:未設定" json:"part3"`
	Part4           Part       `gorm:"column:part4;default:未設定" json:"part4"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime:false;index" json:"updated_at"`
	DeletedAt       *time.Time `gorm:"index" json:"deleted_at"`
}

// PartList returns the four part slots in order.
func (p *Profile) PartList() []Part {
	return []Part{p.Part, p.Part2, p.Part3, p.Part4}
}

// HasPart reports whether any of the four slots equals part.
func (p *Profile) HasPart(part Part) bool {
	for _, slot := range p.PartList() {
		if slot == part {
			return true
		}
	}
	return false
}

// IsDeleted reports whether the profile is soft-deleted.
func (p *Profile) IsDeleted() bool {
	return p.DeletedAt != nil
}

// Normalize trims the username and fills empty part slots with PartUnset.
func (p *Profile) Normalize() {
	p.Username = strings.TrimSpace(p.Username)
	for _, slot := range []*Part{&p.Part, &p.Part2, &p.Part3, &p.Part4} {
		if *slot == "" {
			*slot = PartUnset
		}
	}
}

// Validate checks the fields the board relies on.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return NewValidationError("username is required")
	}
	switch p.GaibuIyoku {
	case "", GaibuYes, GaibuNo:
	default:
		return NewValidationError("gaibu_iyoku must be あり, なし or empty")
	}
	for _, slot := range p.PartList() {
		if slot != "" && !slot.Valid() {
			return NewValidationError("unknown part " + string(slot))
		}
	}
	return nil
}
