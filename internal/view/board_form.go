package view

import "clubboard/internal/models"

// PostForm is the editable copy of a board post.
type PostForm struct {
	PostType     models.PostType
	Theme        string
	Members      string
	TargetParts  string
	StartPeriod  string
	ExtraRemarks string
}

// NewPostForm returns an empty form for a regular post.
func NewPostForm() PostForm {
	var f PostForm
	f.Reset()
	return f
}

func (f *PostForm) Reset() {
	*f = PostForm{PostType: models.PostTypeRegular}
}

func (f *PostForm) LoadFrom(p models.BandPost) {
	*f = PostForm{
		PostType:     p.PostType,
		Theme:        p.Theme,
		Members:      p.Members,
		TargetParts:  p.TargetParts,
		StartPeriod:  p.StartPeriod,
		ExtraRemarks: p.ExtraRemarks,
	}
}

// ToPost builds an unsaved post owned by profileID.
func (f *PostForm) ToPost(profileID string) *models.BandPost {
	p := &models.BandPost{
		ProfileID:    profileID,
		PostType:     f.PostType,
		Theme:        f.Theme,
		Members:      f.Members,
		TargetParts:  f.TargetParts,
		StartPeriod:  f.StartPeriod,
		ExtraRemarks: f.ExtraRemarks,
	}
	p.Normalize()
	return p
}
