package models

import (
	"strings"
	"time"
)

// PostType classifies a recruiting post.
type PostType string

// Known post types.
const (
	PostTypeRegular     PostType = "正規"
	PostTypeKikaku      PostType = "企画"
	PostTypeConsidering PostType = "考え中"
)

// PostTypes lists every post type in display order.
var PostTypes = []PostType{PostTypeRegular, PostTypeKikaku, PostTypeConsidering}

// Valid reports whether t is one of PostTypes.
func (t PostType) Valid() bool {
	for _, known := range PostTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Author is the slice of a profile shown next to posts and comments.
type Author struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// BandPost is a recruiting post on the board.
type BandPost struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	ProfileID    string        `gorm:"type:varchar(64);not null;index" json:"profile_id"`
	PostType     PostType      `gorm:"not null" json:"post_type"`
	Theme        string        `gorm:"not null" json:"theme"`
	Members      string        `json:"members"`
	TargetParts  string        `gorm:"not null" json:"target_parts"`
	StartPeriod  string        `json:"start_period"`
	ExtraRemarks string        `gorm:"type:text" json:"extra_remarks"`
	CreatedAt    time.Time     `gorm:"index" json:"created_at"`
	Profile      *Profile      `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	Author       *Author       `gorm:"-" json:"author"`
	Likes        []PostLike    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"likes"`
	Comments     []PostComment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments"`
}

// Normalize trims the required text fields and defaults the post type.
func (p *BandPost) Normalize() {
	p.Theme = strings.TrimSpace(p.Theme)
	p.TargetParts = strings.TrimSpace(p.TargetParts)
	if p.PostType == "" {
		p.PostType = PostTypeRegular
	}
}

// Validate checks the fields every post must carry.
func (p *BandPost) Validate() error {
	if strings.TrimSpace(p.Theme) == "" {
		return NewValidationError("theme is required")
	}
	if strings.TrimSpace(p.TargetParts) == "" {
		return NewValidationError("target_parts is required")
	}
	if !p.PostType.Valid() {
		return NewValidationError("post_type must be 正規, 企画 or 考え中")
	}
	return nil
}

// LikedBy reports whether memberID has liked the post.
func (p *BandPost) LikedBy(memberID string) bool {
	for _, like := range p.Likes {
		if like.ProfileID == memberID {
			return true
		}
	}
	return false
}

// PostLike records that a member likes a post. The pair is the key.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	ProfileID string    `gorm:"primaryKey;type:varchar(64)" json:"profile_id"`
	CreatedAt time.Time `json:"created_at"`
	Profile   *Profile  `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
}

// PostComment is an append-only comment on a post.
type PostComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	ProfileID string    `gorm:"type:varchar(64);not null;index" json:"profile_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Profile   *Profile  `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	Author    *Author   `gorm:"-" json:"author,omitempty"`
}

// VisibleTo reports whether viewerID may read the comment on post. The post
// owner reads every comment; everyone else reads only their own.
func (c *PostComment) VisibleTo(post *BandPost, viewerID string) bool {
	if viewerID == "" {
		return false
	}
	return post.ProfileID == viewerID || c.ProfileID == viewerID
}
