package models

import "time"

// Collections that publish change events.
const (
	CollectionProfiles = "profiles"
	CollectionPosts    = "band_posts"
	CollectionLikes    = "post_likes"
	CollectionComments = "post_comments"
)

// Collections lists every collection a subscriber may watch.
var Collections = []string{CollectionProfiles, CollectionPosts, CollectionLikes, CollectionComments}

// ChangeType is the kind of committed mutation.
type ChangeType string

// Change types.
const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent tells subscribers that a collection changed. It carries no
// row data; subscribers re-fetch.
type ChangeEvent struct {
	Collection string     `json:"collection"`
	Type       ChangeType `json:"type"`
	ID         string     `json:"id"`
	At         time.Time  `json:"at"`
}
