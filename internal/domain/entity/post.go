package entity

import "time"

// Post is a feed content item carrying age metadata.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Caption  string `gorm:"size:2000" json:"caption"`
	MediaURL string `gorm:"size:500" json:"media_url,omitempty"`

	AgeMeta ContentAgeMeta `gorm:"embedded" json:"age_meta"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Post) TableName() string {
	return "posts"
}

// FilterPostsForTier drops every post the viewer's tier may not see.
// Pure and synchronous; applied after the feed query returns, not pushed into
// the query layer.
func FilterPostsForTier(posts []Post, tier AgeTier) []Post {
	if len(posts) == 0 {
		return posts
	}
	visible := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.AgeMeta.VisibleTo(tier) {
			visible = append(visible, p)
		}
	}
	return visible
}
