package models

// Comment belongs to one ad and one author. CreatedAt is epoch milliseconds.
type Comment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Text      string `gorm:"size:64;not null" json:"text"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	AdID      uint   `gorm:"index;not null" json:"ad_id"`
}
