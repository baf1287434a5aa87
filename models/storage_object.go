package models

// StorageObject is a JSON document addressed by (collection, key, user_id).
type StorageObject struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Collection string `gorm:"type:varchar(64);not null;uniqueIndex:idx_storage_object_key" json:"collection"`
	Key        string `gorm:"type:varchar(64);not null;uniqueIndex:idx_storage_object_key" json:"key"`
	UserID     string `gorm:"type:varchar(128);not null;uniqueIndex:idx_storage_object_key;index" json:"user_id"`
	Value      string `gorm:"type:jsonb;not null" json:"value"`
	Version    int64  `gorm:"not null;default:0" json:"version"`

	Timestamps
}

// StreakRecord is stored in the "streaks" collection under key "record".
type StreakRecord struct {
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`
}

const (
	StreakCollection = "streaks"
	StreakKey        = "record"
)
