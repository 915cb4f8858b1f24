package models

import "time"

// Marker is owned exclusively by UserID.
type Marker struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Latitude    float64   `gorm:"not null" json:"latitude"`
	Longitude   float64   `gorm:"not null" json:"longitude"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Ranking     float64   `gorm:"not null;default:0" json:"ranking"`
	Category    string    `gorm:"size:100" json:"category"`
	TripName    string    `gorm:"size:200" json:"trip_name"`
	IsPersonal  bool      `gorm:"not null;default:false" json:"is_personal"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Marker) TableName() string { return "markers" }

// MapMarkerLink makes a marker visible to every accepted member of a map.
type MapMarkerLink struct {
	MapID     uint      `gorm:"primaryKey;autoIncrement:false" json:"map_id"`
	MarkerID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"marker_id"`
	CreatedAt time.Time `json:"created_at"`

	Map    *TravelMap `gorm:"foreignKey:MapID" json:"-"`
	Marker *Marker    `gorm:"foreignKey:MarkerID" json:"-"`
}

func (MapMarkerLink) TableName() string { return "map_markers" }

// MarkerView is a marker joined with its owner's public identity.
type MarkerView struct {
	Marker
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}
