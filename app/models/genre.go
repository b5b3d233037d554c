package models

// Genre tags products; names are unique.
type Genre struct {
	ID   uint   `gorm:"primaryKey"                    json:"id"`
	Name string `gorm:"size:50;not null;uniqueIndex" json:"name"`
}
