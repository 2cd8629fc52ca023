package models

type User struct {
	BaseModel
	Name         string `json:"name" gorm:"type:varchar(255);not null"`
	PhoneNumber  string `json:"phone_number" gorm:"type:varchar(15);uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"type:text;not null"`
}
