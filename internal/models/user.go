package models

type User struct {
	ID    int64  `json:"id" yaml:"id" db:"id"`
	Name  string `json:"name" yaml:"name" db:"name"`
	Email string `json:"email" yaml:"email" db:"email"`
}

// UserPatch holds the fields of a partial profile update; nil means "keep".
type UserPatch struct {
	Name  *string
	Email *string
}
