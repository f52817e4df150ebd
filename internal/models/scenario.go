package models

import (
	"database/sql"
	"time"
)

// Sex is the documented patient sex of a scenario. "n" stands for not
// specified and resolves to a random concrete sex during case preparation.
type Sex string

const (
	SexMale        Sex = "m"
	SexFemale      Sex = "w"
	SexUnspecified Sex = "n"
)

func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexUnspecified:
		return true
	}
	return false
}

// Scenario is one training case record. The database column names follow the
// original German teaching dataset so that exported content stays compatible.
type Scenario struct {
	ID          int64          `db:"id"`
	Name        string         `db:"szenario"`
	Description string         `db:"beschreibung"`
	Examination string         `db:"koerperliche_untersuchung"`
	SpecialNote sql.NullString `db:"besonderheit"`
	Age         sql.NullInt64  `db:"alter"`
	Sex         sql.NullString `db:"geschlecht"`
	AmbossInput sql.NullString `db:"amboss_input"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// HasAmbossInput reports whether a non-empty auxiliary reference text is stored.
func (s Scenario) HasAmbossInput() bool {
	return s.AmbossInput.Valid && s.AmbossInput.String != ""
}
