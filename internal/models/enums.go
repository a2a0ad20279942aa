package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// genreSeparator separates the single genres when stored inside the database
const genreSeparator = ","

// States is the closed set of state codes a venue or artist can be located in
var States = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL", "GA", "HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA",
	"ME", "MT", "NE", "NV", "NH", "NJ", "NM", "NY", "NC", "ND", "OH", "OK", "OR", "MD", "MA", "MI", "MN", "MS", "MO",
	"PA", "RI", "SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
}

// GenreChoices is the closed set of genres a venue or an artist can be tagged with
var GenreChoices = []string{
	"Alternative", "Blues", "Classical", "Country", "Electronic", "Folk", "Funk", "Hip-Hop", "Heavy Metal",
	"Instrumental", "Jazz", "Musical Theatre", "Pop", "Punk", "R&B", "Reggae", "Rock n Roll", "Soul", "Other",
}

// Genres is a list of genre names that is stored as one delimited string
type Genres []string

// Value implements driver.Valuer
func (g Genres) Value() (driver.Value, error) {
	return strings.Join(g, genreSeparator), nil
}

// Scan implements sql.Scanner
func (g *Genres) Scan(src interface{}) error {
	var str string
	switch v := src.(type) {
	case nil:
		*g = Genres{}
		return nil
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("Scan: cannot convert %T to genres", src)
	}
	ret := Genres{}
	for _, part := range strings.Split(str, genreSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			ret = append(ret, part)
		}
	}
	*g = ret
	return nil
}

// Contains checks if the given genre is part of the list
func (g Genres) Contains(genre string) bool {
	for _, item := range g {
		if item == genre {
			return true
		}
	}
	return false
}
