// Package models defines the user records that the lookup serves.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// User is a selectable person. Page is the optional short page handle.
type User struct {
	ID        string    `json:"id" yaml:"id" db:"id"`
	Name      string    `json:"name" yaml:"name" db:"name"`
	Page      string    `json:"page,omitempty" yaml:"page,omitempty" db:"page"`
	Avatar    string    `json:"avatar,omitempty" yaml:"avatar,omitempty" db:"avatar"`
	CreatedAt time.Time `json:"-" yaml:"-" db:"created_at"`
	UpdatedAt time.Time `json:"-" yaml:"-" db:"updated_at"`
}

// HasPage reports whether the user has a page handle.
func (u *User) HasPage() bool {
	return strings.TrimSpace(u.Page) != ""
}

// ID accepts both JSON strings and JSON numbers, so data files written with
// numeric ids load unchanged.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// UserRecord is the on-disk shape of a user in import files.
type UserRecord struct {
	ID     ID     `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Page   string `json:"page" yaml:"page"`
	Avatar string `json:"avatar" yaml:"avatar"`
}

// User converts the record into a User.
func (r UserRecord) User() *User {
	return &User{
		ID:     strings.TrimSpace(string(r.ID)),
		Name:   strings.TrimSpace(r.Name),
		Page:   strings.TrimSpace(r.Page),
		Avatar: strings.TrimSpace(r.Avatar),
	}
}
