package domain

import (
	"fmt"
	"strings"
)

// Link represents a titled URL bookmark.
// A Link is either standalone (links collection) or embedded by value
// inside a Session. Embedded copies are independent of standalone links.
type Link struct {
	// ID is the opaque unique identifier, assigned at creation and never changed.
	ID string `json:"id"`

	// Title is the display string.
	Title string `json:"title"`

	// URL is the destination.
	URL string `json:"url"`
}

// Validate checks the fields a user must supply.
func (l Link) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("link title is required")
	}
	if strings.TrimSpace(l.URL) == "" {
		return fmt.Errorf("link url is required")
	}
	return nil
}
