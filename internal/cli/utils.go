// Package cli provides output helpers for the ruslat commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hyperjump/ruslat/internal/models"
	"github.com/hyperjump/ruslat/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

const maxNameWidth = 40

// WriteUsers writes users to w in the given format.
func WriteUsers(w io.Writer, users []*models.User, format OutputFormat) error {
	if format == OutputJSON {
		if users == nil {
			users = []*models.User{}
		}
		return WriteJSON(w, users)
	}
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No users found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPAGE")
	for _, u := range users {
		page := ""
		if u.HasPage() {
			page = "@" + u.Page
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, utils.Truncate(u.Name, maxNameWidth), page)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d user(s)\n", len(users))
	return err
}

// WriteIDs writes user ids to w, one per line or as a JSON array.
func WriteIDs(w io.Writer, ids []string, format OutputFormat) error {
	if format == OutputJSON {
		if ids == nil {
			ids = []string{}
		}
		return WriteJSON(w, ids)
	}
	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}

// WriteVariations writes the readings of a word, labelled.
func WriteVariations(w io.Writer, word string, v [3]string, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, map[string]string{
			"input":    word,
			"as_typed": v[0],
			"keyboard": v[1],
			"translit": v[2],
		})
	}
	_, err := fmt.Fprintf(w, "as typed: %s\nkeyboard: %s\ntranslit: %s\n", v[0], v[1], v[2])
	return err
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
