package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/ruslat/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for user files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported users file format")

	// ErrMissingName is returned for a record without a name.
	ErrMissingName = errors.New("user record has no name")

	// ErrDuplicateID is returned when two records share an id.
	ErrDuplicateID = errors.New("duplicate user id")
)

// SupportedExtensions lists the user file extensions LoadFile understands.
var SupportedExtensions = []string{".json", ".yaml", ".yml", ".xlsx"}

// LoadFile reads user records from a .json, .yaml/.yml or .xlsx file.
// Records without an id get a random UUID; records without a name are rejected.
func LoadFile(path string) ([]*models.User, error) {
	var (
		records []models.UserRecord
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		records, err = loadJSON(path)
	case ".yaml", ".yml":
		records, err = loadYAML(path)
	case ".xlsx":
		records, err = loadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return toUsers(records)
}

func toUsers(records []models.UserRecord) ([]*models.User, error) {
	users := make([]*models.User, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		u := rec.User()
		if u.Name == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrMissingName)
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		if seen[u.ID] {
			return nil, fmt.Errorf("record %d: %w: %s", i, ErrDuplicateID, u.ID)
		}
		seen[u.ID] = true
		users = append(users, u)
	}
	return users, nil
}

func loadJSON(path string) ([]models.UserRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	var records []models.UserRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse users file: %w", err)
	}
	return records, nil
}

func loadYAML(path string) ([]models.UserRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	var records []models.UserRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse users file: %w", err)
	}
	return records, nil
}

// loadXLSX reads the first sheet. The first row is a header naming the
// columns (id, name, page, avatar in any order); only name is required.
func loadXLSX(path string) ([]models.UserRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open users workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("sheet %q: header has no name column", sheets[0])
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []models.UserRecord
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		records = append(records, models.UserRecord{
			ID:     models.ID(cell(row, "id")),
			Name:   cell(row, "name"),
			Page:   cell(row, "page"),
			Avatar: cell(row, "avatar"),
		})
	}
	return records, nil
}
