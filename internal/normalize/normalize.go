// Package normalize canonicalizes raw donor rows into validated, typed
// records. Everything here is pure: malformed input yields a rejection
// reason or a documented default, never a panic, so callers can accumulate
// per-row diagnostics without aborting a batch.
package normalize

import (
	"fmt"
	"strings"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

// Canonical row keys used by submitted donor lists and the CSV upload.
const (
	KeyName          = "name"
	KeyBloodGroup    = "blood_group"
	KeyContactNumber = "contact_number"
	KeyEmail         = "email"
	KeyDistrict      = "district"
	KeyCity          = "city"
	KeyCampus        = "campus"
	KeyGroup         = "group"
	KeyIsAvailable   = "is_available"
	KeyTagline       = "tagline"
)

// RejectReason classifies why a row was excluded from import.
type RejectReason string

const (
	// RejectNone means the row validated cleanly.
	RejectNone RejectReason = ""
	// RejectMissingFields means one or more required fields were empty.
	RejectMissingFields RejectReason = "MISSING_FIELDS"
	// RejectInvalidBloodGroup means the blood group did not parse.
	RejectInvalidBloodGroup RejectReason = "INVALID_BLOOD_GROUP"
)

// Row is one untyped donor record as submitted: string keys mapped to
// loosely typed values. It has no identity beyond its position in a list.
type Row map[string]any

// ValidatedRow is the strongly typed form a Row converts into. Campus and
// group names are carried as free text; resolution to identifiers happens
// against the directory store.
type ValidatedRow struct {
	Name          string
	BloodGroup    models.BloodGroup
	ContactNumber string
	Email         string
	District      string
	City          string
	CampusName    string
	GroupName     string
	IsAvailable   bool
	Tagline       string
}

// ParseBloodGroup accepts case-insensitive input with either the canonical
// suffix form (o_negative) or a trailing sign (O-), and maps it onto the
// eight-value enumeration. The second return is false for any non-match,
// including empty input.
func ParseBloodGroup(raw string) (models.BloodGroup, bool) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", false
	}

	trimmed = strings.Replace(trimmed, "+", "_POSITIVE", 1)
	trimmed = strings.Replace(trimmed, "-", "_NEGATIVE", 1)

	candidate := models.BloodGroup(trimmed)
	if !candidate.Valid() {
		return "", false
	}
	return candidate, true
}

// ParseAvailability interprets a loosely typed availability flag. Native
// booleans pass through. Strings are trimmed and matched case-insensitively
// against true/yes/1 and false/no/0. Anything else, including a missing or
// empty value, defaults to available.
func ParseAvailability(raw any) bool {
	switch value := raw.(type) {
	case bool:
		return value
	case nil:
		return true
	default:
		lowered := strings.ToLower(strings.TrimSpace(stringify(raw)))
		switch lowered {
		case "true", "yes", "1":
			return true
		case "false", "no", "0":
			return false
		default:
			return true
		}
	}
}

// Field returns the trimmed string form of the named value, treating
// missing keys and nil values as empty.
func (r Row) Field(key string) string {
	value, ok := r[key]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(stringify(value))
}

// StripClientKeys returns a copy of the row without client-side bookkeeping
// fields (keys with a leading underscore), which review sessions attach to
// edited rows and which must not be persisted.
func (r Row) StripClientKeys() Row {
	cleaned := make(Row, len(r))
	for key, value := range r {
		if strings.HasPrefix(key, "_") {
			continue
		}
		cleaned[key] = value
	}
	return cleaned
}

// Validate converts the row into its typed form or reports why it must be
// rejected. Name, blood group, contact number, district and city are always
// required; campus and group are additionally required only on the admin
// direct-upload path (requireAffiliation), while user submissions may leave
// them blank for admins to complete later.
func (r Row) Validate(requireAffiliation bool) (ValidatedRow, RejectReason) {
	name := r.Field(KeyName)
	rawBloodGroup := r.Field(KeyBloodGroup)
	contact := r.Field(KeyContactNumber)
	district := r.Field(KeyDistrict)
	city := r.Field(KeyCity)
	campusName := r.Field(KeyCampus)
	groupName := r.Field(KeyGroup)

	if name == "" || rawBloodGroup == "" || contact == "" || district == "" || city == "" {
		return ValidatedRow{}, RejectMissingFields
	}
	if requireAffiliation && (campusName == "" || groupName == "") {
		return ValidatedRow{}, RejectMissingFields
	}

	bloodGroup, ok := ParseBloodGroup(rawBloodGroup)
	if !ok {
		return ValidatedRow{}, RejectInvalidBloodGroup
	}

	return ValidatedRow{
		Name:          name,
		BloodGroup:    bloodGroup,
		ContactNumber: contact,
		Email:         r.Field(KeyEmail),
		District:      district,
		City:          city,
		CampusName:    campusName,
		GroupName:     groupName,
		IsAvailable:   ParseAvailability(r[KeyIsAvailable]),
		Tagline:       r.Field(KeyTagline),
	}, RejectNone
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		// JSON numbers decode as float64; render integers without a fraction.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
