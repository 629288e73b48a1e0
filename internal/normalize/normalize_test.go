package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

func TestParseBloodGroup(t *testing.T) {
	cases := []struct {
		input string
		want  models.BloodGroup
		ok    bool
	}{
		{"O+", models.BloodGroupOPositive, true},
		{"o_negative", models.BloodGroupONegative, true},
		{" ab- ", models.BloodGroupABNegative, true},
		{"A_POSITIVE", models.BloodGroupAPositive, true},
		{"b+", models.BloodGroupBPositive, true},
		{"XX", "", false},
		{"", "", false},
		{"O", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseBloodGroup(tc.input)
		require.Equal(t, tc.ok, ok, "input %q", tc.input)
		require.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestParseAvailabilityDefaultsToAvailable(t *testing.T) {
	require.True(t, ParseAvailability(nil))
	require.True(t, ParseAvailability(""))
	require.True(t, ParseAvailability("maybe"))
	require.True(t, ParseAvailability("TRUE"))
	require.True(t, ParseAvailability(" yes "))
	require.True(t, ParseAvailability("1"))
	require.False(t, ParseAvailability("No"))
	require.False(t, ParseAvailability("false"))
	require.False(t, ParseAvailability("0"))
	require.True(t, ParseAvailability(true))
	require.False(t, ParseAvailability(false))
}

func TestValidateRequiredFields(t *testing.T) {
	row := Row{
		"name":           "Rahim Uddin",
		"blood_group":    "O+",
		"contact_number": "01711111111",
		"district":       "Dhaka",
		"city":           "Dhaka",
	}

	validated, reason := row.Validate(false)
	require.Equal(t, RejectNone, reason)
	require.Equal(t, "Rahim Uddin", validated.Name)
	require.Equal(t, models.BloodGroupOPositive, validated.BloodGroup)
	require.True(t, validated.IsAvailable)
	require.Empty(t, validated.CampusName)

	// Affiliation is only required on the admin direct-upload path.
	_, reason = row.Validate(true)
	require.Equal(t, RejectMissingFields, reason)

	row["campus"] = "Dhaka University"
	row["group"] = "Badhan"
	validated, reason = row.Validate(true)
	require.Equal(t, RejectNone, reason)
	require.Equal(t, "Dhaka University", validated.CampusName)
	require.Equal(t, "Badhan", validated.GroupName)
}

func TestValidateRejectsMissingName(t *testing.T) {
	row := Row{
		"name":           "   ",
		"blood_group":    "A+",
		"contact_number": "01722222222",
		"district":       "Dhaka",
		"city":           "Dhaka",
	}
	_, reason := row.Validate(false)
	require.Equal(t, RejectMissingFields, reason)
}

func TestValidateRejectsInvalidBloodGroup(t *testing.T) {
	row := Row{
		"name":           "Karim",
		"blood_group":    "ZZ",
		"contact_number": "01733333333",
		"district":       "Dhaka",
		"city":           "Dhaka",
	}
	_, reason := row.Validate(false)
	require.Equal(t, RejectInvalidBloodGroup, reason)
}

func TestValidateCoercesLooseTypes(t *testing.T) {
	// JSON decoding can surface numbers and booleans where strings are expected.
	row := Row{
		"name":           "Karim",
		"blood_group":    "B-",
		"contact_number": float64(1711111111),
		"district":       "Sylhet",
		"city":           "Sylhet",
		"is_available":   false,
	}
	validated, reason := row.Validate(false)
	require.Equal(t, RejectNone, reason)
	require.Equal(t, "1711111111", validated.ContactNumber)
	require.False(t, validated.IsAvailable)
}

func TestStripClientKeys(t *testing.T) {
	row := Row{
		"name":      "Karim",
		"_rowId":    "abc",
		"_selected": true,
	}
	cleaned := row.StripClientKeys()
	require.Equal(t, Row{"name": "Karim"}, cleaned)
	require.Contains(t, row, "_rowId", "original row must not be mutated")
}
