// Package validator checks records coming from the API and from Kafka.
// Each check returns an empty string when the value is acceptable, or a short
// message naming the offending field.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

const (
	MinYear       = 1900
	MaxYear       = 2100
	MaxRoleLength = 200
)

var regexUsername = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,32}$`)

func checkYear(field string, value int) string {
	if value < MinYear || value > MaxYear {
		return fmt.Sprintf("invalid value in field '%s'=%d", field, value)
	}

	return ""
}

func Experience(rec dto.ExperienceRecord) string {
	if strings.TrimSpace(rec.UserID) == "" {
		return "required field 'user_id'"
	}

	if strings.TrimSpace(rec.CompanyName) == "" {
		return "required field 'company_name'"
	}

	if utf8.RuneCountInString(rec.Role) > MaxRoleLength {
		return fmt.Sprintf("field 'role' is longer than %d characters", MaxRoleLength)
	}

	if msg := checkYear("start_year", rec.StartYear); msg != "" {
		return msg
	}

	if end, ok := rec.EndYear.Year(); ok {
		if msg := checkYear("end_year", end); msg != "" {
			return msg
		}

		if end < rec.StartYear {
			return fmt.Sprintf("invalid value in field 'period'={start:%d end:%d}", rec.StartYear, end)
		}
	}

	return ""
}

func Profile(p dto.UserProfile) string {
	if strings.TrimSpace(p.UserID) == "" {
		return "required field 'user_id'"
	}

	if strings.TrimSpace(p.Username) == "" {
		return "required field 'username'"
	}

	if !regexUsername.MatchString(p.Username) {
		return fmt.Sprintf("invalid value in field 'username'=%s", p.Username)
	}

	if p.DisplayName != nil && strings.TrimSpace(*p.DisplayName) == "" {
		return "required field 'display_name'"
	}

	return ""
}
