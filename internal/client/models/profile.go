package models

import "strings"

// Profile is the server-side profile record of the signed-in user.
type Profile struct {
	UserID       string            `json:"user_id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Interests    []string          `json:"interests"`
	Demographics map[string]string `json:"demographics"`
	Onboarded    bool              `json:"onboarded"`
	SavedBillIDs []int64           `json:"saved_bill_ids,omitempty"`
	CreatedAt    string            `json:"createdAt,omitempty"`
	UpdatedAt    string            `json:"updatedAt,omitempty"`
}

// UserProfile is a public profile as returned by GET /api/profiles/{username}.
// Demographic values are whatever the profile file holds, not only strings.
type UserProfile struct {
	Name         string         `json:"name"`
	Interests    []string       `json:"interests"`
	Demographics map[string]any `json:"demographics"`
}

// ProfileInput is the body of PUT /api/me/profile.
type ProfileInput struct {
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Interests    []string          `json:"interests"`
	Demographics map[string]string `json:"demographics"`
	Onboarded    bool              `json:"onboarded"`
}

// Demographic keys collected during onboarding. All of them are optional.
const (
	DemographicAge               = "age"
	DemographicGenderIdentity    = "gender_identity"
	DemographicEthnicity         = "ethnicity_racial_identity"
	DemographicIndigenousStatus  = "indigenous_status"
	DemographicSexualOrientation = "sexual_orientation"
)

// DemographicFields lists the onboarding questions in display order.
var DemographicFields = []struct {
	Key   string
	Label string
}{
	{DemographicAge, "Age"},
	{DemographicGenderIdentity, "Gender Identity"},
	{DemographicEthnicity, "Ethnicity/Racial Identity"},
	{DemographicIndigenousStatus, "Indigenous Status"},
	{DemographicSexualOrientation, "Sexual Orientation"},
}

// FilterDemographics returns a copy of d without blank values. Values are
// trimmed. The result is never nil so it encodes as {} rather than null.
func FilterDemographics(d map[string]string) map[string]string {
	out := make(map[string]string, len(d))
	for k, v := range d {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// NormalizeInterests trims, drops blanks and de-duplicates while preserving
// the first-seen order. The result is never nil.
func NormalizeInterests(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
