// api/schemas/profile.go
package schemas

import "strings"

// MaxExperienceEntries caps how many positions a single scrape pass retains.
// The most recent entries appear first in the DOM, so the cap keeps the
// freshest history.
const MaxExperienceEntries = 5

// Credentials carries the identifier/secret pair used to authenticate a
// session. Instances live only for the duration of one scrape call and the
// secret must never be logged.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"-"`
}

// IsZero reports whether no credentials were supplied.
func (c Credentials) IsZero() bool {
	return c.Email == "" && c.Password == ""
}

// RedactedEmail returns a log-safe form of the identifier.
func (c Credentials) RedactedEmail() string {
	at := strings.IndexByte(c.Email, '@')
	if at <= 1 {
		return "***"
	}
	return c.Email[:1] + "***" + c.Email[at:]
}

// AuthResult is the tri-state outcome of a login attempt.
type AuthResult int

const (
	// AuthRejected means the site refused the supplied credentials.
	AuthRejected AuthResult = iota
	// AuthAuthenticated means a logged-in session was established.
	AuthAuthenticated
	// AuthChallengeRequired means the site demands out-of-band verification
	// (captcha, PIN, 2FA). Terminal for the call; not retryable.
	AuthChallengeRequired
)

func (r AuthResult) String() string {
	switch r {
	case AuthAuthenticated:
		return "authenticated"
	case AuthChallengeRequired:
		return "challenge_required"
	default:
		return "rejected"
	}
}

// CompanyRef identifies a company together with the role held there.
type CompanyRef struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// ExperienceEntry is one position in the work history, in DOM order.
type ExperienceEntry struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Dates    string `json:"dates,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// EducationEntry is one school in the education history, in DOM order.
type EducationEntry struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
	Dates  string `json:"dates,omitempty"`
}

// ProfileRecord is the extracted entity returned by one scrape pass. It is
// constructed incrementally field by field and treated as immutable once
// returned; the cache layer only stores and evicts it.
type ProfileRecord struct {
	ProfileID  string `json:"profile_id"`
	ProfileURL string `json:"profile_url,omitempty"`

	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Headline  string `json:"headline,omitempty"`
	Location  string `json:"location,omitempty"`
	About     string `json:"about,omitempty"`

	CurrentCompany *CompanyRef       `json:"current_company,omitempty"`
	Experience     []ExperienceEntry `json:"experience,omitempty"`
	Education      []EducationEntry  `json:"education,omitempty"`
	Skills         []string          `json:"skills,omitempty"`

	// RawSupplementary holds anything captured during the pass that has no
	// schema-mapped home.
	RawSupplementary map[string]string `json:"raw_supplementary,omitempty"`
}

// ProfileIDFromURL derives the profile identifier from the /in/ path segment
// of a profile URL. Returns "" when the URL does not reference a profile path.
func ProfileIDFromURL(profileURL string) string {
	const marker = "/in/"
	idx := strings.Index(profileURL, marker)
	if idx < 0 {
		return ""
	}
	rest := profileURL[idx+len(marker):]
	if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
		rest = rest[:cut]
	}
	return strings.TrimSpace(rest)
}
