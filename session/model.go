package session

import (
	"strings"
	"time"
)

// Role is the coarse access level of a user. The set is closed; unknown
// values are rejected by [Decode] and [ParseRole].
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleEmployee   Role = "employee"
	RoleUser       Role = "user"
)

var roles = []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleEmployee, RoleUser}

// Roles returns every canonical role, most privileged first.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole converts a user-supplied string into a [Role]. Matching is
// case-insensitive and accepts "super-admin" as an alias of "super_admin".
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	r := Role(normalized)
	if !r.Valid() {
		return "", &InvalidValueError{Field: "role", Value: value}
	}
	return r, nil
}

// Plan is the subscription tier attached to a session.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanStarter    Plan = "starter"
	PlanCreator    Plan = "creator"
	PlanPro        Plan = "pro"
	PlanScale      Plan = "scale"
	PlanBusiness   Plan = "business"
	PlanEnterprise Plan = "enterprise"
)

var plans = []Plan{PlanFree, PlanStarter, PlanCreator, PlanPro, PlanScale, PlanBusiness, PlanEnterprise}

// Valid reports whether p is a known plan tier.
func (p Plan) Valid() bool {
	for _, known := range plans {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePlan converts a user-supplied string into a [Plan].
func ParsePlan(value string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(value)))
	if !p.Valid() {
		return "", &InvalidValueError{Field: "plan", Value: value}
	}
	return p, nil
}

// Session is the authenticated identity of the current client.
//
// A Session is owned by the session store. Values handed to consumers are
// copies; mutating them has no effect on the store.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Plan      Plan      `json:"plan"`
	Credits   float64   `json:"credits"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	Language  string    `json:"language,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy of s, or nil when s is nil.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

// HasRole reports whether the session role is a member of allowed.
func (s *Session) HasRole(allowed ...Role) bool {
	if s == nil {
		return false
	}
	for _, r := range allowed {
		if s.Role == r {
			return true
		}
	}
	return false
}

// Patch is a partial update. Nil fields are left untouched by [Patch.Apply].
// The identifier and creation time are not patchable.
type Patch struct {
	Email     *string    `json:"email,omitempty"`
	Name      *string    `json:"name,omitempty"`
	Role      *Role      `json:"role,omitempty"`
	Plan      *Plan      `json:"plan,omitempty"`
	Credits   *float64   `json:"credits,omitempty"`
	AvatarURL *string    `json:"avatarUrl,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Timezone  *string    `json:"timezone,omitempty"`
	Language  *string    `json:"language,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Empty reports whether the patch sets no field.
func (p Patch) Empty() bool {
	return p.Email == nil && p.Name == nil && p.Role == nil && p.Plan == nil &&
		p.Credits == nil && p.AvatarURL == nil && p.Phone == nil &&
		p.Timezone == nil && p.Language == nil && p.UpdatedAt == nil
}

// Validate checks enumerated fields carried by the patch.
func (p Patch) Validate() error {
	if p.Role != nil && !p.Role.Valid() {
		return &InvalidValueError{Field: "role", Value: string(*p.Role)}
	}
	if p.Plan != nil && !p.Plan.Valid() {
		return &InvalidValueError{Field: "plan", Value: string(*p.Plan)}
	}
	return nil
}

// Apply returns a copy of s with the non-nil patch fields merged in.
func (p Patch) Apply(s Session) Session {
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Role != nil {
		s.Role = *p.Role
	}
	if p.Plan != nil {
		s.Plan = *p.Plan
	}
	if p.Credits != nil {
		s.Credits = *p.Credits
	}
	if p.AvatarURL != nil {
		s.AvatarURL = *p.AvatarURL
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Timezone != nil {
		s.Timezone = *p.Timezone
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.UpdatedAt != nil {
		s.UpdatedAt = *p.UpdatedAt
	}
	return s
}

// InvalidValueError reports a value outside a closed enumeration.
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return "invalid " + e.Field + " " + `"` + e.Value + `"`
}
