// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"time"
)

// Credentials identifies a Cursor user for the dashboard API.
type Credentials struct {
	UserID      string
	AccessToken string
	Email       string
	Membership  string
}

// SessionToken returns the value of the WorkosCursorSessionToken cookie.
func (c Credentials) SessionToken() string {
	return c.UserID + "::" + c.AccessToken
}

// Valid reports whether both halves of the session token are present.
func (c Credentials) Valid() bool {
	return c.UserID != "" && c.AccessToken != ""
}

// UsageBreakdown splits plan usage into included and bonus requests.
type UsageBreakdown struct {
	Included float64 `json:"included" yaml:"included"`
	Bonus    float64 `json:"bonus" yaml:"bonus"`
	Total    float64 `json:"total" yaml:"total"`
}

// PlanUsage is the included-plan part of the billing summary.
type PlanUsage struct {
	Enabled          bool           `json:"enabled" yaml:"enabled"`
	Used             float64        `json:"used" yaml:"used"`
	Limit            float64        `json:"limit" yaml:"limit"`
	Remaining        float64        `json:"remaining" yaml:"remaining"`
	Breakdown        UsageBreakdown `json:"breakdown" yaml:"breakdown"`
	AutoPercentUsed  float64        `json:"autoPercentUsed" yaml:"autoPercentUsed"`
	APIPercentUsed   float64        `json:"apiPercentUsed" yaml:"apiPercentUsed"`
	TotalPercentUsed float64        `json:"totalPercentUsed" yaml:"totalPercentUsed"`
}

// OnDemandUsage is the pay-as-you-go part of the billing summary.
type OnDemandUsage struct {
	Enabled   bool     `json:"enabled" yaml:"enabled"`
	Used      float64  `json:"used" yaml:"used"`
	Limit     *float64 `json:"limit" yaml:"limit"`
	Remaining *float64 `json:"remaining" yaml:"remaining"`
}

// IndividualUsage groups plan and on-demand usage.
type IndividualUsage struct {
	Plan     *PlanUsage     `json:"plan" yaml:"plan"`
	OnDemand *OnDemandUsage `json:"onDemand" yaml:"onDemand"`
}

// BillingSummary is the response of the usage-summary endpoint.
type BillingSummary struct {
	BillingCycleStart                string          `json:"billingCycleStart" yaml:"billingCycleStart"`
	BillingCycleEnd                  string          `json:"billingCycleEnd" yaml:"billingCycleEnd"`
	MembershipType                   string          `json:"membershipType" yaml:"membershipType"`
	LimitType                        string          `json:"limitType" yaml:"limitType"`
	IsUnlimited                      bool            `json:"isUnlimited" yaml:"isUnlimited"`
	AutoModelSelectedDisplayMessage  string          `json:"autoModelSelectedDisplayMessage" yaml:"autoModelSelectedDisplayMessage"`
	NamedModelSelectedDisplayMessage string          `json:"namedModelSelectedDisplayMessage" yaml:"namedModelSelectedDisplayMessage"`
	IndividualUsage                  IndividualUsage `json:"individualUsage" yaml:"individualUsage"`
	// TeamUsage is carried through untouched.
	TeamUsage json.RawMessage `json:"teamUsage,omitempty" yaml:"-"`
}

// CycleStart parses BillingCycleStart, returning the zero time on failure.
func (b *BillingSummary) CycleStart() time.Time {
	return parseCycleTime(b.BillingCycleStart)
}

// CycleEnd parses BillingCycleEnd, returning the zero time on failure.
func (b *BillingSummary) CycleEnd() time.Time {
	return parseCycleTime(b.BillingCycleEnd)
}

// PlanPercentUsed returns plan usage as a percentage (0-100).
func (b *BillingSummary) PlanPercentUsed() float64 {
	p := b.IndividualUsage.Plan
	if p == nil {
		return 0
	}
	if p.TotalPercentUsed > 0 {
		return p.TotalPercentUsed * 100
	}
	if p.Limit > 0 {
		return p.Used / p.Limit * 100
	}
	return 0
}

func parseCycleTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
