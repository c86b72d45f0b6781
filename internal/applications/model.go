package applications

import "time"

// Application statuses. Every record starts pending; review moves it to
// approved or rejected, and staff may re-review (the latest review wins,
// prior decisions stay in the audit trail).
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Required document categories. A record cannot exist with any of these
// missing.
const (
	DocParent     = "parentDoc"
	DocSaleDeed   = "saleDeed"
	DocAadharCard = "aadharCard"
	DocEncumbCert = "encumbCert"
	DocLayoutScan = "layoutScan"
)

// DocumentCategories lists the mandatory categories in submission order.
var DocumentCategories = []string{DocParent, DocSaleDeed, DocAadharCard, DocEncumbCert, DocLayoutScan}

// ValidStatus reports whether s is a known application status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// ValidCategory reports whether c is a known document category.
func ValidCategory(c string) bool {
	for _, known := range DocumentCategories {
		if c == known {
			return true
		}
	}
	return false
}

// GeoPoint is one vertex of a land parcel boundary polygon.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Review records who decided on an application and when. It is absent while
// the application is pending.
type Review struct {
	ReviewerEmail string    `json:"reviewerEmail"`
	ReviewerName  string    `json:"reviewerName"`
	ReviewerRole  string    `json:"reviewerRole"`
	ReviewedAt    time.Time `json:"reviewedAt"`
}

// Application is a land-title application record.
type Application struct {
	RefID       string            `json:"refId"`
	RefSeq      int64             `json:"-"`
	OwnerEmail  string            `json:"ownerEmail"`
	District    string            `json:"district"`
	Taluk       string            `json:"taluk"`
	Village     string            `json:"village"`
	SurveyNo    string            `json:"surveyNo"`
	SubdivNo    string            `json:"subdivNo"`
	Boundary    []GeoPoint        `json:"boundary,omitempty"`
	Documents   map[string]string `json:"documents"` // category -> storage key
	Status      string            `json:"status"`
	Review      *Review           `json:"review,omitempty"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

// DaysPending returns whole days elapsed since submission, never negative
// even when clock skew puts SubmittedAt in the future.
func (a Application) DaysPending(now time.Time) int {
	days := int(now.Sub(a.SubmittedAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// SummaryStats aggregates registry counts for dashboards and the chatbot.
type SummaryStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
