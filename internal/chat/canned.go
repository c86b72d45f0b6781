package chat

import (
	"fmt"
	"strings"

	"patta-backend/internal/applications"
	"patta-backend/internal/shared/auth"
)

// Canned answers cover the handful of questions the portal gets most. They
// are matched by keyword before any LLM round trip, so the common path works
// with no provider configured at all.

const helpCitizen = `You can submit a new patta application with the five required documents
(parent document, sale deed, Aadhar card, encumbrance certificate and layout scan),
track its status, and download your submitted documents.`

const helpStaff = `You can search applications by reference id, filter by status or submission
date, open submitted documents, and approve or reject applications.`

const pattaInfo = `A patta is the government land-revenue record that establishes title over a
parcel. Submit the application with all five supporting documents; the revenue office
reviews it and records an approval or rejection.`

// cannedAnswer returns a prepared answer for recognizable questions. The
// second return is false when the question should go to the LLM instead.
func cannedAnswer(question, role string, stats applications.SummaryStats) (string, bool) {
	q := strings.ToLower(question)

	switch {
	case containsAny(q, "hello", "hi ", "vanakkam") || q == "hi":
		return "Hello! Ask me about patta applications, required documents or the review process.", true
	case containsAny(q, "help", "what can you do"):
		if role == auth.RoleStaff || role == auth.RoleAdmin {
			return helpStaff, true
		}
		return helpCitizen, true
	case containsAny(q, "stats", "statistics", "summary"):
		return fmt.Sprintf("There are %d applications in total: %d pending, %d approved and %d rejected.",
			stats.Total, stats.Pending, stats.Approved, stats.Rejected), true
	case containsAny(q, "pending"):
		return fmt.Sprintf("%d applications are currently pending review.", stats.Pending), true
	case containsAny(q, "what is a patta", "what is patta", "about patta"):
		return pattaInfo, true
	}
	return "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
