package sales

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/salesmesh/core"
)

// Lead is a raw intake form submission, the input of the research pipeline.
type Lead struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Company      string `json:"company_name,omitempty"`
	Website      string `json:"website,omitempty"`
	InterestedIn string `json:"interested_in"`
	PainPoints   string `json:"pain_points,omitempty"`
	ReferredBy   string `json:"referred_by,omitempty"`
}

// Validate checks the fields the intake form marks as required.
func (l Lead) Validate() error {
	var missing []string

	if strings.TrimSpace(l.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(l.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(l.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(l.InterestedIn) == "" {
		missing = append(missing, "interested_in")
	}

	if len(missing) > 0 {
		return core.NewConfigurationError("lead is missing required fields: %s", strings.Join(missing, ", "))
	}

	return nil
}

// FullName returns the contact's display name.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// CompanyOrDefault returns the company name, or a placeholder when the form
// left it blank.
func (l Lead) CompanyOrDefault() string {
	if l.Company == "" {
		return "Prospect"
	}
	return l.Company
}

// Context renders the lead as the run input every research agent receives.
func (l Lead) Context() string {
	var b strings.Builder

	b.WriteString("NEW LEAD SUBMISSION\n\n")
	b.WriteString("Contact Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", l.FullName())
	fmt.Fprintf(&b, "- Email: %s\n", l.Email)
	fmt.Fprintf(&b, "- Phone: %s\n\n", orElse(l.Phone, "Not provided"))

	b.WriteString("Company Information:\n")
	fmt.Fprintf(&b, "- Company: %s\n", orElse(l.Company, "Not provided"))
	fmt.Fprintf(&b, "- Website: %s\n\n", orElse(l.Website, "Not provided"))

	b.WriteString("Lead Details:\n")
	fmt.Fprintf(&b, "- Interested In: %s\n", orElse(l.InterestedIn, "Not specified"))
	fmt.Fprintf(&b, "- Pain Points: %s\n", orElse(l.PainPoints, "Not specified"))
	fmt.Fprintf(&b, "- Referred By: %s\n\n", orElse(l.ReferredBy, "Not specified"))

	b.WriteString("---\n\n")
	b.WriteString("Conduct comprehensive pre-call research and generate actionable call prep brief.\n")

	return b.String()
}

// ClientInfo identifies the prospect a proposal is generated for.
type ClientInfo struct {
	Company     string `json:"company_name"`
	ContactName string `json:"contact_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Industry    string `json:"industry,omitempty"`
}

// ProposalRequest is the input of the proposal pipeline: who the client is,
// plus the free-form notes taken during the discovery call.
type ProposalRequest struct {
	Client ClientInfo `json:"client_info"`
	Notes  string     `json:"discovery_notes"`
}

// Validate checks that the request carries enough to write a proposal.
func (r ProposalRequest) Validate() error {
	if strings.TrimSpace(r.Client.Company) == "" {
		return core.NewConfigurationError("proposal request is missing client company name")
	}
	if strings.TrimSpace(r.Notes) == "" {
		return core.NewConfigurationError("proposal request is missing discovery notes")
	}
	return nil
}

// CompanyOrDefault returns the client company name, or a placeholder.
func (r ProposalRequest) CompanyOrDefault() string {
	if r.Client.Company == "" {
		return "Prospect"
	}
	return r.Client.Company
}

// Context renders the request as the run input every proposal agent receives.
// The discovery notes are passed through verbatim so concrete figures from
// the call (page counts, budget ranges) reach the agents untouched.
func (r ProposalRequest) Context() string {
	client, err := json.MarshalIndent(r.Client, "", "  ")
	if err != nil {
		client = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("CLIENT INFORMATION:\n")
	b.Write(client)
	b.WriteString("\n\nDISCOVERY CALL NOTES:\n")
	b.WriteString(r.Notes)
	b.WriteString("\n\n---\n\n")
	b.WriteString("Generate a complete, professional project proposal with accurate pricing and timeline.\n")

	return b.String()
}

func orElse(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
