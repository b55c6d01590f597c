package sales

import "fmt"

// BriefSubject is the email subject line for a call prep brief.
func BriefSubject(company string) string {
	return "Call Prep Brief: " + orElse(company, "Prospect")
}

// ProposalSubject is the email subject line for a generated proposal.
func ProposalSubject(company string) string {
	return "Project Proposal: " + orElse(company, "Prospect")
}

// LeadNotification renders the chat alert posted when a research run finishes.
func LeadNotification(lead Lead) string {
	return fmt.Sprintf(`🎯 *New Lead: %s*

*Contact:* %s
*Email:* %s
*Interested In:* %s
*Pain Points:* %s

Call prep brief has been generated and emailed!`,
		lead.CompanyOrDefault(),
		lead.FullName(),
		orElse(lead.Email, "N/A"),
		orElse(lead.InterestedIn, "General Inquiry"),
		orElse(lead.PainPoints, "Not specified"),
	)
}

// ProposalNotification renders the chat alert posted when a proposal run
// finishes.
func ProposalNotification(client ClientInfo) string {
	return fmt.Sprintf(`📄 *Proposal Generated: %s*

A new proposal has been created and sent for review.
Check your email for the complete proposal.`,
		orElse(client.Company, "Prospect"),
	)
}
