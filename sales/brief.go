package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/salesmesh/config"
	"github.com/hupe1980/salesmesh/core"
)

// briefSections maps research output keys to brief headings, in presentation
// order.
var briefSections = []struct {
	key   string
	title string
}{
	{KeyCompanyProfile, "COMPANY RESEARCH"},
	{KeyContactBackground, "CONTACT RESEARCH"},
	{KeyWebsiteAssessment, "WEBSITE ANALYSIS"},
	{KeyCompetitiveLandscape, "COMPETITIVE INTELLIGENCE"},
	{KeyDiscoveryQuestions, "DISCOVERY QUESTIONS"},
	{KeyObjectionResponses, "OBJECTION HANDLING"},
}

// CompileBrief assembles the research pipeline output into a call prep brief.
// Sections whose agent failed still appear, carrying the failure marker text,
// so the reader sees what is missing rather than a silently shorter document.
func CompileBrief(lead Lead, state core.State, company config.CompanyConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# CALL PREP BRIEF: %s\n\n", lead.CompanyOrDefault())
	fmt.Fprintf(&b, "**Contact:** %s\n", lead.FullName())
	fmt.Fprintf(&b, "**Email:** %s\n", orElse(lead.Email, "N/A"))
	fmt.Fprintf(&b, "**Phone:** %s\n", orElse(lead.Phone, "N/A"))
	fmt.Fprintf(&b, "**Interested In:** %s\n\n", orElse(lead.InterestedIn, "N/A"))
	fmt.Fprintf(&b, "**Generated:** %s\n\n---\n\n", time.Now().Format("2006-01-02 15:04"))

	for _, section := range briefSections {
		res, ok := state.Get(section.key)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n---\n\n", section.title, res.Text)
	}

	b.WriteString("## CALL PREPARATION CHECKLIST\n\n")
	b.WriteString("- [ ] Review company background and recent news\n")
	b.WriteString("- [ ] Understand contact's role and priorities\n")
	b.WriteString("- [ ] Note current website issues and opportunities\n")
	b.WriteString("- [ ] Prepare discovery questions with context\n")
	b.WriteString("- [ ] Review objection responses\n")
	b.WriteString("- [ ] Have pricing packages ready to discuss\n")
	b.WriteString("- [ ] Confirm calendar availability for follow-up\n\n")
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "*Prepared by %s AI System*\n", company.Name)
	fmt.Fprintf(&b, "*Contact: %s*\n", company.ContactEmail)

	return b.String()
}

// ProposalDocument extracts the final proposal text from a completed proposal
// run. The second return is false when the writer agent's output is missing
// or flagged as failed.
func ProposalDocument(state core.State) (string, bool) {
	res, ok := state.Get(KeyProposalText)
	if !ok || res.Failed() {
		return "", false
	}
	return res.Text, true
}

// BriefFilename returns the artifact name for a call prep brief.
func BriefFilename(company string) string {
	return fmt.Sprintf("CallPrep_%s.md", sanitizeFilename(company))
}

// ProposalFilename returns the artifact name for a generated proposal.
func ProposalFilename(company string) string {
	return fmt.Sprintf("Proposal_%s.md", sanitizeFilename(company))
}

func sanitizeFilename(s string) string {
	if s == "" {
		return "Prospect"
	}
	mapper := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}
	return strings.Map(mapper, s)
}
