package sales

import (
	"strings"
	"testing"

	"github.com/hupe1980/salesmesh/config"
	"github.com/hupe1980/salesmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func researchState(t *testing.T) core.State {
	t.Helper()

	state, err := core.NewState().Merge(
		core.NewResult("CompanyIntelligence", KeyCompanyProfile, "Acme overview."),
		core.NewResult("ContactResearch", KeyContactBackground, "John Smith, CEO."),
		core.NewResult("WebsiteAnalyzer", KeyWebsiteAssessment, "Site is dated."),
		core.NewResult("CompetitiveContext", KeyCompetitiveLandscape, "Crowded market."),
		core.NewResult("RequirementsGatherer", KeyDiscoveryQuestions, "1. What is the goal?"),
		core.NewResult("ObjectionAnticipator", KeyObjectionResponses, "Objection: price."),
	)
	require.NoError(t, err)
	return state
}

func TestCompileBrief_SectionsInOrder(t *testing.T) {
	lead := testLead()
	brief := CompileBrief(lead, researchState(t), config.Default().Company)

	assert.Contains(t, brief, "# CALL PREP BRIEF: Acme")
	assert.Contains(t, brief, "**Contact:** John Smith")

	headings := []string{
		"## COMPANY RESEARCH",
		"## CONTACT RESEARCH",
		"## WEBSITE ANALYSIS",
		"## COMPETITIVE INTELLIGENCE",
		"## DISCOVERY QUESTIONS",
		"## OBJECTION HANDLING",
		"## CALL PREPARATION CHECKLIST",
	}
	last := -1
	for _, h := range headings {
		idx := strings.Index(brief, h)
		require.NotEqual(t, -1, idx, h)
		assert.Greater(t, idx, last, h)
		last = idx
	}

	assert.Contains(t, brief, "Acme overview.")
	assert.Contains(t, brief, "- [ ] Review objection responses")
	assert.Contains(t, brief, "*Prepared by Winnicki Digital AI System*")
	assert.Contains(t, brief, "*Contact: shannon@winnickidigital.com*")
}

func TestCompileBrief_FailedSectionCarriesMarker(t *testing.T) {
	state, err := core.NewState().Merge(
		core.NewResult("CompanyIntelligence", KeyCompanyProfile, "Acme overview."),
		core.NewFailureResult("CompetitiveContext", KeyCompetitiveLandscape, assert.AnError),
	)
	require.NoError(t, err)

	brief := CompileBrief(testLead(), state, config.Default().Company)

	assert.Contains(t, brief, "## COMPETITIVE INTELLIGENCE")
	assert.Contains(t, brief, "Error in CompetitiveContext:")
	// Sections without output are omitted entirely.
	assert.NotContains(t, brief, "## DISCOVERY QUESTIONS")
}

func TestCompileBrief_MissingCompanyUsesPlaceholder(t *testing.T) {
	lead := testLead()
	lead.Company = ""

	brief := CompileBrief(lead, researchState(t), config.Default().Company)
	assert.Contains(t, brief, "# CALL PREP BRIEF: Prospect")
}

func TestProposalDocument(t *testing.T) {
	state, err := core.NewState().Merge(
		core.NewResult("ProposalWriter", KeyProposalText, "# Website Proposal for Acme"),
	)
	require.NoError(t, err)

	doc, ok := ProposalDocument(state)
	assert.True(t, ok)
	assert.Equal(t, "# Website Proposal for Acme", doc)

	failed, err := core.NewState().Merge(
		core.NewFailureResult("ProposalWriter", KeyProposalText, assert.AnError),
	)
	require.NoError(t, err)

	_, ok = ProposalDocument(failed)
	assert.False(t, ok)

	_, ok = ProposalDocument(core.NewState())
	assert.False(t, ok)
}

func TestArtifactFilenames(t *testing.T) {
	assert.Equal(t, "CallPrep_Test_Corp.md", BriefFilename("Test Corp"))
	assert.Equal(t, "Proposal_Acme.md", ProposalFilename("Acme"))
	assert.Equal(t, "Proposal_Prospect.md", ProposalFilename(""))
	assert.Equal(t, "CallPrep_Acme__Sons.md", BriefFilename("Acme & Sons!"))
}
