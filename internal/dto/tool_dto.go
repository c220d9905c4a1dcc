package dto

// AuditRequest asks for an SEO audit of a single page.
type AuditRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// AuditFinding is one itemized audit observation.
type AuditFinding struct {
	Category       string `json:"category"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// AuditResult is the structured outcome of an SEO audit.
type AuditResult struct {
	OverallScore float64        `json:"overall_score"`
	Findings     []AuditFinding `json:"findings"`
}

// KeywordResearchRequest asks for keyword suggestions around a topic.
type KeywordResearchRequest struct {
	Topic           string `json:"topic" validate:"required,min=2,max=200"`
	IncludeLongTail bool   `json:"include_long_tail"`
}

// KeywordResearchResult lists suggested keywords.
type KeywordResearchResult struct {
	Keywords []string `json:"keywords"`
}

// SerpAnalysisRequest asks for a simulated results page for a keyword.
type SerpAnalysisRequest struct {
	Keyword string `json:"keyword" validate:"required,min=2,max=200"`
}

// SerpOrganicResult is one simulated organic listing.
type SerpOrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
}

// SerpQuestion is one "people also ask" entry.
type SerpQuestion struct {
	Question string `json:"question"`
}

// SerpAnalysisResult carries exactly ten organic results and four questions.
type SerpAnalysisResult struct {
	OrganicResults []SerpOrganicResult `json:"organic_results"`
	PeopleAlsoAsk  []SerpQuestion      `json:"people_also_ask"`
}

// CompetitorAnalysisRequest compares a domain against a competitor.
type CompetitorAnalysisRequest struct {
	Domain           string `json:"domain" validate:"required,fqdn"`
	CompetitorDomain string `json:"competitor_domain" validate:"required,fqdn"`
}

// CompetitorAnalysisResult summarizes keyword overlap and content gaps.
type CompetitorAnalysisResult struct {
	OverlapKeywords []string `json:"overlap_keywords"`
	ContentGaps     []string `json:"content_gaps"`
	Summary         string   `json:"summary"`
}

// ContentAnalysisRequest asks for optimization suggestions for a draft.
type ContentAnalysisRequest struct {
	Content        string `json:"content" validate:"required,min=50"`
	TargetKeywords string `json:"target_keywords" validate:"required,max=300"`
}

// ContentAnalysisResult carries per-dimension suggestions and a score.
type ContentAnalysisResult struct {
	ReadabilitySuggestions       string  `json:"readability_suggestions"`
	KeywordDensitySuggestions    string  `json:"keyword_density_suggestions"`
	SemanticRelevanceSuggestions string  `json:"semantic_relevance_suggestions"`
	OverallScore                 float64 `json:"overall_score"`
}

// ContentBriefRequest asks for a writing brief on a topic.
type ContentBriefRequest struct {
	Topic    string `json:"topic" validate:"required,min=2,max=200"`
	Audience string `json:"audience" validate:"max=200"`
}

// ContentBriefResult is the generated brief.
type ContentBriefResult struct {
	Title           string   `json:"title"`
	Outline         []string `json:"outline"`
	TalkingPoints   []string `json:"talking_points"`
	TargetWordCount int      `json:"target_word_count"`
}

// LinkAnalysisRequest asks for a link profile review of a page.
type LinkAnalysisRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// LinkAnalysisResult summarizes the page's link profile.
type LinkAnalysisResult struct {
	InternalLinks int      `json:"internal_links"`
	ExternalLinks int      `json:"external_links"`
	Issues        []string `json:"issues"`
	Opportunities []string `json:"opportunities"`
}
