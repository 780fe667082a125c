package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"leadfinder/cmd/internal/domain/entity"
	"leadfinder/cmd/internal/domain/leads"
	"leadfinder/cmd/internal/domain/scoring"
	"leadfinder/cmd/internal/infrastructure/cache"
	"leadfinder/cmd/internal/infrastructure/openai"
	"leadfinder/cmd/internal/logging"
	"leadfinder/cmd/internal/utils"
)

const (
	SourceAIResearched        = "AI Researched"
	SourceAIResearchedPartial = "AI Researched (partial)"

	partialDescriptionLength = 500
	batchProgressEvery       = 5
)

var (
	ErrAIDisabled = errors.New("AI features are disabled, configure OPENAI_API_KEY to use them")

	aiScoreRe = regexp.MustCompile(`(?i)(?:score|rating):\s*(\d+)`)
)

// Completer is a chat completion backend.
type Completer interface {
	Complete(ctx context.Context, chat openai.ChatRequest) (string, error)
}

// Waiter spaces out consecutive calls to the model.
type Waiter interface {
	Wait(ctx context.Context) error
}

type AIService struct {
	LLM    Completer
	Cache  *cache.Cache
	Leads  *DefaultLeadService
	Pacer  Waiter
	Logger logging.Logger
}

// NewAIService builds the AI collaborator. A nil llm disables every
// operation, which then returns ErrAIDisabled.
func NewAIService(llm Completer, c *cache.Cache, leadService *DefaultLeadService, pacer Waiter, logger logging.Logger) *AIService {
	return &AIService{
		LLM:    llm,
		Cache:  c,
		Leads:  leadService,
		Pacer:  pacer,
		Logger: logger,
	}
}

func (a *AIService) Enabled() bool {
	return a.LLM != nil
}

// analysisResult is what the analysis cache holds. The model's own score is
// kept apart from the lead score so every use blends it against the
// heuristic score of the lead at that moment.
type analysisResult struct {
	AIAnalysis    string `json:"ai_analysis"`
	ExternalScore *int   `json:"external_score,omitempty"`
}

// AnalyzeCompany asks the model for an opportunity assessment of c. When
// the answer carries a score it is blended into the lead score. Stored
// companies are updated in place.
func (a *AIService) AnalyzeCompany(ctx context.Context, c *entity.Company, profile scoring.Profile) (*entity.Company, error) {
	if !a.Enabled() {
		return c, ErrAIDisabled
	}

	key := cache.Key(cache.PrefixAIAnalysis, c.ID, c.Name, c.City)

	var result analysisResult
	if a.Cache.GetInto(ctx, key, &result) && result.AIAnalysis != "" {
		a.Logger.Infof("Using cached AI analysis for %s", c.Name)
		return a.applyAnalysis(c, result, profile)
	}

	text, err := a.LLM.Complete(ctx, openai.ChatRequest{
		Messages: []openai.Message{
			{Role: openai.RoleSystem, Content: analysisPrompt},
			{Role: openai.RoleUser, Content: analysisContext(c)},
		},
		Temperature: 0.5,
		MaxTokens:   500,
	})
	if err != nil {
		return c, fmt.Errorf("analyze %s: %w", c.Name, err)
	}

	result = analysisResult{AIAnalysis: text}
	if external, ok := ExtractAIScore(text); ok {
		result.ExternalScore = &external
	}

	analyzed, err := a.applyAnalysis(c, result, profile)
	if err != nil {
		return analyzed, err
	}

	a.Cache.Set(ctx, key, result)
	return analyzed, nil
}

// applyAnalysis stores the analysis through Enrich for saved companies.
// Unsaved ones are blended against their current score.
func (a *AIService) applyAnalysis(c *entity.Company, result analysisResult, profile scoring.Profile) (*entity.Company, error) {
	if c.ID > 0 {
		updated, err := a.Leads.Enrich(c.ID, map[string]any{"ai_analysis": result.AIAnalysis}, result.ExternalScore, profile)
		if err != nil {
			return c, err
		}
		return updated, nil
	}

	c.AIAnalysis = result.AIAnalysis
	if result.ExternalScore != nil {
		c.LeadScore = scoring.Blend(c.LeadScore, *result.ExternalScore)
	}
	return c, nil
}

// AnalyzeBatch analyzes companies one at a time. Failures are logged and
// leave the company untouched.
func (a *AIService) AnalyzeBatch(ctx context.Context, companies []*entity.Company, profile scoring.Profile) ([]*entity.Company, error) {
	if !a.Enabled() {
		return companies, ErrAIDisabled
	}

	out := make([]*entity.Company, 0, len(companies))
	for i, c := range companies {
		if err := a.Pacer.Wait(ctx); err != nil {
			return append(out, companies[i:]...), err
		}

		analyzed, err := a.AnalyzeCompany(ctx, c, profile)
		if err != nil {
			a.Logger.Errorf("Error in AI company analysis: %v", err)
		}
		out = append(out, analyzed)

		if i > 0 && i%batchProgressEvery == 0 {
			a.Logger.Infof("Analyzed %d/%d companies", i, len(companies))
		}
	}
	return out, nil
}

// ExtractAIScore reads a "score: N" or "rating: N" marker from model output.
func ExtractAIScore(text string) (int, bool) {
	m := aiScoreRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return entity.MaxLeadScore, true
	}
	return entity.ClampScore(n), true
}

// GenerateOutreachEmail drafts a first-contact email for c. The first line
// of the result is the subject.
func (a *AIService) GenerateOutreachEmail(ctx context.Context, c *entity.Company) (string, error) {
	if !a.Enabled() {
		return "", ErrAIDisabled
	}

	key := cache.Key(cache.PrefixOutreachEmail, c.ID, c.Name, c.City)

	var cached string
	if a.Cache.GetInto(ctx, key, &cached) && cached != "" {
		a.Logger.Infof("Using cached outreach email for %s", c.Name)
		return cached, nil
	}

	email, err := a.LLM.Complete(ctx, openai.ChatRequest{
		Messages: []openai.Message{
			{Role: openai.RoleSystem, Content: outreachPrompt},
			{Role: openai.RoleUser, Content: outreachContext(c)},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("outreach email for %s: %w", c.Name, err)
	}

	a.Cache.Set(ctx, key, email)
	return email, nil
}

// GenerateOutreachBatch drafts one email per company. A failed draft is
// replaced by its error message so positions line up with companies.
func (a *AIService) GenerateOutreachBatch(ctx context.Context, companies []*entity.Company) ([]string, error) {
	if !a.Enabled() {
		return nil, ErrAIDisabled
	}

	emails := make([]string, 0, len(companies))
	for _, c := range companies {
		if err := a.Pacer.Wait(ctx); err != nil {
			return emails, err
		}

		email, err := a.GenerateOutreachEmail(ctx, c)
		if err != nil {
			a.Logger.Errorf("Error generating outreach email: %v", err)
			email = "Error generating email: " + err.Error()
		}
		emails = append(emails, email)
	}
	return emails, nil
}

// FindPotentialLeads asks the model to propose businesses in loc, scores
// them with the AI lead profile and stores them.
func (a *AIService) FindPotentialLeads(ctx context.Context, loc leads.Location, industry string) ([]*entity.Company, error) {
	if !a.Enabled() {
		return nil, ErrAIDisabled
	}

	focus := industry
	if focus == "" {
		focus = "all"
	}
	key := cache.Key(cache.PrefixAILeads, loc.City, loc.State, focus)

	var raws []leads.Raw
	if a.Cache.GetInto(ctx, key, &raws) && len(raws) > 0 {
		a.Logger.Infof("Using cached AI leads for %s", loc)
		return a.store(raws, loc, scoring.AILead), nil
	}

	a.Logger.Infof("Using AI to identify potential leads in %s", loc)
	text, err := a.LLM.Complete(ctx, openai.ChatRequest{
		Messages: []openai.Message{
			{Role: openai.RoleSystem, Content: potentialLeadsPrompt},
			{Role: openai.RoleUser, Content: potentialLeadsContext(loc, industry)},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, fmt.Errorf("find leads in %s: %w", loc, err)
	}

	proposed, err := leads.ExtractJSONArray(text)
	if err != nil {
		a.Logger.Warnf("Could not parse JSON from AI response: %v", err)
		raws = leads.ExtractFromText(text, loc)
	} else {
		raws = make([]leads.Raw, 0, len(proposed))
		for _, p := range proposed {
			raws = append(raws, fromProposedLead(p, loc))
		}
	}

	companies := a.store(raws, loc, scoring.AILead)
	a.Cache.Set(ctx, key, raws)
	a.Leads.RecordSearch("AI", searchTerm(industry, loc), loc, len(companies))
	return companies, nil
}

func fromProposedLead(p leads.Raw, loc leads.Location) leads.Raw {
	return leads.Raw{
		"name":          p.String("name"),
		"category":      p.String("category"),
		"building_size": p.String("size"),
		"city":          loc.City,
		"state":         loc.State,
		"contact_title": p.String("contact_title"),
		"description":   p.String("reason"),
		"notes":         p.String("approach"),
		"source":        leads.SourceAIGenerated,
		"ai_analysis":   p.String("reason"),
	}
}

// ResearchCompany asks the model for a profile of one business. When the
// answer cannot be parsed a partial record built from the raw text is
// stored instead.
func (a *AIService) ResearchCompany(ctx context.Context, name string, loc leads.Location) (*entity.Company, error) {
	if !a.Enabled() {
		return nil, ErrAIDisabled
	}

	key := cache.Key(cache.PrefixCompanyResearch, name, loc.City, loc.State)

	var raw leads.Raw
	if a.Cache.GetInto(ctx, key, &raw) && len(raw) > 0 {
		a.Logger.Infof("Using cached AI research for %s", name)
		return a.storeOne(raw, loc, scoring.AILead), nil
	}

	a.Logger.Infof("Using AI to research %s", name)
	text, err := a.LLM.Complete(ctx, openai.ChatRequest{
		Messages: []openai.Message{
			{Role: openai.RoleSystem, Content: researchPrompt},
			{Role: openai.RoleUser, Content: researchContext(name, loc)},
		},
		Temperature: 0.7,
		MaxTokens:   800,
	})
	if err != nil {
		return nil, fmt.Errorf("research %s: %w", name, err)
	}

	profile, err := leads.ExtractJSONObject(text)
	if err != nil {
		a.Logger.Errorf("Error parsing AI company research response: %v", err)
		raw = leads.Raw{
			"name":        name,
			"city":        loc.City,
			"state":       loc.State,
			"description": utils.Truncate(text, partialDescriptionLength),
			"source":      SourceAIResearchedPartial,
			"notes":       "Error parsing AI response",
		}
	} else {
		raw = fromResearch(profile, name, loc)
	}

	company := a.storeOne(raw, loc, scoring.AILead)
	a.Cache.Set(ctx, key, raw)
	return company, nil
}

func fromResearch(p leads.Raw, name string, loc leads.Location) leads.Raw {
	if n := p.String("name"); n != "" {
		name = n
	}
	return leads.Raw{
		"name":           name,
		"address":        p.String("address"),
		"city":           loc.City,
		"state":          loc.State,
		"category":       p.String("category"),
		"building_size":  p.String("building_size"),
		"year_built":     p.String("year_built"),
		"description":    p.String("description"),
		"contact_person": p.String("contact_person"),
		"contact_title":  p.String("contact_title"),
		"notes":          p.String("approach"),
		"source":         SourceAIResearched,
		"ai_analysis":    p.String("energy_needs"),
	}
}

// IdentifyLeadSources lists directories and organizations worth mining in loc.
func (a *AIService) IdentifyLeadSources(ctx context.Context, loc leads.Location) (string, error) {
	return a.cachedText(ctx, cache.Key(cache.PrefixLeadSources, loc.City, loc.State), openai.ChatRequest{
		Messages: []openai.Message{
			{Role: openai.RoleSystem, Content: leadSourcesPrompt},
			{Role: openai.RoleUser, Content: fmt.Sprintf(leadSourcesContext, loc.City, loc.State)},
		},
		Temperature: 0.7,
		MaxTokens:   600,
	})
}

// AnalyzeMarket describes the energy efficiency market in loc.
func (a *AIService) AnalyzeMarket(ctx context.Context, loc leads.Location) (string, error) {
	return a.cachedText(ctx, cache.Key(cache.PrefixMarketAnalysis, loc.City, loc.State), openai.ChatRequest{
		Messages: []openai.Message{
			{Role: openai.RoleSystem, Content: marketPrompt},
			{Role: openai.RoleUser, Content: fmt.Sprintf(marketContext, loc.City, loc.State)},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
}

func (a *AIService) cachedText(ctx context.Context, key string, chat openai.ChatRequest) (string, error) {
	if !a.Enabled() {
		return "", ErrAIDisabled
	}

	var cached string
	if a.Cache.GetInto(ctx, key, &cached) && cached != "" {
		a.Logger.Infof("Using cached result for %s", key)
		return cached, nil
	}

	text, err := a.LLM.Complete(ctx, chat)
	if err != nil {
		return "", err
	}

	a.Cache.Set(ctx, key, text)
	return text, nil
}

// store normalizes, scores and saves every raw lead. Leads that fail to
// save are still returned, without an ID.
func (a *AIService) store(raws []leads.Raw, loc leads.Location, profile scoring.Profile) []*entity.Company {
	companies := make([]*entity.Company, 0, len(raws))
	for _, raw := range raws {
		companies = append(companies, a.storeOne(raw, loc, profile))
	}
	return companies
}

func (a *AIService) storeOne(raw leads.Raw, loc leads.Location, profile scoring.Profile) *entity.Company {
	now := a.Leads.Now()
	company := leads.Normalize(raw, loc, now)
	company.LeadScore = scoring.Score(&company, profile, now)
	return a.Leads.Store(&company)
}

func searchTerm(what string, loc leads.Location) string {
	if strings.TrimSpace(what) == "" {
		what = "all"
	}
	return what + " in " + loc.String()
}
