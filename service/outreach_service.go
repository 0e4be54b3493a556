package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/SachyamKarki/Karki-Scrapper/internal/ai"
	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
)

const analysisSystemPrompt = "You are an expert website analyst and SEO specialist. " +
	"You produce comprehensive reports for cold-email outreach and sales prospecting. " +
	"You always respond with a single valid JSON object using snake_case keys, with no markdown and no explanation around it."

const analysisPromptTemplate = `Analyze the following website content and provide a comprehensive report for cold-email outreach and sales prospecting.

**Website URL:** %s
**Business/Page Context:** %s

**Website HTML/Text Content (first ~15000 chars):**
%s

IMPORTANT: Respond with ONLY a valid JSON object. No markdown, no code blocks, no explanation before or after. Use snake_case for all keys.

{
  "business_content_summary": {
    "what_they_do": "2-3 sentence description of what this business does, their industry, and core offering",
    "key_products_services": ["Product/service 1", "Product/service 2", "..."],
    "target_audience": "Who they serve (B2B/B2C, demographics, industries)",
    "value_proposition": "Their main differentiator or unique selling point",
    "key_content_on_site": ["Main page/section 1", "Main page/section 2", "..."],
    "location_market": "Geographic focus, local vs national, if evident",
    "crucial_details": ["Important detail 1 (e.g. contact methods)", "Important detail 2 (e.g. pricing model)", "..."]
  },
  "website_quality_red_flags": [
    { "flag": "e.g. No SSL (http not https)", "present": true, "cold_email_angle": "I noticed your site isn't optimized for mobile users, which may be costing you leads..." }
  ],
  "tech_stack_signals": [
    { "signal": "e.g. Old WordPress 4.x", "present": true, "cold_email_angle": "You're running WordPress without a CDN, which usually impacts speed and SEO." }
  ],
  "business_growth_indicators": [
    { "indicator": "e.g. Recently launched site but half-done", "present": true, "cold_email_angle": "Since you're expanding, improving conversion on your site could directly impact ROI." }
  ],
  "conversion_problems": [
    { "problem": "e.g. No lead capture forms", "present": true, "cold_email_angle": "Small UX changes here typically increase conversions by 20-30%%." }
  ],
  "seo_visibility_issues": [
    { "issue": "e.g. No meta titles", "present": true, "cold_email_angle": "Your site isn't ranking for branded searches, which is usually an easy fix." }
  ],
  "bugs_and_glitches": [
    { "title": "Brief issue title", "description": "Detailed description", "severity": "critical|high|medium|low" }
  ],
  "errors_and_loading_issues": [
    { "issue": "Description of error or loading problem", "likely_cause": "What might cause it" }
  ],
  "overall_analysis": {
    "summary": "2-3 sentence overall assessment of the website",
    "strengths": ["strength 1", "strength 2", "strength 3"],
    "critical_issues": ["Most urgent issues to fix"]
  },
  "improvement_recommendations": [
    { "category": "e.g. Performance, UX, SEO", "recommendation": "Specific actionable recommendation", "priority": "high|medium|low" }
  ],
  "keyword_analysis": [
    {
      "keyword": "exact keyword phrase to search in Google",
      "relevance_score": 7,
      "current_content_strength": "weak|moderate|strong",
      "estimated_ranking_potential": "low|medium|high",
      "estimated_current_rank": "1-3|4-10|11-20|21-30|31-50|Not in top 50|Not ranking",
      "landing_page_suggestion": "Which page/section should target this",
      "improvement_tips": "How to improve ranking for this keyword"
    }
  ]
}

**Requirements:**
- business_content_summary: A concise overview for a consultant to quickly understand the business. Extract from the website content: what they do, key offerings, who they serve, their value prop, main site sections, location/market, and any crucial details (contact info, pricing hints, certifications, etc.). Be specific and factual based on the content.
- website_quality_red_flags: Check for: No SSL (http), not mobile-friendly, very slow load, broken links/404s, outdated design, no clear CTA, no analytics/tracking, no accessibility (alt tags, contrast). For each, set present true/false and provide a cold_email_angle.
- tech_stack_signals: Infer from content: old CMS (WordPress 4.x, old PHP), no CDN (Cloudflare/Fastly), no performance tools (Lighthouse, GTM), no marketing tools (HubSpot, GA4, Meta Pixel).
- business_growth_indicators: Recently launched site, active on social, running paid ads with weak landing page, hiring, press/funding.
- conversion_problems: No lead forms, forms but no thank-you, no booking, no chat, long checkout, no trust signals.
- seo_visibility_issues: No meta titles/descriptions, duplicate titles, no local SEO/schema, not ranking for brand, abandoned blog.
- keyword_analysis: Provide exactly 10 keywords. For EACH keyword you MUST include estimated_current_rank (REQUIRED) with one of: "1-3", "4-10", "11-20", "21-30", "31-50", "Not in top 50", or "Not ranking". Use narrow bands (e.g. 21-30 not 21-50). Never omit estimated_current_rank.
- Use only valid JSON with snake_case keys. Output ONLY the JSON object, nothing else.`

const emailSystemPrompt = "You are a sales outreach specialist writing cold emails for a web consulting agency. " +
	"You write specific, non-generic emails grounded in the analysis you are given. " +
	"You always respond with a single valid JSON object of the form {\"subject\": \"...\", \"body\": \"...\"}, no markdown, nothing else."

// OutreachService runs the analysis and cold-email chains on the configured
// chat model.
type OutreachService struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	logger logger.Logger
}

func NewOutreachService(ctx context.Context, chatModel model.BaseChatModel, log logger.Logger) (*OutreachService, error) {
	// The prompt text is passed as template input, so literal braces in the
	// JSON schema never collide with FString placeholders.
	tpl := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(tpl)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile outreach chain: %w", err)
	}
	return &OutreachService{chain: runnable, logger: log.WithModule("outreach")}, nil
}

// AnalyzeURL fetches the page and produces the analysis report.
func (s *OutreachService) AnalyzeURL(ctx context.Context, url, businessName, businessCategory, urlType string) (map[string]interface{}, error) {
	content, err := ai.FetchPageContent(ctx, url)
	if err != nil {
		return nil, err
	}

	businessContext := businessName
	if businessCategory != "" {
		businessContext += " (" + businessCategory + ")"
	}
	if urlType != "" && urlType != "website" {
		businessContext += ", " + urlType + " page"
	}
	if strings.TrimSpace(businessContext) == "" {
		businessContext = "unknown"
	}

	resp, err := s.chain.Invoke(ctx, map[string]any{
		"system": analysisSystemPrompt,
		"query":  fmt.Sprintf(analysisPromptTemplate, url, businessContext, content),
	})
	if err != nil {
		return nil, fmt.Errorf("analysis chain failed: %w", err)
	}

	report, err := ai.ParseModelJSON(resp.Content)
	if err != nil {
		s.logger.Errorf("unparseable analysis for %s: %v", url, err)
		return nil, err
	}

	report["status"] = "completed"
	report["source"] = "gemini"
	report["url"] = url
	report["analyzed_at"] = time.Now().UTC().Format(time.RFC3339)
	return report, nil
}

// GenerateEmail drafts a cold email from the stored analysis and the lead's
// note. Template 1 is professional, 2 conversational, 3 short and direct; a
// custom prompt overrides the template tone.
func (s *OutreachService) GenerateEmail(ctx context.Context, lead *domain.Lead, analysis map[string]interface{}, noteText string, templateType int, customPrompt string) (string, string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a cold outreach email to the business below.\n\n")
	fmt.Fprintf(&b, "**Business:** %s\n", lead.Name)
	if lead.Website != "" {
		fmt.Fprintf(&b, "**Website:** %s\n", lead.Website)
	}
	if lead.Category != "" {
		fmt.Fprintf(&b, "**Category:** %s\n", lead.Category)
	}

	if len(analysis) > 0 {
		encoded, err := json.Marshal(analysis)
		if err != nil {
			return "", "", fmt.Errorf("failed to serialize analysis: %w", err)
		}
		fmt.Fprintf(&b, "\n**Website analysis report (JSON):**\n%s\n", encoded)
	}
	if noteText != "" {
		fmt.Fprintf(&b, "\n**Internal notes about this lead:**\n%s\n", noteText)
	}

	b.WriteString("\n**Instructions:**\n")
	if customPrompt != "" {
		fmt.Fprintf(&b, "- %s\n", customPrompt)
	} else {
		switch templateType {
		case 2:
			b.WriteString("- Friendly, conversational tone. First-name basis, light and personable, still credible.\n")
		case 3:
			b.WriteString("- Very short and direct: 3-4 sentences, one concrete observation, one clear ask.\n")
		default:
			b.WriteString("- Professional consultant tone. Reference 2-3 concrete findings from the analysis and how fixing them helps the business.\n")
		}
	}
	b.WriteString("- Ground every claim in the analysis or notes, never invent facts.\n")
	b.WriteString("- End with a low-pressure call to action.\n")
	b.WriteString(`- Respond with ONLY {"subject": "...", "body": "..."}.`)

	resp, err := s.chain.Invoke(ctx, map[string]any{
		"system": emailSystemPrompt,
		"query":  b.String(),
	})
	if err != nil {
		return "", "", fmt.Errorf("email chain failed: %w", err)
	}

	parsed, err := ai.ParseModelJSON(resp.Content)
	if err != nil {
		return "", "", err
	}
	subject, _ := parsed["subject"].(string)
	body, _ := parsed["body"].(string)
	if subject == "" && body == "" {
		return "", "", fmt.Errorf("model returned no subject or body")
	}
	return subject, body, nil
}
