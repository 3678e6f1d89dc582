package matching

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"jobflow-backend/internal/parsing"
)

const (
	baseScore         = 30
	skillHitWeight    = 15
	skillScoreCap     = 50
	titleHitWeight    = 5
	titleScoreCap     = 15
	locationBonus     = 5
	maxScore          = 100
	templateThreshold = 85

	maxSkillHighlights = 5
	maxTitleHighlights = 3
)

// JobSummary is the slice of a job the engine scores against.
type JobSummary struct {
	ID       string
	Title    string
	Skills   []string
	Location string
}

// Scored is one ranked match produced by a single engine run.
type Scored struct {
	JobID                  string
	Score                  int
	Highlights             []string
	TemplateRecommendation string
}

// Match scores resume fields against each job and returns the top-N results
// sorted by score descending. The sort is stable: ties keep the input job
// order. Pure and deterministic; an empty job list yields an empty result.
func Match(fields parsing.Fields, candidates []JobSummary, topN int) []Scored {
	merged := mergedTokens(fields)

	out := make([]Scored, 0, len(candidates))
	for _, job := range candidates {
		out = append(out, scoreJob(merged, job))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

func scoreJob(merged map[string]bool, job JobSummary) Scored {
	var skillHits []string
	for _, skill := range job.Skills {
		if merged[strings.ToLower(skill)] {
			skillHits = append(skillHits, strings.ToLower(skill))
		}
	}

	var titleHits []string
	seen := map[string]bool{}
	for _, token := range titleTokens(job.Title) {
		if merged[token] && !seen[token] {
			titleHits = append(titleHits, token)
			seen[token] = true
		}
	}

	score := baseScore
	score += capped(len(skillHits)*skillHitWeight, skillScoreCap)
	score += capped(len(titleHits)*titleHitWeight, titleScoreCap)
	if job.Location != "" && merged[strings.ToLower(job.Location)] {
		score += locationBonus
	}
	if score > maxScore {
		score = maxScore
	}

	template := "template_2"
	if score >= templateThreshold {
		template = "template_1"
	}

	return Scored{
		JobID:                  job.ID,
		Score:                  score,
		Highlights:             highlights(skillHits, titleHits),
		TemplateRecommendation: template,
	}
}

func highlights(skillHits, titleHits []string) []string {
	var out []string
	if len(skillHits) > 0 {
		shown := skillHits
		if len(shown) > maxSkillHighlights {
			shown = shown[:maxSkillHighlights]
		}
		out = append(out, fmt.Sprintf("Matches required skills: %s", strings.Join(shown, ", ")))
	}
	if len(titleHits) > 0 {
		shown := titleHits
		if len(shown) > maxTitleHighlights {
			shown = shown[:maxTitleHighlights]
		}
		out = append(out, fmt.Sprintf("Title keywords overlap: %s", strings.Join(shown, ", ")))
	}
	if len(out) == 0 {
		out = append(out, "Basic keyword relevance")
	}
	return out
}

// mergedTokens lower-cases the union of resume skills and keywords.
func mergedTokens(fields parsing.Fields) map[string]bool {
	merged := make(map[string]bool, len(fields.Skills)+len(fields.Keywords))
	for _, s := range fields.Skills {
		merged[strings.ToLower(s)] = true
	}
	for _, k := range fields.Keywords {
		merged[strings.ToLower(k)] = true
	}
	return merged
}

// titleTokens splits a job title into lower-cased tokens: ASCII letter/digit
// runs become one token each, and every CJK character is its own token.
func titleTokens(title string) []string {
	var tokens []string
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			tokens = append(tokens, strings.ToLower(run.String()))
			run.Reset()
		}
	}
	for _, r := range title {
		switch {
		case r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			run.WriteRune(r)
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func capped(v, limit int) int {
	if v > limit {
		return limit
	}
	return v
}
