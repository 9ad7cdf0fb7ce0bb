// Package resume scores resume text against a skills inventory and an
// optional job description.
package resume

import (
	"math"
	"sort"
	"strings"
)

// DefaultSkills is the fallback inventory used when no skills file is
// configured.
var DefaultSkills = []string{"Python", "Go", "Machine Learning", "Data Science", "React", "SQL"}

// Analysis is the result of scoring one resume.
type Analysis struct {
	SkillsFound     []string `json:"skills_found"`
	Score           float64  `json:"score"`
	Similarity      *float64 `json:"similarity_with_jd"`
	ATSScore        float64  `json:"ats_score"`
	MissingKeywords []string `json:"missing_keywords"`
}

// Analyze scores text for skills coverage, job-description similarity, and
// ATS keyword coverage. Similarity stays nil when no job description is
// supplied; an empty description is not a similarity of zero.
func Analyze(text, jobDescription string, skills []string) Analysis {
	if len(skills) == 0 {
		skills = DefaultSkills
	}

	lowered := strings.ToLower(text)
	found := make([]string, 0, len(skills))
	for _, skill := range skills {
		if strings.Contains(lowered, strings.ToLower(skill)) {
			found = append(found, skill)
		}
	}

	score := 0.0
	if len(skills) > 0 {
		score = float64(len(found)) / float64(len(skills)) * 100
	}
	if score > 100 {
		score = 100
	}

	analysis := Analysis{
		SkillsFound:     found,
		Score:           round2(score),
		MissingKeywords: []string{},
	}

	if strings.TrimSpace(jobDescription) == "" {
		return analysis
	}

	jdWords := wordSet(jobDescription, 3)
	resumeWords := wordSet(text, 3)
	if len(jdWords) > 0 {
		common := 0
		for w := range jdWords {
			if resumeWords[w] {
				common++
			}
		}
		sim := round2(float64(common) / float64(len(jdWords)) * 100)
		analysis.Similarity = &sim
	}

	// ATS coverage uses a looser word length bound than similarity, matching
	// how recruiters' keyword filters behave on short tokens.
	jdKeywords := wordSet(jobDescription, 2)
	resumeTokens := wordSet(text, 2)
	present := 0
	missing := make([]string, 0)
	for w := range jdKeywords {
		if resumeTokens[w] {
			present++
		} else {
			missing = append(missing, w)
		}
	}
	sort.Strings(missing)
	if len(jdKeywords) > 0 {
		analysis.ATSScore = round2(float64(present) / float64(len(jdKeywords)) * 100)
	}
	analysis.MissingKeywords = missing

	return analysis
}

// FeedbackLine condenses an analysis into the one-line summary recorded in
// history and used as a reconciliation signal.
func FeedbackLine(a Analysis) string {
	var b strings.Builder
	switch {
	case a.Score >= 80:
		b.WriteString("Strong skills coverage")
	case a.Score >= 50:
		b.WriteString("Moderate skills coverage")
	default:
		b.WriteString("Limited skills coverage")
	}
	if len(a.SkillsFound) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(a.SkillsFound, ", "))
	}
	if a.Similarity != nil {
		if *a.Similarity >= 60 {
			b.WriteString(". Good alignment with the job description")
		} else {
			b.WriteString(". Weak alignment with the job description")
		}
	}
	return b.String()
}

func wordSet(text string, minLen int) map[string]bool {
	out := make(map[string]bool)
	for _, raw := range strings.Fields(text) {
		w := strings.ToLower(strings.Trim(raw, `.,:;()[]{}"'`))
		if len(w) > minLen {
			out[w] = true
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
