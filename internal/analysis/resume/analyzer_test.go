package resume_test

import (
	"testing"

	"github.com/hireprep/hireprep/backend/internal/analysis/resume"
)

func TestAnalyzeSkillsCoverage(t *testing.T) {
	text := "Experienced engineer with Go and SQL, some React exposure."
	a := resume.Analyze(text, "", []string{"Go", "SQL", "React", "Rust"})

	if len(a.SkillsFound) != 3 {
		t.Fatalf("expected 3 skills, got %v", a.SkillsFound)
	}
	if a.Score != 75 {
		t.Fatalf("expected score 75, got %v", a.Score)
	}
	if a.Similarity != nil {
		t.Fatal("similarity must stay nil without a job description")
	}
}

func TestAnalyzeSimilarityAndATS(t *testing.T) {
	text := "Built distributed backend services with Kubernetes and Postgres"
	jd := "Looking for backend engineer familiar with Kubernetes services"
	a := resume.Analyze(text, jd, []string{"Kubernetes"})

	if a.Similarity == nil {
		t.Fatal("expected similarity with a job description present")
	}
	if *a.Similarity <= 0 || *a.Similarity > 100 {
		t.Fatalf("similarity out of range: %v", *a.Similarity)
	}
	if a.ATSScore <= 0 || a.ATSScore > 100 {
		t.Fatalf("ats score out of range: %v", a.ATSScore)
	}
	for _, missing := range a.MissingKeywords {
		if missing == "kubernetes" {
			t.Fatal("present keyword reported missing")
		}
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := resume.Analyze("", "", nil)
	if a.Score != 0 || len(a.SkillsFound) != 0 {
		t.Fatalf("empty resume must score zero: %+v", a)
	}
}

func TestFeedbackLineBands(t *testing.T) {
	strong := resume.Analysis{Score: 90, SkillsFound: []string{"Go"}}
	if got := resume.FeedbackLine(strong); got != "Strong skills coverage: Go" {
		t.Fatalf("unexpected line: %q", got)
	}

	weak := resume.Analysis{Score: 10}
	if got := resume.FeedbackLine(weak); got != "Limited skills coverage" {
		t.Fatalf("unexpected line: %q", got)
	}
}
