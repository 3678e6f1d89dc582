package matching

import (
	"reflect"
	"testing"

	"jobflow-backend/internal/parsing"
)

func TestMatchScoreFormula(t *testing.T) {
	fields := parsing.Fields{
		Skills:   []string{"python", "sql"},
		Keywords: []string{"python"},
	}
	job := JobSummary{
		ID:       "1",
		Title:    "Python Engineer",
		Skills:   []string{"python"},
		Location: "beijing",
	}

	results := Match(fields, []JobSummary{job}, 10)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	// One skill hit (python) = 15, one title hit (python) = 5, no location
	// bonus: 30 + 15 + 5 = 50.
	if results[0].Score != 50 {
		t.Fatalf("score = %d, want 50", results[0].Score)
	}
	if results[0].TemplateRecommendation != "template_2" {
		t.Fatalf("template = %q, want template_2", results[0].TemplateRecommendation)
	}
}

func TestMatchScoreClampedTo100(t *testing.T) {
	fields := parsing.Fields{
		Skills: []string{"python", "java", "go", "sql", "docker", "linux"},
	}
	job := JobSummary{
		ID:       "1",
		Title:    "python java go sql docker linux",
		Skills:   []string{"python", "java", "go", "sql", "docker", "linux"},
		Location: "python",
	}

	results := Match(fields, []JobSummary{job}, 1)
	// 30 + min(50, 6*15) + min(15, 6*5) + 5 = 100.
	if results[0].Score != 100 {
		t.Fatalf("score = %d, want 100", results[0].Score)
	}
	if results[0].TemplateRecommendation != "template_1" {
		t.Fatalf("template = %q, want template_1", results[0].TemplateRecommendation)
	}
}

func TestMatchStableOrderOnTies(t *testing.T) {
	fields := parsing.Fields{Skills: []string{"python"}}
	jobList := []JobSummary{
		{ID: "a", Title: "Backend", Skills: []string{"python"}},
		{ID: "b", Title: "Platform", Skills: []string{"python"}},
		{ID: "c", Title: "Data", Skills: []string{"python"}},
	}

	results := Match(fields, jobList, 10)
	got := []string{results[0].JobID, results[1].JobID, results[2].JobID}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestMatchSortsDescendingAndTruncates(t *testing.T) {
	fields := parsing.Fields{Skills: []string{"python", "sql"}}
	jobList := []JobSummary{
		{ID: "low", Title: "Clerk"},
		{ID: "high", Title: "Python Engineer", Skills: []string{"python", "sql"}},
		{ID: "mid", Title: "Analyst", Skills: []string{"sql"}},
	}

	results := Match(fields, jobList, 2)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].JobID != "high" || results[1].JobID != "mid" {
		t.Fatalf("order = %s, %s", results[0].JobID, results[1].JobID)
	}
}

func TestMatchEmptyJobList(t *testing.T) {
	results := Match(parsing.Fields{Skills: []string{"python"}}, nil, 10)
	if len(results) != 0 {
		t.Fatalf("len(results) = %d, want 0", len(results))
	}
}

func TestMatchDeterministic(t *testing.T) {
	fields := parsing.Fields{
		Skills:   []string{"python", "机器学习"},
		Keywords: []string{"数据分析", "sql"},
	}
	jobList := []JobSummary{
		{ID: "1", Title: "机器学习工程师", Skills: []string{"python", "机器学习"}, Location: "shanghai"},
		{ID: "2", Title: "数据分析师", Skills: []string{"sql", "excel"}},
	}

	first := Match(fields, jobList, 10)
	second := Match(fields, jobList, 10)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("non-deterministic results:\n%+v\n%+v", first, second)
	}
}

func TestMatchHighlightsGenericWhenNoHits(t *testing.T) {
	results := Match(parsing.Fields{}, []JobSummary{{ID: "1", Title: "Engineer"}}, 1)
	if len(results[0].Highlights) != 1 || results[0].Highlights[0] != "Basic keyword relevance" {
		t.Fatalf("highlights = %v", results[0].Highlights)
	}
	if results[0].Score != 30 {
		t.Fatalf("score = %d, want 30", results[0].Score)
	}
}

func TestTitleTokensSplitsCJKPerCharacter(t *testing.T) {
	tokens := titleTokens("Python开发工程师 Senior")
	want := []string{"python", "开", "发", "工", "程", "师", "senior"}
	if !reflect.DeepEqual(tokens, want) {
		t.Fatalf("tokens = %v, want %v", tokens, want)
	}
}
