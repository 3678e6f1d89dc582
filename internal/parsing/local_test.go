package parsing

import (
	"reflect"
	"testing"
)

func TestExtractLocalBasicScenario(t *testing.T) {
	fields := ExtractLocal("姓名：张三 email: zhang@x.com 技能 python java")

	if fields.Name != "张三" {
		t.Errorf("name = %q, want 张三", fields.Name)
	}
	if fields.Email != "zhang@x.com" {
		t.Errorf("email = %q, want zhang@x.com", fields.Email)
	}
	if !reflect.DeepEqual(fields.Skills, []string{"python", "java"}) {
		t.Errorf("skills = %v, want [python java]", fields.Skills)
	}
}

func TestExtractLocalNeverFails(t *testing.T) {
	for _, text := range []string{"", "no structured data here", "   \n\t "} {
		fields := ExtractLocal(text)
		if fields.Name != "" || fields.Email != "" || fields.Phone != "" {
			t.Errorf("expected empty scalar fields for %q, got %+v", text, fields)
		}
	}
}

func TestExtractLocalPhone(t *testing.T) {
	cases := []struct {
		text, want string
	}{
		{"电话 13812345678", "13812345678"},
		{"tel: +86 13812345678", "+86 13812345678"},
		{"tel: 12345", ""},
	}
	for _, tc := range cases {
		if got := ExtractLocal(tc.text).Phone; got != tc.want {
			t.Errorf("phone from %q = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestExtractLocalSkillsKeepVocabularyOrder(t *testing.T) {
	fields := ExtractLocal("擅长 docker 和 Python，了解 SQL")
	want := []string{"python", "sql", "docker"}
	if !reflect.DeepEqual(fields.Skills, want) {
		t.Fatalf("skills = %v, want %v", fields.Skills, want)
	}
}

func TestExtractLocalEducationOrderedHighestFirst(t *testing.T) {
	fields := ExtractLocal("本科毕业后攻读硕士学位")
	want := []string{"硕士", "本科"}
	if !reflect.DeepEqual(fields.Education, want) {
		t.Fatalf("education = %v, want %v", fields.Education, want)
	}
}

func TestExtractLocalKeywordsAreUnionOfSkillsAndEducation(t *testing.T) {
	fields := ExtractLocal("姓名：李四 python 本科")
	seen := make(map[string]int)
	for _, kw := range fields.Keywords {
		seen[kw]++
	}
	for _, kw := range append(append([]string{}, fields.Skills...), fields.Education...) {
		if seen[kw] != 1 {
			t.Errorf("keyword %q count = %d, want 1", kw, seen[kw])
		}
	}
}

func TestNewLocalExtractorWithPhonePattern(t *testing.T) {
	ext, err := NewLocalExtractorWithPhonePattern(`\d{3}-\d{4}`)
	if err != nil {
		t.Fatalf("NewLocalExtractorWithPhonePattern: %v", err)
	}
	if got := ext.Extract("call 555-1234").Phone; got != "555-1234" {
		t.Fatalf("phone = %q, want 555-1234", got)
	}

	if _, err := NewLocalExtractorWithPhonePattern(`(`); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
