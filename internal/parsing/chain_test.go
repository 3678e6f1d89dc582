package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"jobflow-backend/internal/llm"
)

// stubClient scripts each tier's behavior.
type stubClient struct {
	functionResult json.RawMessage
	functionErr    error
	jsonResult     string
	jsonErr        error
	textResult     string
	textErr        error

	functionCalls int
	jsonCalls     int
	textCalls     int
}

func (s *stubClient) CallFunction(ctx context.Context, system, user string, fn llm.FunctionSchema) (json.RawMessage, error) {
	s.functionCalls++
	return s.functionResult, s.functionErr
}

func (s *stubClient) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	s.jsonCalls++
	return s.jsonResult, s.jsonErr
}

func (s *stubClient) CompleteText(ctx context.Context, system, user string) (string, error) {
	s.textCalls++
	return s.textResult, s.textErr
}

func TestParseResumeNilClientIsLocalOnly(t *testing.T) {
	result, err := ParseResume(context.Background(), "姓名：张三 python", nil)
	if err != nil {
		t.Fatalf("ParseResume: %v", err)
	}
	if result.Source != "local" {
		t.Fatalf("source = %q, want local", result.Source)
	}
	if result.Fields.Name != "张三" {
		t.Fatalf("name = %q, want 张三", result.Fields.Name)
	}
	if result.RawText != "姓名：张三 python" {
		t.Fatalf("raw text not preserved: %q", result.RawText)
	}
}

func TestParseResumeTierASuccess(t *testing.T) {
	client := &stubClient{
		functionResult: json.RawMessage(`{"name":"张三丰","skills":["python","golang"]}`),
	}

	result, err := ParseResume(context.Background(), "姓名：张三 email: zhang@x.com", client)
	if err != nil {
		t.Fatalf("ParseResume: %v", err)
	}
	if result.Source != "function_call" {
		t.Fatalf("source = %q, want function_call", result.Source)
	}
	if result.Fields.Name != "张三丰" {
		t.Errorf("remote name should win, got %q", result.Fields.Name)
	}
	if result.Fields.Email != "zhang@x.com" {
		t.Errorf("local email should survive empty remote, got %q", result.Fields.Email)
	}
	if client.jsonCalls != 0 || client.textCalls != 0 {
		t.Errorf("later tiers must not run after success: json=%d text=%d", client.jsonCalls, client.textCalls)
	}
}

func TestParseResumeFallsThroughToTierB(t *testing.T) {
	client := &stubClient{
		functionErr: llm.ErrNoFunctionCall,
		jsonResult:  `{"phone":"13812345678"}`,
	}

	result, err := ParseResume(context.Background(), "plain resume", client)
	if err != nil {
		t.Fatalf("ParseResume: %v", err)
	}
	if result.Source != "json_mode" {
		t.Fatalf("source = %q, want json_mode", result.Source)
	}
	if result.Fields.Phone != "13812345678" {
		t.Fatalf("phone = %q", result.Fields.Phone)
	}
	if client.functionCalls != 1 || client.jsonCalls != 1 || client.textCalls != 0 {
		t.Fatalf("tier calls = %d/%d/%d", client.functionCalls, client.jsonCalls, client.textCalls)
	}
}

func TestParseResumeTierCStripsCodeFences(t *testing.T) {
	client := &stubClient{
		functionErr: errors.New("transport down"),
		jsonErr:     errors.New("json mode unsupported"),
		textResult:  "```json\n{\"name\":\"王五\"}\n```",
	}

	result, err := ParseResume(context.Background(), "text", client)
	if err != nil {
		t.Fatalf("ParseResume: %v", err)
	}
	if result.Source != "free_text" {
		t.Fatalf("source = %q, want free_text", result.Source)
	}
	if result.Fields.Name != "王五" {
		t.Fatalf("name = %q, want 王五", result.Fields.Name)
	}
}

func TestParseResumeAllTiersFailKeepsLocalFields(t *testing.T) {
	client := &stubClient{
		functionErr: errors.New("boom"),
		jsonErr:     errors.New("boom"),
		textResult:  "sorry, I cannot help with that",
	}

	result, err := ParseResume(context.Background(), "姓名：张三 python", client)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
	if result.Source != "local" {
		t.Fatalf("source = %q, want local", result.Source)
	}
	if result.Fields.Name != "张三" {
		t.Fatalf("local fields must survive total failure, got %+v", result.Fields)
	}
}

func TestParseResumeRemoteNeverDegradesLocalValue(t *testing.T) {
	client := &stubClient{
		functionResult: json.RawMessage(`{"skills":[]}`),
	}

	result, err := ParseResume(context.Background(), "姓名：张三 python java", client)
	if err != nil {
		t.Fatalf("ParseResume: %v", err)
	}
	if !reflect.DeepEqual(result.Fields.Skills, []string{"python", "java"}) {
		t.Fatalf("empty remote skills must not override local, got %v", result.Fields.Skills)
	}
	if result.Fields.Name != "张三" {
		t.Fatalf("name = %q", result.Fields.Name)
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tc := range cases {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
