// Package report 提供报告生成单元测试
package report

import (
	"strings"
	"testing"
	"time"

	"github.com/ashwinyue/market-pulse/internal/testutil"
)

// ========== Build 测试 ==========

func TestBuild(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

	body := Build("Nike sentiment", "People love the new Air Max line.", now)

	// 固定头部 + 查询 + 生成时间 + 原样回答
	assert.Contains(body, "MARKET RESEARCH REPORT")
	assert.Contains(body, "Query: Nike sentiment")
	assert.Contains(body, now.Format(time.RFC1123))
	assert.Contains(body, "People love the new Air Max line.")
}

func TestBuildPreservesAnswerVerbatim(t *testing.T) {
	answer := "Line one.\n\n- bullet\n- **bold markdown stays as-is**\n"
	body := Build("q", answer, time.Now())
	if !strings.Contains(body, answer) {
		t.Error("answer must appear verbatim in the report body")
	}
}

func TestBuildIdenticalExceptTimestamp(t *testing.T) {
	// 两次生成仅生成时间行不同
	t1 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC)

	a := strings.Split(Build("q", "a", t1), "\n")
	b := strings.Split(Build("q", "a", t2), "\n")
	if len(a) != len(b) {
		t.Fatalf("line counts differ: %d vs %d", len(a), len(b))
	}

	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
			if !strings.HasPrefix(a[i], "Generated:") {
				t.Errorf("unexpected differing line: %q vs %q", a[i], b[i])
			}
		}
	}
	if diff != 1 {
		t.Errorf("differing lines = %d, want 1 (the timestamp)", diff)
	}
}

// ========== Filename 测试 ==========

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "whitespace collapsed to underscores",
			query:    "What are people saying about Nike?",
			expected: "market_analysis_what_are_people_saying_about_nike.txt",
		},
		{
			name:     "multiple spaces",
			query:    "Nike   vs    Adidas",
			expected: "market_analysis_nike_vs_adidas.txt",
		},
		{
			name:     "empty query",
			query:    "   ",
			expected: "market_analysis_analysis.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.query); got != tt.expected {
				t.Errorf("Filename(%q) = %q, want %q", tt.query, got, tt.expected)
			}
		})
	}
}

func TestFilenameBounded(t *testing.T) {
	long := strings.Repeat("very long query ", 20)
	name := Filename(long)
	if len(name) > len("market_analysis_")+50+len(".txt") {
		t.Errorf("Filename() too long: %d chars", len(name))
	}
	if !strings.HasSuffix(name, ".txt") {
		t.Errorf("Filename() = %q, want .txt suffix", name)
	}
}
