// Package report 生成分析报告文本及下载文件名
package report

import (
	"regexp"
	"strings"
	"time"
)

const header = "MARKET RESEARCH REPORT"

// 文件名中的非法字符与空白
var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	unsafeRe     = regexp.MustCompile(`[^a-z0-9_\-]`)
)

// Build 生成纯文本报告
// 固定头部 + 查询 + 生成时间 + 原样回答；不做 PDF 编码
func Build(query, answer string, now time.Time) string {
	var b strings.Builder
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("=", len(header)) + "\n\n")
	b.WriteString("Query: " + query + "\n")
	b.WriteString("Generated: " + now.Format(time.RFC1123) + "\n\n")
	b.WriteString(strings.Repeat("-", 40) + "\n\n")
	b.WriteString(answer + "\n")
	return b.String()
}

// Filename 由查询推导下载文件名：空白折叠为下划线，限制长度
func Filename(query string) string {
	name := strings.ToLower(strings.TrimSpace(query))
	name = whitespaceRe.ReplaceAllString(name, "_")
	name = unsafeRe.ReplaceAllString(name, "")
	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		name = "analysis"
	}
	return "market_analysis_" + name + ".txt"
}
