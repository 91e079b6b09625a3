// Package evidence 提供尽力而为的网络证据采集
// 两路抓取并发执行，任何网络/解析错误一律吸收为本路空结果，绝不向调用方传播
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/ashwinyue/market-pulse/internal/config"
	"golang.org/x/sync/errgroup"
)

// 单次响应体读取上限，外部数据不可信
const maxBodyBytes = 2 << 20

// 轻量标签提取：RSS 输出窄域使用正则而非完整解析器，结果数量有显式上界
var titleRe = regexp.MustCompile(`<title>(?:<!\[CDATA\[)?([^<]+?)(?:\]\]>)?</title>`)

// Discussion 论坛讨论条目
type Discussion struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Payload 证据采集结果（作为工具输出返回给助手）
type Payload struct {
	Summary     string       `json:"summary"`
	Discussions []Discussion `json:"reddit_discussions"`
	Articles    []string     `json:"news_articles"`
}

// Gatherer 网络证据采集器
type Gatherer struct {
	cfg    *config.SearchConfig
	client *http.Client
}

// NewGatherer 创建证据采集器
func NewGatherer(cfg *config.SearchConfig) *Gatherer {
	return &Gatherer{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Gather 并发抓取两路数据源并汇总
// 永不返回错误：失败的一路降级为空列表
func (g *Gatherer) Gather(ctx context.Context, query string) *Payload {
	var (
		discussions []Discussion
		articles    []string
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		discussions = g.searchReddit(ctx, query)
		return nil
	})
	eg.Go(func() error {
		articles = g.searchNews(ctx, query)
		return nil
	})
	_ = eg.Wait()

	if discussions == nil {
		discussions = []Discussion{}
	}
	if articles == nil {
		articles = []string{}
	}

	return &Payload{
		Summary: fmt.Sprintf("Found %d Reddit discussions and %d news articles",
			len(discussions), len(articles)),
		Discussions: discussions,
		Articles:    articles,
	}
}

// searchReddit 查询 Reddit 搜索接口，取前 maxResults 条（最多请求 5 条）
func (g *Gatherer) searchReddit(ctx context.Context, query string) []Discussion {
	endpoint := fmt.Sprintf("%s?q=%s&limit=5&sort=relevance", g.cfg.RedditURL, url.QueryEscape(query))
	body := g.fetch(ctx, endpoint)
	if body == nil {
		return nil
	}

	var parsed struct {
		Data struct {
			Children []struct {
				Data struct {
					Title     string `json:"title"`
					Permalink string `json:"permalink"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}

	results := make([]Discussion, 0, g.cfg.MaxResults)
	for _, child := range parsed.Data.Children {
		if len(results) >= g.cfg.MaxResults {
			break
		}
		if child.Data.Title == "" {
			continue
		}
		results = append(results, Discussion{
			Title: child.Data.Title,
			URL:   "https://reddit.com" + child.Data.Permalink,
		})
	}
	return results
}

// searchNews 查询新闻 RSS，提取条目标题
// 跳过首个 <title>（feed 自身标题），取之后 maxResults 条
func (g *Gatherer) searchNews(ctx context.Context, query string) []string {
	endpoint := fmt.Sprintf("%s?q=%s", g.cfg.NewsURL, url.QueryEscape(query))
	body := g.fetch(ctx, endpoint)
	if body == nil {
		return nil
	}

	matches := titleRe.FindAllStringSubmatch(string(body), g.cfg.MaxResults+1)
	if len(matches) <= 1 {
		return nil
	}

	titles := make([]string, 0, g.cfg.MaxResults)
	for _, m := range matches[1:] {
		titles = append(titles, m[1])
	}
	return titles
}

// fetch 执行一次 GET，任何错误返回 nil
func (g *Gatherer) fetch(ctx context.Context, endpoint string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.cfg.UserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil
	}
	return body
}
