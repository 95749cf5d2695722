package search

import (
	"context"
	"fmt"
	"strings"
)

// Searcher 定义通用的新闻搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query             string
	Topic             string // "news" or "general"
	MaxResults        int
	IncludeRawContent bool
	StartDate         string // Format: YYYY-MM-DD
	EndDate           string // Format: YYYY-MM-DD
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果
type Result struct {
	Title         string
	URL           string
	Content       string
	RawContent    string
	Score         float64
	PublishedDate string
}

// StockQuery 构造个股新闻检索词。股票名称可能为空（数据源未返回时），
// 此时仅用代码检索。
func StockQuery(code, name string) string {
	parts := []string{code}
	if name != "" {
		parts = append([]string{name}, parts...)
	}
	return fmt.Sprintf("%s 股票 公告 新闻", strings.Join(parts, " "))
}
