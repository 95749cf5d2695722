package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/compliance"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/config"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/eval"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/logger"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market"
	mfactory "github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market/factory"
	dm "github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/quant"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/search"
	sfactory "github.com/iWorld-y/stock_radar/app/stock_radar/pkg/search/factory"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/storage"
)

// Engine 核心处理引擎
type Engine struct {
	cfg       *config.Config
	store     *storage.Storage
	chatModel model.ChatModel
	provider  market.Provider
	searcher  search.Searcher
	checker   *compliance.Checker
	limiter   *rate.Limiter
}

// NewEngine 创建引擎实例
func NewEngine(cfg *config.Config, store *storage.Storage) (*Engine, error) {
	ctx := context.Background()

	// 初始化 LLM
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}

	// 初始化限流器
	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	burst := cfg.Concurrency.QPS
	limiter := rate.NewLimiter(limit, burst)

	// 初始化行情数据源
	provider, err := mfactory.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("行情数据源初始化失败: %w", err)
	}

	// 初始化搜索客户端
	searcher, err := sfactory.NewSearcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}

	return &Engine{
		cfg:       cfg,
		store:     store,
		chatModel: chatModel,
		provider:  provider,
		searcher:  searcher,
		checker:   compliance.NewChecker(cfg.Compliance.Disclaimer, cfg.Compliance.ForbiddenTerms),
		limiter:   limiter,
	}, nil
}

// RunOptions 运行选项
type RunOptions struct {
	UserID           int
	Codes            []string
	Interval         string
	Persona          string
	ProgressCallback func(status string, progress int)
}

// RunResult 一次雷达任务的产出
type RunResult struct {
	RunID        int
	Reports      []dm.StockReport
	DeepAnalysis *dm.DeepAnalysisResult
}

// Run 执行一次雷达任务：对每只股票拉行情、算信号、搜新闻、生成报告并评估入库
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	logger.Log.Infof("开始为用户 [%d] 生成报告，覆盖 %d 只股票", opts.UserID, len(opts.Codes))
	if opts.ProgressCallback != nil {
		opts.ProgressCallback("starting", 0)
	}

	if len(opts.Codes) == 0 {
		return nil, fmt.Errorf("no stock codes provided")
	}

	// 创建本次运行记录
	var runID int
	if e.store != nil {
		rid, err := e.store.CreateRun()
		if err != nil {
			logger.Log.Errorf("无法创建运行记录: %v", err)
		} else {
			runID = rid
		}
	}

	var reports []dm.StockReport
	var mu sync.Mutex
	var wg sync.WaitGroup

	total := len(opts.Codes)
	completed := 0

	for _, code := range opts.Codes {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()

			report, err := e.processStock(ctx, code, opts.Interval)
			if err != nil {
				logger.Log.Errorf("处理股票失败 [%s]: %v", code, err)
				return
			}

			// 保存到数据库
			if e.store != nil && runID > 0 {
				if err := e.store.SaveStockReport(runID, report); err != nil {
					logger.Log.Errorf("保存股票报告失败 [%s]: %v", code, err)
				}
			}

			mu.Lock()
			reports = append(reports, *report)
			completed++
			progress := 10 + int(float64(completed)/float64(total)*70) // 10% -> 80%
			if opts.ProgressCallback != nil {
				opts.ProgressCallback(fmt.Sprintf("processed stock: %s", code), progress)
			}
			mu.Unlock()
		}(code)
	}

	wg.Wait()

	if len(reports) == 0 {
		return nil, fmt.Errorf("no stock reports generated")
	}

	// 排序：按关注度评分从高到低
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Score > reports[j].Score
	})

	// 跨股票深度解读
	if opts.ProgressCallback != nil {
		opts.ProgressCallback("generating deep analysis", 85)
	}

	result := &RunResult{RunID: runID, Reports: reports}

	if opts.Persona != "" {
		var sb strings.Builder
		for _, r := range reports {
			fmt.Fprintf(&sb, "## %s (%s) 评分: %d\n", r.Name, r.Code, r.Score)
			fmt.Fprintf(&sb, "### 综述\n%s\n", r.Overview)
			fmt.Fprintf(&sb, "### 技术面\n%s\n", r.TechnicalRead)
			fmt.Fprintf(&sb, "### 风险\n%s\n\n", r.Risks)
		}

		analysis, err := e.deepInterpretPortfolio(ctx, sb.String(), opts.Persona)
		if err != nil {
			logger.Log.Errorf("深度解读失败: %v", err)
		} else {
			// 组合级建议与个股报告走同一道合规关口
			if cr := e.applyCompliance(analysis); !cr.Passed {
				logger.Log.Warnf("组合深度解读存在违规表述: %d 处", len(cr.Violations))
			}
			result.DeepAnalysis = analysis
			if e.store != nil && runID > 0 {
				if err := e.store.SaveDeepAnalysis(runID, opts.UserID, analysis); err != nil {
					logger.Log.Errorf("保存深度解读失败: %v", err)
				}
				if analysis.Title != "" {
					e.store.UpdateRunTitle(runID, analysis.Title)
				}
			}
		}
	}

	if opts.ProgressCallback != nil {
		opts.ProgressCallback("completed", 100)
	}
	return result, nil
}

// processStock 单只股票的完整流水线
func (e *Engine) processStock(ctx context.Context, code, interval string) (*dm.StockReport, error) {
	symbol := market.NormalizeSymbol(code)
	if symbol == "" {
		return nil, fmt.Errorf("empty stock code")
	}

	// 1. 拉取行情并计算指标与信号
	startDate, endDate, _ := market.CalcDateRange(interval)
	series, err := e.provider.Daily(ctx, &market.Request{
		Symbol:    symbol,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return nil, fmt.Errorf("拉取行情失败: %w", err)
	}
	if len(series.Candles) == 0 {
		return nil, fmt.Errorf("no candles for %s", symbol)
	}

	rows := quant.ComputeFeatures(series.Candles)
	signals := quant.DetectSignals(rows)
	logger.Log.Infof("股票 [%s] %s: %d 根日线, %d 个信号", symbol, series.Name, len(rows), len(signals))

	// 2. 检索新闻作为证据池 (最近 7 天)
	now := time.Now()
	req := &search.Request{
		Query:      search.StockQuery(symbol, series.Name),
		Topic:      "news",
		MaxResults: 20,
		StartDate:  now.AddDate(0, 0, -7).Format(time.DateOnly),
		EndDate:    now.Format(time.DateOnly),
	}

	var articles []dm.NewsArticle
	resp, err := e.searcher.Search(ctx, req)
	if err != nil {
		// 检索失败不终止流水线，报告退化为纯技术面
		logger.Log.Warnf("搜索新闻失败 [%s]: %v", symbol, err)
	} else {
		articles = collectArticles(symbol, resp)
	}
	if len(articles) == 0 {
		logger.Log.Warnf("股票 [%s] 未找到有效新闻，报告将缺少消息面依据", symbol)
	}

	// 3. 生成报告
	report, err := e.generateStockReport(ctx, symbol, series.Name, rows, signals, articles)
	if err != nil {
		return nil, fmt.Errorf("生成报告失败: %w", err)
	}
	report.Code = symbol
	report.Name = series.Name
	report.Signals = signals
	report.Articles = articles

	// 4. 合规检查 + 免责声明
	full := report.Overview + "\n" + report.TechnicalRead + "\n" + report.Risks
	cr := e.checker.Check(full)
	var added bool
	report.Risks, added = e.checker.EnsureDisclaimer(report.Risks)
	cr.DisclaimerAdded = added
	report.Compliance = &cr
	if !cr.Passed {
		logger.Log.Warnf("股票 [%s] 报告存在违规表述: %d 处", symbol, len(cr.Violations))
	}

	// 5. 可信度评估
	er := eval.Evaluate(report, len(articles))
	report.Eval = &er
	logger.Log.Infof("股票 [%s] 报告完成 (Score: %d, Grade: %s)", symbol, report.Score, er.Grade)

	return report, nil
}

// collectArticles 过滤并抓取正文，最多保留 6 篇
func collectArticles(symbol string, resp *search.Response) []dm.NewsArticle {
	var articles []dm.NewsArticle
	for _, item := range resp.Results {
		content := item.Content
		if len(content) < 500 {
			fetched, err := fetchAndCleanContent(item.URL)
			if err == nil && len(fetched) > len(content) {
				content = fetched
			}
		}
		if len(content) > 5000 {
			content = content[:5000]
		}
		if len(content) > 100 {
			articles = append(articles, dm.NewsArticle{
				Title:   item.Title,
				Link:    item.URL,
				Source:  symbol,
				PubDate: item.PublishedDate,
				Content: content,
			})
		}
		if len(articles) >= 6 {
			break
		}
	}
	return articles
}

// FetchFeatures 纯数据通路：规范化代码、计算区间、拉行情、算指标。
// 始终返回一个响应信封，符合严格 JSON 约束。
func (e *Engine) FetchFeatures(ctx context.Context, code, interval string) *dm.StockDataResponse {
	return FetchFeatures(ctx, e.provider, code, interval)
}

// FetchFeatures 与 Engine.FetchFeatures 相同，供未初始化完整引擎的调用方使用
func FetchFeatures(ctx context.Context, provider market.Provider, code, interval string) *dm.StockDataResponse {
	startDate, endDate, normalized := market.CalcDateRange(interval)
	symbol := market.NormalizeSymbol(code)

	meta := dm.Meta{
		StockCode: code,
		Symbol:    symbol,
		StartDate: startDate,
		EndDate:   endDate,
		Interval:  normalized,
	}

	if symbol == "" {
		return &dm.StockDataResponse{
			Success: false,
			Message: "Error: stock_code cannot be empty.",
			Meta:    meta,
			Data:    []dm.FeatureRow{},
		}
	}

	series, err := provider.Daily(ctx, &market.Request{
		Symbol:    symbol,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		logger.Log.Errorf("拉取行情失败 [%s]: %v", symbol, err)
		series = &market.Series{Symbol: symbol}
	}

	if len(series.Candles) == 0 {
		return &dm.StockDataResponse{
			Success: false,
			Message: fmt.Sprintf("No data found for stock %s.", symbol),
			Meta:    meta,
			Data:    []dm.FeatureRow{},
		}
	}

	rows := quant.ComputeFeatures(series.Candles)
	meta.Rows = len(rows)
	return &dm.StockDataResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully retrieved stock data for %s", symbol),
		Meta:    meta,
		Data:    rows,
	}
}

// fetchAndCleanContent 抓取 URL 并提取核心文本
func fetchAndCleanContent(url string) (string, error) {
	article, err := readability.FromURL(url, 30*time.Second)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

// generateStockReport 让 LLM 生成单只股票的结构化报告
func (e *Engine) generateStockReport(ctx context.Context, symbol, name string, rows []dm.FeatureRow, signals []dm.Signal, articles []dm.NewsArticle) (*dm.StockReport, error) {
	prompt := buildStockPrompt(symbol, name, rows, signals, articles, e.checker.PromptClause())

	maxRetries := 3
	baseDelay := 2 * time.Second
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: "你是一个 JSON 生成器。请只输出 JSON 字符串。"},
			{Role: schema.User, Content: prompt},
		}

		resp, err := e.chatModel.Generate(ctx, messages)
		if err != nil {
			if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "too many requests") {
				lastErr = err
				if i < maxRetries {
					time.Sleep(baseDelay * time.Duration(1<<i))
					continue
				}
			}
			return nil, err
		}

		var report dm.StockReport
		if err := json.Unmarshal([]byte(CleanJSON(resp.Content)), &report); err != nil {
			lastErr = err
			if i < maxRetries {
				continue
			}
			return nil, fmt.Errorf("json unmarshal: %w", err)
		}
		return &report, nil
	}
	return nil, lastErr
}

// deepInterpretPortfolio 跨股票组合级深度解读
func (e *Engine) deepInterpretPortfolio(ctx context.Context, content string, userPersona string) (*dm.DeepAnalysisResult, error) {
	promptTpl := `Role: 资深证券分析师与资产配置顾问
Context
用户画像：%s
输入数据：这是一份多只股票的当日分析报告汇总。
核心诉求：请跨个股交叉分析，识别组合层面的共性趋势，并给出研究方向建议。

%s
Instructions
请严格按照 JSON 格式输出：
{
    "title": "根据今日所有个股内容生成一个吸引人的简短标题（20字以内）",
    "macro_trends": "Markdown格式的组合层面趋势洞察...",
    "opportunities": "Markdown格式的值得关注的方向...",
    "risks": "Markdown格式的风险预警...",
    "action_guides": ["研究建议1", "研究建议2", "研究建议3"]
}

输入的个股报告数据：
%s`

	maxRetries := 3
	baseDelay := 2 * time.Second
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: "你是一个 JSON 生成器。"},
			{Role: schema.User, Content: fmt.Sprintf(promptTpl, userPersona, e.checker.PromptClause(), content)},
		}

		resp, err := e.chatModel.Generate(ctx, messages)
		if err != nil {
			if strings.Contains(err.Error(), "429") {
				time.Sleep(baseDelay * time.Duration(1<<i))
				continue
			}
			return nil, err
		}

		var result dm.DeepAnalysisResult
		if err := json.Unmarshal([]byte(CleanJSON(resp.Content)), &result); err != nil {
			lastErr = err
			continue
		}
		return &result, nil
	}
	return nil, fmt.Errorf("failed after retries: %v", lastErr)
}

// applyCompliance 扫描组合深度解读全文并确保风险段以免责声明收尾
func (e *Engine) applyCompliance(analysis *dm.DeepAnalysisResult) dm.ComplianceResult {
	full := strings.Join([]string{
		analysis.MacroTrends,
		analysis.Opportunities,
		analysis.Risks,
		strings.Join(analysis.ActionGuides, "\n"),
	}, "\n")
	cr := e.checker.Check(full)
	analysis.Risks, _ = e.checker.EnsureDisclaimer(analysis.Risks)
	return cr
}

// CleanJSON 去掉模型输出里常见的 markdown 代码块包裹
func CleanJSON(content string) string {
	cleanContent := strings.TrimSpace(content)
	cleanContent = strings.TrimPrefix(cleanContent, "```json")
	cleanContent = strings.TrimPrefix(cleanContent, "```")
	cleanContent = strings.TrimSuffix(cleanContent, "```")
	return strings.TrimSpace(cleanContent)
}
