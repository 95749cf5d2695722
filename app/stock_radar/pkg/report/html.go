package report

import (
	"html/template"
	"io"
	"os"
	"path/filepath"

	dm "github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

// HTMLData 用于模板渲染的数据
type HTMLData struct {
	Date         string
	Count        int // 覆盖股票数
	Reports      []dm.StockReport
	DeepAnalysis *dm.DeepAnalysisResult
}

const htmlTpl = `
<!DOCTYPE html>
<html lang="zh-CN">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>股票雷达 | 每日分析</title>
    <script src="https://cdn.jsdelivr.net/npm/marked/marked.min.js"></script>
    <style>
        :root {
            --primary-color: #2563eb;
            --bg-color: #f8fafc;
            --card-bg: #ffffff;
            --text-main: #1e293b;
            --text-secondary: #64748b;
            --border-color: #e2e8f0;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            background-color: var(--bg-color);
            color: var(--text-main);
            line-height: 1.6;
            margin: 0;
            padding: 20px;
        }
        .container { max-width: 900px; margin: 0 auto; }
        header { text-align: center; margin-bottom: 40px; padding: 20px 0; }
        h1 { font-size: 2.5rem; margin: 0 0 10px 0; }
        .date-info { color: var(--text-secondary); }

        .deep-analysis {
            background: #fff;
            padding: 24px;
            border-radius: 12px;
            margin-bottom: 40px;
            box-shadow: 0 4px 6px -1px rgba(0,0,0,0.1);
            border: 1px solid #e2e8f0;
        }
        .analysis-header { font-size: 1.5rem; font-weight: bold; margin-bottom: 20px; border-bottom: 2px solid var(--primary-color); padding-bottom: 10px; display: inline-block; }
        .analysis-section { background: #f8fafc; padding: 20px; border-radius: 8px; border-left: 4px solid #cbd5e1; margin-bottom: 16px; }
        .section-trends { border-left-color: #2563eb; background: #eff6ff; }
        .section-opps { border-left-color: #22c55e; background: #f0fdf4; }
        .section-risks { border-left-color: #ef4444; background: #fef2f2; }
        .analysis-section h3 { margin-top: 0; color: #334155; }

        .stock-card {
            background: var(--card-bg);
            border-radius: 12px;
            padding: 24px;
            margin-bottom: 30px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.05);
            border: 1px solid var(--border-color);
        }
        .stock-header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 20px;
            border-bottom: 1px solid #f1f5f9;
            padding-bottom: 15px;
        }
        .stock-title { font-size: 1.8rem; font-weight: 800; color: #0f172a; }
        .stock-score {
            background: #fee2e2; color: #991b1b;
            padding: 4px 12px; border-radius: 20px; font-weight: bold;
        }
        .score-high { background: #dcfce7; color: #166534; }
        .grade-badge { margin-left: 8px; font-size: 0.8em; color: #64748b; }

        .signals ul { padding-left: 20px; color: #334155; }
        .signals li { margin-bottom: 8px; }
        .bullish { color: #166534; }
        .bearish { color: #991b1b; }

        .references {
            margin-top: 20px;
            padding-top: 15px;
            border-top: 1px dashed #e2e8f0;
            font-size: 0.9rem;
        }
        .ref-title { font-weight: bold; color: #64748b; margin-bottom: 10px; }
        .ref-list { list-style: none; padding: 0; }
        .ref-list li { margin-bottom: 6px; }
        .ref-list a { color: var(--primary-color); text-decoration: none; }
        .ref-list a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>📡 股票雷达日报</h1>
            <div class="date-info">{{ .Date }} • 覆盖 {{ .Count }} 只股票</div>
        </header>

        {{if .DeepAnalysis}}
        <div class="deep-analysis">
            <div class="analysis-header">🧠 {{if .DeepAnalysis.Title}}{{.DeepAnalysis.Title}}{{else}}组合深度解读{{end}}</div>
            <div class="analysis-section section-trends">
                <h3>🔍 组合趋势</h3>
                <div class="md">{{.DeepAnalysis.MacroTrends}}</div>
            </div>
            <div class="analysis-section section-opps">
                <h3>🚀 关注方向</h3>
                <div class="md">{{.DeepAnalysis.Opportunities}}</div>
            </div>
            <div class="analysis-section section-risks">
                <h3>🛡️ 风险预警</h3>
                <div class="md">{{.DeepAnalysis.Risks}}</div>
            </div>
            <div class="analysis-section">
                <h3>💡 研究建议</h3>
                <ul>
                    {{range .DeepAnalysis.ActionGuides}}
                    <li>{{.}}</li>
                    {{end}}
                </ul>
            </div>
        </div>
        {{end}}

        {{range .Reports}}
        <div class="stock-card">
            <div class="stock-header">
                <div class="stock-title">{{.Name}} <span style="color:#64748b;font-size:0.7em">{{.Code}}</span></div>
                <div class="stock-score {{if ge .Score 7}}score-high{{end}}">关注度: {{.Score}}/10
                    {{if .Eval}}<span class="grade-badge">可信度 {{.Eval.Grade}}</span>{{end}}
                </div>
            </div>

            <h4>📝 综述</h4>
            <div class="md">{{.Overview}}</div>

            <h4>📈 技术面</h4>
            <div class="md">{{.TechnicalRead}}</div>

            <div class="signals">
                <h4>🔔 信号解读</h4>
                <ul>
                    {{range .SignalReads}}
                    <li><b>{{.Signal}}</b>: {{.Explanation}}</li>
                    {{end}}
                </ul>
            </div>

            <h4>⚠️ 风险</h4>
            <div class="md">{{.Risks}}</div>

            <div class="references">
                <div class="ref-title">🔗 新闻证据</div>
                <ul class="ref-list">
                    {{range $i, $a := .Articles}}
                    <li>[{{inc $i}}] <a href="{{$a.Link}}" target="_blank">{{$a.Title}}</a> <span style="color:#94a3b8; font-size: 0.8em">({{ $a.PubDate }})</span></li>
                    {{end}}
                </ul>
            </div>
        </div>
        {{end}}
    </div>

    <script>
        // 解析 Markdown
        document.addEventListener('DOMContentLoaded', function() {
            document.querySelectorAll('.md').forEach(el => {
                el.innerHTML = marked.parse(el.textContent);
            });
        });
    </script>
</body>
</html>
`

// Render 渲染 HTML 到 writer
func Render(w io.Writer, data HTMLData) error {
	t, err := template.New("report").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(htmlTpl)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}

// WriteFile 渲染 HTML 到指定文件，目录不存在时自动创建
func WriteFile(path string, data HTMLData) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return Render(f, data)
}
