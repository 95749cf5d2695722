package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/config"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

type Storage struct {
	db *sql.DB
}

func NewStorage(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// NewStorageWithDB 直接封装现成连接，测试用
func NewStorageWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS report_runs (
			id SERIAL PRIMARY KEY,
			title TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS stock_reports (
			id SERIAL PRIMARY KEY,
			run_id INTEGER REFERENCES report_runs(id),
			code TEXT NOT NULL,
			name TEXT,
			overview TEXT,
			technical_read TEXT,
			risks TEXT,
			score INTEGER,
			compliance_passed BOOLEAN,
			grade TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS signals (
			id SERIAL PRIMARY KEY,
			report_id INTEGER REFERENCES stock_reports(id),
			name TEXT,
			direction TEXT,
			triggered_at TEXT,
			note TEXT,
			evidence TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS signal_reads (
			id SERIAL PRIMARY KEY,
			report_id INTEGER REFERENCES stock_reports(id),
			signal TEXT,
			explanation TEXT,
			citations TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS citations (
			id SERIAL PRIMARY KEY,
			report_id INTEGER REFERENCES stock_reports(id),
			article_idx INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			id SERIAL PRIMARY KEY,
			report_id INTEGER REFERENCES stock_reports(id),
			title TEXT,
			link TEXT,
			source TEXT,
			pub_date TEXT,
			content TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS eval_results (
			id SERIAL PRIMARY KEY,
			report_id INTEGER REFERENCES stock_reports(id),
			citation_valid DOUBLE PRECISION,
			citation_coverage DOUBLE PRECISION,
			uncited_signal_ratio DOUBLE PRECISION,
			compliance_passed BOOLEAN,
			grade TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS deep_analysis_results (
			id SERIAL PRIMARY KEY,
			run_id INTEGER REFERENCES report_runs(id),
			user_id INTEGER,
			macro_trends TEXT,
			opportunities TEXT,
			risks TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS action_guides (
			id SERIAL PRIMARY KEY,
			deep_analysis_id INTEGER REFERENCES deep_analysis_results(id),
			guide_content TEXT
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}

// CreateRun 创建一次运行记录
func (s *Storage) CreateRun() (int, error) {
	var id int
	err := s.db.QueryRow(`INSERT INTO report_runs DEFAULT VALUES RETURNING id`).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateRunTitle 回填运行标题（来自深度解读）
func (s *Storage) UpdateRunTitle(runID int, title string) error {
	_, err := s.db.Exec(`UPDATE report_runs SET title = $1 WHERE id = $2`, title, runID)
	return err
}

// SaveStockReport 在一个事务里保存报告及其信号、证据、评估
func (s *Storage) SaveStockReport(runID int, report *model.StockReport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	compliancePassed := report.Compliance == nil || report.Compliance.Passed
	grade := ""
	if report.Eval != nil {
		grade = report.Eval.Grade
	}

	var reportID int
	err = tx.QueryRow(`
		INSERT INTO stock_reports (run_id, code, name, overview, technical_read, risks, score, compliance_passed, grade)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		runID, report.Code, report.Name, report.Overview, report.TechnicalRead,
		report.Risks, report.Score, compliancePassed, grade).Scan(&reportID)
	if err != nil {
		return fmt.Errorf("failed to insert stock report: %w", err)
	}

	for _, sig := range report.Signals {
		evidence, err := json.Marshal(sig.Evidence)
		if err != nil {
			return fmt.Errorf("failed to marshal signal evidence: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO signals (report_id, name, direction, triggered_at, note, evidence)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			reportID, sig.Name, sig.Direction, sig.TriggeredAt, sig.Note, string(evidence))
		if err != nil {
			return fmt.Errorf("failed to insert signal: %w", err)
		}
	}

	for _, sr := range report.SignalReads {
		citations, err := json.Marshal(sr.Citations)
		if err != nil {
			return fmt.Errorf("failed to marshal signal read citations: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO signal_reads (report_id, signal, explanation, citations)
			VALUES ($1, $2, $3, $4)`,
			reportID, sr.Signal, sr.Explanation, string(citations))
		if err != nil {
			return fmt.Errorf("failed to insert signal read: %w", err)
		}
	}

	for _, idx := range report.Citations {
		_, err = tx.Exec(`
			INSERT INTO citations (report_id, article_idx)
			VALUES ($1, $2)`,
			reportID, idx)
		if err != nil {
			return fmt.Errorf("failed to insert citation: %w", err)
		}
	}

	for _, article := range report.Articles {
		_, err = tx.Exec(`
			INSERT INTO articles (report_id, title, link, source, pub_date, content)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			reportID, article.Title, article.Link, article.Source, article.PubDate,
			sanitizeText(article.Content))
		if err != nil {
			return fmt.Errorf("failed to insert article: %w", err)
		}
	}

	if report.Eval != nil {
		_, err = tx.Exec(`
			INSERT INTO eval_results (report_id, citation_valid, citation_coverage, uncited_signal_ratio, compliance_passed, grade)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			reportID, report.Eval.CitationValid, report.Eval.CitationCoverage,
			report.Eval.UncitedSignalRatio, report.Eval.CompliancePassed, report.Eval.Grade)
		if err != nil {
			return fmt.Errorf("failed to insert eval result: %w", err)
		}
	}

	return tx.Commit()
}

// SaveDeepAnalysis 保存跨股票深度解读
func (s *Storage) SaveDeepAnalysis(runID, userID int, analysis *model.DeepAnalysisResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var analysisID int
	err = tx.QueryRow(`
		INSERT INTO deep_analysis_results (run_id, user_id, macro_trends, opportunities, risks)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		runID, userID, analysis.MacroTrends, analysis.Opportunities, analysis.Risks).Scan(&analysisID)
	if err != nil {
		return fmt.Errorf("failed to insert deep analysis: %w", err)
	}

	for _, guide := range analysis.ActionGuides {
		_, err = tx.Exec(`
			INSERT INTO action_guides (deep_analysis_id, guide_content)
			VALUES ($1, $2)`,
			analysisID, guide)
		if err != nil {
			return fmt.Errorf("failed to insert action guide: %w", err)
		}
	}

	return tx.Commit()
}

// sanitizeText 去掉非法 UTF-8 与 NULL 字节，PostgreSQL 文本字段不接受 NULL 字节
func sanitizeText(content string) string {
	if !utf8.ValidString(content) {
		v := make([]rune, 0, len(content))
		for _, r := range content {
			if r == utf8.RuneError {
				continue
			}
			v = append(v, r)
		}
		content = string(v)
	}
	return strings.ReplaceAll(content, "\x00", "")
}
