package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/stock_radar/app/display/internal/domain"
	"github.com/iWorld-y/stock_radar/app/display/internal/usecase"
)

type reportRepo struct {
	data *Data
	log  *log.Helper
}

func NewReportRepo(data *Data, logger log.Logger) usecase.ReportRepo {
	return &reportRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *reportRepo) ListReports(ctx context.Context, page, pageSize int) ([]*domain.ReportSummary, int, error) {
	offset := (page - 1) * pageSize

	rows, err := r.data.db.QueryContext(ctx, `
		SELECT rr.id, rr.title, rr.created_at,
		       COUNT(sr.id) AS stock_count,
		       COALESCE(AVG(sr.score), 0) AS avg_score
		FROM report_runs rr
		LEFT JOIN stock_reports sr ON sr.run_id = rr.id
		GROUP BY rr.id, rr.title, rr.created_at
		ORDER BY rr.created_at DESC
		LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var summaries []*domain.ReportSummary
	for rows.Next() {
		var (
			s         domain.ReportSummary
			createdAt time.Time
			avgScore  float64
		)
		if err := rows.Scan(&s.ID, &s.Title, &createdAt, &s.StockCount, &avgScore); err != nil {
			return nil, 0, err
		}
		s.Date = createdAt.Format("2006-01-02 15:04:05")
		s.AverageScore = int(avgScore)
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.data.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

func (r *reportRepo) GetReportByID(ctx context.Context, id int) (*domain.GroupedReport, error) {
	grouped := &domain.GroupedReport{ID: id}

	var createdAt time.Time
	err := r.data.db.QueryRowContext(ctx, `
		SELECT title, created_at FROM report_runs WHERE id = $1`,
		id).Scan(&grouped.Title, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("REPORT_NOT_FOUND", "report not found")
		}
		return nil, err
	}
	grouped.Date = createdAt.Format("2006-01-02 15:04:05")

	// 深度解读
	var da domain.DeepAnalysis
	var daID int
	err = r.data.db.QueryRowContext(ctx, `
		SELECT id, macro_trends, opportunities, risks
		FROM deep_analysis_results WHERE run_id = $1
		ORDER BY id DESC LIMIT 1`,
		id).Scan(&daID, &da.MacroTrends, &da.Opportunities, &da.Risks)
	switch err {
	case nil:
		guides, err := r.queryActionGuides(ctx, daID)
		if err != nil {
			return nil, err
		}
		da.ActionGuides = guides
		grouped.DeepAnalysis = &da
	case sql.ErrNoRows:
		// 运行可能没有深度解读
	default:
		return nil, err
	}

	// 个股报告
	stockRows, err := r.data.db.QueryContext(ctx, `
		SELECT sr.id, sr.code, sr.name, sr.overview, sr.technical_read, sr.risks,
		       sr.score, sr.compliance_passed, COALESCE(er.grade, sr.grade)
		FROM stock_reports sr
		LEFT JOIN eval_results er ON er.report_id = sr.id
		WHERE sr.run_id = $1
		ORDER BY sr.score DESC`,
		id)
	if err != nil {
		return nil, err
	}
	defer stockRows.Close()

	for stockRows.Next() {
		var sv domain.StockView
		if err := stockRows.Scan(&sv.ID, &sv.Code, &sv.Name, &sv.Overview, &sv.TechnicalRead,
			&sv.Risks, &sv.Score, &sv.CompliancePassed, &sv.Grade); err != nil {
			return nil, err
		}
		grouped.Stocks = append(grouped.Stocks, &sv)
	}
	if err := stockRows.Err(); err != nil {
		return nil, err
	}

	// 逐个补齐信号、解读、引用与新闻
	for _, sv := range grouped.Stocks {
		if err := r.fillSignals(ctx, sv); err != nil {
			return nil, err
		}
		if err := r.fillSignalReads(ctx, sv); err != nil {
			return nil, err
		}
		if err := r.fillCitations(ctx, sv); err != nil {
			return nil, err
		}
		if err := r.fillArticles(ctx, sv); err != nil {
			return nil, err
		}
	}

	return grouped, nil
}

func (r *reportRepo) queryActionGuides(ctx context.Context, daID int) ([]string, error) {
	rows, err := r.data.db.QueryContext(ctx, `
		SELECT guide_content FROM action_guides WHERE deep_analysis_id = $1 ORDER BY id`,
		daID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guides []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		guides = append(guides, g)
	}
	return guides, rows.Err()
}

func (r *reportRepo) fillSignals(ctx context.Context, sv *domain.StockView) error {
	rows, err := r.data.db.QueryContext(ctx, `
		SELECT name, direction, triggered_at, note, evidence
		FROM signals WHERE report_id = $1 ORDER BY id`,
		sv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.SignalView
		if err := rows.Scan(&s.Name, &s.Direction, &s.TriggeredAt, &s.Note, &s.Evidence); err != nil {
			return err
		}
		sv.Signals = append(sv.Signals, s)
	}
	return rows.Err()
}

func (r *reportRepo) fillSignalReads(ctx context.Context, sv *domain.StockView) error {
	rows, err := r.data.db.QueryContext(ctx, `
		SELECT signal, explanation, citations
		FROM signal_reads WHERE report_id = $1 ORDER BY id`,
		sv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sr domain.SignalReadView
		var citationsRaw string
		if err := rows.Scan(&sr.Signal, &sr.Explanation, &citationsRaw); err != nil {
			return err
		}
		if citationsRaw != "" {
			if err := json.Unmarshal([]byte(citationsRaw), &sr.Citations); err != nil {
				r.log.Warnf("invalid citations for report %d: %v", sv.ID, err)
			}
		}
		sv.SignalReads = append(sv.SignalReads, sr)
	}
	return rows.Err()
}

func (r *reportRepo) fillCitations(ctx context.Context, sv *domain.StockView) error {
	rows, err := r.data.db.QueryContext(ctx, `
		SELECT article_idx FROM citations WHERE report_id = $1 ORDER BY id`,
		sv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return err
		}
		sv.Citations = append(sv.Citations, idx)
	}
	return rows.Err()
}

func (r *reportRepo) fillArticles(ctx context.Context, sv *domain.StockView) error {
	rows, err := r.data.db.QueryContext(ctx, `
		SELECT title, link, source, pub_date
		FROM articles WHERE report_id = $1 ORDER BY id`,
		sv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.ArticleView
		if err := rows.Scan(&a.Title, &a.Link, &a.Source, &a.PubDate); err != nil {
			return err
		}
		sv.Articles = append(sv.Articles, a)
	}
	return rows.Err()
}
