package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/config"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Run 一次已完成的分析运行，报告与指标保持原始 JSON，由调用方解码
type Run struct {
	ID          int
	CompanyID   string
	CompanyName string
	HQCountry   string
	Industry    string
	Report      []byte
	Metric      []byte
	CreatedAt   time.Time
}

// Storage 基于 PostgreSQL 的报告与指标存储
type Storage struct {
	db *sql.DB
}

// NewStorage 连接数据库并初始化表结构
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := NewWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB 使用已有连接创建存储并初始化表结构
func NewWithDB(db *sql.DB) (*Storage, error) {
	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS workforce_runs (
			id SERIAL PRIMARY KEY,
			company_id TEXT NOT NULL,
			company_name TEXT,
			hq_country TEXT,
			industry TEXT,
			report JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS workforce_metrics (
			run_id INTEGER PRIMARY KEY REFERENCES workforce_runs(id),
			metric JSONB,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS comparative_payloads (
			id SERIAL PRIMARY KEY,
			batch_id TEXT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}

// SaveRun 保存一次运行的报告，metric 不为 nil 时一并写入指标
func (s *Storage) SaveRun(ctx context.Context, run *Run, metric *model.WorkforceImpactSnapshot) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var runID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO workforce_runs (company_id, company_name, hq_country, industry, report)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		run.CompanyID, run.CompanyName, run.HQCountry, run.Industry, nullJSON(run.Report)).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert workforce run: %w", err)
	}

	if metric != nil {
		data, err := json.Marshal(metric)
		if err != nil {
			return 0, fmt.Errorf("failed to encode workforce metric: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workforce_metrics (run_id, metric)
			VALUES ($1, $2)`,
			runID, data); err != nil {
			return 0, fmt.Errorf("failed to insert workforce metric: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// SaveWorkforceMetric 写入或覆盖运行的指标；metric 为 nil 时记为 JSON null，表示暂无信号
func (s *Storage) SaveWorkforceMetric(ctx context.Context, runID int, metric *model.WorkforceImpactSnapshot) error {
	data, err := json.Marshal(metric)
	if err != nil {
		return fmt.Errorf("failed to encode workforce metric: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workforce_metrics (run_id, metric, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (run_id) DO UPDATE SET metric = EXCLUDED.metric, updated_at = EXCLUDED.updated_at`,
		runID, data)
	if err != nil {
		return fmt.Errorf("failed to save workforce metric for run %d: %w", runID, err)
	}
	return nil
}

const runColumns = `r.id, r.company_id, COALESCE(r.company_name, ''), COALESCE(r.hq_country, ''),
		COALESCE(r.industry, ''), r.report, m.metric, r.created_at`

// ListRuns 按创建时间返回全部运行及其指标
func (s *Storage) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM workforce_runs r
		LEFT JOIN workforce_metrics m ON m.run_id = r.id
		ORDER BY r.created_at, r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workforce runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workforce runs: %w", err)
	}
	return runs, nil
}

// GetRun 按 ID 获取运行，不存在时返回 ErrNotFound
func (s *Storage) GetRun(ctx context.Context, id int) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM workforce_runs r
		LEFT JOIN workforce_metrics m ON m.run_id = r.id
		WHERE r.id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("workforce run %d: %w", id, ErrNotFound)
	}
	return run, err
}

// SavePayload 保存一次批处理生成的对比分析结果
func (s *Storage) SavePayload(ctx context.Context, batchID string, payload *model.ComparativeAnalyticsPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode comparative payload: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO comparative_payloads (batch_id, payload)
		VALUES ($1, $2)`,
		batchID, data); err != nil {
		return fmt.Errorf("failed to insert comparative payload: %w", err)
	}
	return nil
}

// LatestPayload 最近一次批处理结果，不存在时返回 ErrNotFound
func (s *Storage) LatestPayload(ctx context.Context) (*model.ComparativeAnalyticsPayload, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM comparative_payloads
		ORDER BY created_at DESC, id DESC
		LIMIT 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comparative payload: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query comparative payload: %w", err)
	}
	var payload model.ComparativeAnalyticsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode comparative payload: %w", err)
	}
	return &payload, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var run Run
	if err := sc.Scan(&run.ID, &run.CompanyID, &run.CompanyName, &run.HQCountry,
		&run.Industry, &run.Report, &run.Metric, &run.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan workforce run: %w", err)
	}
	return &run, nil
}

func nullJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return data
}
