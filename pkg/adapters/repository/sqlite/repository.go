package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

var ErrNotFound = errors.New("link not found")

// analytics dimensions stored in link_analytics
const (
	dimPlatform = "platform"
	dimDevice   = "device"
	dimBrowser  = "browser"
	dimRegion   = "region"
)

const visitTimeLayout = "2006-01-02 15:04:05"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS links (
		id TEXT PRIMARY KEY,
		original_url TEXT NOT NULL,
		custom_path TEXT,
		clicks INTEGER NOT NULL DEFAULT 0,
		platform TEXT,
		deep_link_config JSON,
		redirect_rules JSON,
		status TEXT,
		plan_type TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS link_analytics (
		link_id TEXT NOT NULL,
		dimension TEXT NOT NULL,
		value TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (link_id, dimension, value),
		FOREIGN KEY(link_id) REFERENCES links(id)
	);

	CREATE TABLE IF NOT EXISTS visits (
		id TEXT PRIMARY KEY,
		link_id TEXT NOT NULL,
		platform TEXT,
		device TEXT,
		browser TEXT,
		region TEXT,
		referer TEXT,
		ip_hash TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(link_id) REFERENCES links(id)
	);
	CREATE INDEX IF NOT EXISTS idx_visits_link_id ON visits(link_id);
	`
	_, err := db.Exec(query)
	return err
}

const linkColumns = `id, original_url, custom_path, clicks, platform, deep_link_config, redirect_rules, status, plan_type, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLink(row rowScanner) (*domain.Link, error) {
	var (
		l          domain.Link
		customPath sql.NullString
		platform   sql.NullString
		status     sql.NullString
		planType   sql.NullString
		configJSON []byte
		rulesJSON  []byte
	)
	if err := row.Scan(&l.ID, &l.OriginalURL, &customPath, &l.Clicks, &platform, &configJSON, &rulesJSON,
		&status, &planType, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.CustomPath = customPath.String
	l.Platform = domain.Platform(platform.String)
	l.Status = domain.LinkStatus(status.String)
	l.PlanType = domain.PlanType(planType.String)

	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &l.DeepLinkConfig); err != nil {
			return nil, fmt.Errorf("decode deep_link_config for %s: %w", l.ID, err)
		}
	}
	if len(rulesJSON) > 0 {
		if err := json.Unmarshal(rulesJSON, &l.RedirectRules); err != nil {
			return nil, fmt.Errorf("decode redirect_rules for %s: %w", l.ID, err)
		}
	}
	return &l, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = ? AND deleted_at IS NULL`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	analytics, err := r.loadAnalytics(ctx, id)
	if err != nil {
		return nil, err
	}
	link.Analytics = analytics
	link.ApplyDefaults()
	return link, nil
}

// Set inserts the link or replaces its mutable fields. The click counter is
// only taken from link on insert; afterwards it moves through IncrementClicks.
func (r *SQLiteRepository) Set(ctx context.Context, link *domain.Link) error {
	configJSON, err := json.Marshal(link.DeepLinkConfig)
	if err != nil {
		return err
	}
	rules := link.RedirectRules
	if rules == nil {
		rules = []domain.RedirectRule{}
	}
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO links (` + linkColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(id) DO UPDATE SET
				original_url = excluded.original_url,
				custom_path = excluded.custom_path,
				platform = excluded.platform,
				deep_link_config = excluded.deep_link_config,
				redirect_rules = excluded.redirect_rules,
				status = excluded.status,
				plan_type = excluded.plan_type,
				updated_at = excluded.updated_at`
	_, err = tx.ExecContext(ctx, query, link.ID, link.OriginalURL, link.CustomPath, link.Clicks,
		string(link.Platform), configJSON, rulesJSON, string(link.Status), string(link.PlanType),
		link.CreatedAt, link.UpdatedAt)
	if err != nil {
		return err
	}

	// Imported counters never lower what is already stored
	for dimension, counts := range analyticsDimensions(link.Analytics) {
		for value, count := range counts {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO link_analytics (link_id, dimension, value, count) VALUES (?, ?, ?, ?)
				ON CONFLICT(link_id, dimension, value) DO UPDATE SET count = MAX(link_analytics.count, excluded.count)`,
				link.ID, dimension, value, count)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) IncrementClicks(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE links SET clicks = clicks + 1, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists also reports soft-deleted links so their codes are never reissued.
func (r *SQLiteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE links SET deleted_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

func (r *SQLiteRepository) List(ctx context.Context, limit, offset int, filters map[string]interface{}) ([]domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE deleted_at IS NULL`
	where, args := filterClause(filters)
	query += where

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	return r.queryLinks(ctx, query, args...)
}

func (r *SQLiteRepository) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	query := `SELECT COUNT(*) FROM links WHERE deleted_at IS NULL`
	where, args := filterClause(filters)
	query += where

	var count int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	links, err := r.queryLinks(ctx, `SELECT `+linkColumns+` FROM links WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for i := range links {
		analytics, err := r.loadAnalytics(ctx, links[i].ID)
		if err != nil {
			return nil, err
		}
		links[i].Analytics = analytics
	}
	return links, nil
}

func (r *SQLiteRepository) RecordVisit(ctx context.Context, visit *domain.Visit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Insert Visit Record
	queryVisit := `INSERT INTO visits (id, link_id, platform, device, browser, region, referer, ip_hash, created_at)
				   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, queryVisit, visit.ID, visit.LinkID, string(visit.Platform), string(visit.Device),
		string(visit.Browser), visit.Region, visit.Referer, visit.IPHash, visit.CreatedAt.UTC().Format(visitTimeLayout))
	if err != nil {
		return err
	}

	// 2. Bump per-dimension counters (atomic per field)
	var delta domain.Analytics
	delta.Record(visit.DeviceInfo())
	for dimension, counts := range analyticsDimensions(delta) {
		for value := range counts {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO link_analytics (link_id, dimension, value, count) VALUES (?, ?, ?, 1)
				ON CONFLICT(link_id, dimension, value) DO UPDATE SET count = link_analytics.count + 1`,
				visit.LinkID, dimension, value)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetLinkStats(ctx context.Context, id string) (*domain.LinkStats, error) {
	exists, err := r.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	stats := &domain.LinkStats{
		Referrers:   make(map[string]int64),
		DailyClicks: []domain.DailyClick{},
	}

	// Total Clicks
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visits WHERE link_id = ?`, id).Scan(&stats.TotalClicks)
	if err != nil {
		return nil, err
	}

	stats.Analytics, err = r.loadAnalytics(ctx, id)
	if err != nil {
		return nil, err
	}

	// Referrers
	rows, err := r.db.QueryContext(ctx, `SELECT COALESCE(referer, ''), COUNT(*) as c FROM visits WHERE link_id = ? GROUP BY referer ORDER BY c DESC LIMIT 10`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref string
		var count int64
		if err := rows.Scan(&ref, &count); err != nil {
			return nil, err
		}
		if ref == "" {
			ref = "Direct"
		}
		stats.Referrers[ref] += count
	}
	rows.Close()

	// Daily Clicks (Last 30 days)
	rows2, err := r.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m-%d', created_at) as date, COUNT(*)
		FROM visits
		WHERE link_id = ?
		GROUP BY date
		ORDER BY date DESC
		LIMIT 30`, id)
	if err != nil {
		return nil, err
	}
	defer rows2.Close()
	for rows2.Next() {
		var dc domain.DailyClick
		if err := rows2.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		stats.DailyClicks = append(stats.DailyClicks, dc)
	}

	return stats, nil
}

func (r *SQLiteRepository) GetDashboardStats(ctx context.Context, limit int, filters map[string]interface{}) ([]domain.Link, int64, error) {
	// Sum of the clicks column rather than a scan over visits
	var totalSystemClicks int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(clicks), 0) FROM links WHERE deleted_at IS NULL`).Scan(&totalSystemClicks)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + linkColumns + ` FROM links WHERE deleted_at IS NULL`
	where, args := filterClause(filters)
	query += where

	query += " ORDER BY clicks DESC LIMIT ?"
	args = append(args, limit)

	links, err := r.queryLinks(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return links, totalSystemClicks, nil
}

func (r *SQLiteRepository) queryLinks(ctx context.Context, query string, args ...interface{}) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		l.ApplyDefaults()
		links = append(links, *l)
	}
	return links, rows.Err()
}

func (r *SQLiteRepository) loadAnalytics(ctx context.Context, id string) (domain.Analytics, error) {
	var a domain.Analytics
	a = a.Copy()

	rows, err := r.db.QueryContext(ctx, `SELECT dimension, value, count FROM link_analytics WHERE link_id = ?`, id)
	if err != nil {
		return a, err
	}
	defer rows.Close()

	dims := analyticsDimensions(a)
	for rows.Next() {
		var dimension, value string
		var count int64
		if err := rows.Scan(&dimension, &value, &count); err != nil {
			return a, err
		}
		if counts, ok := dims[dimension]; ok {
			counts[value] = count
		}
	}
	return a, rows.Err()
}

func analyticsDimensions(a domain.Analytics) map[string]map[string]int64 {
	return map[string]map[string]int64{
		dimPlatform: a.Platforms,
		dimDevice:   a.Devices,
		dimBrowser:  a.Browsers,
		dimRegion:   a.Regions,
	}
}

func filterClause(filters map[string]interface{}) (string, []interface{}) {
	var (
		where string
		args  []interface{}
	)
	if search, ok := filters["search"].(string); ok && search != "" {
		where += " AND (id LIKE ? OR original_url LIKE ?)"
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	if domainFilter, ok := filters["domain"].(string); ok && domainFilter != "" {
		where += " AND original_url LIKE ?"
		args = append(args, "%"+domainFilter+"%")
	}
	return where, args
}

// Ensure interface compliance
var _ ports.LinkRepository = (*SQLiteRepository)(nil)
