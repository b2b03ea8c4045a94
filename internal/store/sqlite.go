package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jetski/internal/comic"

	_ "modernc.org/sqlite"
)

const sqliteTimeLayout = "2006-01-02T15:04:05.000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS videos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT UNIQUE NOT NULL,
	video_id TEXT NOT NULL,
	title TEXT,
	duration INTEGER,
	channel TEXT,
	thumbnail_url TEXT,
	transcript TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS viral_segments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id INTEGER NOT NULL REFERENCES videos(id),
	rank INTEGER NOT NULL,
	score INTEGER NOT NULL,
	start_time TEXT,
	end_time TEXT,
	viral_type TEXT,
	hook TEXT,
	summary TEXT,
	transcript_excerpt TEXT,
	is_selected INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS storyboards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id INTEGER NOT NULL REFERENCES videos(id),
	segment_id INTEGER NOT NULL REFERENCES viral_segments(id),
	title TEXT,
	style TEXT,
	tone TEXT,
	panels_json TEXT NOT NULL,
	hashtags_json TEXT,
	posting_tip TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS generated_comics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	storyboard_id INTEGER NOT NULL REFERENCES storyboards(id),
	images_json TEXT,
	doc_url TEXT,
	folder_url TEXT,
	duration_seconds REAL,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id INTEGER REFERENCES videos(id),
	step TEXT NOT NULL,
	duration_seconds REAL NOT NULL,
	success INTEGER NOT NULL DEFAULT 1,
	error TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
`

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveVideo(ctx context.Context, video comic.VideoRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (url, video_id, title, duration, channel, thumbnail_url, transcript)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO NOTHING`,
		video.URL, video.ID, video.Title, video.DurationSeconds, video.Channel, video.ThumbnailURL, video.Transcript)
	if err != nil {
		return 0, fmt.Errorf("save video: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return res.LastInsertId()
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM videos WHERE url = ?`, video.URL).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("save video: %w", ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup video: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) SaveSegments(ctx context.Context, videoID int64, segments []comic.ViralSegment, selectedRank int) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var selectedID int64
	for _, seg := range segments {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO viral_segments
				(video_id, rank, score, start_time, end_time, viral_type, hook, summary, transcript_excerpt, is_selected)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			videoID, seg.Rank, seg.Score, seg.StartTime, seg.EndTime, seg.ViralType,
			seg.Hook, seg.Summary, seg.TranscriptExcerpt, seg.Rank == selectedRank)
		if err != nil {
			return 0, fmt.Errorf("save segment %d: %w", seg.Rank, err)
		}
		if seg.Rank == selectedRank {
			if selectedID, err = res.LastInsertId(); err != nil {
				return 0, fmt.Errorf("segment id: %w", err)
			}
		}
	}

	if selectedID == 0 {
		return 0, fmt.Errorf("selected rank %d: %w", selectedRank, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return selectedID, nil
}

func (s *SQLiteStore) SaveStoryboard(ctx context.Context, videoID, segmentID int64, board comic.Storyboard) (int64, error) {
	panels, hashtags, err := storyboardJSON(board)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO storyboards (video_id, segment_id, title, style, tone, panels_json, hashtags_json, posting_tip)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		videoID, segmentID, board.Title, board.Style, board.Tone, panels, hashtags, board.PostingTip)
	if err != nil {
		return 0, fmt.Errorf("save storyboard: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) SaveGeneratedComic(ctx context.Context, record ComicRecord) (int64, error) {
	images, err := imagesJSON(record.Images)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO generated_comics (storyboard_id, images_json, doc_url, folder_url, duration_seconds, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.StoryboardID, images, record.DocURL, record.FolderURL, record.DurationSeconds, record.Status)
	if err != nil {
		return 0, fmt.Errorf("save generated comic: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) LogMetric(ctx context.Context, entry comic.MetricEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metrics (video_id, step, duration_seconds, success, error)
		VALUES (?, ?, ?, ?, ?)`,
		entry.VideoRef, entry.StepName, entry.DurationSeconds, entry.Success, entry.ErrorMessage)
	if err != nil {
		return fmt.Errorf("log metric: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, limit int) ([]VideoSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			v.id, v.url, COALESCE(v.title, ''), v.created_at,
			COUNT(DISTINCT vs.id), COUNT(DISTINCT sb.id), COUNT(DISTINCT gc.id)
		FROM videos v
		LEFT JOIN viral_segments vs ON v.id = vs.video_id
		LEFT JOIN storyboards sb ON v.id = sb.video_id
		LEFT JOIN generated_comics gc ON sb.id = gc.storyboard_id
		GROUP BY v.id
		ORDER BY v.created_at DESC, v.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var videos []VideoSummary
	for rows.Next() {
		var (
			v         VideoSummary
			createdAt string
		)
		if err := rows.Scan(&v.ID, &v.URL, &v.Title, &createdAt, &v.SegmentsCount, &v.StoryboardsCount, &v.ComicsCount); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if t, err := time.Parse(sqliteTimeLayout, createdAt); err == nil {
			v.CreatedAt = t
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
