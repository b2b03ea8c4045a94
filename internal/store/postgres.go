package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jetski/internal/comic"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS videos (
	id BIGSERIAL PRIMARY KEY,
	url TEXT UNIQUE NOT NULL,
	video_id TEXT NOT NULL,
	title TEXT,
	duration INTEGER,
	channel TEXT,
	thumbnail_url TEXT,
	transcript TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS viral_segments (
	id BIGSERIAL PRIMARY KEY,
	video_id BIGINT NOT NULL REFERENCES videos(id),
	rank INTEGER NOT NULL,
	score INTEGER NOT NULL,
	start_time TEXT,
	end_time TEXT,
	viral_type TEXT,
	hook TEXT,
	summary TEXT,
	transcript_excerpt TEXT,
	is_selected BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS storyboards (
	id BIGSERIAL PRIMARY KEY,
	video_id BIGINT NOT NULL REFERENCES videos(id),
	segment_id BIGINT NOT NULL REFERENCES viral_segments(id),
	title TEXT,
	style TEXT,
	tone TEXT,
	panels_json JSONB NOT NULL,
	hashtags_json JSONB,
	posting_tip TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS generated_comics (
	id BIGSERIAL PRIMARY KEY,
	storyboard_id BIGINT NOT NULL REFERENCES storyboards(id),
	images_json JSONB,
	doc_url TEXT,
	folder_url TEXT,
	duration_seconds DOUBLE PRECISION,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS metrics (
	id BIGSERIAL PRIMARY KEY,
	video_id BIGINT REFERENCES videos(id),
	step TEXT NOT NULL,
	duration_seconds DOUBLE PRECISION NOT NULL,
	success BOOLEAN NOT NULL DEFAULT TRUE,
	error TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DB is the subset of pgxpool.Pool the postgres store needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

type PostgresStore struct {
	db DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	s := NewPostgresWithDB(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func NewPostgresWithDB(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func (s *PostgresStore) SaveVideo(ctx context.Context, video comic.VideoRecord) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO videos (url, video_id, title, duration, channel, thumbnail_url, transcript)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO NOTHING
		RETURNING id`,
		video.URL, video.ID, video.Title, video.DurationSeconds, video.Channel, video.ThumbnailURL, video.Transcript,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("save video: %w", err)
	}

	err = s.db.QueryRow(ctx, `SELECT id FROM videos WHERE url = $1`, video.URL).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("save video: %w", ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup video: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) SaveSegments(ctx context.Context, videoID int64, segments []comic.ViralSegment, selectedRank int) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}

	var selectedID int64
	for _, seg := range segments {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO viral_segments
				(video_id, rank, score, start_time, end_time, viral_type, hook, summary, transcript_excerpt, is_selected)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`,
			videoID, seg.Rank, seg.Score, seg.StartTime, seg.EndTime, seg.ViralType,
			seg.Hook, seg.Summary, seg.TranscriptExcerpt, seg.Rank == selectedRank,
		).Scan(&id)
		if err != nil {
			_ = tx.Rollback(ctx)
			return 0, fmt.Errorf("save segment %d: %w", seg.Rank, err)
		}
		if seg.Rank == selectedRank {
			selectedID = id
		}
	}

	if selectedID == 0 {
		_ = tx.Rollback(ctx)
		return 0, fmt.Errorf("selected rank %d: %w", selectedRank, ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return selectedID, nil
}

func (s *PostgresStore) SaveStoryboard(ctx context.Context, videoID, segmentID int64, board comic.Storyboard) (int64, error) {
	panels, hashtags, err := storyboardJSON(board)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.QueryRow(ctx, `
		INSERT INTO storyboards (video_id, segment_id, title, style, tone, panels_json, hashtags_json, posting_tip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		videoID, segmentID, board.Title, board.Style, board.Tone, panels, hashtags, board.PostingTip,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save storyboard: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) SaveGeneratedComic(ctx context.Context, record ComicRecord) (int64, error) {
	images, err := imagesJSON(record.Images)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.QueryRow(ctx, `
		INSERT INTO generated_comics (storyboard_id, images_json, doc_url, folder_url, duration_seconds, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		record.StoryboardID, images, record.DocURL, record.FolderURL, record.DurationSeconds, record.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save generated comic: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) LogMetric(ctx context.Context, entry comic.MetricEntry) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO metrics (video_id, step, duration_seconds, success, error)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.VideoRef, entry.StepName, entry.DurationSeconds, entry.Success, entry.ErrorMessage)
	if err != nil {
		return fmt.Errorf("log metric: %w", err)
	}
	return nil
}

func (s *PostgresStore) History(ctx context.Context, limit int) ([]VideoSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT
			v.id, v.url, COALESCE(v.title, ''), v.created_at,
			COUNT(DISTINCT vs.id), COUNT(DISTINCT sb.id), COUNT(DISTINCT gc.id)
		FROM videos v
		LEFT JOIN viral_segments vs ON v.id = vs.video_id
		LEFT JOIN storyboards sb ON v.id = sb.video_id
		LEFT JOIN generated_comics gc ON sb.id = gc.storyboard_id
		GROUP BY v.id
		ORDER BY v.created_at DESC, v.id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var videos []VideoSummary
	for rows.Next() {
		var v VideoSummary
		if err := rows.Scan(&v.ID, &v.URL, &v.Title, &v.CreatedAt, &v.SegmentsCount, &v.StoryboardsCount, &v.ComicsCount); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
