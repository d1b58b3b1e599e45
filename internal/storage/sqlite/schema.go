package sqlite

const schemaSQL = `
-- Extraction jobs
-- Timestamps stored as unix nanoseconds for stable ordering
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	tab TEXT NOT NULL,
	status TEXT NOT NULL,
	items_count INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	created_at INTEGER NOT NULL,
	completed_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);

-- Extracted items, one row per item, insertion order preserved via rowid
CREATE TABLE IF NOT EXISTS job_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL,
	content TEXT NOT NULL,
	type TEXT NOT NULL DEFAULT 'unknown',
	scraped_at INTEGER NOT NULL,
	FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_job_items_job_id ON job_items(job_id);

-- AI summaries derived from jobs
CREATE TABLE IF NOT EXISTS summaries (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	summary TEXT NOT NULL,
	key_points TEXT,
	topics TEXT,
	practical_insights TEXT,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_summaries_job_id ON summaries(job_id);
CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON summaries(job_id, created_at DESC);
`

// InitSchema initializes the database schema
func (s *SQLiteDB) InitSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
