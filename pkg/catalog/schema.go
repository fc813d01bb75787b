package catalog

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per harvest run (ingest, scan, or API probe)
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    kind TEXT NOT NULL,              -- ingest, scan, probe
    source TEXT NOT NULL,            -- capture file path or page URL
    video_count INTEGER NOT NULL,
    success_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0,
    language TEXT,                   -- detected page language, ISO 639-1
    tool TEXT                        -- downloader used, empty until download
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);

-- Videos: the items a run produced, in capture order
CREATE TABLE IF NOT EXISTS videos (
    video_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    position INTEGER NOT NULL,       -- 1-based, drives the filename prefix
    url TEXT NOT NULL,
    title TEXT,
    source TEXT,                     -- heuristic that found it
    filename TEXT NOT NULL,          -- sanitized ordinal stem
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_videos_run ON videos(run_id);
CREATE INDEX IF NOT EXISTS idx_videos_url ON videos(url);

-- Downloads: per-video outcome of a download pass
CREATE TABLE IF NOT EXISTS downloads (
    download_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    video_id INTEGER NOT NULL,
    completed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    status TEXT NOT NULL,            -- ok, failed
    error_message TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    FOREIGN KEY (video_id) REFERENCES videos(video_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_downloads_run ON downloads(run_id);
CREATE INDEX IF NOT EXISTS idx_downloads_status ON downloads(status);
`
