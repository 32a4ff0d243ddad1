package storage

const schema = `
-- 'collections' groups cards and remembers where they were imported from.
CREATE TABLE IF NOT EXISTS collections (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    source_path TEXT NOT NULL DEFAULT '',
    source_type TEXT NOT NULL DEFAULT 'none', -- none, local, git
    last_scanned DATETIME,
    created_at DATETIME NOT NULL
);

-- 'cards' holds content plus the three fields the scheduler writes back.
CREATE TABLE IF NOT EXISTS cards (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    collection_id TEXT NOT NULL,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    is_new INTEGER NOT NULL DEFAULT 1,
    last_grade INTEGER NOT NULL DEFAULT 0, -- 0 New, 1 Again, 2 Hard, 3 Good, 4 Easy
    next_schedule_date DATETIME,

    FOREIGN KEY(collection_id) REFERENCES collections(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_cards_collection ON cards(collection_id);
`
