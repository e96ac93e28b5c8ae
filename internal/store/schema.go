package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS fetches (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id           TEXT NOT NULL,
    client_id            TEXT NOT NULL,
    outcome              TEXT NOT NULL,
    status_code          INTEGER NOT NULL DEFAULT 0,
    duration_ms          INTEGER NOT NULL,
    error                TEXT,
    fetched_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fetches_fetched_at ON fetches(fetched_at);
CREATE INDEX IF NOT EXISTS idx_fetches_client ON fetches(client_id);
`
