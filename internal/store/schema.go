package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_info (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Games table
CREATE TABLE IF NOT EXISTS games (
    id                      TEXT PRIMARY KEY,
    project                 TEXT NOT NULL,
    category                TEXT NOT NULL,
    focus_prompt            TEXT NOT NULL DEFAULT '',
    target_score            INTEGER NOT NULL,
    hunt_duration_seconds   INTEGER NOT NULL,
    review_duration_seconds INTEGER NOT NULL,
    num_agents              INTEGER NOT NULL,
    max_rounds              INTEGER NOT NULL DEFAULT 3,
    phase                   TEXT NOT NULL DEFAULT 'setup',
    round                   INTEGER NOT NULL DEFAULT 0,
    phase_deadline          DATETIME,
    winner_agent_id         TEXT NOT NULL DEFAULT '',
    created_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    completed_at            DATETIME
);

-- Agents table
CREATE TABLE IF NOT EXISTS agents (
    id                  TEXT PRIMARY KEY,
    game_id             TEXT NOT NULL,
    short_name          TEXT NOT NULL,
    score               INTEGER NOT NULL DEFAULT 0,
    findings_submitted  INTEGER NOT NULL DEFAULT 0,
    findings_valid      INTEGER NOT NULL DEFAULT 0,
    findings_false      INTEGER NOT NULL DEFAULT 0,
    findings_duplicate  INTEGER NOT NULL DEFAULT 0,
    disputes_won        INTEGER NOT NULL DEFAULT 0,
    disputes_lost       INTEGER NOT NULL DEFAULT 0,
    hunt_done_round     INTEGER NOT NULL DEFAULT 0,
    review_done_round   INTEGER NOT NULL DEFAULT 0,
    status              TEXT NOT NULL DEFAULT 'active',
    last_heartbeat      DATETIME,
    FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
);

-- Findings table
CREATE TABLE IF NOT EXISTS findings (
    id                      INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id                 TEXT NOT NULL,
    agent_id                TEXT NOT NULL,
    round                   INTEGER NOT NULL,
    file_path               TEXT NOT NULL,
    line_start              INTEGER NOT NULL,
    line_end                INTEGER NOT NULL,
    description             TEXT NOT NULL,
    evidence                TEXT NOT NULL DEFAULT '',
    pattern_hash            TEXT NOT NULL,
    status                  TEXT NOT NULL DEFAULT 'pending',
    duplicate_of            INTEGER,
    referee_verdict         TEXT NOT NULL DEFAULT '',
    confidence              TEXT NOT NULL DEFAULT '',
    confidence_score        INTEGER,
    points_awarded          INTEGER NOT NULL DEFAULT 0,
    verification_status     TEXT NOT NULL DEFAULT 'none',
    verifier_explanation    TEXT NOT NULL DEFAULT '',
    issue_type              TEXT NOT NULL DEFAULT '',
    impact_tier             TEXT NOT NULL DEFAULT '',
    rejection_reason        TEXT NOT NULL DEFAULT '',
    created_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
);

-- Disputes table
CREATE TABLE IF NOT EXISTS disputes (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id             TEXT NOT NULL,
    finding_id          INTEGER NOT NULL,
    disputer_agent_id   TEXT NOT NULL,
    round               INTEGER NOT NULL,
    reason              TEXT NOT NULL,
    status              TEXT NOT NULL DEFAULT 'pending',
    referee_verdict     TEXT NOT NULL DEFAULT '',
    points_awarded      INTEGER NOT NULL DEFAULT 0,
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    resolved_at         DATETIME,
    FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE,
    FOREIGN KEY (finding_id) REFERENCES findings(id)
);

CREATE INDEX IF NOT EXISTS idx_agents_game ON agents(game_id);
CREATE INDEX IF NOT EXISTS idx_findings_game ON findings(game_id);
CREATE INDEX IF NOT EXISTS idx_findings_game_status ON findings(game_id, status);
CREATE INDEX IF NOT EXISTS idx_findings_game_pattern ON findings(game_id, pattern_hash);
CREATE INDEX IF NOT EXISTS idx_disputes_finding ON disputes(finding_id);
CREATE INDEX IF NOT EXISTS idx_disputes_game ON disputes(game_id);
`
