package store

// Table and column names are part of the external contract: the results
// database is meant for ad-hoc querying after a run.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS queries (
    queryID     TEXT PRIMARY KEY,
    queryDef    TEXT,
    queryLength INTEGER
);

CREATE TABLE IF NOT EXISTS hits (
    hitID     TEXT PRIMARY KEY,
    hitDef    TEXT,
    accession TEXT,
    queryID   TEXT,
    FOREIGN KEY (queryID) REFERENCES queries (queryID)
);

CREATE TABLE IF NOT EXISTS hsps (
    hspID       INTEGER PRIMARY KEY AUTOINCREMENT,
    alignLength INTEGER,
    bitScore    REAL,
    eValue      REAL,
    gaps        INTEGER,
    percentID   REAL,
    hitID       TEXT,
    FOREIGN KEY (hitID) REFERENCES hits (hitID)
);

CREATE TABLE IF NOT EXISTS runs (
    runID      TEXT PRIMARY KEY,
    rid        TEXT,
    program    TEXT,
    searchDB   TEXT,
    queryCount INTEGER,
    hitCount   INTEGER,
    hspCount   INTEGER,
    status     TEXT,
    startedAt  TEXT,
    finishedAt TEXT
);
`

const (
	insertQuerySQL = `INSERT INTO queries (queryID, queryDef, queryLength) VALUES (?, ?, ?)`
	insertHitSQL   = `INSERT INTO hits (hitID, hitDef, accession, queryID) VALUES (?, ?, ?, ?)`
	insertHSPSQL   = `INSERT INTO hsps (alignLength, bitScore, eValue, gaps, percentID, hitID)
		VALUES (?, ?, ?, ?, ?, ?)`
	insertRunSQL = `INSERT INTO runs (runID, rid, program, searchDB, queryCount, hitCount,
		hspCount, status, startedAt, finishedAt) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)
