package repository

const schema = `
CREATE TABLE IF NOT EXISTS teams (
	id          SERIAL PRIMARY KEY,
	team_id     INTEGER NOT NULL,
	sport_id    TEXT NOT NULL,
	team_name   TEXT NOT NULL,
	last_season INTEGER,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (sport_id, team_id)
);

CREATE TABLE IF NOT EXISTS games (
	id         SERIAL PRIMARY KEY,
	game_id    INTEGER NOT NULL,
	sport_id   TEXT NOT NULL,
	season     INTEGER,
	status     TEXT NOT NULL DEFAULT 'pending',
	play_count INTEGER,
	last_error TEXT,
	fetched_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (sport_id, game_id)
);

CREATE INDEX IF NOT EXISTS games_status_idx ON games (status, updated_at);

CREATE TABLE IF NOT EXISTS plays (
	sport_id                 TEXT NOT NULL,
	game_id                  INTEGER NOT NULL,
	event_num                INTEGER NOT NULL,
	season                   INTEGER NOT NULL,
	game_time_str            TEXT NOT NULL,
	period_seconds_remaining INTEGER NOT NULL,
	game_seconds_remaining   INTEGER NOT NULL,
	clock_milliseconds       INTEGER NOT NULL,
	period_num               INTEGER NOT NULL,
	event_team               INTEGER,
	event_text               TEXT NOT NULL,
	is_overtime              BOOLEAN NOT NULL,
	away_score               INTEGER NOT NULL,
	home_score               INTEGER NOT NULL,
	game_datetime            TIMESTAMPTZ NOT NULL,
	stadium_name             TEXT NOT NULL,
	attendance               INTEGER NOT NULL,
	away_team_id             INTEGER NOT NULL,
	away_team_name           TEXT NOT NULL,
	home_team_id             INTEGER NOT NULL,
	home_team_name           TEXT NOT NULL,
	PRIMARY KEY (sport_id, game_id, event_num)
);
`
