package database

import (
	"database/sql"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func Init(path string) {
	var err error
	DB, err = sql.Open("sqlite", path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("could not open database")
	}

	_, err = DB.Exec(`
        CREATE TABLE IF NOT EXISTS schema_version (
            version INTEGER PRIMARY KEY
        )
    `)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create schema_version table")
	}

	var version int
	err = DB.QueryRow("SELECT version FROM schema_version").Scan(&version)
	if err != nil {
		// No version found, assume fresh install
		_, err = DB.Exec("INSERT INTO schema_version (version) VALUES (0)")
		if err != nil {
			log.Fatal().Err(err).Msg("could not seed schema version")
		}
		version = 0
	}

	runMigrations(DB, version)
}

func runMigrations(db *sql.DB, currentVersion int) {
	migrations := []func(*sql.DB) error{
		migrateToV1,
		// Add new migrations here
	}

	for i, migration := range migrations {
		version := i + 1
		if version <= currentVersion {
			continue
		}

		log.Info().Int("version", version).Msg("running migration")
		if err := migration(db); err != nil {
			log.Fatal().Err(err).Int("version", version).Msg("migration failed")
		}

		if _, err := db.Exec("UPDATE schema_version SET version = ?", version); err != nil {
			log.Fatal().Err(err).Msg("failed to update schema version")
		}
	}
}

func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS subscribers (
            owner_id TEXT,
            owner_name TEXT,
            riot_id TEXT,
            riot_id_norm TEXT,
            region TEXT,
            channel_id TEXT,
            last_match_id TEXT DEFAULT '',
            added_at INTEGER,
            last_checked INTEGER DEFAULT 0,
            auto_notify BOOLEAN DEFAULT 1,
            mention_on_notify BOOLEAN DEFAULT 1,
            include_analysis BOOLEAN DEFAULT 0,
            total_notified INTEGER DEFAULT 0,
            last_notified INTEGER DEFAULT 0,
            PRIMARY KEY (owner_id, riot_id_norm)
        )
    `)
	return err
}

func Close() {
	DB.Close()
}
