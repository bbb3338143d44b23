package telemetry

import (
	"database/sql"

	"codeberg.org/waldrek/battwatch/internal/errors"
	"codeberg.org/waldrek/battwatch/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS snapshots (
	       timestamp           INTEGER PRIMARY KEY,
	       level               INTEGER NOT NULL CHECK (level BETWEEN 0 AND 100),
	       charging            INTEGER NOT NULL CHECK (charging IN (0, 1)),
	       average_rate_ma     REAL NOT NULL,
	       time_remaining_secs INTEGER NOT NULL,
	       alert               TEXT NOT NULL
	   );`

	insertSnapshotSQL = `
    INSERT INTO snapshots (
        timestamp, level, charging,
        average_rate_ma, time_remaining_secs, alert
    ) VALUES (?, ?, ?, ?, ?, ?)
    ON CONFLICT(timestamp) DO UPDATE SET
        level = excluded.level,
        charging = excluded.charging,
        average_rate_ma = excluded.average_rate_ma,
        time_remaining_secs = excluded.time_remaining_secs,
        alert = excluded.alert`
)

// InitSchema creates the database schema with the current version
func InitSchema(db *sql.DB) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				if !errors.Is(err, sql.ErrTxDone) {
					logger.Debug().Err(err).Msg("Failed to rollback transaction")
				}
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			SQL   string
		}{
			Error: err.Error(),
			SQL:   createTablesSQL,
		})
	}

	version, err := schemaVersion(tx)
	if err != nil {
		return err
	}
	if version < SchemaVersion {
		if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
			return errFactory.WithData(ErrSchemaInitFailed, struct {
				Error string
				Phase string
			}{
				Error: err.Error(),
				Phase: "record_version",
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	logger.Debug().
		Int("version", SchemaVersion).
		Msg("Telemetry schema initialized")

	return nil
}

func schemaVersion(tx *sql.Tx) (int, error) {
	errFactory := errors.New()

	var version int
	err := tx.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaInitFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}
