package state

import "database/sql"

// migrateV001 creates the initial burnwatch schema: a key-value table
// holding whole-record JSON values. Mirroring the extension's storage
// model keeps every write a full-record replace, which is the atomicity
// unit the rest of the system assumes.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS app_state (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_app_state_updated_at ON app_state(updated_at)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
