package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/larder/internal/model"
)

type BackupStore struct {
	db DBTX
}

func NewBackupStore(db DBTX) *BackupStore {
	return &BackupStore{db: db}
}

const backupCols = `id, object_key, size_bytes, status, error_message, completed_at, created_at`

func scanBackup(scanner interface{ Scan(...any) error }) (*model.Backup, error) {
	var b model.Backup
	var errMsg sql.NullString
	var completedAt sql.NullTime
	if err := scanner.Scan(&b.ID, &b.ObjectKey, &b.SizeBytes, &b.Status, &errMsg, &completedAt, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.ErrorMessage = errMsg.String
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return &b, nil
}

func (s *BackupStore) Create(objectKey string) (*model.Backup, error) {
	result, err := s.db.Exec(`INSERT INTO backups (object_key) VALUES (?)`, objectKey)
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BackupStore) GetByID(id int64) (*model.Backup, error) {
	row := s.db.QueryRow(`SELECT `+backupCols+` FROM backups WHERE id = ?`, id)
	b, err := scanBackup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %d: %w", id, err)
	}
	return b, nil
}

// List returns the newest backups first.
func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	rows, err := s.db.Query(`SELECT `+backupCols+` FROM backups ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []model.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

func (s *BackupStore) SetStatus(id int64, status model.BackupStatus, errorMsg string) error {
	result, err := s.db.Exec(
		`UPDATE backups SET status = ?, error_message = ? WHERE id = ?`,
		status, nullString(emptyToNil(errorMsg)), id,
	)
	if err != nil {
		return fmt.Errorf("update backup status: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("update backup %d", id))
}

func (s *BackupStore) MarkCompleted(id, sizeBytes int64) (*model.Backup, error) {
	result, err := s.db.Exec(
		`UPDATE backups SET status = ?, size_bytes = ?, error_message = NULL, completed_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.BackupCompleted, sizeBytes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("complete backup: %w", err)
	}
	if err := requireAffected(result, fmt.Sprintf("complete backup %d", id)); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Prune deletes every backup row beyond the newest keep and returns the
// object keys of the completed ones so their objects can be removed too.
func (s *BackupStore) Prune(keep int) ([]string, error) {
	var keys []string
	err := inTx(s.db, func(q DBTX) error {
		rows, err := q.Query(
			`SELECT object_key, status FROM backups ORDER BY id DESC LIMIT -1 OFFSET ?`, keep,
		)
		if err != nil {
			return fmt.Errorf("select expired backups: %w", err)
		}
		for rows.Next() {
			var key string
			var status model.BackupStatus
			if err := rows.Scan(&key, &status); err != nil {
				rows.Close()
				return fmt.Errorf("scan expired backup: %w", err)
			}
			if status == model.BackupCompleted {
				keys = append(keys, key)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if _, err := q.Exec(
			`DELETE FROM backups WHERE id NOT IN (SELECT id FROM backups ORDER BY id DESC LIMIT ?)`, keep,
		); err != nil {
			return fmt.Errorf("delete expired backups: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
