package model

import "time"

type BackupStatus string

const (
	BackupPending   BackupStatus = "pending"
	BackupUploading BackupStatus = "uploading"
	BackupCompleted BackupStatus = "completed"
	BackupFailed    BackupStatus = "failed"
)

// Backup records one encrypted snapshot of the larder database pushed to
// object storage.
type Backup struct {
	ID           int64        `json:"id"`
	ObjectKey    string       `json:"objectKey"`
	SizeBytes    int64        `json:"sizeBytes"`
	Status       BackupStatus `json:"status"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}
