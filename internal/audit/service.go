package audit

import (
	"encoding/json"
	"fmt"

	"building-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	Username    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog stores an audit entry using tx, so callers can make it part of
// the change it describes.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	before, err := snapshot(opts.Before)
	if err != nil {
		return err
	}
	after, err := snapshot(opts.After)
	if err != nil {
		return err
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		Username:    opts.Username,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  before,
		AfterData:   after,
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

func snapshot(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding audit snapshot: %w", err)
	}
	return string(b), nil
}
