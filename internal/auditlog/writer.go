package auditlog

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	"github.com/danielsaucedo/partstracker-backend/pkg/logger"
)

// Writer persists application events to the app_logs table. Writes are best
// effort: a failed insert is reported to the process log and swallowed so the
// operation that triggered the event is never affected.
type Writer struct {
	db   *gorm.DB
	logg *logger.Logger
}

func NewWriter(db *gorm.DB, logg *logger.Logger) *Writer {
	return &Writer{db: db, logg: logg}
}

// Event records one audit row. The fields map is serialized into the context
// column; a nil map stores NULL.
func (w *Writer) Event(ctx context.Context, level, message string, fields map[string]any) {
	if w == nil || w.db == nil {
		return
	}

	row := &models.AppLog{Level: level, Message: message}
	if len(fields) > 0 {
		payload, err := json.Marshal(fields)
		if err != nil {
			w.warn(ctx, "audit: marshal context", err)
			return
		}
		row.Context = payload
	}

	if err := w.db.WithContext(ctx).Create(row).Error; err != nil {
		w.warn(ctx, "audit: insert app log", err)
	}
}

func (w *Writer) warn(ctx context.Context, message string, err error) {
	if w.logg == nil {
		return
	}
	w.logg.Warn(ctx, message+": "+err.Error())
}
