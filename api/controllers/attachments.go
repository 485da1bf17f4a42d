package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danielsaucedo/partstracker-backend/api/responses"
	"github.com/danielsaucedo/partstracker-backend/api/validators"
	attsvc "github.com/danielsaucedo/partstracker-backend/internal/attachments"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
	apperrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
	"github.com/danielsaucedo/partstracker-backend/pkg/logger"
)

type createAttachmentRequest struct {
	EntityType string    `json:"entity_type" validate:"required"`
	EntityID   uuid.UUID `json:"entity_id" validate:"required"`
	FileName   string    `json:"file_name" validate:"required"`
	FileURL    string    `json:"file_url" validate:"required"`
	MimeType   *string   `json:"mime_type,omitempty"`
}

// ListAttachments returns the attachment metadata for one entity.
func ListAttachments(svc attsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entity, err := enums.ParseAttachmentEntity(chi.URLParam(r, "entity"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				apperrors.New(apperrors.CodeValidation, err.Error()))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListAttachments(r.Context(), entity, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

// CreateAttachment records attachment metadata. The file itself lives with
// whoever hosts file_url.
func CreateAttachment(svc attsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createAttachmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attachment, err := svc.CreateAttachment(r.Context(), attsvc.CreateInput{
			EntityType: enums.AttachmentEntity(payload.EntityType),
			EntityID:   payload.EntityID,
			FileName:   payload.FileName,
			FileURL:    payload.FileURL,
			MimeType:   payload.MimeType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, attachment)
	}
}
