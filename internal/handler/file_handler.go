package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"guildchat/internal/app/model"
	"guildchat/internal/app/storage"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/logx"
	"guildchat/internal/pkg/req"
	"guildchat/internal/pkg/resp"
)

// PresignUploadInput defines the JSON input structure for generating upload URL.
type PresignUploadInput struct {
	ChannelID string `json:"channelId" validate:"required"`
	FileName  string `json:"fileName" validate:"required,max=255"`
	MimeType  string `json:"mimeType" validate:"required"`
	FileSize  int64  `json:"fileSize" validate:"required,gt=0"`
}

// channelOfKey returns the channel an attachment key is scoped to.
func channelOfKey(key string) (string, bool) {
	channelID, rest, ok := strings.Cut(key, "/")
	if !ok || channelID == "" || rest == "" {
		return "", false
	}
	return channelID, true
}

// authorizeKey checks that the caller may read the channel the key belongs to.
func authorizeKey(deps *AppDeps, r *http.Request) (string, *errs.CustomError) {
	if deps.Storage == nil {
		return "", errs.NewError(errs.ErrAttachmentsDisabled)
	}

	key := r.URL.Query().Get("k")
	channelID, ok := channelOfKey(key)
	if !ok {
		return "", errs.NewError(errs.ErrInvalidParams)
	}

	if err := deps.Access.CanAccessChannel(r.Context(), currentUserID(r), channelID); err != nil {
		return "", errs.From(err)
	}
	return key, nil
}

// HandlePresignUploadURL creates an HTTP HandlerFunc to generate a time-limited,
// pre-signed URL for file upload, scoped to a channel the caller can post to.
func HandlePresignUploadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAttachmentsDisabled))
			return
		}

		var input PresignUploadInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Access.CanAccessChannel(r.Context(), currentUserID(r), input.ChannelID); err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		if err := model.ValidateFileSize(input.FileSize); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		if err := model.ValidateFileType(input.FileName, input.MimeType); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		fileExt := strings.ToLower(filepath.Ext(input.FileName))
		fileKey := model.AttachmentKeyPrefix(input.ChannelID) + uuid.NewString() + fileExt

		url, err := deps.Storage.PresignUpload(r.Context(), fileKey, input.MimeType, input.FileSize, model.PresignedURLDuration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"presignedUrl": url,
			"file": model.Attachment{
				Key:      fileKey,
				Name:     input.FileName,
				MimeType: input.MimeType,
				Size:     input.FileSize,
			},
		})
	}
}

// HandlePresignDownloadURL redirects to a time-limited download URL for ?k=<key>.
func HandlePresignDownloadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, customErr := authorizeKey(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		url, err := deps.Storage.PresignDownload(r.Context(), key, model.PresignedURLDuration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}

// HandleDeleteFile removes an uploaded object, typically one that was never attached to a
// message.
func HandleDeleteFile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, customErr := authorizeKey(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if _, err := deps.Storage.Stat(r.Context(), key); err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrAttachmentKeyInvalid))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		if err := deps.Storage.Delete(r.Context(), key); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		logx.Info("Attachment deleted", "key", key, "user_id", currentUserID(r))
		resp.RespondSuccess(w, r, nil)
	}
}
