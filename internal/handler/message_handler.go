package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"guildchat/internal/app/model"
	"guildchat/internal/app/service"
	"guildchat/internal/app/storage"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/req"
	"guildchat/internal/pkg/resp"
)

// HandleGetMessages returns the channel history oldest first. Unknown channels yield an
// empty list.
func HandleGetMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := deps.Service.History(r.Context(), currentUserID(r), chi.URLParam(r, "channelId"))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}

// HandlePostMessage appends a message and fans it out to the channel's subscribers.
func HandlePostMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.PostInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		userID := currentUserID(r)
		channelID := chi.URLParam(r, "channelId")

		if input.File != nil && deps.Storage != nil {
			if err := deps.Access.CanAccessChannel(r.Context(), userID, channelID); err != nil {
				resp.RespondErr(w, r, err)
				return
			}
			if err := verifyUploaded(r.Context(), deps.Storage, input.File); err != nil {
				resp.RespondErr(w, r, err)
				return
			}
		}

		msg, err := deps.Service.PostMessage(r.Context(), userID, channelID, input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondCreated(w, r, msg)
	}
}

// verifyUploaded checks that the referenced object exists and matches the declared size.
func verifyUploaded(ctx context.Context, store storage.Service, file *model.Attachment) error {
	info, err := store.Stat(ctx, file.Key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return errs.NewError(errs.ErrAttachmentKeyInvalid)
	}
	if err != nil {
		return errs.NewError(errs.ErrFileStorageFailed)
	}

	if info.Size != file.Size {
		return errs.NewError(errs.ErrAttachmentKeyInvalid)
	}
	return nil
}
