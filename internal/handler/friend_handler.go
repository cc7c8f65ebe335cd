package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guildchat/internal/app/service"
	"guildchat/internal/pkg/req"
	"guildchat/internal/pkg/resp"
)

func HandleSendFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.FriendRequestInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Service.SendFriendRequest(r.Context(), currentUserID(r), input.TargetUserID); err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleRespondFriendRequest accepts or declines the pending request from {fromUserId}.
func HandleRespondFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.FriendResponseInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		res, err := deps.Service.RespondFriendRequest(r.Context(), currentUserID(r), chi.URLParam(r, "fromUserId"), input.Action)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, res)
	}
}
