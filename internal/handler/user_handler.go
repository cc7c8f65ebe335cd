package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guildchat/internal/app/service"
	"guildchat/internal/pkg/req"
	"guildchat/internal/pkg/resp"
)

func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := deps.Service.ListUsers(r.Context())
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, users)
	}
}

func HandleGetUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := deps.Service.GetUser(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, user)
	}
}

// HandleUpdateUser applies a partial profile update. Callers may only edit themselves.
func HandleUpdateUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.ProfileUpdate
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Service.UpdateProfile(r.Context(), currentUserID(r), chi.URLParam(r, "id"), input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, user)
	}
}
