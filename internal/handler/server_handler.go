package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guildchat/internal/app/service"
	"guildchat/internal/pkg/req"
	"guildchat/internal/pkg/resp"
)

func HandleListServers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		servers, err := deps.Service.ListServers(r.Context())
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, servers)
	}
}

// HandleCreateServer creates a server owned by the caller, with a default text channel.
func HandleCreateServer(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.CreateServerInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		server, err := deps.Service.CreateServer(r.Context(), currentUserID(r), input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondCreated(w, r, server)
	}
}

func HandleGetServer(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		server, err := deps.Service.GetServer(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, server)
	}
}

func HandleUpdateServer(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.ServerUpdate
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		server, err := deps.Service.UpdateServer(r.Context(), currentUserID(r), chi.URLParam(r, "id"), input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, server)
	}
}

func HandleJoinServer(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		server, err := deps.Service.JoinServer(r.Context(), currentUserID(r), chi.URLParam(r, "id"))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, server)
	}
}

func HandleCreateChannel(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.CreateChannelInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		channel, err := deps.Service.CreateChannel(r.Context(), currentUserID(r), chi.URLParam(r, "id"), input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondCreated(w, r, channel)
	}
}
