/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for resolving the
caller's identity, upgrading the HTTP connection to WebSocket, and handing the session over
to the chat Manager.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"guildchat/internal/pkg/auth/jwt"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/logx"
	"guildchat/internal/pkg/resp"
)

// HandleWebSocket upgrades the request and serves the session until it disconnects.
// A valid token (header or ?token=) binds the session to its user; without one the
// session stays anonymous and can only receive global broadcasts.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userID string
		if identity := jwt.GetPayloadFromContext(r); identity != nil {
			exists, err := deps.userExists(r.Context(), identity.UserID)
			if err != nil {
				resp.RespondErr(w, r, err)
				return
			}
			if !exists {
				logx.Warn("WebSocket request rejected: token user does not exist", "user_id", identity.UserID)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}
			userID = identity.UserID
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		s := deps.Manager.Connect(r.Context(), userID)
		deps.Manager.Serve(s, conn)
	}
}
