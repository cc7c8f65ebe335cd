package handler

import (
	"net/http"

	"guildchat/internal/pkg/auth/jwt"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/logx"
	"guildchat/internal/pkg/resp"
)

// requireAuth rejects anonymous requests and tokens whose user no longer exists.
func requireAuth(deps *AppDeps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := jwt.GetPayloadFromContext(r)
			if identity == nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			exists, err := deps.userExists(r.Context(), identity.UserID)
			if err != nil {
				resp.RespondErr(w, r, err)
				return
			}
			if !exists {
				logx.Warn("Token refers to an unknown user", "user_id", identity.UserID)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// currentUserID returns the id of the authenticated caller. Only valid behind requireAuth.
func currentUserID(r *http.Request) string {
	if identity := jwt.GetPayloadFromContext(r); identity != nil {
		return identity.UserID
	}
	return ""
}
