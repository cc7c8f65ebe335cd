/*
Package handler provides HTTP handler functions for user authentication.
*/
package handler

import (
	"net/http"

	"guildchat/internal/app/model"
	"guildchat/internal/app/service"
	"guildchat/internal/pkg/auth/jwt"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/logx"
	"guildchat/internal/pkg/req"
	"guildchat/internal/pkg/resp"
)

// respondWithToken issues a session token for user and sends it alongside the user record.
func respondWithToken(w http.ResponseWriter, r *http.Request, deps *AppDeps, user model.User, created bool) {
	payload := &jwt.Payload{
		UserID:   user.ID,
		Username: user.Username,
	}

	token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.SessionExpiration)
	if err != nil {
		logx.Error(err, "failed to generate token", "user_id", user.ID)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	data := map[string]any{
		"token": token,
		"user":  user,
	}
	if created {
		resp.RespondCreated(w, r, data)
		return
	}
	resp.RespondSuccess(w, r, data)
}

// HandleRegister creates a new account and logs it in.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Service.Register(r.Context(), input)
		if err != nil {
			if errs.IsCode(err, errs.ErrEmailAlreadyExists) {
				logx.Warn("registration conflict: email already exists")
			}
			resp.RespondErr(w, r, err)
			return
		}

		respondWithToken(w, r, deps, user, true)
	}
}

// HandleLogin verifies user credentials and issues a JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Service.Login(r.Context(), input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		respondWithToken(w, r, deps, user, false)
	}
}

// HandleLogout marks the caller Offline. Tokens are stateless and stay valid until expiry.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Service.Logout(r.Context(), currentUserID(r)); err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}
