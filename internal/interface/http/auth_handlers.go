package http

import (
	"net/http"

	domuser "example.com/storefront/internal/domain/user"
	authuc "example.com/storefront/internal/usecase/auth"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Phone       string `json:"phone" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type updateProfileRequest struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	Phone     *string `json:"phone" validate:"omitempty,numeric,len=10"`
	Address   *string `json:"address"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := a.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.mapSession(sess))
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req authuc.RegisterInput
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := a.authSvc.Register(r.Context(), req)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.mapSession(sess))
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if u := a.authSvc.User(); u != nil {
		a.orderSvc.Reset(u.ID)
	}
	if err := a.authSvc.Logout(r.Context()); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	msg, err := a.authSvc.ForgotPassword(r.Context(), req.Phone, req.NewPassword)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.mapSession(a.authSvc.Session()))
}

func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	u, err := a.authSvc.UpdateProfile(r.Context(), domuser.ProfileUpdate{
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if u == nil {
		handleDomainError(w, domuser.ErrAuthRequired)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(u))
}

func (a *API) mapSession(sess *domuser.Session) map[string]any {
	if sess == nil {
		return map[string]any{"authenticated": false, "is_admin": false}
	}
	out := map[string]any{
		"authenticated": true,
		"is_admin":      sess.User.IsAdmin,
		"user":          mapUser(&sess.User),
	}
	if exp, ok := a.authSvc.TokenExpiry(); ok {
		out["token_expires_at"] = exp
	}
	return out
}
