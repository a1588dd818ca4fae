package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/little-shop/internal/domain/user"
)

type registerRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
	Role          string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	City    string `json:"city"`
	State   string `json:"state"`
	Enabled bool   `json:"enabled"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    u.Role.String(),
		City:    u.City,
		State:   u.State,
		Enabled: u.Enabled,
	}
}

func parseRole(s string) (user.Role, bool) {
	switch s {
	case "", "customer":
		return user.RoleCustomer, true
	case "merchant":
		return user.RoleMerchant, true
	case "admin":
		return user.RoleAdmin, true
	default:
		return 0, false
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	role, ok := parseRole(req.Role)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "unknown role "+req.Role)
		return
	}

	u, err := h.users.Register(r.Context(), user.Registration{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		Role:          role,
	})
	if err != nil {
		var vErr *user.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusUnprocessableEntity, vErr.Error())
		case errors.Is(err, user.ErrEmailTaken):
			writeError(w, http.StatusConflict, "e-mail already in use")
		default:
			writeInternalError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "incorrect email address or password")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) listMerchants(w http.ResponseWriter, r *http.Request) {
	h.writeMerchants(w, r, false)
}

func (h *Handler) adminMerchants(w http.ResponseWriter, r *http.Request) {
	h.writeMerchants(w, r, true)
}

func (h *Handler) writeMerchants(w http.ResponseWriter, r *http.Request, includeDisabled bool) {
	merchants, err := h.users.Merchants(r.Context(), includeDisabled)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	out := make([]userResponse, len(merchants))
	for i := range merchants {
		out[i] = toUserResponse(&merchants[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) enableMerchant(w http.ResponseWriter, r *http.Request) {
	h.setMerchantEnabled(w, r, true)
}

func (h *Handler) disableMerchant(w http.ResponseWriter, r *http.Request) {
	h.setMerchantEnabled(w, r, false)
}

func (h *Handler) setMerchantEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	err := h.users.SetEnabled(r.Context(), r.PathValue("id"), enabled)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "merchant not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
