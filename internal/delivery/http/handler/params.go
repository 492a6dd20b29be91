package handler

import (
	"net/http"
	"strconv"

	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// uuidVar parses the named path variable. On failure it writes a 400 and
// returns false.
func uuidVar(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label, nil)
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the authenticated caller or writes a 401.
func actor(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	a, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
	}
	return a, ok
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}
