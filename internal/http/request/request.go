// Package request extracts the owner, path IDs, bodies and query dates from
// incoming requests, writing the error response itself when extraction fails.
package request

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/render"
)

// Owner returns the authenticated owner. Routes behind the auth middleware
// always have one; a missing owner is answered with 401.
func Owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := auth.OwnerFrom(r.Context())
	if !ok {
		render.Error(w, r, auth.ErrInvalidToken)
	}

	return ownerID, ok
}

func ID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.BadRequest(w, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}

func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		render.BadRequest(w, "invalid request body: "+err.Error())
		return false
	}

	return true
}

// Date reads an optional YYYY-MM-DD query parameter.
func Date(w http.ResponseWriter, r *http.Request, key string) (*time.Time, bool) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, true
	}

	d, err := ParseDate(key, s)
	if err != nil {
		render.Error(w, r, err)
		return nil, false
	}

	return &d, true
}

// ParseDate is calendar.Parse reporting the failing field by its wire name.
func ParseDate(field, s string) (time.Time, error) {
	d, err := calendar.Parse(s)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "expected YYYY-MM-DD, got %q", s)
	}

	return d, nil
}

// UUID parses an optional UUID body or query value.
func UUID(field, s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperr.Validation(field, "invalid id %q", s)
	}

	return &id, nil
}

// Optional is a PATCH field that tells an omitted key apart from an explicit
// null. Set is true whenever the key was present; Value is nil for null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true

	if string(b) == "null" {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	o.Value = &v

	return nil
}

// Null reports whether the key was present with a null value.
func (o Optional[T]) Null() bool {
	return o.Set && o.Value == nil
}
