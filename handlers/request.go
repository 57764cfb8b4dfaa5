package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aquasync/backend/middleware"
	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/rbac"
	"github.com/aquasync/backend/services"
	"github.com/aquasync/backend/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// decodeBody reads a JSON body into dst and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return utils.ValidateStruct(dst)
}

// pathUUID parses the chi URL parameter name.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return utils.ParseUUID(chi.URLParam(r, name), name)
}

// queryUUID parses an optional UUID query parameter.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := utils.ParseUUID(raw, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// actor builds the service caller from the authenticated principal.
func actor(r *http.Request) services.Actor {
	return services.Actor{
		UserID:   middleware.GetUserIDFromContext(r.Context()),
		Reviewer: rbac.FromContext(r.Context()).HasPermission(models.NewPermission(models.ResourceWaterReadings, models.ActionApprove)),
	}
}
