package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/api/middleware"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/api/validators"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
)

func currentUser(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	return userID, nil
}

// groupScope resolves the caller and the {groupId} path parameter.
func groupScope(r *http.Request) (userID, groupID uuid.UUID, err error) {
	if userID, err = currentUser(r); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if groupID, err = validators.ParseUUIDParam(r, "groupId"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, groupID, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable")
}
