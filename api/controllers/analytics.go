package controllers

import (
	"net/http"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/api/responses"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/analytics"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/logger"
)

// GroupProgress returns the completion view of a group.
func GroupProgress(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("analytics service"))
			return
		}
		userID, groupID, err := groupScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		progress, err := svc.GroupProgress(r.Context(), groupID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, progress)
	}
}

// GroupAnalytics returns the full statistics report of a group.
func GroupAnalytics(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("analytics service"))
			return
		}
		userID, groupID, err := groupScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.GroupAnalytics(r.Context(), groupID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
