package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/api/responses"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/api/validators"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/memberships"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/logger"
)

// ListGroupMembers returns the active members of a group.
func ListGroupMembers(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return listMembers(svc, logg, memberships.Service.ListActiveMembers)
}

// ListJoinRequests returns pending and rejected requests; admin only.
func ListJoinRequests(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return listMembers(svc, logg, memberships.Service.ListRequests)
}

func ApproveMember(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return reviewMember(svc, logg, memberships.Service.Approve)
}

func RejectMember(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return reviewMember(svc, logg, memberships.Service.Reject)
}

func listMembers(svc memberships.Service, logg *logger.Logger, list func(memberships.Service, context.Context, uuid.UUID, uuid.UUID) ([]memberships.MemberDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("memberships service"))
			return
		}
		userID, groupID, err := groupScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		members, err := list(svc, r.Context(), groupID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if members == nil {
			members = []memberships.MemberDTO{}
		}
		responses.WriteSuccess(w, members)
	}
}

func reviewMember(svc memberships.Service, logg *logger.Logger, review func(memberships.Service, context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*memberships.MembershipDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("memberships service"))
			return
		}
		actingUserID, groupID, err := groupScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		membership, err := review(svc, r.Context(), groupID, memberID, actingUserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, membership)
	}
}
