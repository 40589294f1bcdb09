package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/api/responses"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/api/validators"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/contributions"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/logger"
)

type submitContributionBody struct {
	Amount      decimal.Decimal `json:"amount" validate:"decimal_positive"`
	Description string          `json:"description" validate:"max=1000"`
	ProofRef    *string         `json:"proof_ref" validate:"omitempty,max=512"`
}

// SubmitContribution records a contribution for the caller: approved when it
// carries no proof, pending admin review otherwise.
func SubmitContribution(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("contributions service"))
			return
		}
		userID, groupID, err := groupScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitContributionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contribution, err := svc.Submit(r.Context(), contributions.SubmitInput{
			GroupID:     groupID,
			UserID:      userID,
			Amount:      body.Amount,
			Description: validators.SanitizeString(body.Description, 1000),
			ProofRef:    body.ProofRef,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, contribution)
	}
}

// ListContributions returns the approved contributions of a group.
func ListContributions(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return listContributions(svc, logg, contributions.Service.ListApproved)
}

// ListPendingContributions returns contributions awaiting review; admin only.
func ListPendingContributions(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return listContributions(svc, logg, contributions.Service.ListPending)
}

func ApproveContribution(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return reviewContribution(svc, logg, contributions.Service.Approve)
}

func RejectContribution(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return reviewContribution(svc, logg, contributions.Service.Reject)
}

func listContributions(svc contributions.Service, logg *logger.Logger, list func(contributions.Service, context.Context, uuid.UUID, uuid.UUID) ([]contributions.ContributionDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("contributions service"))
			return
		}
		userID, groupID, err := groupScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := list(svc, r.Context(), groupID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []contributions.ContributionDTO{}
		}
		responses.WriteSuccess(w, items)
	}
}

func reviewContribution(svc contributions.Service, logg *logger.Logger, review func(contributions.Service, context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*contributions.ContributionDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("contributions service"))
			return
		}
		actingUserID, groupID, err := groupScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contributionID, err := validators.ParseUUIDParam(r, "contributionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contribution, err := review(svc, r.Context(), groupID, contributionID, actingUserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contribution)
	}
}
