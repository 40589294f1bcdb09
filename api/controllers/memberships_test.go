package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/memberships"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
)

type testMembershipsService struct {
	joinByCodeFn func(ctx context.Context, code string, userID uuid.UUID) (*memberships.MembershipDTO, error)
	approveFn    func(ctx context.Context, groupID, userID, actingUserID uuid.UUID) (*memberships.MembershipDTO, error)
	rejectFn     func(ctx context.Context, groupID, userID, actingUserID uuid.UUID) (*memberships.MembershipDTO, error)
	requestsFn   func(ctx context.Context, groupID, actingUserID uuid.UUID) ([]memberships.MemberDTO, error)
	activeFn     func(ctx context.Context, groupID, actingUserID uuid.UUID) ([]memberships.MemberDTO, error)
}

func (s *testMembershipsService) RequestJoin(context.Context, uuid.UUID, uuid.UUID) (*memberships.MembershipDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *testMembershipsService) RequestJoinByCode(ctx context.Context, code string, userID uuid.UUID) (*memberships.MembershipDTO, error) {
	return s.joinByCodeFn(ctx, code, userID)
}

func (s *testMembershipsService) Approve(ctx context.Context, groupID, userID, actingUserID uuid.UUID) (*memberships.MembershipDTO, error) {
	return s.approveFn(ctx, groupID, userID, actingUserID)
}

func (s *testMembershipsService) Reject(ctx context.Context, groupID, userID, actingUserID uuid.UUID) (*memberships.MembershipDTO, error) {
	return s.rejectFn(ctx, groupID, userID, actingUserID)
}

func (s *testMembershipsService) IsActiveMember(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (s *testMembershipsService) ListRequests(ctx context.Context, groupID, actingUserID uuid.UUID) ([]memberships.MemberDTO, error) {
	return s.requestsFn(ctx, groupID, actingUserID)
}

func (s *testMembershipsService) ListActiveMembers(ctx context.Context, groupID, actingUserID uuid.UUID) ([]memberships.MemberDTO, error) {
	return s.activeFn(ctx, groupID, actingUserID)
}

func TestJoinGroupByInviteCode(t *testing.T) {
	userID := uuid.New()
	svc := &testMembershipsService{
		joinByCodeFn: func(ctx context.Context, code string, uid uuid.UUID) (*memberships.MembershipDTO, error) {
			if code != "ab12cd34" || uid != userID {
				t.Fatalf("unexpected join %q %s", code, uid)
			}
			return &memberships.MembershipDTO{ID: uuid.New(), UserID: uid, Status: enums.MembershipStatusPending}, nil
		},
	}
	req := newRequest(http.MethodPost, "/api/v1/groups/join", `{"invite_code":"ab12cd34"}`, userID, nil)
	resp := httptest.NewRecorder()
	JoinGroup(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	var envelope struct {
		Data memberships.MembershipDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Status != enums.MembershipStatusPending {
		t.Fatalf("unexpected status %s", envelope.Data.Status)
	}
}

func TestJoinGroupAlreadyMember(t *testing.T) {
	svc := &testMembershipsService{
		joinByCodeFn: func(context.Context, string, uuid.UUID) (*memberships.MembershipDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeAlreadyMember, "you are already a member of this group")
		},
	}
	req := newRequest(http.MethodPost, "/api/v1/groups/join", `{"invite_code":"ab12cd34"}`, uuid.New(), nil)
	resp := httptest.NewRecorder()
	JoinGroup(svc, testLogger())(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if code, _ := decodeError(t, resp); code != string(pkgerrors.CodeAlreadyMember) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestApproveMemberPassesIDs(t *testing.T) {
	actor := uuid.New()
	groupID := uuid.New()
	memberID := uuid.New()
	svc := &testMembershipsService{
		approveFn: func(ctx context.Context, gid, uid, acting uuid.UUID) (*memberships.MembershipDTO, error) {
			if gid != groupID || uid != memberID || acting != actor {
				t.Fatalf("unexpected ids %s %s %s", gid, uid, acting)
			}
			return &memberships.MembershipDTO{GroupID: gid, UserID: uid, Status: enums.MembershipStatusActive}, nil
		},
	}
	req := newRequest(http.MethodPost, "/", "", actor, map[string]string{"groupId": groupID.String(), "userId": memberID.String()})
	resp := httptest.NewRecorder()
	ApproveMember(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestRejectMemberInvalidUserParam(t *testing.T) {
	req := newRequest(http.MethodPost, "/", "", uuid.New(), map[string]string{"groupId": uuid.NewString(), "userId": "nope"})
	resp := httptest.NewRecorder()
	RejectMember(&testMembershipsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListJoinRequestsWithoutService(t *testing.T) {
	req := newRequest(http.MethodGet, "/", "", uuid.New(), map[string]string{"groupId": uuid.NewString()})
	resp := httptest.NewRecorder()
	ListJoinRequests(nil, testLogger())(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
