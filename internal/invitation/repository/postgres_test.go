package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"workspace-control-plane/backend/internal/authz"
	"workspace-control-plane/backend/internal/invitation/domain"
	memberdomain "workspace-control-plane/backend/internal/member/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testInvitation() *domain.Invitation {
	return &domain.Invitation{
		ID:             "inv-1",
		OrganizationID: "org-1",
		Email:          "invitee@acme.test",
		RoleID:         "role-member",
		MembershipType: authz.MembershipTypeTeam,
		Token:          "tok-abc",
		InvitedBy:      "user-admin",
		CreatedAt:      testNow,
		ExpiresAt:      testNow.Add(7 * 24 * time.Hour),
	}
}

func invitationRows(invs ...*domain.Invitation) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "organization_id", "team_id", "email", "role_id", "membership_type",
		"token", "invited_by", "created_at", "expires_at", "accepted_at",
	})
	for _, inv := range invs {
		var teamID any
		if inv.TeamID != "" {
			teamID = inv.TeamID
		}
		var acceptedAt any
		if inv.AcceptedAt != nil {
			acceptedAt = *inv.AcceptedAt
		}
		rows.AddRow(inv.ID, inv.OrganizationID, teamID, inv.Email, inv.RoleID,
			string(inv.MembershipType), inv.Token, inv.InvitedBy, inv.CreatedAt, inv.ExpiresAt, acceptedAt)
	}
	return rows
}

func TestGetByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	want := testInvitation()
	mock.ExpectQuery(`SELECT .+ FROM invitations WHERE token = \$1`).
		WithArgs("tok-abc").
		WillReturnRows(invitationRows(want))

	got, err := repo.GetByToken(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got == nil || got.ID != want.ID || got.Email != want.Email {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.TeamID != "" {
		t.Errorf("TeamID = %q, want empty for NULL column", got.TeamID)
	}
	if got.AcceptedAt != nil {
		t.Error("AcceptedAt should be nil for NULL column")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetByTokenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM invitations WHERE token = \$1`).
		WithArgs("missing").
		WillReturnRows(invitationRows())

	got, err := repo.GetByToken(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for missing row", got)
	}
}

func TestInsertIfNoPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	inv := testInvitation()
	pattern := regexp.QuoteMeta("INSERT INTO invitations")

	mock.ExpectExec(pattern).WillReturnResult(sqlmock.NewResult(0, 1))
	inserted, err := repo.InsertIfNoPending(context.Background(), inv, testNow)
	if err != nil {
		t.Fatalf("InsertIfNoPending: %v", err)
	}
	if !inserted {
		t.Error("first insert should report inserted=true")
	}

	// A pending row for the same (email, org) makes the guard skip the insert.
	mock.ExpectExec(pattern).WillReturnResult(sqlmock.NewResult(0, 0))
	inserted, err = repo.InsertIfNoPending(context.Background(), inv, testNow)
	if err != nil {
		t.Fatalf("InsertIfNoPending: %v", err)
	}
	if inserted {
		t.Error("blocked insert should report inserted=false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListPendingTeamScope(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	teamInv := testInvitation()
	teamInv.TeamID = "team-1"

	mock.ExpectQuery(`AND \(team_id = \$3 OR team_id IS NULL\)`).
		WithArgs("org-1", testNow, "team-1").
		WillReturnRows(invitationRows(teamInv))

	got, err := repo.ListPending(context.Background(), "org-1", "team-1", true, testNow)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(got) != 1 || got[0].TeamID != "team-1" {
		t.Errorf("got %d rows, want the team-scoped row", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListPendingOrgWideOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(`AND team_id IS NULL`).
		WithArgs("org-1", testNow).
		WillReturnRows(invitationRows())

	got, err := repo.ListPending(context.Background(), "org-1", "", false, testNow)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d rows, want 0", len(got))
	}
}

const acceptUpdatePattern = `UPDATE invitations SET accepted_at = \$1 WHERE token = \$2 AND accepted_at IS NULL`

func testOrgMember() *memberdomain.OrgMember {
	return &memberdomain.OrgMember{
		ID:             "om-1",
		UserID:         "user-new",
		OrganizationID: "org-1",
		RoleID:         "role-member",
		MembershipType: authz.MembershipTypeTeam,
		CreatedAt:      testNow,
	}
}

func TestAcceptAndCreateMembers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	om := testOrgMember()
	mock.ExpectBegin()
	mock.ExpectExec(acceptUpdatePattern).
		WithArgs(testNow, "tok-abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO organization_members`).
		WithArgs(om.ID, om.UserID, om.OrganizationID, om.RoleID, om.MembershipType, om.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	accepted, err := repo.AcceptAndCreateMembers(context.Background(), "tok-abc", testNow, om, nil)
	if err != nil {
		t.Fatalf("AcceptAndCreateMembers: %v", err)
	}
	if !accepted {
		t.Error("expected accepted=true for pending row")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAcceptAndCreateMembersTeamScoped(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	om := testOrgMember()
	tm := &memberdomain.TeamMember{
		ID:             "tm-1",
		UserID:         "user-new",
		TeamID:         "team-1",
		OrganizationID: "org-1",
		RoleID:         "role-member",
		CreatedAt:      testNow,
	}
	mock.ExpectBegin()
	mock.ExpectExec(acceptUpdatePattern).
		WithArgs(testNow, "tok-abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO organization_members`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO team_members`).
		WithArgs(tm.ID, tm.UserID, tm.TeamID, tm.OrganizationID, tm.RoleID, tm.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	accepted, err := repo.AcceptAndCreateMembers(context.Background(), "tok-abc", testNow, om, tm)
	if err != nil {
		t.Fatalf("AcceptAndCreateMembers: %v", err)
	}
	if !accepted {
		t.Error("expected accepted=true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAcceptAndCreateMembersAlreadyAccepted(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// The accepted_at IS NULL guard matches no row; nothing is inserted.
	mock.ExpectBegin()
	mock.ExpectExec(acceptUpdatePattern).
		WithArgs(testNow, "tok-abc").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	accepted, err := repo.AcceptAndCreateMembers(context.Background(), "tok-abc", testNow, testOrgMember(), nil)
	if err != nil {
		t.Fatalf("AcceptAndCreateMembers: %v", err)
	}
	if accepted {
		t.Error("expected accepted=false for already-accepted row")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAcceptAndCreateMembersRollsBackOnMemberFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(acceptUpdatePattern).
		WithArgs(testNow, "tok-abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO organization_members`).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "organization_members_user_id_organization_id_key"`))
	mock.ExpectRollback()

	accepted, err := repo.AcceptAndCreateMembers(context.Background(), "tok-abc", testNow, testOrgMember(), nil)
	if err == nil {
		t.Fatal("expected the membership insert failure to surface")
	}
	if accepted {
		t.Error("a failed insert must not report accepted=true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeleteByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	pattern := `DELETE FROM invitations WHERE token = \$1`
	mock.ExpectExec(pattern).WithArgs("tok-abc").WillReturnResult(sqlmock.NewResult(0, 1))
	deleted, err := repo.DeleteByToken(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("DeleteByToken: %v", err)
	}
	if !deleted {
		t.Error("expected deleted=true")
	}

	mock.ExpectExec(pattern).WithArgs("tok-abc").WillReturnResult(sqlmock.NewResult(0, 0))
	deleted, err = repo.DeleteByToken(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("DeleteByToken: %v", err)
	}
	if deleted {
		t.Error("expected deleted=false for missing row")
	}
}
