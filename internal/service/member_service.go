package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

type membershipRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.ClassMembership, error)
	FindByID(ctx context.Context, id string) (*models.ClassMembership, error)
	Delete(ctx context.Context, id string) error
}

type teacherChecker interface {
	IsTeacher(ctx context.Context, classID, userID string) (bool, error)
}

// MemberService lists and manages class rosters.
type MemberService struct {
	memberships membershipRepository
	profiles    profileDirectory
	teachers    teacherChecker
	logger      *zap.Logger
}

// NewMemberService constructs the service.
func NewMemberService(memberships membershipRepository, profiles profileDirectory, teachers teacherChecker, logger *zap.Logger) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{memberships: memberships, profiles: profiles, teachers: teachers, logger: logger}
}

// List returns the class roster in join order with user profiles attached.
func (s *MemberService) List(ctx context.Context, classID string) ([]models.ClassMembership, error) {
	members, err := s.memberships.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}

	if err := attachProfiles(ctx, s.profiles, members,
		func(m *models.ClassMembership) string { return m.UserID },
		func(m *models.ClassMembership, p *models.Profile) { m.User = p },
	); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach member profiles")
	}

	return members, nil
}

// Remove drops a membership. Teachers may remove anyone; students may only
// leave the class themselves.
func (s *MemberService) Remove(ctx context.Context, membershipID, callerID string) error {
	membership, err := s.memberships.FindByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "membership not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load membership")
	}

	if membership.UserID != callerID {
		isTeacher, err := s.teachers.IsTeacher(ctx, membership.ClassID, callerID)
		if err != nil {
			return err
		}
		if !isTeacher {
			return appErrors.Clone(appErrors.ErrForbidden, "only class teachers can remove other members")
		}
	}

	if err := s.memberships.Delete(ctx, membershipID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove membership")
	}

	s.logger.Info("membership removed",
		zap.String("membership_id", membershipID),
		zap.String("class_id", membership.ClassID),
	)
	return nil
}
