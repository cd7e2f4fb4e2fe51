package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
	appErrors "github.com/ColegioIDS/ids-attendance-api/pkg/errors"
)

type scopeUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindTeacherByUserID(ctx context.Context, userID string) (*models.Teacher, error)
	FindActiveRole(ctx context.Context, userID, roleID string) (*models.Role, error)
}

type scopeSectionRepository interface {
	FindSectionByID(ctx context.Context, id string) (*models.Section, error)
}

type scopeAssignmentRepository interface {
	HasActiveAssignment(ctx context.Context, teacherID, sectionID string) (bool, error)
}

// AuthorizedTeacher is the identity resolved by a successful scope check.
type AuthorizedTeacher struct {
	User    *models.User
	Teacher *models.Teacher
	Role    *models.Role
}

// ScopeService decides whether a role's attendance-create scope reaches a
// section, and whether the acting user is a teacher in active standing.
type ScopeService struct {
	users       scopeUserRepository
	sections    scopeSectionRepository
	assignments scopeAssignmentRepository
	logger      *zap.Logger
}

// NewScopeService constructs the service.
func NewScopeService(users scopeUserRepository, sections scopeSectionRepository, assignments scopeAssignmentRepository, logger *zap.Logger) *ScopeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeService{users: users, sections: sections, assignments: assignments, logger: logger}
}

// Authorize verifies the acting identity: the user exists and is active,
// holds a teacher profile in active standing, and holds an active assignment
// of the given role.
func (s *ScopeService) Authorize(ctx context.Context, userID, roleID string) (*AuthorizedTeacher, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.IsActive {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user account is inactive")
	}

	teacher, err := s.users.FindTeacherByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "user has no teacher profile")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
	}
	if !teacher.IsActive {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher is not in active standing")
	}

	role, err := s.users.FindActiveRole(ctx, userID, roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "role is not active for this user")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role")
	}
	if !role.AttendanceScope.Valid() {
		s.logger.Warn("role carries unsupported attendance scope",
			zap.String("role_id", role.ID),
			zap.String("scope", string(role.AttendanceScope)),
		)
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role has an unsupported attendance scope")
	}

	return &AuthorizedTeacher{User: user, Teacher: teacher, Role: role}, nil
}

// CheckSectionScope applies the role's attendance-create scope to the target
// section: `all` always passes, `grade` and `section` require the teacher to
// guide the section, `own` requires an active course assignment in it.
func (s *ScopeService) CheckSectionScope(ctx context.Context, identity *AuthorizedTeacher, sectionID string) error {
	switch identity.Role.AttendanceScope {
	case models.ScopeAll:
		return nil

	case models.ScopeGrade, models.ScopeSection:
		section, err := s.sections.FindSectionByID(ctx, sectionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.ErrScopeDenied
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
		}
		if section.GuideTeacherID == nil || *section.GuideTeacherID != identity.Teacher.ID {
			return appErrors.ErrScopeDenied
		}
		return nil

	case models.ScopeOwn:
		assigned, err := s.assignments.HasActiveAssignment(ctx, identity.Teacher.ID, sectionID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course assignment")
		}
		if !assigned {
			return appErrors.ErrScopeDenied
		}
		return nil

	default:
		return appErrors.ErrScopeDenied
	}
}
