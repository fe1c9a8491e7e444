package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/alqalam-institute/registry-api/internal/models"
	"github.com/alqalam-institute/registry-api/pkg/config"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

type portalStudentLookup interface {
	FindByLogin(ctx context.Context, email, registrationID string) (*models.StudentDetail, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type portalTermLookup interface {
	FindActive(ctx context.Context) (*models.Term, error)
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type portalRegistrationLookup interface {
	ListTermsByStudent(ctx context.Context, studentID string) ([]models.Term, error)
}

type portalAssignmentLookup interface {
	ListByStudentTerm(ctx context.Context, termID, studentID string) ([]models.AssignmentDetail, error)
}

type portalScheduleLookup interface {
	ScheduleByTerm(ctx context.Context, termID string) ([]models.ScheduleSlot, error)
}

// PortalLoginRequest authenticates a student by email plus registration ID
// and password.
type PortalLoginRequest struct {
	Email          string `json:"email" validate:"required,email"`
	RegistrationID string `json:"registration_id" validate:"required"`
	Password       string `json:"password" validate:"required"`
}

// PublicSchedule is the cached public schedule payload.
type PublicSchedule struct {
	TermID   string              `json:"term_id"`
	TermName string              `json:"term_name"`
	Days     []PublicScheduleDay `json:"days"`
}

// PublicScheduleDay groups schedule slots under one teaching day.
type PublicScheduleDay struct {
	Day   models.DayOfWeek      `json:"day"`
	Slots []models.ScheduleSlot `json:"slots"`
}

// PortalService serves the public student surface: login with dashboard,
// and the anonymous schedule listing backed by a short redis cache.
type PortalService struct {
	students      portalStudentLookup
	terms         portalTermLookup
	registrations portalRegistrationLookup
	assignments   portalAssignmentLookup
	schedule      portalScheduleLookup
	cache         *redis.Client
	cfg           config.PortalConfig
	validator     *validator.Validate
	logger        *zap.Logger
	metrics       *MetricsService
}

// SetMetrics attaches a metrics service so schedule cache hits and misses
// are counted.
func (s *PortalService) SetMetrics(m *MetricsService) {
	s.metrics = m
}

// NewPortalService creates a new portal service instance. The cache client
// may be nil; the schedule is then served uncached.
func NewPortalService(
	students portalStudentLookup,
	terms portalTermLookup,
	registrations portalRegistrationLookup,
	assignments portalAssignmentLookup,
	schedule portalScheduleLookup,
	cache *redis.Client,
	cfg config.PortalConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *PortalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortalService{
		students:      students,
		terms:         terms,
		registrations: registrations,
		assignments:   assignments,
		schedule:      schedule,
		cache:         cache,
		cfg:           cfg,
		validator:     validate,
		logger:        logger,
	}
}

// Login authenticates a student and returns the dashboard with a session
// token. Lookup failures and bad passwords produce the same response so the
// endpoint does not leak which field was wrong.
func (s *PortalService) Login(ctx context.Context, req PortalLoginRequest) (*models.PortalDashboard, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	student, err := s.students.FindByLogin(ctx, strings.ToLower(strings.TrimSpace(req.Email)), strings.TrimSpace(req.RegistrationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up student")
	}
	if bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
	}

	token, err := s.issueToken(student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue session token")
	}

	dashboard, err := s.buildDashboard(ctx, student)
	if err != nil {
		return nil, err
	}
	dashboard.Token = token

	s.logger.Info("portal login", zap.String("student_id", student.ID))
	return dashboard, nil
}

// Dashboard rebuilds the dashboard for an authenticated session.
func (s *PortalService) Dashboard(ctx context.Context, studentID string) (*models.PortalDashboard, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session student no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.buildDashboard(ctx, student)
}

// ParseToken validates a portal session token and returns its claims.
func (s *PortalService) ParseToken(tokenString string) (*models.PortalClaims, error) {
	claims := &models.PortalClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.TokenSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired session token")
	}
	return claims, nil
}

// Schedule returns the public schedule of the active (or requested) term,
// served from redis when the cached copy is still fresh.
func (s *PortalService) Schedule(ctx context.Context, termID string) (*PublicSchedule, error) {
	var term *models.Term
	var err error
	if termID == "" {
		term, err = s.terms.FindActive(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "no active term")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active term")
		}
	} else {
		term, err = s.terms.FindByID(ctx, termID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "term does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
		}
	}

	cacheKey := "portal:schedule:" + term.ID
	if s.cache != nil {
		if raw, cacheErr := s.cache.Get(ctx, cacheKey).Result(); cacheErr == nil {
			var cached PublicSchedule
			if json.Unmarshal([]byte(raw), &cached) == nil {
				if s.metrics != nil {
					s.metrics.RecordCacheLookup(true)
				}
				return &cached, nil
			}
		}
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(false)
		}
	}

	slots, err := s.schedule.ScheduleByTerm(ctx, term.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	payload := &PublicSchedule{TermID: term.ID, TermName: term.Name}
	byDay := make(map[models.DayOfWeek][]models.ScheduleSlot)
	for _, slot := range slots {
		byDay[slot.DayOfWeek] = append(byDay[slot.DayOfWeek], slot)
	}
	for _, day := range models.TeachingDays {
		if daySlots, ok := byDay[day]; ok {
			payload.Days = append(payload.Days, PublicScheduleDay{Day: day, Slots: daySlots})
		}
	}

	if s.cache != nil {
		if raw, marshalErr := json.Marshal(payload); marshalErr == nil {
			if cacheErr := s.cache.Set(ctx, cacheKey, raw, s.cfg.ScheduleCacheTTL).Err(); cacheErr != nil {
				s.logger.Warn("failed to cache schedule", zap.Error(cacheErr))
			}
		}
	}
	return payload, nil
}

func (s *PortalService) issueToken(student *models.StudentDetail) (string, error) {
	now := time.Now()
	claims := models.PortalClaims{
		StudentID:      student.ID,
		RegistrationID: student.RegistrationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   student.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenExpiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.TokenSecret))
}

func (s *PortalService) buildDashboard(ctx context.Context, student *models.StudentDetail) (*models.PortalDashboard, error) {
	terms, err := s.registrations.ListTermsByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student terms")
	}

	dashboard := &models.PortalDashboard{
		FullName:       student.FullName,
		RegistrationID: student.RegistrationID,
		Email:          student.Email,
		Department: models.DepartmentRef{
			ID:   student.DepartmentID,
			Name: student.DepartmentName,
			Code: student.DepartmentCode,
		},
		AcademicRecord: []models.AcademicTerm{},
	}

	for _, term := range terms {
		assignments, err := s.assignments.ListByStudentTerm(ctx, term.ID, student.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term assignments")
		}

		record := models.AcademicTerm{
			TermID:    term.ID,
			TermName:  term.Name,
			StartDate: term.StartDate.Format(dateLayout),
			EndDate:   term.EndDate.Format(dateLayout),
			Courses:   []models.AcademicCourse{},
		}
		for _, assignment := range assignments {
			record.Courses = append(record.Courses, models.AcademicCourse{
				SubjectID:   assignment.SubjectID,
				Code:        assignment.Code,
				Title:       assignment.Name,
				CreditHours: assignment.Units,
				Grade:       assignment.Grade,
			})
		}

		dashboard.AcademicRecord = append(dashboard.AcademicRecord, record)
		if term.IsActive {
			current := record
			dashboard.CurrentTerm = &current
		}
	}
	return dashboard, nil
}
