package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alqalam-institute/registry-api/internal/models"
	"github.com/alqalam-institute/registry-api/pkg/config"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

type fakePortalStudents struct {
	students map[string]models.StudentDetail // by id
}

func (f *fakePortalStudents) FindByLogin(ctx context.Context, email, registrationID string) (*models.StudentDetail, error) {
	for _, s := range f.students {
		if s.Email == email && s.RegistrationID == registrationID {
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakePortalStudents) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := f.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

type fakeActiveTerm struct {
	active *models.Term
}

func (f *fakeActiveTerm) FindActive(ctx context.Context) (*models.Term, error) {
	if f.active == nil {
		return nil, sql.ErrNoRows
	}
	return f.active, nil
}

func (f *fakeActiveTerm) FindByID(ctx context.Context, id string) (*models.Term, error) {
	if f.active != nil && f.active.ID == id {
		return f.active, nil
	}
	return nil, sql.ErrNoRows
}

type fakeStudentTerms struct {
	terms []models.Term
}

func (f *fakeStudentTerms) ListTermsByStudent(ctx context.Context, studentID string) ([]models.Term, error) {
	return f.terms, nil
}

type fakePortalAssignments struct {
	byTerm map[string][]models.AssignmentDetail
}

func (f *fakePortalAssignments) ListByStudentTerm(ctx context.Context, termID, studentID string) ([]models.AssignmentDetail, error) {
	return f.byTerm[termID], nil
}

type fakeSchedule struct {
	slots []models.ScheduleSlot
}

func (f *fakeSchedule) ScheduleByTerm(ctx context.Context, termID string) ([]models.ScheduleSlot, error) {
	return f.slots, nil
}

func newPortalFixture(t *testing.T) *PortalService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	students := &fakePortalStudents{students: map[string]models.StudentDetail{
		"stu-1": {
			Student: models.Student{
				ID:             "stu-1",
				RegistrationID: "R-1001",
				FullName:       "Aisha Karim",
				Email:          "aisha@example.edu",
				DepartmentID:   "dept-1",
				PasswordHash:   string(hash),
			},
			DepartmentName: "Sharia",
			DepartmentCode: "SHARIA",
		},
	}}
	terms := &fakeActiveTerm{active: &models.Term{ID: "term-1", Name: "1447 Autumn", IsActive: true}}
	grade := 91.0
	registrations := &fakeStudentTerms{terms: []models.Term{
		{
			ID:        "term-1",
			Name:      "1447 Autumn",
			StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
			IsActive:  true,
		},
	}}
	assignments := &fakePortalAssignments{byTerm: map[string][]models.AssignmentDetail{
		"term-1": {{SubjectID: "subj-1", Code: "FIQH101", Name: "Fiqh I", Units: 3, Grade: &grade}},
	}}
	schedule := &fakeSchedule{slots: []models.ScheduleSlot{
		{ID: "entry-1", DayOfWeek: models.DaySaturday, StartTime: "08:30", EndTime: "10:00", SubjectCode: "FIQH101"},
	}}

	cfg := config.PortalConfig{
		TokenSecret:      "test-secret",
		TokenExpiration:  time.Hour,
		ScheduleCacheTTL: time.Minute,
	}
	return NewPortalService(students, terms, registrations, assignments, schedule, nil, cfg, nil, nil)
}

func TestPortalServiceLoginBuildsDashboard(t *testing.T) {
	svc := newPortalFixture(t)

	dashboard, err := svc.Login(context.Background(), PortalLoginRequest{
		Email:          "aisha@example.edu",
		RegistrationID: "R-1001",
		Password:       "secret-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, dashboard.Token)
	require.Equal(t, "Aisha Karim", dashboard.FullName)
	require.Len(t, dashboard.AcademicRecord, 1)
	require.NotNil(t, dashboard.CurrentTerm)
	require.Equal(t, "FIQH101", dashboard.CurrentTerm.Courses[0].Code)

	claims, err := svc.ParseToken(dashboard.Token)
	require.NoError(t, err)
	require.Equal(t, "stu-1", claims.StudentID)
}

func TestPortalServiceLoginWrongPassword(t *testing.T) {
	svc := newPortalFixture(t)

	_, err := svc.Login(context.Background(), PortalLoginRequest{
		Email:          "aisha@example.edu",
		RegistrationID: "R-1001",
		Password:       "wrong",
	})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestPortalServiceLoginUnknownStudent(t *testing.T) {
	svc := newPortalFixture(t)

	_, err := svc.Login(context.Background(), PortalLoginRequest{
		Email:          "ghost@example.edu",
		RegistrationID: "R-9999",
		Password:       "secret-pass",
	})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestPortalServiceParseTokenRejectsGarbage(t *testing.T) {
	svc := newPortalFixture(t)

	_, err := svc.ParseToken("not-a-token")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestPortalServiceScheduleGroupsByDay(t *testing.T) {
	svc := newPortalFixture(t)

	schedule, err := svc.Schedule(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "term-1", schedule.TermID)
	require.Len(t, schedule.Days, 1)
	require.Equal(t, models.DaySaturday, schedule.Days[0].Day)
}

func TestPortalServiceScheduleLoadsRequestedTerm(t *testing.T) {
	svc := newPortalFixture(t)

	schedule, err := svc.Schedule(context.Background(), "term-1")
	require.NoError(t, err)
	require.Equal(t, "term-1", schedule.TermID)
	require.Equal(t, "1447 Autumn", schedule.TermName)
}

func TestPortalServiceScheduleUnknownTerm(t *testing.T) {
	svc := newPortalFixture(t)

	_, err := svc.Schedule(context.Background(), "term-9")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
