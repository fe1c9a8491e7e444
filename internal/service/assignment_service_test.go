package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alqalam-institute/registry-api/internal/models"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

type fakeAssignmentRepo struct {
	assigned map[string]map[string]*float64 // termID:studentID -> subjectID -> grade
	inserted [][]string
}

func (f *fakeAssignmentRepo) key(termID, studentID string) string {
	return termID + ":" + studentID
}

func (f *fakeAssignmentRepo) ListByStudentTerm(ctx context.Context, termID, studentID string) ([]models.AssignmentDetail, error) {
	var out []models.AssignmentDetail
	for id, grade := range f.assigned[f.key(termID, studentID)] {
		out = append(out, models.AssignmentDetail{SubjectID: id, Grade: grade})
	}
	return out, nil
}

func (f *fakeAssignmentRepo) SubjectIDs(ctx context.Context, termID, studentID string) (map[string]bool, error) {
	out := make(map[string]bool)
	for id := range f.assigned[f.key(termID, studentID)] {
		out[id] = true
	}
	return out, nil
}

func (f *fakeAssignmentRepo) InsertBatch(ctx context.Context, termID, studentID string, subjectIDs []string) error {
	if f.assigned == nil {
		f.assigned = make(map[string]map[string]*float64)
	}
	k := f.key(termID, studentID)
	if f.assigned[k] == nil {
		f.assigned[k] = make(map[string]*float64)
	}
	for _, id := range subjectIDs {
		f.assigned[k][id] = nil
	}
	f.inserted = append(f.inserted, subjectIDs)
	return nil
}

func (f *fakeAssignmentRepo) DeleteBatch(ctx context.Context, termID, studentID string, subjectIDs []string) error {
	for _, id := range subjectIDs {
		delete(f.assigned[f.key(termID, studentID)], id)
	}
	return nil
}

func (f *fakeAssignmentRepo) UpdateGrade(ctx context.Context, termID, studentID, subjectID string, grade *float64) (bool, error) {
	subjects, ok := f.assigned[f.key(termID, studentID)]
	if !ok {
		return false, nil
	}
	if _, ok := subjects[subjectID]; !ok {
		return false, nil
	}
	subjects[subjectID] = grade
	return true, nil
}

type fakeStudentLookup struct {
	students map[string]models.StudentDetail
}

func (f *fakeStudentLookup) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := f.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

type fakeRegistrationExists struct {
	registered map[string]bool
}

func (f *fakeRegistrationExists) Exists(ctx context.Context, termID, studentID string) (bool, error) {
	return f.registered[termID+":"+studentID], nil
}

type fakeOfferedSet struct {
	offered map[string]bool
}

func (f *fakeOfferedSet) OfferedSubjectIDs(ctx context.Context, termID string) (map[string]bool, error) {
	return f.offered, nil
}

type fakeDepartmentSubjects struct {
	linked map[string]bool
}

func (f *fakeDepartmentSubjects) SubjectIDsByDepartment(ctx context.Context, departmentID string) (map[string]bool, error) {
	return f.linked, nil
}

type assignmentFixture struct {
	svc           *AssignmentService
	repo          *fakeAssignmentRepo
	registrations *fakeRegistrationExists
	offerings     *fakeOfferedSet
	departments   *fakeDepartmentSubjects
}

func newAssignmentFixture() *assignmentFixture {
	repo := &fakeAssignmentRepo{}
	terms := &fakeTermLookup{terms: map[string]models.Term{"term-1": {ID: "term-1"}}}
	students := &fakeStudentLookup{students: map[string]models.StudentDetail{
		"stu-1": {Student: models.Student{ID: "stu-1", DepartmentID: "dept-1"}},
	}}
	registrations := &fakeRegistrationExists{registered: map[string]bool{"term-1:stu-1": true}}
	offerings := &fakeOfferedSet{offered: map[string]bool{}}
	departments := &fakeDepartmentSubjects{linked: map[string]bool{}}

	svc := NewAssignmentService(repo, terms, students, registrations, offerings, departments, nil, nil)
	return &assignmentFixture{svc: svc, repo: repo, registrations: registrations, offerings: offerings, departments: departments}
}

func (fx *assignmentFixture) offerAndLink(subjectIDs ...string) {
	for _, id := range subjectIDs {
		fx.offerings.offered[id] = true
		fx.departments.linked[id] = true
	}
}

func TestAssignmentServiceChecksTermBeforeStudent(t *testing.T) {
	fx := newAssignmentFixture()
	fx.offerAndLink("subj-1")

	_, err := fx.svc.Assign(context.Background(), "term-9", "stu-9", AssignSubjectsRequest{SubjectIDs: []string{"subj-1"}})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	require.Contains(t, err.Error(), "term")
	require.NotContains(t, err.Error(), "student")
}

func TestAssignmentServiceRequiresRegistration(t *testing.T) {
	fx := newAssignmentFixture()
	fx.offerAndLink("subj-1")
	fx.registrations.registered = map[string]bool{}

	_, err := fx.svc.Assign(context.Background(), "term-1", "stu-1", AssignSubjectsRequest{SubjectIDs: []string{"subj-1"}})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrEligibility))
	require.Empty(t, fx.repo.inserted)
}

func TestAssignmentServiceRequiresOffering(t *testing.T) {
	fx := newAssignmentFixture()
	fx.departments.linked["subj-1"] = true

	_, err := fx.svc.Assign(context.Background(), "term-1", "stu-1", AssignSubjectsRequest{SubjectIDs: []string{"subj-1"}})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrEligibility))
}

func TestAssignmentServiceRequiresDepartmentLink(t *testing.T) {
	fx := newAssignmentFixture()
	fx.offerings.offered["subj-1"] = true

	_, err := fx.svc.Assign(context.Background(), "term-1", "stu-1", AssignSubjectsRequest{SubjectIDs: []string{"subj-1"}})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrEligibility))
}

func TestAssignmentServiceOneBadSubjectRejectsWholeBatch(t *testing.T) {
	fx := newAssignmentFixture()
	fx.offerAndLink("subj-1", "subj-2")
	fx.offerings.offered["subj-3"] = false

	_, err := fx.svc.Assign(context.Background(), "term-1", "stu-1", AssignSubjectsRequest{
		SubjectIDs: []string{"subj-1", "subj-2", "subj-3"},
	})
	require.Error(t, err)
	require.Empty(t, fx.repo.inserted)
}

func TestAssignmentServiceEnforcesSubjectCap(t *testing.T) {
	fx := newAssignmentFixture()
	var all []string
	for i := 0; i < models.MaxSubjectsPerTerm+1; i++ {
		id := fmt.Sprintf("subj-%d", i)
		fx.offerAndLink(id)
		all = append(all, id)
	}

	// Exactly at the cap is fine.
	result, err := fx.svc.Assign(context.Background(), "term-1", "stu-1", AssignSubjectsRequest{
		SubjectIDs: all[:models.MaxSubjectsPerTerm],
	})
	require.NoError(t, err)
	require.Len(t, result.Assigned, models.MaxSubjectsPerTerm)

	// One more over the cap rejects the whole batch.
	_, err = fx.svc.Assign(context.Background(), "term-1", "stu-1", AssignSubjectsRequest{
		SubjectIDs: all[models.MaxSubjectsPerTerm:],
	})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrEligibility))
}

func TestAssignmentServiceAlreadyAssignedDoesNotCountAgainstCap(t *testing.T) {
	fx := newAssignmentFixture()
	var all []string
	for i := 0; i < models.MaxSubjectsPerTerm; i++ {
		id := fmt.Sprintf("subj-%d", i)
		fx.offerAndLink(id)
		all = append(all, id)
	}

	_, err := fx.svc.Assign(context.Background(), "term-1", "stu-1", AssignSubjectsRequest{SubjectIDs: all})
	require.NoError(t, err)

	// Re-requesting the same full set skips everything instead of tripping
	// the cap.
	result, err := fx.svc.Assign(context.Background(), "term-1", "stu-1", AssignSubjectsRequest{SubjectIDs: all})
	require.NoError(t, err)
	require.Empty(t, result.Assigned)
	require.Len(t, result.Skipped, models.MaxSubjectsPerTerm)
}

func TestAssignmentServiceSetGradeValidatesRange(t *testing.T) {
	fx := newAssignmentFixture()
	fx.offerAndLink("subj-1")
	_, err := fx.svc.Assign(context.Background(), "term-1", "stu-1", AssignSubjectsRequest{SubjectIDs: []string{"subj-1"}})
	require.NoError(t, err)

	bad := 101.0
	err = fx.svc.SetGrade(context.Background(), "term-1", "stu-1", "subj-1", SetGradeRequest{Grade: &bad})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))

	good := 88.5
	require.NoError(t, fx.svc.SetGrade(context.Background(), "term-1", "stu-1", "subj-1", SetGradeRequest{Grade: &good}))

	// nil clears the grade.
	require.NoError(t, fx.svc.SetGrade(context.Background(), "term-1", "stu-1", "subj-1", SetGradeRequest{}))
}

func TestAssignmentSurvivesOfferingUnassign(t *testing.T) {
	fx := newAssignmentFixture()
	fx.offerAndLink("subj-1")

	grade := 84.0
	_, err := fx.svc.Assign(context.Background(), "term-1", "stu-1", AssignSubjectsRequest{SubjectIDs: []string{"subj-1"}})
	require.NoError(t, err)
	require.NoError(t, fx.svc.SetGrade(context.Background(), "term-1", "stu-1", "subj-1", SetGradeRequest{Grade: &grade}))

	// Withdrawing the subject from the term catalogue only blocks further
	// assignment; the graded record stays.
	catalogue := &fakeOfferingRepo{offered: map[string]bool{"term-1:subj-1": true}}
	terms := &fakeTermLookup{terms: map[string]models.Term{"term-1": {ID: "term-1"}}}
	subjects := &fakeSubjectExists{known: map[string]bool{"subj-1": true}}
	offeringSvc := NewOfferingService(catalogue, terms, subjects, nil, nil)

	require.NoError(t, offeringSvc.Unassign(context.Background(), "term-1", OfferingBatchRequest{SubjectIDs: []string{"subj-1"}}))
	require.Empty(t, catalogue.offered)

	assigned, err := fx.svc.ListByStudentTerm(context.Background(), "term-1", "stu-1")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	require.Equal(t, "subj-1", assigned[0].SubjectID)
	require.NotNil(t, assigned[0].Grade)
	require.Equal(t, grade, *assigned[0].Grade)
}

func TestAssignmentServiceSetGradeMissingAssignment(t *testing.T) {
	fx := newAssignmentFixture()

	grade := 70.0
	err := fx.svc.SetGrade(context.Background(), "term-1", "stu-1", "subj-9", SetGradeRequest{Grade: &grade})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
