package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/openclass/portal-service/internal/models"
)

// memStudentRepo is keyed by student ID, unlike the auth tests' fake,
// so that lookup-by-id and update paths can be exercised.
type memStudentRepo struct {
	students map[string]*models.Student
	updates  int
}

func newMemStudentRepo(students ...*models.Student) *memStudentRepo {
	repo := &memStudentRepo{students: make(map[string]*models.Student)}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (m *memStudentRepo) Create(_ context.Context, student *models.Student) error {
	m.students[student.ID] = student
	return nil
}

func (m *memStudentRepo) GetByID(_ context.Context, id string) (*models.StudentWithStats, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, nil
	}
	return &models.StudentWithStats{Student: *s}, nil
}

func (m *memStudentRepo) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	for _, s := range m.students {
		if s.Email == email {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memStudentRepo) GetAll(_ context.Context, _, _ int) ([]models.StudentWithStats, int, error) {
	out := make([]models.StudentWithStats, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, models.StudentWithStats{Student: *s})
	}
	return out, len(out), nil
}

func (m *memStudentRepo) Update(_ context.Context, student *models.Student) error {
	m.students[student.ID] = student
	m.updates++
	return nil
}

func (m *memStudentRepo) Delete(_ context.Context, id string) error {
	delete(m.students, id)
	return nil
}

func (m *memStudentRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.students[id]
	return ok, nil
}

func TestStudentService_UpdateStudent(t *testing.T) {
	Convey("Given a student service with two students", t, func() {
		repo := newMemStudentRepo(
			&models.Student{ID: "stu-1", Name: "Alice", Email: "alice@x.com"},
			&models.Student{ID: "stu-2", Name: "Bob", Email: "bob@x.com"},
		)
		svc := NewStudentService(repo, newFakeLedgerRepo(), zerolog.Nop())
		ctx := context.Background()

		Convey("Updating the name keeps the email", func() {
			updated, err := svc.UpdateStudent(ctx, "stu-1", &models.CreateStudentRequest{Name: "Alicia"})
			So(err, ShouldBeNil)
			So(updated.Name, ShouldEqual, "Alicia")
			So(updated.Email, ShouldEqual, "alice@x.com")
			So(repo.updates, ShouldEqual, 1)
		})

		Convey("Updating the email normalizes it", func() {
			updated, err := svc.UpdateStudent(ctx, "stu-1", &models.CreateStudentRequest{Email: "  Alice@New.com "})
			So(err, ShouldBeNil)
			So(updated.Email, ShouldEqual, "alice@new.com")
			So(updated.Name, ShouldEqual, "Alice")
		})

		Convey("Changing the email to another student's fails", func() {
			_, err := svc.UpdateStudent(ctx, "stu-1", &models.CreateStudentRequest{Email: "bob@x.com"})
			So(err, ShouldEqual, ErrStudentExists)
			So(repo.updates, ShouldEqual, 0)
		})

		Convey("Keeping the same email is not a conflict", func() {
			updated, err := svc.UpdateStudent(ctx, "stu-1", &models.CreateStudentRequest{Name: "A", Email: "alice@x.com"})
			So(err, ShouldBeNil)
			So(updated.Email, ShouldEqual, "alice@x.com")
		})

		Convey("An unknown student returns a not-found error", func() {
			_, err := svc.UpdateStudent(ctx, "missing", &models.CreateStudentRequest{Name: "X"})
			So(err, ShouldEqual, ErrStudentNotFound)
		})
	})
}

func TestStudentService_GetStudent(t *testing.T) {
	Convey("Given a student with a ledger record", t, func() {
		repo := newMemStudentRepo(&models.Student{ID: "stu-1", Name: "Alice", Email: "alice@x.com"})
		ledger := newFakeLedgerRepo()
		ledger.records["alice@x.com"] = models.EvaluationRecord{StudentID: "alice@x.com", TotalScore: 87.5}
		svc := NewStudentService(repo, ledger, zerolog.Nop())
		ctx := context.Background()

		Convey("The ledger total is merged into the stats", func() {
			got, err := svc.GetStudent(ctx, "stu-1")
			So(err, ShouldBeNil)
			So(got.TotalScore, ShouldEqual, 87.5)
		})

		Convey("A student without a ledger record keeps a zero total", func() {
			So(repo.Create(ctx, &models.Student{ID: "stu-2", Name: "Bob", Email: "bob@x.com"}), ShouldBeNil)
			got, err := svc.GetStudent(ctx, "stu-2")
			So(err, ShouldBeNil)
			So(got.TotalScore, ShouldEqual, 0)
		})
	})
}
