package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"

	"github.com/openclass/portal-service/internal/models"
)

type fakeAdminRepo struct {
	admins map[string]*models.Admin
}

func (f *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	return f.admins[email], nil
}

func (f *fakeAdminRepo) Create(_ context.Context, admin *models.Admin) error {
	f.admins[admin.Email] = admin
	return nil
}

type fakeStudentRepo struct {
	students map[string]*models.Student
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	f.students[student.Email] = student
	return nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, _ string) (*models.StudentWithStats, error) {
	return nil, nil
}

func (f *fakeStudentRepo) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	return f.students[email], nil
}

func (f *fakeStudentRepo) GetAll(_ context.Context, _, _ int) ([]models.StudentWithStats, int, error) {
	return nil, 0, nil
}

func (f *fakeStudentRepo) Update(_ context.Context, _ *models.Student) error { return nil }
func (f *fakeStudentRepo) Delete(_ context.Context, _ string) error          { return nil }
func (f *fakeStudentRepo) Exists(_ context.Context, _ string) (bool, error)  { return false, nil }

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*models.Session)}
}

func (f *fakeSessionStore) Save(_ context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeSessionStore) Load(_ context.Context, token string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[token], nil
}

func (f *fakeSessionStore) Clear(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionStore) ClearExpired(_ context.Context) (int64, error) { return 0, nil }

func TestAuthService(t *testing.T) {
	Convey("Given an auth service with one admin and one student", t, func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
		So(err, ShouldBeNil)

		adminRepo := &fakeAdminRepo{admins: map[string]*models.Admin{
			"admin@x.com": {ID: "adm-1", Email: "admin@x.com", PasswordHash: string(hash)},
		}}
		studentRepo := &fakeStudentRepo{students: map[string]*models.Student{
			"a@x.com": {ID: "stu-1", Email: "a@x.com", Name: "A"},
		}}
		sessions := newFakeSessionStore()
		svc := NewAuthService(adminRepo, studentRepo, sessions, time.Hour, zerolog.Nop())
		ctx := context.Background()

		Convey("When the admin logs in with the right password", func() {
			session, err := svc.LoginAdmin(ctx, "admin@x.com", "s3cret")

			Convey("Then an admin session is opened", func() {
				So(err, ShouldBeNil)
				So(session.Token, ShouldNotBeEmpty)
				So(session.IsAdmin, ShouldBeTrue)

				got, err := svc.Authenticate(ctx, session.Token)
				So(err, ShouldBeNil)
				So(got.Email, ShouldEqual, "admin@x.com")
			})
		})

		Convey("When the admin password is wrong", func() {
			_, err := svc.LoginAdmin(ctx, "admin@x.com", "nope")
			So(err, ShouldEqual, ErrInvalidCredentials)
		})

		Convey("When the admin email is unknown", func() {
			_, err := svc.LoginAdmin(ctx, "ghost@x.com", "s3cret")

			Convey("Then the error does not reveal which field was wrong", func() {
				So(err, ShouldEqual, ErrInvalidCredentials)
			})
		})

		Convey("When a registered student logs in", func() {
			session, err := svc.LoginStudent(ctx, "  A@x.com ")

			Convey("Then the email is normalized and the session is not admin", func() {
				So(err, ShouldBeNil)
				So(session.Email, ShouldEqual, "a@x.com")
				So(session.IsAdmin, ShouldBeFalse)
			})
		})

		Convey("When an unregistered student logs in", func() {
			_, err := svc.LoginStudent(ctx, "ghost@x.com")
			So(err, ShouldEqual, ErrStudentNotFound)
		})

		Convey("When a session has expired", func() {
			expired := &models.Session{
				Token:     "tok-old",
				Email:     "a@x.com",
				ExpiresAt: time.Now().Add(-time.Minute),
			}
			So(sessions.Save(ctx, expired), ShouldBeNil)

			_, err := svc.Authenticate(ctx, "tok-old")
			So(err, ShouldEqual, ErrSessionExpired)
		})

		Convey("When authenticating an unknown token", func() {
			_, err := svc.Authenticate(ctx, "no-such-token")
			So(err, ShouldEqual, ErrNotAuthorized)
		})

		Convey("When logging out", func() {
			session, err := svc.LoginStudent(ctx, "a@x.com")
			So(err, ShouldBeNil)

			So(svc.Logout(ctx, session.Token), ShouldBeNil)

			_, err = svc.Authenticate(ctx, session.Token)
			So(err, ShouldEqual, ErrNotAuthorized)
		})

		Convey("When creating an admin", func() {
			admin, err := svc.CreateAdmin(ctx, "New@X.com", "hunter2")

			Convey("Then the password is stored only as a hash", func() {
				So(err, ShouldBeNil)
				So(admin.Email, ShouldEqual, "new@x.com")
				So(admin.PasswordHash, ShouldNotContainSubstring, "hunter2")

				_, err := svc.LoginAdmin(ctx, "new@x.com", "hunter2")
				So(err, ShouldBeNil)
			})
		})
	})
}
