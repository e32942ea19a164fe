package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vmatveev/registerd/internal/common"
	"github.com/vmatveev/registerd/internal/dbx"
	"github.com/vmatveev/registerd/internal/server/models"
	registersrepo "github.com/vmatveev/registerd/internal/server/repositories/registers"
	usersrepo "github.com/vmatveev/registerd/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db
}

// fakeUsersRepo keeps created users in a map so SignUp/Authenticate can be
// exercised end to end without a database.
type fakeUsersRepo struct {
	byName map[string]*models.User
	nextID int64

	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byName: make(map[string]*models.User), nextID: 1}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.Username]; ok {
		return nil, common.ErrUsernameTaken
	}
	u.ID = f.nextID
	f.nextID++
	f.byName[u.Username] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

type fakeRegistersRepo struct {
	created []*models.Register
	nextID  int64

	createErr error
	getOut    *models.Register
	getErr    error
	selectOut []*models.Register
	selectErr error
}

func (f *fakeRegistersRepo) Create(ctx context.Context, r *models.Register) (*models.Register, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	r.ID = f.nextID
	f.created = append(f.created, r)
	return r, nil
}

func (f *fakeRegistersRepo) GetByID(ctx context.Context, userID, id int64) (*models.Register, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeRegistersRepo) SelectByUser(ctx context.Context, userID int64) ([]*models.Register, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.selectOut, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRegistersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository         { return m.u }
func (m *fakeRepoManager) Registers(db dbx.DBTX) registersrepo.Repository { return m.r }

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *UserService {
	t.Helper()
	s, err := NewUserService(db, rm)
	if err != nil {
		t.Fatalf("NewUserService error: %v", err)
	}
	return s
}

// --- tests ---

func TestSignUpThenAuthenticate_Roundtrip(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: newFakeUsersRepo()}
	s := newUserService(t, db, rm)

	user, err := s.SignUp(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("SignUp error: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected assigned user id")
	}
	if user.PasswordHash == "s3cret" {
		t.Fatal("password must not be stored in plaintext")
	}

	id, err := s.Authenticate(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if id != user.ID {
		t.Errorf("Authenticate id = %d, want %d", id, user.ID)
	}
}

func TestSignUp_UsernameTaken(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: newFakeUsersRepo()}
	s := newUserService(t, db, rm)

	if _, err := s.SignUp(context.Background(), "alice", "one"); err != nil {
		t.Fatalf("first SignUp error: %v", err)
	}
	_, err := s.SignUp(context.Background(), "alice", "two")
	if !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("want common.ErrUsernameTaken, got %v", err)
	}
}

func TestSignUp_StoreFault(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	repo := newFakeUsersRepo()
	repo.createErr = errors.New("db down")
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	_, err := s.SignUp(context.Background(), "alice", "pw")
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("want common.ErrInternal, got %v", err)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: newFakeUsersRepo()}
	s := newUserService(t, db, rm)

	if _, err := s.SignUp(context.Background(), "alice", "right"); err != nil {
		t.Fatalf("SignUp error: %v", err)
	}

	_, err := s.Authenticate(context.Background(), "alice", "wrong")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("want common.ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_UnknownUserIndistinguishable(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: newFakeUsersRepo()}
	s := newUserService(t, db, rm)

	if _, err := s.SignUp(context.Background(), "alice", "right"); err != nil {
		t.Fatalf("SignUp error: %v", err)
	}

	_, missErr := s.Authenticate(context.Background(), "ghost", "whatever")
	_, wrongErr := s.Authenticate(context.Background(), "alice", "wrong")

	if !errors.Is(missErr, common.ErrInvalidCredentials) {
		t.Fatalf("unknown user: want common.ErrInvalidCredentials, got %v", missErr)
	}
	// both failure modes must present identically to the caller
	if missErr != wrongErr {
		t.Errorf("lookup miss (%v) and wrong password (%v) must be indistinguishable", missErr, wrongErr)
	}
}

func TestAuthenticate_StoreFault(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	repo := newFakeUsersRepo()
	repo.getErr = errors.New("db down")
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	_, err := s.Authenticate(context.Background(), "alice", "pw")
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("want common.ErrInternal, got %v", err)
	}
	if errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatal("store fault must not look like bad credentials")
	}
}

func TestAuthenticate_MalformedStoredHash(t *testing.T) {
	db := newSQLMockDB(t)
	defer db.Close()

	repo := newFakeUsersRepo()
	repo.byName["alice"] = &models.User{ID: 1, Username: "alice", PasswordHash: "garbage"}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	_, err := s.Authenticate(context.Background(), "alice", "pw")
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("malformed hash: want common.ErrInternal, got %v", err)
	}
}
