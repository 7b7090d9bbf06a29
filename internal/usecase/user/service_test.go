package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cryptoinsight/domain"
)

type fakeUserRepo struct {
	seq   int64
	users map[int64]domain.User
}

var _ domain.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]domain.User)}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Insert(ctx context.Context, u *domain.User) error {
	f.seq++
	u.ID = f.seq
	u.CreatedAt = time.Now()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, userIDs []int64) ([]domain.User, error) {
	res := make([]domain.User, 0, len(userIDs))
	for _, id := range userIDs {
		if u, ok := f.users[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

func (f *fakeUserRepo) Fetch(ctx context.Context, cursor int64, limit int64) ([]domain.User, error) {
	var res []domain.User
	for _, u := range f.users {
		if u.ID > cursor && int64(len(res)) < limit {
			res = append(res, u)
		}
	}
	return res, nil
}

func (f *fakeUserRepo) SetBanned(ctx context.Context, id int64, banned bool) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsBanned = banned
	f.users[id] = u
	return nil
}

var testSecret = []byte("test-secret")

func newTestService() (*service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewService(repo, testSecret, time.Hour), repo
}

func TestRegister(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	password := faker.Password()
	err := svc.Register(ctx, faker.Name(), "alice", password)
	require.NoError(t, err)

	u, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	// password is stored hashed
	assert.NotEqual(t, password, u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, faker.Name(), "alice", "secret1"))

	err := svc.Register(ctx, faker.Name(), "alice", "secret2")
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegisterEmptyFields(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Register(context.Background(), "", "alice", "secret")
	assert.True(t, errors.Is(err, domain.ErrBadParamInput))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, faker.Name(), "alice", "secret1"))

	token, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.NotZero(t, claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, faker.Name(), "alice", "secret1"))

	_, err := svc.Login(ctx, "alice", "wrong")
	assert.True(t, errors.Is(err, domain.ErrBadParamInput))
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Login(context.Background(), "ghost", "whatever")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLoginBanned(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, faker.Name(), "alice", "secret1"))
	u, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, repo.SetBanned(ctx, u.ID, true))

	_, err = svc.Login(ctx, "alice", "secret1")
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestEditPassword(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, faker.Name(), "alice", "secret1"))
	u, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, svc.EditPassword(ctx, u.ID, "secret1", "secret2"))

	_, err = svc.Login(ctx, "alice", "secret1")
	assert.Error(t, err)
	_, err = svc.Login(ctx, "alice", "secret2")
	assert.NoError(t, err)
}

func TestEditPasswordWrongOld(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, faker.Name(), "alice", "secret1"))
	u, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)

	err = svc.EditPassword(ctx, u.ID, "wrong", "secret2")
	assert.True(t, errors.Is(err, domain.ErrBadParamInput))
}

func TestParseTokenRejectsForgedToken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, faker.Name(), "alice", "secret1"))
	token, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("other-secret"))
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestParseTokenExpired(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testSecret, -time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, faker.Name(), "alice", "secret1"))
	token, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}
