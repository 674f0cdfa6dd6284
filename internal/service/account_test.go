package service

import (
	"context"
	"errors"
	"testing"

	"github.com/maxviazov/taskboard-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountSvc(st *store, issuer *stubIssuer) AccountService {
	return NewAccountService(userRepo{st}, txRepo{st}, plainHasher{}, issuer, testPaging, testLogger)
}

func validRegistration() RegisterInput {
	return RegisterInput{
		FirstName:       " Ada ",
		LastName:        "Lovelace",
		Address:         "London",
		Email:           " Ada@Example.com ",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestAccountService_Register(t *testing.T) {
	st := newStore()
	svc := newAccountSvc(st, &stubIssuer{})

	u, err := svc.Register(context.Background(), nil, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "hashed:secret1", u.PasswordHash)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, 1, st.txCalls)

	_, err = svc.Register(context.Background(), nil, validRegistration())
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []FieldError{{Field: "email", Message: "is already registered"}}, FieldErrors(err))
}

func TestAccountService_Register_Validation(t *testing.T) {
	svc := newAccountSvc(newStore(), &stubIssuer{})

	cases := []struct {
		name      string
		mutate    func(*RegisterInput)
		wantField string
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = "  " }, "first_name"},
		{"missing address", func(in *RegisterInput) { in.Address = "" }, "address"},
		{"bad email", func(in *RegisterInput) { in.Email = "nope" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "abc", "abc" }, "password"},
		{"confirm mismatch", func(in *RegisterInput) { in.ConfirmPassword = "other1" }, "confirm_password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegistration()
			tc.mutate(&in)
			_, err := svc.Register(context.Background(), nil, in)
			require.ErrorIs(t, err, ErrInvalidInput)
			fields := FieldErrors(err)
			require.NotEmpty(t, fields)
			assert.Equal(t, tc.wantField, fields[0].Field)
		})
	}
}

func TestAccountService_Register_AdminFlag(t *testing.T) {
	st := newStore()
	svc := newAccountSvc(st, &stubIssuer{})
	ctx := context.Background()

	first := validRegistration()
	first.IsAdmin = true
	admin, err := svc.Register(ctx, nil, first)
	require.NoError(t, err, "the first account may bootstrap itself as admin")
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, 1, st.signupLocks, "bootstrap check must run under the signup lock")

	second := validRegistration()
	second.Email = "eve@example.com"
	second.IsAdmin = true
	_, err = svc.Register(ctx, nil, second)
	assert.ErrorIs(t, err, ErrForbidden)

	user := actorOf(st.addUser("Bob", false))
	_, err = svc.Register(ctx, &user, second)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 3, st.signupLocks)

	adminActor := actorOf(admin)
	created, err := svc.Register(ctx, &adminActor, second)
	require.NoError(t, err)
	assert.True(t, created.IsAdmin)
	assert.Equal(t, 3, st.signupLocks, "admins creating admins skip the bootstrap lock")
}

func TestAccountService_Register_LockFailureAborts(t *testing.T) {
	st := newStore()
	// A TxManager that does not mark the store as in a transaction makes LockSignups fail.
	svc := NewAccountService(userRepo{st}, noTx{}, plainHasher{}, &stubIssuer{}, testPaging, testLogger)

	in := validRegistration()
	in.IsAdmin = true
	_, err := svc.Register(context.Background(), nil, in)
	require.ErrorIs(t, err, repository.ErrTxRequired)
	assert.Empty(t, st.users)

	in.IsAdmin = false
	_, err = svc.Register(context.Background(), nil, in)
	require.NoError(t, err, "regular sign-ups never take the lock")
}

func TestAccountService_Login(t *testing.T) {
	st := newStore()
	issuer := &stubIssuer{}
	svc := newAccountSvc(st, issuer)
	u := st.addUser("Grace", true)

	sess, err := svc.Login(context.Background(), LoginInput{Email: "GRACE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "token-for-grace@example.com", sess.Token)
	assert.Equal(t, u.ID, sess.User.ID)
	require.Len(t, issuer.issued, 1)
	assert.True(t, issuer.issued[0].IsAdmin)

	_, err = svc.Login(context.Background(), LoginInput{Email: "grace@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(context.Background(), LoginInput{Email: "", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAccountService_Profile(t *testing.T) {
	st := newStore()
	svc := newAccountSvc(st, &stubIssuer{})
	u := st.addUser("Linus", false)
	ctx := context.Background()

	got, err := svc.Profile(ctx, actorOf(u))
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = svc.Profile(ctx, Actor{UserID: 404})
	assert.ErrorIs(t, err, ErrUnauthorized)

	updated, err := svc.UpdateProfile(ctx, actorOf(u), ProfileInput{
		FirstName: "Linus", LastName: "T", Address: "Portland", Email: "linus@kernel.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "Portland", updated.Address)
	assert.Equal(t, "hashed:secret1", updated.PasswordHash, "empty password keeps the old one")

	updated, err = svc.UpdateProfile(ctx, actorOf(u), ProfileInput{
		FirstName: "Linus", LastName: "T", Address: "Portland", Email: "linus@kernel.org",
		Password: "newpass", ConfirmPassword: "newpass",
	})
	require.NoError(t, err)
	assert.Equal(t, "hashed:newpass", updated.PasswordHash)

	other := st.addUser("Ken", false)
	_, err = svc.UpdateProfile(ctx, actorOf(other), ProfileInput{
		FirstName: "Ken", LastName: "T", Address: "NJ", Email: "linus@kernel.org",
	})
	assert.Equal(t, []FieldError{{Field: "email", Message: "is already registered"}}, FieldErrors(err))

	_, err = svc.UpdateProfile(ctx, actorOf(other), ProfileInput{
		FirstName: "Ken", LastName: "T", Address: "NJ", Email: "ken@example.com",
		Password: "newpass", ConfirmPassword: "typo",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAccountService_ListUsers(t *testing.T) {
	st := newStore()
	svc := newAccountSvc(st, &stubIssuer{})
	admin := st.addUser("Root", true)
	for _, n := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		st.addUser(n, false)
	}

	_, err := svc.ListUsers(context.Background(), Actor{UserID: 2}, PageRequest{})
	assert.ErrorIs(t, err, ErrForbidden)

	res, err := svc.ListUsers(context.Background(), actorOf(admin), PageRequest{Page: 2, PageSize: 3, Siblings: -1})
	require.NoError(t, err)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, 3, st.lastPage.Limit)
	assert.Equal(t, 3, st.lastPage.Offset)
	assert.Equal(t, 8, res.Pagination.TotalItems)
	assert.Equal(t, 3, res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasPrevious)
	assert.True(t, res.Pagination.HasNext)

	st.err = errors.New("db down")
	_, err = svc.ListUsers(context.Background(), actorOf(admin), PageRequest{})
	assert.EqualError(t, err, "db down")
}
