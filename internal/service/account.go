package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/taskboard-service/internal/auth"
	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/maxviazov/taskboard-service/internal/repository"
	"github.com/rs/zerolog"
)

// PasswordHasher is satisfied by *auth.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer is satisfied by *auth.TokenManager.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

type accountService struct {
	users  repository.UserRepository
	tx     repository.TxManager
	hasher PasswordHasher
	tokens TokenIssuer
	paging Paging
	v      *validator.Validate
	log    zerolog.Logger
}

func NewAccountService(users repository.UserRepository, tx repository.TxManager, hasher PasswordHasher, tokens TokenIssuer, paging Paging, logger zerolog.Logger) AccountService {
	l := logger.With().Str("module", "service").Str("component", "account").Logger()
	return &accountService{users: users, tx: tx, hasher: hasher, tokens: tokens, paging: paging, v: newValidator(), log: l}
}

// Register creates an account. Anyone may sign up as a regular user; the admin flag is
// accepted from an admin actor, or from anybody while no account exists yet so a fresh
// installation can be bootstrapped.
func (s *accountService) Register(ctx context.Context, actor *Actor, in RegisterInput) (model.User, error) {
	start := time.Now()
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Address = strings.TrimSpace(in.Address)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(s.v, in); err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("registration validation failed")
		return model.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("hash password failed")
		return model.User{}, err
	}

	var out model.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if in.IsAdmin && (actor == nil || !actor.IsAdmin) {
			// Held until commit, so two concurrent sign-ups cannot both see zero users.
			if err := s.users.LockSignups(ctx); err != nil {
				return err
			}
			n, err := s.users.Count(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: only admins can register admins", ErrForbidden)
			}
		}
		created, err := s.users.Create(ctx, model.User{
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Address:      in.Address,
			Email:        in.Email,
			IsAdmin:      in.IsAdmin,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.User{}, newInvalidInput([]FieldError{{Field: "email", Message: "is already registered"}})
		}
		if !errors.Is(err, ErrForbidden) {
			s.log.Error().Err(err).Str("email", in.Email).Msg("register user failed")
		}
		return model.User{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("user_id", out.ID).Bool("is_admin", out.IsAdmin).Msg("user registered")
	return out, nil
}

// Login never tells a caller whether the email or the password was wrong.
func (s *accountService) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(s.v, in); err != nil {
		return Session{}, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		s.log.Error().Err(err).Msg("load user for login failed")
		return Session{}, err
	}
	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.log.Debug().Int64("user_id", u.ID).Msg("login rejected")
			return Session{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return Session{}, err
	}
	token, exp, err := s.tokens.Issue(auth.Identity{UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin})
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", u.ID).Msg("issue token failed")
		return Session{}, err
	}
	s.log.Info().Int64("user_id", u.ID).Msg("user logged in")
	return Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *accountService) Profile(ctx context.Context, actor Actor) (model.User, error) {
	u, err := s.users.GetByID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		// The token outlived its account.
		return model.User{}, ErrUnauthorized
	}
	return u, err
}

func (s *accountService) UpdateProfile(ctx context.Context, actor Actor, in ProfileInput) (model.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Address = strings.TrimSpace(in.Address)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(s.v, in); err != nil {
		return model.User{}, err
	}

	u := model.User{ID: actor.UserID, FirstName: in.FirstName, LastName: in.LastName, Address: in.Address, Email: in.Email}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return model.User{}, err
		}
		u.PasswordHash = hash
	}
	out, err := s.users.Update(ctx, u)
	switch {
	case errors.Is(err, repository.ErrAlreadyExists):
		return model.User{}, newInvalidInput([]FieldError{{Field: "email", Message: "is already registered"}})
	case errors.Is(err, repository.ErrNotFound):
		return model.User{}, ErrUnauthorized
	case err != nil:
		s.log.Error().Err(err).Int64("user_id", actor.UserID).Msg("update profile failed")
		return model.User{}, err
	}
	s.log.Info().Int64("user_id", out.ID).Bool("password_changed", in.Password != "").Msg("profile updated")
	return out, nil
}

func (s *accountService) ListUsers(ctx context.Context, actor Actor, page PageRequest) (Listing[model.User], error) {
	if !actor.IsAdmin {
		return Listing[model.User]{}, ErrForbidden
	}
	r := s.paging.normalize(page)
	res, err := s.users.List(ctx, s.paging.window(r))
	if err != nil {
		s.log.Error().Err(err).Int("page", r.Page).Int("page_size", r.PageSize).Msg("list users failed")
		return Listing[model.User]{}, err
	}
	return listing(r, res)
}
