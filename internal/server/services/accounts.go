// Package services contains server-side business logic. AccountService
// handles account creation, credential checks, and issuing/refreshing JWTs
// plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/dbx"
	"github.com/dmitrijs2005/clinicauth/internal/server/auth"
	"github.com/dmitrijs2005/clinicauth/internal/server/config"
	"github.com/dmitrijs2005/clinicauth/internal/server/models"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Session is what a successful sign-in hands back to the client.
type Session struct {
	AccountID    string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type AccountService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	throttle                     *Throttle
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
	newID                        func() string
	now                          func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                           db,
		repomanager:                  m,
		throttle:                     NewThrottle(cfg.LoginAttemptsPerMinute, cfg.LoginBurst),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   bcrypt.DefaultCost,
		newID:                        uuid.NewString,
		now:                          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}

// CreateAccount registers email and signs the new account in.
func (s *AccountService) CreateAccount(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, common.ErrorInvalidEmail
	}
	if utf8.RuneCountInString(password) < common.MinPasswordLength {
		return nil, common.ErrorWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{ID: s.newID(), Email: email, PasswordHash: hash}

	var session *Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Accounts(tx).Create(ctx, account); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return err
			}
			return fmt.Errorf("error creating account: %w", err)
		}
		var genErr error
		session, genErr = s.generateSession(ctx, account, tx)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// VerifyCredentials checks email and password. Unknown accounts and wrong
// passwords both yield common.ErrorUnauthorized after the same bcrypt work.
func (s *AccountService) VerifyCredentials(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if !s.throttle.Allow(email) {
		return nil, common.ErrorThrottled
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}
	if account.Disabled {
		return nil, common.ErrorDisabled
	}

	return s.generateSession(ctx, account, s.db)
}

// RefreshSession validates a refresh token, rotates it transactionally, and
// returns a fresh session. Expired tokens yield ErrRefreshTokenExpired;
// unknown ones ErrorUnauthorized.
func (s *AccountService) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		_ = repo.Delete(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, token.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if account.Disabled {
		return nil, common.ErrorDisabled
	}

	var session *Session
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		session, genErr = s.generateSession(ctx, account, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// SignOut revokes refreshToken if it belongs to accountID. Unknown tokens
// are not an error.
func (s *AccountService) SignOut(ctx context.Context, accountID, refreshToken string) error {
	if err := s.repomanager.RefreshTokens(s.db).Revoke(ctx, accountID, refreshToken); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// SetDisabled blocks or unblocks sign-in for email. Existing access tokens
// stay valid until they expire; refreshes are refused.
func (s *AccountService) SetDisabled(ctx context.Context, email string, disabled bool) error {
	return s.repomanager.Accounts(s.db).SetDisabled(ctx, normalizeEmail(email), disabled)
}

// AccountIDFromToken validates an access token.
func (s *AccountService) AccountIDFromToken(token string) (string, error) {
	return auth.GetAccountIDFromToken(token, s.jwtSecret)
}

// --- helpers below ---

func (s *AccountService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("clinicauth-dummy"), s.bcryptCost)
	})
	return s.dummyHash
}

func (s *AccountService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *AccountService) generateSession(ctx context.Context, account *models.Account, tx dbx.DBTX) (*Session, error) {
	access, err := auth.GenerateToken(account.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, account.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &Session{
		AccountID:    account.ID,
		Email:        account.Email,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(s.accessTokenValidityDuration),
	}, nil
}
