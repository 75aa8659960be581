package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intdb "pickupcore/internal/db"
	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"
	"pickupcore/internal/repositories"
	"pickupcore/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
var ErrInvalidCredentials = errors.New("username atau password salah")

// ErrInvalidToken is returned for missing, malformed or expired tokens.
var ErrInvalidToken = errors.New("token tidak valid")

// AuthService issues and verifies staff tokens. The driver id in a token is
// the ownership identity used by dispatch.
type AuthService struct {
	DB     *sql.DB
	Secret []byte
	TTL    time.Duration
	Clock  Clock
}

func (s AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 12 * time.Hour
}

// Login checks the password and returns a signed token for the account.
func (s AuthService) Login(ctx context.Context, username, password string) (string, models.StaffAccount, error) {
	user := utils.NormalizeKey(username)
	if user == "" || password == "" {
		return "", models.StaffAccount{}, domain.ValidationError{Field: "username", Msg: "username and password are required"}
	}
	acct, err := repositories.StaffRepository{DB: pickDB(s.DB)}.GetByUsername(ctx, user)
	if domain.IsNotFound(err) {
		return "", models.StaffAccount{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", models.StaffAccount{}, wrapStore(err, "load account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", models.StaffAccount{}, ErrInvalidCredentials
	}

	token, err := s.IssueToken(acct)
	if err != nil {
		return "", models.StaffAccount{}, domain.InternalError{Msg: "gagal membuat token", Err: err}
	}
	return token, acct, nil
}

func (s AuthService) IssueToken(acct models.StaffAccount) (string, error) {
	if len(s.Secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	claims := jwt.MapClaims{
		"staff_id": acct.ID,
		"role":     acct.Role,
		"exp":      s.Clock.Now().Add(s.ttl()).Unix(),
	}
	if acct.DriverID != nil {
		claims["driver_id"] = *acct.DriverID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ParseToken verifies raw and returns the caller identity it carries.
func (s AuthService) ParseToken(raw string) (domain.RequestContext, error) {
	if len(s.Secret) == 0 || raw == "" {
		return domain.RequestContext{}, ErrInvalidToken
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Clock.Now),
	)
	if err != nil {
		return domain.RequestContext{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	rc := domain.RequestContext{}
	if v, ok := claims["staff_id"].(float64); ok {
		rc.StaffID = int64(v)
	}
	if v, ok := claims["driver_id"].(float64); ok {
		rc.DriverID = int64(v)
	}
	rc.Role, _ = claims["role"].(string)
	if rc.StaffID <= 0 || rc.Role == "" {
		return domain.RequestContext{}, ErrInvalidToken
	}
	return rc, nil
}

// CreateStaff stores a new login with a bcrypt hash. Driver logins get their
// driver record in the same transaction.
func (s AuthService) CreateStaff(ctx context.Context, in models.StaffInput) (models.StaffAccount, error) {
	in.Username = utils.NormalizeKey(in.Username)
	in.Role = utils.NormalizeKey(in.Role)
	if err := validateInput(in); err != nil {
		return models.StaffAccount{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.StaffAccount{}, domain.InternalError{Msg: "gagal meng-hash password", Err: err}
	}

	acct := models.StaffAccount{Username: in.Username, PasswordHash: string(hash), Role: in.Role}
	err = intdb.WithTx(ctx, pickDB(s.DB), func(tx *sql.Tx) error {
		if in.Role == domain.RoleDriver {
			id, err := repositories.DriverRepository{DB: tx}.Insert(ctx, models.Driver{
				Name:   utils.NormalizeSpace(in.DriverName),
				Phone:  utils.NormalizeSpace(in.DriverPhone),
				Active: true,
			})
			if err != nil {
				return fmt.Errorf("insert driver: %w", err)
			}
			acct.DriverID = &id
		}
		id, err := repositories.StaffRepository{DB: tx}.Insert(ctx, acct)
		if err != nil {
			return err
		}
		acct.ID = id
		return nil
	})
	if err != nil {
		return models.StaffAccount{}, wrapStore(err, "create staff")
	}
	utils.LogEvent("", "auth", "create_staff", fmt.Sprintf("username=%s role=%s", acct.Username, acct.Role))
	return acct, nil
}

// EnsureAdmin creates the bootstrap admin login when it does not exist yet.
func (s AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := repositories.StaffRepository{DB: pickDB(s.DB)}.GetByUsername(ctx, utils.NormalizeKey(username))
	if err == nil {
		return nil
	}
	if !domain.IsNotFound(err) {
		return err
	}
	_, err = s.CreateStaff(ctx, models.StaffInput{Username: username, Password: password, Role: domain.RoleAdmin})
	return err
}
