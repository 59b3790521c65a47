// Package auth implements the single-operator session: bcrypt-verified login
// issuing a JWT whose jti is tracked as the one active session, so logout
// revokes the token server-side.
package auth

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/dto"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain"
	"github.com/kobamelo-johnson/Letshego-Analytics/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig token generation settings.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// OperatorConfig the dashboard's one operator. PasswordHash (bcrypt) wins
// over Password; a plaintext Password is hashed at startup and is meant for
// development only.
type OperatorConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

// UseCase login/logout/verify for the single operator.
type UseCase struct {
	username     string
	passwordHash []byte
	jwtCfg       JWTConfig

	mu        sync.Mutex
	activeJTI string // "" = no active session
}

// New builds the use case, hashing a plaintext development password if no
// bcrypt hash was configured.
func New(op OperatorConfig, jwtCfg JWTConfig) (*UseCase, error) {
	if op.Username == "" {
		return nil, errors.New("auth: operator username not configured")
	}
	hash := op.PasswordHash
	if hash == "" {
		if op.Password == "" {
			return nil, errors.New("auth: no operator password configured")
		}
		h, err := bcrypt.GenerateFromPassword([]byte(op.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(h)
	}
	return &UseCase{username: op.Username, passwordHash: []byte(hash), jwtCfg: jwtCfg}, nil
}

// Login verifies the credentials, issues a session token and records its jti
// as the active session. A new login replaces any previous session.
func (uc *UseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.Username != uc.username {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(uc.passwordHash, []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	jti := uuid.NewString()
	token, err := jwt.Generate(uc.jwtCfg.Secret, jti, uc.username, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	uc.activeJTI = jti
	uc.mu.Unlock()

	return &dto.LoginResponse{Token: token, Username: uc.username}, nil
}

// Logout clears the active session; the issued token stops verifying
// immediately even though it has not expired.
func (uc *UseCase) Logout() {
	uc.mu.Lock()
	uc.activeJTI = ""
	uc.mu.Unlock()
}

// Verify parses the token and checks that it is the active session.
func (uc *UseCase) Verify(token string) (username string, err error) {
	jti, username, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	uc.mu.Lock()
	active := uc.activeJTI
	uc.mu.Unlock()

	if active == "" || active != jti {
		return "", domain.ErrUnauthorized
	}
	return username, nil
}
