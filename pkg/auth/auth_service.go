package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"educrm-api/pkg/cache"
	"educrm-api/pkg/model"
	"educrm-api/pkg/orm"
	"educrm-api/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Claims carry the staff identity inside the bearer token so request handling
// needs no directory lookup.
type Claims struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) StaffID() uint {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

type AuthService struct {
	staffORM *orm.StaffORM
	cache    *cache.Cache
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		staffORM: orm.NewStaffORM(db),
		cache:    cache.GetCacheInstance(),
	}
}

// Login verifies credentials and issues a bearer token. A "remember me" login
// gets the long-lived expiry; the session record lands in the cache so it can
// be revoked before its natural expiry.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	staff, err := s.staffORM.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(req.Password, staff.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	ttl := sessionTTL(req.Remember)
	expiresAt := time.Now().Add(ttl)
	token, jti, err := GenerateJWT(staff, expiresAt)
	if err != nil {
		log.Error().Err(err).Msg("Error signing JWT token")
		return nil, err
	}

	if err := s.cache.SetWithExpire(ctx, SessionKey(staff.ID, jti), "1", ttl); err != nil {
		log.Warn().Err(err).Msg("Failed to record session in cache")
	}

	log.Info().Str("email", staff.Email).Msg("Staff logged in")
	return &LoginResponse{Token: token, ExpiresAt: expiresAt, Staff: *staff}, nil
}

// Logout revokes the session record; the token stops passing middleware
// checks wherever revocation is enforced.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	return s.cache.Delete(ctx, SessionKey(claims.StaffID(), claims.ID))
}

func GenerateJWT(staff *model.Staff, expiresAt time.Time) (string, string, error) {
	jwtSecret := utils.LoadDotEnv("JWT_SECRET")
	jti := uuid.New().String()
	claims := &Claims{
		Role:  staff.Role,
		Name:  staff.Name,
		Email: staff.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatUint(uint64(staff.ID), 10),
			Issuer:    "educrm-api",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

func ParseJWT(tokenString string) (*Claims, error) {
	jwtSecret := utils.LoadDotEnv("JWT_SECRET")
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func sessionTTL(remember bool) time.Duration {
	hours := 24
	if parsed, err := strconv.Atoi(utils.GetEnv("TOKEN_EXPIRY_HOURS", "24")); err == nil && parsed > 0 {
		hours = parsed
	}
	if remember {
		return 30 * 24 * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

func SessionKey(staffID uint, jti string) string {
	return fmt.Sprintf("educrm_api:session:%d:%s", staffID, jti)
}
