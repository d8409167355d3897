package echoapi

import (
	"context"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/teacher"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "teacherToken",
		Claims:        new(Claims),
	}
	jwtIssuer                 string
	jwtExpirationDelta        time.Duration
	jwtRefreshExpirationDelta time.Duration

	contextTeacherKey = "teacher"
)

// ConfigureAuth wires the JWT auth settings from conf and returns the auth middleware.
// It must be called once before any token is generated.
func ConfigureAuth(conf *core.Config) echo.MiddlewareFunc {
	appJWTConfig.SigningKey = []byte(conf.SecretKey)
	jwtIssuer = conf.AppName
	jwtExpirationDelta = conf.Server.JWTExpirationDelta
	jwtRefreshExpirationDelta = conf.Server.JWTRefreshExpirationDelta
	return middleware.JWTWithConfig(appJWTConfig)
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt   int64  `json:"oriat,omitempty"`
	Name           string `json:"nombre,omitempty"`
	Email          string `json:"email,omitempty"`
	Role           string `json:"rol,omitempty"`
	IsRector       bool   `json:"is_rector,omitempty"`
	IsAreaDirector bool   `json:"is_director_area,omitempty"`
}

func GetTeacherClaims(t teacher.Teacher, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    jwtIssuer,
			Subject:   strconv.Itoa(t.ID),
			Audience:  "Colegio",
			ExpiresAt: now.Add(jwtExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt:   oriat,
		Name:           t.Name,
		Email:          t.Email,
		Role:           t.Role,
		IsRector:       t.IsRector(),
		IsAreaDirector: t.IsAreaDirector(),
	}
	return claims
}

func authenticate(ctx context.Context, email, pwd string, svc *teacher.Service) (*Claims, error) {
	t, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding teacher by email")
	}
	if err = t.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !t.IsActive {
		return nil, errAccountDeactivated
	}
	return GetTeacherClaims(t), nil
}

// GenerateToken generates a signed JWT token string representing the teacher Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextTeacher(ctx echo.Context, svc *teacher.Service, clms ...Claims) (teacher.Teacher, error) {
	if t, ok := ctx.Get(contextTeacherKey).(teacher.Teacher); ok {
		return t, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return teacher.Teacher{}, errors.Wrap(err, "getting context claims")
		}
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return teacher.Teacher{}, errUnauthorized
	}
	t, err := svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "finding teacher by ID")
	}
	ctx.Set(contextTeacherKey, t)
	return t, nil
}

func contextHasAnyRole(ctx echo.Context, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	if claims, err := getContextClaims(ctx); err == nil {
		for _, role := range roles {
			if claims.Role == role {
				return true
			}
		}
	}
	return false
}

func refreshToken(ctx echo.Context, svc *teacher.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	t, err := getContextTeacher(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context teacher")
	}

	// check if teacher is still active
	if !t.IsActive {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(jwtRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetTeacherClaims(t, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}
