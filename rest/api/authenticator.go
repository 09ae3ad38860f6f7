package api

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/goregistry/grerrors"
	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gofrs/uuid"
	jwtmiddleware "github.com/iris-contrib/middleware/jwt"
	"github.com/kataras/iris"
)

type Authenticator interface {
	Authenticate(Context) error
	AuthenticateAdmin(Context) error
}

type authenticator struct {
	Authenticator
}

func NewAuthenticator() Authenticator {
	return &authenticator{}
}

// Authenticate accepts either an admin bearer token (back-office
// sessions get full permission) or an access key pair issued to an
// administrator (integration sessions get register permission).
func (a *authenticator) Authenticate(ctx Context) error {
	if ctx.Request().Header.Get("Authorization") != "" {
		return a.authenticateWithBearer(ctx)
	}

	return a.authenticateByAccessKey(ctx)
}

func (a *authenticator) AuthenticateAdmin(ctx Context) error {
	adminID, err := uuid.FromString(ctx.Params().Get("admin_id"))
	if err != nil {
		return grerrors.Unauthorized.WithMsg("invalid admin_id")
	}

	if err = evaluateToken(ctx, adminID, env.GetVar("ADMIN_SECRET")); err != nil {
		return grerrors.Unauthorized.WithMsg(err.Error())
	}

	ctx.Authorize(adminID, PermissionAdmin)

	ctx.Values().Set("admin_id", adminID.String())

	return nil
}

var matcher = regexp.MustCompile("Bearer (.*)")

// Admin JWT based authentication
func (a *authenticator) authenticateWithBearer(ctx Context) error {
	header := ctx.Request().Header.Get("Authorization")

	match := matcher.FindStringSubmatch(header)
	if len(match) < 2 {
		return grerrors.InvalidRequestParam.WithMsg("invalid authorization header value format")
	}

	token, err := jwt.Parse(match[1], func(token *jwt.Token) (interface{}, error) {
		return []byte(env.GetVar("ADMIN_SECRET")), nil
	})
	if err != nil {
		return err
	}

	adminID, err := handleAdminJWT(token)
	if err != nil {
		return err
	}

	ctx.Authorize(adminID, PermissionAll)

	// Assign admin_id for tracking purpose
	ctx.Values().Set("admin_id", adminID.String())

	return nil
}

// Access Key based authentication
func (a *authenticator) authenticateByAccessKey(ctx Context) error {
	keyID := ctx.Request().Header.Get("APCA-API-KEY-ID")
	secretKey := ctx.Request().Header.Get("APCA-API-SECRET-KEY")

	// don't need to grab the context's connection, since it
	// should be used by only the required services
	srv := ctx.Services().AccessKey().WithTx(db.DB())

	key, err := srv.Verify(keyID, secretKey)
	if err != nil {
		return grerrors.Unauthorized.WithMsg(fmt.Sprintf("access key verification failed : %v", err))
	}

	ctx.Authorize(key.AdminID, PermissionRegister)

	ctx.Values().Set("admin_id", key.AdminID.String())

	return nil
}

func handleAdminJWT(token *jwt.Token) (uuid.UUID, error) {
	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return uuid.Nil, grerrors.InternalServerError
	}

	if !token.Valid || claims["iss"] != "alpaca" {
		return uuid.Nil, grerrors.Unauthorized
	}

	sub, ok := claims["sub"].(map[string]interface{})
	if !ok {
		return uuid.Nil, grerrors.Unauthorized
	}

	adminID := uuid.FromStringOrNil(sub["id"].(string))
	if adminID == uuid.Nil {
		return uuid.Nil, grerrors.Unauthorized
	}

	return adminID, nil
}

func evaluateToken(ctx iris.Context, id uuid.UUID, secret string) error {
	token, err := extractToken(ctx, secret)
	if err != nil {
		return err
	}

	claims := token.Claims.(jwt.MapClaims)
	sub := claims["sub"].(map[string]interface{})

	userID, err := uuid.FromString(sub["id"].(string))
	if err != nil {
		return err
	}

	if !token.Valid || claims["iss"] != "alpaca" || userID != id {
		return errors.New("token invalid")
	}

	return nil
}

func extractToken(ctx iris.Context, secret string) (*jwt.Token, error) {
	tokenString, err := jwtMiddleware.Config.Extractor(ctx)
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	return token, nil
}

var jwtMiddleware = jwtmiddleware.New(jwtmiddleware.Config{
	ValidationKeyGetter: func(token *jwt.Token) (interface{}, error) {
		return []byte(env.GetVar("ADMIN_SECRET")), nil
	},
	SigningMethod: jwt.SigningMethodHS256,
	ErrorHandler: func(ctx iris.Context, err string) {
		ctx.StatusCode(iris.StatusUnauthorized)
	},
})
