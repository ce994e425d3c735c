package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"coderr/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxTokenVersionKey = "token_version" // int
	CtxCallerKey       = "caller"        // usecase.Caller
)

// access tokenの検証だけを行う。発行は認証サービス側。
// user_idとtoken_versionをcontextに置き、ユーザーの中身はCallerGuardで引く。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	key := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return unauthorized(c)
			}
			id, err := verifyAccessToken(parser, key, raw)
			if err != nil {
				return unauthorized(c)
			}
			c.Set(CtxUserIDKey, id.userID)
			c.Set(CtxTokenVersionKey, id.tokenVersion)
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// subとtvは数値でも文字列でも受ける。subはSubject(string)より優先される。
type accessClaims struct {
	Sub json.Number `json:"sub"`
	TV  json.Number `json:"tv"`
	jwt.RegisteredClaims
}

type tokenIdentity struct {
	userID       int64
	tokenVersion int
}

var errBadClaims = errors.New("invalid access token claims")

// 署名・alg・exp/nbf/iatはparserが見る
func verifyAccessToken(p *jwt.Parser, key []byte, raw string) (tokenIdentity, error) {
	var claims accessClaims
	_, err := p.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return tokenIdentity{}, err
	}

	userID, err := strconv.ParseInt(claims.Sub.String(), 10, 64)
	if err != nil || userID <= 0 {
		return tokenIdentity{}, errBadClaims
	}
	tv, err := strconv.Atoi(claims.TV.String())
	if err != nil || tv < 0 {
		return tokenIdentity{}, errBadClaims
	}
	return tokenIdentity{userID: userID, tokenVersion: tv}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
}
