package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const tokenCookieName = "__duty_roster_token"

// AuthClaims 由外部身份服务签发，本服务只负责校验
type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var errNoToken = errors.New("请求中没有令牌")

// tokenFromRequest 优先读取 Authorization 头，其次读取 cookie
func tokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return "", errNoToken
		}
		return token, nil
	}

	cookie, err := r.Cookie(tokenCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", errNoToken
		}
		return "", err
	}
	return cookie.Value, nil
}

func (h *Handler) parseToken(tokenString string) (*AuthClaims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if h.config.JWT.Issuer != "" {
		options = append(options, jwt.WithIssuer(h.config.JWT.Issuer))
	}

	claims := &AuthClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(h.config.JWT.Secret), nil
	}, options...); err != nil {
		return nil, err
	}
	return claims, nil
}
