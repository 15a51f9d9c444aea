package session

import (
	"strings"

	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/golang-jwt/jwt/v4"
)

// userFromToken reads the profile claims of an access token. The signature is
// not checked here: the remote API verifies every request it receives.
func userFromToken(token string) (*model.User, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	u := &model.User{
		FirstName: claimString(claims, "firstName"),
		LastName:  claimString(claims, "lastName"),
		Email:     claimString(claims, "email"),
	}
	if u.FirstName == "" && u.LastName == "" {
		if name := claimString(claims, "name"); name != "" {
			first, last, _ := strings.Cut(name, " ")
			u.FirstName, u.LastName = first, last
		}
	}
	if u.Email == "" && u.FirstName == "" {
		return nil, false
	}
	return u, true
}

func claimString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
