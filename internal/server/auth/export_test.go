package auth

import "github.com/golang-jwt/jwt/v5"

// signRaw signs claims as-is, without adding exp.
func (i *Issuer) signRaw(claims Claims) (string, error) {
	return jwt.NewWithClaims(i.method, jwt.MapClaims(claims)).SignedString(i.secret)
}
