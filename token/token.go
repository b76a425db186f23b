package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Header is the JWT header. Only HS256 is issued or accepted.
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Claims is the payload carried by a session token. Subject is the
// administrator id; the role is intentionally absent — it is re-derived
// from the store on every mutation, never trusted from the token.
type Claims struct {
	Issuer         string `json:"iss"`
	Subject        string `json:"sub"`
	Audience       string `json:"aud"`
	SessionID      string `json:"jti"`
	ExpirationTime string `json:"exp,omitempty"`
	IssuedAt       string `json:"iat"`
}

// Create builds an HMAC-SHA256 signed session token.
func Create(claims Claims, secret []byte) (string, error) {
	header := Header{
		Type:      "JWT",
		Algorithm: "HS256",
	}
	headerStr, err := json.Marshal(header)
	if err != nil {
		return "", err
	}

	payloadStr, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	headerB64 := base64.RawURLEncoding.EncodeToString(headerStr)
	payloadB64 := base64.RawURLEncoding.EncodeToString(payloadStr)
	target := headerB64 + "." + payloadB64

	signatureB64 := base64.RawURLEncoding.EncodeToString(sign([]byte(target), secret))

	return target + "." + signatureB64, nil
}

// Validate checks the token signature and expiry and returns the claims.
func Validate(tok string, secret []byte) (*Claims, error) {
	split := strings.Split(tok, ".")
	if len(split) != 3 {
		return nil, fmt.Errorf("invalid token format")
	}

	var header Header
	headerBytes, err := base64.RawURLEncoding.DecodeString(split[0])
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(headerBytes, &header)
	if err != nil {
		return nil, err
	}

	if header.Type != "JWT" || header.Algorithm != "HS256" {
		return nil, fmt.Errorf("unsupported token type")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(split[1])
	if err != nil {
		return nil, err
	}

	var claims Claims
	err = json.Unmarshal(payloadBytes, &claims)
	if err != nil {
		return nil, err
	}

	if claims.ExpirationTime != "" {
		exp, err := strconv.ParseInt(claims.ExpirationTime, 10, 64)
		if err != nil {
			return nil, err
		}
		if exp < time.Now().Unix() {
			return nil, fmt.Errorf("token is already expired")
		}
	}

	signatureBytes, err := base64.RawURLEncoding.DecodeString(split[2])
	if err != nil {
		return nil, err
	}

	expected := sign([]byte(split[0]+"."+split[1]), secret)
	if !hmac.Equal(signatureBytes, expected) {
		return nil, fmt.Errorf("invalid signature")
	}

	return &claims, nil
}

func sign(target, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(target)
	return mac.Sum(nil)
}
