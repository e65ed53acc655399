package tokenserver

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ipm-quickstart/messaging"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrEmptySecret  = errors.New("signing secret is empty")
)

// IssuerConfig controls minted access tokens.
type IssuerConfig struct {
	Secret     string
	Issuer     string
	TTL        time.Duration
	ServiceSID string
}

// Issuer mints and validates HS256 access tokens.
type Issuer struct {
	config IssuerConfig
	now    func() time.Time
}

func NewIssuer(config IssuerConfig) (*Issuer, error) {
	if config.Secret == "" {
		return nil, ErrEmptySecret
	}
	return &Issuer{config: config, now: time.Now}, nil
}

// Issue returns a token whose subject and identity claim are identity.
func (i *Issuer) Issue(identity, device string) (string, error) {
	now := i.now()
	claims := messaging.AccessClaims{
		Identity: identity,
		Device:   device,
		Grants: messaging.ChatGrant{
			ServiceSID: i.config.ServiceSID,
			EndpointID: i.config.Issuer + ":" + identity + ":" + device,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.config.Issuer,
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.config.Secret))
}

// Validate checks signature and expiry and returns the claims.
func (i *Issuer) Validate(tokenString string) (*messaging.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &messaging.AccessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(i.config.Secret), nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*messaging.AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
