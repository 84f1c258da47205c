package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrEmptySecret la firma HS256 necesita un secreto configurado.
	ErrEmptySecret = errors.New("jwt: secret vacío")
	// ErrExpired el token fue válido pero ya venció.
	ErrExpired = errors.New("jwt: token expirado")
	// ErrInvalid firma, algoritmo, emisor o claims incorrectos.
	ErrInvalid = errors.New("jwt: token inválido")
)

// Identity es lo que la API necesita saber del usuario autenticado.
// CenterID es la óptica a la que pertenece; Role alimenta el control de acceso sin consultar la DB.
type Identity struct {
	UserID   string
	CenterID string
	Role     string // "admin" | "magasinier" | "caissier"
}

type claims struct {
	jwt.RegisteredClaims
	CenterID string `json:"center_id"`
	Role     string `json:"role"`
}

// Signer emite y valida tokens de un emisor concreto.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner crea un firmante HS256. ttl es la vigencia de los tokens emitidos.
func NewSigner(secret, issuer string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Signer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Generate firma un token para la identidad dada.
func (s *Signer) Generate(id Identity) (string, error) {
	if id.UserID == "" {
		return "", fmt.Errorf("%w: user_id requerido", ErrInvalid)
	}
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		CenterID: id.CenterID,
		Role:     id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Parse valida firma, vigencia y emisor y devuelve la identidad del token.
// Los errores envuelven ErrExpired o ErrInvalid.
func (s *Signer) Parse(token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Subject == "" {
		return Identity{}, fmt.Errorf("%w: claims incompletos", ErrInvalid)
	}
	return Identity{UserID: c.Subject, CenterID: c.CenterID, Role: c.Role}, nil
}
