package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "QueueEase"

// Secret default hanya untuk development, config.Load menimpanya dari env.
var (
	AdminJWTSecret    = []byte("QueueEaseAdminSecret")
	CustomerJWTSecret = []byte("QueueEaseCustomerSecret")
	TokenTTL          = 24 * time.Hour
)

func SetJWTConfig(adminSecret, customerSecret string, ttl time.Duration) {
	if adminSecret != "" {
		AdminJWTSecret = []byte(adminSecret)
	}
	if customerSecret != "" {
		CustomerJWTSecret = []byte(customerSecret)
	}
	if ttl > 0 {
		TokenTTL = ttl
	}
}

type AdminClaims struct {
	AdminID uint   `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

type CustomerClaims struct {
	CustomerID uint   `json:"customer_id"`
	PhoneNo    string `json:"phone_no"`
	jwt.RegisteredClaims
}

func registeredClaims() jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
	}
}

func GenerateAdminToken(adminID uint, email string) (string, error) {
	claims := &AdminClaims{AdminID: adminID, Email: email, RegisteredClaims: registeredClaims()}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(AdminJWTSecret)
}

func GenerateCustomerToken(customerID uint, phoneNo string) (string, error) {
	claims := &CustomerClaims{CustomerID: customerID, PhoneNo: phoneNo, RegisteredClaims: registeredClaims()}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(CustomerJWTSecret)
}

func ParseAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := parseToken(tokenString, claims, AdminJWTSecret); err != nil {
		return nil, err
	}
	if claims.AdminID == 0 {
		return nil, errors.New("invalid admin id in token")
	}
	return claims, nil
}

func ParseCustomerToken(tokenString string) (*CustomerClaims, error) {
	claims := &CustomerClaims{}
	if err := parseToken(tokenString, claims, CustomerJWTSecret); err != nil {
		return nil, err
	}
	if claims.PhoneNo == "" {
		return nil, errors.New("invalid phone number in token")
	}
	return claims, nil
}

func parseToken(tokenString string, claims jwt.Claims, secret []byte) error {
	if IsTokenBlacklisted(tokenString) {
		return errors.New("token has been revoked")
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return errors.New("invalid or expired token")
	}
	return nil
}
