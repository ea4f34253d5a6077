package models

// AdminClaims are the claims carried by an admin bearer token
type AdminClaims struct {
	Sub string `json:"sub"` // Operator identifier
	Exp int64  `json:"exp"` // Expiration time
	Iat int64  `json:"iat"` // Issued at
	Iss string `json:"iss"` // Issuer
}
