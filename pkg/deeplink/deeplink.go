// Package deeplink builds encrypted partner deep links.
//
// The partner expects {username, phone} as JSON, RSA-encrypted with their
// published key (PKCS#1 v1.5), base64-encoded, then URL-encoded into the
// splash URL's q parameter.
package deeplink

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/url"
)

const partnerPublicKeyPEM = `-----BEGIN PUBLIC KEY-----
MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEAojhh58zzmGjQlEuZwpN+00R98f5TCttxGKrO9kNFR4kZUErjR/weUz814WbErbaRaI6NmDEBSh6TdhudGK/j1SK3R5LQuxFBjTu0wmrVLSgBC8gpy4x7AwbJYpxWnt6jysNyLb2DDbh5knn8/z8oZaMqXmML8FkN8+LvZzAJKAL0pFwYQ+vbaIlmr05CjNHu8P0/I+orDQxg40XkcI4wzTxN2QAiGNLLVjiEQ9ffm/v6Dy+p71YiV/sE8jxuVugcHKW9VaI7KThf5ntSMkSgZv9W1zqOxkVqtexQrAZ9F7GwZpxlMApEw1P3TtCzx0QfajuQ8u/gkwPN0I0h+m86XwIDAQAB
-----END PUBLIC KEY-----`

const defaultBaseURL = "https://isp.vouch365.mobi/splash"

type payload struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

// Generator produces splash URLs for one partner key.
type Generator struct {
	key     *rsa.PublicKey
	baseURL string
}

// New builds a Generator from a PEM-encoded RSA public key.
func New(publicKeyPEM, baseURL string) (*Generator, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("deeplink: invalid public key PEM")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("deeplink: parse public key: %w", err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("deeplink: public key is not RSA")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Generator{key: key, baseURL: baseURL}, nil
}

// NewDefault builds a Generator for the embedded partner key.
func NewDefault() (*Generator, error) {
	return New(partnerPublicKeyPEM, defaultBaseURL)
}

// Generate returns the splash URL for the given user.
func (g *Generator) Generate(username, phone string) (string, error) {
	raw, err := json.Marshal(payload{Username: username, Phone: phone})
	if err != nil {
		return "", fmt.Errorf("deeplink: marshal payload: %w", err)
	}
	encrypted, err := rsa.EncryptPKCS1v15(rand.Reader, g.key, raw)
	if err != nil {
		return "", fmt.Errorf("deeplink: encrypt payload: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(encrypted)
	return g.baseURL + "?q=" + url.QueryEscape(encoded), nil
}
