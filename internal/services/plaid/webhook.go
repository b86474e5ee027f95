package plaid

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/plaid/plaid-go/v12/plaid"
	"go.uber.org/zap"
)

// Webhook bodies older than this are rejected.
const webhookMaxAge = 5 * time.Minute

// VerifyWebhook checks the plaid-verification header: an ES256 JWT whose
// claims carry the SHA-256 of the webhook body. Verification keys are
// fetched from the aggregator and cached per kid.
func (p *Plaid) VerifyWebhook(webhookBody string, headers map[string]string) (bool, error) {
	ctx := context.Background()

	tokenString := headers["plaid-verification"]
	token, parts, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		p.logger.Error("verify webhook: parse token failed", zap.Error(err))
		return false, err
	}
	if token.Method.Alg() != "ES256" {
		return false, errors.New("verify webhook: unexpected signing algorithm")
	}

	kid, _ := token.Header["kid"].(string)
	key, err := p.verificationKey(ctx, kid)
	if err != nil {
		p.logger.Error("verify webhook: refresh keys failed", zap.Error(err))
		return false, err
	}

	if key.ExpiredAt.Get() != nil {
		return false, errors.New("verify webhook: key expired")
	}

	if err := jwt.SigningMethodES256.Verify(parts[0]+"."+parts[1], parts[2], ecdsaKey(key)); err != nil {
		p.logger.Error("verify webhook: signature invalid", zap.Error(err))
		return false, nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false, errors.New("verify webhook: malformed claims")
	}

	iat, _ := claims["iat"].(float64)
	if time.Since(time.Unix(int64(iat), 0)) > webhookMaxAge {
		return false, nil
	}

	bodyHash, _ := claims["request_body_sha256"].(string)
	sum := sha256.Sum256([]byte(webhookBody))

	return hex.EncodeToString(sum[:]) == bodyHash, nil
}

// verificationKey returns the cached JWK for kid, refreshing stale entries
// and fetching the key on a cache miss.
func (p *Plaid) verificationKey(ctx context.Context, kid string) (plaid.JWKPublicKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if key, found := p.keyCache[kid]; found {
		return key, nil
	}

	kidsToUpdate := []string{kid}
	for k, v := range p.keyCache {
		if v.ExpiredAt.Get() == nil {
			kidsToUpdate = append(kidsToUpdate, k)
		}
	}

	for _, k := range kidsToUpdate {
		request := plaid.NewWebhookVerificationKeyGetRequest(k)
		res, _, err := p.client.PlaidApi.WebhookVerificationKeyGet(ctx).WebhookVerificationKeyGetRequest(*request).Execute()
		if err != nil {
			return plaid.JWKPublicKey{}, err
		}
		p.keyCache[k] = res.GetKey()
	}

	return p.keyCache[kid], nil
}

func ecdsaKey(key plaid.JWKPublicKey) *ecdsa.PublicKey {
	publicKey := &ecdsa.PublicKey{Curve: elliptic.P256()}
	x, _ := base64.URLEncoding.DecodeString(key.X + "=")
	publicKey.X = new(big.Int).SetBytes(x)
	y, _ := base64.URLEncoding.DecodeString(key.Y + "=")
	publicKey.Y = new(big.Int).SetBytes(y)
	return publicKey
}
