package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// JWKSVerifier validates RS256 ID tokens against a provider's published key set
// (Firebase securetoken, any OIDC issuer). Keys are cached for RefreshEvery and
// refetched on an unknown kid, at most once per MinRefetch. A failed refresh keeps
// serving the previous keys.
type JWKSVerifier struct {
	URL          string
	Issuer       string
	Audience     string
	RefreshEvery time.Duration
	MinRefetch   time.Duration
	FetchTimeout time.Duration
	Client       *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetched   time.Time
	attempted time.Time
	sf        singleflight.Group
}

func NewJWKSVerifier(url, issuer, audience string) *JWKSVerifier {
	return &JWKSVerifier{
		URL:          url,
		Issuer:       issuer,
		Audience:     audience,
		RefreshEvery: time.Hour,
		MinRefetch:   time.Minute,
		FetchTimeout: 5 * time.Second,
		Client:       &http.Client{},
	}
}

type jwksDocument struct {
	Keys []struct {
		Kid string `json:"kid"`
		Kty string `json:"kty"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		return v.key(ctx, strings.TrimSpace(kid))
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return Identity{}, ErrInvalidToken
	}
	return claims.identity()
}

func (v *JWKSVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	keys, stale, throttled := v.cached()
	k, found := pick(keys, kid)
	if found && !stale {
		return k, nil
	}
	if throttled {
		// 伪造 kid 不能把每个请求都变成一次 JWKS 拉取
		if found {
			return k, nil
		}
		return nil, fmt.Errorf("unknown key id %q", kid)
	}

	res, err, _ := v.sf.Do("jwks", func() (any, error) {
		v.mu.Lock()
		v.attempted = time.Now()
		v.mu.Unlock()

		// 共享的拉取不能随第一个调用方的请求一起被取消
		timeout := v.FetchTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		fresh, err := v.fetch(fctx)
		if err != nil {
			return nil, err
		}
		v.mu.Lock()
		v.keys, v.fetched = fresh, time.Now()
		v.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		if found {
			return k, nil
		}
		return nil, err
	}
	if k, ok := pick(res.(map[string]*rsa.PublicKey), kid); ok {
		return k, nil
	}
	return nil, fmt.Errorf("unknown key id %q", kid)
}

// cached reports the current keys, whether they are past RefreshEvery, and whether
// the last fetch attempt was too recent to try again.
func (v *JWKSVerifier) cached() (keys map[string]*rsa.PublicKey, stale, throttled bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	stale = v.keys == nil || time.Since(v.fetched) > v.RefreshEvery
	throttled = !v.attempted.IsZero() && time.Since(v.attempted) < v.MinRefetch
	return v.keys, stale, throttled
}

func pick(keys map[string]*rsa.PublicKey, kid string) (*rsa.PublicKey, bool) {
	if kid != "" {
		k, ok := keys[kid]
		return k, ok
	}
	if len(keys) == 1 {
		for _, k := range keys {
			return k, true
		}
	}
	return nil, false
}

func (v *JWKSVerifier) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jwks fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("jwks fetch: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for i, k := range doc.Keys {
		if !strings.EqualFold(k.Kty, "RSA") {
			continue
		}
		n, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, fmt.Errorf("decode jwks n: %w", err)
		}
		e, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, fmt.Errorf("decode jwks e: %w", err)
		}
		eb := new(big.Int).SetBytes(e)
		if !eb.IsInt64() || eb.Int64() <= 1 {
			return nil, fmt.Errorf("invalid jwks exponent for key %s", k.Kid)
		}
		kid := k.Kid
		if kid == "" {
			kid = fmt.Sprintf("key-%d", i)
		}
		keys[kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(eb.Int64())}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no RSA keys in jwks")
	}
	return keys, nil
}
