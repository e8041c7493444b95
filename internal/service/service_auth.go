package service

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/store"
	"github.com/MKhiriev/go-dav-sync/internal/utils"
	"github.com/MKhiriev/go-dav-sync/models"
)

// authService is the concrete implementation of AuthService.
//
// The Digest side is stateless: nonces are self-expiring (the nonce encodes
// its own expiry timestamp) so the server holds no per-client session state,
// and the stale flag travels as a return value rather than a field, which
// makes a single service instance safe to share across concurrent requests.
//
// Known weakness, kept for wire compatibility with the reference behavior:
// the nonce is a bare base64 timestamp with no HMAC binding it to the server,
// so anyone can mint a "valid" nonce. Acceptable for a sample backend; a
// hardened deployment should bind the nonce to a server-held secret.
type authService struct {
	// credentialRepository is the data-access layer used to look up accounts.
	credentialRepository store.CredentialRepository

	// realm is the protection realm announced in every challenge and hashed
	// by clients into HA1.
	realm string

	// opaque is the constant opaque challenge value, derived once from the
	// realm with HMAC-SHA256.
	opaque string

	// nonceLifetime is how long an issued nonce stays valid.
	nonceLifetime time.Duration

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// now is the clock source; overridable in tests.
	now func() time.Time

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given
// CredentialRepository and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(credentialRepository store.CredentialRepository, cfg config.Auth, logger *logger.Logger) AuthService {
	return &authService{
		credentialRepository: credentialRepository,
		realm:                cfg.Realm,
		opaque:               utils.HashString(cfg.Realm, cfg.OpaqueKey),
		nonceLifetime:        cfg.NonceLifetime,
		tokenSignKey:         cfg.TokenSignKey,
		tokenIssuer:          cfg.TokenIssuer,
		tokenDuration:        cfg.TokenDuration,
		now:                  time.Now,
		logger:               logger,
	}
}

// digestPairPattern matches one name=value pair of a Digest Authorization
// header. Values are either double-quoted (embedded content taken literally)
// or unquoted (terminated by a comma or whitespace).
var digestPairPattern = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|([^\s,]+))`)

// IsDigestAuthorization implements AuthService. It reports whether the header
// value case-insensitively starts with the "digest" scheme.
func (a *authService) IsDigestAuthorization(authHeader string) bool {
	return len(authHeader) >= 6 && strings.EqualFold(authHeader[:6], "digest")
}

// Authenticate implements AuthService.
//
// It parses the Authorization header into its name=value parameters,
// normalizes the username, looks up the account, recomputes the expected
// RFC 2617 response digest, and checks nonce freshness.
//
// On success it returns the principal (carrying the full parsed username and
// the account's roles), stale=false, and a nil error. Every failure mode
// returns ErrAuthenticationFailed; the stale flag is true only when the
// digest itself was correct but the nonce had expired, so the next challenge
// can tell the client to retry with a fresh nonce silently.
func (a *authService) Authenticate(ctx context.Context, authHeader, httpMethod string) (models.Principal, bool, error) {
	log := logger.FromContext(ctx)

	if !a.IsDigestAuthorization(authHeader) {
		return models.Principal{}, false, ErrAuthenticationFailed
	}

	params := parseDigestParams(authHeader)

	username := params["username"]
	// Some clients escape the backslash separating domain and account name.
	username = strings.ReplaceAll(username, `\\`, `\`)

	// The domain prefix is dropped for the store lookup, but HA1 and the
	// resulting principal keep the username exactly as the client sent it.
	lookupName := username
	if i := strings.LastIndex(lookupName, `\`); i >= 0 {
		lookupName = lookupName[i+1:]
	}

	credential, err := a.credentialRepository.FindByUsername(ctx, lookupName)
	if err != nil {
		// Unknown user follows the same path as a wrong digest.
		log.Debug().Str("username", lookupName).Msg("credential lookup failed")
		return models.Principal{}, false, ErrAuthenticationFailed
	}

	ha1 := md5Hex(fmt.Sprintf("%s:%s:%s", username, params["realm"], credential.Password))
	ha2 := md5Hex(fmt.Sprintf("%s:%s", httpMethod, params["uri"]))

	var expected string
	if params["qop"] != "" {
		expected = md5Hex(fmt.Sprintf("%s:%s:%s:%s:%s:%s",
			ha1, params["nonce"], params["nc"], params["cnonce"], params["qop"], ha2))
	} else {
		expected = md5Hex(fmt.Sprintf("%s:%s:%s", ha1, params["nonce"], ha2))
	}

	if expected != params["response"] {
		log.Debug().Str("username", lookupName).Msg("digest mismatch")
		return models.Principal{}, false, ErrAuthenticationFailed
	}

	if !a.isNonceFresh(params["nonce"]) {
		// Correct credentials, expired nonce: the stale=true challenge lets
		// the client retry automatically without re-prompting the user.
		log.Debug().Str("username", lookupName).Msg("stale nonce")
		return models.Principal{}, true, ErrAuthenticationFailed
	}

	return models.Principal{Name: username, Roles: credential.Roles}, false, nil
}

// Challenge implements AuthService. It builds the value of the
// WWW-Authenticate response header for a 401, carrying a fresh nonce, the
// fixed realm and opaque, and the stale flag from the preceding
// Authenticate call on the same request.
func (a *authService) Challenge(stale bool) string {
	return fmt.Sprintf(`Digest realm="%s", nonce="%s", opaque="%s", stale=%t, algorithm=MD5, qop="auth"`,
		a.realm, a.generateNonce(), a.opaque, stale)
}

// CreateToken issues a signed JWT for the given account, allowing subsequent
// requests to use the Bearer scheme instead of repeating the Digest
// handshake.
func (a *authService) CreateToken(ctx context.Context, username string) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, username, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// Any validation failure (expired, wrong issuer, malformed) is normalised to
// ErrTokenIsExpiredOrInvalid so that callers do not need to inspect
// low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// generateNonce returns base64(expiry timestamp) with the '=' padding
// trimmed. The nonce therefore expires by itself with no server-side
// storage.
func (a *authService) generateNonce() string {
	expiry := a.now().Add(a.nonceLifetime).Format(time.RFC3339Nano)
	return strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(expiry)), "=")
}

// isNonceFresh re-pads and decodes the nonce, parses the embedded expiry
// timestamp, and reports whether it is still in the future. Undecodable
// nonces are never fresh.
func (a *authService) isNonceFresh(nonce string) bool {
	if padding := len(nonce) % 4; padding != 0 {
		nonce += strings.Repeat("=", 4-padding)
	}

	decoded, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil {
		return false
	}

	expiry, err := time.Parse(time.RFC3339Nano, string(decoded))
	if err != nil {
		return false
	}

	return !a.now().After(expiry)
}

// parseDigestParams splits a Digest Authorization header value into its
// name=value parameters. Parameters absent from the header come back as the
// empty string via the map's zero value.
func parseDigestParams(authHeader string) map[string]string {
	params := make(map[string]string)
	for _, match := range digestPairPattern.FindAllStringSubmatch(authHeader, -1) {
		if match[2] != "" {
			params[match[1]] = match[2]
		} else {
			params[match[1]] = match[3]
		}
	}
	return params
}

func md5Hex(data string) string {
	sum := md5.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}
