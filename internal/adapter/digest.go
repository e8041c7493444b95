package adapter

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// challengePairPattern matches one name=value pair of a WWW-Authenticate
// Digest challenge. Values are either double-quoted or unquoted.
var challengePairPattern = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|([^\s,]+))`)

// parseChallenge splits a Digest WWW-Authenticate header value into its
// name=value parameters.
func parseChallenge(challenge string) map[string]string {
	params := make(map[string]string)
	for _, match := range challengePairPattern.FindAllStringSubmatch(challenge, -1) {
		if match[2] != "" {
			params[match[1]] = match[2]
		} else {
			params[match[1]] = match[3]
		}
	}
	return params
}

// buildDigestAuthorization answers a parsed challenge with an RFC 2617
// Authorization header value for the given request method and URI.
func buildDigestAuthorization(username, password, method, uri string, challenge map[string]string) string {
	realm := challenge["realm"]
	nonce := challenge["nonce"]

	ha1 := md5Hex(fmt.Sprintf("%s:%s:%s", username, realm, password))
	ha2 := md5Hex(fmt.Sprintf("%s:%s", method, uri))

	if challenge["qop"] == "" {
		response := md5Hex(fmt.Sprintf("%s:%s:%s", ha1, nonce, ha2))
		return fmt.Sprintf(`Digest username="%s", realm="%s", nonce="%s", uri="%s", response="%s", opaque="%s"`,
			username, realm, nonce, uri, response, challenge["opaque"])
	}

	nc := "00000001"
	cnonce := newCNonce()
	response := md5Hex(fmt.Sprintf("%s:%s:%s:%s:%s:%s", ha1, nonce, nc, cnonce, "auth", ha2))

	return fmt.Sprintf(`Digest username="%s", realm="%s", nonce="%s", uri="%s", qop=auth, nc=%s, cnonce="%s", response="%s", opaque="%s"`,
		username, realm, nonce, uri, nc, cnonce, response, challenge["opaque"])
}

func newCNonce() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "0a4f113b"
	}
	return hex.EncodeToString(buf)
}

func md5Hex(data string) string {
	sum := md5.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}
