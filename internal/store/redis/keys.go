package redis

import "strings"

// Key prefixes. Sessions are JSON records indexed by the sessions set;
// datalink entries cache fetched DataLink tables keyed by their URL.
const (
	sessionPrefix  = "voprod:session:"
	datalinkPrefix = "voprod:datalink:"
	sessionsSetKey = "voprod:sessions:all"
)

func sessionKey(id string) string {
	return sessionPrefix + id
}

func datalinkKey(url string) string {
	return datalinkPrefix + url
}

// SessionIDFromKey strips the session prefix from a full Redis key.
func SessionIDFromKey(key string) string {
	return strings.TrimPrefix(key, sessionPrefix)
}
