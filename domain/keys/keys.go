package keys

import (
	"strings"
)

const (
	// PfxHealthCheck is used for prefixing health check redis key
	PfxHealthCheck = "healthcheck"
	// PfxPayToken is used for prefixing pay token cache key
	PfxPayToken = "paytoken"
	// PfxAuction is used for prefixing auction cache key
	PfxAuction = "auction"
	// PfxLock is used for prefixing distributed lock key
	PfxLock = "lock"
	// PfxHttpCache is used for prefixing cached http response key
	PfxHttpCache = "httpcache"
)

// CustomKey is used to join the customized key by components with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by components
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}

// GetPrefix extracts the prefix of a key for metric tagging.
func GetPrefix(key string) string {
	s := strings.Split(key, ":")
	if len(s) > 2 {
		return strings.Join([]string{s[0], s[1]}, ":")
	} else if len(s) > 1 {
		return s[0]
	}
	return ""
}
