// Package cache provides TokenCache implementations for the ENS session token.
//
// MemoryCache keeps values in process memory and suits a single long-running
// exporter. RedisCache shares the token between processes, so several
// exporters or CLI invocations reuse one session instead of each
// authenticating.
package cache

import (
	"fmt"
	"strings"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/auth"
)

// reservedKeyChars may not appear in cache keys
const reservedKeyChars = "{}()/\\@:"

// ValidateKey rejects empty keys and keys containing reserved characters.
// The error wraps auth.ErrInvalidKey.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", auth.ErrInvalidKey)
	}
	if i := strings.IndexAny(key, reservedKeyChars); i >= 0 {
		return fmt.Errorf("%w: %q contains reserved character %q", auth.ErrInvalidKey, key, key[i])
	}
	return nil
}
