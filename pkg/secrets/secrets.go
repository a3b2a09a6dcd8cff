package secrets

import (
	"net/url"
	"os"
	"strings"
	"sync"
)

var (
	once          sync.Once
	sensitiveEnvs []string

	envNameSensitivePatterns = []string{
		"API_KEY", "TOKEN", "SECRET", "PASSWORD", "ACCESS_KEY", "PRIVATE_KEY",
	}
)

func initSensitiveEnvs() {
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name, val := parts[0], parts[1]
		up := strings.ToUpper(name)
		for _, pat := range envNameSensitivePatterns {
			if strings.Contains(up, pat) && val != "" {
				sensitiveEnvs = append(sensitiveEnvs, val)
				break
			}
		}
	}
}

// RedactString hides the values of secret-looking environment variables.
func RedactString(s string) string {
	once.Do(initSensitiveEnvs)
	for _, val := range sensitiveEnvs {
		s = strings.ReplaceAll(s, val, "[HIDDEN]")
	}
	return s
}

// RedactURL masks the password of a connection URL such as redis://u:p@host.
// Unparseable input is passed through RedactString only.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return RedactString(raw)
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return RedactString(u.String())
}
