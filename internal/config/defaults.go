package config

import (
	"path/filepath"
	"sort"
)

// Key names a setting. Only uppercase keys are accepted as overrides.
type Key = string

// Value is an untyped setting value: string, int, bool, nil, or a structure
// passed through verbatim from the parsed file.
type Value = any

// Recognised setting keys.
const (
	KeySecretKey                   Key = "SECRET_KEY"
	KeyBootstrapToken              Key = "BOOTSTRAP_TOKEN"
	KeyDebug                       Key = "DEBUG"
	KeyLogLevel                    Key = "LOG_LEVEL"
	KeyLogDir                      Key = "LOG_DIR"
	KeyDBEngine                    Key = "DB_ENGINE"
	KeyDBName                      Key = "DB_NAME"
	KeyDBHost                      Key = "DB_HOST"
	KeyDBPort                      Key = "DB_PORT"
	KeyDBUser                      Key = "DB_USER"
	KeyDBPassword                  Key = "DB_PASSWORD"
	KeyRedisHost                   Key = "REDIS_HOST"
	KeyRedisPort                   Key = "REDIS_PORT"
	KeyRedisPassword               Key = "REDIS_PASSWORD"
	KeyRedisDBCelery               Key = "REDIS_DB_CELERY"
	KeyRedisDBCache                Key = "REDIS_DB_CACHE"
	KeyRedisDBSession              Key = "REDIS_DB_SESSION"
	KeyRedisDBWS                   Key = "REDIS_DB_WS"
	KeyGlobalOrgDisplayName        Key = "GLOBAL_ORG_DISPLAY_NAME"
	KeySiteURL                     Key = "SITE_URL"
	KeyCaptchaTestMode             Key = "CAPTCHA_TEST_MODE"
	KeyTokenExpiration             Key = "TOKEN_EXPIRATION"
	KeyDisplayPerPage              Key = "DISPLAY_PER_PAGE"
	KeyDefaultExpiredYears         Key = "DEFAULT_EXPIRED_YEARS"
	KeySessionCookieDomain         Key = "SESSION_COOKIE_DOMAIN"
	KeyCSRFCookieDomain            Key = "CSRF_COOKIE_DOMAIN"
	KeySessionCookieAge            Key = "SESSION_COOKIE_AGE"
	KeySessionExpireAtBrowserClose Key = "SESSION_EXPIRE_AT_BROWSER_CLOSE"
	KeyLoginURL                    Key = "LOGIN_URL"
	KeyHTTPBindHost                Key = "HTTP_BIND_HOST"
	KeyHTTPListenPort              Key = "HTTP_LISTEN_PORT"
	KeyAPIRateLimitRPS             Key = "API_RATE_LIMIT_RPS"
	KeyAPIRateLimitBurst           Key = "API_RATE_LIMIT_BURST"
)

const day = 3600 * 24

// Defaults is the immutable table of built-in setting values.
type Defaults struct {
	values map[Key]Value
}

// NewDefaults builds the defaults table. projectDir anchors path-valued
// defaults such as LOG_DIR.
func NewDefaults(projectDir string) *Defaults {
	return &Defaults{values: map[Key]Value{
		KeySecretKey:      "",
		KeyBootstrapToken: "",
		KeyDebug:          false,
		KeyLogLevel:       "DEBUG",
		KeyLogDir:         filepath.Join(projectDir, "logs"),

		KeyDBEngine:   "mysql",
		KeyDBName:     "jumpserver",
		KeyDBHost:     "127.0.0.1",
		KeyDBPort:     3306,
		KeyDBUser:     "root",
		KeyDBPassword: "",

		KeyRedisHost:      "127.0.0.1",
		KeyRedisPort:      6379,
		KeyRedisPassword:  "",
		KeyRedisDBCelery:  3,
		KeyRedisDBCache:   4,
		KeyRedisDBSession: 5,
		KeyRedisDBWS:      6,

		KeyGlobalOrgDisplayName:        "",
		KeySiteURL:                     "http://localhost:8080",
		KeyCaptchaTestMode:             nil,
		KeyTokenExpiration:             day,
		KeyDisplayPerPage:              25,
		KeyDefaultExpiredYears:         70,
		KeySessionCookieDomain:         nil,
		KeyCSRFCookieDomain:            nil,
		KeySessionCookieAge:            day,
		KeySessionExpireAtBrowserClose: false,
		KeyLoginURL:                    "/auth/login/",

		KeyHTTPBindHost:      "0.0.0.0",
		KeyHTTPListenPort:    8080,
		KeyAPIRateLimitRPS:   25,
		KeyAPIRateLimitBurst: 50,
	}}
}

// Lookup returns the default for key and whether the table knows the key.
// A known key may still carry a nil default.
func (d *Defaults) Lookup(key Key) (Value, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

// Get returns the default for key, or nil when the key is unknown.
func (d *Defaults) Get(key Key) Value {
	v, _ := d.Lookup(key)
	return v
}

// Keys returns every recognised key in lexical order.
func (d *Defaults) Keys() []Key {
	if d == nil {
		return nil
	}
	keys := make([]Key, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
