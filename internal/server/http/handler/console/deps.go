package console

import (
	"time"

	"garden-console/internal/dashboard"
	"garden-console/internal/gardenapi"
	"garden-console/internal/logging"
	"garden-console/internal/pkg/cache"
	"garden-console/internal/server/http/middleware/security"
	"garden-console/internal/session"
)

// Dependencies console 핸들러 공통 의존성
type Dependencies struct {
	Upstream     *gardenapi.Client
	Sessions     *session.Manager
	Auth         *security.Authenticator
	Dashboard    *dashboard.Service
	Lists        *cache.ListCache
	Logger       *logging.Logger
	CookieSecure bool
	Now          func() time.Time
}

func (d Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
