// Package job contains the scheduled maintenance jobs run by the web
// server's cron scheduler.
package job

import (
	"github.com/evergreenbank/panel/logger"
	"github.com/evergreenbank/panel/web/service"
)

// ClearSessionJob purges expired session rows. Expiry is enforced at
// validation time regardless; this sweep only keeps the ledger small.
type ClearSessionJob struct {
	sessionService *service.SessionService
}

func NewClearSessionJob(sessionService *service.SessionService) *ClearSessionJob {
	return &ClearSessionJob{sessionService: sessionService}
}

func (j *ClearSessionJob) Run() {
	count, err := j.sessionService.ClearExpired()
	if err != nil {
		logger.Warning("clear expired sessions:", err)
		return
	}
	if count > 0 {
		logger.Debugf("cleared %d expired sessions", count)
	}
}
