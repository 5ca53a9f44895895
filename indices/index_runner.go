package indices

import (
	"garmentflow/client/es"

	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCron schedules the full sync with a six field (seconds first) spec. Nothing is
// scheduled while indexing is disabled.
func StartCron(spec string) (*cron.Cron, error) {
	if !es.Enabled() {
		return nil, nil
	}
	crontab := cron.New(cron.WithSeconds())
	if _, err := crontab.AddFunc(spec, runScheduledSync); err != nil {
		return nil, err
	}
	crontab.Start()
	logrus.Infof("indices full sync scheduled at '%s'", spec)
	return crontab, nil
}

func runScheduledSync() {
	lock.Lock()
	if running {
		lock.Unlock()
		logrus.Info("indices fully sync: skip scheduled run, another run in progress")
		return
	}
	beginRun(TriggerScheduled)
	lock.Unlock()

	runFullSync()
}
