package crontab

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/domain/followup"
)

const followupJobTimeout = 5 * time.Minute

// Crontab drives the periodic follow-up sweep. One minute-granularity job
// drains everything due since the last tick.
type Crontab struct {
	ctab     *crontab.Crontab
	executor *followup.Executor
	log      zerolog.Logger
}

func NewCrontab(executor *followup.Executor, log zerolog.Logger) *Crontab {
	return &Crontab{
		ctab:     crontab.New(),
		executor: executor,
		log:      log.With().Str("component", "crontab").Logger(),
	}
}

// Run registers the jobs and blocks until ctx is cancelled.
func (c *Crontab) Run(ctx context.Context) error {
	// Catch up on anything that came due while the service was down.
	c.runFollowups()

	if err := c.ctab.AddJob("* * * * *", c.runFollowups); err != nil {
		return fmt.Errorf("add followup sweep job: %w", err)
	}
	c.log.Info().Msg("followup sweep scheduled every minute")

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) runFollowups() {
	jobCtx, cancel := context.WithTimeout(context.Background(), followupJobTimeout)
	defer cancel()
	c.executor.RunDue(jobCtx, time.Now())
}
