package scheduler

import (
	"sync"

	"rtsched/internal/logging"
	"rtsched/internal/model"

	"github.com/sirupsen/logrus"
)

type Result struct {
	Policy   Policy
	Schedule *model.Schedule
	Err      error
}

// RunAll schedules the same task set under each policy in parallel. Results
// come back in the order of policies. A zero maxHyperperiod means no limit.
func RunAll(tasks []model.Task, policies []Policy, slice, maxHyperperiod model.Time) []Result {
	logger := logging.GetLogger()
	results := make([]Result, len(policies))

	var wg sync.WaitGroup
	for i, p := range policies {
		wg.Add(1)
		go func(idx int, policy Policy) {
			defer wg.Done()
			results[idx].Policy = policy

			alg, err := NewWithSlice(policy, slice)
			if err != nil {
				results[idx].Err = err
				return
			}
			alg.SetMaxHyperperiod(maxHyperperiod)
			s, err := alg.CreateSchedule(tasks)
			if err != nil {
				logger.WithField("algorithm", policy.Name()).WithError(err).Debug("Scheduling failed")
				results[idx].Err = err
				return
			}
			results[idx].Schedule = s
		}(i, p)
	}
	wg.Wait()

	logger.WithFields(logrus.Fields{
		"policies": len(policies),
		"tasks":    len(tasks),
	}).Debug("All policies scheduled")
	return results
}
