package scheduler

import (
	"rtsched/internal/model"

	"github.com/sirupsen/logrus"
)

func taskLogFields(task model.Task) logrus.Fields {
	fields := logrus.Fields{"task": task.Name}
	if task.Period > 0 {
		fields["period"] = task.Period.String()
	}
	if task.Deadline > 0 && task.Deadline != task.Period {
		fields["deadline"] = task.Deadline.String()
	}
	if task.ExecutionTime > 0 {
		fields["execution"] = task.ExecutionTime.String()
	}
	return fields
}
