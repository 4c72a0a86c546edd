package database

import (
	"context"
	"fmt"
	"time"

	"rtsched/internal/config"
	"rtsched/internal/logging"
	"rtsched/internal/report"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

const (
	instancesMeasurement = "schedule_instances"
	summaryMeasurement   = "schedule_summary"
)

// ScheduleRun is one finished scheduling run together with the context needed
// to store it.
type ScheduleRun struct {
	TaskSet          string
	Checksum         string
	Algorithm        string
	SchedulerVersion string
	ConfigContent    string
	CreatedAt        time.Time
	Report           *report.Report
}

// ScheduleWriter stores schedule runs.
type ScheduleWriter interface {
	WriteSchedule(ctx context.Context, run *ScheduleRun) error
	Close()
}

type InfluxDBClient struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewInfluxDBClient(config config.DatabaseConfig) (*InfluxDBClient, error) {
	logger := logging.GetLogger()

	client := influxdb2.NewClient(config.Host, config.Password)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		logger.WithField("host", config.Host).WithError(err).Error("Failed to connect to InfluxDB")
		client.Close()
		return nil, err
	}

	if health.Status != "pass" {
		message := ""
		if health.Message != nil {
			message = *health.Message
		}
		logger.WithFields(logrus.Fields{
			"host":    config.Host,
			"status":  health.Status,
			"message": message,
		}).Error("InfluxDB health check failed")
		client.Close()
		return nil, fmt.Errorf("influxdb health check failed: %s", health.Status)
	}

	logger.WithFields(logrus.Fields{
		"host":   config.Host,
		"bucket": config.Name,
		"org":    config.Org,
	}).Info("Connected to InfluxDB")

	return &InfluxDBClient{
		client:   client,
		writeAPI: client.WriteAPIBlocking(config.Org, config.Name),
		bucket:   config.Name,
		org:      config.Org,
	}, nil
}

func (idb *InfluxDBClient) WriteSchedule(ctx context.Context, run *ScheduleRun) error {
	points, err := BuildPoints(run)
	if err != nil {
		return err
	}
	if err := idb.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("failed to write schedule points: %w", err)
	}

	logging.GetLogger().WithFields(logrus.Fields{
		"taskset":   run.TaskSet,
		"algorithm": run.Algorithm,
		"points":    len(points),
		"bucket":    idb.bucket,
	}).Info("Schedule written to InfluxDB")
	return nil
}

// BuildPoints converts a run into one point per task instance and a summary
// point. Instance points are spread one microsecond per time tick after the
// run timestamp so that instances of the same task never share a series key.
func BuildPoints(run *ScheduleRun) ([]*write.Point, error) {
	if run == nil || run.Report == nil {
		return nil, fmt.Errorf("schedule run has no report")
	}
	r := run.Report
	base := run.CreatedAt
	if base.IsZero() {
		base = time.Now()
	}

	points := make([]*write.Point, 0, len(r.Instances)+1)
	for _, ti := range r.Instances {
		points = append(points, influxdb2.NewPoint(instancesMeasurement,
			map[string]string{
				"taskset":   run.TaskSet,
				"checksum":  run.Checksum,
				"algorithm": run.Algorithm,
				"task":      ti.Task,
			},
			map[string]interface{}{
				"start":    ti.Start.Float64(),
				"end":      ti.End.Float64(),
				"duration": (ti.End - ti.Start).Float64(),
			},
			base.Add(time.Duration(ti.Start)*time.Microsecond)))
	}

	points = append(points, influxdb2.NewPoint(summaryMeasurement,
		map[string]string{
			"taskset":   run.TaskSet,
			"checksum":  run.Checksum,
			"algorithm": run.Algorithm,
		},
		map[string]interface{}{
			"feasible":          r.Feasible,
			"hyperperiod":       r.Hyperperiod.Float64(),
			"utilization":       r.Utilization,
			"instances":         len(r.Instances),
			"idle_time":         r.IdleTime.Float64(),
			"missed_task":       r.MissedTask.OrElse(""),
			"missed_at":         r.MissedAt.OrElse(-1),
			"scheduler_version": run.SchedulerVersion,
		},
		base))
	return points, nil
}

func (idb *InfluxDBClient) Close() {
	if idb.client != nil {
		idb.client.Close()
	}
}
