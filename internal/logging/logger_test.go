package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewEngineRun_NumbersRuns(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	first := NewEngineRun(l, "EDF", 2)
	second := NewEngineRun(l, "RM", 3)

	firstRun, ok := first.Data["run"].(uint64)
	if !ok {
		t.Fatalf("run field missing or not a counter: %#v", first.Data)
	}
	if second.Data["run"].(uint64) <= firstRun {
		t.Fatalf("run numbers must increase: %v then %v", first.Data["run"], second.Data["run"])
	}
	if first.Data["algorithm"] != "EDF" || first.Data["tasks"] != 2 {
		t.Fatalf("unexpected fields %#v", first.Data)
	}

	second.Info("Simulation started")
	if !strings.Contains(buf.String(), `"algorithm":"RM"`) {
		t.Fatalf("entry fields not written: %q", buf.String())
	}

	if NewEngineRun(nil, "DM", 1).Logger != engineLogger {
		t.Fatalf("nil logger should fall back to the engine logger")
	}
}

func TestSetLevels(t *testing.T) {
	defer logger.SetLevel(logger.GetLevel())
	defer engineLogger.SetLevel(engineLogger.GetLevel())

	if err := SetLogLevel("debug"); err != nil || logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("SetLogLevel: %v, level %s", err, logger.GetLevel())
	}
	if err := SetEngineLogLevel("trace"); err != nil || engineLogger.GetLevel() != logrus.TraceLevel {
		t.Fatalf("SetEngineLogLevel: %v, level %s", err, engineLogger.GetLevel())
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("engine level must not change the general logger")
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
