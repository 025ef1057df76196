package logging

import (
	"testing"

	"go.viam.com/test"
)

func TestNewTestLoggerImplementsLogger(t *testing.T) {
	logger := NewTestLogger(t)
	logger.Infow("hello", "key", "value")
	logger.Debugw("debug line")
	named := logger.Named("child")
	named.Warnw("warning")
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestNewLoggerAndNewDebugLogger(t *testing.T) {
	l1 := NewLogger("prod")
	l2 := NewDebugLogger("dev")
	test.That(t, l1, test.ShouldNotBeNil)
	test.That(t, l2, test.ShouldNotBeNil)
	l1.Infof("frame %d processed", 3)
	l2.Errorf("failed: %v", "boom")
}
