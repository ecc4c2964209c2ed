package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warning"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("error"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
	assert.Equal(t, logrus.InfoLevel, GetLevel("chatty"))
}

func TestSetupWritesRotatedFile(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	defer logrus.SetFormatter(&logrus.TextFormatter{})
	defer logrus.SetLevel(logrus.InfoLevel)

	base := filepath.Join(t.TempDir(), "healthdash")
	closer := Setup(Params{Level: "debug", JSON: true, File: base})
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.WithField("user_id", 7).Info("hello")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(base + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"user_id":7`)
	assert.Contains(t, string(raw), `"msg":"hello"`)
}
