package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linux-msm/hexagonrpc/internal/config"
)

// writeTemp writes content to a temp file and returns its path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	f.Close()
	return f.Name()
}

const validYAML = `
device: /dev/fastrpc-adsp
dsp: adsp
root: /usr/share/qcom/sdm670/
log_level: debug
max_listener_input: 512
clients:
  - /usr/libexec/chrecd
`

func TestLoadValid(t *testing.T) {
	cfg, err := config.Load(writeTemp(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "/dev/fastrpc-adsp", cfg.Device)
	assert.Equal(t, "adsp", cfg.DSP)
	assert.Equal(t, "/usr/share/qcom/sdm670/", cfg.Root)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 512, cfg.MaxListenerInput)
	assert.Equal(t, []string{"/usr/libexec/chrecd"}, cfg.Clients)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(writeTemp(t, "device: /dev/fastrpc-sdsp\n"))
	require.NoError(t, err)

	assert.Equal(t, "/usr/share/qcom/", cfg.Root)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 256, cfg.MaxListenerInput)
	assert.False(t, cfg.AttachSensors)
}

func TestLoadBadLevel(t *testing.T) {
	_, err := config.Load(writeTemp(t, "log_level: loud\n"))
	assert.Error(t, err)
}

func TestLoadConflictingAttach(t *testing.T) {
	_, err := config.Load(writeTemp(t, "attach_sensors: true\nshell_elf: /lib/dsp.elf\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadUnparsable(t *testing.T) {
	_, err := config.Load(writeTemp(t, "device: [\n"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 256, cfg.MaxListenerInput)
}
