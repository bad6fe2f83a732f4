package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Key      string        `env:"SAMPLE_KEY,required,notEmpty"`
	Retries  int           `env:"SAMPLE_RETRIES"`
	Delay    time.Duration `env:"SAMPLE_DELAY"`
	Enabled  bool          `env:"SAMPLE_ENABLED"`
	Greeting string        `env:"SAMPLE_GREETING"`
	Skipped  string        `env:"SAMPLE_SKIPPED"`
	NoTag    string
	internal string `env:"SAMPLE_INTERNAL"`
}

type otherConfig struct {
	Token string `env:"OTHER_TOKEN"`
}

func TestMarshalEnv(t *testing.T) {
	cfg := &sampleConfig{
		Key:      "abc123",
		Retries:  3,
		Delay:    1500 * time.Millisecond,
		Enabled:  true,
		Greeting: "hello world # not a comment",
		NoTag:    "ignored",
		internal: "ignored",
	}

	out, err := MarshalEnv(cfg, &otherConfig{Token: "t0k"})
	require.NoError(t, err)

	assert.Equal(t, "SAMPLE_KEY=abc123\n"+
		"SAMPLE_RETRIES=3\n"+
		"SAMPLE_DELAY=1.5s\n"+
		"SAMPLE_ENABLED=true\n"+
		"SAMPLE_GREETING=\"hello world # not a comment\"\n"+
		"OTHER_TOKEN=t0k\n", out)

	parsed, err := godotenv.Unmarshal(out)
	require.NoError(t, err)
	assert.Equal(t, "hello world # not a comment", parsed["SAMPLE_GREETING"])
	assert.Equal(t, "1.5s", parsed["SAMPLE_DELAY"])
}

func TestMarshalEnv_Empty(t *testing.T) {
	out, err := MarshalEnv(&otherConfig{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMarshalEnv_RejectsNonPointer(t *testing.T) {
	_, err := MarshalEnv(otherConfig{})
	assert.ErrorIs(t, err, ErrNotStructPointer)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime", ".env")

	require.NoError(t, WriteFile(path, "A=1\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A=1\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	err = WriteFile(path, "A=2\n")
	assert.ErrorIs(t, err, ErrFileExists)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A=1\n", string(data), "existing file is left alone")
}
