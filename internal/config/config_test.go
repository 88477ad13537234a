package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("OWNER_MOBILE", "9000000000")
	t.Setenv("OWNER_PASSWORD", "secret")
	t.Setenv("JWT_SIGNING_KEY", "0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 50, cfg.Library.TotalSeats)
	assert.Equal(t, "Asia/Kolkata", cfg.Library.Timezone)
	assert.Equal(t, "0 9 5 * *", cfg.Reminders.CronSchedule)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.LibraryLocation().Configured)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestLoadFromEnvFile(t *testing.T) {
	setRequired(t)
	// Values from the file only apply to unset variables; t.Setenv registers cleanup.
	t.Setenv("LIBRARY_TOTAL_SEATS", "")
	require.NoError(t, os.Unsetenv("LIBRARY_TOTAL_SEATS"))
	t.Setenv("LIBRARY_LAT", "")
	require.NoError(t, os.Unsetenv("LIBRARY_LAT"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LIBRARY_TOTAL_SEATS=80\nLIBRARY_LAT=25.5941\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Library.TotalSeats)
	assert.True(t, cfg.LibraryLocation().Configured)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad seats":    {"LIBRARY_TOTAL_SEATS", "many"},
		"seats range":  {"LIBRARY_TOTAL_SEATS", "501"},
		"bad timezone": {"LIBRARY_TIMEZONE", "Mars/Olympus"},
		"bad ttl":      {"JWT_TTL", "soon"},
		"short key":    {"JWT_SIGNING_KEY", "short"},
		"bad owner":    {"OWNER_MOBILE", "12345"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestValidateWhatsAppWhenEnabled(t *testing.T) {
	setRequired(t)
	t.Setenv("WHATSAPP_TOKEN", "token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "123")
	t.Setenv("META_VERIFY_TOKEN", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.EqualError(t, err, "META_VERIFY_TOKEN must be provided")
}
