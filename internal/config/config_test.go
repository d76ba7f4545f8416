package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "mysql", cfg.Database.Driver)
	require.Equal(t, "3306", cfg.Database.Port)
	require.Equal(t, 168*time.Hour, cfg.Invitation.TTL)
	require.False(t, cfg.Policy.MemberModifyCanWrite)
	require.Equal(t, "", cfg.RedisAddr())
}

func TestLoad_FlatEnvNames(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("INVITATION_TTL", "48h")
	t.Setenv("MEMBER_MODIFY_CAN_WRITE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, "5432", cfg.Database.Port)
	require.Equal(t, "cache:6379", cfg.RedisAddr())
	require.Equal(t, 48*time.Hour, cfg.Invitation.TTL)
	require.True(t, cfg.Policy.MemberModifyCanWrite)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ReleaseRequiresSecrets(t *testing.T) {
	t.Setenv("GIN_MODE", "release")

	_, err := Load()
	require.ErrorContains(t, err, "SESSION_SECRET")

	t.Setenv("SESSION_SECRET", "a-real-secret")
	t.Setenv("JWT_SECRET", "another-real-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.IsRelease())
}
