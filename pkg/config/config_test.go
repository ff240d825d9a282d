package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 7*24*time.Hour, cfg.Inventory.SoonWindow)
	assert.Equal(t, StorageDriverLocal, cfg.Documents.Driver)
	assert.Equal(t, []string{"application/pdf", "image/png", "image/jpeg"}, cfg.Documents.AllowedMIMEs)
	assert.EqualValues(t, 10*1024*1024, cfg.Documents.MaxFileSizeBytes)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("INVENTORY_SOON_WINDOW", "72h")
	v.Set("DOCUMENTS_DRIVER", "S3")
	v.Set("JWT_EXPIRATION", "not-a-duration")

	cfg := fromViper(v)
	assert.Equal(t, 72*time.Hour, cfg.Inventory.SoonWindow)
	assert.Equal(t, StorageDriverS3, cfg.Documents.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
