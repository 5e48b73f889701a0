package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-roster-api/pkg/config"
)

func TestSeedConfigMapping(t *testing.T) {
	cfg := &config.Config{Seed: config.SeedConfig{
		SecretKey:       "k",
		AdminEmail:      "admin@school.com",
		AdminPassword:   "a",
		TeacherEmail:    "teacher@school.com",
		TeacherPassword: "t",
	}}

	seed := SeedConfig(cfg)

	assert.Equal(t, "k", seed.SecretKey)
	assert.Equal(t, "admin@school.com", seed.AdminEmail)
	assert.Equal(t, "teacher@school.com", seed.TeacherEmail)
	assert.Equal(t, "a", seed.AdminPassword)
	assert.Equal(t, "t", seed.TeacherPassword)
}

func TestOpenStoresRejectsBadMongoURI(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverMongo},
		Mongo:   config.MongoConfig{URI: "not-a-uri", Database: "roster"},
	}

	stores, err := OpenStores(context.Background(), cfg, false)

	require.Error(t, err)
	assert.Nil(t, stores)
}

func TestCloseNilStores(t *testing.T) {
	var s *Stores
	assert.NoError(t, s.Close(context.Background()))
}
