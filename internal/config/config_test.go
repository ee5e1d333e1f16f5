package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		URL:         "https://example.org/info.json",
		ZoomLevel:   -1,
		ImageIndex:  -1,
		Compression: 20,
		JPEGQuality: 90,
		Workers:     16,
		Retries:     3,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsMissingURLAndBulk(t *testing.T) {
	c := validConfig()
	c.URL = ""
	assert.Error(t, c.Validate())
}

func TestValidateRejectsBothURLAndBulk(t *testing.T) {
	c := validConfig()
	c.Bulk = "https://example.org/bulk.txt"
	assert.Error(t, c.Validate())
}

func TestValidateRejectsOutOfRangeCompression(t *testing.T) {
	c := validConfig()
	c.Compression = 101
	assert.Error(t, c.Validate())
}

func TestValidateRejectsOutOfRangeJPEGQuality(t *testing.T) {
	c := validConfig()
	c.JPEGQuality = 0
	assert.Error(t, c.Validate())
}

func TestHeaderMapFlattensHeaders(t *testing.T) {
	c := validConfig()
	c.Headers = []Header{{Name: "Authorization", Value: "Bearer token"}, {Name: "X-Foo", Value: "bar"}}
	m := c.HeaderMap()
	assert.Equal(t, "Bearer token", m["Authorization"])
	assert.Equal(t, "bar", m["X-Foo"])
}

func TestHeaderMapNilWhenEmpty(t *testing.T) {
	assert.Nil(t, validConfig().HeaderMap())
}
