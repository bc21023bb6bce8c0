package migration

import (
	"testing"

	"github.com/ryznreal/offers/migrations"
	"github.com/stretchr/testify/assert"
)

func TestSource_String(t *testing.T) {
	assert.Equal(t, "file://migrations", FromDir("migrations").String())
	assert.Equal(t, "embedded", FromFS(migrations.FS).String())
}
