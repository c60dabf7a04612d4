package dig_container_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dig_container "github.com/trezcool/fyp/apps/api/di/dig"
	echoapi "github.com/trezcool/fyp/apps/api/echo"
	"github.com/trezcool/fyp/core"
	csvsvc "github.com/trezcool/fyp/services/csv"
)

func TestNew_dummyEngine(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("TEST_DATABASE_ENGINE", dig_container.EngineDummy)
	t.Setenv("TEST_DEBUG", "true")

	c := dig_container.New()
	err := c.Invoke(func(conf *core.Config, server *echoapi.Server, csv *csvsvc.Service, db io.Closer) {
		assert.Equal(t, dig_container.EngineDummy, conf.Database.Engine)
		assert.NotNil(t, server)
		assert.NotNil(t, csv)
		assert.NoError(t, db.Close())
	})
	require.NoError(t, err)
}

func TestNew_unknownEngine(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("TEST_DATABASE_ENGINE", "oracle")

	c := dig_container.New()
	err := c.Invoke(func(db io.Closer) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown database engine "oracle"`)
}
