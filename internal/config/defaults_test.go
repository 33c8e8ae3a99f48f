package config

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_KnownValues(t *testing.T) {
	d := NewDefaults("/srv/dwbft")

	assert.Equal(t, 3306, d.Get(KeyDBPort))
	assert.Equal(t, "mysql", d.Get(KeyDBEngine))
	assert.Equal(t, "jumpserver", d.Get(KeyDBName))
	assert.Equal(t, false, d.Get(KeyDebug))
	assert.Equal(t, 86400, d.Get(KeyTokenExpiration))
	assert.Equal(t, 25, d.Get(KeyDisplayPerPage))
	assert.Equal(t, filepath.Join("/srv/dwbft", "logs"), d.Get(KeyLogDir))
}

func TestDefaults_NilDefaultIsKnown(t *testing.T) {
	d := NewDefaults("")

	v, ok := d.Lookup(KeyCaptchaTestMode)
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestDefaults_UnknownKeyIsAbsent(t *testing.T) {
	d := NewDefaults("")

	v, ok := d.Lookup("NOT_A_SETTING")
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Nil(t, d.Get("NOT_A_SETTING"))
}

func TestDefaults_KeysSortedAndUppercase(t *testing.T) {
	keys := NewDefaults("").Keys()

	require.NotEmpty(t, keys)
	assert.True(t, sort.StringsAreSorted(keys))
	for _, k := range keys {
		assert.Truef(t, isUpper(k), "default key %q must be uppercase", k)
	}
}

func TestDefaults_NilTable(t *testing.T) {
	var d *Defaults

	assert.Nil(t, d.Get(KeyDBHost))
	assert.Empty(t, d.Keys())
}
