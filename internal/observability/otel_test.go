package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	assert.Nil(t, parseHeaders(""))
	assert.Nil(t, parseHeaders("novalue,=x"))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, parseHeaders(" a=1 , b = 2,c"))
}

func TestParseRatio(t *testing.T) {
	f, err := parseRatio("0.25")
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)
	f, _ = parseRatio("7")
	assert.Equal(t, 1.0, f)
	f, _ = parseRatio("-1")
	assert.Equal(t, 0.0, f)
	_, err = parseRatio("x")
	assert.Error(t, err)
}

func TestInitOTelDisabledIsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), nil, OtelConfig{})
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
