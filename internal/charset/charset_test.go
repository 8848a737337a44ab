package charset

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		c, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}

	c, err := Lookup(" UTF8 ")
	require.NoError(t, err)
	assert.Equal(t, UTF8, c.Name())

	c, err = Lookup("")
	require.NoError(t, err)
	assert.Equal(t, UTF8, c.Name())

	c, err = Lookup("windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", c.Name())

	_, err = Lookup("klingon")
	require.ErrorIs(t, err, ErrUnknownCharset)
}

func TestCharset_Latin1(t *testing.T) {
	t.Parallel()

	c, err := Lookup("latin1")
	require.NoError(t, err)

	s, err := c.Decode([]byte{'M', 0xfc, 'l', 'l', 'e', 'r'})
	require.NoError(t, err)
	assert.Equal(t, "Müller", s)

	b, err := c.Encode("Müller")
	require.NoError(t, err)
	assert.Equal(t, []byte{'M', 0xfc, 'l', 'l', 'e', 'r'}, b)

	_, err = c.Encode("血糖")
	require.Error(t, err)
}

func TestCharset_WriterCloseTwice(t *testing.T) {
	t.Parallel()

	c, err := Lookup("latin1")
	require.NoError(t, err)

	var buf bytes.Buffer

	w := c.NewWriter(&buf)
	_, err = io.WriteString(w, "Müller")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, []byte{'M', 0xfc, 'l', 'l', 'e', 'r'}, buf.Bytes())

	_, err = io.WriteString(w, "x")
	require.ErrorIs(t, err, ErrWriterClosed)
	assert.Equal(t, []byte{'M', 0xfc, 'l', 'l', 'e', 'r'}, buf.Bytes())
}

func TestCharset_GBK(t *testing.T) {
	t.Parallel()

	c, err := Lookup("gbk")
	require.NoError(t, err)

	wire, err := c.Encode("R|1|^血糖")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("R|1|^血糖"), wire)

	s, err := c.Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, "R|1|^血糖", s)

	got, err := io.ReadAll(c.NewReader(bytes.NewReader(wire)))
	require.NoError(t, err)
	assert.Equal(t, "R|1|^血糖", string(got))

	var buf bytes.Buffer

	w := c.NewWriter(&buf)
	_, err = io.Copy(w, strings.NewReader("R|1|^血糖"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, wire, buf.Bytes())
}

func TestCharset_UTF8PassThrough(t *testing.T) {
	t.Parallel()

	c, err := Lookup(UTF8)
	require.NoError(t, err)

	r := strings.NewReader("x")
	assert.Same(t, r, c.NewReader(r))

	s, err := c.Decode([]byte("血糖"))
	require.NoError(t, err)
	assert.Equal(t, "血糖", s)
}
