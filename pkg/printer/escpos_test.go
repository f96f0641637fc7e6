package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_PairIsFlushRight(t *testing.T) {
	d := NewDocument(20)
	d.Pair("Total:", "150.00")

	out := d.Bytes()
	line := string(out[2 : len(out)-1])
	assert.Len(t, line, 20)
	assert.Equal(t, "Total:"+strings.Repeat(" ", 8)+"150.00", line)
}

func TestDocument_PairTruncatesLongLabel(t *testing.T) {
	d := NewDocument(16)
	d.Pair("A very long product label", "9.99")

	out := d.Bytes()
	line := string(out[2 : len(out)-1])
	assert.Len(t, line, 16)
	assert.True(t, bytes.HasSuffix([]byte(line), []byte(" 9.99")))
}

func TestDocument_LineWraps(t *testing.T) {
	d := NewDocument(10)
	d.Line("layer feed premium grower")

	lines := bytes.Split(bytes.TrimSuffix(d.Bytes()[2:], []byte{LF}), []byte{LF})
	require.Len(t, lines, 3)
	assert.Equal(t, "layer feed", string(lines[0]))
	assert.Equal(t, "premium", string(lines[1]))
	assert.Equal(t, "grower", string(lines[2]))
}

func TestDocument_StartsWithResetAndEndsWithCut(t *testing.T) {
	d := NewDocument(32).Line("x").Cut()
	out := d.Bytes()

	assert.Equal(t, []byte{ESC, '@'}, out[:2])
	assert.Equal(t, []byte{GS, 'V', 0x01}, out[len(out)-3:])
}

func TestNew(t *testing.T) {
	p, err := New(Config{Type: "none"})
	require.NoError(t, err)
	assert.Equal(t, "none", p.Kind())
	assert.False(t, p.IsConnected())

	_, err = New(Config{Type: "usb"})
	assert.Error(t, err)

	_, err = New(Config{Type: "bluetooth"})
	assert.Error(t, err)

	p, err = New(Config{Type: "network", Address: "127.0.0.1:9100"})
	require.NoError(t, err)
	assert.Equal(t, "network", p.Kind())
}

func TestSpool_RecordsCopies(t *testing.T) {
	s := &Spool{}
	job := []byte("abc")
	require.NoError(t, s.Print(job))
	job[0] = 'z'

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "abc", string(jobs[0]))
}
