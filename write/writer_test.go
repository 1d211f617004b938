package write

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	i int
	x float64
}

func (c *counter) AppendWriteData(v []*Value) []*Value {
	v = append(v, &Value{Heading: "I", Value: c.i})
	v = append(v, &Value{Heading: "LongHeading", Value: c.x})
	v = append(v, &Value{Heading: "S", Value: "ok"})
	return v
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	c := &counter{}
	d := NewDisplay()
	d.AddDataAdder(c)
	require.NoError(t, d.Init(&WriteSettings{DisplayWriters: []Writer{{&buf, Logger}}}, "logger"))
	for i := 1; i <= 2; i++ {
		c.i = i
		c.x = float64(i) / 2
		require.NoError(t, d.Iterate())
	}
	require.NoError(t, d.Finish())

	want := "Beginning logger\n\nI,LongHeading,S\n1,5.000000e-01,ok\n2,1.000000e+00,ok\n"
	assert.Equal(t, want, buf.String())
}

func TestDisplayer(t *testing.T) {
	var buf bytes.Buffer
	c := &counter{}
	d := NewDisplay()
	d.AddDataAdder(c)
	settings := &WriteSettings{DisplayWriters: []Writer{{&buf, Displayer}}, Interval: time.Hour}
	require.NoError(t, d.Init(settings, "displayer"))

	for i := 1; i <= 5; i++ {
		c.i = i
		require.NoError(t, d.Iterate())
	}
	// Only the first row passes the throttle, and Finish writes the last
	require.NoError(t, d.Finish())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Beginning displayer", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, []string{"I", "LongHeading", "S"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"1", "0.000000e+00", "ok"}, strings.Fields(lines[4]))
	assert.Equal(t, "5", strings.Fields(lines[5])[0])

	// Nothing is pending after the last row was written
	require.NoError(t, d.Finish())
	assert.Len(t, strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"), 6)
}

func TestNoWriters(t *testing.T) {
	d := NewDisplay()
	d.AddDataAdder(&counter{})
	require.NoError(t, d.Init(DefaultWriteSettings(), "quiet"))
	require.NoError(t, d.Iterate())
	require.NoError(t, d.Finish())
	require.NoError(t, d.Init(nil, "quiet"))
}
