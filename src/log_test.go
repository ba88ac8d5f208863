package firefly

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_Disabled(t *testing.T) {
	var l, err = log_init(false, "")
	require.NoError(t, err)
	require.Nil(t, l)

	// The nil logger swallows everything quietly.
	l.log_frame(1, 2, false, []byte("x"), "ok")
	l.log_term()
}

func TestLog_SingleFile(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "firefly.log")

	var l, err = log_init(false, path)
	require.NoError(t, err)
	require.NotNil(t, l)

	l.log_frame(3, 2, true, []byte("hello"), "ok")
	l.log_frame(4, 2, false, []byte("snooped"), "snoop")
	l.log_term()

	var data, readErr = os.ReadFile(path)
	require.NoError(t, readErr)

	var text = string(data)
	assert.True(t, strings.HasPrefix(text, "time,from,to,ack,len,payload,class"))
	assert.Contains(t, text, "3,2,1,5,hello,ok")
	assert.Contains(t, text, "4,2,0,7,snooped,snoop")
}

func TestLog_DailyNames(t *testing.T) {
	var dir = t.TempDir()

	var l, err = log_init(true, dir)
	require.NoError(t, err)
	require.NotNil(t, l)

	l.log_frame(1, 2, false, []byte("x"), "ok")
	l.log_term()

	var expected = filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	var _, statErr = os.Stat(expected)
	assert.NoError(t, statErr)
}

func TestLog_DailyNeedsDirectory(t *testing.T) {
	var file = filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	var _, err = log_init(true, file)
	assert.Error(t, err)
}
