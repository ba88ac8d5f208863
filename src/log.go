package firefly

/*------------------------------------------------------------------
 *
 * Purpose:	Save received frames to a log file.
 *
 * Description: Raw frames are cryptic to read after the fact, so the
 *		log is CSV with separated columns: timestamp, source,
 *		destination, ack flag, length, payload, and how the
 *		frame was classified (delivered, ack bookkeeping, or
 *		snooped traffic for another node).
 *
 *		There are two alternatives:
 *
 *		log_path = file		Everything in that one file.
 *
 *		log_path = dir + daily	Files named 2026-08-01.log
 *					are created in the directory,
 *					rolling at midnight.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"
)

var log_csv_header = []string{"time", "from", "to", "ack", "len", "payload", "class"}

type frame_log_s struct {
	mutex       sync.Mutex
	daily_names bool
	path        string
	fp          *os.File
	writer      *csv.Writer
	open_fname  string
	name_format *strftime.Strftime
}

/*-------------------------------------------------------------------
 *
 * Name:        log_init
 *
 * Purpose:	Initialization at start of application.
 *
 * Inputs:	daily_names	- True if daily names should be
 *				  generated.  In this case path is a
 *				  directory; otherwise it is the file
 *				  name.  Empty path disables logging
 *				  entirely (returns nil, and every
 *				  method is a no-op on nil).
 *
 *------------------------------------------------------------------*/

func log_init(daily_names bool, path string) (*frame_log_s, error) {
	if path == "" {
		return nil, nil
	}

	var l = &frame_log_s{
		daily_names: daily_names,
		path:        path,
	}

	if daily_names {
		var stat, statErr = os.Stat(path)
		if statErr != nil || !stat.IsDir() {
			return nil, fmt.Errorf("log: %q is not a directory", path)
		}

		var format, err = strftime.New("%Y-%m-%d.log")
		if err != nil {
			return nil, err
		}
		l.name_format = format

		return l, nil
	}

	var fp, openErr = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if openErr != nil {
		return nil, fmt.Errorf("log: %w", openErr)
	}
	l.fp = fp
	l.writer = csv.NewWriter(fp)

	if stat, _ := fp.Stat(); stat != nil && stat.Size() == 0 {
		l.writer.Write(log_csv_header)
	}

	return l, nil
}

// Rolls to today's file when daily names are in use.  The file stays
// open between frames; we don't open/close for every new item.
func (l *frame_log_s) roll(now time.Time) {
	if !l.daily_names {
		return
	}

	var fname = filepath.Join(l.path, l.name_format.FormatString(now))
	if fname == l.open_fname && l.fp != nil {
		return
	}

	if l.fp != nil {
		l.writer.Flush()
		l.fp.Close()
		l.fp = nil
		l.writer = nil
	}

	var fp, err = os.OpenFile(fname, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		text_color_set(DW_COLOR_ERROR)
		dw_printf("Can't open log file %s: %s\n", fname, err)
		return
	}

	l.fp = fp
	l.writer = csv.NewWriter(fp)
	l.open_fname = fname

	if stat, _ := fp.Stat(); stat != nil && stat.Size() == 0 {
		l.writer.Write(log_csv_header)
	}
}

func (l *frame_log_s) log_frame(from byte, to byte, ack_requested bool, payload []byte, class string) {
	if l == nil {
		return
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	var now = time.Now()
	l.roll(now)
	if l.writer == nil {
		return
	}

	var ack = "0"
	if ack_requested {
		ack = "1"
	}

	l.writer.Write([]string{
		now.Format(time.RFC3339),
		strconv.Itoa(int(from)),
		strconv.Itoa(int(to)),
		ack,
		strconv.Itoa(len(payload)),
		printable_payload(payload),
		class,
	})
	l.writer.Flush()
}

func (l *frame_log_s) log_term() {
	if l == nil {
		return
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.writer != nil {
		l.writer.Flush()
	}
	if l.fp != nil {
		l.fp.Close()
		l.fp = nil
	}
}
