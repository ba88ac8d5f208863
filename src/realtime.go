//go:build linux

package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Keep the scheduler and the pager out of the timing
 *		loops.
 *
 * Description:	A slot is 500 us.  A page fault or a scheduling
 *		quantum given to something else in the middle of a
 *		frame shifts every remaining edge.  SCHED_FIFO and
 *		locked memory take both off the table when we are
 *		allowed to have them; when not (not root, no
 *		CAP_SYS_NICE) the link still works, just with more
 *		postamble rejects on a loaded box.
 *
 *------------------------------------------------------------------*/

import (
	"runtime"

	"golang.org/x/sys/unix"
)

const rt_priority = 50

func enable_realtime() {
	// Pin this goroutine so the priority applies to the thread
	// actually running the timing loops.
	runtime.LockOSThread()

	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		text_color_set(DW_COLOR_DEBUG)
		dw_printf("Could not lock memory (%s).  Continuing without.\n", err)
	}

	var attr = unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_FIFO,
		Priority: rt_priority,
	}
	if err := unix.SchedSetAttr(0, &attr, 0); err != nil {
		text_color_set(DW_COLOR_DEBUG)
		dw_printf("Could not get real-time priority (%s).  Continuing without.\n", err)
	}
}
