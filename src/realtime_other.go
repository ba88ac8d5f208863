//go:build !linux

package firefly

// Real-time scheduling setup is only implemented for Linux, which is
// the only place the GPIO and SPI attachments exist anyway.
func enable_realtime() {
}
