package main

import (
	firefly "github.com/lampyrid/firefly/src"
)

func main() {
	firefly.PinCtlMain()
}
