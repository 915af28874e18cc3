package main

import (
	"log"

	"hdrview/internal/ui"
)

func main() {
	log.SetPrefix("hdrview ")
	ui.CreateApplication()
}
