package main

import (
	"os"

	"upscaled/internal/upscalectl"
)

func main() { os.Exit(upscalectl.Main()) }
