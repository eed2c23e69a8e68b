// Command fake_upscaler mimics the command line of realesrgan-ncnn-vulkan for
// adapter tests. It copies the input to the output unless -mode says otherwise.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

func main() {
	var in, out, modelDir, modelName, scale, mode string
	flag.StringVar(&in, "i", "", "input path")
	flag.StringVar(&out, "o", "", "output path")
	flag.StringVar(&modelDir, "m", "", "model dir")
	flag.StringVar(&modelName, "n", "", "model name")
	flag.StringVar(&scale, "s", "4", "scale")
	flag.StringVar(&mode, "mode", "copy", "copy|fail|nooutput|sleep|echo-scale")
	flag.Parse()

	switch mode {
	case "fail":
		fmt.Fprintln(os.Stderr, "vkCreateInstance ok")
		fmt.Fprintln(os.Stderr, "boom: out of device memory")
		os.Exit(3)
	case "nooutput":
		return
	case "sleep":
		time.Sleep(30 * time.Second)
		return
	case "echo-scale":
		if err := os.WriteFile(out, []byte(scale), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	src, err := os.Open(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer src.Close()
	dst, err := os.Create(out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := io.Copy(dst, src); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := dst.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("%s/%s x%s done\n", modelDir, modelName, scale)
}
