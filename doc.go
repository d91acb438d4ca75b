/*
Package seamcarver is a content aware image resize library, which shrinks the source image
both horizontally and vertically by removing, one at a time, the connected paths of pixels
(seams) carrying the least visual information.

The energy of a pixel is the squared color difference with its neighbours across the seam
direction. Pixels with an alpha of 244 or less are always carved out first.

The package provides a command line interface, supporting various flags for the different
rescaling and preview options. To check the supported commands type:

	$ seamcarver --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"log"
		"os"

		"github.com/esimov/seamcarver"
	)

	func main() {
		p := &seamcarver.Processor{
			WidthPercent:  80,
			HeightPercent: 100,
		}

		in, _ := os.Open("input.png")
		defer in.Close()
		out, _ := os.Create("output.png")
		defer out.Close()

		format, _ := seamcarver.FormatFromFilename(out.Name())
		if err := p.Process(in, out, format); err != nil {
			log.Fatalf("error rescaling image: %v", err)
		}
	}
*/
package seamcarver
