// Command genviewerjs bundles and minifies the pan/zoom/search interaction
// script that internal/render/html.go embeds as the viewerScript constant.
// It is a developer-time tool: the HTML renderer ships the unbundled ES2015
// source directly, and this script exists so that source can be authored as
// ordinary modern JS and regenerated into a minified single-file form before
// being pasted back into the Go constant. It is never invoked at runtime.
package main

import (
	"fmt"
	"os"

	"github.com/evanw/esbuild/pkg/api"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: genviewerjs <input.js> <output.min.js>")
		os.Exit(2)
	}
	inputPath, outputPath := os.Args[1], os.Args[2]

	result := api.Build(api.BuildOptions{
		EntryPoints: []string{inputPath},
		Bundle:      true,
		Write:       false,

		Platform: api.PlatformBrowser,
		Format:   api.FormatIIFE,
		Target:   api.ES2015,

		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,

		LogLevel: api.LogLevelWarning,
	})

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
		}
		os.Exit(1)
	}

	if len(result.OutputFiles) != 1 {
		fmt.Fprintln(os.Stderr, "genviewerjs: expected exactly one output file")
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, result.OutputFiles[0].Contents, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "genviewerjs: %v\n", err)
		os.Exit(1)
	}
}
