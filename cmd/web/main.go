// Command web serves the logview web tool with configuration taken from
// logview.yaml and LOGVIEW_* environment variables.
package main

import (
	"fmt"
	"os"

	"logview/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if err := a.Run(); err != nil {
		a.Logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
