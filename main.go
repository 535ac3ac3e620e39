// slackfetch extracts file download links from exported Slack message
// archives and fetches them to local disk, one at a time, resuming where it
// left off if interrupted.
package main

import (
	"fmt"
	"os"

	"github.com/slack-tools/slackfetch/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
