// Command autofix relays GitHub issue webhooks into an automated fix pipeline.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

const banner = `
 █████╗ ██╗   ██╗████████╗ ██████╗ ███████╗██╗██╗  ██╗
██╔══██╗██║   ██║╚══██╔══╝██╔═══██╗██╔════╝██║╚██╗██╔╝
███████║██║   ██║   ██║   ██║   ██║█████╗  ██║ ╚███╔╝
██╔══██║██║   ██║   ██║   ██║   ██║██╔══╝  ██║ ██╔██╗
██║  ██║╚██████╔╝   ██║   ╚██████╔╝██║     ██║██╔╝ ██╗
╚═╝  ╚═╝ ╚═════╝    ╚═╝    ╚═════╝ ╚═╝     ╚═╝╚═╝  ╚═╝
`
