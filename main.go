package main

import (
	"os"

	"speedmeter/cli"
)

// 发布时通过 -ldflags "-X main.version=..." 注入
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(int(cli.Run(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})))
}
