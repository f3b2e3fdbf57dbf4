package main

import (
	"github.com/assettrack/assettrack/cmd/cli/audits"
	"github.com/assettrack/assettrack/cmd/cli/auth"
	"github.com/assettrack/assettrack/cmd/cli/items"
	"github.com/assettrack/assettrack/cmd/cli/root"
)

func main() {
	auth.Init(root.Cmd)
	items.Init(root.Cmd)
	audits.Init(root.Cmd)
	root.Execute()
}
