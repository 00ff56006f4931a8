// portseal is a TCP port forwarder which can wrap any side of a forwarded
// connection into AES-GCM frames.
//
// Each forwarding rule has a local address it listens on and a remote
// address it connects to. Either side can be marked as encrypted: then
// traffic on that side is a stream of length-prefixed encrypted frames.
// Two portseal instances with complementary rules build an encrypted
// tunnel for any TCP protocol.
package main

import (
	"fmt"
	"runtime/debug"

	"github.com/alecthomas/kong"
	"github.com/portseal/portseal/internal/cli"
)

var version = "dev" // has to be set by ldflags

func main() {
	cli := &cli.CLI{}
	ctx := kong.Parse(cli, kong.Vars{
		"version": getVersion(),
	})

	ctx.FatalIfErrorf(ctx.Run(cli, getVersion()))
}

func getVersion() string {
	if version != "dev" {
		return version
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok || buildInfo.Main.Version == "" || buildInfo.Main.Version == "(devel)" {
		return version
	}

	return fmt.Sprintf("%s (%s)", buildInfo.Main.Version, buildInfo.GoVersion)
}
