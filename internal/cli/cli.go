package cli

import "github.com/alecthomas/kong"

type CLI struct {
	GenerateKey GenerateKey      `kong:"cmd,help='Generate new encryption key and nonce.'"`
	Run         Run              `kong:"cmd,help='Run forwarder.'"`
	Health      Health           `kong:"cmd,help='Check forwarder health via metrics endpoint.'"`
	Install     Install          `kong:"cmd,help='Install forwarder as a systemd service.'"`
	Uninstall   Uninstall        `kong:"cmd,help='Remove systemd service of forwarder.'"`
	Version     kong.VersionFlag `kong:"help='Print version.',short='v'"`
}
