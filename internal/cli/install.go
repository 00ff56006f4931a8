package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

const (
	defaultServiceName = "portseal"
	defaultUnitDir     = "/etc/systemd/system"
)

var systemdUnitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=TCP port forwarding service
After=network.target

[Service]
Type=simple
ExecStart={{ .Binary }} run {{ .ConfigPath }}
Restart=always
RestartSec=5s

[Install]
WantedBy=multi-user.target
`))

// systemctl is replaced in tests.
var systemctl = func(args ...string) error {
	cmd := exec.Command("systemctl", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run() //nolint: wrapcheck
}

type Install struct {
	ConfigPath string `kong:"arg,required,type='existingfile',help='Path to config file.',name='config-path'"` //nolint: lll
	Name       string `kong:"default='portseal',help='Name of systemd service.'"`
	UnitDir    string `kong:"default='/etc/systemd/system',help='Directory for systemd unit files.',type='path'"`
}

func (i *Install) Run(cli *CLI, _ string) error {
	binary, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot find path to executable: %w", err)
	}

	configPath, err := filepath.Abs(i.ConfigPath)
	if err != nil {
		return fmt.Errorf("cannot find absolute path to config: %w", err)
	}

	unit, err := renderUnit(binary, configPath)
	if err != nil {
		return err
	}

	unitPath := filepath.Join(getUnitDir(i.UnitDir), getServiceName(i.Name)+".service")

	if err := os.WriteFile(unitPath, unit, 0o644); err != nil { //nolint: gosec
		return fmt.Errorf("cannot write unit file: %w", err)
	}

	if err := systemctl("daemon-reload"); err != nil {
		return fmt.Errorf("cannot reload systemd: %w", err)
	}

	if err := systemctl("enable", getServiceName(i.Name)); err != nil {
		return fmt.Errorf("cannot enable service: %w", err)
	}

	fmt.Printf("Service has been installed. Start it with: systemctl start %s\n", getServiceName(i.Name))

	return nil
}

type Uninstall struct {
	Name    string `kong:"default='portseal',help='Name of systemd service.'"`
	UnitDir string `kong:"default='/etc/systemd/system',help='Directory for systemd unit files.',type='path'"`
}

func (u *Uninstall) Run(cli *CLI, _ string) error {
	name := getServiceName(u.Name)

	// сервис может быть уже остановлен
	systemctl("stop", name) //nolint: errcheck

	if err := systemctl("disable", name); err != nil {
		return fmt.Errorf("cannot disable service: %w", err)
	}

	unitPath := filepath.Join(getUnitDir(u.UnitDir), name+".service")

	if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot remove unit file: %w", err)
	}

	if err := systemctl("daemon-reload"); err != nil {
		return fmt.Errorf("cannot reload systemd: %w", err)
	}

	fmt.Printf("Service %s has been uninstalled\n", name)

	return nil
}

func renderUnit(binary, configPath string) ([]byte, error) {
	buf := &bytes.Buffer{}

	err := systemdUnitTemplate.Execute(buf, struct {
		Binary     string
		ConfigPath string
	}{
		Binary:     binary,
		ConfigPath: configPath,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot render unit file: %w", err)
	}

	return buf.Bytes(), nil
}

func getServiceName(name string) string {
	if name == "" {
		return defaultServiceName
	}

	return name
}

func getUnitDir(dir string) string {
	if dir == "" {
		return defaultUnitDir
	}

	return dir
}
