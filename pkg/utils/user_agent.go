package utils

import (
	"fmt"
	"strings"

	"github.com/avct/uasurfer"
)

type UserAgentInfo struct {
	Device  string
	OS      string
	Browser string
	Locale  string
}

var deviceNames = map[uasurfer.DeviceType]string{
	uasurfer.DeviceComputer: "Computer",
	uasurfer.DeviceTablet:   "Tablet",
	uasurfer.DevicePhone:    "Phone",
	uasurfer.DeviceConsole:  "Console",
	uasurfer.DeviceWearable: "Wearable",
	uasurfer.DeviceTV:       "TV",
}

// ParseUserAgent returns nil for agents that are not a known device class,
// such as curl or the simulation backend itself.
func ParseUserAgent(uaString string, acceptLanguage string) *UserAgentInfo {
	if uaString == "" {
		return nil
	}
	ua := uasurfer.Parse(uaString)

	device, ok := deviceNames[ua.DeviceType]
	if !ok {
		return nil
	}

	locale, _, _ := strings.Cut(acceptLanguage, ",")

	return &UserAgentInfo{
		Device:  device,
		OS:      fmt.Sprintf("%s %d.%d", ua.OS.Name.String(), ua.OS.Version.Major, ua.OS.Version.Minor),
		Browser: fmt.Sprintf("%s %d.%d", ua.Browser.Name.String(), ua.Browser.Version.Major, ua.Browser.Version.Minor),
		Locale:  strings.TrimSpace(locale),
	}
}
