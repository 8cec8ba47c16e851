package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/saveconnectd/pkg/client"
	"github.com/pterm/pterm"
)

// AccessoryTableData returns the property table for an accessory, with bold ID and value
func AccessoryTableData(a client.Accessory) pterm.TableData {
	data := pterm.TableData{
		[]string{pterm.Bold.Sprint("ID"), pterm.Bold.Sprint(a.ID)},
		[]string{"Name", a.Name},
		[]string{"Host", a.Host},
		[]string{"Model", fmt.Sprintf("%s %s", a.Manufacturer, a.Model)},
		[]string{"Refresh", onOff(a.Switches.Refresh)},
		[]string{"Crowded", onOff(a.Switches.Crowded)},
	}
	if a.LastReading != nil {
		data = append(data,
			[]string{"Active Mode", fmt.Sprintf("%s (code %d)", a.LastReading.Mode, a.LastReading.Code)},
			[]string{"Last Read", formatReadingAt(a.LastReading.At)},
		)
	} else {
		data = append(data, []string{"Last Read", "N/A"})
	}
	if a.LastError != "" {
		data = append(data, []string{"Last Error", a.LastError})
	}
	return data
}

// AccessoryParseable returns the parseable key=value string for an accessory
func AccessoryParseable(a client.Accessory) string {
	parts := []string{
		fmt.Sprintf("id=%q", a.ID),
		fmt.Sprintf("name=%q", a.Name),
		fmt.Sprintf("host=%q", a.Host),
		fmt.Sprintf("refresh=%v", a.Switches.Refresh),
		fmt.Sprintf("crowded=%v", a.Switches.Crowded),
	}
	if a.LastReading != nil {
		parts = append(parts,
			fmt.Sprintf("mode=%q", a.LastReading.Mode),
			fmt.Sprintf("code=%d", a.LastReading.Code),
			fmt.Sprintf("lastread=%d", a.LastReading.At.Unix()),
		)
	}
	if a.LastError != "" {
		parts = append(parts, fmt.Sprintf("error=%q", a.LastError))
	}
	return strings.Join(parts, " ")
}

// ReadingParseable returns the parseable key=value string for a poll result
func ReadingParseable(id string, r client.Reading) string {
	return fmt.Sprintf("id=%q mode=%q code=%d refresh=%v crowded=%v lastread=%d",
		id, r.Mode, r.Code, r.Switches.Refresh, r.Switches.Crowded, r.At.Unix())
}

// formatReadingAt formats the time of a reading for display
func formatReadingAt(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(time.RFC1123Z)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// parseOnOff accepts on/off, true/false and 1/0
func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid switch value: %s. Must be on or off", s)
}
