package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"
)

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// BodyLimit returns the request body limit in bytes
func (c *ServerConfig) BodyLimit() int {
	return c.BodyLimitMB * 1024 * 1024
}

// Location returns the configured timezone for naive dates
// Returns UTC if not configured or invalid
// Supports formats:
//   - IANA timezone names: "Asia/Tokyo", "America/New_York", "UTC"
//   - Offset format: "+09:00", "-05:00", "+00:00"
func (c *SourceConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}

	loc, err := ParseTimezone(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseTimezone parses an IANA name or a "+09:00" style offset
func ParseTimezone(tz string) (*time.Location, error) {
	loc, err := time.LoadLocation(tz)
	if err == nil {
		return loc, nil
	}

	return parseOffsetTimezone(tz)
}

// parseOffsetTimezone parses timezone offset format like "+09:00", "-05:00"
func parseOffsetTimezone(offset string) (*time.Location, error) {
	matches := offsetPattern.FindStringSubmatch(offset)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid offset format: %s", offset)
	}

	sign := 1
	if matches[1] == "-" {
		sign = -1
	}

	hours, err := strconv.Atoi(matches[2])
	if err != nil {
		return nil, fmt.Errorf("invalid hours: %s", matches[2])
	}

	minutes, err := strconv.Atoi(matches[3])
	if err != nil {
		return nil, fmt.Errorf("invalid minutes: %s", matches[3])
	}

	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("offset out of range: %s", offset)
	}

	offsetSeconds := sign * (hours*3600 + minutes*60)
	return time.FixedZone(offset, offsetSeconds), nil
}
