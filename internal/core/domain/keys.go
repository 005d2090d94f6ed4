package domain

const passpointKeyPrefix = "PASSPOINT#"

// StandardKey derives the stable identity of a standard network from its SSID
// and chosen security family. Distinct (ssid, security) pairs never collide
// because the security suffix is drawn from a fixed token set that cannot
// contain the separator. An empty SSID yields the empty string so callers can
// filter malformed input instead of handling an error.
func StandardKey(ssid string, security SecurityType) string {
	if ssid == "" {
		return ""
	}
	return ssid + "," + string(security)
}

// PasspointKey derives the stable identity of a Passpoint subscription from
// its fully qualified domain name. Empty FQDN yields the empty string.
func PasspointKey(fqdn string) string {
	if fqdn == "" {
		return ""
	}
	return passpointKeyPrefix + fqdn
}

// ConfigKey derives the entry key a saved configuration belongs to.
func ConfigKey(cfg Config) string {
	return StandardKey(cfg.SSID, cfg.Security)
}
