package storage

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
)

// Tag/value XML codec for saved-configuration backup documents. The format is
// a document header containing one section per network, each section holding
// typed <string>/<int>/<boolean> values identified by a name attribute:
//
//	<NetworkList>
//	 <Network>
//	  <WifiConfiguration>
//	   <string name="SSID">cafe</string>
//	   <string name="Security">PSK</string>
//	   <int name="NetworkID" value="12" />
//	   <boolean name="Hidden" value="false" />
//	  </WifiConfiguration>
//	  <IpConfiguration>
//	   <string name="ProxySettings">NONE</string>
//	  </IpConfiguration>
//	 </Network>
//	</NetworkList>

const (
	tagNetworkList       = "NetworkList"
	tagNetwork           = "Network"
	tagWifiConfiguration = "WifiConfiguration"
	tagIPConfiguration   = "IpConfiguration"
	tagSubscriptionList  = "SubscriptionList"
	tagSubscription      = "PasspointConfiguration"
)

func startElement(tag string, attrs ...xml.Attr) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: tag}, Attr: attrs}
}

func nameAttr(name string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: "name"}, Value: name}
}

func writeStringValue(enc *xml.Encoder, name, value string) error {
	start := startElement("string", nameAttr(name))
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(value)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func writeIntValue(enc *xml.Encoder, name string, value int) error {
	start := startElement("int", nameAttr(name),
		xml.Attr{Name: xml.Name{Local: "value"}, Value: strconv.Itoa(value)})
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func writeBoolValue(enc *xml.Encoder, name string, value bool) error {
	start := startElement("boolean", nameAttr(name),
		xml.Attr{Name: xml.Name{Local: "value"}, Value: strconv.FormatBool(value)})
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

// WriteNetworkList serializes saved standard configurations as a backup
// document.
func WriteNetworkList(w io.Writer, configs []domain.Config) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")

	listStart := startElement(tagNetworkList)
	if err := enc.EncodeToken(listStart); err != nil {
		return err
	}
	for _, cfg := range configs {
		netStart := startElement(tagNetwork)
		if err := enc.EncodeToken(netStart); err != nil {
			return err
		}

		wifiStart := startElement(tagWifiConfiguration)
		if err := enc.EncodeToken(wifiStart); err != nil {
			return err
		}
		if err := writeStringValue(enc, "SSID", cfg.SSID); err != nil {
			return err
		}
		if err := writeStringValue(enc, "Security", string(cfg.Security)); err != nil {
			return err
		}
		if err := writeIntValue(enc, "NetworkID", cfg.NetworkID); err != nil {
			return err
		}
		if err := writeBoolValue(enc, "Hidden", cfg.Hidden); err != nil {
			return err
		}
		if err := enc.EncodeToken(wifiStart.End()); err != nil {
			return err
		}

		ipStart := startElement(tagIPConfiguration)
		if err := enc.EncodeToken(ipStart); err != nil {
			return err
		}
		proxy := cfg.Proxy
		if proxy == "" {
			proxy = domain.ProxyNone
		}
		if err := writeStringValue(enc, "ProxySettings", string(proxy)); err != nil {
			return err
		}
		if err := enc.EncodeToken(ipStart.End()); err != nil {
			return err
		}

		if err := enc.EncodeToken(netStart.End()); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(listStart.End()); err != nil {
		return err
	}
	return enc.Flush()
}

// WriteSubscriptionList serializes saved Passpoint subscriptions.
func WriteSubscriptionList(w io.Writer, configs []domain.PasspointConfig) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")

	listStart := startElement(tagSubscriptionList)
	if err := enc.EncodeToken(listStart); err != nil {
		return err
	}
	for _, cfg := range configs {
		subStart := startElement(tagSubscription)
		if err := enc.EncodeToken(subStart); err != nil {
			return err
		}
		if err := writeStringValue(enc, "FQDN", cfg.FQDN); err != nil {
			return err
		}
		if err := writeStringValue(enc, "FriendlyName", cfg.FriendlyName); err != nil {
			return err
		}
		if err := enc.EncodeToken(subStart.End()); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(listStart.End()); err != nil {
		return err
	}
	return enc.Flush()
}

// readSection collects the typed values inside the current element, until the
// matching end tag. Nested section tags are flattened into the same value map
// since value names are unique per network.
func readSection(dec *xml.Decoder, end xml.EndElement) (map[string]string, error) {
	values := make(map[string]string)
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "string":
				name, value, err := readCharValue(dec, t)
				if err != nil {
					return nil, err
				}
				values[name] = value
			case "int", "boolean":
				var name, value string
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "name":
						name = a.Value
					case "value":
						value = a.Value
					}
				}
				if name == "" {
					return nil, fmt.Errorf("%s value without name attribute", t.Name.Local)
				}
				values[name] = value
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			default:
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == end.Name.Local && depth == 0 {
				return values, nil
			}
			if depth > 0 {
				depth--
			}
		}
	}
}

func readCharValue(dec *xml.Decoder, start xml.StartElement) (string, string, error) {
	var name string
	for _, a := range start.Attr {
		if a.Name.Local == "name" {
			name = a.Value
		}
	}
	if name == "" {
		return "", "", fmt.Errorf("string value without name attribute")
	}
	var value string
	if err := dec.DecodeElement(&value, &start); err != nil {
		return "", "", err
	}
	return name, value, nil
}

func configFromValues(values map[string]string) (domain.Config, error) {
	cfg := domain.Config{
		SSID:     values["SSID"],
		Security: domain.SecurityType(values["Security"]),
	}
	if cfg.SSID == "" {
		return cfg, fmt.Errorf("network record without SSID")
	}
	if id, ok := values["NetworkID"]; ok {
		n, err := strconv.Atoi(id)
		if err != nil {
			return cfg, fmt.Errorf("bad NetworkID %q: %w", id, err)
		}
		cfg.NetworkID = n
	}
	if hidden, ok := values["Hidden"]; ok {
		b, err := strconv.ParseBool(hidden)
		if err != nil {
			return cfg, fmt.Errorf("bad Hidden %q: %w", hidden, err)
		}
		cfg.Hidden = b
	}
	proxy := domain.ProxySettings(values["ProxySettings"])
	if proxy == "" {
		proxy = domain.ProxyNone
	}
	// An unrecognized proxy mode is fatal for this record only; the rest of
	// the document still parses.
	if !domain.KnownProxySettings(proxy) {
		return cfg, fmt.Errorf("unknown ProxySettings value %q", proxy)
	}
	cfg.Proxy = proxy
	return cfg, nil
}

// ReadNetworkList parses a backup document. Records that fail to parse are
// skipped with a high-severity log; only document-level failures return an
// error.
func ReadNetworkList(r io.Reader) ([]domain.Config, error) {
	dec := xml.NewDecoder(r)
	var configs []domain.Config
	seenHeader := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case tagNetworkList:
			seenHeader = true
		case tagNetwork:
			values, err := readSection(dec, start.End())
			if err != nil {
				return nil, err
			}
			cfg, err := configFromValues(values)
			if err != nil {
				slog.Error("skipping unparsable network record", "error", err)
				continue
			}
			configs = append(configs, cfg)
		}
	}
	if !seenHeader {
		return nil, fmt.Errorf("missing %s document header", tagNetworkList)
	}
	return configs, nil
}

// ReadSubscriptionList parses a Passpoint subscription document with the same
// per-record failure semantics as ReadNetworkList.
func ReadSubscriptionList(r io.Reader) ([]domain.PasspointConfig, error) {
	dec := xml.NewDecoder(r)
	var configs []domain.PasspointConfig
	seenHeader := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case tagSubscriptionList:
			seenHeader = true
		case tagSubscription:
			values, err := readSection(dec, start.End())
			if err != nil {
				return nil, err
			}
			if values["FQDN"] == "" {
				slog.Error("skipping subscription record without FQDN")
				continue
			}
			configs = append(configs, domain.PasspointConfig{
				FQDN:         values["FQDN"],
				FriendlyName: values["FriendlyName"],
			})
		}
	}
	if !seenHeader {
		return nil, fmt.Errorf("missing %s document header", tagSubscriptionList)
	}
	return configs, nil
}
