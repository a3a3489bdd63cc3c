package upnp

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/samsungtv/internal/logging"
)

// DefaultFetchTimeout bounds each description/SCPD HTTP fetch.
const DefaultFetchTimeout = 5 * time.Second

// maxDocumentSize caps description and SCPD documents (1 MiB)
const maxDocumentSize = 1 << 20

// deviceDescription mirrors the root of a UPnP device-description document.
type deviceDescription struct {
	XMLName xml.Name          `xml:"root"`
	URLBase string            `xml:"URLBase"`
	Device  descriptionDevice `xml:"device"`
}

type descriptionDevice struct {
	DeviceType   string               `xml:"deviceType"`
	FriendlyName string               `xml:"friendlyName"`
	Manufacturer string               `xml:"manufacturer"`
	ModelName    string               `xml:"modelName"`
	UDN          string               `xml:"UDN"`
	Services     []descriptionService `xml:"serviceList>service"`
	Devices      []descriptionDevice  `xml:"deviceList>device"`
}

type descriptionService struct {
	ServiceType string `xml:"serviceType"`
	ServiceID   string `xml:"serviceId"`
	ControlURL  string `xml:"controlURL"`
	SCPDURL     string `xml:"SCPDURL"`
}

// scpd mirrors a service control protocol description document.
type scpd struct {
	XMLName xml.Name     `xml:"scpd"`
	Actions []scpdAction `xml:"actionList>action"`
}

type scpdAction struct {
	Name      string         `xml:"name"`
	Arguments []scpdArgument `xml:"argumentList>argument"`
}

type scpdArgument struct {
	Name      string `xml:"name"`
	Direction string `xml:"direction"`
}

// fetchDescription retrieves and parses one device-description document.
func fetchDescription(ctx context.Context, client *http.Client, location string) (*deviceDescription, error) {
	body, err := fetchDocument(ctx, client, location)
	if err != nil {
		return nil, err
	}

	var desc deviceDescription
	if err := xml.Unmarshal(body, &desc); err != nil {
		return nil, fmt.Errorf("upnp: parse description %s: %w", location, err)
	}
	return &desc, nil
}

// fetchSCPD retrieves and parses a service's SCPD document.
func fetchSCPD(ctx context.Context, client *http.Client, scpdURL string) (*scpd, error) {
	body, err := fetchDocument(ctx, client, scpdURL)
	if err != nil {
		return nil, err
	}

	var doc scpd
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("upnp: parse SCPD %s: %w", scpdURL, err)
	}
	return &doc, nil
}

func fetchDocument(ctx context.Context, client *http.Client, docURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, fmt.Errorf("upnp: build request for %s: %w", docURL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upnp: fetch %s: %w", docURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upnp: fetch %s: unexpected status %s", docURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("upnp: read %s: %w", docURL, err)
	}

	logging.Debug("Fetched UPnP document",
		zap.String("url", docURL),
		zap.Int("bytes", len(body)),
	)
	return body, nil
}

// resolveURL makes a possibly-relative document URL absolute against the
// description location (or URLBase when the device provides one).
func resolveURL(location, urlBase, ref string) (string, error) {
	base := location
	if urlBase != "" {
		base = urlBase
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("upnp: parse base URL %q: %w", base, err)
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("upnp: parse URL %q: %w", ref, err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// shortName derives the lookup name for a service or device from its
// URN: "urn:samsung.com:serviceId:MainTVAgent2" -> "MainTVAgent2",
// "urn:schemas-upnp-org:device:MediaRenderer:1" -> "MediaRenderer".
func shortName(urn string) string {
	parts := strings.Split(urn, ":")
	if len(parts) == 0 {
		return urn
	}
	// Trailing version segment (":1") on types
	last := parts[len(parts)-1]
	if len(parts) >= 2 && isVersion(last) {
		return parts[len(parts)-2]
	}
	return last
}

func isVersion(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
