package upnp

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/samsungtv/internal/logging"
)

// Service is one remote-invocable UPnP service discovered on a TV.
type Service struct {
	// Name is the short lookup name (e.g. "MainTVAgent2")
	Name string
	// Type is the full service type URN
	Type string
	// ControlURL is the absolute SOAP control endpoint
	ControlURL string

	client  *http.Client
	actions map[string]*Action
}

// Action is a named SOAP action with positional arguments.
type Action struct {
	// Name is the action name (e.g. "SetMainTVChannel")
	Name string
	// In holds input argument names in declaration order
	In []string
	// Out holds output argument names in declaration order
	Out []string

	service *Service
}

// Action looks up an action by name. Absence is a normal state.
func (s *Service) Action(name string) (*Action, bool) {
	a, ok := s.actions[name]
	return a, ok
}

// Actions returns the action names offered by this service.
func (s *Service) Actions() []string {
	names := make([]string, 0, len(s.actions))
	for name := range s.actions {
		names = append(names, name)
	}
	return names
}

// SOAPError is a SOAP fault returned by the TV for an action call.
type SOAPError struct {
	// Action is the action that faulted
	Action string
	// Code is the UPnP error code, if the fault carried one
	Code string
	// Description is the UPnP error description
	Description string
}

func (e *SOAPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upnp: action %s failed: %s (code %s)", e.Action, e.Description, e.Code)
	}
	return fmt.Sprintf("upnp: action %s failed: %s", e.Action, e.Description)
}

// Invoke calls the action with positional input arguments and returns the
// output arguments as an ordered tuple. Missing trailing inputs are sent
// as empty strings; extra inputs are an error.
func (a *Action) Invoke(ctx context.Context, args ...string) ([]string, error) {
	if len(args) > len(a.In) {
		return nil, fmt.Errorf("upnp: action %s takes %d arguments, got %d", a.Name, len(a.In), len(args))
	}

	envelope := buildEnvelope(a, args)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.service.ControlURL, bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("upnp: build control request: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPACTION", fmt.Sprintf("%q", a.service.Type+"#"+a.Name))

	logging.Debug("Invoking UPnP action",
		zap.String("service", a.service.Name),
		zap.String("action", a.Name),
		zap.Strings("args", args),
	)

	resp, err := a.service.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upnp: invoke %s: %w", a.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("upnp: read %s response: %w", a.Name, err)
	}

	if resp.StatusCode != http.StatusOK {
		if soapErr := parseFault(a.Name, body); soapErr != nil {
			return nil, soapErr
		}
		return nil, fmt.Errorf("upnp: invoke %s: unexpected status %s", a.Name, resp.Status)
	}

	return parseResponse(a, body)
}

func buildEnvelope(a *Action, args []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">`)
	buf.WriteString(`<s:Body>`)
	fmt.Fprintf(&buf, `<u:%s xmlns:u="%s">`, a.Name, a.service.Type)
	for i, name := range a.In {
		value := ""
		if i < len(args) {
			value = args[i]
		}
		fmt.Fprintf(&buf, "<%s>%s</%s>", name, escapeXML(value), name)
	}
	fmt.Fprintf(&buf, `</u:%s>`, a.Name)
	buf.WriteString(`</s:Body></s:Envelope>`)
	return buf.Bytes()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	// EscapeText only errors on a failing writer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// parseResponse extracts the output argument values, in declared order,
// from the <u:ActionNameResponse> element.
func parseResponse(a *Action, body []byte) ([]string, error) {
	values := map[string]string{}

	decoder := xml.NewDecoder(bytes.NewReader(body))
	inResponse := false
	var field string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("upnp: parse %s response: %w", a.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == a.Name+"Response" {
				inResponse = true
			} else if inResponse {
				field = t.Name.Local
			}
		case xml.CharData:
			if inResponse && field != "" {
				values[field] += string(t)
			}
		case xml.EndElement:
			if t.Name.Local == a.Name+"Response" {
				inResponse = false
			}
			if t.Name.Local == field {
				field = ""
			}
		}
	}

	out := make([]string, len(a.Out))
	for i, name := range a.Out {
		out[i] = values[name]
	}
	return out, nil
}

// soapFault mirrors the UPnP error detail inside a SOAP fault body.
type soapFault struct {
	XMLName xml.Name `xml:"Envelope"`
	Code    string   `xml:"Body>Fault>detail>UPnPError>errorCode"`
	Desc    string   `xml:"Body>Fault>detail>UPnPError>errorDescription"`
	String  string   `xml:"Body>Fault>faultstring"`
}

func parseFault(action string, body []byte) *SOAPError {
	var fault soapFault
	if err := xml.Unmarshal(body, &fault); err != nil {
		return nil
	}
	if fault.Code == "" && fault.Desc == "" && fault.String == "" {
		return nil
	}

	desc := fault.Desc
	if desc == "" {
		desc = fault.String
	}
	if desc == "" {
		desc = "UPnP fault"
	}
	return &SOAPError{Action: action, Code: fault.Code, Description: strings.TrimSpace(desc)}
}
