package tv

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/muurk/samsungtv/internal/logging"
)

// Source is one external input (HDMI, AV, TV tuner, ...). Sources are
// value objects identified by their numeric ID.
type Source struct {
	// ID is the input's numeric identifier
	ID int
	// Name is the fixed input name (e.g. "HDMI1")
	Name string
	// Label is the user-assigned name when one is set, otherwise Name
	Label string
	// DeviceName is the connected device's advertised name, if any
	DeviceName string
	// Editable reports whether the label can be changed
	Editable bool
	// Connected reports whether a device is attached to the input
	Connected bool

	tv *TV
}

func (s *Source) String() string {
	if s.Label != "" && s.Label != s.Name {
		return fmt.Sprintf("%s (%s)", s.Name, s.Label)
	}
	return s.Name
}

// Activate switches the TV to this input. Inputs with nothing attached
// are skipped, matching the TV's own menu behavior.
func (s *Source) Activate(ctx context.Context) error {
	if !s.Connected {
		logging.Warn("Source has no device attached, not switching", zap.String("source", s.Name))
		return nil
	}
	id := strconv.Itoa(s.ID)
	_, _, err := s.tv.invoke(ctx, svcMainTVAgent, "SetMainTVSource", s.Name, id, id)
	return err
}

// sourceNode mirrors one <Source> element of the source list payload.
type sourceNode struct {
	SourceType   string `xml:"SourceType"`
	ID           int    `xml:"ID"`
	Editable     string `xml:"Editable"`
	Connected    string `xml:"Connected"`
	EditNameType string `xml:"EditNameType"`
	DeviceName   string `xml:"DeviceName"`
}

type sourceList struct {
	XMLName xml.Name     `xml:"SourceList"`
	Sources []sourceNode `xml:"Source"`
}

// Sources lists the TV's external inputs.
func (t *TV) Sources(ctx context.Context) ([]Source, bool, error) {
	out, ok, err := t.invoke(ctx, svcMainTVAgent, "GetSourceList")
	if err != nil || !ok {
		return nil, ok, err
	}

	var list sourceList
	if err := xml.Unmarshal([]byte(field(out, 1)), &list); err != nil {
		return nil, true, fmt.Errorf("tv: parse source list: %w", err)
	}

	sources := make([]Source, 0, len(list.Sources))
	for _, node := range list.Sources {
		src := Source{
			ID:         node.ID,
			Name:       node.SourceType,
			Label:      node.SourceType,
			DeviceName: node.DeviceName,
			Editable:   node.Editable == "Yes",
			Connected:  node.Connected == "Yes",
			tv:         t,
		}
		if src.Editable && node.EditNameType != "" && node.EditNameType != "NONE" {
			src.Label = node.EditNameType
		}
		sources = append(sources, src)
	}
	return sources, true, nil
}

// Source returns the currently active input.
func (t *TV) Source(ctx context.Context) (*Source, bool, error) {
	out, ok, err := t.invoke(ctx, svcMainTVAgent, "GetCurrentExternalSource")
	if err != nil || !ok {
		return nil, ok, err
	}

	id, err := parseIntField("GetCurrentExternalSource", out, 2)
	if err != nil {
		return nil, true, err
	}

	sources, ok, err := t.Sources(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	for i := range sources {
		if sources[i].ID == id {
			return &sources[i], true, nil
		}
	}
	return nil, true, fmt.Errorf("tv: active source id %d not in source list", id)
}

// SetSource switches to the input matching the given name, label,
// device name, or numeric ID.
func (t *TV) SetSource(ctx context.Context, name string) error {
	sources, ok, err := t.Sources(ctx)
	if err != nil {
		return err
	}
	if !ok {
		logging.Warn("Source selection unsupported on this TV")
		return nil
	}

	id, idErr := strconv.Atoi(name)
	for i := range sources {
		s := &sources[i]
		if s.Name == name || s.Label == name || (s.DeviceName != "" && s.DeviceName == name) {
			return s.Activate(ctx)
		}
		if idErr == nil && s.ID == id {
			return s.Activate(ctx)
		}
	}
	return fmt.Errorf("tv: source %q not found", name)
}
