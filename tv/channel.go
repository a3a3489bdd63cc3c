package tv

import (
	"context"
	"encoding/xml"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/samsungtv/internal/logging"
)

// Output positions of MainTVAgent2.GetChannelListURL.
const (
	chListOutSupportList = 2
	chListOutType        = 4
	chListOutSatellite   = 5
)

// Channel is one tunable channel. Channels are value objects: two
// Channel values with the same (major, minor) pair refer to the same
// channel regardless of which listing produced them.
type Channel struct {
	XMLName xml.Name `xml:"Channel"`
	// Type is the broadcast type (e.g. "CDTV")
	Type string `xml:"ChType"`
	// Major and Minor form the display number
	Major int `xml:"MajorCh"`
	Minor int `xml:"MinorCh"`
	// PTC is the physical transmission channel
	PTC int `xml:"PTC"`
	// ProgNum is the program number within the transport stream
	ProgNum int `xml:"ProgNum"`

	tv *TV
}

// Key returns the natural (major, minor) identity.
func (c *Channel) Key() (major, minor int) {
	return c.Major, c.Minor
}

// Matches reports whether this channel has the given display number.
func (c *Channel) Matches(major, minor int) bool {
	return c.Major == major && c.Minor == minor
}

// Equal compares channels by their natural key.
func (c *Channel) Equal(other *Channel) bool {
	return other != nil && c.Major == other.Major && c.Minor == other.Minor
}

func (c *Channel) String() string {
	if c.Minor != 0 {
		return fmt.Sprintf("%d.%d", c.Major, c.Minor)
	}
	return fmt.Sprintf("%d", c.Major)
}

// node serializes the channel back to the XML fragment the tuner
// expects in SetMainTVChannel.
func (c *Channel) node() string {
	return fmt.Sprintf(
		"<Channel><ChType>%s</ChType><MajorCh>%d</MajorCh><MinorCh>%d</MinorCh><PTC>%d</PTC><ProgNum>%d</ProgNum></Channel>",
		c.Type, c.Major, c.Minor, c.PTC, c.ProgNum,
	)
}

// Activate tunes the TV to this channel.
func (c *Channel) Activate(ctx context.Context) error {
	out, ok, err := c.tv.invoke(ctx, svcMainTVAgent, "GetChannelListURL")
	if err != nil {
		return err
	}
	if !ok {
		logging.Warn("Channel activation unsupported on this TV", zap.Stringer("channel", c))
		return nil
	}

	listType := field(out, chListOutType)
	satellite := field(out, chListOutSatellite)

	// AntennaMode 1 selects the air/cable tuner
	_, _, err = c.tv.invoke(ctx, svcMainTVAgent, "SetMainTVChannel", "1", listType, satellite, c.node())
	return err
}

type channelList struct {
	XMLName  xml.Name  `xml:"ChannelList"`
	Channels []Channel `xml:"Channel"`
}

// Channels lists all channels known to the tuner.
func (t *TV) Channels(ctx context.Context) ([]Channel, bool, error) {
	out, ok, err := t.invoke(ctx, svcMainTVAgent, "GetChannelListURL")
	if err != nil || !ok {
		return nil, ok, err
	}

	var list channelList
	if err := xml.Unmarshal([]byte(field(out, chListOutSupportList)), &list); err != nil {
		return nil, true, fmt.Errorf("tv: parse channel list: %w", err)
	}

	for i := range list.Channels {
		list.Channels[i].tv = t
	}
	return list.Channels, true, nil
}

// Channel returns the currently tuned channel.
func (t *TV) Channel(ctx context.Context) (*Channel, bool, error) {
	out, ok, err := t.invoke(ctx, svcMainTVAgent, "GetCurrentMainTVChannel")
	if err != nil || !ok {
		return nil, ok, err
	}

	var ch Channel
	if err := xml.Unmarshal([]byte(field(out, 1)), &ch); err != nil {
		return nil, true, fmt.Errorf("tv: parse current channel: %w", err)
	}
	ch.tv = t
	return &ch, true, nil
}

// SetChannel tunes to the channel with the given display number. An
// unknown number is an error; a TV without a tuner service makes this
// a logged no-op.
func (t *TV) SetChannel(ctx context.Context, major, minor int) error {
	channels, ok, err := t.Channels(ctx)
	if err != nil {
		return err
	}
	if !ok {
		logging.Warn("Channel selection unsupported on this TV")
		return nil
	}

	for i := range channels {
		if channels[i].Matches(major, minor) {
			return channels[i].Activate(ctx)
		}
	}
	return fmt.Errorf("tv: channel %d.%d not found", major, minor)
}
