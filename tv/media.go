package tv

import "context"

// MediaInfo describes the transport's current and queued media.
type MediaInfo struct {
	NrTracks      string
	MediaDuration string
	CurrentURI    string
	CurrentMeta   string
	NextURI       string
	NextMeta      string
	PlayMedium    string
	RecordMedium  string
	WriteStatus   string
}

// PositionInfo describes the playback position within the current track.
type PositionInfo struct {
	Track         string
	TrackDuration string
	TrackMeta     string
	TrackURI      string
	RelativeTime  string
	AbsoluteTime  string
	RelativeCount string
	AbsoluteCount string
}

// TransportInfo describes the transport state machine.
type TransportInfo struct {
	State  string
	Status string
	Speed  string
}

// DeviceCapabilities lists the media classes the transport handles.
type DeviceCapabilities struct {
	PlayMedia          string
	RecordMedia        string
	RecordQualityModes string
}

// MediaInfo returns what the transport is playing and has queued.
func (t *TV) MediaInfo(ctx context.Context) (MediaInfo, bool, error) {
	out, ok, err := t.invoke(ctx, svcAVTransport, "GetMediaInfo", "0")
	if err != nil || !ok {
		return MediaInfo{}, ok, err
	}
	return MediaInfo{
		NrTracks:      field(out, 0),
		MediaDuration: field(out, 1),
		CurrentURI:    field(out, 2),
		CurrentMeta:   field(out, 3),
		NextURI:       field(out, 4),
		NextMeta:      field(out, 5),
		PlayMedium:    field(out, 6),
		RecordMedium:  field(out, 7),
		WriteStatus:   field(out, 8),
	}, true, nil
}

// PositionInfo returns the current playback position.
func (t *TV) PositionInfo(ctx context.Context) (PositionInfo, bool, error) {
	out, ok, err := t.invoke(ctx, svcAVTransport, "GetPositionInfo", "0")
	if err != nil || !ok {
		return PositionInfo{}, ok, err
	}
	return PositionInfo{
		Track:         field(out, 0),
		TrackDuration: field(out, 1),
		TrackMeta:     field(out, 2),
		TrackURI:      field(out, 3),
		RelativeTime:  field(out, 4),
		AbsoluteTime:  field(out, 5),
		RelativeCount: field(out, 6),
		AbsoluteCount: field(out, 7),
	}, true, nil
}

// TransportInfo returns the transport state.
func (t *TV) TransportInfo(ctx context.Context) (TransportInfo, bool, error) {
	out, ok, err := t.invoke(ctx, svcAVTransport, "GetTransportInfo", "0")
	if err != nil || !ok {
		return TransportInfo{}, ok, err
	}
	return TransportInfo{
		State:  field(out, 0),
		Status: field(out, 1),
		Speed:  field(out, 2),
	}, true, nil
}

// DeviceCapabilities returns the media classes the transport supports.
func (t *TV) DeviceCapabilities(ctx context.Context) (DeviceCapabilities, bool, error) {
	out, ok, err := t.invoke(ctx, svcAVTransport, "GetDeviceCapabilities", "0")
	if err != nil || !ok {
		return DeviceCapabilities{}, ok, err
	}
	return DeviceCapabilities{
		PlayMedia:          field(out, 0),
		RecordMedia:        field(out, 1),
		RecordQualityModes: field(out, 2),
	}, true, nil
}

// Play starts or resumes playback at normal speed.
func (t *TV) Play(ctx context.Context) error {
	_, _, err := t.invoke(ctx, svcAVTransport, "Play", "0", "1")
	return err
}

// Pause pauses playback.
func (t *TV) Pause(ctx context.Context) error {
	_, _, err := t.invoke(ctx, svcAVTransport, "Pause", "0")
	return err
}

// Stop stops playback.
func (t *TV) Stop(ctx context.Context) error {
	_, _, err := t.invoke(ctx, svcAVTransport, "Stop", "0")
	return err
}

// Next skips to the next track.
func (t *TV) Next(ctx context.Context) error {
	_, _, err := t.invoke(ctx, svcAVTransport, "Next", "0")
	return err
}

// Previous skips to the previous track.
func (t *TV) Previous(ctx context.Context) error {
	_, _, err := t.invoke(ctx, svcAVTransport, "Previous", "0")
	return err
}

// Seek jumps to a position expressed as "H:MM:SS".
func (t *TV) Seek(ctx context.Context, target string) error {
	_, _, err := t.invoke(ctx, svcAVTransport, "Seek", "0", "REL_TIME", target)
	return err
}
