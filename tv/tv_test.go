package tv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/muurk/samsungtv/config"
	"github.com/muurk/samsungtv/upnp"
)

const fullDescription = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <deviceType>urn:samsung.com:device:MainTVServer2:1</deviceType>
    <friendlyName>[TV] Test Set</friendlyName>
    <modelName>UE48H6400</modelName>
    <UDN>uuid:test-main</UDN>
    <serviceList>
      <service>
        <serviceType>urn:samsung.com:service:MainTVAgent2:1</serviceType>
        <serviceId>urn:samsung.com:serviceId:MainTVAgent2</serviceId>
        <controlURL>/control/MainTVAgent2</controlURL>
        <SCPDURL>/scpd/MainTVAgent2.xml</SCPDURL>
      </service>
    </serviceList>
    <deviceList>
      <device>
        <deviceType>urn:schemas-upnp-org:device:MediaRenderer:1</deviceType>
        <friendlyName>[TV] Test Set Renderer</friendlyName>
        <UDN>uuid:test-renderer</UDN>
        <serviceList>
          <service>
            <serviceType>urn:schemas-upnp-org:service:RenderingControl:1</serviceType>
            <serviceId>urn:upnp-org:serviceId:RenderingControl</serviceId>
            <controlURL>/control/RenderingControl</controlURL>
            <SCPDURL>/scpd/RenderingControl.xml</SCPDURL>
          </service>
          <service>
            <serviceType>urn:schemas-upnp-org:service:AVTransport:1</serviceType>
            <serviceId>urn:upnp-org:serviceId:AVTransport</serviceId>
            <controlURL>/control/AVTransport</controlURL>
            <SCPDURL>/scpd/AVTransport.xml</SCPDURL>
          </service>
        </serviceList>
      </device>
    </deviceList>
  </device>
</root>`

const rendererOnlyDescription = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <deviceType>urn:schemas-upnp-org:device:MediaRenderer:1</deviceType>
    <friendlyName>[TV] Renderer Only</friendlyName>
    <UDN>uuid:test-renderer-only</UDN>
    <serviceList>
      <service>
        <serviceType>urn:schemas-upnp-org:service:RenderingControl:1</serviceType>
        <serviceId>urn:upnp-org:serviceId:RenderingControl</serviceId>
        <controlURL>/control/RenderingControl</controlURL>
        <SCPDURL>/scpd/RenderingControl.xml</SCPDURL>
      </service>
    </serviceList>
  </device>
</root>`

func scpdAction(name string, args ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<action><name>%s</name><argumentList>", name)
	for _, arg := range args {
		dir, argName := "in", arg
		if strings.HasPrefix(arg, "out:") {
			dir, argName = "out", strings.TrimPrefix(arg, "out:")
		}
		fmt.Fprintf(&b, "<argument><name>%s</name><direction>%s</direction></argument>", argName, dir)
	}
	b.WriteString("</argumentList></action>")
	return b.String()
}

func scpdDocument(actions ...string) string {
	return `<?xml version="1.0"?><scpd xmlns="urn:schemas-upnp-org:service-1-0"><actionList>` +
		strings.Join(actions, "") + `</actionList></scpd>`
}

var mainAgentSCPD = scpdDocument(
	scpdAction("GetVolume", "out:Result", "out:Volume"),
	scpdAction("SetVolume", "DesiredVolume", "out:Result"),
	scpdAction("GetChannelListURL",
		"out:Result", "out:ChannelListVersion", "out:SupportChannelList",
		"out:ChannelListURL", "out:ChannelListType", "out:SatelliteID"),
	scpdAction("GetCurrentMainTVChannel", "out:Result", "out:CurrentChannel"),
	scpdAction("SetMainTVChannel", "AntennaMode", "ChannelListType", "SatelliteID", "Channel", "out:Result"),
	scpdAction("GetSourceList", "out:Result", "out:SourceList"),
	scpdAction("GetCurrentExternalSource", "out:Result", "out:CurrentExternalSource", "out:ID"),
	scpdAction("SetMainTVSource", "Source", "ID", "UiID", "out:Result"),
)

var renderingSCPD = scpdDocument(
	scpdAction("GetVolume", "InstanceID", "Channel", "out:CurrentVolume"),
	scpdAction("SetVolume", "InstanceID", "Channel", "DesiredVolume"),
	scpdAction("GetMute", "InstanceID", "Channel", "out:CurrentMute"),
	scpdAction("SetMute", "InstanceID", "Channel", "DesiredMute"),
	scpdAction("GetBrightness", "InstanceID", "out:CurrentBrightness"),
	scpdAction("SetBrightness", "InstanceID", "DesiredBrightness"),
	scpdAction("GetContrast", "InstanceID", "out:CurrentContrast"),
	scpdAction("SetContrast", "InstanceID", "DesiredContrast"),
	scpdAction("GetSharpness", "InstanceID", "out:CurrentSharpness"),
	scpdAction("SetSharpness", "InstanceID", "DesiredSharpness"),
	scpdAction("GetColorTemperature", "InstanceID", "out:CurrentColorTemperature"),
	scpdAction("SetColorTemperature", "InstanceID", "DesiredColorTemperature"),
)

var avTransportSCPD = scpdDocument(
	scpdAction("GetMediaInfo", "InstanceID",
		"out:NrTracks", "out:MediaDuration", "out:CurrentURI", "out:CurrentURIMetaData",
		"out:NextURI", "out:NextURIMetaData", "out:PlayMedium", "out:RecordMedium", "out:WriteStatus"),
	scpdAction("GetPositionInfo", "InstanceID",
		"out:Track", "out:TrackDuration", "out:TrackMetaData", "out:TrackURI",
		"out:RelTime", "out:AbsTime", "out:RelCount", "out:AbsCount"),
	scpdAction("GetTransportInfo", "InstanceID",
		"out:CurrentTransportState", "out:CurrentTransportStatus", "out:CurrentSpeed"),
	scpdAction("GetDeviceCapabilities", "InstanceID",
		"out:PlayMedia", "out:RecMedia", "out:RecQualityModes"),
	scpdAction("Play", "InstanceID", "Speed"),
	scpdAction("Pause", "InstanceID"),
	scpdAction("Stop", "InstanceID"),
	scpdAction("Next", "InstanceID"),
	scpdAction("Previous", "InstanceID"),
	scpdAction("Seek", "InstanceID", "Unit", "Target"),
)

const channelListXML = `&lt;ChannelList&gt;` +
	`&lt;Channel&gt;&lt;ChType&gt;CDTV&lt;/ChType&gt;&lt;MajorCh&gt;2&lt;/MajorCh&gt;&lt;MinorCh&gt;0&lt;/MinorCh&gt;&lt;PTC&gt;20&lt;/PTC&gt;&lt;ProgNum&gt;1&lt;/ProgNum&gt;&lt;/Channel&gt;` +
	`&lt;Channel&gt;&lt;ChType&gt;CDTV&lt;/ChType&gt;&lt;MajorCh&gt;4&lt;/MajorCh&gt;&lt;MinorCh&gt;1&lt;/MinorCh&gt;&lt;PTC&gt;44&lt;/PTC&gt;&lt;ProgNum&gt;3&lt;/ProgNum&gt;&lt;/Channel&gt;` +
	`&lt;Channel&gt;&lt;ChType&gt;CDTV&lt;/ChType&gt;&lt;MajorCh&gt;4&lt;/MajorCh&gt;&lt;MinorCh&gt;2&lt;/MinorCh&gt;&lt;PTC&gt;44&lt;/PTC&gt;&lt;ProgNum&gt;4&lt;/ProgNum&gt;&lt;/Channel&gt;` +
	`&lt;/ChannelList&gt;`

const channelListResponse = `<Result>OK</Result><ChannelListVersion>3</ChannelListVersion>` +
	`<SupportChannelList>` + channelListXML + `</SupportChannelList>` +
	`<ChannelListURL>http://tv/ChannelList.dat</ChannelListURL>` +
	`<ChannelListType>0x01</ChannelListType><SatelliteID>0</SatelliteID>`

const sourceListXML = `&lt;SourceList&gt;` +
	`&lt;Source&gt;&lt;SourceType&gt;TV&lt;/SourceType&gt;&lt;ID&gt;0&lt;/ID&gt;&lt;Editable&gt;No&lt;/Editable&gt;&lt;Connected&gt;Yes&lt;/Connected&gt;&lt;/Source&gt;` +
	`&lt;Source&gt;&lt;SourceType&gt;HDMI1&lt;/SourceType&gt;&lt;ID&gt;3&lt;/ID&gt;&lt;Editable&gt;Yes&lt;/Editable&gt;&lt;Connected&gt;Yes&lt;/Connected&gt;&lt;EditNameType&gt;BD Player&lt;/EditNameType&gt;&lt;DeviceName&gt;Blu-ray&lt;/DeviceName&gt;&lt;/Source&gt;` +
	`&lt;Source&gt;&lt;SourceType&gt;HDMI2&lt;/SourceType&gt;&lt;ID&gt;4&lt;/ID&gt;&lt;Editable&gt;Yes&lt;/Editable&gt;&lt;Connected&gt;No&lt;/Connected&gt;&lt;/Source&gt;` +
	`&lt;/SourceList&gt;`

// fakeTV serves a description tree and a scripted SOAP control
// endpoint. Responses are keyed by action name; every control call is
// recorded for assertions.
type fakeTV struct {
	srv       *httptest.Server
	responses map[string]string

	mu    sync.Mutex
	calls []soapCall
}

type soapCall struct {
	Action string
	Body   string
}

func (f *fakeTV) respond(action, inner string) {
	f.responses[action] = inner
}

func (f *fakeTV) callsTo(action string) []soapCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []soapCall
	for _, c := range f.calls {
		if c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

func newFakeTV(t *testing.T, description string) (*TV, *fakeTV) {
	t.Helper()

	f := &fakeTV{responses: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/desc.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, description)
	})
	mux.HandleFunc("/scpd/MainTVAgent2.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, mainAgentSCPD)
	})
	mux.HandleFunc("/scpd/RenderingControl.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, renderingSCPD)
	})
	mux.HandleFunc("/scpd/AVTransport.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, avTransportSCPD)
	})
	mux.HandleFunc("/control/", func(w http.ResponseWriter, r *http.Request) {
		soapAction := r.Header.Get("SOAPACTION")
		parts := strings.SplitN(strings.Trim(soapAction, `"`), "#", 2)
		if len(parts) != 2 {
			http.Error(w, "bad SOAPACTION", http.StatusBadRequest)
			return
		}
		action := parts[1]
		serviceType := parts[0]

		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.calls = append(f.calls, soapCall{Action: action, Body: string(body)})
		f.mu.Unlock()

		inner, ok := f.responses[action]
		if !ok {
			http.Error(w, "unscripted action "+action, http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>`+
			`<u:%sResponse xmlns:u="%s">%s</u:%sResponse></s:Body></s:Envelope>`,
			action, serviceType, inner, action)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)

	dir := upnp.NewDirectory(f.srv.Client())
	if err := dir.Rebuild(context.Background(), []string{f.srv.URL + "/desc.xml"}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	set := New(config.New("127.0.0.1"), dir)
	set.rest = f.srv.Client()
	return set, f
}

func TestVolumeViaMainTVAgent(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetVolume", "<Result>OK</Result><Volume>13</Volume>")

	v, ok, err := set.Volume(context.Background())
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if !ok || v != 13 {
		t.Errorf("Volume = (%d, %v), want (13, true)", v, ok)
	}
}

func TestVolumeFallsBackToRenderingControl(t *testing.T) {
	set, f := newFakeTV(t, rendererOnlyDescription)
	f.respond("GetVolume", "<CurrentVolume>7</CurrentVolume>")

	v, ok, err := set.Volume(context.Background())
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if !ok || v != 7 {
		t.Errorf("Volume = (%d, %v), want (7, true)", v, ok)
	}
}

func TestSetVolumePrefersMainTVAgent(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("SetVolume", "<Result>OK</Result>")

	if err := set.SetVolume(context.Background(), 25); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}

	calls := f.callsTo("SetVolume")
	if len(calls) != 1 {
		t.Fatalf("SetVolume calls = %d, want 1", len(calls))
	}
	if !strings.Contains(calls[0].Body, "<DesiredVolume>25</DesiredVolume>") {
		t.Errorf("request body missing volume: %s", calls[0].Body)
	}
	if !strings.Contains(calls[0].Body, "MainTVAgent2") {
		t.Errorf("SetVolume went to the wrong service: %s", calls[0].Body)
	}
}

func TestMuteAndPictureSettings(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetMute", "<CurrentMute>1</CurrentMute>")
	f.respond("GetBrightness", "<CurrentBrightness>45</CurrentBrightness>")
	f.respond("GetContrast", "<CurrentContrast>80</CurrentContrast>")
	f.respond("GetSharpness", "<CurrentSharpness>60</CurrentSharpness>")
	f.respond("GetColorTemperature", "<CurrentColorTemperature>2</CurrentColorTemperature>")

	ctx := context.Background()
	if muted, ok, err := set.Mute(ctx); err != nil || !ok || !muted {
		t.Errorf("Mute = (%v, %v, %v), want (true, true, nil)", muted, ok, err)
	}
	if v, ok, err := set.Brightness(ctx); err != nil || !ok || v != 45 {
		t.Errorf("Brightness = (%d, %v, %v), want (45, true, nil)", v, ok, err)
	}
	if v, ok, err := set.Contrast(ctx); err != nil || !ok || v != 80 {
		t.Errorf("Contrast = (%d, %v, %v), want (80, true, nil)", v, ok, err)
	}
	if v, ok, err := set.Sharpness(ctx); err != nil || !ok || v != 60 {
		t.Errorf("Sharpness = (%d, %v, %v), want (60, true, nil)", v, ok, err)
	}
	if v, ok, err := set.ColorTemperature(ctx); err != nil || !ok || v != 2 {
		t.Errorf("ColorTemperature = (%d, %v, %v), want (2, true, nil)", v, ok, err)
	}
}

func TestAbsentCapabilitiesDegradeQuietly(t *testing.T) {
	set := New(config.New("127.0.0.1"), upnp.NewDirectory(nil))
	ctx := context.Background()

	if v, ok, err := set.Volume(ctx); v != 0 || ok || err != nil {
		t.Errorf("Volume = (%d, %v, %v), want (0, false, nil)", v, ok, err)
	}
	if err := set.SetVolume(ctx, 10); err != nil {
		t.Errorf("SetVolume: %v", err)
	}
	if chs, ok, err := set.Channels(ctx); chs != nil || ok || err != nil {
		t.Errorf("Channels = (%v, %v, %v), want (nil, false, nil)", chs, ok, err)
	}
	if err := set.SetChannel(ctx, 4, 1); err != nil {
		t.Errorf("SetChannel: %v", err)
	}
	if err := set.Play(ctx); err != nil {
		t.Errorf("Play: %v", err)
	}
	if _, ok, err := set.MediaInfo(ctx); ok || err != nil {
		t.Errorf("MediaInfo ok=%v err=%v, want (false, nil)", ok, err)
	}
}

func TestChannels(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetChannelListURL", channelListResponse)

	channels, ok, err := set.Channels(context.Background())
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if !ok || len(channels) != 3 {
		t.Fatalf("Channels = (%d entries, %v), want (3, true)", len(channels), ok)
	}

	ch := channels[1]
	if major, minor := ch.Key(); major != 4 || minor != 1 {
		t.Errorf("Key = (%d, %d), want (4, 1)", major, minor)
	}
	if ch.PTC != 44 || ch.ProgNum != 3 || ch.Type != "CDTV" {
		t.Errorf("channel fields = %+v", ch)
	}
	if ch.String() != "4.1" {
		t.Errorf("String = %q, want 4.1", ch.String())
	}
	if !ch.Equal(&Channel{Major: 4, Minor: 1}) {
		t.Error("channels with equal keys not Equal")
	}
	if ch.Equal(&channels[2]) {
		t.Error("4.1 and 4.2 compare Equal")
	}
}

func TestSetChannelActivatesOnlyMatch(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetChannelListURL", channelListResponse)
	f.respond("SetMainTVChannel", "<Result>OK</Result>")

	if err := set.SetChannel(context.Background(), 4, 1); err != nil {
		t.Fatalf("SetChannel: %v", err)
	}

	calls := f.callsTo("SetMainTVChannel")
	if len(calls) != 1 {
		t.Fatalf("SetMainTVChannel calls = %d, want 1", len(calls))
	}
	body := calls[0].Body
	if !strings.Contains(body, "<AntennaMode>1</AntennaMode>") {
		t.Errorf("missing antenna mode: %s", body)
	}
	if !strings.Contains(body, "<ChannelListType>0x01</ChannelListType>") {
		t.Errorf("missing channel list type: %s", body)
	}
	if !strings.Contains(body, "&lt;MajorCh&gt;4&lt;/MajorCh&gt;") ||
		!strings.Contains(body, "&lt;MinorCh&gt;1&lt;/MinorCh&gt;") {
		t.Errorf("channel node not escaped into request: %s", body)
	}
	if strings.Contains(body, "&lt;MinorCh&gt;2&lt;/MinorCh&gt;") {
		t.Errorf("wrong channel activated: %s", body)
	}
}

func TestSetChannelNotFound(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetChannelListURL", channelListResponse)

	if err := set.SetChannel(context.Background(), 9, 9); err == nil {
		t.Fatal("expected error for unknown channel number")
	}
}

func TestChannelsMalformedListIsAnError(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetChannelListURL",
		`<Result>OK</Result><ChannelListVersion>3</ChannelListVersion>`+
			`<SupportChannelList>&lt;ChannelList&gt;&lt;broken</SupportChannelList>`+
			`<ChannelListURL>u</ChannelListURL><ChannelListType>0x01</ChannelListType><SatelliteID>0</SatelliteID>`)

	if _, _, err := set.Channels(context.Background()); err == nil {
		t.Fatal("expected parse error for malformed channel list")
	}
}

func TestCurrentChannel(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetCurrentMainTVChannel",
		`<Result>OK</Result><CurrentChannel>`+
			`&lt;Channel&gt;&lt;ChType&gt;CDTV&lt;/ChType&gt;&lt;MajorCh&gt;2&lt;/MajorCh&gt;&lt;MinorCh&gt;0&lt;/MinorCh&gt;&lt;PTC&gt;20&lt;/PTC&gt;&lt;ProgNum&gt;1&lt;/ProgNum&gt;&lt;/Channel&gt;`+
			`</CurrentChannel>`)

	ch, ok, err := set.Channel(context.Background())
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	if !ok || !ch.Matches(2, 0) {
		t.Errorf("Channel = (%v, %v), want 2.0", ch, ok)
	}
}

func TestSources(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetSourceList", "<Result>OK</Result><SourceList>"+sourceListXML+"</SourceList>")

	sources, ok, err := set.Sources(context.Background())
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if !ok || len(sources) != 3 {
		t.Fatalf("Sources = (%d entries, %v), want (3, true)", len(sources), ok)
	}

	hdmi1 := sources[1]
	if hdmi1.ID != 3 || hdmi1.Name != "HDMI1" || !hdmi1.Editable || !hdmi1.Connected {
		t.Errorf("HDMI1 = %+v", hdmi1)
	}
	if hdmi1.Label != "BD Player" {
		t.Errorf("Label = %q, want BD Player", hdmi1.Label)
	}
	if sources[2].Connected {
		t.Error("HDMI2 reported connected")
	}
}

func TestCurrentSource(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetSourceList", "<Result>OK</Result><SourceList>"+sourceListXML+"</SourceList>")
	f.respond("GetCurrentExternalSource",
		"<Result>OK</Result><CurrentExternalSource>HDMI1</CurrentExternalSource><ID>3</ID>")

	src, ok, err := set.Source(context.Background())
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if !ok || src.ID != 3 || src.Name != "HDMI1" {
		t.Errorf("Source = (%+v, %v), want HDMI1/3", src, ok)
	}
}

func TestSetSourceSwitchesConnectedInput(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetSourceList", "<Result>OK</Result><SourceList>"+sourceListXML+"</SourceList>")
	f.respond("SetMainTVSource", "<Result>OK</Result>")

	if err := set.SetSource(context.Background(), "BD Player"); err != nil {
		t.Fatalf("SetSource: %v", err)
	}

	calls := f.callsTo("SetMainTVSource")
	if len(calls) != 1 {
		t.Fatalf("SetMainTVSource calls = %d, want 1", len(calls))
	}
	if !strings.Contains(calls[0].Body, "<Source>HDMI1</Source>") ||
		!strings.Contains(calls[0].Body, "<ID>3</ID>") {
		t.Errorf("switch request = %s", calls[0].Body)
	}
}

func TestSetSourceSkipsDisconnectedInput(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetSourceList", "<Result>OK</Result><SourceList>"+sourceListXML+"</SourceList>")

	// HDMI2 has nothing attached; activation must not be attempted.
	if err := set.SetSource(context.Background(), "HDMI2"); err != nil {
		t.Fatalf("SetSource: %v", err)
	}
	if calls := f.callsTo("SetMainTVSource"); len(calls) != 0 {
		t.Errorf("SetMainTVSource calls = %d, want 0", len(calls))
	}
}

func TestMediaAndTransportInfo(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	f.respond("GetMediaInfo",
		"<NrTracks>1</NrTracks><MediaDuration>0:02:10</MediaDuration>"+
			"<CurrentURI>http://media/a.mp4</CurrentURI><CurrentURIMetaData></CurrentURIMetaData>"+
			"<NextURI></NextURI><NextURIMetaData></NextURIMetaData>"+
			"<PlayMedium>NETWORK</PlayMedium><RecordMedium>NOT_IMPLEMENTED</RecordMedium>"+
			"<WriteStatus>NOT_IMPLEMENTED</WriteStatus>")
	f.respond("GetTransportInfo",
		"<CurrentTransportState>PLAYING</CurrentTransportState>"+
			"<CurrentTransportStatus>OK</CurrentTransportStatus><CurrentSpeed>1</CurrentSpeed>")
	f.respond("GetDeviceCapabilities",
		"<PlayMedia>NONE,NETWORK</PlayMedia><RecMedia>NOT_IMPLEMENTED</RecMedia>"+
			"<RecQualityModes>NOT_IMPLEMENTED</RecQualityModes>")

	ctx := context.Background()
	media, ok, err := set.MediaInfo(ctx)
	if err != nil || !ok {
		t.Fatalf("MediaInfo = (%v, %v)", ok, err)
	}
	if media.CurrentURI != "http://media/a.mp4" || media.PlayMedium != "NETWORK" {
		t.Errorf("MediaInfo = %+v", media)
	}

	transport, ok, err := set.TransportInfo(ctx)
	if err != nil || !ok {
		t.Fatalf("TransportInfo = (%v, %v)", ok, err)
	}
	if transport.State != "PLAYING" || transport.Speed != "1" {
		t.Errorf("TransportInfo = %+v", transport)
	}

	caps, ok, err := set.DeviceCapabilities(ctx)
	if err != nil || !ok {
		t.Fatalf("DeviceCapabilities = (%v, %v)", ok, err)
	}
	if caps.PlayMedia != "NONE,NETWORK" {
		t.Errorf("DeviceCapabilities = %+v", caps)
	}
}

func TestPlaybackControls(t *testing.T) {
	set, f := newFakeTV(t, fullDescription)
	for _, action := range []string{"Play", "Pause", "Stop", "Next", "Previous", "Seek"} {
		f.respond(action, "")
	}

	ctx := context.Background()
	if err := set.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := set.Pause(ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := set.Seek(ctx, "0:01:00"); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	plays := f.callsTo("Play")
	if len(plays) != 1 || !strings.Contains(plays[0].Body, "<Speed>1</Speed>") {
		t.Errorf("Play request = %+v", plays)
	}
	seeks := f.callsTo("Seek")
	if len(seeks) != 1 || !strings.Contains(seeks[0].Body, "<Unit>REL_TIME</Unit>") ||
		!strings.Contains(seeks[0].Body, "<Target>0:01:00</Target>") {
		t.Errorf("Seek request = %+v", seeks)
	}
}
