package tv

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/muurk/samsungtv/config"
	"github.com/muurk/samsungtv/internal/logging"
	"github.com/muurk/samsungtv/upnp"
)

// Service and channel names used by the facade.
const (
	svcMainTVAgent      = "MainTVAgent2"
	svcRenderingControl = "RenderingControl"
	svcAVTransport      = "AVTransport"

	// masterChannel is the audio channel RenderingControl operates on
	masterChannel = "Master"
)

// TV is a facade over one television. It holds no connection state of
// its own; the capability directory is maintained by the remote's
// session lifecycle.
type TV struct {
	cfg  *config.Config
	dir  *upnp.Directory
	rest *http.Client

	// restBase overrides the derived REST endpoint, for tests
	restBase string
}

// New creates a facade over the given capability directory.
func New(cfg *config.Config, dir *upnp.Directory) *TV {
	return &TV{
		cfg:  cfg,
		dir:  dir,
		rest: &http.Client{Timeout: restProbeTimeout},
	}
}

// Directory exposes the underlying capability directory.
func (t *TV) Directory() *upnp.Directory {
	return t.dir
}

// ModelName returns the model advertised in the device description.
func (t *TV) ModelName() string {
	return t.dir.ModelName()
}

// invoke resolves and calls an action. ok is false when the capability
// is absent on this TV, in which case out is nil and err is nil.
func (t *TV) invoke(ctx context.Context, service, action string, args ...string) (out []string, ok bool, err error) {
	a, ok := t.dir.Resolve(service, action)
	if !ok {
		logging.Debug("Capability absent",
			zap.String("service", service),
			zap.String("action", action),
		)
		return nil, false, nil
	}
	out, err = a.Invoke(ctx, args...)
	if err != nil {
		return nil, true, err
	}
	return out, true, nil
}

// field returns the i-th output argument, or "" when the response was
// shorter than declared.
func field(out []string, i int) string {
	if i >= 0 && i < len(out) {
		return out[i]
	}
	return ""
}

func parseIntField(action string, out []string, i int) (int, error) {
	v, err := strconv.Atoi(field(out, i))
	if err != nil {
		return 0, fmt.Errorf("tv: %s returned non-numeric value %q", action, field(out, i))
	}
	return v, nil
}

// Volume returns the current volume. Prefers the Samsung agent and
// falls back to the standard rendering service.
func (t *TV) Volume(ctx context.Context) (int, bool, error) {
	out, ok, err := t.invoke(ctx, svcMainTVAgent, "GetVolume")
	if err != nil {
		return 0, true, err
	}
	if ok {
		v, err := parseIntField("GetVolume", out, 1)
		return v, true, err
	}

	out, ok, err = t.invoke(ctx, svcRenderingControl, "GetVolume", "0", masterChannel)
	if err != nil || !ok {
		return 0, ok, err
	}
	v, err := parseIntField("GetVolume", out, 0)
	return v, true, err
}

// SetVolume sets the volume. A no-op when neither volume service is
// present.
func (t *TV) SetVolume(ctx context.Context, volume int) error {
	v := strconv.Itoa(volume)
	_, ok, err := t.invoke(ctx, svcMainTVAgent, "SetVolume", v)
	if err != nil || ok {
		return err
	}
	_, _, err = t.invoke(ctx, svcRenderingControl, "SetVolume", "0", masterChannel, v)
	return err
}

// Mute returns whether audio is muted.
func (t *TV) Mute(ctx context.Context) (bool, bool, error) {
	out, ok, err := t.invoke(ctx, svcRenderingControl, "GetMute", "0", masterChannel)
	if err != nil || !ok {
		return false, ok, err
	}
	return field(out, 0) == "1", true, nil
}

// SetMute mutes or unmutes audio.
func (t *TV) SetMute(ctx context.Context, mute bool) error {
	v := "0"
	if mute {
		v = "1"
	}
	_, _, err := t.invoke(ctx, svcRenderingControl, "SetMute", "0", masterChannel, v)
	return err
}

// Brightness returns the picture brightness.
func (t *TV) Brightness(ctx context.Context) (int, bool, error) {
	return t.pictureValue(ctx, "GetBrightness")
}

// SetBrightness sets the picture brightness.
func (t *TV) SetBrightness(ctx context.Context, v int) error {
	return t.setPictureValue(ctx, "SetBrightness", v)
}

// Contrast returns the picture contrast.
func (t *TV) Contrast(ctx context.Context) (int, bool, error) {
	return t.pictureValue(ctx, "GetContrast")
}

// SetContrast sets the picture contrast.
func (t *TV) SetContrast(ctx context.Context, v int) error {
	return t.setPictureValue(ctx, "SetContrast", v)
}

// Sharpness returns the picture sharpness.
func (t *TV) Sharpness(ctx context.Context) (int, bool, error) {
	return t.pictureValue(ctx, "GetSharpness")
}

// SetSharpness sets the picture sharpness.
func (t *TV) SetSharpness(ctx context.Context, v int) error {
	return t.setPictureValue(ctx, "SetSharpness", v)
}

// ColorTemperature returns the picture color temperature index.
func (t *TV) ColorTemperature(ctx context.Context) (int, bool, error) {
	return t.pictureValue(ctx, "GetColorTemperature")
}

// SetColorTemperature sets the picture color temperature index.
func (t *TV) SetColorTemperature(ctx context.Context, v int) error {
	return t.setPictureValue(ctx, "SetColorTemperature", v)
}

// picture settings all share the RenderingControl get/set shape with a
// single instance argument.
func (t *TV) pictureValue(ctx context.Context, action string) (int, bool, error) {
	out, ok, err := t.invoke(ctx, svcRenderingControl, action, "0")
	if err != nil || !ok {
		return 0, ok, err
	}
	v, err := parseIntField(action, out, 0)
	return v, true, err
}

func (t *TV) setPictureValue(ctx context.Context, action string, v int) error {
	_, _, err := t.invoke(ctx, svcRenderingControl, action, "0", strconv.Itoa(v))
	return err
}
