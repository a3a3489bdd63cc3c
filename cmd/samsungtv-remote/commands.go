package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/samsungtv/config"
	"github.com/muurk/samsungtv/discovery"
	"github.com/muurk/samsungtv/internal/ui"
	"github.com/muurk/samsungtv/remote"
	"github.com/muurk/samsungtv/tv"
	"github.com/muurk/samsungtv/upnp"
)

// Global command flags
var (
	configPath string
	hostFlag   string
	methodFlag string
	cmdTimeout int
	scanWait   int
	listFlag   bool
)

func init() {
	// Common flags for TV commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: <user config dir>/samsungtv/tv.yaml)")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "TV IP address or hostname (overrides config)")
	rootCmd.PersistentFlags().StringVar(&methodFlag, "method", "", "Remote protocol: legacy or websocket (default websocket)")
	rootCmd.PersistentFlags().IntVar(&cmdTimeout, "timeout", 10, "Command timeout in seconds")

	// Add subcommands directly to root
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(pairCmd)
	rootCmd.AddCommand(padCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(channelCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(pictureCmd)
	rootCmd.AddCommand(mediaCmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(infoCmd)
}

// discoverCmd finds TVs on the network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover Samsung TVs on the network",
	Long: `Discover Samsung TVs using SSDP and mDNS.

Both searches run concurrently and results are merged per host. SSDP
finds the UPnP device-description URLs needed for volume, channel, and
source control; mDNS finds newer multi-screen TVs and their metadata.`,
	Example: `  # Discover with the default 5-second wait
  samsungtv-remote discover

  # Longer wait for sleepy networks
  samsungtv-remote discover --wait 15`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanWait, "wait", 5, "Discovery wait in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	wait := time.Duration(scanWait) * time.Second
	fmt.Printf("Discovering Samsung TVs (wait: %ds)...\n\n", scanWait)

	ctx, cancel := context.WithTimeout(context.Background(), wait+5*time.Second)
	defer cancel()

	tvs, err := discovery.Discover(ctx, wait)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(tvs) == 0 {
		fmt.Println("No TVs found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the TV is powered on and on the same network")
		fmt.Println("  - Some TVs only answer discovery while the screen is on")
		fmt.Println("  - Try increasing --wait for slower networks")
		fmt.Println("  - Use --host to specify the IP manually if discovery fails")
		return nil
	}

	fmt.Printf("Found %d TV(s):\n\n", len(tvs))
	for i, t := range tvs {
		fmt.Printf("%d. %s\n", i+1, t.String())
		if t.ModelName != "" {
			fmt.Printf("   Model: %s\n", t.ModelName)
		}
		for _, loc := range t.Locations {
			fmt.Printf("   UPnP:  %s\n", loc)
		}
		fmt.Println()
	}

	fmt.Println("Use 'samsungtv-remote pair --host <ip>' to pair with a TV")
	return nil
}

// pairCmd authorizes this client with a TV and saves the result
var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Pair with a TV and save the configuration",
	Long: `Pair with a TV and save the granted credentials.

Legacy TVs show an on-screen prompt and must be accepted with the
physical remote; newer TVs grant a token over the websocket channel.
Either way the result is written to the config file so later commands
connect without re-prompting.`,
	Example: `  # Pair with a 2014+ TV
  samsungtv-remote pair --host 192.168.1.50

  # Pair with a 2008-2013 TV (accept the prompt on screen)
  samsungtv-remote pair --host 192.168.1.50 --method legacy`,
	RunE: runPair,
}

func runPair(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	// Pairing can wait on a human with a physical remote, so no command
	// timeout here. Config.AuthTimeout still applies when set.
	ctx := context.Background()
	dir := buildDirectory(ctx, cfg)

	fmt.Printf("Pairing with %s...\n", cfg.Host)
	fmt.Println("Accept the authorization prompt on the TV screen if one appears.")

	r, err := remote.New(remote.Method(methodFlag), cfg, dir)
	if err != nil {
		return err
	}
	if err := r.Connect(ctx); err != nil {
		if errors.Is(err, remote.ErrAccessDenied) {
			return fmt.Errorf("the TV denied access: %w", err)
		}
		return fmt.Errorf("pairing failed: %w", err)
	}
	defer r.Close()

	// Cache the TV's MAC while it is reachable so power-on works later.
	if ws, ok := r.(*remote.WebSocket); ok {
		ws.MACAddress()
	}

	if err := saveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Printf("✓ Paired with %s, configuration saved to %s\n", cfg.Host, path)
	return nil
}

// padCmd launches the interactive remote pad
var padCmd = &cobra.Command{
	Use:   "pad",
	Short: "Launch the interactive remote pad",
	Long: `Launch an interactive TUI remote pad.

Arrow keys navigate, +/- change volume, pgup/pgdn change channel, and
digits select channels directly. The pad shows the live session state
while the connection supervisor handles drops and reconnects.`,
	Example: `  # Launch the pad for the configured TV
  samsungtv-remote pad
  # Or simply (pad is default):
  samsungtv-remote

  # Launch the pad for a specific TV
  samsungtv-remote pad --host 192.168.1.50`,
	RunE: runPad,
}

func runPad(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	dir := buildDirectory(ctx, cfg)

	r, err := remote.New(remote.Method(methodFlag), cfg, dir)
	if err != nil {
		return err
	}
	if err := r.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Host, err)
	}
	defer r.Close()

	if err := ui.Run(r, cfg.Host); err != nil {
		return fmt.Errorf("remote pad error: %w", err)
	}

	// Pairing state or token may have changed during the session.
	return saveConfig(cfg, path)
}

// keyCmd sends raw key codes
var keyCmd = &cobra.Command{
	Use:   "key <KEY_CODE> [KEY_CODE...]",
	Short: "Send one or more key codes to the TV",
	Long: `Send raw remote key codes to the TV.

Key codes use the TV's own names, for example KEY_VOLUP, KEY_MUTE,
KEY_MENU, KEY_HDMI, KEY_0 through KEY_9. Multiple codes are sent in
order with the standard inter-key delay.`,
	Example: `  # Open the menu
  samsungtv-remote key KEY_MENU

  # Type channel 12 and confirm
  samsungtv-remote key KEY_1 KEY_2 KEY_ENTER`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKey,
}

func runKey(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	r, _, err := connectRemote(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, code := range args {
		if err := r.Control(code); err != nil {
			return fmt.Errorf("failed to send %s: %w", code, err)
		}
		fmt.Printf("Sent %s\n", code)
	}
	return nil
}

// volumeCmd shows or sets the volume
var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Show or set the TV volume",
	Long: `Show or set the TV volume over UPnP.

Without an argument the current volume and mute state are printed.
With a numeric argument the volume is set to that level.`,
	Example: `  # Show current volume
  samsungtv-remote volume

  # Set volume to 15
  samsungtv-remote volume 15`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVolume,
}

func runVolume(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	set, _, err := newTV(ctx)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		level, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid volume level %q", args[0])
		}
		if err := set.SetVolume(ctx, level); err != nil {
			return fmt.Errorf("failed to set volume: %w", err)
		}
		fmt.Printf("Volume set to %d\n", level)
		return nil
	}

	volume, ok, err := set.Volume(ctx)
	if err != nil {
		return fmt.Errorf("failed to get volume: %w", err)
	}
	if !ok {
		fmt.Println("This TV does not expose volume control over UPnP.")
		return nil
	}
	fmt.Printf("Volume: %d\n", volume)

	if muted, ok, err := set.Mute(ctx); err == nil && ok {
		fmt.Printf("Muted:  %v\n", muted)
	}
	return nil
}

// muteCmd shows or sets the mute state
var muteCmd = &cobra.Command{
	Use:   "mute [on|off]",
	Short: "Show or set the TV mute state",
	Example: `  # Show mute state
  samsungtv-remote mute

  # Mute the TV
  samsungtv-remote mute on`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMute,
}

func runMute(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	set, _, err := newTV(ctx)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		var mute bool
		switch args[0] {
		case "on":
			mute = true
		case "off":
			mute = false
		default:
			return fmt.Errorf("invalid mute state %q (use on or off)", args[0])
		}
		if err := set.SetMute(ctx, mute); err != nil {
			return fmt.Errorf("failed to set mute: %w", err)
		}
		fmt.Printf("Mute set to %s\n", args[0])
		return nil
	}

	muted, ok, err := set.Mute(ctx)
	if err != nil {
		return fmt.Errorf("failed to get mute state: %w", err)
	}
	if !ok {
		fmt.Println("This TV does not expose mute control over UPnP.")
		return nil
	}
	fmt.Printf("Muted: %v\n", muted)
	return nil
}

// channelCmd shows, lists, or changes TV channels
var channelCmd = &cobra.Command{
	Use:   "channel [major[.minor]]",
	Short: "Show, list, or change the TV channel",
	Long: `Show, list, or change the TV channel via the MainTVAgent2 service.

Without an argument the current channel is printed. With a channel
number (major or major.minor) the TV tunes to that channel from its
own channel list. Use --list to print the full channel list.`,
	Example: `  # Show the current channel
  samsungtv-remote channel

  # Tune to channel 4.1
  samsungtv-remote channel 4.1

  # List all channels
  samsungtv-remote channel --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChannel,
}

func init() {
	channelCmd.Flags().BoolVar(&listFlag, "list", false, "List all channels")
}

func runChannel(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	set, _, err := newTV(ctx)
	if err != nil {
		return err
	}

	if listFlag {
		channels, ok, err := set.Channels(ctx)
		if err != nil {
			return fmt.Errorf("failed to list channels: %w", err)
		}
		if !ok {
			fmt.Println("This TV does not expose its channel list over UPnP.")
			return nil
		}
		fmt.Printf("%d channel(s):\n", len(channels))
		for _, ch := range channels {
			fmt.Printf("  %s\n", ch.String())
		}
		return nil
	}

	if len(args) == 1 {
		major, minor, err := parseChannelNumber(args[0])
		if err != nil {
			return err
		}
		if err := set.SetChannel(ctx, major, minor); err != nil {
			return fmt.Errorf("failed to change channel: %w", err)
		}
		fmt.Printf("Changed to channel %s\n", args[0])
		return nil
	}

	current, ok, err := set.Channel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current channel: %w", err)
	}
	if !ok {
		fmt.Println("This TV does not expose channel information over UPnP.")
		return nil
	}
	fmt.Printf("Current channel: %s\n", current.String())
	return nil
}

func parseChannelNumber(s string) (major, minor int, err error) {
	parts := strings.SplitN(s, ".", 2)
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid channel number %q", s)
	}
	if len(parts) == 2 {
		minor, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid channel number %q", s)
		}
	}
	return major, minor, nil
}

// sourceCmd lists inputs or switches to one
var sourceCmd = &cobra.Command{
	Use:   "source [name]",
	Short: "List TV inputs or switch to one",
	Long: `List the TV's inputs or switch to one by name.

Names match the input name (HDMI1), a user-assigned label (Blu-ray),
the attached device name, or the numeric input ID. Inputs with nothing
attached are listed but cannot be switched to.`,
	Example: `  # List inputs and the active one
  samsungtv-remote source

  # Switch to HDMI1
  samsungtv-remote source HDMI1

  # Switch by label
  samsungtv-remote source "Blu-ray"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSource,
}

func runSource(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	set, _, err := newTV(ctx)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		if err := set.SetSource(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to switch source: %w", err)
		}
		fmt.Printf("Switched to %s\n", args[0])
		return nil
	}

	sources, ok, err := set.Sources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	if !ok {
		fmt.Println("This TV does not expose source control over UPnP.")
		return nil
	}

	current, _, _ := set.Source(ctx)

	fmt.Printf("%d input(s):\n", len(sources))
	for _, src := range sources {
		marker := " "
		if current != nil && current.ID == src.ID {
			marker = "*"
		}
		attached := ""
		if !src.Connected {
			attached = " (nothing attached)"
		}
		fmt.Printf("%s %s%s\n", marker, src.String(), attached)
	}
	return nil
}

// pictureCmd shows or sets picture settings
var pictureCmd = &cobra.Command{
	Use:   "picture [setting [value]]",
	Short: "Show or set picture settings",
	Long: `Show or set picture settings via the RenderingControl service.

Settings: brightness, contrast, sharpness, colortemp.
Without arguments all settings are printed; with a setting name the
current value is printed; with a value the setting is changed.`,
	Example: `  # Show all picture settings
  samsungtv-remote picture

  # Show brightness
  samsungtv-remote picture brightness

  # Set contrast to 80
  samsungtv-remote picture contrast 80`,
	Args: cobra.MaximumNArgs(2),
	RunE: runPicture,
}

type pictureSetting struct {
	name string
	get  func(*tv.TV, context.Context) (int, bool, error)
	set  func(*tv.TV, context.Context, int) error
}

var pictureSettings = []pictureSetting{
	{"brightness", (*tv.TV).Brightness, (*tv.TV).SetBrightness},
	{"contrast", (*tv.TV).Contrast, (*tv.TV).SetContrast},
	{"sharpness", (*tv.TV).Sharpness, (*tv.TV).SetSharpness},
	{"colortemp", (*tv.TV).ColorTemperature, (*tv.TV).SetColorTemperature},
}

func runPicture(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	set, _, err := newTV(ctx)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		shown := false
		for _, s := range pictureSettings {
			value, ok, err := s.get(set, ctx)
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", s.name, err)
			}
			if ok {
				fmt.Printf("%-12s %d\n", s.name+":", value)
				shown = true
			}
		}
		if !shown {
			fmt.Println("This TV does not expose picture settings over UPnP.")
		}
		return nil
	}

	var setting *pictureSetting
	for i := range pictureSettings {
		if pictureSettings[i].name == args[0] {
			setting = &pictureSettings[i]
			break
		}
	}
	if setting == nil {
		return fmt.Errorf("unknown picture setting %q (use brightness, contrast, sharpness, or colortemp)", args[0])
	}

	if len(args) == 2 {
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid value %q", args[1])
		}
		if err := setting.set(set, ctx, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", setting.name, err)
		}
		fmt.Printf("%s set to %d\n", setting.name, value)
		return nil
	}

	value, ok, err := setting.get(set, ctx)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", setting.name, err)
	}
	if !ok {
		fmt.Println("This TV does not expose picture settings over UPnP.")
		return nil
	}
	fmt.Printf("%s: %d\n", setting.name, value)
	return nil
}

// mediaCmd controls media playback
var mediaCmd = &cobra.Command{
	Use:   "media <status|play|pause|stop|next|prev|seek <position>>",
	Short: "Control media playback",
	Long: `Control media playback via the AVTransport service.

The status action prints the transport state and playback position.
Seek positions use the H:MM:SS form, for example 0:01:30.`,
	Example: `  # Show what is playing
  samsungtv-remote media status

  # Pause and resume
  samsungtv-remote media pause
  samsungtv-remote media play

  # Seek 90 seconds in
  samsungtv-remote media seek 0:01:30`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runMedia,
}

func runMedia(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	set, _, err := newTV(ctx)
	if err != nil {
		return err
	}

	switch args[0] {
	case "status":
		return printMediaStatus(ctx, set)
	case "play":
		err = set.Play(ctx)
	case "pause":
		err = set.Pause(ctx)
	case "stop":
		err = set.Stop(ctx)
	case "next":
		err = set.Next(ctx)
	case "prev":
		err = set.Previous(ctx)
	case "seek":
		if len(args) != 2 {
			return fmt.Errorf("seek requires a position, for example 0:01:30")
		}
		err = set.Seek(ctx, args[1])
	default:
		return fmt.Errorf("unknown media action %q", args[0])
	}
	if err != nil {
		return fmt.Errorf("media %s failed: %w", args[0], err)
	}
	fmt.Printf("✓ %s\n", args[0])
	return nil
}

func printMediaStatus(ctx context.Context, set *tv.TV) error {
	transport, ok, err := set.TransportInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to get transport state: %w", err)
	}
	if !ok {
		fmt.Println("This TV does not expose media transport over UPnP.")
		return nil
	}
	fmt.Printf("State:    %s (%s)\n", transport.State, transport.Status)

	if position, ok, err := set.PositionInfo(ctx); err == nil && ok {
		fmt.Printf("Position: %s / %s\n", position.RelativeTime, position.TrackDuration)
	}
	if media, ok, err := set.MediaInfo(ctx); err == nil && ok && media.CurrentURI != "" {
		fmt.Printf("Playing:  %s\n", media.CurrentURI)
	}
	return nil
}

// powerCmd turns the TV on or off, or reports its state
var powerCmd = &cobra.Command{
	Use:   "power <on|off|status>",
	Short: "Turn the TV on or off, or show its power state",
	Long: `Turn the TV on or off, or show its power state.

Power-on sends a Wake-on-LAN magic packet and needs the TV's MAC
address, which is cached in the config during pairing. Power-off sends
the protocol's power-off key. Status probes the TV's REST endpoint and
works on 2014+ models only.`,
	Example: `  # Wake the TV
  samsungtv-remote power on

  # Turn the TV off
  samsungtv-remote power off

  # Probe the power state (2014+ TVs)
  samsungtv-remote power status`,
	Args: cobra.ExactArgs(1),
	RunE: runPower,
}

func runPower(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	switch args[0] {
	case "on":
		// No Connect here: the TV is presumably off.
		r, err := remote.New(remote.Method(methodFlag), cfg, upnp.NewDirectory(nil))
		if err != nil {
			return err
		}
		r.PowerOn()
		fmt.Printf("Sent wake-up to %s\n", cfg.Host)
		return saveConfig(cfg, path)

	case "off":
		r, _, err := connectRemote(ctx)
		if err != nil {
			return err
		}
		defer r.Close()
		r.PowerOff()
		fmt.Printf("Sent power-off to %s\n", cfg.Host)
		return nil

	case "status":
		r, err := remote.New(remote.Method(methodFlag), cfg, upnp.NewDirectory(nil))
		if err != nil {
			return err
		}
		ws, ok := r.(*remote.WebSocket)
		if !ok {
			return fmt.Errorf("power status needs the websocket method (2014+ TVs)")
		}
		if ws.Power() {
			fmt.Println("on")
		} else {
			fmt.Println("off")
		}
		return nil

	default:
		return fmt.Errorf("unknown power action %q (use on, off, or status)", args[0])
	}
}

// infoCmd prints what is known about the TV
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show TV device information",
	Long: `Show what is known about the TV.

Device details come from the REST endpoint on 2014+ TVs; the model
name and service list come from the UPnP device description and are
available on legacy TVs too.`,
	Example: `  # Show device information
  samsungtv-remote info --host 192.168.1.50`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	set, cfg, err := newTV(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Host: %s\n", cfg.Host)

	if model := set.ModelName(); model != "" {
		fmt.Printf("Model (UPnP): %s\n", model)
	}
	if services := set.Directory().Services(); len(services) > 0 {
		fmt.Printf("UPnP services: %s\n", strings.Join(services, ", "))
	}

	info, err := set.Info(ctx)
	if err != nil {
		fmt.Println("\nNo REST device endpoint (legacy TV, or TV unreachable).")
		return nil
	}

	fmt.Printf("\nName:       %s\n", info.Device.Name)
	fmt.Printf("Model:      %s\n", info.Device.ModelName)
	fmt.Printf("OS:         %s\n", info.Device.OS)
	fmt.Printf("Firmware:   %s\n", info.Device.FirmwareVersion)
	fmt.Printf("Resolution: %s\n", info.Device.Resolution)
	fmt.Printf("Wifi MAC:   %s\n", info.Device.WifiMac)
	fmt.Printf("Powered on: %v\n", info.PoweredOn())
	fmt.Printf("Token auth: %v\n", info.TokenAuthSupported())
	fmt.Printf("Frame TV:   %v\n", info.FrameTV())
	return nil
}

// Helper functions shared by the commands

func defaultConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate user config dir: %w", err)
	}
	return filepath.Join(base, "samsungtv", "tv.yaml"), nil
}

// loadConfig resolves the config file and the --host override. A
// missing file is fine when --host names the TV; anything else in the
// file that fails to parse is an error.
func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return nil, "", err
		}
	}

	cfg, err := config.Load(path)
	switch {
	case err == nil:
		if hostFlag != "" && hostFlag != cfg.Host {
			// Different TV: start fresh instead of reusing credentials
			cfg = config.New(hostFlag)
		}
	case errors.Is(err, os.ErrNotExist):
		if hostFlag == "" {
			return nil, "", fmt.Errorf("no config at %s and no --host given; run 'samsungtv-remote discover' to find TVs", path)
		}
		cfg = config.New(hostFlag)
	default:
		return nil, "", err
	}

	return cfg, path, nil
}

func saveConfig(cfg *config.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	return cfg.Save(path)
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(cmdTimeout)*time.Second)
}

// buildDirectory loads the TV's UPnP services, discovering the
// description URLs first when the config has none yet.
func buildDirectory(ctx context.Context, cfg *config.Config) *upnp.Directory {
	dir := upnp.NewDirectory(nil)

	if len(cfg.Locations) == 0 {
		if locations, err := discovery.Locations(cfg.Host, discovery.DefaultSearchWait); err == nil {
			cfg.Locations = locations
		}
	}
	if len(cfg.Locations) > 0 {
		if err := dir.Rebuild(ctx, cfg.Locations); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: UPnP services unavailable: %v\n", err)
		}
	}
	return dir
}

// newTV prepares the UPnP facade for commands that do not need a
// remote session.
func newTV(ctx context.Context) (*tv.TV, *config.Config, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	dir := buildDirectory(ctx, cfg)
	return tv.New(cfg, dir), cfg, nil
}

// connectRemote opens a remote session for commands that send keys.
func connectRemote(ctx context.Context) (remote.Remote, *config.Config, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	dir := buildDirectory(ctx, cfg)

	r, err := remote.New(remote.Method(methodFlag), cfg, dir)
	if err != nil {
		return nil, nil, err
	}
	if err := r.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", cfg.Host, err)
	}
	return r, cfg, nil
}
