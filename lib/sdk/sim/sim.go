// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/result"
	"github.com/libretro/mist/lib/sdk"
)

// Provider is a simulated SDK session.
type Provider struct {
	world *world
}

var _ sdk.Provider = (*Provider)(nil)

// world is the mutable simulation shared by every interface view.
type world struct {
	mu      sync.Mutex
	profile *Profile

	frame   int
	pending []sdk.Callback

	installedDlc   map[catalog.AppID]bool
	presence       map[string]string
	enteredText    *string
	vrStreaming    bool
	launcherMode   bool
	writeBatchOpen bool

	input *inputState
}

// New returns a provider over profile. A nil profile means
// DefaultProfile.
func New(profile *Profile) *Provider {
	if profile == nil {
		profile = DefaultProfile()
	}
	w := &world{
		profile:      profile,
		installedDlc: map[catalog.AppID]bool{},
		presence:     map[string]string{},
	}
	for _, dlc := range profile.Dlc {
		if dlc.Installed {
			w.installedDlc[dlc.AppID] = true
		}
	}
	w.input = newInputState(w)
	return &Provider{world: w}
}

func (p *Provider) Init() error {
	if p.world.profile.InitError != "" {
		return errors.New(p.world.profile.InitError)
	}
	return nil
}

func (p *Provider) Shutdown() {}

// RunCallbacks advances one SDK frame and returns callbacks queued by
// earlier calls followed by those scripted for this frame.
func (p *Provider) RunCallbacks() []sdk.Callback {
	w := p.world
	w.mu.Lock()
	defer w.mu.Unlock()

	w.frame++
	callbacks := w.pending
	w.pending = nil
	for _, scripted := range w.profile.Events {
		if scripted.At != w.frame {
			continue
		}
		kind := eventKinds[scripted.Kind]
		var payload any
		switch kind {
		case catalog.EventDlcInstalled:
			w.installedDlc[scripted.AppID] = true
			payload = catalog.DlcInstalled{AppID: scripted.AppID}
		case catalog.EventGamepadTextInputDismissed:
			payload = w.dismissTextInput()
		case catalog.EventSteamShutdown:
			payload = catalog.SteamShutdown{}
		case catalog.EventAppResumingFromSuspend:
			payload = catalog.AppResumingFromSuspend{}
		case catalog.EventFloatingGamepadTextInputDismissed:
			payload = catalog.FloatingGamepadTextInputDismissed{}
		case catalog.EventRemoteStorageLocalFileChange:
			payload = catalog.RemoteStorageLocalFileChange{}
		}
		callbacks = append(callbacks, sdk.Callback{Source: w.profile.User, Kind: kind, Payload: payload})
	}
	return callbacks
}

// Presence returns a copy of the rich presence store.
func (p *Provider) Presence() map[string]string {
	p.world.mu.Lock()
	defer p.world.mu.Unlock()
	presence := make(map[string]string, len(p.world.presence))
	for key, value := range p.world.presence {
		presence[key] = value
	}
	return presence
}

func (p *Provider) Apps() sdk.Apps                   { return (*apps)(p.world) }
func (p *Provider) Friends() sdk.Friends             { return (*friends)(p.world) }
func (p *Provider) Utils() sdk.Utils                 { return (*utils)(p.world) }
func (p *Provider) RemoteStorage() sdk.RemoteStorage { return (*remoteStorage)(p.world) }
func (p *Provider) Input() sdk.Input                 { return p.world.input }

func (w *world) queue(kind catalog.EventKind, payload any) {
	w.pending = append(w.pending, sdk.Callback{Source: w.profile.User, Kind: kind, Payload: payload})
}

// dismissTextInput closes the text dialog, submitting the profile's
// entered text when there is one. Callers hold mu.
func (w *world) dismissTextInput() catalog.GamepadTextInputDismissed {
	if w.profile.EnteredText == "" {
		w.enteredText = nil
		return catalog.GamepadTextInputDismissed{}
	}
	text := w.profile.EnteredText
	w.enteredText = &text
	return catalog.GamepadTextInputDismissed{Submitted: true, SubmittedLen: uint32(len(text))}
}

func (w *world) dlc(app catalog.AppID) (DlcProfile, bool) {
	index := slices.IndexFunc(w.profile.Dlc, func(dlc DlcProfile) bool { return dlc.AppID == app })
	if index < 0 {
		return DlcProfile{}, false
	}
	return w.profile.Dlc[index], true
}

type apps world

func (a *apps) DlcDataByIndex(index int32) (catalog.DlcData, error) {
	if index < 0 || int(index) >= len(a.profile.Dlc) {
		return catalog.DlcData{}, result.New(result.ErrInvalidDlcIndex, "dlc index %d out of range [0, %d)", index, len(a.profile.Dlc))
	}
	dlc := a.profile.Dlc[index]
	return catalog.DlcData{AppID: dlc.AppID, Available: dlc.Available, Name: dlc.Name}, nil
}

func (a *apps) IsAppInstalled(app catalog.AppID) bool {
	if app == a.profile.AppID {
		return true
	}
	_, ok := a.profile.InstalledApps[app]
	return ok
}

func (a *apps) IsCybercafe() bool { return a.profile.Cybercafe }

func (a *apps) IsDlcInstalled(app catalog.AppID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.installedDlc[app]
}

func (a *apps) IsLowViolence() bool { return a.profile.LowViolence }
func (a *apps) IsSubscribed() bool  { return a.profile.Subscribed }

func (a *apps) IsSubscribedApp(app catalog.AppID) bool {
	if app == a.profile.AppID {
		return a.profile.Subscribed
	}
	_, ok := (*world)(a).dlc(app)
	return ok
}

func (a *apps) IsSubscribedFromFamilySharing() bool { return a.profile.FamilySharing }
func (a *apps) IsSubscribedFromFreeWeekend() bool   { return a.profile.FreeWeekend }
func (a *apps) IsVacBanned() bool                   { return a.profile.VacBanned }
func (a *apps) AppBuildID() catalog.BuildID         { return a.profile.BuildID }

func (a *apps) AppInstallDir(app catalog.AppID) (string, bool) {
	if app == a.profile.AppID && a.profile.InstallDir != "" {
		return a.profile.InstallDir, true
	}
	dir, ok := a.profile.InstalledApps[app]
	return dir, ok
}

func (a *apps) AppOwner() catalog.SteamID { return a.profile.Owner }

func (a *apps) AvailableGameLanguages() string { return strings.Join(a.profile.Languages, ",") }

func (a *apps) CurrentBetaName() (string, bool) {
	return a.profile.BetaName, a.profile.BetaName != ""
}

func (a *apps) CurrentGameLanguage() string { return a.profile.Language }
func (a *apps) DlcCount() int32             { return int32(len(a.profile.Dlc)) }

func (a *apps) DlcDownloadProgress(catalog.AppID) catalog.DlcDownloadProgress {
	return catalog.DlcDownloadProgress{}
}

func (a *apps) EarliestPurchaseUnixTime(app catalog.AppID) uint32 {
	dlc, _ := (*world)(a).dlc(app)
	return dlc.PurchaseTime
}

func (a *apps) InstalledDepots(app catalog.AppID) []catalog.DepotID {
	dlc, _ := (*world)(a).dlc(app)
	return slices.Clone(dlc.Depots)
}

func (a *apps) LaunchCommandLine() string { return a.profile.LaunchCommandLine }

func (a *apps) LaunchQueryParam(key string) (string, bool) {
	value, ok := a.profile.LaunchParams[key]
	return value, ok
}

func (a *apps) InstallDlc(app catalog.AppID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := (*world)(a).dlc(app); !ok || a.installedDlc[app] {
		return
	}
	a.installedDlc[app] = true
	(*world)(a).queue(catalog.EventDlcInstalled, catalog.DlcInstalled{AppID: app})
}

func (a *apps) MarkContentCorrupt(bool) bool { return true }

func (a *apps) UninstallDlc(app catalog.AppID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.installedDlc, app)
}

type friends world

func (f *friends) ClearRichPresence() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.presence)
}

// Limits the platform applies to rich presence.
const (
	maxRichPresenceKeys        = 30
	maxRichPresenceKeyLength   = 64
	maxRichPresenceValueLength = 256
)

func (f *friends) SetRichPresence(key string, value *string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == "" || len(key) > maxRichPresenceKeyLength {
		return false
	}
	if value == nil || *value == "" {
		delete(f.presence, key)
		return true
	}
	if len(*value) > maxRichPresenceValueLength {
		return false
	}
	if _, exists := f.presence[key]; !exists && len(f.presence) >= maxRichPresenceKeys {
		return false
	}
	f.presence[key] = *value
	return true
}

type utils world

func (u *utils) AppID() catalog.AppID          { return u.profile.AppID }
func (u *utils) CurrentBatteryPower() uint8    { return u.profile.Environment.BatteryPower }
func (u *utils) IsOverlayEnabled() bool        { return u.profile.Environment.Overlay }
func (u *utils) IsSteamInBigPictureMode() bool { return u.profile.Environment.BigPicture }
func (u *utils) IsSteamRunningInVR() bool      { return u.profile.Environment.VR }
func (u *utils) IsSteamRunningOnSteamDeck() bool {
	return u.profile.Environment.SteamDeck
}

func (u *utils) EnteredGamepadTextInput() (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.enteredText == nil {
		return "", false
	}
	return *u.enteredText, true
}

func (u *utils) IsVRHeadsetStreamingEnabled() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.vrStreaming
}

func (u *utils) SetVRHeadsetStreamingEnabled(enabled bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.vrStreaming = enabled
}

func (u *utils) ShowGamepadTextInput(catalog.GamepadTextInputArgs) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	(*world)(u).queue(catalog.EventGamepadTextInputDismissed, (*world)(u).dismissTextInput())
	return true
}

func (u *utils) ShowFloatingGamepadTextInput(catalog.FloatingGamepadTextInputArgs) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.profile.Environment.SteamDeck && !u.profile.Environment.BigPicture {
		return false
	}
	(*world)(u).queue(catalog.EventFloatingGamepadTextInputDismissed, catalog.FloatingGamepadTextInputDismissed{})
	return true
}

func (u *utils) SetGameLauncherMode(launcherMode bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.launcherMode = launcherMode
}

func (u *utils) StartVRDashboard() {}

type remoteStorage world

func (r *remoteStorage) BeginFileWriteBatch() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeBatchOpen {
		return false
	}
	r.writeBatchOpen = true
	return true
}

func (r *remoteStorage) EndFileWriteBatch() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.writeBatchOpen {
		return false
	}
	r.writeBatchOpen = false
	return true
}
