package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xvzc/lanwatch/internal/ptr"
)

type cloner[T any] interface {
	Clone() T
}

type merger[T any] interface {
	cloner[T]
	Merge(T) T
}

// ┌─────────────────┐
// │ GENERAL OPTIONS │
// └─────────────────┘
var _ merger[*GeneralOptions] = (*GeneralOptions)(nil)

type GeneralOptions struct {
	LogLevel *zerolog.Level `toml:"log-level"`
	LogFile  *string        `toml:"log-file"`
}

func (o *GeneralOptions) UnmarshalTOML(data any) (err error) {
	m, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("non-table type general config")
	}

	if p := findFrom(m, "log-level", parseStringFn(checkLogLevel), &err); isOk(p, err) {
		o.LogLevel = ptr.FromValue(MustParseLogLevel(*p))
	}
	o.LogFile = findFrom(m, "log-file", parseStringFn(checkNonEmpty), &err)

	return err
}

func (o *GeneralOptions) Clone() *GeneralOptions {
	if o == nil {
		return nil
	}

	var newLevel *zerolog.Level
	if o.LogLevel != nil {
		newLevel = ptr.FromValue(MustParseLogLevel(strings.ToLower(o.LogLevel.String())))
	}

	return &GeneralOptions{
		LogLevel: newLevel,
		LogFile:  ptr.Clone(o.LogFile),
	}
}

func (origin *GeneralOptions) Merge(overrides *GeneralOptions) *GeneralOptions {
	if overrides == nil {
		return origin.Clone()
	}

	if origin == nil {
		return overrides.Clone()
	}

	return &GeneralOptions{
		LogLevel: ptr.CloneOr(overrides.LogLevel, origin.LogLevel),
		LogFile:  ptr.CloneOr(overrides.LogFile, origin.LogFile),
	}
}

// ┌─────────────────┐
// │ CAPTURE OPTIONS │
// └─────────────────┘
var _ merger[*CaptureOptions] = (*CaptureOptions)(nil)

type CaptureOptions struct {
	Interface   *string        `toml:"interface"`
	ReadTimeout *time.Duration `toml:"read-timeout"`
	SnapLen     *int           `toml:"snap-len"`
	Promiscuous *bool          `toml:"promiscuous"`
	QueueCap    *int           `toml:"queue-cap"`
}

func (o *CaptureOptions) UnmarshalTOML(data any) (err error) {
	m, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("non-table type capture config")
	}

	o.Interface = findFrom(m, "interface", parseStringFn(checkInterfaceName), &err)

	if p := findFrom(m, "read-timeout", parseIntFn[int64](checkReadTimeout), &err); isOk(p, err) {
		o.ReadTimeout = ptr.FromValue(time.Duration(*p) * time.Millisecond)
	}

	o.SnapLen = findFrom(m, "snap-len", parseIntFn[int](checkSnapLen), &err)
	o.Promiscuous = findFrom(m, "promiscuous", parseBoolFn(), &err)
	o.QueueCap = findFrom(m, "queue-cap", parseIntFn[int](checkQueueCap), &err)

	return err
}

func (o *CaptureOptions) Clone() *CaptureOptions {
	if o == nil {
		return nil
	}

	return &CaptureOptions{
		Interface:   ptr.Clone(o.Interface),
		ReadTimeout: ptr.Clone(o.ReadTimeout),
		SnapLen:     ptr.Clone(o.SnapLen),
		Promiscuous: ptr.Clone(o.Promiscuous),
		QueueCap:    ptr.Clone(o.QueueCap),
	}
}

func (origin *CaptureOptions) Merge(overrides *CaptureOptions) *CaptureOptions {
	if overrides == nil {
		return origin.Clone()
	}

	if origin == nil {
		return overrides.Clone()
	}

	return &CaptureOptions{
		Interface:   ptr.CloneOr(overrides.Interface, origin.Interface),
		ReadTimeout: ptr.CloneOr(overrides.ReadTimeout, origin.ReadTimeout),
		SnapLen:     ptr.CloneOr(overrides.SnapLen, origin.SnapLen),
		Promiscuous: ptr.CloneOr(overrides.Promiscuous, origin.Promiscuous),
		QueueCap:    ptr.CloneOr(overrides.QueueCap, origin.QueueCap),
	}
}

// ┌───────────────────┐
// │ DISCOVERY OPTIONS │
// └───────────────────┘
var _ merger[*DiscoveryOptions] = (*DiscoveryOptions)(nil)

type DiscoveryOptions struct {
	// Target is the swept range. nil means the /24 of the capture interface.
	Target    *netip.Prefix  `toml:"target"`
	Interval  *time.Duration `toml:"interval"`
	ReplyWait *time.Duration `toml:"reply-wait"`
	OUIDB     *string        `toml:"oui-db"`
}

func (o *DiscoveryOptions) UnmarshalTOML(data any) (err error) {
	m, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("non-table type discovery config")
	}

	if p := findFrom(m, "target", parseStringFn(checkTarget), &err); isOk(p, err) {
		o.Target = ptr.FromValue(MustParsePrefix(*p))
	}

	if p := findFrom(m, "interval", parseIntFn[int64](checkInterval), &err); isOk(p, err) {
		o.Interval = ptr.FromValue(time.Duration(*p) * time.Second)
	}

	if p := findFrom(m, "reply-wait", parseIntFn[int64](checkReplyWait), &err); isOk(p, err) {
		o.ReplyWait = ptr.FromValue(time.Duration(*p) * time.Millisecond)
	}

	o.OUIDB = findFrom(m, "oui-db", parseStringFn(nil), &err)

	return err
}

func (o *DiscoveryOptions) Clone() *DiscoveryOptions {
	if o == nil {
		return nil
	}

	return &DiscoveryOptions{
		Target:    ptr.Clone(o.Target),
		Interval:  ptr.Clone(o.Interval),
		ReplyWait: ptr.Clone(o.ReplyWait),
		OUIDB:     ptr.Clone(o.OUIDB),
	}
}

func (origin *DiscoveryOptions) Merge(overrides *DiscoveryOptions) *DiscoveryOptions {
	if overrides == nil {
		return origin.Clone()
	}

	if origin == nil {
		return overrides.Clone()
	}

	return &DiscoveryOptions{
		Target:    ptr.CloneOr(overrides.Target, origin.Target),
		Interval:  ptr.CloneOr(overrides.Interval, origin.Interval),
		ReplyWait: ptr.CloneOr(overrides.ReplyWait, origin.ReplyWait),
		OUIDB:     ptr.CloneOr(overrides.OUIDB, origin.OUIDB),
	}
}

// ┌──────────────┐
// │ VIEW OPTIONS │
// └──────────────┘
var _ merger[*ViewOptions] = (*ViewOptions)(nil)

type ViewOptions struct {
	Window   *int           `toml:"window"`
	LogLines *int           `toml:"log-lines"`
	Refresh  *time.Duration `toml:"refresh"`
}

func (o *ViewOptions) UnmarshalTOML(data any) (err error) {
	m, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("non-table type view config")
	}

	o.Window = findFrom(m, "window", parseIntFn[int](checkWindow), &err)
	o.LogLines = findFrom(m, "log-lines", parseIntFn[int](checkLogLines), &err)

	if p := findFrom(m, "refresh", parseIntFn[int64](checkRefresh), &err); isOk(p, err) {
		o.Refresh = ptr.FromValue(time.Duration(*p) * time.Millisecond)
	}

	return err
}

func (o *ViewOptions) Clone() *ViewOptions {
	if o == nil {
		return nil
	}

	return &ViewOptions{
		Window:   ptr.Clone(o.Window),
		LogLines: ptr.Clone(o.LogLines),
		Refresh:  ptr.Clone(o.Refresh),
	}
}

func (origin *ViewOptions) Merge(overrides *ViewOptions) *ViewOptions {
	if overrides == nil {
		return origin.Clone()
	}

	if origin == nil {
		return overrides.Clone()
	}

	return &ViewOptions{
		Window:   ptr.CloneOr(overrides.Window, origin.Window),
		LogLines: ptr.CloneOr(overrides.LogLines, origin.LogLines),
		Refresh:  ptr.CloneOr(overrides.Refresh, origin.Refresh),
	}
}

// ┌────────────────┐
// │ EXPORT OPTIONS │
// └────────────────┘
var _ merger[*ExportOptions] = (*ExportOptions)(nil)

type ExportOptions struct {
	Dir     *string `toml:"dir"`
	GeoIPDB *string `toml:"geoip-db"`
}

func (o *ExportOptions) UnmarshalTOML(data any) (err error) {
	m, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("non-table type export config")
	}

	o.Dir = findFrom(m, "dir", parseStringFn(checkNonEmpty), &err)
	o.GeoIPDB = findFrom(m, "geoip-db", parseStringFn(nil), &err)

	return err
}

func (o *ExportOptions) Clone() *ExportOptions {
	if o == nil {
		return nil
	}

	return &ExportOptions{
		Dir:     ptr.Clone(o.Dir),
		GeoIPDB: ptr.Clone(o.GeoIPDB),
	}
}

func (origin *ExportOptions) Merge(overrides *ExportOptions) *ExportOptions {
	if overrides == nil {
		return origin.Clone()
	}

	if origin == nil {
		return overrides.Clone()
	}

	return &ExportOptions{
		Dir:     ptr.CloneOr(overrides.Dir, origin.Dir),
		GeoIPDB: ptr.CloneOr(overrides.GeoIPDB, origin.GeoIPDB),
	}
}

// ┌─────────────────┐
// │ MONITOR OPTIONS │
// └─────────────────┘
var _ merger[*MonitorOptions] = (*MonitorOptions)(nil)

type MonitorOptions struct {
	Duration *time.Duration `toml:"duration"`
	// Export is the file name prefix of the activity export. Empty means
	// the activity is not exported.
	Export *string `toml:"export"`
}

func (o *MonitorOptions) UnmarshalTOML(data any) (err error) {
	m, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("non-table type monitor config")
	}

	if p := findFrom(m, "duration", parseIntFn[int64](checkDuration), &err); isOk(p, err) {
		o.Duration = ptr.FromValue(time.Duration(*p) * time.Second)
	}
	o.Export = findFrom(m, "export", parseStringFn(nil), &err)

	return err
}

func (o *MonitorOptions) Clone() *MonitorOptions {
	if o == nil {
		return nil
	}

	return &MonitorOptions{
		Duration: ptr.Clone(o.Duration),
		Export:   ptr.Clone(o.Export),
	}
}

func (origin *MonitorOptions) Merge(overrides *MonitorOptions) *MonitorOptions {
	if overrides == nil {
		return origin.Clone()
	}

	if origin == nil {
		return overrides.Clone()
	}

	return &MonitorOptions{
		Duration: ptr.CloneOr(overrides.Duration, origin.Duration),
		Export:   ptr.CloneOr(overrides.Export, origin.Export),
	}
}
