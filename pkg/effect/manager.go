package effect

import (
	"errors"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/lightd/pkg/schema"
	"github.com/urmzd/lightd/pkg/setting"
)

// Options configures a Manager.
type Options struct {
	// Interval is how long an effect stays live; zero never auto-advances.
	Interval time.Duration

	RememberCurrentEffect bool
	ApplyGlobalColors     bool
	PersistenceCritical   bool

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Manager owns the ordered effect list and decides which effect is live.
// It is safe for concurrent use by the render loop and control surfaces.
type Manager struct {
	mu sync.RWMutex

	registry  *Registry
	validator *schema.Validator
	canvases  []*Canvas
	opts      Options
	now       func() time.Time

	effects     []Effect
	current     int
	interval    time.Duration
	start       time.Time
	initialized bool

	// override is shown instead of the current effect. It is not part of
	// the list and is dropped whenever the list is reordered or shrunk.
	override Effect

	globalColors         bool
	primary, secondary   color.RGBA
	globalPaletteApplied bool

	listeners []Listener
	persist   *persistence
}

// NewManager creates an empty manager. Call LoadDefaultEffects,
// DeserializeFromJSON or Load before Init.
func NewManager(registry *Registry, canvases []*Canvas, opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		registry:  registry,
		validator: schema.NewValidator(),
		canvases:  canvases,
		opts:      opts,
		now:       now,
		interval:  opts.Interval,
		start:     now(),
	}
}

// AddListener registers l for effect events.
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// LoadDefaultEffects replaces the list with one instance per default factory.
// Default effects are core effects.
func (m *Manager) LoadDefaultEffects() {
	m.mu.Lock()
	m.effects = m.effects[:0]
	for _, f := range m.registry.Defaults() {
		m.effects = append(m.effects, m.produceDefault(f))
	}
	m.resetLocked()
	n := len(m.effects)
	m.mu.Unlock()

	log.Info().Int("count", n).Msg("Loaded default effects")
	m.notify(func(l Listener) { l.OnEffectListDirty() })
}

func (m *Manager) produceDefault(f DefaultFactory) Effect {
	e := f.New()
	e.MarkCore()
	return e
}

func (m *Manager) resetLocked() {
	m.current = 0
	m.start = m.now()
	m.override = nil
	m.initialized = false
}

// Init initializes every effect against the canvases. The first failure
// aborts and is returned; the manager must not be used for rendering then.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.effects {
		if err := e.Init(m.canvases); err != nil {
			return fmt.Errorf("%w: effect %d (%s): %v", ErrInitFailed, i, e.Name(), err)
		}
	}
	m.initialized = true

	if m.opts.ApplyGlobalColors && m.globalColors {
		m.applyGlobalPaletteLocked()
	}

	log.Info().Int("effects", len(m.effects)).Int("current", m.current).Msg("Effect manager initialized")
	return nil
}

// EffectCount returns the number of effects in the list.
func (m *Manager) EffectCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.effects)
}

// Effects returns a snapshot of the effect list.
func (m *Manager) Effects() []Effect {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Effect(nil), m.effects...)
}

// Summary is a snapshot of one list entry.
type Summary struct {
	Index   int
	Name    string
	Number  int
	Enabled bool
	Core    bool
}

func summaryOf(i int, e Effect) Summary {
	return Summary{Index: i, Name: e.Name(), Number: e.Number(), Enabled: e.Enabled(), Core: e.IsCore()}
}

// Summaries returns a snapshot of every entry in list order.
func (m *Manager) Summaries() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, len(m.effects))
	for i, e := range m.effects {
		out[i] = summaryOf(i, e)
	}
	return out
}

// EffectAt returns the effect at index i.
func (m *Manager) EffectAt(i int) (Effect, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.effects) {
		return nil, ErrIndexOutOfRange
	}
	return m.effects[i], nil
}

// CurrentIndex returns the index of the current effect.
func (m *Manager) CurrentIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// CurrentEffect returns the effect to show: the override when one is set,
// otherwise the list entry at the current index. It returns nil for an
// empty list.
func (m *Manager) CurrentEffect() Effect {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeLocked()
}

func (m *Manager) activeLocked() Effect {
	if m.override != nil {
		return m.override
	}
	if m.current < 0 || m.current >= len(m.effects) {
		return nil
	}
	return m.effects[m.current]
}

// Render draws the active effect onto every canvas. It reports false when
// there is nothing to show, either because the list is empty or the current
// effect is disabled.
func (m *Manager) Render(now time.Time, canvases []*Canvas) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e := m.activeLocked()
	if e == nil || !e.Enabled() {
		return false
	}
	for _, c := range canvases {
		e.Render(now, c)
	}
	return true
}

// NextEffect advances to the next enabled effect, wrapping around. If every
// effect is disabled the index is left unchanged.
func (m *Manager) NextEffect() {
	m.step(1)
}

// PreviousEffect moves back to the previous enabled effect, wrapping around.
func (m *Manager) PreviousEffect() {
	m.step(-1)
}

func (m *Manager) step(dir int) {
	m.mu.Lock()
	n := len(m.effects)
	if n == 0 {
		m.mu.Unlock()
		return
	}
	next := m.findEnabledLocked(m.current+dir, dir)
	if next < 0 {
		m.mu.Unlock()
		return
	}
	m.setCurrentLocked(next)
	m.mu.Unlock()

	m.notify(func(l Listener) { l.OnCurrentEffectChanged(next) })
}

// findEnabledLocked returns the first enabled effect at or after from when
// walking in dir, wrapping around, or -1 when every effect is disabled.
func (m *Manager) findEnabledLocked(from, dir int) int {
	n := len(m.effects)
	for i := 0; i < n; i++ {
		idx := ((from+dir*i)%n + n) % n
		if m.effects[idx].Enabled() {
			return idx
		}
	}
	return -1
}

// SetCurrentEffectIndex makes effect i current and restarts its timer.
func (m *Manager) SetCurrentEffectIndex(i int) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.effects) {
		m.mu.Unlock()
		return ErrIndexOutOfRange
	}
	m.setCurrentLocked(i)
	m.mu.Unlock()

	m.notify(func(l Listener) { l.OnCurrentEffectChanged(i) })
	return nil
}

func (m *Manager) setCurrentLocked(i int) {
	m.current = i
	m.start = m.now()
	m.override = nil
	if m.opts.RememberCurrentEffect {
		m.persist.flagCurrentIndex()
	}
}

// Interval returns how long each effect stays live.
func (m *Manager) Interval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.interval
}

// IsIntervalEternal reports whether auto-advance is off.
func (m *Manager) IsIntervalEternal() bool {
	return m.Interval() == 0
}

// SetInterval changes how long each effect stays live.
func (m *Manager) SetInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	m.interval = d
	m.persist.flagEffects()
	m.mu.Unlock()

	m.notify(func(l Listener) { l.OnIntervalChanged(d) })
}

// TimeRemainingForCurrentEffect returns interval minus the time the current
// effect has been live, floored at zero. With an eternal interval it returns
// zero; check IsIntervalEternal first.
func (m *Manager) TimeRemainingForCurrentEffect() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.remainingLocked()
}

func (m *Manager) remainingLocked() time.Duration {
	if m.interval == 0 {
		return 0
	}
	remaining := m.interval - m.now().Sub(m.start)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AdvanceIfExpired moves to the next effect once the current one has used up
// its interval. It reports whether it advanced.
func (m *Manager) AdvanceIfExpired() bool {
	m.mu.RLock()
	expired := m.interval != 0 && len(m.effects) > 0 && m.remainingLocked() == 0
	m.mu.RUnlock()

	if !expired {
		return false
	}
	m.NextEffect()
	return true
}

// EnableEffect makes effect i eligible for display. When the current effect
// is disabled the newly enabled one becomes current.
func (m *Manager) EnableEffect(i int) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.effects) {
		m.mu.Unlock()
		return ErrIndexOutOfRange
	}
	m.effects[i].SetEnabled(true)
	m.persist.flagEffects()
	switchTo := m.current < len(m.effects) && !m.effects[m.current].Enabled()
	if switchTo {
		m.setCurrentLocked(i)
	}
	m.mu.Unlock()

	m.notify(func(l Listener) { l.OnEffectEnabledStateChanged(i, true) })
	if switchTo {
		m.notify(func(l Listener) { l.OnCurrentEffectChanged(i) })
	}
	return nil
}

// DisableEffect hides effect i. Disabling the current effect moves on to the
// next enabled one, if any.
func (m *Manager) DisableEffect(i int) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.effects) {
		m.mu.Unlock()
		return ErrIndexOutOfRange
	}
	m.effects[i].SetEnabled(false)
	m.persist.flagEffects()
	wasCurrent := i == m.current
	m.mu.Unlock()

	m.notify(func(l Listener) { l.OnEffectEnabledStateChanged(i, false) })
	if wasCurrent {
		m.NextEffect()
	}
	return nil
}

// MoveEffect moves the effect at from to index to. The current effect keeps
// its identity; only its index follows the move.
func (m *Manager) MoveEffect(from, to int) error {
	m.mu.Lock()
	n := len(m.effects)
	if from < 0 || from >= n || to < 0 || to >= n {
		m.mu.Unlock()
		return ErrIndexOutOfRange
	}
	if from == to {
		m.mu.Unlock()
		return nil
	}

	current := m.effects[m.current]
	moved := m.effects[from]
	m.effects = append(m.effects[:from], m.effects[from+1:]...)
	m.effects = append(m.effects[:to], append([]Effect{moved}, m.effects[to:]...)...)

	for idx, e := range m.effects {
		if e == current {
			m.current = idx
			break
		}
	}
	m.override = nil
	m.persist.flagEffects()
	if m.opts.RememberCurrentEffect {
		m.persist.flagCurrentIndex()
	}
	m.mu.Unlock()

	m.notify(func(l Listener) { l.OnEffectListDirty() })
	return nil
}

// CopyEffect builds a disabled copy of effect i through its JSON factory.
// The copy is not added to the list.
func (m *Manager) CopyEffect(i int) (Effect, error) {
	m.mu.RLock()
	if i < 0 || i >= len(m.effects) {
		m.mu.RUnlock()
		return nil, ErrIndexOutOfRange
	}
	src := m.effects[i]
	factory, ok := m.registry.JSONFactory(src.Number())
	if !ok {
		m.mu.RUnlock()
		return nil, fmt.Errorf("%w: %d", ErrNoJSONFactory, src.Number())
	}
	rec, err := src.Serialize()
	m.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize effect %s: %w", src.Name(), err)
	}

	copied, err := factory(roundTripRecord(rec))
	if err != nil {
		return nil, fmt.Errorf("failed to copy effect %s: %w", src.Name(), err)
	}
	copied.SetEnabled(false)
	return copied, nil
}

// AppendEffect adds e at the end of the list, initializing it first when the
// manager has already been initialized.
func (m *Manager) AppendEffect(e Effect) error {
	_, err := m.appendEffect(e)
	return err
}

func (m *Manager) appendEffect(e Effect) (Summary, error) {
	m.mu.Lock()
	if m.initialized {
		if err := e.Init(m.canvases); err != nil {
			m.mu.Unlock()
			return Summary{}, fmt.Errorf("%w: %s: %v", ErrInitFailed, e.Name(), err)
		}
	}
	m.effects = append(m.effects, e)
	if pu, ok := e.(PaletteUser); ok && m.globalPaletteApplied {
		pu.SetGlobalPalette(GlobalPalette(m.primary, m.secondary))
	}
	m.persist.flagEffects()
	added := summaryOf(len(m.effects)-1, e)
	m.mu.Unlock()

	m.notify(func(l Listener) { l.OnEffectListDirty() })
	return added, nil
}

// DuplicateEffect copies effect i, applies values to the copy and appends
// it. Nothing is added when any value is rejected.
func (m *Manager) DuplicateEffect(i int, values map[string]string) (Summary, error) {
	copied, err := m.CopyEffect(i)
	if err != nil {
		return Summary{}, err
	}
	if err := m.validateSettings(copied, values); err != nil {
		return Summary{}, err
	}
	if err := applySettings(copied, values); err != nil {
		return Summary{}, err
	}
	return m.appendEffect(copied)
}

// DeleteEffect removes effect i. Core effects are refused with ErrCoreEffect.
func (m *Manager) DeleteEffect(i int) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.effects) {
		m.mu.Unlock()
		return ErrIndexOutOfRange
	}
	if m.effects[i].IsCore() {
		m.mu.Unlock()
		return ErrCoreEffect
	}

	m.effects = append(m.effects[:i], m.effects[i+1:]...)
	m.override = nil

	currentChanged := false
	switch {
	case i < m.current:
		m.current--
	case i == m.current:
		if m.current >= len(m.effects) {
			m.current = 0
		}
		if next := m.findEnabledLocked(m.current, 1); next >= 0 {
			m.current = next
		}
		m.start = m.now()
		currentChanged = true
	}
	m.persist.flagEffects()
	if m.opts.RememberCurrentEffect {
		m.persist.flagCurrentIndex()
	}
	current := m.current
	m.mu.Unlock()

	m.notify(func(l Listener) { l.OnEffectListDirty() })
	if currentChanged {
		m.notify(func(l Listener) { l.OnCurrentEffectChanged(current) })
	}
	return nil
}

// EffectSettings returns a summary, the setting values and the setting specs
// of effect i.
func (m *Manager) EffectSettings(i int) (Summary, map[string]any, []setting.Spec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.effects) {
		return Summary{}, nil, nil, ErrIndexOutOfRange
	}
	e := m.effects[i]
	return summaryOf(i, e), e.Settings(), e.SettingSpecs(), nil
}

// SetEffectSettings applies values to effect i. Every value is checked
// against the effect's setting specs first; when any is rejected nothing is
// applied.
func (m *Manager) SetEffectSettings(i int, values map[string]string) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.effects) {
		m.mu.Unlock()
		return ErrIndexOutOfRange
	}
	e := m.effects[i]
	if err := m.validateSettings(e, values); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := applySettings(e, values); err != nil {
		m.mu.Unlock()
		return err
	}
	m.persist.flagEffects()
	m.mu.Unlock()

	m.notify(func(l Listener) { l.OnEffectListDirty() })
	return nil
}

// validateSettings parses values against the setting specs of e and checks
// them with the JSON Schema built from those specs.
func (m *Manager) validateSettings(e Effect, values map[string]string) error {
	specs := e.SettingSpecs()
	for name := range values {
		if _, ok := setting.Find(specs, name); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSetting, name)
		}
	}
	if _, err := m.validator.ParseSettings(specs, values); err != nil {
		if errors.Is(err, setting.ErrInvalidValue) {
			return err
		}
		return fmt.Errorf("%w: %v", setting.ErrInvalidValue, err)
	}
	return nil
}

func applySettings(e Effect, values map[string]string) error {
	for name, value := range values {
		if _, err := e.SetSetting(name, value); err != nil {
			return err
		}
	}
	return nil
}

// SetGlobalColors records the configured global colors without showing them.
// Init applies them to palette effects when ApplyGlobalColors is set.
func (m *Manager) SetGlobalColors(primary, secondary color.RGBA) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primary, m.secondary = primary, secondary
	m.globalColors = true
}

// ApplyGlobalColor makes c the global color. The previous global color
// becomes the secondary one, palette effects switch to the derived palette,
// and a solid fill of c is shown as an override until the next navigation.
func (m *Manager) ApplyGlobalColor(c color.RGBA) {
	m.mu.Lock()
	if m.globalColors {
		m.secondary = m.primary
	} else {
		m.secondary = c
	}
	m.primary = c
	m.globalColors = true
	m.applyGlobalPaletteLocked()

	fill := NewColorFill("Remote Color", c)
	if err := fill.Init(m.canvases); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize remote color fill")
	}
	m.override = fill
	idx := m.current
	m.mu.Unlock()

	log.Info().Str("color", fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)).Msg("Applied global color")
	m.notify(func(l Listener) { l.OnCurrentEffectChanged(idx) })
}

// GlobalColors returns the current global colors and whether any are set.
func (m *Manager) GlobalColors() (primary, secondary color.RGBA, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.primary, m.secondary, m.globalColors
}

// ClearRemoteColor removes the global color. With retainOverride the
// override effect keeps showing. Palette effects go back to their own
// palettes unless ApplyGlobalColors is configured.
func (m *Manager) ClearRemoteColor(retainOverride bool) {
	m.mu.Lock()
	if !retainOverride {
		m.override = nil
	}
	if m.opts.ApplyGlobalColors && m.globalColors {
		m.applyGlobalPaletteLocked()
	} else {
		m.clearGlobalPaletteLocked()
	}
	idx := m.current
	m.mu.Unlock()

	m.notify(func(l Listener) { l.OnCurrentEffectChanged(idx) })
}

// HasOverride reports whether a temporary effect is shown instead of the
// current list entry.
func (m *Manager) HasOverride() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.override != nil
}

func (m *Manager) applyGlobalPaletteLocked() {
	pal := GlobalPalette(m.primary, m.secondary)
	for _, e := range m.effects {
		if pu, ok := e.(PaletteUser); ok {
			pu.SetGlobalPalette(pal)
		}
	}
	m.globalPaletteApplied = true
}

func (m *Manager) clearGlobalPaletteLocked() {
	for _, e := range m.effects {
		if pu, ok := e.(PaletteUser); ok {
			pu.SetGlobalPalette(nil)
		}
	}
	m.globalPaletteApplied = false
}

// SetRememberCurrentEffect toggles persisting the current index.
func (m *Manager) SetRememberCurrentEffect(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts.RememberCurrentEffect = v
	if v {
		m.persist.flagCurrentIndex()
	}
}

// SetApplyGlobalColors toggles whether configured global colors are applied
// to palette effects.
func (m *Manager) SetApplyGlobalColors(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts.ApplyGlobalColors = v
	if v && m.globalColors {
		m.applyGlobalPaletteLocked()
	} else if !v && m.override == nil {
		m.clearGlobalPaletteLocked()
	}
}

func (m *Manager) notify(fn func(Listener)) {
	m.mu.RLock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.RUnlock()
	for _, l := range listeners {
		fn(l)
	}
}
