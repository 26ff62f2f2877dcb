package effect

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/lightd/pkg/jsonwriter"
	"github.com/urmzd/lightd/pkg/persist"
)

// Persistence keys.
const (
	EffectsConfigKey = "effects.cfg"
	CurrentEffectKey = "current.cfg"
)

// Document is the persisted effect configuration.
type Document struct {
	// Interval in milliseconds; absent keeps the configured default.
	Interval *int64   `json:"ivl,omitempty"`
	Effects  []Record `json:"efs"`
}

type persistence struct {
	gateway persist.Gateway
	writer  *jsonwriter.Writer

	effectsWriter int
	indexWriter   int
}

func (p *persistence) flagEffects() {
	if p == nil {
		return
	}
	p.writer.FlagWriter(p.effectsWriter)
}

func (p *persistence) flagCurrentIndex() {
	if p == nil {
		return
	}
	p.writer.FlagWriter(p.indexWriter)
}

// EnablePersistence registers the manager's writers. Until it is called,
// changes are kept in memory only.
func (m *Manager) EnablePersistence(gateway persist.Gateway, writer *jsonwriter.Writer) {
	p := &persistence{gateway: gateway, writer: writer}
	p.effectsWriter = writer.RegisterWriter(EffectsConfigKey, m.saveEffects)
	p.indexWriter = writer.RegisterWriter(CurrentEffectKey, m.saveCurrentIndex)

	m.mu.Lock()
	m.persist = p
	m.mu.Unlock()
}

// Load restores the effect list from the gateway, falling back to the
// defaults when nothing usable is stored, then restores the current index
// when RememberCurrentEffect is set.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.RLock()
	p := m.persist
	m.mu.RUnlock()
	if p == nil {
		m.LoadDefaultEffects()
		return nil
	}

	raw, ok, err := p.gateway.LoadDocument(ctx, EffectsConfigKey)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read effects config, using defaults")
		ok = false
	}

	loaded := false
	if ok {
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Warn().Err(err).Msg("Effects config is corrupt, using defaults")
		} else {
			m.DeserializeFromJSON(&doc)
			loaded = true
		}
	}
	if !loaded {
		m.LoadDefaultEffects()
		p.writer.FlagWriter(p.effectsWriter)
	}

	m.mu.RLock()
	remember := m.opts.RememberCurrentEffect
	m.mu.RUnlock()
	if remember {
		if idx, ok := m.ReadCurrentEffectIndex(ctx); ok {
			if err := m.SetCurrentEffectIndex(idx); err != nil {
				log.Warn().Int("index", idx).Msg("Stored effect index is out of range")
			}
		}
	}
	return nil
}

// DeserializeFromJSON replaces the list with the effects in doc. Records
// whose type has no JSON factory are dropped. Afterwards every default
// effect type not loaded from doc is added with all of its default
// variants, so newly introduced effect types appear for existing
// configurations. An empty result falls back to the defaults.
func (m *Manager) DeserializeFromJSON(doc *Document) {
	loaded := make(map[int]bool)
	var list []Effect

	for _, rec := range doc.Effects {
		number := rec.TypeNumber()
		factory, ok := m.registry.JSONFactory(number)
		if !ok {
			log.Debug().Int("type", number).Msg("No JSON factory for effect, dropping")
			continue
		}
		e, err := factory(rec)
		if err != nil || e == nil {
			log.Warn().Err(err).Int("type", number).Msg("Failed to restore effect, dropping")
			continue
		}
		if rec.Core() {
			e.MarkCore()
		}
		list = append(list, e)
		loaded[number] = true
	}

	defaults := m.registry.Defaults()
	for i, f := range defaults {
		if loaded[f.Number] {
			continue
		}
		for _, g := range defaults[i:] {
			if g.Number == f.Number {
				list = append(list, m.produceDefault(g))
			}
		}
		loaded[f.Number] = true
	}

	if len(list) == 0 {
		m.LoadDefaultEffects()
		return
	}

	m.mu.Lock()
	m.effects = list
	m.resetLocked()
	if doc.Interval != nil {
		m.interval = time.Duration(*doc.Interval) * time.Millisecond
	}
	m.mu.Unlock()

	log.Info().Int("count", len(list)).Msg("Loaded effects from JSON")
	m.notify(func(l Listener) { l.OnEffectListDirty() })
}

// SerializeToJSON returns the document for the current list.
func (m *Manager) SerializeToJSON() (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ivl := m.interval.Milliseconds()
	doc := &Document{Interval: &ivl, Effects: make([]Record, 0, len(m.effects))}
	for _, e := range m.effects {
		rec, err := e.Serialize()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize effect %s: %w", e.Name(), err)
		}
		if e.IsCore() {
			rec[keyCore] = true
		}
		doc.Effects = append(doc.Effects, rec)
	}
	return doc, nil
}

// ReadCurrentEffectIndex returns the stored current index, if any.
func (m *Manager) ReadCurrentEffectIndex(ctx context.Context) (int, bool) {
	m.mu.RLock()
	p := m.persist
	m.mu.RUnlock()
	if p == nil {
		return 0, false
	}

	v, ok, err := p.gateway.ReadScalar(ctx, CurrentEffectKey)
	if err != nil || !ok {
		return 0, false
	}
	idx, err := strconv.ParseUint(strings.TrimSpace(v), 10, 31)
	if err != nil {
		log.Warn().Str("value", v).Msg("Ignoring unreadable effect index")
		return 0, false
	}
	return int(idx), true
}

// RemoveConfig deletes the persisted effect list and current index.
func (m *Manager) RemoveConfig(ctx context.Context) error {
	m.mu.RLock()
	p := m.persist
	m.mu.RUnlock()
	if p == nil {
		return nil
	}

	if err := p.gateway.RemoveDocument(ctx, EffectsConfigKey); err != nil {
		return fmt.Errorf("failed to remove effects config: %w", err)
	}
	if err := p.gateway.RemoveScalar(ctx, CurrentEffectKey); err != nil {
		return fmt.Errorf("failed to remove current effect index: %w", err)
	}
	return nil
}

func (m *Manager) saveEffects(ctx context.Context) error {
	doc, err := m.SerializeToJSON()
	if err == nil {
		var raw []byte
		raw, err = json.Marshal(doc)
		if err == nil {
			err = m.persist.gateway.SaveDocument(ctx, EffectsConfigKey, raw)
		}
	}
	return m.persistenceError(err)
}

func (m *Manager) saveCurrentIndex(ctx context.Context) error {
	idx := m.CurrentIndex()
	return m.persistenceError(m.persist.gateway.WriteScalar(ctx, CurrentEffectKey, strconv.Itoa(idx)))
}

func (m *Manager) persistenceError(err error) error {
	if err == nil {
		return nil
	}
	if m.opts.PersistenceCritical {
		return fmt.Errorf("%w: %v", jsonwriter.ErrCritical, err)
	}
	return err
}

// roundTripRecord passes r through JSON so a factory sees exactly what it
// would see when loading from storage.
func roundTripRecord(r Record) Record {
	raw, err := json.Marshal(r)
	if err != nil {
		return r
	}
	var out Record
	if err := json.Unmarshal(raw, &out); err != nil {
		return r
	}
	return out
}
