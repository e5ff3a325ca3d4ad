// Preset comfort messages.
//
// Presets are immutable reference data, not user data. Selecting one on a
// feed item is the only way a viewer's message flag gets set.
package domain

// MessagePreset is one of the fixed comfort phrases a viewer can send once
// per feed item.
type MessagePreset struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Pictogram string `json:"pictogram"`
}

// messagePresets is the canonical ordered preset set. Order matters only for
// display; ids are the stable contract.
var messagePresets = []MessagePreset{
	{ID: "cheer_up", Label: "Cheer up!", Pictogram: "📣"},
	{ID: "together", Label: "You're not alone", Pictogram: "🤝"},
	{ID: "listening", Label: "I'm listening", Pictogram: "👂"},
	{ID: "hug", Label: "Sending a hug", Pictogram: "🤗"},
	{ID: "sunny_day", Label: "Sunny days ahead", Pictogram: "🌤️"},
}

// MessagePresets returns the full preset set in display order. The returned
// slice is a copy; callers may not mutate reference data.
func MessagePresets() []MessagePreset {
	out := make([]MessagePreset, len(messagePresets))
	copy(out, messagePresets)
	return out
}

// PresetByID looks up a preset by id. The second return value reports
// whether the id is known.
func PresetByID(id string) (MessagePreset, bool) {
	for _, p := range messagePresets {
		if p.ID == id {
			return p, true
		}
	}
	return MessagePreset{}, false
}
