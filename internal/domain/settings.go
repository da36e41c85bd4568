package domain

// DefaultLanguage is the language every fresh actor knows.
const DefaultLanguage = "Common"

// Settings is the per-room configuration record.
type Settings struct {
	DefaultIntro string
	Languages    []string
}

func DefaultSettings() Settings {
	return Settings{
		DefaultIntro: "says",
		Languages:    DefaultLanguages(),
	}
}

// DefaultLanguages returns the language list a new room starts with.
func DefaultLanguages() []string {
	return []string{
		"Common",
		"Elvish",
		"Dwarvish",
		"Giant",
		"Goblin",
		"Orc",
		"Abyssal",
		"Celestial",
		"Draconic",
		"Deep Speech",
		"Infernal",
		"Primordial",
		"Sylvan",
		"Undercommon",
		"Aquan",
		"Auran",
		"Ignan",
		"Terran",
		"Druidic",
		"Thieves' Cant",
		"Sign Language",
	}
}

func (s *Settings) Fields() map[string]any {
	return map[string]any{
		"defaultIntro": s.DefaultIntro,
		"languages":    anyStrings(s.Languages),
	}
}

func SettingsFromMap(f map[string]any) Settings {
	return Settings{
		DefaultIntro: str(f, "defaultIntro"),
		Languages:    strs(f, "languages"),
	}
}
