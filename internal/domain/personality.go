package domain

import "strings"

// Personality selects the tone of the assistant for a conversation.
type Personality string

const (
	PersonalityFriendly     Personality = "friendly"
	PersonalityProfessional Personality = "professional"
	PersonalityMotivational Personality = "motivational"
	PersonalityCasual       Personality = "casual"
	PersonalityGrumpy       Personality = "grumpy"
)

// DefaultPersonality is used when nothing else has been selected.
const DefaultPersonality = PersonalityFriendly

// PersonalityInfo holds the presentation metadata of a personality.
type PersonalityInfo struct {
	Key      Personality
	Name     string
	Icon     string
	Accent   string // terminal color (ANSI 256 code)
	Greeting string
}

var personalityCatalog = []PersonalityInfo{
	{
		Key:      PersonalityFriendly,
		Name:     "Friendly",
		Icon:     "🤗",
		Accent:   "212",
		Greeting: "Hi there! I'm MoneyKeeper AI, your finance buddy. What can I help you with today?",
	},
	{
		Key:      PersonalityProfessional,
		Name:     "Professional",
		Icon:     "💼",
		Accent:   "39",
		Greeting: "Good day. I am MoneyKeeper AI. How may I assist with your finances?",
	},
	{
		Key:      PersonalityMotivational,
		Name:     "Motivational",
		Icon:     "💪",
		Accent:   "214",
		Greeting: "Let's crush those money goals together! What are we working on today?",
	},
	{
		Key:      PersonalityCasual,
		Name:     "Casual",
		Icon:     "😎",
		Accent:   "78",
		Greeting: "Hey! What's up with your wallet today?",
	},
	{
		Key:      PersonalityGrumpy,
		Name:     "Grumpy",
		Icon:     "😡",
		Accent:   "196",
		Greeting: "MoneyKeeper AI. What do you want? Make it quick.",
	},
}

// Personalities returns the catalog in display order.
func Personalities() []PersonalityInfo {
	out := make([]PersonalityInfo, len(personalityCatalog))
	copy(out, personalityCatalog)
	return out
}

// ParsePersonality maps a raw value onto the catalog, falling back to the default.
func ParsePersonality(raw string) Personality {
	p := Personality(strings.ToLower(strings.TrimSpace(raw)))
	if p.Valid() {
		return p
	}
	return DefaultPersonality
}

// Valid reports whether p is one of the known personalities.
func (p Personality) Valid() bool {
	for _, info := range personalityCatalog {
		if info.Key == p {
			return true
		}
	}
	return false
}

// Info returns the metadata for p, or for the default personality when p is unknown.
func (p Personality) Info() PersonalityInfo {
	for _, info := range personalityCatalog {
		if info.Key == p {
			return info
		}
	}
	return personalityCatalog[0]
}
