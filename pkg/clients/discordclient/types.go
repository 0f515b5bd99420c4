package discordclient

// Discord wire types, limited to the fields the roster uses.

type Embed struct {
	Title     string       `json:"title,omitempty"`
	Fields    []EmbedField `json:"fields,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Component is both an action row and a button; Discord distinguishes
// them by Type
type Component struct {
	Type       int         `json:"type"`
	Style      int         `json:"style,omitempty"`
	Label      string      `json:"label,omitempty"`
	Emoji      *Emoji      `json:"emoji,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Components []Component `json:"components,omitempty"`
}

type Emoji struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

const (
	componentActionRow = 1
	componentButton    = 2

	buttonStylePrimary = 1
	buttonStyleDanger  = 4
)

type Message struct {
	ID        string  `json:"id"`
	ChannelID string  `json:"channel_id"`
	Embeds    []Embed `json:"embeds"`
}

type messageCreate struct {
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []Component `json:"components,omitempty"`
}

type messageEdit struct {
	Embeds     []Embed     `json:"embeds"`
	Components []Component `json:"components,omitempty"`
}

type threadCreate struct {
	Name string `json:"name"`
}
