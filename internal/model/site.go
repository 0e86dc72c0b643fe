package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SiteRecord is the single row of the site table. Meta and theme are opaque
// to the server; sections are decoded into the Section union.
type SiteRecord struct {
	ID        int64          `db:"id"`
	Meta      types.JSONText `db:"meta"`
	Theme     types.JSONText `db:"theme"`
	Sections  types.JSONText `db:"sections"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type Site struct {
	Meta     json.RawMessage `json:"meta"`
	Theme    json.RawMessage `json:"theme"`
	Sections []Section       `json:"sections"`
}

// ItemID identifies an event, image or video inside a section. Seed data and
// the dashboard use both numeric and string ids, so both are accepted.
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id must be a string or number: %w", err)
	}
	*id = ItemID(n)
	return nil
}

func (id ItemID) MarshalJSON() ([]byte, error) {
	if id != "" {
		if _, err := strconv.ParseFloat(string(id), 64); err == nil {
			return []byte(id), nil
		}
	}
	return json.Marshal(string(id))
}

// SectionSettings is implemented by every settings variant. The set is closed:
// DecodeSettings is the only constructor from JSON.
type SectionSettings interface {
	isSectionSettings()
}

type HeroSettings struct {
	BackgroundMediaID *int64 `json:"backgroundMediaId"`
	LogoMediaID       *int64 `json:"logoMediaId"`
}

// TextSettings backs both the presentation and mundo sections.
type TextSettings struct {
	Text []string `json:"text"`
}

type Event struct {
	ID          ItemID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaID     *int64 `json:"mediaId"`
	Visible     bool   `json:"visible"`
	Position    int    `json:"position"`
}

type EventsSettings struct {
	Events []Event `json:"events"`
}

type Image struct {
	ID       ItemID `json:"id"`
	Alt      string `json:"alt"`
	MediaID  *int64 `json:"mediaId"`
	Visible  bool   `json:"visible"`
	Position int    `json:"position"`
}

type Video struct {
	ID      ItemID `json:"id"`
	Title   string `json:"title"`
	Src     string `json:"src"`
	Visible bool   `json:"visible"`
}

type GallerySettings struct {
	Images []Image `json:"images"`
	Videos []Video `json:"videos"`
}

func (*HeroSettings) isSectionSettings()    {}
func (*TextSettings) isSectionSettings()    {}
func (*EventsSettings) isSectionSettings()  {}
func (*GallerySettings) isSectionSettings() {}

type Section struct {
	ID       string          `json:"id"`
	Type     SectionType     `json:"type"`
	Visible  bool            `json:"visible"`
	Settings SectionSettings `json:"settings"`
}

// DecodeSettings decodes raw into the settings variant for t.
func DecodeSettings(t SectionType, raw json.RawMessage) (SectionSettings, error) {
	var settings SectionSettings
	switch t {
	case SectionHero:
		settings = &HeroSettings{}
	case SectionPresentation, SectionMundo:
		settings = &TextSettings{}
	case SectionEvents:
		settings = &EventsSettings{}
	case SectionGallery:
		settings = &GallerySettings{}
	default:
		return nil, fmt.Errorf("unknown section type %q", t)
	}

	if len(raw) == 0 || string(raw) == "null" {
		return settings, nil
	}
	if err := json.Unmarshal(raw, settings); err != nil {
		return nil, fmt.Errorf("invalid %s settings: %w", t, err)
	}
	return settings, nil
}

func (s *Section) UnmarshalJSON(b []byte) error {
	var aux struct {
		ID       string          `json:"id"`
		Type     SectionType     `json:"type"`
		Visible  bool            `json:"visible"`
		Settings json.RawMessage `json:"settings"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	settings, err := DecodeSettings(aux.Type, aux.Settings)
	if err != nil {
		return fmt.Errorf("section %q: %w", aux.ID, err)
	}

	s.ID = aux.ID
	s.Type = aux.Type
	s.Visible = aux.Visible
	s.Settings = settings
	return nil
}

type positionedItem interface {
	itemID() ItemID
}

func (e Event) itemID() ItemID { return e.ID }
func (i Image) itemID() ItemID { return i.ID }

func swapByID[T positionedItem](items []T, fromID, toID ItemID) bool {
	from, to := -1, -1
	for i, item := range items {
		id := item.itemID()
		if id == fromID && from < 0 {
			from = i
		}
		if id == toID && to < 0 {
			to = i
		}
	}
	if from < 0 || to < 0 {
		return false
	}
	items[from], items[to] = items[to], items[from]
	return true
}

// Reorderable is implemented by settings whose items carry a position.
type Reorderable interface {
	// Reorder swaps the items identified by fromID and toID and renumbers
	// position from 1. It returns false when either id is unknown.
	Reorder(fromID, toID ItemID) bool
}

func (s *EventsSettings) Reorder(fromID, toID ItemID) bool {
	if !swapByID(s.Events, fromID, toID) {
		return false
	}
	for i := range s.Events {
		s.Events[i].Position = i + 1
	}
	return true
}

func (s *GallerySettings) Reorder(fromID, toID ItemID) bool {
	if !swapByID(s.Images, fromID, toID) {
		return false
	}
	for i := range s.Images {
		s.Images[i].Position = i + 1
	}
	return true
}

type UpdateSectionParams struct {
	Settings json.RawMessage
	Visible  *bool
}
