package model

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// IsAdmin reports whether the role may use admin-only routes.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeFont  MediaType = "font"
)

type SectionType string

const (
	SectionHero         SectionType = "hero"
	SectionPresentation SectionType = "presentation"
	SectionMundo        SectionType = "mundo"
	SectionEvents       SectionType = "events"
	SectionGallery      SectionType = "gallery"
)
