package store

// Principal is the opaque caller identity supplied by the invoking
// transaction. The store only ever compares principals for equality.
type Principal string

type ButtonStyle string

const (
	ButtonRounded ButtonStyle = "rounded"
	ButtonSquare  ButtonStyle = "square"
	ButtonPill    ButtonStyle = "pill"
)

type Layout string

const (
	LayoutCentered Layout = "centered"
	LayoutLeft     Layout = "left"
	LayoutRight    Layout = "right"
)

type BorderRadius string

const (
	RadiusNone BorderRadius = "none"
	RadiusSm   BorderRadius = "sm"
	RadiusMd   BorderRadius = "md"
	RadiusLg   BorderRadius = "lg"
	RadiusFull BorderRadius = "full"
)

type Shadow string

const (
	ShadowNone Shadow = "none"
	ShadowSm   Shadow = "sm"
	ShadowMd   Shadow = "md"
	ShadowLg   Shadow = "lg"
)

type Theme struct {
	PrimaryColor    string      `json:"primary_color"`
	SecondaryColor  string      `json:"secondary_color"`
	BackgroundColor string      `json:"background_color"`
	TextColor       string      `json:"text_color"`
	ButtonStyle     ButtonStyle `json:"button_style"`
	Layout          Layout      `json:"layout"`
}

// DefaultTheme is applied to every newly created profile.
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:    "#F4D03F",
		SecondaryColor:  "#87CEEB",
		BackgroundColor: "#FFFFFF",
		TextColor:       "#1B365D",
		ButtonStyle:     ButtonRounded,
		Layout:          LayoutCentered,
	}
}

type Profile struct {
	ID          uint64    `json:"id"`
	Owner       Principal `json:"owner"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Bio         *string   `json:"bio,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	Theme       Theme     `json:"theme"`
	CreatedAt   uint64    `json:"created_at"`
	UpdatedAt   uint64    `json:"updated_at"`
}

type LinkStyle struct {
	BackgroundColor string       `json:"background_color"`
	TextColor       string       `json:"text_color"`
	BorderColor     *string      `json:"border_color,omitempty"`
	BorderWidth     uint         `json:"border_width"`
	BorderRadius    BorderRadius `json:"border_radius"`
	Shadow          Shadow       `json:"shadow"`
}

type Link struct {
	ID          uint64    `json:"id"`
	ProfileID   uint64    `json:"profile_id"`
	Owner       Principal `json:"owner"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	IsActive    bool      `json:"is_active"`
	ClickCount  uint64    `json:"click_count"`
	Order       uint      `json:"order"`
	Style       LinkStyle `json:"style"`
	CreatedAt   uint64    `json:"created_at"`
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// clone returns a copy that shares no pointers with the original, so
// query results can be handed to callers without exposing store state.
func (p Profile) clone() Profile {
	p.Bio = cloneStr(p.Bio)
	p.AvatarURL = cloneStr(p.AvatarURL)
	return p
}

func (l Link) clone() Link {
	l.Description = cloneStr(l.Description)
	l.Icon = cloneStr(l.Icon)
	l.Style.BorderColor = cloneStr(l.Style.BorderColor)
	return l
}

// ProfileTotals is the aggregate analytics view of a profile.
type ProfileTotals struct {
	ProfileID uint64 `json:"profile_id"`
	Views     uint64 `json:"views"`
	Clicks    uint64 `json:"clicks"`
	Visitors  uint64 `json:"visitors"`
}
