package block

const (
	TypeText        Type = "text"
	TypeImage       Type = "image"
	TypeVideo       Type = "video"
	TypeAudio       Type = "audio"
	TypeQuote       Type = "quote"
	TypeButton      Type = "button"
	TypeGrid        Type = "grid"
	TypeTestimonial Type = "testimonial"
	TypeServices    Type = "services"
	TypeCTA         Type = "cta"
	TypeHero        Type = "hero"
	TypeHeader      Type = "header"
	TypeFooter      Type = "footer"
	TypeContactForm Type = "contact_form"
)

// AllSupportedTypes holds a list of all supported block types
var AllSupportedTypes = []Type{
	TypeText,
	TypeImage,
	TypeVideo,
	TypeAudio,
	TypeQuote,
	TypeButton,
	TypeGrid,
	TypeTestimonial,
	TypeServices,
	TypeCTA,
	TypeHero,
	TypeHeader,
	TypeFooter,
	TypeContactForm,
}

// Type specifies a supported block type name
type Type string

// String cast Type to string
func (t Type) String() string {
	return string(t)
}

// IsValid will validate whether the type name is valid or not
func (t Type) IsValid() bool {
	switch t {
	case TypeText, TypeImage, TypeVideo, TypeAudio, TypeQuote, TypeButton,
		TypeGrid, TypeTestimonial, TypeServices, TypeCTA, TypeHero,
		TypeHeader, TypeFooter, TypeContactForm:
		return true
	}
	return false
}
