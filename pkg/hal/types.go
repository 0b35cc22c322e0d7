// Package hal provides HAL and HAL-FORMS resource types along with the
// client-side protocol primitives: template classification, property source
// resolution, payload building, and confirmation dialog derivation.
// See https://stateless.group/hal_specification.html and the HAL-FORMS draft.
package hal

// ContentType is the HAL media type.
const ContentType = "application/hal+json"

// Reserved member names of a HAL object. Domain properties live at the top
// level alongside these keys and must never collide with them.
const (
	ReservedLinks     = "_links"
	ReservedEmbedded  = "_embedded"
	ReservedTemplates = "_templates"
)

// Conventional template keys.
const (
	TemplateSelf       = "self"
	TemplateDefault    = "default"
	TemplateCreate     = "create"
	TemplateBulkDelete = "bulk-delete"
	TemplateNext       = "next"
	TemplatePrev       = "prev"
)

// Link is a navigable GET affordance. Href is an absolute or root-relative
// path, fully resolved at response time.
type Link struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
	Name  string `json:"name,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Template describes one operation a resource supports: a method, a resolved
// target URL, and the typed input fields the operation takes. Unlike a Link
// href, Target is never a URI template; path variables are filled in by the
// server before serialization.
type Template struct {
	Title       string     `json:"title,omitempty"`
	Method      string     `json:"method,omitempty"`
	Target      string     `json:"target,omitempty"`
	ContentType string     `json:"contentType,omitempty"`
	Properties  []Property `json:"properties,omitempty"`
}

// Property types understood by the protocol. The set is open; unknown types
// render as plain form fields.
const (
	TypeText     = "text"
	TypeTextarea = "textarea"
	TypeSelect   = "select"
	TypeCheckbox = "checkbox"
	TypeNumber   = "number"
	TypeHidden   = "hidden"
	TypeArray    = "array"
)

// Property is one typed input field of a template. Name is unique within a
// template's property list. A nil Value means the value is absent; falsy
// values (0, false, "") are real values and are preserved as such.
type Property struct {
	Name     string   `json:"name"`
	Prompt   string   `json:"prompt,omitempty"`
	Type     string   `json:"type,omitempty"`
	Required bool     `json:"required,omitempty"`
	Value    any      `json:"value,omitempty"`
	ReadOnly bool     `json:"readOnly,omitempty"`
	Options  *Options `json:"options,omitempty"`
}

// Options carries enumeration metadata for select-style properties.
type Options struct {
	Inline    []SelectValue `json:"inline,omitempty"`
	MaxItems  int           `json:"maxItems,omitempty"`
	MinItems  int           `json:"minItems,omitempty"`
	Multiple  bool          `json:"multiple,omitempty"`
	ValueKey  string        `json:"valueField,omitempty"`
	PromptKey string        `json:"promptField,omitempty"`
}

// SelectValue is one inline option of a select property.
type SelectValue struct {
	Prompt string `json:"prompt"`
	Value  string `json:"value"`
}

// ExecutionContext carries the request-scoped state for one user-initiated
// template execution. It is constructed fresh per action and discarded after
// the resulting request resolves.
type ExecutionContext struct {
	Template   Template
	FormData   map[string]any
	Selections []string
	Resource   *Object
}
