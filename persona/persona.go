package persona

import (
	"fmt"
	"os"
)

// groundingPreamble directs the agent to answer only based on the supplied
// reference document. It is substituted into the initial instruction
// exactly once, at definition construction time.
const groundingPreamble = `You are a helpful assistant. Base your answers on the following file content

--- FILE CONTENT START ---
%s
--- FILE CONTENT END ---`

// Definition describes one agent persona. Construct via New or
// NewFromFile; the initial instruction is computed exactly once so
// repeated use can never re-inject the reference document.
type Definition struct {
	ID    string // Unique identifier
	Name  string // Display name shown to the user and other agents
	Style string // Free-text behavioral/tone directive

	document    string
	instruction string
}

// Options carries optional persona construction parameters.
type Options struct {
	// Document is the verbatim reference document text the persona must
	// ground its answers in. Empty means no grounding document.
	Document string
}

// New constructs a persona definition, deriving its initial instruction.
func New(id, name, style string, optFns ...func(o *Options)) *Definition {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	d := &Definition{ID: id, Name: name, Style: style, document: opts.Document}
	d.instruction = buildInitialInstruction(d)
	return d
}

// NewFromFile constructs a persona whose reference document is read from
// path. A missing or unreadable file is a startup error for the persona,
// not a per-request condition.
func NewFromFile(id, name, style, path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persona %q: reference document: %w", id, err)
	}
	return New(id, name, style, func(o *Options) { o.Document = string(data) }), nil
}

// InitialInstruction returns the persona's seeded instruction. The value is
// computed once at construction and is byte-identical across calls.
func (d *Definition) InitialInstruction() string { return d.instruction }

// HasDocument reports whether the persona carries a grounding document.
func (d *Definition) HasDocument() bool { return d.document != "" }

// buildInitialInstruction concatenates the grounding preamble (iff a
// reference document is present), the verbatim document, the persona's name
// line and its style directive.
func buildInitialInstruction(d *Definition) string {
	var instruction string
	if d.document != "" {
		instruction = fmt.Sprintf(groundingPreamble, d.document)
	}
	instruction += fmt.Sprintf("\n Your name is %s. ", d.Name)
	instruction += d.Style
	return instruction
}
