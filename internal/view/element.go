// Package view holds the explicit handles the dashboard writes to and the
// templates that turn them into HTML.
package view

import (
	"html/template"
	"sort"
	"strings"
	"sync"
)

// HiddenClass hides an element.
const HiddenClass = "hidden"

// Element is a handle on one addressable region of the page. It is safe for
// concurrent use.
type Element struct {
	mu      sync.Mutex
	id      string
	html    template.HTML
	text    string
	classes []string
	data    map[string]string
}

// NewElement returns a handle with the given id and initial classes.
func NewElement(id string, classes ...string) *Element {
	el := &Element{}
	el.init(id, classes...)
	return el
}

func (e *Element) init(id string, classes ...string) {
	e.id = id
	for _, class := range classes {
		e.addClassLocked(class)
	}
}

// ID is the element's DOM id.
func (e *Element) ID() string {
	return e.id
}

// SetHTML replaces the inner markup wholesale.
func (e *Element) SetHTML(markup template.HTML) {
	e.mu.Lock()
	e.html = markup
	e.text = ""
	e.mu.Unlock()
}

// HTML returns the inner markup.
func (e *Element) HTML() template.HTML {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.html
}

// SetText replaces the content with escaped text.
func (e *Element) SetText(text string) {
	e.mu.Lock()
	e.text = text
	e.html = template.HTML(template.HTMLEscapeString(text))
	e.mu.Unlock()
}

// Text returns the last text set with SetText.
func (e *Element) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// AddClass adds class when absent.
func (e *Element) AddClass(class string) {
	e.mu.Lock()
	e.addClassLocked(class)
	e.mu.Unlock()
}

func (e *Element) addClassLocked(class string) {
	for _, field := range strings.Fields(class) {
		if !e.hasClassLocked(field) {
			e.classes = append(e.classes, field)
		}
	}
}

// RemoveClass drops class when present.
func (e *Element) RemoveClass(class string) {
	e.mu.Lock()
	e.removeClassLocked(class)
	e.mu.Unlock()
}

func (e *Element) removeClassLocked(class string) {
	for i, existing := range e.classes {
		if existing == class {
			e.classes = append(e.classes[:i], e.classes[i+1:]...)
			return
		}
	}
}

// HasClass reports whether class is set.
func (e *Element) HasClass(class string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasClassLocked(class)
}

func (e *Element) hasClassLocked(class string) bool {
	for _, existing := range e.classes {
		if existing == class {
			return true
		}
	}
	return false
}

// Toggle flips class and reports whether it is now set.
func (e *Element) Toggle(class string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hasClassLocked(class) {
		e.removeClassLocked(class)
		return false
	}
	e.addClassLocked(class)
	return true
}

// Show removes the hidden class.
func (e *Element) Show() { e.RemoveClass(HiddenClass) }

// Hide adds the hidden class.
func (e *Element) Hide() { e.AddClass(HiddenClass) }

// Hidden reports whether the hidden class is set.
func (e *Element) Hidden() bool { return e.HasClass(HiddenClass) }

// Class is the space separated class list.
func (e *Element) Class() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return strings.Join(e.classes, " ")
}

// SetData sets a data-* attribute.
func (e *Element) SetData(key, value string) {
	e.mu.Lock()
	if e.data == nil {
		e.data = make(map[string]string)
	}
	e.data[key] = value
	e.mu.Unlock()
}

// Data returns a data-* attribute.
func (e *Element) Data(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	value, ok := e.data[key]
	return value, ok
}

// Attrs renders the id, class and data-* attributes.
func (e *Element) Attrs() template.HTMLAttr {
	e.mu.Lock()
	defer e.mu.Unlock()
	var b strings.Builder
	b.WriteString(`id="` + template.HTMLEscapeString(e.id) + `"`)
	if len(e.classes) > 0 {
		b.WriteString(` class="` + template.HTMLEscapeString(strings.Join(e.classes, " ")) + `"`)
	}
	keys := make([]string, 0, len(e.data))
	for key := range e.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(` data-` + template.HTMLEscapeString(key) + `="` + template.HTMLEscapeString(e.data[key]) + `"`)
	}
	return template.HTMLAttr(b.String())
}
