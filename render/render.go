package render

import (
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
)

// Resolve substitutes {{field}} placeholders in template with values from fields.
// Surrounding whitespace inside a placeholder is ignored. Unknown placeholders are
// left literal so a stale template never fails a send.
func Resolve(template string, fields map[string]string) string {
	t, err := fasttemplate.NewTemplate(template, startTag, endTag)
	if err != nil {
		//unbalanced tags, treat the template as literal text
		return template
	}
	return t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if value, ok := fields[strings.TrimSpace(tag)]; ok {
			return w.Write([]byte(value))
		}
		return w.Write([]byte(startTag + tag + endTag))
	})
}

// MergeFields layers field maps into one; later maps win on key collision
func MergeFields(maps ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}
